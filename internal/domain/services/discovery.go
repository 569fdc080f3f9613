// Package services implements the validation and publish planning logic.
package services

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/reallocate-eu/geoflow/internal/domain/entities"
	"github.com/reallocate-eu/geoflow/internal/domain/interfaces"
)

// Filename grammar: pilot<N>_<city>.geojson, case-insensitive. Multi-word
// city names use underscores, which are squashed in the derived key.
var pilotFilenamePattern = regexp.MustCompile(`^pilot(\d+)_(.+)\.geojson$`)

// ParsePilotFilename derives the pilot ordinal and normalized city key from
// a filename. ok is false when the name does not follow the convention.
func ParsePilotFilename(name string) (pilotID, city string, ok bool) {
	m := pilotFilenamePattern.FindStringSubmatch(strings.ToLower(name))
	if m == nil {
		return "", "", false
	}
	return m[1], NormalizeCityKey(m[2]), true
}

// NormalizeCityKey folds a city name to the form used as boundary cache key
// and slug component: lower case with underscores and spaces removed.
func NormalizeCityKey(city string) string {
	city = strings.ToLower(strings.TrimSpace(city))
	city = strings.ReplaceAll(city, "_", "")
	return strings.ReplaceAll(city, " ", "")
}

// DiscoveryService lists candidate pilot files in a data directory
type DiscoveryService struct {
	logger interfaces.Logger
}

// NewDiscoveryService creates a new discovery service
func NewDiscoveryService(logger interfaces.Logger) *DiscoveryService {
	return &DiscoveryService{logger: logger}
}

// DiscoverFiles returns all GeoJSON files in dataDir, sorted by name.
// Files whose names do not follow the pilot convention are still returned
// (with empty identity) so validation can report the convention failure.
func (s *DiscoveryService) DiscoverFiles(dataDir string) ([]entities.SpatialFile, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory %s: %w", dataDir, err)
	}

	files := make([]entities.SpatialFile, 0)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".geojson") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			s.logger.Warn("skipping unreadable file", interfaces.F("file", entry.Name()), interfaces.F("err", err))
			continue
		}

		file := entities.SpatialFile{
			Path:      filepath.Join(dataDir, entry.Name()),
			Name:      entry.Name(),
			SizeBytes: info.Size(),
		}
		if pilot, city, ok := ParsePilotFilename(entry.Name()); ok {
			file.PilotID = pilot
			file.CityName = city
		}
		files = append(files, file)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	s.logger.Info("discovered pilot files",
		interfaces.F("dir", dataDir),
		interfaces.F("count", len(files)))
	return files, nil
}
