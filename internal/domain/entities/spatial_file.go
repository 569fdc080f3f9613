// Package entities defines core domain models and data structures.
package entities

// SpatialFile represents a discovered pilot-area GeoJSON file
type SpatialFile struct {
	Path      string
	Name      string
	PilotID   string // ordinal parsed from the filename, e.g. "1"
	CityName  string // normalized city key parsed from the filename
	SizeBytes int64
}

// HasIdentity returns true if pilot and city could be derived from the filename
func (f *SpatialFile) HasIdentity() bool {
	return f.PilotID != "" && f.CityName != ""
}
