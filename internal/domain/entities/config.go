package entities

import (
	"fmt"
	"time"
)

// BoundingBox is a lon/lat axis-aligned box in WGS84 degrees
type BoundingBox struct {
	MinLon float64
	MaxLon float64
	MinLat float64
	MaxLat float64
}

// Contains reports whether the coordinate falls inside the box
func (b BoundingBox) Contains(lon, lat float64) bool {
	return lon >= b.MinLon && lon <= b.MaxLon && lat >= b.MinLat && lat <= b.MaxLat
}

// ValidationConfig holds the tunables for the validation pipeline
type ValidationConfig struct {
	PrecisionMin        int         // minimum acceptable decimal digits
	PrecisionMax        int         // maximum acceptable decimal digits
	CoordinateSample    int         // coordinate pairs inspected for precision
	MacroRegionBounds   BoundingBox // e.g. European territories
	MinFeatureCount     int
	MaxFeatureCount     int
	MaxFileSizeMB       int
	BlockingQuality     bool // quality failures block publishing when true
	IndeterminateBlocks bool // indeterminate geographic outcome blocks publishing
	BoundaryTTL         time.Duration
	BoundaryMaxEntries  int
	BoundaryTimeout     time.Duration
	BoundaryRetry       RetryPolicy
}

// PublishConfig holds the tunables for the catalog publish phase
type PublishConfig struct {
	DatasetPrefix      string
	Formats            []string // resource formats, e.g. GeoJSON, CSV
	OnlyPublishPassing bool
	PrivateDatasets    bool
	Concurrency        int // files processed in parallel
	RequestTimeout     time.Duration
	Retry              RetryPolicy
}

// OutputConfig names the report files the workflow writes
type OutputConfig struct {
	ValidationReport string
	PublishReport    string
	SummaryJSON      string
}

// Config is the full workflow configuration, validated once at load time
type Config struct {
	Validation ValidationConfig
	Publish    PublishConfig
	Output     OutputConfig
}

// DefaultConfig returns the configuration used when no file is supplied
func DefaultConfig() *Config {
	return &Config{
		Validation: ValidationConfig{
			PrecisionMin:     3,
			PrecisionMax:     12,
			CoordinateSample: 1000,
			MacroRegionBounds: BoundingBox{
				MinLon: -31.0,
				MaxLon: 45.0,
				MinLat: 34.0,
				MaxLat: 72.0,
			},
			MinFeatureCount:     1,
			MaxFeatureCount:     10000,
			MaxFileSizeMB:       100,
			BlockingQuality:     false,
			IndeterminateBlocks: true,
			BoundaryTTL:         time.Hour,
			BoundaryMaxEntries:  64,
			BoundaryTimeout:     30 * time.Second,
			BoundaryRetry:       DefaultRetryPolicy(),
		},
		Publish: PublishConfig{
			DatasetPrefix:      "reallocate-pilot",
			Formats:            []string{"GeoJSON", "CSV"},
			OnlyPublishPassing: true,
			PrivateDatasets:    true,
			Concurrency:        1,
			RequestTimeout:     5 * time.Minute,
			Retry: RetryPolicy{
				MaxAttempts: 3,
				BaseDelay:   5 * time.Second,
				Multiplier:  2.0,
				MaxDelay:    60 * time.Second,
			},
		},
		Output: OutputConfig{
			ValidationReport: "validation_report.md",
			PublishReport:    "publish_report.md",
			SummaryJSON:      "workflow_summary.json",
		},
	}
}

// Validate checks the configuration for internally consistent values
func (c *Config) Validate() error {
	v := c.Validation
	if v.PrecisionMin < 0 || v.PrecisionMax < v.PrecisionMin {
		return fmt.Errorf("invalid precision window [%d, %d]", v.PrecisionMin, v.PrecisionMax)
	}
	if v.MacroRegionBounds.MinLon >= v.MacroRegionBounds.MaxLon ||
		v.MacroRegionBounds.MinLat >= v.MacroRegionBounds.MaxLat {
		return fmt.Errorf("invalid macro-region bounding box")
	}
	if v.MinFeatureCount < 0 || v.MaxFeatureCount < v.MinFeatureCount {
		return fmt.Errorf("invalid feature count bounds [%d, %d]", v.MinFeatureCount, v.MaxFeatureCount)
	}
	if v.MaxFileSizeMB <= 0 {
		return fmt.Errorf("max file size must be positive, got %d", v.MaxFileSizeMB)
	}
	if v.BoundaryRetry.MaxAttempts < 1 {
		return fmt.Errorf("boundary retry attempts must be at least 1")
	}
	p := c.Publish
	if p.DatasetPrefix == "" {
		return fmt.Errorf("dataset prefix must not be empty")
	}
	if len(p.Formats) == 0 {
		return fmt.Errorf("at least one resource format is required")
	}
	if p.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", p.Concurrency)
	}
	if p.Retry.MaxAttempts < 1 {
		return fmt.Errorf("publish retry attempts must be at least 1")
	}
	return nil
}
