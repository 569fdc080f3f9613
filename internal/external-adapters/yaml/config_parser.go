// Package yaml provides YAML-based configuration parsing.
package yaml

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/reallocate-eu/geoflow/internal/domain/entities"
)

// yamlConfig represents the raw YAML structure. Unset fields keep the
// corresponding default, so partial files work.
type yamlConfig struct {
	Validation yamlValidation `yaml:"validation"`
	Publish    yamlPublish    `yaml:"publish"`
	Output     yamlOutput     `yaml:"output"`
}

type yamlValidation struct {
	PrecisionMin        *int        `yaml:"precision_min"`
	PrecisionMax        *int        `yaml:"precision_max"`
	CoordinateSample    *int        `yaml:"coordinate_sample"`
	Bounds              *yamlBounds `yaml:"macro_region_bounds"`
	MinFeatureCount     *int        `yaml:"min_feature_count"`
	MaxFeatureCount     *int        `yaml:"max_feature_count"`
	MaxFileSizeMB       *int        `yaml:"max_file_size_mb"`
	BlockingQuality     *bool       `yaml:"blocking_quality"`
	IndeterminateBlocks *bool       `yaml:"indeterminate_blocks"`
	BoundaryTTLSeconds  *int        `yaml:"boundary_ttl_seconds"`
	BoundaryMaxEntries  *int        `yaml:"boundary_max_entries"`
	BoundaryTimeoutSecs *int        `yaml:"boundary_timeout_seconds"`
	BoundaryRetry       *yamlRetry  `yaml:"boundary_retry"`
}

type yamlBounds struct {
	MinLon float64 `yaml:"min_lon"`
	MaxLon float64 `yaml:"max_lon"`
	MinLat float64 `yaml:"min_lat"`
	MaxLat float64 `yaml:"max_lat"`
}

type yamlRetry struct {
	MaxAttempts     *int     `yaml:"max_attempts"`
	BaseDelaySecs   *int     `yaml:"base_delay_seconds"`
	Multiplier      *float64 `yaml:"multiplier"`
	MaxDelaySeconds *int     `yaml:"max_delay_seconds"`
}

type yamlPublish struct {
	DatasetPrefix      string     `yaml:"dataset_prefix"`
	Formats            []string   `yaml:"formats"`
	OnlyPublishPassing *bool      `yaml:"only_publish_passing"`
	PrivateDatasets    *bool      `yaml:"private_datasets"`
	Concurrency        *int       `yaml:"concurrency"`
	RequestTimeoutSecs *int       `yaml:"request_timeout_seconds"`
	Retry              *yamlRetry `yaml:"retry"`
}

type yamlOutput struct {
	ValidationReport string `yaml:"validation_report"`
	PublishReport    string `yaml:"publish_report"`
	SummaryJSON      string `yaml:"summary_json"`
}

// ConfigParser parses YAML workflow configuration files
type ConfigParser struct{}

// NewConfigParser creates a new YAML parser
func NewConfigParser() *ConfigParser {
	return &ConfigParser{}
}

// ParseFile parses a YAML configuration file, layering it over the
// defaults and validating the result.
func (p *ConfigParser) ParseFile(filePath string) (*entities.Config, error) {
	//nolint:gosec // G304: filePath is a user-supplied config path
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}
	return p.Parse(data)
}

// Parse parses YAML configuration bytes over the defaults
func (p *ConfigParser) Parse(data []byte) (*entities.Config, error) {
	var raw yamlConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg := entities.DefaultConfig()
	applyValidation(&cfg.Validation, raw.Validation)
	applyPublish(&cfg.Publish, raw.Publish)
	applyOutput(&cfg.Output, raw.Output)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyValidation(dst *entities.ValidationConfig, src yamlValidation) {
	setInt(&dst.PrecisionMin, src.PrecisionMin)
	setInt(&dst.PrecisionMax, src.PrecisionMax)
	setInt(&dst.CoordinateSample, src.CoordinateSample)
	if src.Bounds != nil {
		dst.MacroRegionBounds = entities.BoundingBox{
			MinLon: src.Bounds.MinLon,
			MaxLon: src.Bounds.MaxLon,
			MinLat: src.Bounds.MinLat,
			MaxLat: src.Bounds.MaxLat,
		}
	}
	setInt(&dst.MinFeatureCount, src.MinFeatureCount)
	setInt(&dst.MaxFeatureCount, src.MaxFeatureCount)
	setInt(&dst.MaxFileSizeMB, src.MaxFileSizeMB)
	setBool(&dst.BlockingQuality, src.BlockingQuality)
	setBool(&dst.IndeterminateBlocks, src.IndeterminateBlocks)
	setSeconds(&dst.BoundaryTTL, src.BoundaryTTLSeconds)
	setInt(&dst.BoundaryMaxEntries, src.BoundaryMaxEntries)
	setSeconds(&dst.BoundaryTimeout, src.BoundaryTimeoutSecs)
	applyRetry(&dst.BoundaryRetry, src.BoundaryRetry)
}

func applyPublish(dst *entities.PublishConfig, src yamlPublish) {
	if src.DatasetPrefix != "" {
		dst.DatasetPrefix = src.DatasetPrefix
	}
	if len(src.Formats) > 0 {
		dst.Formats = src.Formats
	}
	setBool(&dst.OnlyPublishPassing, src.OnlyPublishPassing)
	setBool(&dst.PrivateDatasets, src.PrivateDatasets)
	setInt(&dst.Concurrency, src.Concurrency)
	setSeconds(&dst.RequestTimeout, src.RequestTimeoutSecs)
	applyRetry(&dst.Retry, src.Retry)
}

func applyOutput(dst *entities.OutputConfig, src yamlOutput) {
	if src.ValidationReport != "" {
		dst.ValidationReport = src.ValidationReport
	}
	if src.PublishReport != "" {
		dst.PublishReport = src.PublishReport
	}
	if src.SummaryJSON != "" {
		dst.SummaryJSON = src.SummaryJSON
	}
}

func applyRetry(dst *entities.RetryPolicy, src *yamlRetry) {
	if src == nil {
		return
	}
	setInt(&dst.MaxAttempts, src.MaxAttempts)
	setSeconds(&dst.BaseDelay, src.BaseDelaySecs)
	if src.Multiplier != nil {
		dst.Multiplier = *src.Multiplier
	}
	setSeconds(&dst.MaxDelay, src.MaxDelaySeconds)
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setSeconds(dst *time.Duration, src *int) {
	if src != nil {
		*dst = time.Duration(*src) * time.Second
	}
}
