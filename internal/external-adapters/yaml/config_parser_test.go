package yaml

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseEmptyConfigKeepsDefaults(t *testing.T) {
	cfg, err := NewConfigParser().Parse([]byte(""))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Validation.PrecisionMin != 3 || cfg.Validation.PrecisionMax != 12 {
		t.Errorf("precision window = [%d, %d], want defaults", cfg.Validation.PrecisionMin, cfg.Validation.PrecisionMax)
	}
	if cfg.Publish.DatasetPrefix != "reallocate-pilot" {
		t.Errorf("prefix = %q", cfg.Publish.DatasetPrefix)
	}
	if !cfg.Validation.IndeterminateBlocks {
		t.Error("indeterminate outcomes should block by default")
	}
	if cfg.Validation.BlockingQuality {
		t.Error("quality failures should be advisory by default")
	}
	if cfg.Validation.BoundaryTTL != time.Hour {
		t.Errorf("boundary TTL = %v, want 1h", cfg.Validation.BoundaryTTL)
	}
}

func TestParseOverrides(t *testing.T) {
	doc := `
validation:
  precision_min: 4
  max_feature_count: 500
  blocking_quality: true
  indeterminate_blocks: false
  boundary_ttl_seconds: 600
  macro_region_bounds:
    min_lon: -10
    max_lon: 30
    min_lat: 35
    max_lat: 60
  boundary_retry:
    max_attempts: 5
    base_delay_seconds: 2
publish:
  dataset_prefix: custom-prefix
  formats: [GeoJSON]
  only_publish_passing: false
  concurrency: 4
output:
  summary_json: out.json
`
	cfg, err := NewConfigParser().Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Validation.PrecisionMin != 4 {
		t.Errorf("precision_min = %d", cfg.Validation.PrecisionMin)
	}
	if cfg.Validation.PrecisionMax != 12 {
		t.Errorf("untouched precision_max = %d, want default 12", cfg.Validation.PrecisionMax)
	}
	if cfg.Validation.MaxFeatureCount != 500 {
		t.Errorf("max_feature_count = %d", cfg.Validation.MaxFeatureCount)
	}
	if !cfg.Validation.BlockingQuality || cfg.Validation.IndeterminateBlocks {
		t.Error("policy flags not applied")
	}
	if cfg.Validation.BoundaryTTL != 10*time.Minute {
		t.Errorf("boundary TTL = %v", cfg.Validation.BoundaryTTL)
	}
	if cfg.Validation.MacroRegionBounds.MinLon != -10 || cfg.Validation.MacroRegionBounds.MaxLat != 60 {
		t.Errorf("bounds = %+v", cfg.Validation.MacroRegionBounds)
	}
	if cfg.Validation.BoundaryRetry.MaxAttempts != 5 || cfg.Validation.BoundaryRetry.BaseDelay != 2*time.Second {
		t.Errorf("retry = %+v", cfg.Validation.BoundaryRetry)
	}
	if cfg.Publish.DatasetPrefix != "custom-prefix" {
		t.Errorf("prefix = %q", cfg.Publish.DatasetPrefix)
	}
	if len(cfg.Publish.Formats) != 1 || cfg.Publish.Formats[0] != "GeoJSON" {
		t.Errorf("formats = %v", cfg.Publish.Formats)
	}
	if cfg.Publish.OnlyPublishPassing {
		t.Error("only_publish_passing should be overridden to false")
	}
	if cfg.Publish.Concurrency != 4 {
		t.Errorf("concurrency = %d", cfg.Publish.Concurrency)
	}
	if cfg.Output.SummaryJSON != "out.json" {
		t.Errorf("summary_json = %q", cfg.Output.SummaryJSON)
	}
	if cfg.Output.ValidationReport != "validation_report.md" {
		t.Errorf("untouched validation_report = %q", cfg.Output.ValidationReport)
	}
}

func TestParseRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"inverted precision window", "validation:\n  precision_min: 10\n  precision_max: 2\n"},
		{"zero concurrency", "publish:\n  concurrency: 0\n"},
		{"empty formats keep defaults but zero size fails", "validation:\n  max_file_size_mb: 0\n"},
		{"malformed yaml", "validation: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewConfigParser().Parse([]byte(tt.doc)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("publish:\n  dataset_prefix: from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewConfigParser().ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if cfg.Publish.DatasetPrefix != "from-file" {
		t.Errorf("prefix = %q", cfg.Publish.DatasetPrefix)
	}

	if _, err := NewConfigParser().ParseFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file should error")
	}
}
