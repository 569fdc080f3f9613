package entities

import (
	"testing"
	"time"
)

func TestRetryPolicyBackoff(t *testing.T) {
	policy := DefaultRetryPolicy()
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{4, 16 * time.Second},
		{10, 32 * time.Second}, // capped
	}
	for _, tt := range tests {
		if got := policy.Backoff(tt.attempt); got != tt.want {
			t.Errorf("Backoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestBoundaryExpired(t *testing.T) {
	fetched := time.Unix(1_700_000_000, 0)
	b := &Boundary{City: "barcelona", FetchedAt: fetched, TTL: time.Hour}

	if b.Expired(fetched.Add(59 * time.Minute)) {
		t.Error("boundary should be fresh before its TTL")
	}
	if !b.Expired(fetched.Add(time.Hour)) {
		t.Error("boundary should expire exactly at its TTL")
	}
}

func TestBoundingBoxContains(t *testing.T) {
	box := BoundingBox{MinLon: -31, MaxLon: 45, MinLat: 34, MaxLat: 72}
	tests := []struct {
		name     string
		lon, lat float64
		want     bool
	}{
		{"barcelona", 2.154007, 41.390205, true},
		{"edge inclusive", -31, 34, true},
		{"west of region", -70, 40, false},
		{"north of region", 10, 80, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := box.Contains(tt.lon, tt.lat); got != tt.want {
				t.Errorf("Contains(%v, %v) = %v, want %v", tt.lon, tt.lat, got, tt.want)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	broken := []func(*Config){
		func(c *Config) { c.Validation.PrecisionMin = 5; c.Validation.PrecisionMax = 2 },
		func(c *Config) { c.Validation.MaxFileSizeMB = 0 },
		func(c *Config) { c.Publish.DatasetPrefix = "" },
		func(c *Config) { c.Publish.Formats = nil },
		func(c *Config) { c.Publish.Concurrency = 0 },
	}
	for i, mutate := range broken {
		cfg := DefaultConfig()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("mutation %d should fail validation", i)
		}
	}
}

func TestCheckPassed(t *testing.T) {
	if !(Check{Status: CheckPass}).Passed() || !(Check{Status: CheckWarning}).Passed() {
		t.Error("pass and warning count as passed")
	}
	if (Check{Status: CheckFail}).Passed() || (Check{Status: CheckIndeterminate}).Passed() {
		t.Error("fail and indeterminate do not count as passed")
	}
}
