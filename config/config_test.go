package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"DQSThreshold", cfg.DQSThreshold, 70.0},
		{"MaxFileSizeMB", cfg.MaxFileSizeMB, int64(15)},
		{"MaxUploadsPerHour", cfg.MaxUploadsPerHour, 50},
		{"MaxLLMCallsPerSession", cfg.MaxLLMCallsPerSession, 3},
		{"MaxCostPerSession", cfg.MaxCostPerSession, 0.50},
		{"LLMCoverageThreshold", cfg.LLMCoverageThreshold, 0.8},
		{"MinImageWidth", cfg.MinImageWidth, 800},
		{"MinImageHeight", cfg.MinImageHeight, 600},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("%s = %v, want %v", tc.name, tc.got, tc.want)
			}
		})
	}
}

func TestLoadEnvOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("MAX_UPLOADS_PER_HOUR", "25")
	os.Setenv("ENV", "production")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.MaxUploadsPerHour != 25 {
		t.Errorf("MaxUploadsPerHour = %d, want 25", cfg.MaxUploadsPerHour)
	}
	if !cfg.IsProduction() {
		t.Errorf("IsProduction() = false, want true")
	}
	if cfg.IsDevelopment() {
		t.Errorf("IsDevelopment() = true, want false")
	}
}

func TestModelPricingDefaults(t *testing.T) {
	os.Clearenv()
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if _, ok := cfg.ModelPricing["mini"]; !ok {
		t.Errorf("expected default pricing entry for %q", "mini")
	}
	if _, ok := cfg.ModelPricing["large"]; !ok {
		t.Errorf("expected default pricing entry for %q", "large")
	}
}
