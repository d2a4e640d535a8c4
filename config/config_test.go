package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	os.Clearenv()

	cfg := Load()

	if cfg.DBHost != "localhost" {
		t.Errorf("DBHost = %q, want localhost", cfg.DBHost)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DefaultWindowDays != 30 {
		t.Errorf("DefaultWindowDays = %d, want 30", cfg.DefaultWindowDays)
	}
	if cfg.DefaultPageSize != 20 {
		t.Errorf("DefaultPageSize = %d, want 20", cfg.DefaultPageSize)
	}
	if cfg.TopTermsLimit != 10 {
		t.Errorf("TopTermsLimit = %d, want 10", cfg.TopTermsLimit)
	}
	if len(cfg.FeatureStoplist) == 0 {
		t.Error("FeatureStoplist is empty, want default noise terms")
	}
}

func TestLoadOverrides(t *testing.T) {
	os.Clearenv()
	os.Setenv("DB_HOST", "db.internal")
	os.Setenv("DEFAULT_WINDOW_DAYS", "7")
	os.Setenv("FEATURE_STOPLIST", "alpha, beta , ,gamma")
	defer os.Clearenv()

	cfg := Load()

	if cfg.DBHost != "db.internal" {
		t.Errorf("DBHost = %q, want db.internal", cfg.DBHost)
	}
	if cfg.DefaultWindowDays != 7 {
		t.Errorf("DefaultWindowDays = %d, want 7", cfg.DefaultWindowDays)
	}
	if len(cfg.FeatureStoplist) != 3 {
		t.Fatalf("FeatureStoplist = %v, want 3 cleaned entries", cfg.FeatureStoplist)
	}
	if cfg.FeatureStoplist[1] != "beta" {
		t.Errorf("FeatureStoplist[1] = %q, want beta", cfg.FeatureStoplist[1])
	}
}

func TestLoadBadIntFallsBack(t *testing.T) {
	os.Clearenv()
	os.Setenv("DEFAULT_WINDOW_DAYS", "not-a-number")
	defer os.Clearenv()

	cfg := Load()

	if cfg.DefaultWindowDays != 30 {
		t.Errorf("DefaultWindowDays = %d, want default 30 for unparsable value", cfg.DefaultWindowDays)
	}
}

func TestStoplistSet(t *testing.T) {
	set := StoplistSet([]string{"HTTPS", "Pricing"})

	if _, ok := set["https"]; !ok {
		t.Error("StoplistSet() missing lowercased https")
	}
	if _, ok := set["pricing"]; !ok {
		t.Error("StoplistSet() missing lowercased pricing")
	}
	if len(set) != 2 {
		t.Errorf("StoplistSet() has %d entries, want 2", len(set))
	}
}
