package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "DATABASE_URL", "NBOOT", "ALPHA", "SEED", "METHOD", "CALIBRATION_ITERS", "DATA_FILE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Analysis.NBoot != 599 || cfg.Analysis.Alpha != 0.05 || cfg.Analysis.Method != "ECP" {
		t.Fatalf("analysis defaults wrong: %+v", cfg.Analysis)
	}
	if cfg.Analysis.Seed != 42 || cfg.Analysis.CalibrationIters != 200 {
		t.Fatalf("analysis defaults wrong: %+v", cfg.Analysis)
	}
}

func TestLoad_OverridesFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("NBOOT", "999")
	t.Setenv("ALPHA", "0.01")
	t.Setenv("SEED", "7")
	t.Setenv("METHOD", "Hochberg")
	t.Setenv("CALIBRATION_ITERS", "50")
	t.Setenv("DATABASE_URL", "postgres://localhost/skipcorr")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9999" {
		t.Fatalf("port = %q, want 9999", cfg.Server.Port)
	}
	if cfg.Analysis.NBoot != 999 || cfg.Analysis.Alpha != 0.01 || cfg.Analysis.Seed != 7 {
		t.Fatalf("analysis overrides not applied: %+v", cfg.Analysis)
	}
	if cfg.Analysis.Method != "Hochberg" || cfg.Analysis.CalibrationIters != 50 {
		t.Fatalf("analysis overrides not applied: %+v", cfg.Analysis)
	}
	if cfg.Database.URL == "" {
		t.Fatal("database URL not read")
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("ALPHA", "1.5")
	if _, err := Load(); err == nil {
		t.Fatal("expected rejection of ALPHA=1.5")
	}

	t.Setenv("ALPHA", "0.05")
	t.Setenv("METHOD", "Bonferroni")
	if _, err := Load(); err == nil {
		t.Fatal("expected rejection of unknown METHOD")
	}

	t.Setenv("METHOD", "ECP")
	t.Setenv("NBOOT", "-5")
	if _, err := Load(); err == nil {
		t.Fatal("expected rejection of negative NBOOT")
	}
}
