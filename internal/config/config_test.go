package config

import "testing"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"APP_ENV":                "test",
		"APP_PORT":               "8080",
		"DB_USER":                "app",
		"DB_HOST":                "localhost",
		"DB_PORT":                "3306",
		"DB_NAME":                "dock",
		"JWT_SECRET":             "secret",
		"ACCESS_TOKEN_TTL_MIN":   "15",
		"REFRESH_TOKEN_TTL_DAYS": "7",
		"BCRYPT_COST":            "10",
	} {
		t.Setenv(k, v)
	}
}

func TestLoadBackgroundDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg := Load()
	if cfg.SyncIntervalMin != 10 {
		t.Fatalf("expected sync interval 10, got %d", cfg.SyncIntervalMin)
	}
	if cfg.OccupationScanMin != 30 {
		t.Fatalf("expected occupation scan 30, got %d", cfg.OccupationScanMin)
	}
	if cfg.OccupationLimitHrs != 4 {
		t.Fatalf("expected occupation limit 4, got %d", cfg.OccupationLimitHrs)
	}
}

func TestLoadBackgroundOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SYNC_INTERVAL_MIN", "5")
	t.Setenv("OCCUPATION_SCAN_MIN", "60")
	t.Setenv("OCCUPATION_LIMIT_HOURS", "8")

	cfg := Load()
	if cfg.SyncIntervalMin != 5 || cfg.OccupationScanMin != 60 || cfg.OccupationLimitHrs != 8 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}
