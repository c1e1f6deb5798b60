// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"testing"
)

func TestParseFlags_EnvVars(t *testing.T) {
	// Set env vars
	os.Setenv("PORT", "9000")
	os.Setenv("DATABASE_URL", "postgres://test")
	os.Setenv("HOST_KEY_SALT", "test-salt")
	os.Setenv("JOIN_CODE_SALT", "test-join")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("expected default database type postgres, got %s", cfg.DatabaseType)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	os.Setenv("PORT", "9000")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-t", "sqlite", "-host-salt", "s1", "-join-salt", "s2"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected sqlite, got %s", cfg.DatabaseType)
	}
}

func TestParseFlags_MissingSecrets(t *testing.T) {
	os.Clearenv()

	if _, err := ParseFlags([]string{"-d", "postgres://test"}); err == nil {
		t.Error("expected error when salts are missing")
	}
	if _, err := ParseFlags([]string{"-d", "postgres://test", "-host-salt", "s1"}); err == nil {
		t.Error("expected error when join salt is missing")
	}
}

func TestParseFlags_MissingDatabase(t *testing.T) {
	os.Clearenv()

	if _, err := ParseFlags([]string{"-host-salt", "s1", "-join-salt", "s2"}); err == nil {
		t.Error("expected error when database URL is missing")
	}
}
