package config

import (
	"strings"
	"testing"
)

func TestEnsureDSNKeepsExplicitValue(t *testing.T) {
	t.Parallel()

	cfg := DBConfig{DSN: "postgres://app:secret@db:5432/orders"}
	if err := cfg.ensureDSN(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DSN != "postgres://app:secret@db:5432/orders" {
		t.Fatalf("dsn changed: %s", cfg.DSN)
	}
}

func TestEnsureDSNAssemblesLegacyParts(t *testing.T) {
	t.Parallel()

	cfg := DBConfig{
		LegacyHost:     "localhost",
		LegacyPort:     5432,
		LegacyUser:     "app",
		LegacyPassword: "secret",
		LegacyName:     "orders",
		LegacySSLMode:  "disable",
	}
	if err := cfg.ensureDSN(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, fragment := range []string{"postgres://", "app:secret@", "localhost:5432", "/orders", "sslmode=disable"} {
		if !strings.Contains(cfg.DSN, fragment) {
			t.Fatalf("dsn %q missing %q", cfg.DSN, fragment)
		}
	}
}

func TestEnsureDSNReportsMissingParts(t *testing.T) {
	t.Parallel()

	cfg := DBConfig{LegacyHost: "localhost"}
	err := cfg.ensureDSN()
	if err == nil {
		t.Fatal("expected error for incomplete legacy config")
	}
	if !strings.Contains(err.Error(), "ECOREACT_DB_USER") || !strings.Contains(err.Error(), "ECOREACT_DB_NAME") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestRefreshTokenTTL(t *testing.T) {
	t.Parallel()

	cfg := JWTConfig{RefreshTokenTTLMinutes: 2}
	if cfg.RefreshTokenTTL().Minutes() != 2 {
		t.Fatalf("unexpected ttl %s", cfg.RefreshTokenTTL())
	}
	if (JWTConfig{}).RefreshTokenTTL() != 0 {
		t.Fatal("expected zero ttl when unset")
	}
}
