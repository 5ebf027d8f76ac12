package config

import (
	"testing"
	"time"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("COGNITO_USER_POOL_ID", "us-east-1_pool")
	t.Setenv("COGNITO_APP_CLIENT_ID", "client")
	t.Setenv("COGNITO_APP_CLIENT_SECRET", "secret")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("COGNITO_JWKS_TTL", "30m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Port != 6543 {
		t.Errorf("Database.Port = %d, want 6543", cfg.Database.Port)
	}
	if cfg.Cognito.JWKSCacheTTL != 30*time.Minute {
		t.Errorf("JWKSCacheTTL = %v, want 30m", cfg.Cognito.JWKSCacheTTL)
	}
	if got := cfg.Cognito.Issuer("eu-west-1"); got != "https://cognito-idp.eu-west-1.amazonaws.com/us-east-1_pool" {
		t.Errorf("Issuer() = %q", got)
	}
}

func TestValidateRequiresCognito(t *testing.T) {
	cfg := &Config{Provisioning: ProvisioningConfig{TempPasswordLength: 6}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() should fail without Cognito settings")
	}
}

func TestEnvFallbacks(t *testing.T) {
	t.Setenv("SOME_DURATION", "soon")
	t.Setenv("SOME_BOOL", "yes")

	if got := getEnvDuration("SOME_DURATION", time.Minute); got != time.Minute {
		t.Errorf("getEnvDuration() = %v, want %v", got, time.Minute)
	}
	if got := getEnvBool("SOME_BOOL", true); !got {
		t.Errorf("getEnvBool() = %v, want true", got)
	}
	if got := getEnvInt("UNSET_INT", 7); got != 7 {
		t.Errorf("getEnvInt() = %d, want 7", got)
	}
}

func TestNotifxSender(t *testing.T) {
	n := NotifxConfig{FromAddress: "noreply@staffhub.local"}
	if got := n.Sender(); got != "noreply@staffhub.local" {
		t.Errorf("Sender() = %q, want bare address", got)
	}
	n.FromName = "Staffhub"
	if got := n.Sender(); got != `"Staffhub" <noreply@staffhub.local>` {
		t.Errorf("Sender() = %q", got)
	}
}
