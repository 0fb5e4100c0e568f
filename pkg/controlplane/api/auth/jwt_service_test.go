package auth

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "test-secret-key-must-be-32-chars!"

func newTestService(t *testing.T) *JWTService {
	t.Helper()
	service, err := NewJWTService(JWTConfig{
		Secret:               testSecret,
		Issuer:               "test-issuer",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: 7 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("NewJWTService() failed: %v", err)
	}
	return service
}

func TestNewJWTService_ShortSecret(t *testing.T) {
	for _, secret := range []string{"", "short"} {
		if _, err := NewJWTService(JWTConfig{Secret: secret}); !errors.Is(err, ErrInvalidSecretLength) {
			t.Errorf("secret %q: expected ErrInvalidSecretLength, got %v", secret, err)
		}
	}
}

func TestNewJWTService_Defaults(t *testing.T) {
	service, err := NewJWTService(JWTConfig{Secret: testSecret})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if service.config.Issuer != "ecfs" {
		t.Errorf("Expected issuer 'ecfs', got %q", service.config.Issuer)
	}
	if service.GetAccessTokenDuration() != 15*time.Minute {
		t.Errorf("Expected 15m access tokens, got %v", service.GetAccessTokenDuration())
	}
}

func TestGenerateTokenPair(t *testing.T) {
	service := newTestService(t)

	tokenPair, err := service.GenerateTokenPair("alice", RoleAdmin)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if tokenPair.AccessToken == "" || tokenPair.RefreshToken == "" {
		t.Error("Expected non-empty tokens")
	}
	if tokenPair.TokenType != "Bearer" {
		t.Errorf("Expected TokenType 'Bearer', got '%s'", tokenPair.TokenType)
	}
	if tokenPair.ExpiresIn != int64(15*time.Minute/time.Second) {
		t.Errorf("Expected ExpiresIn %d, got %d", int64(15*time.Minute/time.Second), tokenPair.ExpiresIn)
	}

	claims, err := service.ValidateAccessToken(tokenPair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken() failed: %v", err)
	}
	if claims.Subject != "alice" || !claims.IsAdmin() {
		t.Errorf("unexpected claims: subject=%q role=%q", claims.Subject, claims.Role)
	}

	refresh, err := service.ValidateRefreshToken(tokenPair.RefreshToken)
	if err != nil {
		t.Fatalf("ValidateRefreshToken() failed: %v", err)
	}
	if refresh.TokenType != TokenTypeRefresh {
		t.Errorf("Expected token type 'refresh', got '%s'", refresh.TokenType)
	}
}

func TestGenerateTokenPair_InvalidInput(t *testing.T) {
	service := newTestService(t)

	if _, err := service.GenerateTokenPair("", RoleUser); err == nil {
		t.Error("Expected error for empty subject")
	}
	if _, err := service.GenerateTokenPair("bob", Role("root")); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("Expected ErrInvalidRole, got %v", err)
	}
}

func TestGenerateAccessToken_CustomTTL(t *testing.T) {
	service := newTestService(t)

	token, expiresAt, err := service.GenerateAccessToken("ci-pipeline", RoleUser, 24*time.Hour)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if time.Until(expiresAt) < 23*time.Hour {
		t.Errorf("Expected expiry about 24h away, got %v", expiresAt)
	}

	claims, err := service.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken() failed: %v", err)
	}
	if claims.IsAdmin() {
		t.Error("Expected a non-admin token")
	}
}

func TestValidateToken_Failures(t *testing.T) {
	service := newTestService(t)
	pair, _ := service.GenerateTokenPair("alice", RoleUser)

	if _, err := service.ValidateAccessToken("invalid-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
	if _, err := service.ValidateAccessToken(pair.RefreshToken); !errors.Is(err, ErrInvalidTokenType) {
		t.Errorf("Expected ErrInvalidTokenType, got %v", err)
	}
	if _, err := service.ValidateRefreshToken(pair.AccessToken); !errors.Is(err, ErrInvalidTokenType) {
		t.Errorf("Expected ErrInvalidTokenType, got %v", err)
	}

	other, _ := NewJWTService(JWTConfig{Secret: "another-secret-key-must-be-32-chars", Issuer: "test-issuer"})
	if _, err := other.ValidateAccessToken(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for foreign signature, got %v", err)
	}

	wrongIssuer, _ := NewJWTService(JWTConfig{Secret: testSecret, Issuer: "someone-else"})
	if _, err := wrongIssuer.ValidateAccessToken(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for wrong issuer, got %v", err)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	service := newTestService(t)

	now := time.Now()
	token, err := service.generateToken("alice", RoleUser, TokenTypeAccess, now.Add(-2*time.Hour), now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("generateToken() failed: %v", err)
	}
	if _, err := service.ValidateAccessToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Expected ErrExpiredToken, got %v", err)
	}
}

func TestClaims_IsAdmin(t *testing.T) {
	tests := []struct {
		role     Role
		expected bool
	}{
		{"admin", true},
		{"user", false},
		{"", false},
		{"Admin", false}, // Case-sensitive
	}

	for _, tc := range tests {
		claims := &Claims{Role: tc.role}
		if claims.IsAdmin() != tc.expected {
			t.Errorf("IsAdmin() for role '%s': expected %v, got %v", tc.role, tc.expected, claims.IsAdmin())
		}
	}
}
