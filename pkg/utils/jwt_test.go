package utils

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	SetSecret("test-secret")

	token, err := GenerateJWT("ops@example.com", RoleAdmin, time.Minute)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	r := httptest.NewRequest("POST", "/api/v1/admin/import", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	claims, err := ExtractClaims(r)
	if err != nil {
		t.Fatalf("ExtractClaims: %v", err)
	}
	if claims.Subject != "ops@example.com" || claims.Role != RoleAdmin {
		t.Fatalf("unexpected claims %+v", claims)
	}

	expired, _ := GenerateJWT("ops@example.com", RoleAdmin, -time.Minute)
	if _, err := ValidateJWT(expired); err == nil {
		t.Fatalf("expired token accepted")
	}

	SetSecret("another-secret")
	if _, err := ValidateJWT(token); err == nil {
		t.Fatalf("token signed with another secret accepted")
	}

	if _, err := ExtractClaims(httptest.NewRequest("GET", "/", nil)); err == nil {
		t.Fatalf("missing header accepted")
	}
}
