package utils

import (
	"testing"
	"time"
)

func TestJwtGenerateDefaultsLifespan(t *testing.T) {
	t.Setenv("TOKEN_HOUR_LIFESPAN", "")

	token, err := JwtGenerate(7, "admin")
	if err != nil {
		t.Fatalf("JwtGenerate without TOKEN_HOUR_LIFESPAN: %v", err)
	}

	parsed, err := JwtValidate(token)
	if err != nil {
		t.Fatalf("JwtValidate: %v", err)
	}
	claims, ok := parsed.Claims.(*JwtCustomClaim)
	if !ok || !parsed.Valid {
		t.Fatalf("unexpected claims: %#v valid=%v", parsed.Claims, parsed.Valid)
	}
	if claims.ID != 7 || claims.Role != "admin" {
		t.Fatalf("claims = id %d role %q; want id 7 role admin", claims.ID, claims.Role)
	}

	// default lifespan is 24h
	expiry := time.Unix(claims.ExpiresAt, 0)
	if expiry.Before(time.Now().Add(23 * time.Hour)) {
		t.Fatalf("expiry = %v; want about 24h out", expiry)
	}
	if expiry.After(time.Now().Add(25 * time.Hour)) {
		t.Fatalf("expiry = %v; want about 24h out", expiry)
	}
}

func TestJwtGenerateHonorsLifespanEnv(t *testing.T) {
	t.Setenv("TOKEN_HOUR_LIFESPAN", "2")

	token, err := JwtGenerate(1, "viewer")
	if err != nil {
		t.Fatalf("JwtGenerate: %v", err)
	}
	parsed, err := JwtValidate(token)
	if err != nil {
		t.Fatalf("JwtValidate: %v", err)
	}
	claims := parsed.Claims.(*JwtCustomClaim)
	expiry := time.Unix(claims.ExpiresAt, 0)
	if expiry.After(time.Now().Add(3 * time.Hour)) {
		t.Fatalf("expiry = %v; want about 2h out", expiry)
	}
}
