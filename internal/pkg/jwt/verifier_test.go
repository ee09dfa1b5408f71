package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key
}

func sign(t *testing.T, key *rsa.PrivateKey, claims Claims) string {
	t.Helper()
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func accessClaims() Claims {
	return Claims{
		IdentityID:     42,
		SessionPurpose: "access",
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    "fleet-app",
			Audience:  gojwt.ClaimStrings{"fleet-users"},
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestVerifyAccessToken(t *testing.T) {
	key := newKey(t)
	v := NewVerifier(&key.PublicKey, "fleet-app", "fleet-users")

	claims, err := v.VerifyAccessToken(sign(t, key, accessClaims()))
	if err != nil {
		t.Fatalf("VerifyAccessToken() error = %v", err)
	}
	if claims.IdentityID != 42 {
		t.Errorf("IdentityID = %d", claims.IdentityID)
	}
}

func TestVerifyAccessTokenRejects(t *testing.T) {
	key := newKey(t)
	other := newKey(t)
	v := NewVerifier(&key.PublicKey, "fleet-app", "fleet-users")

	expired := accessClaims()
	expired.ExpiresAt = gojwt.NewNumericDate(time.Now().Add(-time.Minute))
	wrongIssuer := accessClaims()
	wrongIssuer.Issuer = "someone-else"
	wrongAudience := accessClaims()
	wrongAudience.Audience = gojwt.ClaimStrings{"admins"}
	temp := accessClaims()
	temp.IsTemp = true
	refresh := accessClaims()
	refresh.SessionPurpose = "refresh"

	cases := map[string]string{
		"expired":        sign(t, key, expired),
		"wrong issuer":   sign(t, key, wrongIssuer),
		"wrong audience": sign(t, key, wrongAudience),
		"temporary":      sign(t, key, temp),
		"not access":     sign(t, key, refresh),
		"foreign key":    sign(t, other, accessClaims()),
		"garbage":        "not-a-token",
	}
	for name, token := range cases {
		if _, err := v.VerifyAccessToken(token); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadVerifier(t *testing.T) {
	key := newKey(t)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "public.pem")
	if err := os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), 0o600); err != nil {
		t.Fatal(err)
	}

	v, err := LoadVerifier(Config{PubPath: path, Issuer: "fleet-app", Audience: "fleet-users"})
	if err != nil {
		t.Fatalf("LoadVerifier() error = %v", err)
	}
	if _, err := v.VerifyAccessToken(sign(t, key, accessClaims())); err != nil {
		t.Errorf("VerifyAccessToken() error = %v", err)
	}

	if _, err := LoadVerifier(Config{PubPath: filepath.Join(t.TempDir(), "missing.pem")}); err == nil {
		t.Error("expected error for missing key file")
	}
}

func TestParseRSAPublicKeyPEMPKCS1(t *testing.T) {
	key := newKey(t)
	block := pem.EncodeToMemory(&pem.Block{Type: "RSA PUBLIC KEY", Bytes: x509.MarshalPKCS1PublicKey(&key.PublicKey)})
	pub, err := ParseRSAPublicKeyPEM(block)
	if err != nil {
		t.Fatalf("ParseRSAPublicKeyPEM() error = %v", err)
	}
	if pub.N.Cmp(key.PublicKey.N) != 0 {
		t.Error("parsed key differs")
	}
	if _, err := ParseRSAPublicKeyPEM([]byte("-----BEGIN CERTIFICATE-----\nAA==\n-----END CERTIFICATE-----\n")); err == nil {
		t.Error("expected error for wrong block type")
	}
}
