package github

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testPrivateKeyPEM(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	block := &pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}
	return string(pem.EncodeToMemory(block))
}

func TestGenerateJWT(t *testing.T) {
	auth := &AppAuth{AppID: "123456", PrivateKey: testPrivateKeyPEM(t)}

	token, err := auth.GenerateJWT()
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if token == "" {
		t.Fatal("empty JWT")
	}
}

func TestGenerateJWTInvalidKey(t *testing.T) {
	auth := &AppAuth{AppID: "123456", PrivateKey: "not a pem"}
	if _, err := auth.GenerateJWT(); err == nil {
		t.Fatal("expected error for invalid private key")
	}
}

func TestGenerateJWTInvalidAppID(t *testing.T) {
	auth := &AppAuth{AppID: "not-a-number", PrivateKey: testPrivateKeyPEM(t)}
	if _, err := auth.GenerateJWT(); err == nil {
		t.Fatal("expected error for non-numeric app ID")
	}
}

func TestGetInstallationToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/org/repo/installation":
			json.NewEncoder(w).Encode(map[string]int64{"id": 99})
		case "/app/installations/99/access_tokens":
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]any{
				"token":      "ghs_test",
				"expires_at": time.Now().Add(time.Hour).Format(time.RFC3339),
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	orig := apiBase
	apiBase = srv.URL
	defer func() { apiBase = orig }()

	auth := &AppAuth{AppID: "123456", PrivateKey: testPrivateKeyPEM(t)}
	token, err := auth.GetInstallationToken("org/repo")
	if err != nil {
		t.Fatalf("GetInstallationToken: %v", err)
	}
	if token.Token != "ghs_test" {
		t.Errorf("token = %q", token.Token)
	}
	if !token.ExpiresAt.After(time.Now()) {
		t.Errorf("expiry in the past: %v", token.ExpiresAt)
	}
}

func TestGetInstallationTokenBadRepoFormat(t *testing.T) {
	auth := &AppAuth{AppID: "123456", PrivateKey: testPrivateKeyPEM(t)}
	if _, err := auth.GetInstallationToken("no-slash"); err == nil {
		t.Fatal("expected error for malformed repo")
	}
}
