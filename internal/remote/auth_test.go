package remote_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/Abcdabansu666/TimeSheet/internal/remote"
)

func tokenServer(t *testing.T, grant *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		*grant = r.Form.Get("grant_type")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "fresh",
			"token_type":    "Bearer",
			"refresh_token": "r2",
			"expires_in":    3600,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTokenSourceClientCredentials(t *testing.T) {
	var grant string
	srv := tokenServer(t, &grant)

	ts, err := remote.TokenSource(context.Background(), remote.AuthConfig{
		ClientID:     "id",
		ClientSecret: "shh",
		TokenURL:     srv.URL,
	}, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	tok, err := ts.Token()
	if err != nil {
		t.Fatal(err)
	}
	if tok.AccessToken != "fresh" || grant != "client_credentials" {
		t.Errorf("token = %q, grant = %q", tok.AccessToken, grant)
	}
}

func TestTokenSourceRefreshesCachedToken(t *testing.T) {
	var grant string
	srv := tokenServer(t, &grant)

	tokenFile := filepath.Join(t.TempDir(), "auth", "tokens.json")
	if err := os.MkdirAll(filepath.Dir(tokenFile), 0o700); err != nil {
		t.Fatal(err)
	}
	expired := &oauth2.Token{AccessToken: "old", RefreshToken: "r1", Expiry: time.Now().Add(-time.Hour)}
	data, _ := json.Marshal(expired)
	if err := os.WriteFile(tokenFile, data, 0o600); err != nil {
		t.Fatal(err)
	}

	ts, err := remote.TokenSource(context.Background(), remote.AuthConfig{
		ClientID:  "id",
		TokenURL:  srv.URL,
		TokenFile: tokenFile,
	}, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	tok, err := ts.Token()
	if err != nil {
		t.Fatal(err)
	}
	if tok.AccessToken != "fresh" || grant != "refresh_token" {
		t.Errorf("token = %q, grant = %q", tok.AccessToken, grant)
	}

	saved, err := os.ReadFile(tokenFile)
	if err != nil {
		t.Fatal(err)
	}
	var cached oauth2.Token
	if err := json.Unmarshal(saved, &cached); err != nil || cached.AccessToken != "fresh" {
		t.Errorf("cached token = %+v, %v", cached, err)
	}
}

func TestTokenSourceNeedsEndpoints(t *testing.T) {
	if _, err := remote.TokenSource(context.Background(), remote.AuthConfig{}, &bytes.Buffer{}); err == nil {
		t.Error("expected error without token_url")
	}
	_, err := remote.TokenSource(context.Background(), remote.AuthConfig{
		TokenURL:  "http://127.0.0.1:0/token",
		TokenFile: filepath.Join(t.TempDir(), "none.json"),
	}, &bytes.Buffer{})
	if err == nil {
		t.Error("expected error without secret or device_auth_url")
	}
}
