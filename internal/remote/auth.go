package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// AuthConfig describes how to obtain tokens for the document store.
type AuthConfig struct {
	ClientID      string
	ClientSecret  string
	TokenURL      string
	DeviceAuthURL string
	Scopes        []string

	// TokenFile caches device-flow tokens between runs, usually
	// ~/.timesheet/auth/tokens.json.
	TokenFile string
}

func (c AuthConfig) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID: c.ClientID,
		Scopes:   c.Scopes,
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: c.DeviceAuthURL,
			TokenURL:      c.TokenURL,
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
}

// loadToken reads the cached token. A missing file yields nil, nil.
func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to re-authenticate): %w", path, err)
	}
	return &tok, nil
}

// saveToken writes tok to path atomically.
func saveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling token: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving token file: %w", err)
	}
	return nil
}

// savingTokenSource persists every token it hands out.
type savingTokenSource struct {
	ts   oauth2.TokenSource
	path string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return nil, err
	}
	// Best-effort save; ignore errors.
	_ = saveToken(s.path, tok)
	return tok, nil
}

// TokenSource returns a token source for cfg. With a client secret the
// client-credentials grant is used. Otherwise a cached token is reused or
// refreshed, and when neither works the device-code flow runs, printing its
// instructions to prompt.
func TokenSource(ctx context.Context, cfg AuthConfig, prompt io.Writer) (oauth2.TokenSource, error) {
	if cfg.TokenURL == "" {
		return nil, errors.New("remote auth needs a token_url")
	}
	if cfg.ClientSecret != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		return cc.TokenSource(ctx), nil
	}

	oc := cfg.oauth2Config()
	tok, err := loadToken(cfg.TokenFile)
	if err != nil {
		fmt.Fprintf(prompt, "Warning: %v\n", err)
		tok = nil
	}

	if tok != nil && (tok.Valid() || tok.RefreshToken != "") {
		ts := oc.TokenSource(ctx, tok)
		_, err := ts.Token()
		if err == nil {
			return &savingTokenSource{ts: ts, path: cfg.TokenFile}, nil
		}
		fmt.Fprintf(prompt, "Token refresh failed (%v), re-authenticating...\n", err)
	}

	if cfg.DeviceAuthURL == "" {
		return nil, errors.New("remote auth needs a client_secret or a device_auth_url")
	}
	resp, err := oc.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("device auth request failed: %w", err)
	}

	fmt.Fprintln(prompt)
	fmt.Fprintln(prompt, "To sign in, use a web browser to open the page:")
	fmt.Fprintf(prompt, "  %s\n", resp.VerificationURI)
	fmt.Fprintf(prompt, "Enter the code: %s\n", resp.UserCode)
	fmt.Fprintln(prompt)

	newTok, err := oc.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("device authentication failed: %w", err)
	}
	if err := saveToken(cfg.TokenFile, newTok); err != nil {
		fmt.Fprintf(prompt, "Warning: could not save token: %v\n", err)
	}
	return &savingTokenSource{ts: oc.TokenSource(ctx, newTok), path: cfg.TokenFile}, nil
}
