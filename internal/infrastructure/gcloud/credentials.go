// Package gcloud talks to the Google Cloud speech REST APIs.
package gcloud

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// CredentialsConfig says where service account credentials come from.
// JSON wins over File; with neither, application default credentials are used.
type CredentialsConfig struct {
	JSON string
	File string
}

// NewTokenSource resolves an OAuth2 token source for the speech APIs.
func NewTokenSource(ctx context.Context, cfg CredentialsConfig) (oauth2.TokenSource, error) {
	if cfg.JSON != "" {
		creds, err := google.CredentialsFromJSON(ctx, []byte(cfg.JSON), cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("failed to parse credentials json: %w", err)
		}
		return creds.TokenSource, nil
	}

	if cfg.File != "" {
		data, err := os.ReadFile(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, data, cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("failed to parse credentials file: %w", err)
		}
		return creds.TokenSource, nil
	}

	tokenSource, err := google.DefaultTokenSource(ctx, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("failed to create token source: %w", err)
	}
	return tokenSource, nil
}

// NewHTTPClient returns an http.Client that attaches a bearer token to every request.
func NewHTTPClient(ctx context.Context, ts oauth2.TokenSource) *http.Client {
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(nil, ts))
}

// MaterializeCredentials writes credentialsJSON to path so tools that only read key files can
// find it. An existing file is left alone. It returns the path holding the key, or "" when
// there is nothing to write.
func MaterializeCredentials(credentialsJSON, path string) (string, error) {
	if credentialsJSON == "" || path == "" {
		return "", nil
	}

	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to stat credentials file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("failed to create credentials dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(credentialsJSON), 0o600); err != nil {
		return "", fmt.Errorf("failed to write credentials file: %w", err)
	}
	return path, nil
}
