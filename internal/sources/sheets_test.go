package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/stacklok/translations-sync/internal/config"
	"github.com/stacklok/translations-sync/internal/translations"
)

const valuesResponse = `{
  "range": "Translations!A1:D3",
  "majorDimension": "ROWS",
  "values": [
    ["key", "tags", "en", "de"],
    ["common.hello", "web", "Hello", "Hallo"],
    ["legal", "", "Terms", "AGB"]
  ]
}`

func newSheetsServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	server.Config.SetKeepAlivesEnabled(false)
	t.Cleanup(server.Close)
	return server
}

func writeTokenFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func validTokenFile(t *testing.T) string {
	t.Helper()
	expiry := time.Now().Add(time.Hour).UnixMilli()
	return writeTokenFile(t, fmt.Sprintf(
		`{"access_token":"stored-token","token_type":"Bearer","refresh_token":"r","expiry_date":%d}`, expiry))
}

func newSheetsConfig(baseURL, tokenPath string, maxTries uint) *config.Config {
	return &config.Config{
		Source: config.SourceConfig{Type: config.SourceTypeSheets},
		Sheets: config.SheetsConfig{
			ClientID:        "client-id",
			ClientSecret:    "client-secret",
			SpreadsheetID:   "sheet-123",
			SpreadsheetName: "Translations",
			RedirectURI:     "http://localhost/callback",
			TokenPath:       tokenPath,
			APIBaseURL:      baseURL,
		},
		SyncPolicy: config.SyncPolicyConfig{FetchMaxTries: maxTries, FetchTimeout: "5s"},
	}
}

func noWait() backoff.BackOff {
	return &backoff.ZeroBackOff{}
}

func TestSheetsSourceHandler_FetchDocument(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth, gotDimension string
	server := newSheetsServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotDimension = r.URL.Query().Get("majorDimension")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(valuesResponse))
	})

	handler := NewSheetsSourceHandler(WithBackOff(noWait))
	result, err := handler.FetchDocument(context.Background(), newSheetsConfig(server.URL, validTokenFile(t), 1))
	require.NoError(t, err)

	assert.Equal(t, "/v4/spreadsheets/sheet-123/values/Translations", gotPath)
	assert.Equal(t, "Bearer stored-token", gotAuth)
	assert.Equal(t, "ROWS", gotDimension)

	assert.Equal(t, FormatSheet, result.Format)
	assert.Equal(t, 4, result.KeyCount)
	assert.Equal(t, translations.Document{
		"en": map[string]any{"common": map[string]any{"hello": "Hello"}, "legal": "Terms"},
		"de": map[string]any{"common": map[string]any{"hello": "Hallo"}, "legal": "AGB"},
		translations.TagsKey: map[string]any{"common.hello": []any{"web"}},
	}, result.Document)

	hash, err := result.Document.Hash()
	require.NoError(t, err)
	assert.Equal(t, hash, result.Hash)
}

func TestSheetsSourceHandler_EscapesSheetName(t *testing.T) {
	t.Parallel()

	var gotRawPath string
	server := newSheetsServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotRawPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"values":[]}`))
	})

	cfg := newSheetsConfig(server.URL, validTokenFile(t), 1)
	cfg.Sheets.SpreadsheetName = "UI Strings/v2"

	result, err := NewSheetsSourceHandler().FetchDocument(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "/v4/spreadsheets/sheet-123/values/UI%20Strings%2Fv2", gotRawPath)
	assert.Empty(t, result.Document)
}

func TestSheetsSourceHandler_RefreshToken(t *testing.T) {
	t.Parallel()

	var refreshGrant string
	tokenServer := newSheetsServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		refreshGrant = r.PostForm.Get("refresh_token")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"fresh-token","token_type":"Bearer","expires_in":3600}`))
	})

	var gotAuth string
	server := newSheetsServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(valuesResponse))
	})

	cfg := newSheetsConfig(server.URL, "", 1)
	cfg.Sheets.RefreshToken = "refresh-me"

	handler := NewSheetsSourceHandler(WithOAuthEndpoint(oauth2.Endpoint{
		AuthURL:  tokenServer.URL + "/auth",
		TokenURL: tokenServer.URL + "/token",
	}))

	_, err := handler.FetchDocument(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "refresh-me", refreshGrant)
	assert.Equal(t, "Bearer fresh-token", gotAuth)
}

func TestSheetsSourceHandler_RejectedRefreshIsNotRetried(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	tokenServer := newSheetsServer(t, func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	})
	server := newSheetsServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(valuesResponse))
	})

	cfg := newSheetsConfig(server.URL, "", 3)
	cfg.Sheets.RefreshToken = "revoked"

	handler := NewSheetsSourceHandler(
		WithBackOff(noWait),
		WithOAuthEndpoint(oauth2.Endpoint{TokenURL: tokenServer.URL + "/token", AuthStyle: oauth2.AuthStyleInParams}),
	)

	_, err := handler.FetchDocument(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_grant")
	assert.Equal(t, int32(1), attempts.Load())
}

func TestSheetsSourceHandler_Retry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		maxTries      uint
		failures      int32
		status        int
		wantAttempts  int32
		expectError   bool
		errorContains string
	}{
		{
			name:         "recovers from transient failures",
			maxTries:     3,
			failures:     2,
			status:       http.StatusServiceUnavailable,
			wantAttempts: 3,
		},
		{
			name:          "gives up after max tries",
			maxTries:      2,
			failures:      10,
			status:        http.StatusInternalServerError,
			wantAttempts:  2,
			expectError:   true,
			errorContains: "HTTP 500",
		},
		{
			name:          "single try disables retries",
			maxTries:      1,
			failures:      10,
			status:        http.StatusTooManyRequests,
			wantAttempts:  1,
			expectError:   true,
			errorContains: "HTTP 429",
		},
		{
			name:          "client errors are permanent",
			maxTries:      3,
			failures:      10,
			status:        http.StatusNotFound,
			wantAttempts:  1,
			expectError:   true,
			errorContains: "HTTP 404",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var attempts atomic.Int32
			server := newSheetsServer(t, func(w http.ResponseWriter, _ *http.Request) {
				if attempts.Add(1) <= tt.failures {
					w.WriteHeader(tt.status)
					return
				}
				_, _ = w.Write([]byte(valuesResponse))
			})

			handler := NewSheetsSourceHandler(WithBackOff(noWait))
			result, err := handler.FetchDocument(context.Background(), newSheetsConfig(server.URL, validTokenFile(t), tt.maxTries))

			assert.Equal(t, tt.wantAttempts, attempts.Load())
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 4, result.KeyCount)
		})
	}
}

func TestSheetsSourceHandler_ConversionErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		body          string
		errorContains string
	}{
		{name: "invalid JSON", body: `{"values":[`, errorContains: "failed to parse spreadsheet values"},
		{name: "missing key column", body: `{"values":[["id","en"]]}`, errorContains: "no key column"},
		{name: "key conflict", body: `{"values":[["key","en"],["a","A"],["a.b","B"]]}`, errorContains: "conflict"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var attempts atomic.Int32
			server := newSheetsServer(t, func(w http.ResponseWriter, _ *http.Request) {
				attempts.Add(1)
				_, _ = w.Write([]byte(tt.body))
			})

			handler := NewSheetsSourceHandler(WithBackOff(noWait))
			_, err := handler.FetchDocument(context.Background(), newSheetsConfig(server.URL, validTokenFile(t), 3))

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
			assert.Equal(t, int32(1), attempts.Load())
		})
	}
}

func TestSheetsSourceHandler_Validate(t *testing.T) {
	t.Parallel()

	handler := NewSheetsSourceHandler()

	tests := []struct {
		name          string
		mutate        func(cfg *config.Config)
		errorContains string
	}{
		{name: "valid", mutate: func(*config.Config) {}},
		{
			name:          "wrong source type",
			mutate:        func(cfg *config.Config) { cfg.Source.Type = config.SourceTypeFile },
			errorContains: "invalid source type",
		},
		{
			name:          "missing spreadsheet id",
			mutate:        func(cfg *config.Config) { cfg.Sheets.SpreadsheetID = "" },
			errorContains: "spreadsheet id",
		},
		{
			name:          "missing spreadsheet name",
			mutate:        func(cfg *config.Config) { cfg.Sheets.SpreadsheetName = "" },
			errorContains: "spreadsheet name",
		},
		{
			name:          "missing API URL",
			mutate:        func(cfg *config.Config) { cfg.Sheets.APIBaseURL = "" },
			errorContains: "sheets API URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := newSheetsConfig("http://localhost", "token.json", 1)
			tt.mutate(cfg)

			err := handler.Validate(cfg)
			if tt.errorContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}

	assert.Error(t, handler.Validate(nil))
}

func TestLoadToken(t *testing.T) {
	t.Parallel()

	expiry := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name        string
		sheets      config.SheetsConfig
		tokenFile   string
		want        *oauth2.Token
		wantErr     error
		expectError bool
	}{
		{
			name:   "refresh token takes precedence",
			sheets: config.SheetsConfig{RefreshToken: "refresh", TokenPath: "/does/not/matter"},
			want:   &oauth2.Token{RefreshToken: "refresh"},
		},
		{
			name:      "oauth2 token file",
			tokenFile: `{"access_token":"a","token_type":"Bearer","refresh_token":"r","expiry":"2030-01-02T03:04:05Z"}`,
			want:      &oauth2.Token{AccessToken: "a", TokenType: "Bearer", RefreshToken: "r", Expiry: expiry},
		},
		{
			name:      "google client token file",
			tokenFile: fmt.Sprintf(`{"access_token":"a","refresh_token":"r","expiry_date":%d}`, expiry.UnixMilli()),
			want:      &oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: time.UnixMilli(expiry.UnixMilli())},
		},
		{
			name:      "empty token file",
			tokenFile: `{}`,
			wantErr:   ErrNoToken,
		},
		{
			name:        "corrupt token file",
			tokenFile:   `not json`,
			expectError: true,
		},
		{
			name:    "missing token file",
			sheets:  config.SheetsConfig{TokenPath: "/nonexistent/token.json"},
			wantErr: ErrNoToken,
		},
		{
			name:    "no token source",
			sheets:  config.SheetsConfig{},
			wantErr: ErrNoToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sheets := tt.sheets
			if tt.tokenFile != "" {
				sheets.TokenPath = writeTokenFile(t, tt.tokenFile)
			}

			token, err := loadToken(&sheets)

			if tt.wantErr != nil || tt.expectError {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.AccessToken, token.AccessToken)
			assert.Equal(t, tt.want.RefreshToken, token.RefreshToken)
			assert.Equal(t, tt.want.TokenType, token.TokenType)
			assert.True(t, tt.want.Expiry.Equal(token.Expiry))
		})
	}
}
