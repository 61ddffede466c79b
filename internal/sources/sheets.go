package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-logr/logr"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/stacklok/translations-sync/internal/config"
	"github.com/stacklok/translations-sync/internal/httpclient"
)

// SheetsReadOnlyScope is the OAuth2 scope granting read access to spreadsheets
const SheetsReadOnlyScope = "https://www.googleapis.com/auth/spreadsheets.readonly"

// ErrNoToken is returned when neither a refresh token nor a token file is available
var ErrNoToken = errors.New("no OAuth token available")

// sheetsSourceHandler handles translation data stored in a Google spreadsheet
type sheetsSourceHandler struct {
	endpoint   oauth2.Endpoint
	newBackOff func() backoff.BackOff
}

// SheetsOption configures the sheets source handler
type SheetsOption func(*sheetsSourceHandler)

// WithOAuthEndpoint overrides the OAuth2 endpoint used to refresh tokens
func WithOAuthEndpoint(endpoint oauth2.Endpoint) SheetsOption {
	return func(h *sheetsSourceHandler) {
		h.endpoint = endpoint
	}
}

// WithBackOff sets the backoff policy used between fetch attempts
func WithBackOff(newBackOff func() backoff.BackOff) SheetsOption {
	return func(h *sheetsSourceHandler) {
		h.newBackOff = newBackOff
	}
}

// NewSheetsSourceHandler creates a new Google Sheets source handler
func NewSheetsSourceHandler(opts ...SheetsOption) SourceHandler {
	h := &sheetsSourceHandler{
		endpoint: endpoints.Google,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Validate validates the sheets source configuration
func (*sheetsSourceHandler) Validate(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if cfg.Source.Type != config.SourceTypeSheets {
		return fmt.Errorf("invalid source type: expected %s, got %s",
			config.SourceTypeSheets, cfg.Source.Type)
	}

	if cfg.Sheets.SpreadsheetID == "" {
		return fmt.Errorf("spreadsheet id cannot be empty")
	}

	if cfg.Sheets.SpreadsheetName == "" {
		return fmt.Errorf("spreadsheet name cannot be empty")
	}

	if cfg.Sheets.APIBaseURL == "" {
		return fmt.Errorf("sheets API URL cannot be empty")
	}

	return nil
}

// FetchDocument reads the configured sheet and converts its rows to a translation document
func (h *sheetsSourceHandler) FetchDocument(ctx context.Context, cfg *config.Config) (*FetchResult, error) {
	logger := logr.FromContextOrDiscard(ctx)

	if err := h.Validate(cfg); err != nil {
		return nil, fmt.Errorf("source validation failed: %w", err)
	}

	client, err := h.newClient(ctx, &cfg.Sheets, cfg.SyncPolicy.GetFetchTimeout())
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	endpoint := valuesURL(&cfg.Sheets)
	maxTries := cfg.SyncPolicy.GetFetchMaxTries()

	data, err := backoff.Retry(ctx, func() ([]byte, error) {
		data, err := client.Get(ctx, endpoint)
		if err != nil {
			var retrieveErr *oauth2.RetrieveError
			if httpclient.IsPermanent(err) || errors.As(err, &retrieveErr) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return data, nil
	},
		backoff.WithBackOff(h.newBackOff()),
		backoff.WithMaxTries(maxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Info("Failed to fetch spreadsheet, retrying",
				"spreadsheet", cfg.Sheets.SpreadsheetName,
				"error", err.Error(),
				"retryIn", next.String())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch spreadsheet %s: %w", cfg.Sheets.SpreadsheetName, err)
	}

	rows, err := parseValues(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse spreadsheet values: %w", err)
	}

	doc, err := RowsToDocument(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to convert spreadsheet rows: %w", err)
	}

	logger.V(1).Info("Fetched spreadsheet",
		"spreadsheet", cfg.Sheets.SpreadsheetName,
		"rows", len(rows),
		"locales", len(doc.Locales()))

	return NewFetchResult(doc, FormatSheet)
}

// newClient builds an HTTP client authorized with the configured OAuth2 token
func (h *sheetsSourceHandler) newClient(
	ctx context.Context, sheets *config.SheetsConfig, timeout time.Duration,
) (httpclient.Client, error) {
	token, err := loadToken(sheets)
	if err != nil {
		return nil, err
	}

	oauthConfig := &oauth2.Config{
		ClientID:     sheets.ClientID,
		ClientSecret: sheets.ClientSecret,
		RedirectURL:  sheets.RedirectURI,
		Endpoint:     h.endpoint,
		Scopes:       []string{SheetsReadOnlyScope},
	}

	return httpclient.NewDefaultClient(timeout, httpclient.WithHTTPClient(oauthConfig.Client(ctx, token))), nil
}

// tokenFile is the stored token format. Both the oauth2 "expiry" timestamp
// and the millisecond "expiry_date" of Google client libraries are accepted.
type tokenFile struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	Expiry       time.Time `json:"expiry"`
	ExpiryDate   int64     `json:"expiry_date"`
}

// loadToken returns the configured refresh token, or the token stored at TokenPath
func loadToken(sheets *config.SheetsConfig) (*oauth2.Token, error) {
	if sheets.RefreshToken != "" {
		return &oauth2.Token{RefreshToken: sheets.RefreshToken}, nil
	}

	if sheets.TokenPath == "" {
		return nil, ErrNoToken
	}

	//nolint:gosec // Token path comes from configuration, this is expected behavior
	data, err := os.ReadFile(sheets.TokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: token file %s not found", ErrNoToken, sheets.TokenPath)
		}
		return nil, fmt.Errorf("failed to read token file %s: %w", sheets.TokenPath, err)
	}

	var stored tokenFile
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to parse token file %s: %w", sheets.TokenPath, err)
	}
	if stored.AccessToken == "" && stored.RefreshToken == "" {
		return nil, fmt.Errorf("%w: token file %s holds no token", ErrNoToken, sheets.TokenPath)
	}

	token := &oauth2.Token{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		TokenType:    stored.TokenType,
		Expiry:       stored.Expiry,
	}
	if token.Expiry.IsZero() && stored.ExpiryDate > 0 {
		token.Expiry = time.UnixMilli(stored.ExpiryDate)
	}
	return token, nil
}

// valuesURL builds the values endpoint of the configured sheet
func valuesURL(sheets *config.SheetsConfig) string {
	return fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s?majorDimension=ROWS",
		sheets.APIBaseURL,
		url.PathEscape(sheets.SpreadsheetID),
		url.PathEscape(sheets.SpreadsheetName))
}

// parseValues extracts the cell rows of a values API response.
// A response without values is an empty sheet.
func parseValues(data []byte) ([][]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("response is not valid JSON")
	}

	values := gjson.GetBytes(data, "values")
	if !values.Exists() {
		return nil, nil
	}
	if !values.IsArray() {
		return nil, fmt.Errorf("values must be an array, got %s", values.Type)
	}

	var rows [][]string
	for _, row := range values.Array() {
		cells := make([]string, 0, len(row.Array()))
		for _, c := range row.Array() {
			cells = append(cells, c.String())
		}
		rows = append(rows, cells)
	}
	return rows, nil
}
