package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/f3rmion/manchu/internal/manchu"
)

// Supabase is a read-only Store backed by a Supabase project's REST API.
type Supabase struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// supabaseEntry mirrors a manchu_entries row; nullable columns are pointers.
type supabaseEntry struct {
	ID          int64   `json:"id"`
	ManchuText  string  `json:"manchu_text"`
	LatinText   string  `json:"latin_text"`
	EnglishText *string `json:"english_text"`
	ImageURL    *string `json:"image_url"`
	Source      *string `json:"source"`
}

type supabaseUntranslated struct {
	ID          int64   `json:"id"`
	ImageURL    string  `json:"image_url"`
	SourceLink  *string `json:"source_link"`
	Description *string `json:"description"`
}

// postgrestError is the error body returned by PostgREST.
type postgrestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// NewSupabase creates a client for the project at baseURL (https://<ref>.supabase.co).
func NewSupabase(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) (*Supabase, error) {
	if baseURL == "" {
		return nil, errors.New("supabase url not set (SUPABASE_URL)")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("supabase key not set (SUPABASE_KEY)")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Supabase{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "store", "backend", "supabase"),
	}, nil
}

// Close implements Store.
func (s *Supabase) Close() error { return nil }

// quoteFilterValue quotes a value for use inside a PostgREST or=() filter,
// where commas and parentheses are otherwise reserved.
func quoteFilterValue(v string) string {
	v = strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(v)
	return `"` + v + `"`
}

// Search implements Store using ilike over the three text columns.
func (s *Supabase) Search(ctx context.Context, query string) ([]manchu.Record, error) {
	pattern := quoteFilterValue("*" + query + "*")

	params := url.Values{}
	params.Set("select", "id,manchu_text,latin_text,english_text,image_url,source")
	params.Set("or", fmt.Sprintf("(english_text.ilike.%s,latin_text.ilike.%s,manchu_text.ilike.%s)", pattern, pattern, pattern))
	params.Set("order", "id.asc")

	var rows []supabaseEntry
	if err := s.get(ctx, tableEntries, params, &rows); err != nil {
		return nil, fmt.Errorf("searching entries: %w", err)
	}

	s.logger.Debug("search", slog.String("query", query), slog.Int("results", len(rows)))
	return toRecords(rows), nil
}

// ListTranslated implements Store.
func (s *Supabase) ListTranslated(ctx context.Context) ([]manchu.Record, error) {
	params := url.Values{}
	params.Set("select", "id,manchu_text,latin_text,english_text,image_url,source")
	params.Set("order", "id.asc")

	var rows []supabaseEntry
	if err := s.get(ctx, tableEntries, params, &rows); err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	return toRecords(rows), nil
}

// ListUntranslated implements Store.
func (s *Supabase) ListUntranslated(ctx context.Context) ([]manchu.UntranslatedRecord, error) {
	params := url.Values{}
	params.Set("select", "id,image_url,source_link,description")
	params.Set("order", "id.asc")

	var rows []supabaseUntranslated
	if err := s.get(ctx, tableUntranslated, params, &rows); err != nil {
		return nil, fmt.Errorf("listing untranslated entries: %w", err)
	}

	out := make([]manchu.UntranslatedRecord, len(rows))
	for i, r := range rows {
		out[i] = manchu.UntranslatedRecord{
			ID:          r.ID,
			ImageURL:    r.ImageURL,
			SourceLink:  deref(r.SourceLink),
			Description: deref(r.Description),
		}
	}
	return out, nil
}

func (s *Supabase) get(ctx context.Context, table string, params url.Values, dst any) error {
	endpoint := s.baseURL + "/rest/v1/" + table + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var pe postgrestError
		if json.Unmarshal(body, &pe) == nil && pe.Message != "" {
			return fmt.Errorf("supabase error %s (status %d): %s", pe.Code, resp.StatusCode, pe.Message)
		}
		return fmt.Errorf("supabase returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("unmarshaling response: %w", err)
	}
	return nil
}

func toRecords(rows []supabaseEntry) []manchu.Record {
	out := make([]manchu.Record, len(rows))
	for i, r := range rows {
		out[i] = manchu.Record{
			ID:          r.ID,
			ManchuText:  r.ManchuText,
			LatinText:   r.LatinText,
			EnglishText: deref(r.EnglishText),
			ImageURL:    deref(r.ImageURL),
			Source:      deref(r.Source),
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
