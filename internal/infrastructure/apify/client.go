package apify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/voicecommerce/backend/internal/domain"
	"github.com/voicecommerce/backend/internal/observability"
)

const (
	defaultBaseURL       = "https://api.apify.com"
	defaultTimeout       = 60 * time.Second
	defaultMinFetchCount = 3
)

// ClientConfig holds the scraping actor settings.
type ClientConfig struct {
	Token         string
	Actor         string
	BaseURL       string
	Timeout       time.Duration // per payload candidate
	MinFetchCount int
	RatePerSecond float64
	Burst         int
}

// Client runs the Tokopedia scraping actor synchronously and maps its dataset items.
type Client struct {
	http          *resty.Client
	token         string
	actor         string
	baseURL       string
	timeout       time.Duration
	minFetchCount int
	rateLimiter   *rate.Limiter
	logger        zerolog.Logger
}

// payloadCandidate is one input shape the actor may accept. The actor's input schema is
// documented inconsistently, so shapes are tried in order.
type payloadCandidate struct {
	name string
	body map[string]any
}

// NewClient creates a new scraping actor client
func NewClient(cfg ClientConfig, logger zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MinFetchCount <= 0 {
		cfg.MinFetchCount = defaultMinFetchCount
	}

	// Every run is billed, so keep a modest ceiling on outbound calls.
	limit := rate.Limit(cfg.RatePerSecond)
	if cfg.RatePerSecond <= 0 {
		limit = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		http: resty.New().
			SetHeader("User-Agent", "VoiceCommerce/1.0").
			SetHeader("Accept", "application/json"),
		token:         cfg.Token,
		actor:         cfg.Actor,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		timeout:       cfg.Timeout,
		minFetchCount: cfg.MinFetchCount,
		rateLimiter:   rate.NewLimiter(limit, burst),
		logger:        logger,
	}
}

// Configured reports whether a token and an actor are available.
func (c *Client) Configured() bool {
	return c.token != "" && c.actor != ""
}

// FetchProducts searches the actor for keyword and returns up to limit normalized records.
// It returns ErrSearchNotConfigured without a token or actor, and ErrUpstreamFault when no
// payload candidate produced products. Callers treat both as an empty result.
func (c *Client) FetchProducts(ctx context.Context, keyword string, limit int) ([]domain.ProductRecord, error) {
	if !c.Configured() {
		return nil, domain.ErrSearchNotConfigured
	}

	fetchCount := max(c.minFetchCount, limit)
	if limit <= 0 {
		limit = fetchCount
	}

	c.logger.Debug().Str("keyword", keyword).Int("limit", limit).Msg("fetching products")

	var lastErr error
	for _, candidate := range payloadCandidates(keyword, fetchCount) {
		items, err := c.tryCandidate(ctx, candidate, limit)
		if err != nil {
			c.logger.Warn().Err(err).Str("candidate", candidate.name).Str("keyword", keyword).
				Msg("payload candidate failed")
			lastErr = err
			continue
		}

		c.logger.Info().Str("candidate", candidate.name).Str("keyword", keyword).
			Int("count", len(items)).Msg("products fetched")
		return items, nil
	}

	return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamFault, lastErr)
}

func payloadCandidates(keyword string, fetchCount int) []payloadCandidate {
	return []payloadCandidate{
		{name: "capitalized", body: map[string]any{"Query": []string{keyword}, "Limit": fetchCount}},
		{name: "lowercase", body: map[string]any{"query": []string{keyword}, "limit": fetchCount}},
	}
}

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/v2/acts/%s/run-sync-get-dataset-items", c.baseURL, url.PathEscape(c.actor))
}

// tryCandidate sends one payload shape within its own timeout and maps the dataset items.
func (c *Client) tryCandidate(ctx context.Context, candidate payloadCandidate, limit int) (items []domain.ProductRecord, err error) {
	start := time.Now()
	status := "success"
	defer func() {
		if err != nil {
			status = "error"
		}
		observability.RecordUpstreamRequest(candidate.name, status, time.Since(start).Seconds())
	}()

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("token", c.token).
		SetBody(candidate.body).
		Post(c.endpoint())
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode(), truncate(resp.String(), 200))
	}

	contentType := resp.Header().Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return nil, fmt.Errorf("%w: content type %q", domain.ErrInvalidPayload, contentType)
	}

	var data []any
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty dataset", domain.ErrInvalidPayload)
	}

	items = c.mapItems(data, limit)
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no product objects in dataset", domain.ErrInvalidPayload)
	}
	return items, nil
}

func (c *Client) mapItems(data []any, limit int) []domain.ProductRecord {
	if len(data) > limit {
		data = data[:limit]
	}

	items := make([]domain.ProductRecord, 0, len(data))
	for _, raw := range data {
		obj, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		record, err := MapToProductRecord(obj)
		if err != nil {
			observability.RecordFault(observability.FaultPriceParse)
			c.logger.Warn().Err(err).Str("name", record.Name).Msg("price fallback used")
		}
		items = append(items, record)
	}
	return items
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
