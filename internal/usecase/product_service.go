package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/voicecommerce/backend/internal/domain"
	"github.com/voicecommerce/backend/internal/observability"
)

const (
	// DefaultResultLimit is the number of products returned when the caller gives no limit
	DefaultResultLimit = 3

	// DefaultMinFetchCount floors every upstream fetch; each actor run is billed, so fetching a
	// few extra products per run lets later lookups be served from the cache.
	DefaultMinFetchCount = 3
)

// ProductServiceConfig holds configuration for the product service
type ProductServiceConfig struct {
	MinFetchCount int
}

// ProductService serves product searches from a keyword-keyed result cache and falls back to
// the scraping actor on a miss. Cached keywords are never re-fetched.
type ProductService struct {
	store         domain.DocumentStore
	searcher      domain.ProductSearcher
	minFetchCount int
	logger        zerolog.Logger

	inflight singleflight.Group
	writeMu  sync.Mutex
}

// cacheDocument is the whole result cache: normalized keyword -> products
type cacheDocument map[string][]domain.ProductRecord

type fetchOutcome struct {
	items []domain.ProductRecord
	err   error
}

// NewProductService creates a new product service with dependencies
func NewProductService(
	store domain.DocumentStore,
	searcher domain.ProductSearcher,
	config ProductServiceConfig,
	logger zerolog.Logger,
) *ProductService {
	minFetchCount := config.MinFetchCount
	if minFetchCount <= 0 {
		minFetchCount = DefaultMinFetchCount
	}

	return &ProductService{
		store:         store,
		searcher:      searcher,
		minFetchCount: minFetchCount,
		logger:        logger,
	}
}

// NormalizeKeyword builds the cache key for a keyword: trimmed and lower-cased
func NormalizeKeyword(keyword string) string {
	return strings.ToLower(strings.TrimSpace(keyword))
}

// Search extracts the search phrase from a free-form utterance and looks it up.
func (s *ProductService) Search(ctx context.Context, utterance string, limit int) domain.SearchResult {
	keyword := ExtractSearchQuery(utterance)
	return s.GetCachedResults(ctx, keyword, limit)
}

// GetCachedResults returns up to limit products for keyword.
// Flow: load cache document -> hit: return -> miss: fetch upstream -> store -> return.
// It never fails: faults end up in SearchResult.Err and the items degrade to an empty list.
func (s *ProductService) GetCachedResults(ctx context.Context, keyword string, limit int) domain.SearchResult {
	if limit <= 0 {
		limit = DefaultResultLimit
	}

	result := domain.SearchResult{
		Keyword: keyword,
		Items:   []domain.ProductRecord{},
		Source:  domain.SourceNone,
	}

	key := NormalizeKeyword(keyword)

	doc, err := s.loadDocument(ctx)
	if err != nil {
		observability.RecordFault(observability.FaultCacheRead)
		s.logger.Warn().Err(err).Msg("result cache unreadable, treating as empty")
		result.Err = err
	}

	if cached := doc[key]; len(cached) > 0 {
		observability.RecordCacheLookup(true)
		s.logger.Debug().Str("keyword", key).Int("cached", len(cached)).Msg("cache hit")
		result.Items = firstN(cached, limit)
		result.Source = domain.SourceCache
		return result
	}
	observability.RecordCacheLookup(false)

	fetchCount := max(limit, s.minFetchCount)

	// Concurrent misses for the same keyword share one upstream run.
	v, _, _ := s.inflight.Do(fmt.Sprintf("%s|%d", key, fetchCount), func() (interface{}, error) {
		return s.fetchAndStore(ctx, keyword, key, fetchCount), nil
	})
	outcome := v.(fetchOutcome)

	if outcome.err != nil {
		result.Err = outcome.err
	}
	if len(outcome.items) > 0 {
		result.Items = firstN(outcome.items, limit)
		result.Source = domain.SourceUpstream
	}
	return result
}

// fetchAndStore calls the scraping actor and persists a non-empty answer under key.
// The upstream call is detached from the caller's cancellation.
func (s *ProductService) fetchAndStore(ctx context.Context, keyword, key string, fetchCount int) fetchOutcome {
	ctx = context.WithoutCancel(ctx)

	items, err := s.searcher.FetchProducts(ctx, keyword, fetchCount)
	if err != nil {
		if errors.Is(err, domain.ErrSearchNotConfigured) {
			observability.RecordFault(observability.FaultUnconfigured)
		} else {
			observability.RecordFault(observability.FaultUpstream)
		}
		s.logger.Warn().Err(err).Str("keyword", keyword).Msg("product search failed, returning no results")
		return fetchOutcome{err: err}
	}
	if len(items) == 0 {
		return fetchOutcome{}
	}

	if err := s.persist(ctx, key, items); err != nil {
		observability.RecordFault(observability.FaultCacheWrite)
		s.logger.Warn().Err(err).Str("keyword", key).Msg("result cache not persisted")
		return fetchOutcome{items: items, err: err}
	}

	s.logger.Info().Str("keyword", key).Int("count", len(items)).Msg("results cached")
	return fetchOutcome{items: items}
}

// persist re-reads the document under the write lock and merges key into it, so writers for
// different keywords do not drop each other's entries.
func (s *ProductService) persist(ctx context.Context, key string, items []domain.ProductRecord) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	doc, err := s.loadDocument(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("overwriting unreadable result cache")
	}
	doc[key] = items

	data, err := encodeDocument(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCacheWrite, err)
	}
	return s.store.Save(ctx, data)
}

// loadDocument always returns a usable map; the error reports why it is empty.
func (s *ProductService) loadDocument(ctx context.Context) (cacheDocument, error) {
	data, err := s.store.Load(ctx)
	if errors.Is(err, domain.ErrCacheMiss) {
		return cacheDocument{}, nil
	}
	if err != nil {
		return cacheDocument{}, err
	}

	var doc cacheDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return cacheDocument{}, fmt.Errorf("%w: %v", domain.ErrCacheRead, err)
	}
	if doc == nil {
		doc = cacheDocument{}
	}
	return doc, nil
}

func encodeDocument(doc cacheDocument) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func firstN(items []domain.ProductRecord, n int) []domain.ProductRecord {
	if len(items) > n {
		items = items[:n]
	}
	out := make([]domain.ProductRecord, len(items))
	copy(out, items)
	return out
}
