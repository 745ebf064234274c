package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicecommerce/backend/internal/domain"
)

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	data      map[string]interface{}
	setError  error
	setCalled bool
	lastTTL   time.Duration
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		data: make(map[string]interface{}),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) (interface{}, error) {
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.setCalled = true
	m.lastTTL = ttl
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

// MockTextToSpeech is a mock implementation of domain.TextToSpeech
type MockTextToSpeech struct {
	audio    []byte
	err      error
	calls    int
	lastText string
	lastSSML bool
}

func (m *MockTextToSpeech) Synthesize(ctx context.Context, text string, ssml bool) ([]byte, error) {
	m.calls++
	m.lastText = text
	m.lastSSML = ssml
	if m.err != nil {
		return nil, m.err
	}
	return m.audio, nil
}

// MockProductLookup is a mock implementation of ProductLookup
type MockProductLookup struct {
	items       []domain.ProductRecord
	lastKeyword string
	lastLimit   int
}

func (m *MockProductLookup) GetCachedResults(ctx context.Context, keyword string, limit int) domain.SearchResult {
	m.lastKeyword = keyword
	m.lastLimit = limit
	items := m.items
	if items == nil {
		items = []domain.ProductRecord{}
	}
	return domain.SearchResult{Keyword: keyword, Items: items}
}

func newTestReplyService(products ProductLookup, tts domain.TextToSpeech, audioCache domain.CacheRepository) *ReplyService {
	return NewReplyService(products, tts, audioCache, ReplyServiceConfig{}, zerolog.Nop())
}

func TestCompose(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		items    []domain.ProductRecord
		kind     ReplyKind
		expected string
		ssml     bool
	}{
		{
			name:     "empty utterance",
			input:    "   ",
			kind:     ReplyNoSpeech,
			expected: "Maaf, saya tidak menangkap suara. Silakan coba lagi.",
		},
		{
			name:     "greeting",
			input:    "Halo, selamat pagi",
			kind:     ReplyGreeting,
			expected: "Halo! Mau cari produk apa hari ini? Ucapkan misalnya: cari kacamata hitam.",
		},
		{
			name:     "echo",
			input:    "terima kasih",
			kind:     ReplyEcho,
			expected: "Kamu berkata: terima kasih",
		},
		{
			name:     "search without results",
			input:    "cari payung lipat",
			kind:     ReplySearchEmpty,
			expected: "Maaf, belum ada hasil untuk payung lipat di Tokopedia. Coba kata kunci lain ya.",
		},
		{
			name:  "search with results",
			input: "carikan kacamata",
			items: []domain.ProductRecord{{Name: "Kacamata Hitam", Price: "Rp 186.480"}},
			kind:  ReplySearchResults,
			expected: "<speak>Saya menemukan 1 produk Tokopedia untuk kacamata." +
				" Produk 1: Kacamata Hitam. Harganya sekitar Rp 186.480. <break time='300ms'/>" +
				" Ingin saya kirim tautannya?</speak>",
			ssml: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := &MockProductLookup{items: tt.items}
			service := newTestReplyService(products, &MockTextToSpeech{}, nil)

			reply := service.Compose(context.Background(), tt.input)

			assert.Equal(t, tt.kind, reply.Kind)
			assert.Equal(t, tt.expected, reply.Text)
			assert.Equal(t, tt.ssml, reply.SSML)
		})
	}
}

func TestCompose_SearchTakesPrecedenceOverGreeting(t *testing.T) {
	products := &MockProductLookup{}
	service := newTestReplyService(products, &MockTextToSpeech{}, nil)

	reply := service.Compose(context.Background(), "halo, cari sepatu lari")

	assert.Equal(t, ReplySearchEmpty, reply.Kind)
	assert.Equal(t, "sepatu lari", products.lastKeyword)
	assert.Equal(t, ReplyResultLimit, products.lastLimit)
}

func TestCompose_FillsMissingNameAndPrice(t *testing.T) {
	products := &MockProductLookup{items: []domain.ProductRecord{{}, {Name: "Topi"}}}
	service := newTestReplyService(products, &MockTextToSpeech{}, nil)

	reply := service.Compose(context.Background(), "beli topi")

	assert.Contains(t, reply.Text, "Produk 1: produk. Harganya sekitar tidak diketahui.")
	assert.Contains(t, reply.Text, "Produk 2: Topi.")
	assert.Equal(t, 2, strings.Count(reply.Text, "<break time='300ms'/>"))
}

func TestCompose_EscapesMarkup(t *testing.T) {
	products := &MockProductLookup{items: []domain.ProductRecord{{Name: "Kabel <USB> & Charger", Price: "Rp 20.000"}}}
	service := newTestReplyService(products, &MockTextToSpeech{}, nil)

	reply := service.Compose(context.Background(), "cari kabel")

	assert.Contains(t, reply.Text, "Kabel &lt;USB&gt; &amp; Charger")
	assert.NotContains(t, reply.Text, "<USB>")
}

func TestRespond_SynthesizesAndCaches(t *testing.T) {
	tts := &MockTextToSpeech{audio: []byte("mp3")}
	audioCache := NewMockCacheRepository()
	service := newTestReplyService(&MockProductLookup{}, tts, audioCache)

	reply, audio, err := service.Respond(context.Background(), "halo")

	require.NoError(t, err)
	assert.Equal(t, ReplyGreeting, reply.Kind)
	assert.Equal(t, []byte("mp3"), audio)
	assert.False(t, tts.lastSSML)
	assert.True(t, audioCache.setCalled)
	assert.Equal(t, defaultAudioTTL, audioCache.lastTTL)

	_, audio, err = service.Respond(context.Background(), "halo")

	require.NoError(t, err)
	assert.Equal(t, []byte("mp3"), audio)
	assert.Equal(t, 1, tts.calls)
}

func TestRespond_SSMLFlagPassedToSynthesizer(t *testing.T) {
	tts := &MockTextToSpeech{audio: []byte("mp3")}
	products := &MockProductLookup{items: []domain.ProductRecord{{Name: "Kacamata", Price: "Rp 10.000"}}}
	service := newTestReplyService(products, tts, nil)

	_, _, err := service.Respond(context.Background(), "cari kacamata")

	require.NoError(t, err)
	assert.True(t, tts.lastSSML)
	assert.True(t, strings.HasPrefix(tts.lastText, "<speak>"))
}

func TestRespond_SynthesisFailure(t *testing.T) {
	tts := &MockTextToSpeech{err: errors.New("quota exceeded")}
	audioCache := NewMockCacheRepository()
	service := newTestReplyService(&MockProductLookup{}, tts, audioCache)

	reply, audio, err := service.Respond(context.Background(), "halo")

	assert.ErrorIs(t, err, domain.ErrSpeechFailure)
	assert.Nil(t, audio)
	assert.Equal(t, ReplyGreeting, reply.Kind)
	assert.False(t, audioCache.setCalled)
}

func TestRespond_CacheWriteFailureIgnored(t *testing.T) {
	tts := &MockTextToSpeech{audio: []byte("mp3")}
	audioCache := NewMockCacheRepository()
	audioCache.setError = errors.New("full")
	service := newTestReplyService(&MockProductLookup{}, tts, audioCache)

	_, audio, err := service.Respond(context.Background(), "apa kabar")

	require.NoError(t, err)
	assert.Equal(t, []byte("mp3"), audio)
}
