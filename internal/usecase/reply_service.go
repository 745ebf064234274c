package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/voicecommerce/backend/internal/domain"
)

// ReplyResultLimit is the number of products read out in a spoken reply
const ReplyResultLimit = 3

const defaultAudioTTL = 24 * time.Hour

// Fixed spoken prompts
const (
	promptNoSpeech = "Maaf, saya tidak menangkap suara. Silakan coba lagi."
	promptGreeting = "Halo! Mau cari produk apa hari ini? Ucapkan misalnya: cari kacamata hitam."
)

// ReplyKind tells which branch produced a reply
type ReplyKind string

const (
	ReplyNoSpeech      ReplyKind = "no_speech"
	ReplySearchResults ReplyKind = "search_results"
	ReplySearchEmpty   ReplyKind = "search_empty"
	ReplyGreeting      ReplyKind = "greeting"
	ReplyEcho          ReplyKind = "echo"
)

// Reply is a composed answer to one utterance
type Reply struct {
	Kind    ReplyKind
	Text    string
	SSML    bool
	Keyword string
	Items   []domain.ProductRecord
}

// ProductLookup is the part of ProductService the reply flow needs
type ProductLookup interface {
	GetCachedResults(ctx context.Context, keyword string, limit int) domain.SearchResult
}

// ReplyServiceConfig holds configuration for the reply service
type ReplyServiceConfig struct {
	AudioTTL time.Duration
}

// ReplyService turns an utterance into a spoken reply
type ReplyService struct {
	products   ProductLookup
	tts        domain.TextToSpeech
	audioCache domain.CacheRepository
	audioTTL   time.Duration
	logger     zerolog.Logger
}

// NewReplyService creates a reply service. audioCache may be nil to disable audio caching.
func NewReplyService(
	products ProductLookup,
	tts domain.TextToSpeech,
	audioCache domain.CacheRepository,
	config ReplyServiceConfig,
	logger zerolog.Logger,
) *ReplyService {
	audioTTL := config.AudioTTL
	if audioTTL == 0 {
		audioTTL = defaultAudioTTL
	}

	return &ReplyService{
		products:   products,
		tts:        tts,
		audioCache: audioCache,
		audioTTL:   audioTTL,
		logger:     logger,
	}
}

// Compose decides what to say for an utterance without synthesizing it.
func (s *ReplyService) Compose(ctx context.Context, text string) Reply {
	utterance := strings.TrimSpace(text)

	if utterance == "" {
		return Reply{Kind: ReplyNoSpeech, Text: promptNoSpeech}
	}

	if HasSearchIntent(utterance) {
		keyword := ExtractSearchQuery(utterance)
		result := s.products.GetCachedResults(ctx, keyword, ReplyResultLimit)

		if result.Empty() {
			return Reply{
				Kind:    ReplySearchEmpty,
				Text:    fmt.Sprintf("Maaf, belum ada hasil untuk %s di Tokopedia. Coba kata kunci lain ya.", keyword),
				Keyword: keyword,
			}
		}

		return Reply{
			Kind:    ReplySearchResults,
			Text:    buildResultsSSML(keyword, result.Items),
			SSML:    true,
			Keyword: keyword,
			Items:   result.Items,
		}
	}

	if IsGreeting(utterance) {
		return Reply{Kind: ReplyGreeting, Text: promptGreeting}
	}

	return Reply{Kind: ReplyEcho, Text: "Kamu berkata: " + utterance}
}

// Respond composes a reply and synthesizes it to MP3 audio.
func (s *ReplyService) Respond(ctx context.Context, text string) (Reply, []byte, error) {
	reply := s.Compose(ctx, text)

	audio, err := s.synthesize(ctx, reply)
	if err != nil {
		return reply, nil, err
	}
	return reply, audio, nil
}

func (s *ReplyService) synthesize(ctx context.Context, reply Reply) ([]byte, error) {
	key := audioCacheKey(reply)

	if s.audioCache != nil {
		if cached, err := s.audioCache.Get(ctx, key); err == nil {
			if audio, ok := cached.([]byte); ok {
				s.logger.Debug().Str("kind", string(reply.Kind)).Msg("reply audio served from cache")
				return audio, nil
			}
		}
	}

	audio, err := s.tts.Synthesize(ctx, reply.Text, reply.SSML)
	if err != nil {
		s.logger.Error().Err(err).Str("kind", string(reply.Kind)).Msg("speech synthesis failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrSpeechFailure, err)
	}

	if s.audioCache != nil {
		if err := s.audioCache.Set(ctx, key, audio, s.audioTTL); err != nil {
			// Log but don't fail if caching fails
			s.logger.Warn().Err(err).Msg("reply audio not cached")
		}
	}
	return audio, nil
}

// buildResultsSSML lists each product with a short pause between them.
func buildResultsSSML(keyword string, items []domain.ProductRecord) string {
	var b strings.Builder
	b.WriteString("<speak>")
	fmt.Fprintf(&b, "Saya menemukan %d produk Tokopedia untuk %s.", len(items), html.EscapeString(keyword))

	for i, item := range items {
		name := item.Name
		if name == "" {
			name = "produk"
		}
		price := item.Price
		if price == "" {
			price = "tidak diketahui"
		}
		fmt.Fprintf(&b, " Produk %d: %s. Harganya sekitar %s. <break time='300ms'/>",
			i+1, html.EscapeString(name), html.EscapeString(price))
	}

	b.WriteString(" Ingin saya kirim tautannya?</speak>")
	return b.String()
}

func audioCacheKey(reply Reply) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%t|%s", reply.SSML, reply.Text)))
	return "tts:" + hex.EncodeToString(sum[:])
}
