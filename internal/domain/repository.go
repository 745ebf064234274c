package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for TTL caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// DocumentStore holds the single serialized document backing the result cache.
// Load returns ErrCacheMiss when no document exists yet.
type DocumentStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// ProductSearcher fetches products for a keyword from the external scraping service
type ProductSearcher interface {
	FetchProducts(ctx context.Context, keyword string, limit int) ([]ProductRecord, error)
}

// TranscriptionConfig describes the audio handed to a SpeechToText collaborator
type TranscriptionConfig struct {
	SampleRate int
	Language   string
}

// SpeechToText transcribes raw audio into the best transcript, "" when nothing was recognized
type SpeechToText interface {
	Transcribe(ctx context.Context, audio []byte, cfg TranscriptionConfig) (string, error)
}

// TextToSpeech synthesizes plain text or SSML into encoded audio
type TextToSpeech interface {
	Synthesize(ctx context.Context, text string, ssml bool) ([]byte, error)
}
