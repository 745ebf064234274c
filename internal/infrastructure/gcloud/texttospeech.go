package gcloud

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/voicecommerce/backend/internal/domain"
)

const (
	DefaultTTSURL       = "https://texttospeech.googleapis.com/v1/text:synthesize"
	DefaultVoice        = "id-ID-Wavenet-A"
	DefaultSpeakingRate = 0.95
	DefaultPitch        = -2.0
)

// TTSConfig holds text-to-speech voice settings
type TTSConfig struct {
	URL          string
	Language     string
	Voice        string
	SpeakingRate float64
	Pitch        float64
	Timeout      time.Duration
}

// TextToSpeechClient synthesizes MP3 audio with the text:synthesize endpoint
type TextToSpeechClient struct {
	http   *resty.Client
	cfg    TTSConfig
	logger zerolog.Logger
}

type synthesizeRequest struct {
	Input       synthesisInput   `json:"input"`
	Voice       voiceSelection   `json:"voice"`
	AudioConfig synthesisOptions `json:"audioConfig"`
}

type synthesisInput struct {
	Text string `json:"text,omitempty"`
	SSML string `json:"ssml,omitempty"`
}

type voiceSelection struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name"`
}

type synthesisOptions struct {
	AudioEncoding string  `json:"audioEncoding"`
	SpeakingRate  float64 `json:"speakingRate"`
	Pitch         float64 `json:"pitch"`
}

type synthesizeResponse struct {
	AudioContent []byte `json:"audioContent"`
}

// NewTextToSpeechClient creates a text-to-speech client. Pitch is used as given.
func NewTextToSpeechClient(httpClient *http.Client, cfg TTSConfig, logger zerolog.Logger) *TextToSpeechClient {
	if cfg.URL == "" {
		cfg.URL = DefaultTTSURL
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.Voice == "" {
		cfg.Voice = DefaultVoice
	}
	if cfg.SpeakingRate <= 0 {
		cfg.SpeakingRate = DefaultSpeakingRate
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRequestTimeout
	}

	return &TextToSpeechClient{
		http:   newRestClient(httpClient),
		cfg:    cfg,
		logger: logger,
	}
}

// Synthesize renders text, or SSML markup when ssml is set, to MP3 bytes.
func (c *TextToSpeechClient) Synthesize(ctx context.Context, text string, ssml bool) ([]byte, error) {
	input := synthesisInput{Text: text}
	if ssml {
		input = synthesisInput{SSML: text}
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var result synthesizeResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(synthesizeRequest{
			Input: input,
			Voice: voiceSelection{
				LanguageCode: c.cfg.Language,
				Name:         c.cfg.Voice,
			},
			AudioConfig: synthesisOptions{
				AudioEncoding: "MP3",
				SpeakingRate:  c.cfg.SpeakingRate,
				Pitch:         c.cfg.Pitch,
			},
		}).
		SetResult(&result).
		SetError(&apiError{}).
		Post(c.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: synthesize request: %v", domain.ErrSpeechFailure, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: synthesize: %s", domain.ErrSpeechFailure, describeError(resp))
	}
	if len(result.AudioContent) == 0 {
		return nil, fmt.Errorf("%w: synthesize returned no audio", domain.ErrSpeechFailure)
	}

	c.logger.Debug().Bool("ssml", ssml).Int("bytes", len(result.AudioContent)).Msg("speech synthesized")
	return result.AudioContent, nil
}
