package gcloud

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/voicecommerce/backend/internal/domain"
)

const (
	DefaultSpeechURL  = "https://speech.googleapis.com/v1/speech:recognize"
	DefaultLanguage   = "id-ID"
	DefaultSampleRate = 16000

	defaultRequestTimeout = 30 * time.Second
)

// SpeechConfig holds speech-to-text settings
type SpeechConfig struct {
	URL     string
	Timeout time.Duration
}

// SpeechClient transcribes LINEAR16 audio with the speech:recognize endpoint
type SpeechClient struct {
	http    *resty.Client
	url     string
	timeout time.Duration
	logger  zerolog.Logger
}

type recognizeRequest struct {
	Config recognitionConfig `json:"config"`
	Audio  recognitionAudio  `json:"audio"`
}

type recognitionConfig struct {
	Encoding                   string `json:"encoding"`
	SampleRateHertz            int    `json:"sampleRateHertz"`
	LanguageCode               string `json:"languageCode"`
	EnableAutomaticPunctuation bool   `json:"enableAutomaticPunctuation"`
}

type recognitionAudio struct {
	Content []byte `json:"content"`
}

type recognizeResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"results"`
}

// apiError is the error envelope shared by Google REST APIs
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewSpeechClient creates a speech client. httpClient carries the credentials.
func NewSpeechClient(httpClient *http.Client, cfg SpeechConfig, logger zerolog.Logger) *SpeechClient {
	if cfg.URL == "" {
		cfg.URL = DefaultSpeechURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRequestTimeout
	}

	return &SpeechClient{
		http:    newRestClient(httpClient),
		url:     cfg.URL,
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

// Transcribe returns the first alternative of every result joined with spaces.
// Audio with nothing recognized yields "".
func (c *SpeechClient) Transcribe(ctx context.Context, audio []byte, cfg domain.TranscriptionConfig) (string, error) {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var result recognizeResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(recognizeRequest{
			Config: recognitionConfig{
				Encoding:                   "LINEAR16",
				SampleRateHertz:            cfg.SampleRate,
				LanguageCode:               cfg.Language,
				EnableAutomaticPunctuation: true,
			},
			Audio: recognitionAudio{Content: audio},
		}).
		SetResult(&result).
		SetError(&apiError{}).
		Post(c.url)
	if err != nil {
		return "", fmt.Errorf("%w: recognize request: %v", domain.ErrSpeechFailure, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: recognize: %s", domain.ErrSpeechFailure, describeError(resp))
	}

	parts := make([]string, 0, len(result.Results))
	for _, r := range result.Results {
		if len(r.Alternatives) == 0 {
			continue
		}
		if t := strings.TrimSpace(r.Alternatives[0].Transcript); t != "" {
			parts = append(parts, t)
		}
	}

	transcript := strings.Join(parts, " ")
	c.logger.Debug().Int("bytes", len(audio)).Int("results", len(result.Results)).Msg("audio transcribed")
	return transcript, nil
}

func newRestClient(httpClient *http.Client) *resty.Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return resty.NewWithClient(httpClient).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
}

func describeError(resp *resty.Response) string {
	if e, ok := resp.Error().(*apiError); ok && e.Error.Message != "" {
		return fmt.Sprintf("status %d %s: %s", resp.StatusCode(), e.Error.Status, e.Error.Message)
	}
	return fmt.Sprintf("status %d", resp.StatusCode())
}
