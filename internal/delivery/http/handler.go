package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/voicecommerce/backend/internal/domain"
	"github.com/voicecommerce/backend/internal/usecase"
)

const (
	defaultSearchLimit = 3
	maxSearchLimit     = 20

	// maxAudioUpload bounds the recorded clip accepted by /stt
	maxAudioUpload = 10 << 20
)

// ProductFinder runs a cached product search for a free-form utterance
type ProductFinder interface {
	Search(ctx context.Context, utterance string, limit int) domain.SearchResult
}

// ReplyResponder turns an utterance into a spoken reply
type ReplyResponder interface {
	Respond(ctx context.Context, text string) (usecase.Reply, []byte, error)
}

// Handler holds dependencies for HTTP handlers. Speech dependencies may be nil when
// Google credentials are unavailable; the matching endpoints then answer 503.
type Handler struct {
	products      ProductFinder
	replies       ReplyResponder
	speech        domain.SpeechToText
	transcription domain.TranscriptionConfig
	logger        zerolog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	products ProductFinder,
	replies ReplyResponder,
	speech domain.SpeechToText,
	transcription domain.TranscriptionConfig,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		products:      products,
		replies:       replies,
		speech:        speech,
		transcription: transcription,
		logger:        logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "voicecommerce-backend",
		"version": "1.0.0",
	})
}

// SearchProducts handles GET /tokopedia/search?q=&limit=
func (h *Handler) SearchProducts(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		respondError(c, http.StatusBadRequest, domain.ErrInvalidRequest, "query parameter 'q' is required")
		return
	}

	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		respondError(c, http.StatusBadRequest, domain.ErrInvalidRequest, "limit must be an integer")
		return
	}

	result := h.products.Search(c.Request.Context(), query, limit)
	if result.Err != nil {
		h.logger.Warn().Err(result.Err).Str("keyword", result.Keyword).Msg("search degraded")
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(result.Items),
		"items":   result.Items,
		"keyword": result.Keyword,
	})
}

// Transcribe handles POST /stt with a multipart "file" holding LINEAR16 audio
func (h *Handler) Transcribe(c *gin.Context) {
	if h.speech == nil {
		respondError(c, http.StatusServiceUnavailable, domain.ErrSpeechFailure, "speech recognition is not configured")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, domain.ErrInvalidRequest, "multipart field 'file' is required")
		return
	}

	if fileHeader.Size > maxAudioUpload {
		respondError(c, http.StatusRequestEntityTooLarge, domain.ErrInvalidRequest, "audio upload exceeds 10 MiB")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, domain.ErrInvalidRequest, "uploaded file could not be read")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, maxAudioUpload+1))
	if err != nil {
		respondError(c, http.StatusBadRequest, domain.ErrInvalidRequest, "uploaded file could not be read")
		return
	}
	if len(audio) > maxAudioUpload {
		respondError(c, http.StatusRequestEntityTooLarge, domain.ErrInvalidRequest, "audio upload exceeds 10 MiB")
		return
	}

	text, err := h.speech.Transcribe(c.Request.Context(), audio, h.transcription)
	if err != nil {
		h.logger.Error().Err(err).Int("bytes", len(audio)).Msg("transcription failed")
		respondError(c, http.StatusBadGateway, err, "speech recognition failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"text": text})
}

// Reply handles POST /reply with form field "text" and answers with MP3 audio
func (h *Handler) Reply(c *gin.Context) {
	if h.replies == nil {
		respondError(c, http.StatusServiceUnavailable, domain.ErrSpeechFailure, "speech synthesis is not configured")
		return
	}

	text := c.PostForm("text")

	reply, audio, err := h.replies.Respond(c.Request.Context(), text)
	if err != nil {
		respondError(c, http.StatusBadGateway, err, "speech synthesis failed")
		return
	}

	c.Header("X-Reply-Kind", string(reply.Kind))
	c.Data(http.StatusOK, "audio/mpeg", audio)
}

// parseLimit defaults an empty limit to 3 and clamps it to [1, 20]
func parseLimit(raw string) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return defaultSearchLimit, nil
	}

	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	return min(max(limit, 1), maxSearchLimit), nil
}

func respondError(c *gin.Context, status int, err error, message string) {
	body := gin.H{"error": message}
	if errors.Is(err, domain.ErrSpeechFailure) {
		body["kind"] = "speech"
	} else if errors.Is(err, domain.ErrInvalidRequest) {
		body["kind"] = "invalid_request"
	}
	c.AbortWithStatusJSON(status, body)
}
