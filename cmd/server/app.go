package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/voicecommerce/backend/config"
	"github.com/voicecommerce/backend/internal/domain"
	"github.com/voicecommerce/backend/internal/infrastructure/apify"
	"github.com/voicecommerce/backend/internal/infrastructure/cache"
	"github.com/voicecommerce/backend/internal/infrastructure/gcloud"
	"github.com/voicecommerce/backend/internal/observability"
	"github.com/voicecommerce/backend/internal/usecase"
)

// audioCacheEntries bounds the number of synthesized replies kept in memory
const audioCacheEntries = 256

// app holds the wired dependencies shared by the serve and search commands
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	registry *prometheus.Registry

	// replies and speech stay nil without Google credentials
	products *usecase.ProductService
	replies  *usecase.ReplyService
	speech   domain.SpeechToText
	closers  []func() error
}

// buildApp wires configuration into services. Speech collaborators are only built when
// withSpeech is set; credential problems disable them instead of failing start-up.
func buildApp(ctx context.Context, cfg *config.Config, withSpeech bool) (*app, error) {
	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "voicecommerce-backend",
	})

	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}

	a.registry.MustRegister(collectors.NewGoCollector())
	a.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	observability.RegisterMetrics(a.registry)

	store, err := a.buildStore(ctx)
	if err != nil {
		return nil, err
	}

	apifyClient := apify.NewClient(apify.ClientConfig{
		Token:         cfg.Apify.Token,
		Actor:         cfg.Apify.Actor,
		BaseURL:       cfg.Apify.BaseURL,
		Timeout:       cfg.Apify.Timeout,
		MinFetchCount: cfg.Apify.MinFetchCount,
		RatePerSecond: cfg.Apify.RatePerSecond,
		Burst:         cfg.Apify.Burst,
	}, observability.Component(logger, "apify"))

	if apifyClient.Configured() {
		logger.Info().Str("actor", cfg.Apify.Actor).Msg("product search configured")
	} else {
		logger.Warn().Msg("apify token not configured, product searches return no results")
	}

	a.products = usecase.NewProductService(store, apifyClient, usecase.ProductServiceConfig{
		MinFetchCount: cfg.Apify.MinFetchCount,
	}, observability.Component(logger, "products"))

	if withSpeech {
		a.buildSpeech(ctx)
	}

	return a, nil
}

func (a *app) buildStore(ctx context.Context) (domain.DocumentStore, error) {
	switch a.cfg.Cache.Type {
	case "redis":
		store, err := cache.NewRedisStore(ctx, a.cfg.Cache.RedisURL, a.cfg.Cache.RedisKey)
		if err != nil {
			return nil, fmt.Errorf("connect result cache: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		a.logger.Info().Str("key", a.cfg.Cache.RedisKey).Msg("result cache in redis")
		return store, nil
	default:
		a.logger.Info().Str("path", a.cfg.Cache.Path).Msg("result cache in file")
		return cache.NewFileStore(a.cfg.Cache.Path), nil
	}
}

func (a *app) buildSpeech(ctx context.Context) {
	logger := observability.Component(a.logger, "gcloud")
	g := a.cfg.Google

	if path, err := gcloud.MaterializeCredentials(g.CredentialsJSON, g.CredentialsFile); err != nil {
		logger.Warn().Err(err).Msg("credentials json not written to key file")
	} else if path != "" {
		logger.Info().Str("path", path).Msg("credentials key file ready")
	}

	tokenSource, err := gcloud.NewTokenSource(ctx, gcloud.CredentialsConfig{
		JSON: g.CredentialsJSON,
		File: g.CredentialsFile,
	})
	if err != nil {
		observability.RecordFault(observability.FaultSpeech)
		logger.Warn().Err(err).Msg("google credentials unavailable, /stt and /reply disabled")
		return
	}
	httpClient := gcloud.NewHTTPClient(ctx, tokenSource)

	a.speech = gcloud.NewSpeechClient(httpClient, gcloud.SpeechConfig{
		URL: g.SpeechURL,
	}, logger)

	tts := gcloud.NewTextToSpeechClient(httpClient, gcloud.TTSConfig{
		URL:          g.TTSURL,
		Language:     g.Language,
		Voice:        g.Voice,
		SpeakingRate: g.SpeakingRate,
		Pitch:        g.Pitch,
	}, logger)

	audioCache := cache.NewMemoryCache(audioCacheEntries)
	a.closers = append(a.closers, func() error {
		audioCache.Close()
		return nil
	})

	a.replies = usecase.NewReplyService(a.products, tts, audioCache, usecase.ReplyServiceConfig{
		AudioTTL: a.cfg.Cache.AudioTTL,
	}, observability.Component(a.logger, "reply"))
}

func (a *app) transcriptionConfig() domain.TranscriptionConfig {
	return domain.TranscriptionConfig{
		SampleRate: a.cfg.Google.SampleRate,
		Language:   a.cfg.Google.Language,
	}
}

// Close releases connections and background workers
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn().Err(err).Msg("close failed")
		}
	}
}
