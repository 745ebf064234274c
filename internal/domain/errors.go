package domain

import "errors"

var (
	// ErrSearchNotConfigured is returned when no Apify token or actor is configured
	ErrSearchNotConfigured = errors.New("product search not configured")

	// ErrUpstreamFault is returned when every payload candidate sent to the scraping actor failed
	ErrUpstreamFault = errors.New("product search upstream request failed")

	// ErrInvalidPayload is returned when the upstream answered with an unusable body
	ErrInvalidPayload = errors.New("unexpected upstream payload")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheRead is returned when the result cache document cannot be read or parsed
	ErrCacheRead = errors.New("result cache read failed")

	// ErrCacheWrite is returned when the result cache document cannot be persisted
	ErrCacheWrite = errors.New("result cache write failed")

	// ErrPriceParse is returned when a raw price cannot be parsed into a number
	ErrPriceParse = errors.New("price parse failed")

	// ErrSpeechFailure is returned when a speech-to-text or text-to-speech call fails
	ErrSpeechFailure = errors.New("speech service request failed")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")
)
