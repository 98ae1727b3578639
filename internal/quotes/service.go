// Package quotes turns a topic, language and tone into a generated quote
// and records every successful generation in history.
package quotes

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ziadkadry99/quotegen/internal/docstore"
	"github.com/ziadkadry99/quotegen/internal/genai"
)

var tracer = otel.Tracer("github.com/ziadkadry99/quotegen/internal/quotes")

var (
	// ErrTopicRequired is returned for an empty or blank topic.
	ErrTopicRequired = errors.New("please enter a topic first")

	// ErrUnknownTone is returned for a tone outside the preset list.
	ErrUnknownTone = errors.New("unknown tone")

	// ErrNotPersisted accompanies a generated quote that could not be
	// written to history.
	ErrNotPersisted = errors.New("quote generated but not saved")
)

// Request describes one generation.
type Request struct {
	Topic    string `json:"topic"`
	Language string `json:"language"`
	Tone     string `json:"tone"`
}

// Recorder persists generation records.
type Recorder interface {
	AddRecord(ctx context.Context, r docstore.Record) (docstore.Record, error)
}

// Service generates quotes and records them.
type Service struct {
	client      genai.Client
	store       Recorder
	model       string
	temperature float64
	now         func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithTemperature sets the sampling temperature passed to the provider.
func WithTemperature(t float64) Option {
	return func(s *Service) { s.temperature = t }
}

// WithClock replaces time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service that asks client for model completions and
// writes results to store.
func NewService(client genai.Client, store Recorder, model string, opts ...Option) *Service {
	s := &Service{client: client, store: store, model: model, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Normalize trims the request and fills in the default language and tone.
// It fails for a blank topic or an unknown tone.
func Normalize(req Request) (Request, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		return req, ErrTopicRequired
	}
	req.Language = CanonicalLanguage(req.Language)
	req.Tone = strings.TrimSpace(req.Tone)
	if req.Tone == "" {
		req.Tone = DefaultTone
	}
	if _, ok := LookupTone(req.Tone); !ok {
		return req, fmt.Errorf("%w: %q", ErrUnknownTone, req.Tone)
	}
	return req, nil
}

// Generate asks the provider for a quote and records it.
//
// Nothing is sent and nothing is written when the request is invalid. A
// provider failure is returned with its message intact and nothing is
// written. When the write fails after a successful generation the unsaved
// record is returned together with an error wrapping ErrNotPersisted, so
// callers can still show the quote.
func (s *Service) Generate(ctx context.Context, req Request) (docstore.Record, error) {
	req, err := Normalize(req)
	if err != nil {
		return docstore.Record{}, err
	}

	ctx, span := tracer.Start(ctx, "quotes.Generate", trace.WithAttributes(
		attribute.String("quote.language", req.Language),
		attribute.String("quote.tone", req.Tone),
		attribute.String("genai.provider", s.client.Name()),
	))
	defer span.End()

	resp, err := s.client.Generate(ctx, genai.Request{
		Model:       s.model,
		Prompt:      BuildPrompt(req.Topic, req.Language, req.Tone),
		Temperature: s.temperature,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return docstore.Record{}, fmt.Errorf("generating quote: %w", err)
	}
	span.SetAttributes(
		attribute.Int("genai.input_tokens", resp.InputTokens),
		attribute.Int("genai.output_tokens", resp.OutputTokens),
	)

	rec := docstore.Record{
		Topic:     req.Topic,
		Language:  req.Language,
		Tone:      req.Tone,
		Quote:     resp.Text,
		Timestamp: s.now().UTC(),
	}

	saved, err := s.store.AddRecord(ctx, rec)
	if err != nil {
		span.RecordError(err)
		log.Printf("quotes: saving generation: %v", err)
		return rec, fmt.Errorf("%w: %v", ErrNotPersisted, err)
	}
	return saved, nil
}
