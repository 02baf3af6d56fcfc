package persona

import (
	"context"
	"strings"
	"time"

	"github.com/genpersona/api/internal/seeds"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/genpersona/api/internal/persona")

// Event subjects published after a generation finishes.
const (
	SubjectDocumentGenerated = "persona.document.generated"
	SubjectNameGenerated     = "persona.name.generated"
)

const sideEffectTimeout = 5 * time.Second

// Recorder persists finished generations.
type Recorder interface {
	RecordDocument(ctx context.Context, seed string, res *DocumentResult) error
	RecordName(ctx context.Context, rec *NameRecord) error
}

// Publisher announces finished generations.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

// SeedSource supplies seeds for SubmitRandom.
type SeedSource interface {
	Random() (string, error)
}

// CacheStore keeps the deduplication cache across restarts.
type CacheStore interface {
	Save(ctx context.Context, snapshot CacheSnapshot) error
}

// DocumentEvent is published on SubjectDocumentGenerated.
type DocumentEvent struct {
	Seed        string    `json:"seed"`
	Status      Status    `json:"status"`
	Attempts    int       `json:"attempts"`
	FailurePath string    `json:"failure_path,omitempty"`
	At          time.Time `json:"at"`
}

// Service is the entry point for callers. It validates input, runs the
// generator and then performs best-effort side effects that never change
// the returned result.
type Service struct {
	gen       *Generator
	seeds     SeedSource
	recorder  Recorder
	publisher Publisher
	store     CacheStore
	logger    *zap.Logger
}

// ServiceOption configures optional collaborators.
type ServiceOption func(*Service)

// WithSeeds sets the corpus used by SubmitRandom.
func WithSeeds(src SeedSource) ServiceOption {
	return func(s *Service) { s.seeds = src }
}

// WithRecorder records every result.
func WithRecorder(r Recorder) ServiceOption {
	return func(s *Service) { s.recorder = r }
}

// WithPublisher publishes an event for every result.
func WithPublisher(p Publisher) ServiceOption {
	return func(s *Service) { s.publisher = p }
}

// WithCacheStore saves the name cache after every issued name.
func WithCacheStore(cs CacheStore) ServiceOption {
	return func(s *Service) { s.store = cs }
}

// NewService wraps gen with the given collaborators.
func NewService(gen *Generator, logger *zap.Logger, opts ...ServiceOption) *Service {
	s := &Service{gen: gen, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generator returns the wrapped generator.
func (s *Service) Generator() *Generator {
	return s.gen
}

// Submit generates a persona document for seed.
func (s *Service) Submit(ctx context.Context, seed string) (*DocumentResult, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return nil, ErrEmptySeed
	}

	ctx, span := tracer.Start(ctx, "persona.Submit", trace.WithAttributes(
		attribute.Int("persona.seed_length", len(seed)),
	))
	defer span.End()

	res, err := s.gen.GenerateDocument(ctx, seed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("persona.status", string(res.Status)),
		attribute.Int("persona.attempts", res.Attempts),
	)

	s.afterDocument(ctx, seed, res)
	return res, nil
}

// SubmitRandom picks a corpus seed and generates a document for it.
func (s *Service) SubmitRandom(ctx context.Context) (string, *DocumentResult, error) {
	if s.seeds == nil {
		return "", nil, seeds.ErrUnavailable
	}
	seed, err := s.seeds.Random()
	if err != nil {
		return "", nil, err
	}
	res, err := s.Submit(ctx, seed)
	return seed, res, err
}

// SubmitName issues a unique name for seed. Only an empty seed fails.
func (s *Service) SubmitName(ctx context.Context, seed string) (*NameRecord, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return nil, ErrEmptySeed
	}

	ctx, span := tracer.Start(ctx, "persona.SubmitName")
	defer span.End()

	rec := s.gen.GenerateName(ctx, seed)
	span.SetAttributes(
		attribute.String("persona.name_source", string(rec.Source)),
		attribute.Int("persona.attempts", rec.Attempts),
	)

	s.afterName(ctx, rec)
	return rec, nil
}

func (s *Service) afterDocument(ctx context.Context, seed string, res *DocumentResult) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if s.recorder != nil {
		if err := s.recorder.RecordDocument(ctx, seed, res); err != nil {
			s.logger.Warn("failed to record document", zap.Error(err))
		}
	}
	if s.publisher != nil {
		event := DocumentEvent{
			Seed:        seed,
			Status:      res.Status,
			Attempts:    res.Attempts,
			FailurePath: res.FailurePath,
			At:          s.gen.now().UTC(),
		}
		if err := s.publisher.Publish(ctx, SubjectDocumentGenerated, event); err != nil {
			s.logger.Warn("failed to publish document event", zap.Error(err))
		}
	}
}

func (s *Service) afterName(ctx context.Context, rec *NameRecord) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if s.recorder != nil {
		if err := s.recorder.RecordName(ctx, rec); err != nil {
			s.logger.Warn("failed to record name", zap.Error(err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, SubjectNameGenerated, rec); err != nil {
			s.logger.Warn("failed to publish name event", zap.Error(err))
		}
	}
	if s.store != nil {
		if err := s.store.Save(ctx, s.gen.cache.Snapshot()); err != nil {
			s.logger.Warn("failed to save name cache", zap.Error(err))
		}
	}
}
