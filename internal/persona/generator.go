package persona

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/genpersona/api/internal/llm"
	"go.uber.org/zap"
)

// Options tunes the generation loops.
type Options struct {
	PersonaModel   string
	NameModel      string
	MaxAttempts    int
	AttemptTimeout time.Duration
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		PersonaModel:   "google/gemini-2.0-flash-001",
		NameModel:      "google/gemini-2.0-flash-001",
		MaxAttempts:    3,
		AttemptTimeout: 60 * time.Second,
	}
}

// Generator drives the generative service: documents through the
// validate-and-retry loop, names through restatement and deduplication.
type Generator struct {
	client   llm.Client
	spec     *FieldSpec
	cache    *NameCache
	restater *Restater
	opts     Options
	logger   *zap.Logger

	now  func() time.Time
	intn func(int) int
}

// NewGenerator creates a generator. cache is shared by every caller that
// must not see repeated names; pass the same instance to all of them.
func NewGenerator(client llm.Client, spec *FieldSpec, cache *NameCache, opts Options, logger *zap.Logger) *Generator {
	if spec == nil {
		spec = DefaultFieldSpec()
	}
	if cache == nil {
		cache = NewNameCache()
	}
	g := &Generator{
		client: client,
		spec:   spec,
		cache:  cache,
		opts:   opts,
		logger: logger,
		now:    time.Now,
		intn:   rand.IntN,
	}
	g.restater = NewRestater(client, opts.NameModel, opts.AttemptTimeout, logger)
	return g
}

// Cache returns the deduplication cache the generator writes to.
func (g *Generator) Cache() *NameCache {
	return g.cache
}

// call runs one generative request under the per-attempt deadline.
func (g *Generator) call(ctx context.Context, req llm.Request) (string, error) {
	return callWithTimeout(ctx, g.client, g.opts.AttemptTimeout, req)
}

func callWithTimeout(ctx context.Context, client llm.Client, timeout time.Duration, req llm.Request) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	text, err := client.Generate(ctx, req)
	if err != nil && !llm.IsTransport(err) && ctx.Err() != nil {
		// Providers that ignore the context still lose the attempt to the deadline.
		return "", &llm.TransportError{Err: ctx.Err()}
	}
	return text, err
}
