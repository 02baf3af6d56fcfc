package persona

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/genpersona/api/internal/llm"
	"github.com/genpersona/api/internal/metrics"
	"go.uber.org/zap"
)

const restateAttempts = 3

const restateSystemPrompt = "You rewrite short descriptions as one sentence about a single individual person."

const restateTemplate = `Rewrite the following description as ONE sentence about ONE individual person.
Include their approximate age and their role or occupation. Do not describe a company, team or organization.
Answer with the sentence only.

Description: %s`

const restateCorrection = "\n\nIMPORTANT: Your previous answer described a business or organization, not a person. " +
	"Convert it into an individual person, stating their age and their role."

// Restater normalizes a seed into a one-sentence note about a single person.
type Restater struct {
	client  llm.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
	intn    func(int) int
}

// NewRestater creates a restater.
func NewRestater(client llm.Client, model string, timeout time.Duration, logger *zap.Logger) *Restater {
	return &Restater{
		client:  client,
		model:   model,
		timeout: timeout,
		logger:  logger,
		intn:    rand.IntN,
	}
}

// Restate never fails. When the service keeps describing an organization,
// a business seed is converted locally and any other seed is returned as is.
func (r *Restater) Restate(ctx context.Context, seed string) string {
	corrective := false

	for attempt := 0; attempt < restateAttempts; attempt++ {
		prompt := fmt.Sprintf(restateTemplate, seed)
		if corrective {
			prompt += restateCorrection
		}

		text, err := callWithTimeout(ctx, r.client, r.timeout, llm.Request{
			SystemInstruction: restateSystemPrompt,
			UserPrompt:        prompt,
			Model:             r.model,
			Temperature:       llm.Temperature(0.3),
		})
		if err != nil {
			metrics.GenerationAttempts.WithLabelValues("restate", attemptOutcome(err)).Inc()
			r.logger.Warn("restatement attempt failed", zap.Int("attempt", attempt+1), zap.Error(err))
			continue
		}

		sentence := cleanSentence(text)
		if sentence == "" || DescribesOrganization(sentence) {
			metrics.GenerationAttempts.WithLabelValues("restate", metrics.OutcomeRejected).Inc()
			r.logger.Info("restatement still describes an organization",
				zap.Int("attempt", attempt+1),
				zap.String("sentence", sentence),
			)
			corrective = true
			continue
		}

		metrics.GenerationAttempts.WithLabelValues("restate", metrics.OutcomeValid).Inc()
		metrics.Restatements.WithLabelValues("restated").Inc()
		return sentence
	}

	if HasBusinessKeyword(seed) {
		metrics.Restatements.WithLabelValues("fallback").Inc()
		return r.fallbackSentence(seed)
	}
	metrics.Restatements.WithLabelValues("unchanged").Inc()
	return seed
}

// fallbackSentence turns an organization seed into a person deterministically
// apart from the drawn age and role.
func (r *Restater) fallbackSentence(seed string) string {
	age := 35 + r.intn(21)
	role := fallbackRoles[r.intn(len(fallbackRoles))]
	return fmt.Sprintf("A %d-year-old %s at %s", age, role, strings.ToLower(strings.TrimSpace(seed)))
}

func cleanSentence(text string) string {
	s := strings.TrimSpace(text)
	s = strings.Trim(s, "\"'`")
	return strings.TrimSpace(s)
}

func attemptOutcome(err error) string {
	if llm.IsTransport(err) {
		return metrics.OutcomeTransportError
	}
	return metrics.OutcomeUnexpectedError
}
