package persona

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/genpersona/api/internal/llm"
	"github.com/genpersona/api/internal/metrics"
	"go.uber.org/zap"
)

const documentSystemPrompt = "You are a helpful UX researcher who creates detailed user personas. " +
	"You answer with a single JSON object and nothing else."

const documentTemplate = `Create a detailed UX persona based on the following information:

%s

Requirements:
1. Cover the persona's name, demographics (age, gender, occupation, education, location, income), goals,
   frustrations, behaviors, motivations, technological proficiency and preferred channels.
2. Make the persona realistic and usable for UX design work.
3. Respond with a JSON object using exactly this structure:
%s`

// Status tags how trustworthy a DocumentResult is.
type Status string

const (
	StatusValid    Status = "valid"    // passed the field spec
	StatusDegraded Status = "degraded" // valid JSON, schema incomplete
	StatusRaw      Status = "raw"      // never parsed; raw model text
)

// DocumentResult is the outcome of GenerateDocument.
type DocumentResult struct {
	// Document is indented JSON, or raw model text when Status is StatusRaw.
	Document    string
	Status      Status
	Attempts    int
	FailurePath string
}

// Err returns nil for a valid document and ErrValidationDegraded otherwise.
func (r *DocumentResult) Err() error {
	if r.Status == StatusValid {
		return nil
	}
	if r.FailurePath != "" {
		return fmt.Errorf("%w (%s at %s)", ErrValidationDegraded, r.Status, r.FailurePath)
	}
	return fmt.Errorf("%w (%s)", ErrValidationDegraded, r.Status)
}

// GenerateDocument asks the service for a UX persona document, retrying
// with corrective feedback until it validates or the attempt budget is spent.
//
// Transport failures abort immediately with ErrTransport. On the last attempt
// whatever came back is returned with a degraded status rather than an error.
func (g *Generator) GenerateDocument(ctx context.Context, seed string) (*DocumentResult, error) {
	maxAttempts := g.opts.MaxAttempts
	if maxAttempts <= 0 {
		return nil, fmt.Errorf("%w: attempt budget is %d", ErrGenerationExhausted, maxAttempts)
	}

	start := time.Now()
	defer func() { metrics.DocumentDuration.Observe(time.Since(start).Seconds()) }()

	var (
		best        *DocumentResult
		lastFailure string
		lastErr     error
	)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		last := attempt == maxAttempts-1
		req := g.documentRequest(seed, attempt, maxAttempts, lastFailure)

		raw, err := g.call(ctx, req)
		if err != nil {
			if llm.IsTransport(err) {
				metrics.GenerationAttempts.WithLabelValues("document", metrics.OutcomeTransportError).Inc()
				g.logger.Error("document generation aborted on transport failure",
					zap.Int("attempt", attempt+1),
					zap.Error(err),
				)
				return nil, fmt.Errorf("%w: attempt %d: %w", ErrTransport, attempt+1, err)
			}
			metrics.GenerationAttempts.WithLabelValues("document", metrics.OutcomeUnexpectedError).Inc()
			g.logger.Warn("document attempt failed", zap.Int("attempt", attempt+1), zap.Error(err))
			lastErr = err
			continue
		}

		candidate := ExtractCandidate(raw)
		doc, err := parseDocument(candidate)
		if err != nil {
			perr := &ParseError{Attempt: attempt + 1, Err: err}
			metrics.GenerationAttempts.WithLabelValues("document", metrics.OutcomeParseError).Inc()
			g.logger.Warn("document attempt did not parse", zap.Error(perr))
			best = &DocumentResult{Document: raw, Status: StatusRaw, Attempts: attempt + 1}
			lastFailure = ""
			lastErr = perr
			if last {
				return g.finish(best), nil
			}
			continue
		}

		pretty, err := indentDocument(candidate)
		if err != nil {
			return nil, fmt.Errorf("indent document: %w", err)
		}

		outcome := Validate(doc, g.spec)
		if outcome.Valid {
			metrics.GenerationAttempts.WithLabelValues("document", metrics.OutcomeValid).Inc()
			g.logger.Info("document generated", zap.Int("attempts", attempt+1))
			return g.finish(&DocumentResult{Document: string(pretty), Status: StatusValid, Attempts: attempt + 1}), nil
		}

		serr := &SchemaIncompleteError{Attempt: attempt + 1, Outcome: outcome}
		metrics.GenerationAttempts.WithLabelValues("document", metrics.OutcomeSchemaIncomplete).Inc()
		g.logger.Warn("document attempt failed validation", zap.Error(serr))
		best = &DocumentResult{
			Document:    string(pretty),
			Status:      StatusDegraded,
			Attempts:    attempt + 1,
			FailurePath: outcome.FailurePath,
		}
		lastFailure = outcome.FailurePath
		lastErr = serr
		if last {
			return g.finish(best), nil
		}
	}

	// Only reachable when the final attempt produced no text at all.
	if best != nil {
		best.Attempts = maxAttempts
		return g.finish(best), nil
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrGenerationExhausted, maxAttempts, lastErr)
}

func (g *Generator) finish(r *DocumentResult) *DocumentResult {
	metrics.DocumentResults.WithLabelValues(string(r.Status)).Inc()
	if r.Status != StatusValid {
		g.logger.Warn("returning best-effort document",
			zap.String("status", string(r.Status)),
			zap.String("failure_path", r.FailurePath),
			zap.Int("attempts", r.Attempts),
		)
	}
	return r
}

func (g *Generator) documentRequest(seed string, attempt, maxAttempts int, failurePath string) llm.Request {
	prompt := fmt.Sprintf(documentTemplate, seed, g.spec.Describe())
	if attempt > 0 {
		prompt += correctiveInstruction(attempt, maxAttempts, failurePath)
	}
	return llm.Request{
		SystemInstruction: documentSystemPrompt,
		UserPrompt:        prompt,
		Model:             g.opts.PersonaModel,
	}
}

const correctiveMarker = "Your previous response was missing required fields"

func correctiveInstruction(attempt, maxAttempts int, failurePath string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n\nIMPORTANT: %s or was not valid JSON. This is attempt %d of %d.", correctiveMarker, attempt+1, maxAttempts)
	if failurePath != "" {
		fmt.Fprintf(&b, " The first missing field was %q.", failurePath)
	}
	b.WriteString(" Respond with ONLY the JSON object, including every required field.")
	return b.String()
}

// parseDocument decodes a candidate for validation only. Numbers stay
// json.Number so nothing is rounded.
func parseDocument(candidate string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(candidate))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON object")
	}
	if doc == nil {
		return nil, errors.New("payload is null")
	}
	return doc, nil
}

// indentDocument pretty-prints the candidate as the service wrote it: key
// order, number literals and characters such as & are kept.
func indentDocument(candidate string) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(strings.TrimSpace(candidate)), "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}
