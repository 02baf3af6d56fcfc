package persona

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/genpersona/api/internal/llm"
	"github.com/genpersona/api/internal/metrics"
	"go.uber.org/zap"
)

const (
	nameAttempts     = 5
	firstNameRedraws = 10
	nameTemperature  = 1.1
	nameSystemPrompt = "You invent realistic, culturally diverse names for UX research personas."

	nameLabel  = "name:"
	titleLabel = "title:"
)

// NameSource says where a NameRecord came from.
type NameSource string

const (
	NameGenerated NameSource = "generated"
	NameFallback  NameSource = "fallback"
)

// NameRecord is an issued persona name.
type NameRecord struct {
	FullName      string     `json:"full_name"`
	Title         string     `json:"title"`
	SourcePersona string     `json:"source_persona"`
	Source        NameSource `json:"source"`
	Attempts      int        `json:"attempts"`
}

var errNoName = errors.New("response has no Name: line")

// GenerateName issues a name that is not in the deduplication cache.
//
// Up to five service attempts are made. Errors and collisions only cost an
// attempt; once the budget is spent a name is synthesized locally, so this
// never fails.
func (g *Generator) GenerateName(ctx context.Context, seed string) *NameRecord {
	if g.cache.Downsize() {
		g.logger.Info("name cache downsized")
	}

	restated := g.restater.Restate(ctx, seed)

	for attempt := 0; attempt < nameAttempts; attempt++ {
		text, err := g.call(ctx, llm.Request{
			SystemInstruction: nameSystemPrompt,
			UserPrompt:        g.namePrompt(seed, restated),
			Model:             g.opts.NameModel,
			Temperature:       llm.Temperature(nameTemperature),
		})
		if err != nil {
			metrics.GenerationAttempts.WithLabelValues("name", attemptOutcome(err)).Inc()
			g.logger.Warn("name attempt failed", zap.Int("attempt", attempt+1), zap.Error(err))
			continue
		}

		full, title, err := parseNameResponse(text)
		if err != nil {
			metrics.GenerationAttempts.WithLabelValues("name", metrics.OutcomeParseError).Inc()
			g.logger.Warn("name attempt did not parse", zap.Int("attempt", attempt+1), zap.Error(err))
			continue
		}

		if !g.cache.Reserve(full) {
			fullSeen, firstSeen := g.cache.Seen(full)
			metrics.GenerationAttempts.WithLabelValues("name", metrics.OutcomeCollision).Inc()
			g.logger.Info("generated name already issued",
				zap.Int("attempt", attempt+1),
				zap.String("name", full),
				zap.Bool("full_name_seen", fullSeen),
				zap.Bool("first_name_seen", firstSeen),
			)
			continue
		}

		if title == "" {
			title = InferTitle(seed)
		}
		metrics.GenerationAttempts.WithLabelValues("name", metrics.OutcomeValid).Inc()
		metrics.NameResults.WithLabelValues(string(NameGenerated)).Inc()
		return &NameRecord{
			FullName:      full,
			Title:         title,
			SourcePersona: seed,
			Source:        NameGenerated,
			Attempts:      attempt + 1,
		}
	}

	record := g.fallbackName(seed)
	g.logger.Warn("name generation exhausted; synthesized fallback",
		zap.String("name", record.FullName),
		zap.String("title", record.Title),
	)
	metrics.NameResults.WithLabelValues(string(NameFallback)).Inc()
	return record
}

// fallbackName draws a first and last name locally. The first name is
// redrawn a bounded number of times on collision, so a repeat is possible
// once most first names have been issued.
func (g *Generator) fallbackName(seed string) *NameRecord {
	last := allFallbackLastNames[g.intn(len(allFallbackLastNames))]
	full := g.cache.ReserveFallback(func() string {
		return allFallbackFirstNames[g.intn(len(allFallbackFirstNames))]
	}, firstNameRedraws, last)

	return &NameRecord{
		FullName:      full,
		Title:         InferTitle(seed),
		SourcePersona: seed,
		Source:        NameFallback,
		Attempts:      nameAttempts,
	}
}

// uniquenessToken varies every prompt so cached or greedy completions
// don't hand back the same name.
func (g *Generator) uniquenessToken(seed string) string {
	h := fnv.New32a()
	h.Write([]byte(seed))
	letter := rune('A' + g.intn(26))
	return fmt.Sprintf("%08x-%d-%d-%c", h.Sum32(), g.now().UnixNano()%1_000_000, g.intn(100_000), letter)
}

func (g *Generator) namePrompt(seed, restated string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Invent a full name and a short professional title for this person:\n%s\n\n", restated)
	fmt.Fprintf(&b, "Uniqueness seed: %s (use it to vary your choice).\n\n", g.uniquenessToken(seed))
	b.WriteString("Draw from the whole world. Examples of the range expected:\n")
	for _, group := range fallbackFirstNames {
		examples := group.names
		if len(examples) > 3 {
			examples = examples[:3]
		}
		fmt.Fprintf(&b, "- %s: %s\n", group.background, strings.Join(examples, ", "))
	}
	fmt.Fprintf(&b, "\nDo NOT use any of these overused names: %s.\n", strings.Join(overusedNames, ", "))
	b.WriteString("Do not reuse the example names verbatim.\n\n")
	b.WriteString("Answer with exactly two lines:\nName: <first name> <last name>\nTitle: <professional title>")
	return b.String()
}

// parseNameResponse reads the "Name:" and "Title:" lines, tolerating
// markdown emphasis and list markers around the labels.
func parseNameResponse(text string) (full, title string, err error) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.NewReplacer("*", "", "_", "").Replace(line))
		line = strings.TrimLeft(line, "-• ")
		lower := strings.ToLower(line)

		switch {
		case full == "" && strings.HasPrefix(lower, nameLabel):
			full = cleanLabelValue(line[len(nameLabel):])
		case title == "" && strings.HasPrefix(lower, titleLabel):
			title = cleanLabelValue(line[len(titleLabel):])
		}
	}
	if full == "" {
		return "", "", errNoName
	}
	return full, title, nil
}

func cleanLabelValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'`.")
	return strings.Join(strings.Fields(s), " ")
}
