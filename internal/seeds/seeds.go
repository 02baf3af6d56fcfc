// Package seeds loads the corpus of persona descriptions used when a caller
// asks for a persona without supplying one.
package seeds

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
)

// ErrUnavailable is returned when no seed can be picked.
var ErrUnavailable = errors.New("seed corpus unavailable")

// Corpus is an immutable list of seed descriptions.
type Corpus struct {
	seeds []string
	intn  func(int) int
}

// New builds a corpus from in-memory seeds, dropping blank entries.
func New(items []string) *Corpus {
	c := &Corpus{intn: rand.IntN}
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			c.seeds = append(c.seeds, s)
		}
	}
	return c
}

// Load reads a corpus file. Two layouts are accepted: a JSON array of
// strings, or JSON Lines where every line is an object with a "persona" field.
func Load(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed corpus: %w", err)
	}
	return Parse(data)
}

// Parse decodes corpus bytes in either layout accepted by Load.
func Parse(data []byte) (*Corpus, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrUnavailable)
	}

	var items []string
	if data[0] == '[' {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("decode seed array: %w", err)
		}
	} else {
		var err error
		if items, err = parseLines(data); err != nil {
			return nil, err
		}
	}

	c := New(items)
	if c.Len() == 0 {
		return nil, fmt.Errorf("%w: no non-empty seeds", ErrUnavailable)
	}
	return c, nil
}

type line struct {
	Persona string `json:"persona"`
}

func parseLines(data []byte) ([]string, error) {
	var items []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var l line
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, fmt.Errorf("decode seed line %d: %w", n, err)
		}
		items = append(items, l.Persona)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan seed lines: %w", err)
	}
	return items, nil
}

// Len returns the number of seeds. A nil corpus is empty.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.seeds)
}

// Random picks a seed uniformly.
func (c *Corpus) Random() (string, error) {
	if c.Len() == 0 {
		return "", ErrUnavailable
	}
	return c.seeds[c.intn(len(c.seeds))], nil
}

// All returns a copy of every seed in file order.
func (c *Corpus) All() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.seeds...)
}
