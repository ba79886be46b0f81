// Package words holds the fixed word catalog a game session draws its
// secret words from.
package words

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
)

//go:embed palavras.json
var embeddedCatalog []byte

var ErrEmptyCatalog = errors.New("empty-word-catalog")

// Catalog is an immutable word list loaded once at process start.
type Catalog struct {
	words []string
	rng   *rand.Rand
}

// Load reads the catalog from path, or falls back to the embedded list
// when path is empty.
func Load(path string) (*Catalog, error) {
	raw := embeddedCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read word catalog %s: %w", path, err)
		}
		raw = b
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("parse word catalog: %w", err)
	}
	return NewCatalog(list)
}

func NewCatalog(list []string) (*Catalog, error) {
	return NewCatalogWithRand(list, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}

// NewCatalogWithRand takes the random source to draw with, so a fixed
// seed yields a reproducible word sequence.
func NewCatalogWithRand(list []string, rng *rand.Rand) (*Catalog, error) {
	if len(list) == 0 {
		return nil, ErrEmptyCatalog
	}
	words := make([]string, len(list))
	copy(words, list)
	return &Catalog{words: words, rng: rng}, nil
}

// Draw picks one word uniformly at random. Nothing prevents the same
// word from coming up again in a later round.
func (c *Catalog) Draw() string {
	return c.words[c.rng.IntN(len(c.words))]
}

func (c *Catalog) Size() int {
	return len(c.words)
}
