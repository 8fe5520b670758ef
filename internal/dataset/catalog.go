package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Catalog maps aspect -> polarity -> suggested emotions. It only feeds UI
// suggestions; submitted emotions are never checked against it.
type Catalog map[string]map[string][]string

// LoadCatalog reads the catalog document at path. Any failure is an
// ErrConfig; malformed JSON additionally matches ErrParse.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read emotion catalog: %w", ErrConfig, err)
	}

	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %w: emotion catalog %s: %v", ErrConfig, ErrParse, path, err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: emotion catalog %s is empty", ErrConfig, path)
	}
	return c, nil
}

// Suggestions returns the emotions listed for an aspect/polarity pair.
func (c Catalog) Suggestions(aspect, polarity string) []string {
	return c[aspect][polarity]
}

// Global returns the sorted, de-duplicated union of every aspect's emotions
// for polarity. Entries that differ only by Unicode form or surrounding
// whitespace collapse into one.
func (c Catalog) Global(polarity string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, groups := range c {
		for _, emo := range groups[polarity] {
			key := normalizeEmotion(emo)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// GlobalLists returns Global for every known polarity.
func (c Catalog) GlobalLists() map[string][]string {
	lists := make(map[string][]string, len(Polarities))
	for _, p := range Polarities {
		lists[p] = c.Global(p)
	}
	return lists
}

func normalizeEmotion(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}
