// Package phrase supplies random words and phrases by category
package phrase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strings"
	"sync"
)

var ErrUnknownCategory = errors.New("unknown phrase category")

// Source returns one phrase for a lower-case category
type Source interface {
	Phrase(ctx context.Context, category string) (string, error)
}

var wordLists = map[string][]string{
	"noun": {
		"lantern", "harbor", "whisper", "orchard", "compass", "ember", "thimble",
		"glacier", "meadow", "riddle", "anchor", "quill",
	},
	"verb": {
		"wander", "shimmer", "gallop", "murmur", "tumble", "unravel", "beckon",
		"scatter", "linger", "vanish",
	},
	"adjective": {
		"crooked", "velvet", "restless", "amber", "hollow", "gleaming", "ancient",
		"brittle", "curious", "silent",
	},
	"animal": {
		"heron", "badger", "otter", "lynx", "moth", "tortoise", "raven", "hare",
		"salamander", "wolf",
	},
	"name": {
		"Ada", "Bram", "Calla", "Dorian", "Elsa", "Fenwick", "Greta", "Hollis",
		"Ines", "Jasper",
	},
	"place": {
		"the salt marsh", "a lighthouse", "the old mill", "a clockmaker's attic",
		"the northern pass", "an abandoned observatory", "the night market",
	},
	"phrase": {
		"once in a blue moon", "against all odds", "at the stroke of midnight",
		"without a second thought", "as the tide turned",
	},
}

// Offline picks from built-in word lists
type Offline struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewOffline creates an offline source with a fixed seed
func NewOffline(seed int64) *Offline {
	return &Offline{rng: rand.New(rand.NewSource(seed))}
}

func (o *Offline) Phrase(_ context.Context, category string) (string, error) {
	words, ok := wordLists[category]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	o.mu.Lock()
	i := o.rng.Intn(len(words))
	o.mu.Unlock()
	return words[i], nil
}

// Categories lists the offline categories in sorted order
func Categories() []string {
	cats := make([]string, 0, len(wordLists))
	for c := range wordLists {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}

// Fallback asks Primary first and Secondary when Primary fails
type Fallback struct {
	Primary   Source
	Secondary Source
	Log       *slog.Logger
}

func (f Fallback) Phrase(ctx context.Context, category string) (string, error) {
	if f.Primary != nil {
		p, err := f.Primary.Phrase(ctx, category)
		if err == nil {
			return p, nil
		}
		if f.Log != nil {
			f.Log.Warn("phrase source failed, using fallback", "category", category, "error", err)
		}
		if f.Secondary == nil {
			return "", err
		}
	}
	if f.Secondary == nil {
		return "", errors.New("no phrase source configured")
	}
	return f.Secondary.Phrase(ctx, category)
}

// Normalize lower-cases and trims a category argument
func Normalize(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}
