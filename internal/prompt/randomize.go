package prompt

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/kazerbreaker/murdero-image-studio/internal/log"
	"github.com/samber/do"
	"github.com/samber/lo"
)

const DefaultSuggestion = "e.g., A serene mountain landscape at sunset with vibrant colors and misty valleys"

// Randomizer hands out placeholder prompts for the prompt box.
type Randomizer struct {
	prompts []string

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRandomizer(prompts []string, seed int64) *Randomizer {
	prompts = lo.Filter(lo.Map(prompts, func(p string, _ int) string {
		return strings.TrimSpace(p)
	}), func(p string, _ int) bool {
		return p != ""
	})
	if len(prompts) == 0 {
		prompts = []string{DefaultSuggestion}
	}
	return &Randomizer{prompts: prompts, rnd: rand.New(rand.NewSource(seed))}
}

func NewRandomizerFromInjector(i *do.Injector) (*Randomizer, error) {
	prompts := do.MustInvokeNamed[[]string](i, "suggestions")
	return NewRandomizer(prompts, time.Now().UTC().Unix()), nil
}

func (r *Randomizer) Suggest(ctx context.Context) string {
	log.FromContextOrDiscard(ctx).Debug("picking placeholder prompt", "choices", len(r.prompts))

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.prompts[r.rnd.Intn(len(r.prompts))]
}
