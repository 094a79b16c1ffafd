package image

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestLookupModel(t *testing.T) {
	assert.Equal(t, "chroma", DefaultModel().ID)
	assert.Equal(t, "qwen-image", LookupModel("Qwen Image").ID)
	assert.Equal(t, "FLUX.1-schnell", LookupModel("FLUX-1 Schnell").ID)
	assert.Equal(t, DefaultModel(), LookupModel("Stable Diffusion 1"))
	assert.Equal(t, DefaultModel(), LookupModel(""))
}

func TestModelAccess(t *testing.T) {
	name := func(m Model, _ int) string { return m.Name }
	assert.Equal(t, []string{"Chroma", "JuggernautXL", "Neta Lumina"}, lo.Map(FreeModels(), name))
	assert.Equal(t, []string{"Qwen Image", "FLUX-1 Schnell"}, lo.Map(RateLimitedModels(), name))
}
