package image

import "github.com/samber/lo"

type Model struct {
	Name        string
	ID          string
	RateLimited bool
}

var Models = []Model{
	{Name: "Chroma", ID: "chroma"},
	{Name: "Qwen Image", ID: "qwen-image", RateLimited: true},
	{Name: "JuggernautXL", ID: "JuggernautXL"},
	{Name: "Neta Lumina", ID: "neta-lumina"},
	{Name: "FLUX-1 Schnell", ID: "FLUX.1-schnell", RateLimited: true},
}

func DefaultModel() Model {
	return Models[0]
}

// LookupModel resolves a display name, falling back to the default model.
func LookupModel(name string) Model {
	return lo.FindOrElse(Models, DefaultModel(), func(m Model) bool {
		return m.Name == name
	})
}

func FreeModels() []Model {
	return lo.Reject(Models, func(m Model, _ int) bool { return m.RateLimited })
}

func RateLimitedModels() []Model {
	return lo.Filter(Models, func(m Model, _ int) bool { return m.RateLimited })
}
