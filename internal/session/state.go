package session

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/kazerbreaker/murdero-image-studio/internal/image"
	"github.com/samber/lo"
)

const (
	MinGuidanceScale     = 1.0
	MaxGuidanceScale     = 20.0
	GuidanceScaleStep    = 0.5
	DefaultGuidanceScale = 7.5

	MinSteps     = 10
	MaxSteps     = 150
	StepsStep    = 10
	DefaultSteps = 50
)

var ErrBusy = errors.New("a generation is already in progress")

// Form carries the user's edits as submitted by the page.
type Form struct {
	Prompt        string  `form:"prompt"`
	Model         string  `form:"model"`
	GuidanceScale float64 `form:"guidance_scale"`
	Steps         int     `form:"steps"`
}

// State is the per-browser record of the current selections. The embedded
// mutex guards the fields; busy is held for the duration of a generation.
type State struct {
	sync.Mutex

	ID            string
	Prompt        string
	Model         image.Model
	GuidanceScale float64
	Steps         int
	Image         *image.Result
	GeneratedAt   time.Time
	Error         string

	// Generation changes on every Reset; results started under an older
	// generation are dropped.
	Generation uint64

	busy sync.Mutex
}

func New(id string) *State {
	s := &State{ID: id}
	s.Reset()
	return s
}

// Reset clears prompt, image and error and restores every selection to its default.
func (s *State) Reset() {
	s.Prompt = ""
	s.Model = image.DefaultModel()
	s.GuidanceScale = DefaultGuidanceScale
	s.Steps = DefaultSteps
	s.Image = nil
	s.GeneratedAt = time.Time{}
	s.Error = ""
	s.Generation++
}

func (s *State) Apply(f Form) {
	s.Prompt = f.Prompt
	s.Model = image.LookupModel(f.Model)

	guidance := f.GuidanceScale
	if math.IsNaN(guidance) || math.IsInf(guidance, 0) {
		guidance = DefaultGuidanceScale
	}
	s.GuidanceScale = snapFloat(lo.Clamp(guidance, MinGuidanceScale, MaxGuidanceScale), GuidanceScaleStep)
	s.Steps = snapInt(lo.Clamp(f.Steps, MinSteps, MaxSteps), StepsStep)
}

func (s *State) Params() image.Params {
	return image.Params{
		Model:          s.Model.ID,
		Prompt:         s.Prompt,
		NegativePrompt: image.NegativePrompt,
		GuidanceScale:  s.GuidanceScale,
		Width:          image.Width,
		Height:         image.Height,
		Steps:          s.Steps,
	}
}

// Acquire marks the state as generating. The returned func releases it.
func (s *State) Acquire() (func(), error) {
	if !s.busy.TryLock() {
		return nil, ErrBusy
	}
	return s.busy.Unlock, nil
}

func snapFloat(v, step float64) float64 {
	return math.Round(v/step) * step
}

func snapInt(v, step int) int {
	return (v + step/2) / step * step
}
