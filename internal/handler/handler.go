package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kazerbreaker/murdero-image-studio/internal/image"
	"github.com/kazerbreaker/murdero-image-studio/internal/log"
	"github.com/kazerbreaker/murdero-image-studio/internal/page"
	"github.com/kazerbreaker/murdero-image-studio/internal/prompt"
	"github.com/kazerbreaker/murdero-image-studio/internal/session"
	"github.com/kazerbreaker/murdero-image-studio/internal/store"
	"github.com/samber/do"
)

const MissingTokenMessage = `API key not found. Please set your Chutes AI API key:

For Local Development: create a .env file in the project root with CHUTES_API_TOKEN="your_actual_api_key"

For Deployment: set the CHUTES_API_TOKEN environment variable or CHUTES_API_TOKEN_PARAM to an SSM parameter holding it.`

// FileName is the download name for an image produced at t.
func FileName(t time.Time) string {
	return "generated_image_" + t.Format("20060102-150405") + ".png"
}

type Handler struct {
	generator  image.Generator
	uploader   store.Uploader
	templator  *page.Templator
	randomizer *prompt.Randomizer
	sessions   *session.Store
	url        string
	hasToken   bool
	now        func() time.Time
}

func NewHandler(i *do.Injector) (*Handler, error) {
	token := do.MustInvokeNamed[string](i, "chutes_token")
	return &Handler{
		generator:  do.MustInvoke[image.Generator](i),
		uploader:   do.MustInvoke[store.Uploader](i),
		templator:  do.MustInvoke[*page.Templator](i),
		randomizer: do.MustInvoke[*prompt.Randomizer](i),
		sessions:   do.MustInvoke[*session.Store](i),
		url:        do.MustInvokeNamed[string](i, "chutes_url"),
		hasToken:   image.ValidToken(token),
		now:        time.Now,
	}, nil
}

// Generate runs one generation for s. On failure the previous image is kept
// and the user-facing message is recorded on s.
func (h *Handler) Generate(ctx context.Context, s *session.State) error {
	release, err := h.acquire(s)
	if err != nil {
		return err
	}
	defer release()

	return h.generate(ctx, s)
}

// Submit applies the user's edits and generates. Edits are only applied once
// no other generation is running for s.
func (h *Handler) Submit(ctx context.Context, s *session.State, form session.Form) error {
	release, err := h.acquire(s)
	if err != nil {
		return err
	}
	defer release()

	s.Lock()
	s.Apply(form)
	s.Unlock()

	return h.generate(ctx, s)
}

func (h *Handler) acquire(s *session.State) (func(), error) {
	release, err := s.Acquire()
	if err != nil {
		s.Lock()
		s.Error = h.UserMessage(err, "")
		s.Unlock()
		return nil, err
	}
	return release, nil
}

func (h *Handler) generate(ctx context.Context, s *session.State) error {
	s.Lock()
	params := s.Params()
	generation := s.Generation
	s.Error = ""
	s.Unlock()

	log := log.FromContextOrDiscard(ctx).WithGroup("Handler").With("session", s.ID, "model", params.Model)
	log.Info("handling generate")

	result, err := h.generator.Generate(ctx, params)

	s.Lock()
	if s.Generation != generation {
		s.Unlock()
		log.Info("session was reset during generation, dropping result")
		return err
	}
	if err != nil {
		s.Error = h.UserMessage(err, params.Model)
		s.Unlock()
		log.Warn("generation failed", "error", err)
		return err
	}
	s.Image = result
	s.GeneratedAt = h.now()
	s.Unlock()

	if err := h.archive(ctx, params, result); err != nil {
		log.Error("archiving image failed", "error", err)
	}
	return nil
}

// NewImage is the "new image" action.
func (h *Handler) NewImage(ctx context.Context, s *session.State) {
	log.FromContextOrDiscard(ctx).WithGroup("Handler").Info("handling new image", "session", s.ID)
	s.Lock()
	defer s.Unlock()
	s.Reset()
}

// Download encodes the stored image as PNG and names it after the current time.
func (h *Handler) Download(s *session.State) (string, []byte, error) {
	s.Lock()
	result := s.Image
	s.Unlock()

	if result == nil {
		return "", nil, ErrNoImage
	}
	data, err := image.EncodePNG(result.Image)
	if err != nil {
		return "", nil, err
	}
	return FileName(h.now()), data, nil
}

func (h *Handler) Render(ctx context.Context, s *session.State) ([]byte, error) {
	s.Lock()
	params := page.Params{
		Models:         image.Models,
		FreeModels:     image.FreeModels(),
		LimitedModels:  image.RateLimitedModels(),
		Model:          s.Model.Name,
		Prompt:         s.Prompt,
		Placeholder:    h.randomizer.Suggest(ctx),
		NegativePrompt: image.NegativePrompt,
		GuidanceScale:  s.GuidanceScale,
		MinGuidance:    session.MinGuidanceScale,
		MaxGuidance:    session.MaxGuidanceScale,
		GuidanceStep:   session.GuidanceScaleStep,
		Steps:          s.Steps,
		MinSteps:       session.MinSteps,
		MaxSteps:       session.MaxSteps,
		StepsStep:      session.StepsStep,
		HasImage:       s.Image != nil,
		Error:          s.Error,
		MissingToken:   !h.hasToken,
	}
	if s.Image != nil {
		params.ImageVersion = strconv.FormatInt(s.GeneratedAt.UnixNano(), 10)
	}
	s.Unlock()

	return h.templator.Template(ctx, params)
}

var ErrNoImage = errors.New("no image has been generated yet")

// UserMessage turns a generation error into the text shown on the page.
func (h *Handler) UserMessage(err error, model string) string {
	switch {
	case errors.Is(err, image.ErrMissingToken):
		return MissingTokenMessage
	case errors.Is(err, image.ErrEmptyPrompt):
		return "Please enter a detailed prompt to generate an image."
	case errors.Is(err, session.ErrBusy):
		return "An image is already being generated. Please wait for it to finish."
	case errors.Is(err, image.ErrInvalidImage):
		return fmt.Sprintf("Invalid image response from API: %v", err)
	case err == nil:
		return ""
	default:
		return fmt.Sprintf("API request failed: %v\nTried endpoint: %s\nModel: %s", err, h.url, model)
	}
}

func (h *Handler) archive(ctx context.Context, params image.Params, result *image.Result) error {
	data, err := image.EncodePNG(result.Image)
	if err != nil {
		return err
	}
	return h.uploader.Upload(ctx, store.UploadParams{
		Name:        FileName(h.now()),
		Data:        data,
		ContentType: "image/png",
		Metadata: map[string]string{
			"model":               params.Model,
			"prompt":              params.Prompt,
			"guidance_scale":      strconv.FormatFloat(params.GuidanceScale, 'f', -1, 64),
			"num_inference_steps": strconv.Itoa(params.Steps),
		},
	})
}
