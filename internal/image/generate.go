package image

import (
	"context"
	"errors"
	"fmt"
	stdimage "image"
	"strings"
)

const (
	Width  = 1024
	Height = 1024

	NegativePrompt = "low quality, blurry, watermark, text, anatomical issues, extra limbs, mutated hands, asymmetrical features"

	// PlaceholderToken is the value shipped in example .env files.
	PlaceholderToken = "YOUR_API_KEY_HERE"
)

var (
	ErrMissingToken = errors.New("api token not configured")
	ErrEmptyPrompt  = errors.New("prompt is required")
	ErrInvalidImage = errors.New("invalid image response from api")
)

type Params struct {
	Model          string  `json:"model"`
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt"`
	GuidanceScale  float64 `json:"guidance_scale"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Steps          int     `json:"num_inference_steps"`
}

type Result struct {
	Data   []byte
	Image  stdimage.Image
	Format string
}

type Generator interface {
	Generate(context.Context, Params) (*Result, error)
}

// StatusError is returned when the api answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("api status %d", e.StatusCode)
	}
	return fmt.Sprintf("api status %d: %s", e.StatusCode, e.Body)
}

// ValidToken reports whether token is set and not the placeholder.
func ValidToken(token string) bool {
	token = strings.TrimSpace(token)
	return token != "" && token != PlaceholderToken
}
