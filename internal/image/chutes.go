package image

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kazerbreaker/murdero-image-studio/internal/log"
	"github.com/samber/do"
)

const ChutesURL = "https://image.chutes.ai/generate"

// maxErrorBody bounds how much of a failed response ends up in a StatusError.
const maxErrorBody = 512

type ChutesGenerator struct {
	Client *http.Client
	URL    string
	Token  string
}

func NewChutesGenerator(i *do.Injector) (Generator, error) {
	return &ChutesGenerator{
		Client: do.MustInvoke[*http.Client](i),
		URL:    do.MustInvokeNamed[string](i, "chutes_url"),
		Token:  do.MustInvokeNamed[string](i, "chutes_token"),
	}, nil
}

func (g *ChutesGenerator) Generate(ctx context.Context, params Params) (*Result, error) {
	if !ValidToken(g.Token) {
		return nil, ErrMissingToken
	}
	if strings.TrimSpace(params.Prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	url := g.URL
	if url == "" {
		url = ChutesURL
	}

	logger := log.FromContextOrDiscard(ctx).WithGroup("chutes").With("url", url, "model", params.Model)
	logger.Info("generating image", "steps", params.Steps, "guidance_scale", params.GuidanceScale)

	body, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(g.Token))

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("api request failed: %w", err)
	}

	img, format, err := Decode(data)
	if err != nil {
		return nil, err
	}
	logger.Info("received image", "format", format, "bytes", len(data))

	return &Result{Data: data, Image: img, Format: format}, nil
}
