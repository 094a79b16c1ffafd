package image

import (
	"bytes"
	"encoding/json"
	stdimage "image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T) ([]byte, stdimage.Image) {
	t.Helper()

	img := stdimage.NewRGBA(stdimage.Rect(0, 0, 4, 4))
	img.Set(1, 2, color.RGBA{R: 200, G: 10, B: 30, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes(), img
}

func testParams() Params {
	return Params{
		Model:          "chroma",
		Prompt:         "a serene mountain landscape",
		NegativePrompt: NegativePrompt,
		GuidanceScale:  7.5,
		Width:          Width,
		Height:         Height,
		Steps:          50,
	}
}

func TestChutesGenerator_Generate(t *testing.T) {
	data, want := testPNG(t)

	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer server.Close()

	g := &ChutesGenerator{Client: server.Client(), URL: server.URL, Token: "secret"}
	result, err := g.Generate(t.Context(), testParams())
	require.NoError(t, err)

	assert.Equal(t, data, result.Data)
	assert.Equal(t, "png", result.Format)
	assert.Equal(t, want.Bounds(), result.Image.Bounds())
	assert.Equal(t, color.RGBAModel.Convert(want.At(1, 2)), color.RGBAModel.Convert(result.Image.At(1, 2)))

	assert.Equal(t, map[string]any{
		"model":               "chroma",
		"prompt":              "a serene mountain landscape",
		"negative_prompt":     NegativePrompt,
		"guidance_scale":      7.5,
		"width":               float64(1024),
		"height":              float64(1024),
		"num_inference_steps": float64(50),
	}, got)
}

func TestChutesGenerator_Preconditions(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		prompt  string
		wantErr error
	}{
		{name: "empty token", token: "", prompt: "cat", wantErr: ErrMissingToken},
		{name: "placeholder token", token: PlaceholderToken, prompt: "cat", wantErr: ErrMissingToken},
		{name: "blank token", token: "  ", prompt: "cat", wantErr: ErrMissingToken},
		{name: "empty prompt", token: "secret", prompt: "", wantErr: ErrEmptyPrompt},
		{name: "whitespace prompt", token: "secret", prompt: " \n\t", wantErr: ErrEmptyPrompt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
			}))
			defer server.Close()

			params := testParams()
			params.Prompt = tt.prompt

			g := &ChutesGenerator{Client: server.Client(), URL: server.URL, Token: tt.token}
			result, err := g.Generate(t.Context(), params)

			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, result)
			assert.Zero(t, calls.Load())
		})
	}
}

func TestChutesGenerator_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"detail":"invalid token"}`))
			},
			check: func(t *testing.T, err error) {
				var statusErr *StatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
				assert.Equal(t, `{"detail":"invalid token"}`, statusErr.Body)
				assert.Equal(t, `api status 401: {"detail":"invalid token"}`, err.Error())
			},
		},
		{
			name: "server error without body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			check: func(t *testing.T, err error) {
				assert.Equal(t, "api status 502", err.Error())
			},
		},
		{
			name: "not an image",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"status":"ok"}`))
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrInvalidImage)
			},
		},
		{
			name: "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrInvalidImage)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			g := &ChutesGenerator{Client: server.Client(), URL: server.URL, Token: "secret"}
			result, err := g.Generate(t.Context(), testParams())

			require.Error(t, err)
			assert.Nil(t, result)
			tt.check(t, err)
		})
	}
}

func TestChutesGenerator_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	g := &ChutesGenerator{Client: http.DefaultClient, URL: url, Token: "secret"}
	result, err := g.Generate(t.Context(), testParams())

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "api request failed")
}
