package page

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"io/fs"
	"sync"

	"github.com/kazerbreaker/murdero-image-studio/internal/image"
	"github.com/kazerbreaker/murdero-image-studio/internal/log"
	"github.com/samber/do"
)

//go:embed assets/index.html
var indexTmpl string

//go:embed assets/static
var static embed.FS

// Static serves the stylesheet and other assets under /static.
func Static() fs.FS {
	sub, err := fs.Sub(static, "assets/static")
	if err != nil {
		panic(err)
	}
	return sub
}

type Params struct {
	Models         []image.Model
	FreeModels     []image.Model
	LimitedModels  []image.Model
	Model          string
	Prompt         string
	Placeholder    string
	NegativePrompt string
	GuidanceScale  float64
	MinGuidance    float64
	MaxGuidance    float64
	GuidanceStep   float64
	Steps          int
	MinSteps       int
	MaxSteps       int
	StepsStep      int
	HasImage       bool
	ImageVersion   string
	Error          string
	MissingToken   bool
}

type Templator struct {
	tmpl *template.Template
	once sync.Once
}

func NewTemplator(*do.Injector) (*Templator, error) {
	return &Templator{}, nil
}

func (g *Templator) Template(ctx context.Context, params Params) ([]byte, error) {
	g.once.Do(func() {
		g.tmpl = template.Must(template.New("index").Parse(indexTmpl))
	})

	log := log.FromContextOrDiscard(ctx).WithGroup("templator")
	log.Debug("rendering page", "has_image", params.HasImage)

	var data bytes.Buffer
	if err := g.tmpl.Execute(&data, params); err != nil {
		return nil, err
	}
	return data.Bytes(), nil
}
