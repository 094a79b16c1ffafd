package inject

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/kazerbreaker/murdero-image-studio/internal/config"
	"github.com/kazerbreaker/murdero-image-studio/internal/handler"
	"github.com/kazerbreaker/murdero-image-studio/internal/image"
	"github.com/kazerbreaker/murdero-image-studio/internal/log"
	"github.com/kazerbreaker/murdero-image-studio/internal/page"
	"github.com/kazerbreaker/murdero-image-studio/internal/param"
	"github.com/kazerbreaker/murdero-image-studio/internal/prompt"
	"github.com/kazerbreaker/murdero-image-studio/internal/server"
	"github.com/kazerbreaker/murdero-image-studio/internal/session"
	"github.com/kazerbreaker/murdero-image-studio/internal/store"
	"github.com/samber/do"
)

func Setup(ctx context.Context, cfg *config.Config) *do.Injector {
	logger := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...))
		},
	})
	do.ProvideValue[*config.Config](injector, cfg)

	// aws clients are only built when a parameter or the bucket archive needs them
	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return awsconfig.LoadDefaultConfig(ctx)
	})
	do.Provide[*ssm.Client](injector, func(i *do.Injector) (*ssm.Client, error) {
		return ssm.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*s3.Client](injector, func(i *do.Injector) (*s3.Client, error) {
		return s3.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.ProvideValue[*http.Client](injector, &http.Client{Timeout: cfg.HTTPTimeout})

	do.Provide[param.Fetcher](injector, func(i *do.Injector) (param.Fetcher, error) {
		return param.Lazy(func() param.Fetcher {
			return do.MustInvokeNamed[param.Fetcher](i, "parameter_store")
		}), nil
	})
	do.ProvideNamed[param.Fetcher](injector, "parameter_store", param.NewParameterStoreFetcher)

	do.ProvideNamed[string](injector, "chutes_token", func(i *do.Injector) (string, error) {
		return param.Resolve(ctx, do.MustInvoke[param.Fetcher](i), cfg.ChutesTokenParam, cfg.ChutesToken)
	})
	do.ProvideNamed[[]string](injector, "suggestions", func(i *do.Injector) ([]string, error) {
		return param.ResolveAll(ctx, do.MustInvoke[param.Fetcher](i), cfg.SuggestionsParam, nil)
	})
	do.ProvideNamedValue[string](injector, "chutes_url", cfg.ChutesURL)
	do.ProvideNamedValue[time.Duration](injector, "session_ttl", cfg.SessionTTL)

	do.Provide[store.Uploader](injector, func(i *do.Injector) (store.Uploader, error) {
		switch {
		case cfg.ArchiveBucket != "":
			return &store.S3Uploader{Client: do.MustInvoke[*s3.Client](i), Bucket: cfg.ArchiveBucket}, nil
		case cfg.ArchiveDir != "":
			return &store.FileUploader{Dir: cfg.ArchiveDir}, nil
		default:
			return store.NopUploader{}, nil
		}
	})
	do.Provide[image.Generator](injector, image.NewChutesGenerator)
	do.Provide[*page.Templator](injector, page.NewTemplator)
	do.Provide[*prompt.Randomizer](injector, prompt.NewRandomizerFromInjector)
	do.Provide[*session.Store](injector, session.NewStoreFromInjector)

	do.Provide[*handler.Handler](injector, handler.NewHandler)
	do.Provide[*server.Server](injector, func(i *do.Injector) (*server.Server, error) {
		h := do.MustInvoke[*handler.Handler](i)
		return server.New(cfg.ListenAddr, h.Routes(logger)), nil
	})

	return injector
}
