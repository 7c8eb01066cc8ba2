package browser_fx

import (
	"context"

	"go.uber.org/fx"

	"quizsolver/internal/infra"
	"quizsolver/internal/services"
	"quizsolver/pkg/utils"
)

var Module = fx.Provide(provideRenderer)

func provideRenderer(lc fx.Lifecycle, cfg utils.AppConfig) services.PageRendererInterface {
	renderer := infra.NewBrowserRenderer(cfg.BrowserTimeout, cfg.RenderSettle)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			renderer.Close()
			return nil
		},
	})

	return renderer
}
