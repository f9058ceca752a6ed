package main

import (
	"context"
	"embed"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"

	"blocknote/internal/app"
	"blocknote/internal/cli"
	"blocknote/internal/logging"
	"blocknote/internal/service"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd(runGUI).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func runGUI(ctx context.Context, env *cli.Env) error {
	a := app.New(env.Config, env.Log.Logger)
	if err := a.Open(ctx); err != nil {
		return fmt.Errorf("open app: %w", err)
	}
	size := a.WindowSize(ctx)

	// macOS needs an Edit menu for Cmd+C/V/X/A to reach the WebView
	appMenu := menu.NewMenu()
	appMenu.Append(menu.EditMenu())

	return wails.Run(&options.App{
		Title:     "blocknote",
		Width:     size.Width,
		Height:    size.Height,
		MinWidth:  service.MinWindowWidth,
		MinHeight: service.MinWindowHeight,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour:   &options.RGBA{R: 255, G: 255, B: 255, A: 1},
		Menu:               appMenu,
		Logger:             logging.NewWailsLogger(env.Log.Logger),
		LogLevel:           logging.WailsLevel(env.Log.GetLevel()),
		LogLevelProduction: logging.WailsLevel(env.Log.GetLevel()),
		OnStartup:          a.Startup,
		OnShutdown:         a.Shutdown,
		Bind: []interface{}{
			a,
		},
		Mac: &mac.Options{
			TitleBar: &mac.TitleBar{
				TitlebarAppearsTransparent: true,
				HideTitle:                  true,
				FullSizeContent:            true,
			},
			About: &mac.AboutInfo{
				Title:   "blocknote",
				Message: "A single-page block note editor",
			},
		},
	})
}
