package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/df07/go-radiosity-lightmap/pkg/core"
	"github.com/df07/go-radiosity-lightmap/pkg/loaders"
	"github.com/df07/go-radiosity-lightmap/pkg/renderer"
	"github.com/df07/go-radiosity-lightmap/pkg/scene"
	"github.com/df07/go-radiosity-lightmap/web/server"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	sceneName := flag.String("scene", "room", "Initial scene: built-in name, 'file:<name>' or scene file path")
	fps := flag.Int("fps", 30, "Frames rendered per second")
	texelScale := flag.Float64("texel-scale", 0, "World size of one lightmap texel (0 for the scene default)")
	watch := flag.Bool("watch", false, "Reload the lights when the scene file changes")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}

	config := scene.Config{TexelScale: float32(*texelScale)}
	process := renderer.NewBuildProcess()
	viewer := renderer.NewViewer(nil)
	webServer := server.NewServer(*port, config, process, viewer)

	// Server logs go to stderr, info and above also reach the web console
	textHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	core.SetLogger(slog.New(server.NewConsoleHandler(textHandler, webServer.ConsoleChannel(), slog.LevelInfo)))
	log := core.Logger()

	initialScene, err := loaders.LoadScene(*sceneName, config)
	if err != nil {
		log.Error("failed to load scene", "scene", *sceneName, "error", err)
		os.Exit(1)
	}
	process.SetScene(initialScene)
	viewer.SetScene(initialScene)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	process.Start()
	defer process.Shutdown()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return webServer.Start(ctx)
	})
	g.Go(func() error {
		return viewer.Run(ctx, *fps)
	})

	if *watch {
		if filepath.Ext(*sceneName) == "" {
			log.Warn("-watch needs a scene file path, ignoring", "scene", *sceneName)
		} else {
			watcher, err := loaders.NewLightWatcher(*sceneName, initialScene)
			if err != nil {
				log.Error("failed to watch scene file", "error", err)
				os.Exit(1)
			}
			defer watcher.Close()
			g.Go(func() error {
				return watcher.Run(ctx)
			})
		}
	}

	log.Info("radiosity lightmap viewer", "scene", initialScene.Name, "port", *port)
	if err := g.Wait(); err != nil {
		log.Error("server stopped", "error", err)
		process.Shutdown()
		os.Exit(1)
	}
}
