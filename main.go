package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-radiosity-lightmap/pkg/core"
	"github.com/df07/go-radiosity-lightmap/pkg/lightmap"
	"github.com/df07/go-radiosity-lightmap/pkg/lights"
	"github.com/df07/go-radiosity-lightmap/pkg/loaders"
	"github.com/df07/go-radiosity-lightmap/pkg/renderer"
	"github.com/df07/go-radiosity-lightmap/pkg/scene"
)

// Config holds the command line options
type Config struct {
	Scene       string
	Iterations  int
	Format      string
	TexelScale  float64
	DumpFactors bool
	Workers     int
	Verbose     bool
	Help        bool
}

func main() {
	config := parseFlags()

	if config.Help {
		showHelp()
		return
	}

	level := slog.LevelWarn
	if config.Verbose {
		level = slog.LevelDebug
	}
	core.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(config); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() Config {
	config := Config{}
	flag.StringVar(&config.Scene, "scene", "room", "Scene: built-in name, 'file:<name>' or path to a .toml/.yaml scene file")
	flag.IntVar(&config.Iterations, "iterations", 32, "Number of radiosity iterations")
	flag.StringVar(&config.Format, "format", "png", "Lightmap image format: png, tiff or bmp")
	flag.Float64Var(&config.TexelScale, "texel-scale", 0, "World size of one lightmap texel (0 for the scene default)")
	flag.BoolVar(&config.DumpFactors, "dump-factors", false, "Write the view factor matrix of each mesh")
	flag.IntVar(&config.Workers, "factor-workers", 1, "Workers solving the view factors (0 for one per CPU)")
	flag.BoolVar(&config.Verbose, "verbose", false, "Enable debug logging")
	flag.BoolVar(&config.Help, "help", false, "Show help information")
	flag.Parse()
	return config
}

func showHelp() {
	fmt.Println("Radiosity Lightmap Baker")
	fmt.Println("Usage: lightmap [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Available scenes:")
	for _, info := range scene.BuiltinScenes() {
		fmt.Printf("  %-8s - %s\n", info.ID, info.Description)
	}
	if files, err := scene.ListSceneFiles(); err == nil {
		for _, info := range files {
			fmt.Printf("  %-8s - %s\n", info.ID, info.Description)
		}
	}
	fmt.Println()
	fmt.Println("Lightmaps are saved to output/<scene>/<mesh>_<timestamp>.<format>")
}

// factorWorkers maps the -factor-workers flag onto scene.Config, where 0
// keeps the default single worker
func factorWorkers(flagValue int) int {
	if flagValue <= 0 {
		return -1
	}
	return flagValue
}

func run(config Config) error {
	format, err := loaders.FormatFromExtension(config.Format)
	if err != nil {
		return err
	}

	outputDir := createOutputDir(config.Scene)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	sceneConfig := scene.Config{
		TexelScale:     float32(config.TexelScale),
		DumpFactors:    config.DumpFactors,
		FactorDumpPath: filepath.Join(outputDir, lightmap.FactorDumpFile),
		FactorWorkers:  factorWorkers(config.Workers),
	}

	fmt.Printf("Loading scene %s...\n", config.Scene)
	buildStart := time.Now()
	sceneObj, err := createScene(config.Scene, sceneConfig)
	if err != nil {
		return err
	}
	fmt.Printf("Scene built in %v\n", time.Since(buildStart))

	computeStart := time.Now()
	runIterations(sceneObj, config.Iterations)
	fmt.Printf("%d iterations completed in %v\n", config.Iterations, time.Since(computeStart))

	timestamp := time.Now().Format("20060102_150405")
	for _, stats := range renderer.CollectStats(sceneObj) {
		fmt.Printf("  %s: %dx%d texels, %d patches, average luminance %.3f\n",
			stats.Name, stats.Width, stats.Height, stats.Patches, stats.Luminance)
	}

	sceneObj.Lock()
	meshes := sceneObj.Meshes()
	sceneObj.Unlock()
	for _, object := range meshes {
		filename := filepath.Join(outputDir, fmt.Sprintf("%s_%s.%s", object.Name, timestamp, format))
		if err := loaders.SaveImage(filename, object.Mesh.Lightmap.Image()); err != nil {
			return err
		}
		fmt.Printf("Lightmap saved as %s\n", filename)
	}
	return nil
}

// createScene loads a built-in scene or a scene file
func createScene(name string, config scene.Config) (*scene.Scene, error) {
	if name == "" {
		return nil, errors.New("empty scene name")
	}
	return loaders.LoadScene(name, config)
}

// runIterations computes n lightmap iterations with the lights as they are
func runIterations(s *scene.Scene, n int) {
	s.Lock()
	var states []lights.State
	for _, light := range s.Lights() {
		states = append(states, light.CurrentState())
	}
	meshes := s.Meshes()
	s.Unlock()

	for i := 0; i < n; i++ {
		for _, object := range meshes {
			object.Mesh.Lightmap.Process(states)
		}
		core.Logger().Debug("iteration complete", "iteration", i+1)
	}
}

// createOutputDir returns output/<scene> using the base name of scene files
func createOutputDir(sceneName string) string {
	name := strings.TrimPrefix(sceneName, "file:")
	name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if name == "" || name == "." {
		name = "scene"
	}
	return filepath.Join("output", name)
}
