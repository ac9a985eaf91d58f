package loaders

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/df07/go-radiosity-lightmap/pkg/core"
	"github.com/df07/go-radiosity-lightmap/pkg/lights"
	"github.com/df07/go-radiosity-lightmap/pkg/scene"
	"github.com/fsnotify/fsnotify"
)

// LightWatcher reloads the lights of a scene whenever its scene file changes.
// Geometry is left alone since repacking a lightmap is a build-time step.
type LightWatcher struct {
	path     string
	scene    *scene.Scene
	watcher  *fsnotify.Watcher
	onReload func(count int, err error)
}

// NewLightWatcher watches the directory containing path, so that editors
// replacing the file through a rename are noticed too
func NewLightWatcher(path string, s *scene.Scene) (*LightWatcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scene path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch scene directory: %w", err)
	}

	return &LightWatcher{path: absPath, scene: s, watcher: watcher}, nil
}

// OnReload registers a callback invoked after every reload attempt
func (w *LightWatcher) OnReload(fn func(count int, err error)) {
	w.onReload = fn
}

// Run processes file events until ctx is done or the watcher is closed
func (w *LightWatcher) Run(ctx context.Context) error {
	log := core.Logger()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			count, err := w.Reload()
			if err != nil {
				log.Warn("failed to reload lights", slog.String("path", w.path), slog.Any("error", err))
			} else {
				log.Info("lights reloaded", slog.String("path", w.path), slog.Int("lights", count))
			}
			if w.onReload != nil {
				w.onReload(count, err)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("file watcher error", slog.Any("error", err))
		}
	}
}

// Reload reads the scene file and applies its lights to the scene
func (w *LightWatcher) Reload() (int, error) {
	file, err := LoadSceneFile(w.path)
	if err != nil {
		return 0, err
	}

	loaded := make([]*lights.Light, 0, len(file.Lights))
	for i, spec := range file.Lights {
		light, err := spec.Light()
		if err != nil {
			return 0, fmt.Errorf("light %d: %w", i, err)
		}
		if light.Name == "" {
			light.Name = fmt.Sprintf("light-%d", i)
		}
		loaded = append(loaded, light)
	}

	ApplyLights(w.scene, loaded)
	return len(loaded), nil
}

// Close stops watching
func (w *LightWatcher) Close() error {
	return w.watcher.Close()
}

// ApplyLights replaces the lights of a scene under its lock. Lights whose
// name already exists are updated in place, unknown names are added and
// lights missing from loaded are removed. When loaded repeats a name the
// last definition wins. Light objects without a light are left alone.
func ApplyLights(s *scene.Scene, loaded []*lights.Light) {
	s.Lock()
	defer s.Unlock()

	byName := make(map[string]*lights.Light, len(loaded))
	var order []string
	for _, light := range loaded {
		if light == nil {
			continue
		}
		if _, ok := byName[light.Name]; !ok {
			order = append(order, light.Name)
		}
		byName[light.Name] = light
	}

	var stale []*scene.Object
	for _, object := range s.Objects {
		if object.Kind != scene.LightObject || object.Light == nil {
			continue
		}
		if light, ok := byName[object.Light.Name]; ok {
			*object.Light = *light
			delete(byName, light.Name)
		} else {
			stale = append(stale, object)
		}
	}
	for _, object := range stale {
		s.Remove(object)
	}

	// Keep the file order for new lights
	for _, name := range order {
		if light, ok := byName[name]; ok {
			s.Add(scene.NewLightObject(light))
		}
	}
}
