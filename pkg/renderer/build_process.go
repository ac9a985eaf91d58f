package renderer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/df07/go-radiosity-lightmap/pkg/lightmap"
	"github.com/df07/go-radiosity-lightmap/pkg/lights"
	"github.com/df07/go-radiosity-lightmap/pkg/scene"
)

// IdleInterval is how long the build loop sleeps when there is nothing to compute
const IdleInterval = 10 * time.Millisecond

// BuildProcess continuously recomputes the lightmaps of a scene on one
// background goroutine. Each iteration snapshots the lights and lightmaps
// under the scene lock, then runs one Process call per lightmap without it.
type BuildProcess struct {
	mu      sync.Mutex
	running bool
	scene   *scene.Scene
	done    chan struct{}

	iterations atomic.Uint64

	// Owned by the worker goroutine
	pendingLightmaps []*lightmap.Lightmap
	currentLights    []lights.State
}

// NewBuildProcess creates a stopped build process
func NewBuildProcess() *BuildProcess {
	return &BuildProcess{}
}

// Start launches the worker goroutine. Starting a running process does nothing.
func (p *BuildProcess) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}

	p.running = true
	p.done = make(chan struct{})
	go p.run(p.done)
}

// Shutdown asks the worker to stop and waits for it. The iteration in
// flight completes first. Shutting down a stopped process does nothing.
func (p *BuildProcess) Shutdown() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	done := p.done
	p.mu.Unlock()

	<-done
}

// Running reports whether the worker goroutine is active
func (p *BuildProcess) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// SetScene selects the scene processed from the next iteration on. Nil pauses processing.
func (p *BuildProcess) SetScene(s *scene.Scene) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scene = s
}

// Scene returns the scene being processed
func (p *BuildProcess) Scene() *scene.Scene {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scene
}

// Iterations returns the number of completed loop iterations
func (p *BuildProcess) Iterations() uint64 {
	return p.iterations.Load()
}

func (p *BuildProcess) run(done chan struct{}) {
	defer close(done)

	for {
		p.mu.Lock()
		if !p.running {
			p.mu.Unlock()
			break
		}
		currentScene := p.scene
		p.mu.Unlock()

		processed := 0
		if currentScene != nil {
			processed = p.processScene(currentScene)
		}
		clear(p.pendingLightmaps)
		p.pendingLightmaps = p.pendingLightmaps[:0]
		p.currentLights = p.currentLights[:0]
		p.iterations.Add(1)

		if processed == 0 {
			time.Sleep(IdleInterval)
		}
	}
}

// processScene runs one iteration over the scene and returns the number of
// lightmaps processed
func (p *BuildProcess) processScene(s *scene.Scene) int {
	s.Lock()
	for _, object := range s.Objects {
		switch object.Kind {
		case scene.MeshObject:
			if object.Mesh != nil && object.Mesh.Lightmap != nil {
				p.pendingLightmaps = append(p.pendingLightmaps, object.Mesh.Lightmap)
			}
		case scene.LightObject:
			if object.Light != nil {
				p.currentLights = append(p.currentLights, object.Light.CurrentState())
			}
		}
	}
	s.Unlock()

	for _, lm := range p.pendingLightmaps {
		lm.Process(p.currentLights)
	}
	return len(p.pendingLightmaps)
}
