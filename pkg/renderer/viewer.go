package renderer

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/df07/go-radiosity-lightmap/pkg/lightmap"
	"github.com/df07/go-radiosity-lightmap/pkg/scene"
)

// FrameBufferingCount is the number of preview slots cycled through by frame index
const FrameBufferingCount = 3

// MeshFrame is the state of one mesh lightmap as seen by a rendered frame
type MeshFrame struct {
	Mesh       int    // Index among the mesh objects of the scene
	Name       string // Mesh object name
	Generation uint64 // Texture upload count, changes whenever Image changes
	Computed   uint64 // Solver iterations included in Image
	Image      *image.RGBA
}

// FrameStats summarizes one RenderFrame call
type FrameStats struct {
	FrameIndex uint64
	Meshes     int
	Uploads    int // Meshes whose texture was refreshed by this frame
}

// Viewer is the render side consumer of the lightmaps. Each frame it
// animates the lights, refreshes the lightmap textures and keeps a copy of
// every lightmap in the slot selected by the frame index.
type Viewer struct {
	mu          sync.RWMutex
	scene       *scene.Scene
	slots       [FrameBufferingCount][]MeshFrame
	lastFrame   uint64
	rendered    bool
	animate     bool
	subscribers map[chan MeshFrame]struct{}
}

// NewViewer creates a viewer for the given scene
func NewViewer(s *scene.Scene) *Viewer {
	return &Viewer{
		scene:       s,
		animate:     true,
		subscribers: make(map[chan MeshFrame]struct{}),
	}
}

// SetScene switches the viewed scene and drops the buffered frames
func (v *Viewer) SetScene(s *scene.Scene) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scene = s
	v.slots = [FrameBufferingCount][]MeshFrame{}
	v.rendered = false
}

// Scene returns the viewed scene
func (v *Viewer) Scene() *scene.Scene {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.scene
}

// SetAnimation enables or disables light animation
func (v *Viewer) SetAnimation(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.animate = enabled
}

type pendingMesh struct {
	name     string
	lightmap *lightmap.Lightmap
}

// RenderFrame renders frame frameIndex at the given time since start.
// Call it from a single goroutine.
func (v *Viewer) RenderFrame(frameIndex uint64, elapsed time.Duration) FrameStats {
	v.mu.RLock()
	s := v.scene
	animate := v.animate
	v.mu.RUnlock()

	stats := FrameStats{FrameIndex: frameIndex}
	if s == nil {
		return stats
	}

	var meshes []pendingMesh
	seconds := float32(elapsed.Seconds())

	s.Lock()
	for _, object := range s.Objects {
		switch object.Kind {
		case scene.MeshObject:
			if object.Mesh != nil && object.Mesh.Lightmap != nil {
				meshes = append(meshes, pendingMesh{name: object.Name, lightmap: object.Mesh.Lightmap})
			}
		case scene.LightObject:
			if animate && object.Light != nil {
				object.Light.Animate(seconds)
			}
		}
	}
	s.Unlock()

	previous := v.latestSlot()
	frames := make([]MeshFrame, len(meshes))
	var updated []MeshFrame

	for i, mesh := range meshes {
		texture := mesh.lightmap.ValidTexture()
		frame := MeshFrame{
			Mesh:     i,
			Name:     mesh.name,
			Computed: mesh.lightmap.UploadedCount(),
		}

		imageTexture, ok := texture.(*lightmap.ImageTexture)
		if ok {
			frame.Generation = imageTexture.Generation()
		}

		if i < len(previous) && previous[i].Generation == frame.Generation && previous[i].Image != nil && ok {
			// Unchanged texture, images are never mutated once published
			frame.Image = previous[i].Image
		} else {
			if ok {
				frame.Image = imageTexture.Image(0)
			} else {
				frame.Image = mesh.lightmap.Image()
			}
			updated = append(updated, frame)
		}
		frames[i] = frame
	}

	v.mu.Lock()
	v.slots[frameIndex%FrameBufferingCount] = frames
	v.lastFrame = frameIndex
	v.rendered = true
	v.mu.Unlock()

	for _, frame := range updated {
		v.publish(frame)
	}

	stats.Meshes = len(frames)
	stats.Uploads = len(updated)
	return stats
}

func (v *Viewer) latestSlot() []MeshFrame {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if !v.rendered {
		return nil
	}
	return v.slots[v.lastFrame%FrameBufferingCount]
}

// Frame returns the state of a mesh lightmap in the most recent frame
func (v *Viewer) Frame(mesh int) (MeshFrame, bool) {
	slot := v.latestSlot()
	if mesh < 0 || mesh >= len(slot) {
		return MeshFrame{}, false
	}
	return slot[mesh], true
}

// Frames returns every mesh of the most recent frame
func (v *Viewer) Frames() []MeshFrame {
	return append([]MeshFrame(nil), v.latestSlot()...)
}

// LastFrameIndex returns the index of the most recent frame and whether any frame was rendered
func (v *Viewer) LastFrameIndex() (uint64, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.lastFrame, v.rendered
}

// Subscribe returns a channel receiving every refreshed mesh frame, and a
// function to unsubscribe. Frames are dropped when the channel is full.
func (v *Viewer) Subscribe(buffer int) (<-chan MeshFrame, func()) {
	ch := make(chan MeshFrame, buffer)

	v.mu.Lock()
	v.subscribers[ch] = struct{}{}
	v.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			v.mu.Lock()
			delete(v.subscribers, ch)
			v.mu.Unlock()
			close(ch)
		})
	}
}

func (v *Viewer) publish(frame MeshFrame) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for ch := range v.subscribers {
		select {
		case ch <- frame:
		default:
		}
	}
}

// Run renders frames at the given rate until ctx is done
func (v *Viewer) Run(ctx context.Context, fps int) error {
	if fps <= 0 {
		fps = 30
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	start := time.Now()
	var frameIndex uint64
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			v.RenderFrame(frameIndex, now.Sub(start))
			frameIndex++
		}
	}
}
