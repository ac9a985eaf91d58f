package scene

import (
	"fmt"
	"slices"
	"sync"

	"github.com/df07/go-radiosity-lightmap/pkg/lights"
)

// ObjectKind tags the variant held by an Object
type ObjectKind int

const (
	MeshObject ObjectKind = iota
	LightObject
)

// String returns a readable name for the kind
func (k ObjectKind) String() string {
	switch k {
	case MeshObject:
		return "mesh"
	case LightObject:
		return "light"
	default:
		return fmt.Sprintf("ObjectKind(%d)", int(k))
	}
}

// Object is a scene element. Kind selects which of Mesh or Light is set.
type Object struct {
	Kind  ObjectKind
	Name  string
	Mesh  *Mesh
	Light *lights.Light
}

// NewMeshObject wraps a mesh for insertion into a scene
func NewMeshObject(name string, mesh *Mesh) *Object {
	return &Object{Kind: MeshObject, Name: name, Mesh: mesh}
}

// NewLightObject wraps a light for insertion into a scene
func NewLightObject(light *lights.Light) *Object {
	return &Object{Kind: LightObject, Name: light.Name, Light: light}
}

// Config holds the lightmap settings a scene is built with
type Config struct {
	TexelScale     float32 // World size of one lightmap texel, 0 for the default
	DumpFactors    bool    // Write the view factor matrix of each mesh after solving
	FactorDumpPath string  // Dump destination, defaults to lightmap.FactorDumpFile
	FactorWorkers  int     // View factor workers, 0 keeps the single-threaded solve, negative uses every CPU
}

// Scene contains the meshes and lights shared between the lightmap worker
// and the render side. Objects must only be read or modified under Lock.
type Scene struct {
	mu      sync.Mutex
	Name    string
	Config  Config
	Objects []*Object
}

// New creates an empty scene
func New(name string, config Config) *Scene {
	return &Scene{Name: name, Config: config}
}

// Lock acquires the scene lock
func (s *Scene) Lock() {
	s.mu.Lock()
}

// Unlock releases the scene lock
func (s *Scene) Unlock() {
	s.mu.Unlock()
}

// Add appends an object. Call with the scene lock held once the scene is shared.
func (s *Scene) Add(object *Object) {
	s.Objects = append(s.Objects, object)
}

// Remove deletes the first occurrence of object and reports whether it was found.
// Call with the scene lock held once the scene is shared.
func (s *Scene) Remove(object *Object) bool {
	i := slices.Index(s.Objects, object)
	if i < 0 {
		return false
	}
	s.Objects = slices.Delete(s.Objects, i, i+1)
	return true
}

// Lights returns the lights of the scene. Call with the scene lock held.
func (s *Scene) Lights() []*lights.Light {
	var result []*lights.Light
	for _, object := range s.Objects {
		if object.Kind == LightObject && object.Light != nil {
			result = append(result, object.Light)
		}
	}
	return result
}

// Meshes returns the mesh objects of the scene. Call with the scene lock held.
func (s *Scene) Meshes() []*Object {
	var result []*Object
	for _, object := range s.Objects {
		if object.Kind == MeshObject && object.Mesh != nil {
			result = append(result, object)
		}
	}
	return result
}

// FindLight returns the light with the given name, or nil. Call with the scene lock held.
func (s *Scene) FindLight(name string) *lights.Light {
	for _, light := range s.Lights() {
		if light.Name == name {
			return light
		}
	}
	return nil
}
