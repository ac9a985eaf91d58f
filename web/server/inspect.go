package server

import (
	"fmt"
	"net/http"

	"github.com/df07/go-radiosity-lightmap/pkg/lightmap"
)

// InspectResponse represents the JSON response for texel inspection
type InspectResponse struct {
	Hit        bool                   `json:"hit"` // False when the texel is not covered by a patch
	Mesh       int                    `json:"mesh"`
	X          int                    `json:"x"`
	Y          int                    `json:"y"`
	Patch      int                    `json:"patch"`
	Surface    int                    `json:"surface"`
	Point      [3]float32             `json:"point"`
	Normal     [3]float32             `json:"normal"`
	Direct     [4]float32             `json:"direct"`
	Indirect   [4]float32             `json:"indirect"`
	Color      string                 `json:"color"`
	Properties map[string]interface{} `json:"properties"`
}

// inspectTexel gathers what the lightmap knows about texel (x, y)
func inspectTexel(lm *lightmap.Lightmap, x, y int) InspectResponse {
	response := InspectResponse{X: x, Y: y, Patch: -1, Surface: -1}

	c := lightmap.DecodeColor(lm.TexelColor(x, y))
	response.Color = fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)

	patchIndex := lm.PatchAt(x, y)
	if patchIndex < 0 {
		return response
	}
	patch := lm.Patches[patchIndex]

	response.Hit = true
	response.Patch = patchIndex
	response.Surface = patch.SurfaceIndex
	response.Point = patch.Position
	response.Normal = patch.Normal

	direct, indirect := lm.LightAt(patch.TexelIndex)
	response.Direct = direct
	response.Indirect = indirect
	response.Properties = viewFactorInfo(lm, patchIndex)
	return response
}

// viewFactorInfo summarizes the view factor row of a patch
func viewFactorInfo(lm *lightmap.Lightmap, patchIndex int) map[string]interface{} {
	properties := make(map[string]interface{})
	n := len(lm.Patches)
	if len(lm.ViewFactors) < n*n {
		return properties
	}

	row := lm.ViewFactors[patchIndex*n : (patchIndex+1)*n]
	visible := 0
	var total float32
	strongest, strongestFactor := -1, float32(0)
	for j, factor := range row {
		if factor <= 0 {
			continue
		}
		visible++
		total += factor
		if factor > strongestFactor {
			strongest, strongestFactor = j, factor
		}
	}

	properties["visiblePatches"] = visible
	properties["totalFactor"] = total
	properties["denominator"] = lm.ViewFactorsDen[patchIndex]
	if strongest >= 0 {
		properties["strongestPartner"] = strongest
		properties["strongestFactor"] = strongestFactor
		properties["distance"] = lm.Patches[strongest].Position.Sub(lm.Patches[patchIndex].Position).Len()
	}
	return properties
}

// handleInspect handles texel inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	mesh, err := parseIntParam(query, "mesh", 0, 0, 1<<16)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	lm := s.meshLightmap(mesh)
	if lm == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No lightmap for mesh %d", mesh))
		return
	}

	// Coordinates are texels of the atlas
	x, err := parseIntParam(query, "x", 0, 0, lm.Width-1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid x coordinate: "+err.Error())
		return
	}
	y, err := parseIntParam(query, "y", 0, 0, lm.Height-1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid y coordinate: "+err.Error())
		return
	}

	response := inspectTexel(lm, x, y)
	response.Mesh = mesh
	writeJSON(w, response)
}
