package preview

import (
	"encoding/json"
	"fmt"
	"os"

	"cave-projector/internal/mathutil"
)

// ManifestName is the manifest file written next to the images.
const ManifestName = "walls.json"

// Corners holds a wall's corners in room coordinates.
type Corners struct {
	LowerLeft  mathutil.Vec3 `json:"lower_left"`
	LowerRight mathutil.Vec3 `json:"lower_right"`
	UpperLeft  mathutil.Vec3 `json:"upper_left"`
	UpperRight mathutil.Vec3 `json:"upper_right"`
}

// ManifestEntry describes one wall in the output manifest. Matrices are
// row-major.
type ManifestEntry struct {
	Name         string         `json:"name"`
	Channel      string         `json:"channel"`
	OutputIndex  int            `json:"output_index"`
	RenderWidth  int            `json:"render_width"`
	RenderHeight int            `json:"render_height"`
	Center       mathutil.Vec3  `json:"center"`
	Euler        mathutil.Vec3  `json:"euler"`
	Quaternion   mathutil.Quat  `json:"quaternion"`
	Width        float64        `json:"width"`
	Height       float64        `json:"height"`
	Corners      Corners        `json:"corners"`
	Image        string         `json:"image,omitempty"`
	Projection   *mathutil.Mat4 `json:"projection,omitempty"`
	View         *mathutil.Mat4 `json:"view,omitempty"`
	Error        string         `json:"error,omitempty"`
}

// Manifest builds the manifest entries for a run, in wall order.
func Manifest(results []Result) []ManifestEntry {
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		w := r.frame.Wall
		e := ManifestEntry{
			Name:         w.Name,
			Channel:      w.Channel(),
			OutputIndex:  w.OutputIndex,
			RenderWidth:  w.RenderWidth,
			RenderHeight: w.RenderHeight,
			Center:       w.Center,
			Euler:        w.Euler,
			Quaternion:   w.Quaternion(),
			Width:        w.Width,
			Height:       w.Height,
			Corners: Corners{
				LowerLeft:  w.LowerLeft,
				LowerRight: w.LowerRight,
				UpperLeft:  w.UpperLeft,
				UpperRight: w.UpperRight(),
			},
			Image: r.Image,
			Error: r.Error,
		}
		if r.frame.OK() {
			p, v := r.frame.Frame.Projection, r.frame.Frame.View
			e.Projection, e.View = &p, &v
		}
		entries[i] = e
	}
	return entries
}

// WriteManifest writes the manifest for results to path.
func WriteManifest(path string, results []Result) error {
	data, err := json.MarshalIndent(Manifest(results), "", "  ")
	if err != nil {
		return fmt.Errorf("preview: manifest: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
