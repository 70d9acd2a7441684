package raster

import (
	"math"

	"cave-projector/internal/mathutil"
)

// LightConfig holds precomputed lighting parameters.
type LightConfig struct {
	LightDir  mathutil.Vec3
	FillDir   mathutil.Vec3
	Ambient   float64
	Hemi      float64
	Direct    float64
	Fill      float64
	Exposure  float64
	SRGBGamma float64
	InvGamma  float64
}

// DefaultLightConfig is an overhead key light with a low fill from the
// back-left, enough to tell cube faces apart on every wall.
func DefaultLightConfig() LightConfig {
	return LightConfig{
		LightDir:  mathutil.Vec3{0.3, 1, 0.45}.Normalize(),
		FillDir:   mathutil.Vec3{-0.6, 0.2, -0.8}.Normalize(),
		Ambient:   0.35,
		Hemi:      0.25,
		Direct:    0.80,
		Fill:      0.30,
		Exposure:  1.0,
		SRGBGamma: 2.2,
		InvGamma:  1.0 / 2.2,
	}
}

// ComputeShade returns the combined lighting scalar for a face normal.
// Faces are lit from both sides.
func (lc *LightConfig) ComputeShade(normal mathutil.Vec3) float64 {
	ndlMain := math.Abs(normal.Dot(lc.LightDir))
	ndlFill := math.Abs(normal.Dot(lc.FillDir))

	// Hemisphere fill: horizontal surfaces read brighter than walls
	hemi := math.Abs(normal[1])*0.5 + 0.5

	return lc.Ambient + hemi*lc.Hemi + ndlMain*lc.Direct + ndlFill*lc.Fill
}

// shadePixel runs one sRGB texel through lighting, ACES tone mapping and
// gamma encoding.
func (lc *LightConfig) shadePixel(r, g, b uint8, shade float64) (uint8, uint8, uint8) {
	k := shade * lc.Exposure
	fr := math.Pow(ACESTonemap(srgbToLinear[r]*k), lc.InvGamma)
	fg := math.Pow(ACESTonemap(srgbToLinear[g]*k), lc.InvGamma)
	fb := math.Pow(ACESTonemap(srgbToLinear[b]*k), lc.InvGamma)
	return clamp255(fr * 255), clamp255(fg * 255), clamp255(fb * 255)
}

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}

// ACESTonemap applies ACES Filmic tone mapping to a linear value.
func ACESTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
