package raster

// vertex is a clip-space position with its texture coordinate.
type vertex struct {
	P  [4]float64
	UV [2]float64
}

// clipNear clips a convex polygon against the near plane z + w >= 0,
// appending the result to out. Returns out unchanged if nothing survives.
func clipNear(in []vertex, out []vertex) []vertex {
	n := len(in)
	for i := 0; i < n; i++ {
		a, b := in[i], in[(i+1)%n]
		da, db := a.P[2]+a.P[3], b.P[2]+b.P[3]
		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (db >= 0) {
			t := da / (da - db)
			out = append(out, lerpVertex(a, b, t))
		}
	}
	return out
}

func lerpVertex(a, b vertex, t float64) vertex {
	var v vertex
	for k := 0; k < 4; k++ {
		v.P[k] = a.P[k] + (b.P[k]-a.P[k])*t
	}
	v.UV[0] = a.UV[0] + (b.UV[0]-a.UV[0])*t
	v.UV[1] = a.UV[1] + (b.UV[1]-a.UV[1])*t
	return v
}
