package preview

import (
	"encoding/json"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"cave-projector/internal/layout"
	"cave-projector/internal/mathutil"
	"cave-projector/internal/rig"
	"cave-projector/internal/texture"
)

func testRig(t *testing.T) *rig.Rig {
	t.Helper()
	room, err := layout.Build(mathutil.Vec3{0, 1.6, 0}, []layout.Display{
		{Name: "front", OutputIndex: 0, Width: 4, Height: 3, RenderWidth: 40, RenderHeight: 30},
		{Name: "left", OutputIndex: 1, Width: 4, Height: 3, RenderWidth: 40, RenderHeight: 30},
		{Name: "floor", OutputIndex: 2, Width: 4, Height: 4, RenderWidth: 32, RenderHeight: 32},
	}, layout.Options{Strict: true})
	if err != nil {
		t.Fatalf("layout.Build() error = %v", err)
	}
	return rig.New(room, rig.Options{})
}

func TestRunWritesImagesAndManifest(t *testing.T) {
	for _, format := range []string{FormatWebP, FormatTGA} {
		t.Run(format, func(t *testing.T) {
			dir := t.TempDir()
			cfg := Config{
				OutputDir:   dir,
				Format:      format,
				Supersample: 2,
				Workers:     2,
				Sheet:       true,
			}
			results, err := Run(cfg, testRig(t), mathutil.Vec3{0, 1.6, 0})
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if len(results) != 3 {
				t.Fatalf("results = %d, want 3", len(results))
			}
			for _, r := range results {
				if !r.Success {
					t.Fatalf("%s failed: %s", r.Wall, r.Error)
				}
				img, err := texture.Load(filepath.Join(dir, r.Image))
				if err != nil {
					t.Fatalf("%s: reload: %v", r.Wall, err)
				}
				if img.Bounds().Dx() != r.Width || img.Bounds().Dy() != r.Height {
					t.Errorf("%s: size = %v, want %dx%d", r.Wall, img.Bounds(), r.Width, r.Height)
				}
			}
			if _, err := os.Stat(filepath.Join(dir, SheetName+"."+format)); err != nil {
				t.Errorf("contact sheet missing: %v", err)
			}

			path := filepath.Join(dir, ManifestName)
			if err := WriteManifest(path, results); err != nil {
				t.Fatalf("WriteManifest() error = %v", err)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			var entries []ManifestEntry
			if err := json.Unmarshal(data, &entries); err != nil {
				t.Fatalf("manifest: %v", err)
			}
			if len(entries) != 3 {
				t.Fatalf("manifest entries = %d, want 3", len(entries))
			}
			left := entries[1]
			if left.Name != "left" || left.Channel != "left" || left.OutputIndex != 1 {
				t.Errorf("left entry = %+v", left)
			}
			if left.Image != "left."+format {
				t.Errorf("left image = %q", left.Image)
			}
			if left.Projection == nil || left.View == nil {
				t.Fatal("left matrices missing")
			}
			if left.Projection[14] != -1 || left.Projection[15] != 0 {
				t.Errorf("left projection = %v", *left.Projection)
			}
		})
	}
}

func TestRunIsolatesFailedWall(t *testing.T) {
	dir := t.TempDir()
	// Behind the front wall at z = 2.
	results, err := Run(Config{OutputDir: dir, Format: FormatWebP, Workers: 3}, testRig(t), mathutil.Vec3{0, 1.6, 3})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, r := range results {
		switch r.Wall {
		case "front":
			if r.Success || r.Error == "" {
				t.Errorf("front should fail, got %+v", r)
			}
			if _, err := os.Stat(filepath.Join(dir, "front.webp")); !os.IsNotExist(err) {
				t.Error("front image should not be written")
			}
		default:
			if !r.Success {
				t.Errorf("%s failed: %s", r.Wall, r.Error)
			}
		}
	}

	entries := Manifest(results)
	if entries[0].Error == "" || entries[0].Projection != nil {
		t.Errorf("front entry = %+v, want error and no matrices", entries[0])
	}
}

func TestRunRejectsUnknownFormat(t *testing.T) {
	if _, err := Run(Config{OutputDir: t.TempDir(), Format: "png"}, testRig(t), mathutil.Vec3{0, 1.6, 0}); err == nil {
		t.Error("expected format error")
	}
}

func TestRunRearProjectionMirrors(t *testing.T) {
	r := testRig(t)
	eye := mathutil.Vec3{0.7, 1.6, 0.3}
	tex := texture.Checker(8, 2, color.NRGBA{255, 255, 255, 255}, color.NRGBA{0, 0, 0, 255})

	plain, err := Run(Config{OutputDir: t.TempDir(), Format: FormatTGA, Workers: 1, Texture: tex}, r, eye)
	if err != nil {
		t.Fatal(err)
	}
	mirrored, err := Run(Config{OutputDir: t.TempDir(), Format: FormatTGA, Workers: 1, Texture: tex,
		RearProjected: map[string]bool{"left": true}}, r, eye)
	if err != nil {
		t.Fatal(err)
	}

	a, b := plain[1].img, mirrored[1].img
	w := a.Bounds().Dx()
	for y := 0; y < a.Bounds().Dy(); y++ {
		for x := 0; x < w; x++ {
			if a.NRGBAAt(x, y) != b.NRGBAAt(w-1-x, y) {
				t.Fatalf("pixel (%d,%d) not mirrored", x, y)
			}
		}
	}
	if plain[0].img.NRGBAAt(3, 3) != mirrored[0].img.NRGBAAt(3, 3) {
		t.Error("front should not be mirrored")
	}
}

func TestRunFlipVertical(t *testing.T) {
	r := testRig(t)
	eye := mathutil.Vec3{0.7, 1.6, 0.3}
	tex := texture.Checker(8, 2, color.NRGBA{255, 255, 255, 255}, color.NRGBA{0, 0, 0, 255})

	plain, err := Run(Config{OutputDir: t.TempDir(), Format: FormatTGA, Workers: 1, Texture: tex}, r, eye)
	if err != nil {
		t.Fatal(err)
	}
	flipped, err := Run(Config{OutputDir: t.TempDir(), Format: FormatTGA, Workers: 1, Texture: tex,
		FlipVertical: map[string]bool{"left": true}}, r, eye)
	if err != nil {
		t.Fatal(err)
	}

	a, b := plain[1].img, flipped[1].img
	h := a.Bounds().Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < a.Bounds().Dx(); x++ {
			if a.NRGBAAt(x, y) != b.NRGBAAt(x, h-1-y) {
				t.Fatalf("pixel (%d,%d) not flipped", x, y)
			}
		}
	}
	if plain[0].img.NRGBAAt(3, 3) != flipped[0].img.NRGBAAt(3, 3) {
		t.Error("front should not be flipped")
	}
}

func TestRunWallTexturesShareCache(t *testing.T) {
	r := testRig(t)
	eye := mathutil.Vec3{0, 1.6, 0}

	red := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	draw.Draw(red, red.Bounds(), image.NewUniform(color.NRGBA{255, 0, 0, 255}), image.Point{}, draw.Src)
	path := filepath.Join(t.TempDir(), "red.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, red); err != nil {
		t.Fatal(err)
	}
	f.Close()

	plain, err := Run(Config{OutputDir: t.TempDir(), Format: FormatTGA, Workers: 1}, r, eye)
	if err != nil {
		t.Fatal(err)
	}
	cache := texture.NewCache()
	textured, err := Run(Config{OutputDir: t.TempDir(), Format: FormatTGA, Workers: 3,
		Textures:     cache,
		WallTextures: map[string]string{"front": path, "floor": path},
	}, r, eye)
	if err != nil {
		t.Fatal(err)
	}
	if cache.Len() != 1 {
		t.Errorf("cache entries = %d, want 1", cache.Len())
	}

	differs := func(a, b *image.NRGBA) bool {
		for i := range a.Pix {
			if a.Pix[i] != b.Pix[i] {
				return true
			}
		}
		return false
	}
	if !differs(plain[0].img, textured[0].img) {
		t.Error("front ignored its wall texture")
	}
	if differs(plain[1].img, textured[1].img) {
		t.Error("left changed without a wall texture")
	}
}

func TestOutputSize(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{1920, 1080, 0, 1920, 1080},
		{1920, 1080, 4096, 1920, 1080},
		{1920, 1080, 960, 960, 540},
		{1080, 1920, 480, 270, 480},
		{4000, 1, 100, 100, 1},
	}
	for _, tt := range tests {
		w, h := OutputSize(tt.w, tt.h, tt.max)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("OutputSize(%d, %d, %d) = %dx%d, want %dx%d", tt.w, tt.h, tt.max, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestFileName(t *testing.T) {
	if got := fileName(" Front ", FormatWebP); got != "front.webp" {
		t.Errorf("fileName = %q", got)
	}
	if got := fileName("side/a b", FormatTGA); got != "side_a_b.tga" {
		t.Errorf("fileName = %q", got)
	}
}
