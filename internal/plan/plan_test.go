package plan

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"cave-projector/internal/layout"
	"cave-projector/internal/mathutil"
)

func testRoom(t *testing.T) layout.Room {
	t.Helper()
	room, err := layout.Build(mathutil.Vec3{0, 1.6, 0}, []layout.Display{
		{Name: "front", Width: 4, Height: 3, RenderWidth: 64, RenderHeight: 48},
		{Name: "left", Width: 4, Height: 3, RenderWidth: 64, RenderHeight: 48},
		{Name: "right", Width: 4, Height: 3, RenderWidth: 64, RenderHeight: 48},
		{Name: "floor", Width: 4, Height: 4, RenderWidth: 64, RenderHeight: 64},
	}, layout.Options{Strict: true})
	if err != nil {
		t.Fatalf("layout.Build() error = %v", err)
	}
	return room
}

func TestDrawSizeAndEye(t *testing.T) {
	room := testRoom(t)
	eye := mathutil.Vec3{0.5, 1.6, -0.5}
	dc, err := Draw(room, eye, 200)
	if err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	defer dc.Close()

	img := dc.Image()
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 200 {
		t.Fatalf("size = %v, want 200x200", img.Bounds())
	}

	v := newView(room, eye, 200)
	ex, ey := v.point(eye)
	r, g, b, _ := img.At(int(ex), int(ey)).RGBA()
	if r>>8 > 60 || g>>8 > 60 || b>>8 > 60 {
		t.Errorf("eye pixel = %d %d %d, want dark", r>>8, g>>8, b>>8)
	}

	// Corner of the canvas lies in the margin.
	r, g, b, _ = img.At(1, 1).RGBA()
	if r>>8 < 200 || g>>8 < 200 || b>>8 < 200 {
		t.Errorf("margin pixel = %d %d %d, want light", r>>8, g>>8, b>>8)
	}

	// Front wall runs along z = +2; its midpoint is painted in its colour.
	front, _ := room.Wall("front")
	mx, my := v.point(front.LowerLeft.Add(front.LowerRight).Scale(0.5).Add(mathutil.Vec3{0.5, 0, 0}))
	r, g, _, _ = img.At(int(mx), int(my)).RGBA()
	if r>>8 < g>>8+80 {
		t.Errorf("front wall pixel = %d %d, want red", r>>8, g>>8)
	}
}

func TestViewOrientation(t *testing.T) {
	v := newView(testRoom(t), mathutil.Vec3{}, 100)
	x0, y0 := v.point(mathutil.Vec3{0, 0, 0})
	x1, _ := v.point(mathutil.Vec3{1, 0, 0})
	_, y2 := v.point(mathutil.Vec3{0, 0, 1})
	if x1 <= x0 {
		t.Errorf("+X should go right: %v -> %v", x0, x1)
	}
	if y2 >= y0 {
		t.Errorf("+Z should go up the page: %v -> %v", y0, y2)
	}
	if x0 < 0 || x0 > 100 || y0 < 0 || y0 > 100 {
		t.Errorf("origin (%v, %v) off canvas", x0, y0)
	}
}

func TestDrawRejectsBadSize(t *testing.T) {
	if _, err := Draw(testRoom(t), mathutil.Vec3{}, 0); err == nil {
		t.Error("expected error for size 0")
	}
}

func TestDrawEmptyRoomCloses(t *testing.T) {
	for _, size := range []int{1, 32} {
		dc, err := Draw(layout.Room{}, mathutil.Vec3{0, 1.6, 0}, size)
		if err != nil {
			t.Fatalf("Draw(size %d) error = %v", size, err)
		}
		if got := dc.Image().Bounds().Dx(); got != size {
			t.Errorf("width = %d, want %d", got, size)
		}
		if err := dc.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.png")
	if err := Save(path, testRoom(t), mathutil.Vec3{0, 1.6, 0}, 64); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 64 {
		t.Errorf("width = %d, want 64", img.Bounds().Dx())
	}
}
