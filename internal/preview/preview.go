// Package preview renders what every wall of a room shows for one eye
// position and writes the images plus a wall manifest.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"cave-projector/internal/logging"
	"cave-projector/internal/mathutil"
	"cave-projector/internal/postprocess"
	"cave-projector/internal/raster"
	"cave-projector/internal/rig"
	"cave-projector/internal/scene"
	"cave-projector/internal/texture"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
)

// Output formats.
const (
	FormatWebP = "webp"
	FormatTGA  = "tga"
)

// SheetName is the base name of the contact sheet image.
const SheetName = "overview"

// Config holds all shared resources for a preview run.
type Config struct {
	OutputDir     string
	Format        string // FormatWebP or FormatTGA
	Supersample   int
	MaxSize       int // longest output side; 0 means no cap
	Workers       int
	Texture       *image.NRGBA      // nil renders the grid with flat colours
	Textures      texture.Resolver  // resolves WallTextures; shared by all workers
	WallTextures  map[string]string // lowercased wall name -> texture path replacing Texture
	RearProjected map[string]bool   // lowercased wall names mirrored left-right
	FlipVertical  map[string]bool   // lowercased wall names mirrored top-bottom
	Sheet         bool              // also write a contact sheet of all walls
	Progress      io.Writer         // nil disables progress lines
}

// Result holds the outcome of rendering one wall.
type Result struct {
	Wall    string
	Image   string // file name relative to OutputDir
	Width   int
	Height  int
	Success bool
	Error   string

	frame rig.WallFrame
	img   *image.NRGBA
}

// Run computes every wall for eye and renders them with a worker pool.
// Walls whose projection failed are reported and skipped.
func Run(cfg Config, r *rig.Rig, eye mathutil.Vec3) ([]Result, error) {
	if err := validateFormat(cfg.Format); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}
	workers := max(cfg.Workers, 1)

	room := r.Room()
	sc := scene.Calibration(room, cfg.Texture != nil || len(cfg.WallTextures) > 0)
	if r.World() {
		sc = sc.Transform(room.Pose.Matrix())
	}
	renderer := raster.NewRenderer(cfg.Texture)

	frames := r.Frame(eye)
	total := len(frames)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	if cfg.Progress != nil {
		go func() {
			ticker := time.NewTicker(2 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					if p > 0 {
						elapsed := time.Since(start).Seconds()
						fmt.Fprintf(cfg.Progress, "  [%d/%d] %.1f walls/sec\n", p, total, float64(p)/elapsed)
					}
				}
			}
		}()
	}

	// Worker pool
	wallChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range wallChan {
				results[idx] = processWall(cfg, sc, renderer, frames[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range frames {
		wallChan <- i
	}
	close(wallChan)

	wg.Wait()
	close(done)

	logging.Logger().Info("preview done", "walls", total, "elapsed", time.Since(start))

	if cfg.Sheet {
		if err := writeSheet(cfg, results); err != nil {
			return results, err
		}
	}
	return results, nil
}

func processWall(cfg Config, sc scene.Scene, renderer *raster.Renderer, wf rig.WallFrame) Result {
	res := Result{Wall: wf.Wall.Name, frame: wf}
	if !wf.OK() {
		res.Error = wf.Err.Error()
		return res
	}

	w, h := OutputSize(wf.Wall.RenderWidth, wf.Wall.RenderHeight, cfg.MaxSize)
	ss := max(cfg.Supersample, 1)
	res.Width, res.Height = w, h

	key := strings.ToLower(wf.Wall.Name)
	if path := cfg.WallTextures[key]; path != "" && cfg.Textures != nil {
		if tex := cfg.Textures.Resolve(path); tex != nil {
			wallRenderer := *renderer
			wallRenderer.Texture = tex
			renderer = &wallRenderer
		}
	}

	img := renderer.Render(sc, wf.Frame.ViewProjection(), w*ss, h*ss)

	// Post-processing: supersample downsample
	if ss > 1 {
		img = postprocess.Downsample(img, w, h)
	}
	if cfg.RearProjected[key] {
		img = postprocess.FlipHorizontal(img)
	}
	if cfg.FlipVertical[key] {
		img = postprocess.FlipVertical(img)
	}
	res.img = img

	name := fileName(wf.Wall.Name, cfg.Format)
	if err := save(filepath.Join(cfg.OutputDir, name), img, cfg.Format); err != nil {
		res.Error = err.Error()
		return res
	}
	logging.Logger().Debug("wall rendered", "wall", wf.Wall.Name, "size", fmt.Sprintf("%dx%d", w, h), "supersample", ss)

	res.Image = name
	res.Success = true
	return res
}

// OutputSize scales w x h down so its longest side is at most maxSize,
// keeping the aspect ratio. maxSize <= 0 leaves the size unchanged.
func OutputSize(w, h, maxSize int) (int, int) {
	longest := max(w, h)
	if maxSize <= 0 || longest <= maxSize {
		return w, h
	}
	k := float64(maxSize) / float64(longest)
	return max(int(float64(w)*k+0.5), 1), max(int(float64(h)*k+0.5), 1)
}

func fileName(wall, format string) string {
	base := strings.ToLower(strings.TrimSpace(wall))
	base = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ' ' {
			return '_'
		}
		return r
	}, base)
	return base + "." + format
}

func validateFormat(format string) error {
	switch format {
	case FormatWebP, FormatTGA:
		return nil
	}
	return fmt.Errorf("preview: unknown format %q (want %s or %s)", format, FormatWebP, FormatTGA)
}

// save encodes img to path as WebP (lossless) or TGA.
func save(path string, img image.Image, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	switch format {
	case FormatTGA:
		err = tga.Encode(f, img)
	default:
		err = nativewebp.Encode(f, img, nil)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("%s encode: %w", format, err)
	}
	return f.Close()
}

func writeSheet(cfg Config, results []Result) error {
	var imgs []*image.NRGBA
	for _, r := range results {
		if r.img != nil {
			imgs = append(imgs, r.img)
		}
	}
	if len(imgs) == 0 {
		return nil
	}
	cell := 256
	if cfg.MaxSize > 0 && cfg.MaxSize < cell {
		cell = cfg.MaxSize
	}
	cols := min(len(imgs), 3)
	sheet := postprocess.ContactSheet(imgs, cols, cell, cell*3/4, color.NRGBA{0, 0, 0, 255})
	if err := save(filepath.Join(cfg.OutputDir, SheetName+"."+cfg.Format), sheet, cfg.Format); err != nil {
		return fmt.Errorf("preview: contact sheet: %w", err)
	}
	return nil
}
