// Package rig recomputes every wall's projection for one eye sample.
//
// Walls are independent: each is computed on its own goroutine and a
// failure on one wall never affects the others. Whether a failed wall is
// skipped for the frame or the whole frame is dropped is the caller's call.
package rig

import (
	"errors"
	"fmt"
	"sync"

	"cave-projector/internal/config"
	"cave-projector/internal/layout"
	"cave-projector/internal/logging"
	"cave-projector/internal/mathutil"
	"cave-projector/internal/projection"
)

// Options configure a Rig.
type Options struct {
	Near float64
	Far  float64
	// World computes in the world frame given by the room pose instead of
	// room-local coordinates. The eye passed to Frame is then still
	// room-local and is mapped with the pose.
	World bool
}

// WallFrame is one wall's result for a frame.
type WallFrame struct {
	Wall  layout.Wall
	Frame projection.Frame
	Err   error
}

// OK reports whether the wall can be rendered this frame.
func (w WallFrame) OK() bool { return w.Err == nil }

// Rig binds a built room to clip settings.
type Rig struct {
	room layout.Room
	opts Options
}

// New returns a Rig over room. Zero clip values take the config defaults.
func New(room layout.Room, opts Options) *Rig {
	if opts.Near == 0 {
		opts.Near = config.DefaultNearClip
	}
	if opts.Far == 0 {
		opts.Far = config.DefaultFarClip
	}
	return &Rig{room: room, opts: opts}
}

// Room returns the room the rig was built over.
func (r *Rig) Room() layout.Room { return r.room }

// World reports whether frames are computed in the world frame.
func (r *Rig) World() bool { return r.opts.World }

// Frame computes all walls for eye (room-local). Results are in wall order.
func (r *Rig) Frame(eye mathutil.Vec3) []WallFrame {
	out := make([]WallFrame, len(r.room.Walls))

	var wg sync.WaitGroup
	for i := range r.room.Walls {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out[i] = r.wall(r.room.Walls[i], eye)
		}(i)
	}
	wg.Wait()

	for _, wf := range out {
		if wf.Err != nil {
			logging.Logger().Warn("rig: wall skipped", "wall", wf.Wall.Name, "err", wf.Err)
		}
	}
	return out
}

// Tick samples src once and computes the frame, so every wall sees the
// same eye.
func (r *Rig) Tick(src EyeSource) []WallFrame {
	return r.Frame(src.Eye())
}

// WallFrame computes a single wall by name.
func (r *Rig) WallFrame(name string, eye mathutil.Vec3) (WallFrame, error) {
	w, ok := r.room.Wall(name)
	if !ok {
		return WallFrame{}, fmt.Errorf("rig: no wall %q", name)
	}
	wf := r.wall(w, eye)
	return wf, wf.Err
}

func (r *Rig) wall(w layout.Wall, eye mathutil.Vec3) WallFrame {
	ll, lr, ul := w.Corners()
	if r.opts.World {
		ll, lr, ul = r.room.WorldCorners(w)
		eye = r.room.ToWorld(eye)
	}
	f, err := projection.Compute(eye, ll, lr, ul, r.opts.Near, r.opts.Far)
	if err != nil {
		err = fmt.Errorf("wall %s: %w", w.Name, err)
	}
	return WallFrame{Wall: w, Frame: f, Err: err}
}

// Errors joins the per-wall errors of a frame, or returns nil.
func Errors(frames []WallFrame) error {
	var errs []error
	for _, f := range frames {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errors.Join(errs...)
}
