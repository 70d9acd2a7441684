package rig

import (
	"sync/atomic"

	"cave-projector/internal/mathutil"
)

// EyeSource supplies the eye position for a frame. Implementations must be
// safe to read from several goroutines.
type EyeSource interface {
	Eye() mathutil.Vec3
}

// StaticEye is a fixed, untracked eye.
type StaticEye mathutil.Vec3

func (e StaticEye) Eye() mathutil.Vec3 { return mathutil.Vec3(e) }

// AtomicEye holds a tracked eye that a tracker goroutine updates once per
// frame while walls read it without locking.
type AtomicEye struct {
	p atomic.Pointer[mathutil.Vec3]
}

// NewAtomicEye returns an AtomicEye starting at eye.
func NewAtomicEye(eye mathutil.Vec3) *AtomicEye {
	a := &AtomicEye{}
	a.Set(eye)
	return a
}

// Set publishes a new eye position.
func (a *AtomicEye) Set(eye mathutil.Vec3) {
	a.p.Store(&eye)
}

// Eye returns the last published position, or the origin if none.
func (a *AtomicEye) Eye() mathutil.Vec3 {
	if v := a.p.Load(); v != nil {
		return *v
	}
	return mathutil.Vec3{}
}
