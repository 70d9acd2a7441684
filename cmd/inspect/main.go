package main

import (
	"flag"
	"fmt"
	"os"

	"cave-projector/internal/config"
	"cave-projector/internal/mathutil"
	"cave-projector/internal/rig"
)

func main() {
	configFile := flag.String("config", "cave_config.json", "Path to the room config file")
	eyeFlag := flag.String("eye", "", "Eye position x,y,z (default: eyePosition from config)")
	lenient := flag.Bool("lenient", false, "Accept unknown wall names (placed at the origin)")
	matrices := flag.Bool("matrices", true, "Print projection and view matrices")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	cfg.Resolve(config.Flags{Lenient: *lenient})

	room, err := cfg.BuildRoom()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	eye := room.Eye
	if *eyeFlag != "" {
		if eye, err = config.ParseVec3(*eyeFlag); err != nil {
			fmt.Printf("Error: -eye: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Room: %d walls, eye (%.3f, %.3f, %.3f), clip %g..%g\n",
		len(room.Walls), eye[0], eye[1], eye[2], cfg.NearClip, cfg.FarClip)
	if cfg.WorldSpace {
		fmt.Printf("World pose: origin %v, yaw %.1f\n", room.Pose.Origin, room.Pose.Yaw)
	}

	r := rig.New(room, rig.Options{Near: cfg.NearClip, Far: cfg.FarClip, World: cfg.WorldSpace})
	frames := r.Frame(eye)
	for _, wf := range frames {
		w := wf.Wall
		fmt.Printf("\n[%s] output=%d  %.2fm x %.2fm  %dx%d px\n", w.Name, w.OutputIndex, w.Width, w.Height, w.RenderWidth, w.RenderHeight)
		fmt.Printf("  Center: %s\n", vec(w.Center))
		fmt.Printf("  Euler:  pitch=%.1f yaw=%.1f roll=%.1f\n", w.Euler[0], w.Euler[1], w.Euler[2])
		q := w.Quaternion()
		fmt.Printf("  Quat:   (%.4f, %.4f, %.4f, %.4f)\n", q[0], q[1], q[2], q[3])
		fmt.Printf("  LL %s  LR %s\n  UL %s  UR %s\n", vec(w.LowerLeft), vec(w.LowerRight), vec(w.UpperLeft), vec(w.UpperRight()))
		fmt.Printf("  Normal: %s\n", vec(w.Normal()))

		if !wf.OK() {
			fmt.Printf("  SKIPPED: %v\n", wf.Err)
			continue
		}
		f := wf.Frame.Frustum
		fmt.Printf("  Distance: %.4f\n", wf.Frame.Distance)
		fmt.Printf("  Frustum: l=%.4f r=%.4f b=%.4f t=%.4f n=%g f=%g (vfov %.1f deg)\n",
			f.Left, f.Right, f.Bottom, f.Top, f.Near, f.Far, f.VerticalFOV())
		if *matrices {
			printMat("Projection", wf.Frame.Projection)
			printMat("View", wf.Frame.View)
		}
	}

	if err := rig.Errors(frames); err != nil {
		os.Exit(1)
	}
}

func vec(v mathutil.Vec3) string {
	return fmt.Sprintf("(%7.3f, %7.3f, %7.3f)", v[0], v[1], v[2])
}

func printMat(name string, m mathutil.Mat4) {
	fmt.Printf("  %s:\n", name)
	for r := 0; r < 4; r++ {
		fmt.Printf("    [%9.4f %9.4f %9.4f %9.4f]\n", m[r*4], m[r*4+1], m[r*4+2], m[r*4+3])
	}
}
