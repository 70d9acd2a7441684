package main

import (
	"flag"
	"fmt"
	"os"

	"cave-projector/internal/config"
	"cave-projector/internal/plan"
)

func main() {
	configFile := flag.String("config", "cave_config.json", "Path to the room config file")
	eyeFlag := flag.String("eye", "", "Eye position x,y,z (default: eyePosition from config)")
	out := flag.String("o", "plan.png", "Output PNG path")
	size := flag.Int("size", 768, "Image size in pixels")
	lenient := flag.Bool("lenient", false, "Accept unknown wall names (placed at the origin)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg.Resolve(config.Flags{Lenient: *lenient})

	room, err := cfg.BuildRoom()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	eye := room.Eye
	if *eyeFlag != "" {
		if eye, err = config.ParseVec3(*eyeFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error: -eye: %v\n", err)
			os.Exit(1)
		}
	}

	if err := plan.Save(*out, room, eye, *size); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Plan: %s (%d walls, %dx%d)\n", *out, len(room.Walls), *size, *size)
}
