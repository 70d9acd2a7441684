package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"cave-projector/internal/config"
	"cave-projector/internal/logging"
	"cave-projector/internal/plan"
	"cave-projector/internal/preview"
	"cave-projector/internal/rig"
	"cave-projector/internal/texture"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "cave_config.json", "Path to the room config file")
	outputDir := flag.String("output", "", "Output directory (default: cave-previews next to the config)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	supersample := flag.Int("supersample", 0, "Supersampling factor (default: 2)")
	format := flag.String("format", "", "Image format: webp or tga (default: webp)")
	near := flag.Float64("near", 0, "Near clip distance (default: 0.1)")
	far := flag.Float64("far", 0, "Far clip distance (default: 100)")
	lenient := flag.Bool("lenient", false, "Accept unknown wall names (placed at the origin)")
	eyeFlag := flag.String("eye", "", "Eye position x,y,z (default: eyePosition from config)")
	sheet := flag.Bool("sheet", false, "Also write a contact sheet of all walls")
	withPlan := flag.Bool("plan", false, "Also write a floor plan PNG")
	verbose := flag.Bool("v", false, "Verbose logging to stderr")

	flag.Parse()

	if *verbose {
		logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	// Load config
	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// CLI flags override env and config file
	cfg.Resolve(config.Flags{
		OutputDir:   *outputDir,
		Workers:     *workers,
		Supersample: *supersample,
		Format:      *format,
		NearClip:    *near,
		FarClip:     *far,
		Lenient:     *lenient,
	})
	if *sheet {
		cfg.Preview.ContactSheet = true
	}

	room, err := cfg.BuildRoom()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	eye := room.Eye
	if *eyeFlag != "" {
		eye, err = config.ParseVec3(*eyeFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: -eye: %v\n", err)
			os.Exit(1)
		}
	}

	textures := texture.NewCache()
	tex := loadTexture(textures, cfg.Preview.Texture)

	r := rig.New(room, rig.Options{Near: cfg.NearClip, Far: cfg.FarClip, World: cfg.WorldSpace})

	fmt.Printf("CAVE preview renderer → %s\n", cfg.Preview.Format)
	fmt.Printf("Walls: %d, Workers: %d, Supersample: %dx\n", len(room.Walls), cfg.Preview.Workers, cfg.Preview.Supersample)
	fmt.Printf("Eye: (%.3f, %.3f, %.3f), Clip: %g..%g\n", eye[0], eye[1], eye[2], cfg.NearClip, cfg.FarClip)
	fmt.Printf("Output: %s\n", cfg.Preview.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	results, err := preview.Run(preview.Config{
		OutputDir:     cfg.Preview.OutputDir,
		Format:        cfg.Preview.Format,
		Supersample:   cfg.Preview.Supersample,
		MaxSize:       cfg.Preview.MaxSize,
		Workers:       cfg.Preview.Workers,
		Texture:       tex,
		Textures:      textures,
		WallTextures:  cfg.Preview.WallTexturePaths(),
		RearProjected: cfg.Preview.RearProjected(),
		FlipVertical:  cfg.Preview.FlippedVertical(),
		Sheet:         cfg.Preview.ContactSheet,
		Progress:      os.Stdout,
	}, r, eye)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if results == nil {
			os.Exit(1)
		}
	}

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.2fs\n", elapsed.Seconds())

	// Count results
	success, failed := 0, 0
	var errors []preview.Result
	for _, res := range results {
		if res.Success {
			success++
			fmt.Printf("  %-10s %dx%d  %s\n", res.Wall, res.Width, res.Height, res.Image)
		} else {
			failed++
			errors = append(errors, res)
		}
	}

	fmt.Printf("Rendered: %d/%d\n", success, len(results))

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		for _, e := range errors {
			fmt.Printf("  %s: %s\n", e.Wall, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.Preview.OutputDir, preview.ManifestName)
	if err := preview.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if *withPlan {
		planPath := filepath.Join(cfg.Preview.OutputDir, "plan.png")
		if err := plan.Save(planPath, room, eye, 768); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		} else {
			fmt.Printf("Plan: %s\n", planPath)
		}
	}

	if failed > 0 || err != nil {
		os.Exit(1)
	}
}

func loadTexture(cache *texture.Cache, path string) *image.NRGBA {
	switch path {
	case "":
		return nil
	case config.BuiltinChecker:
		return texture.Checker(256, 32, color.NRGBA{230, 230, 230, 255}, color.NRGBA{40, 40, 50, 255})
	}
	tex := cache.Resolve(path)
	if tex == nil {
		fmt.Fprintf(os.Stderr, "Warning: texture %s: %v (using flat colours)\n", path, cache.Err(path))
		return nil
	}
	fmt.Printf("Texture: %s (%dx%d)\n", path, tex.Bounds().Dx(), tex.Bounds().Dy())
	return tex
}
