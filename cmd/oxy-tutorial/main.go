package main

import (
	"flag"
	"log"
	"os"
	"runtime"

	"github.com/Carmen-Shannon/oxy-tutorial/engine"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/config"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/window"
)

func init() {
	// GLFW and the WebGPU surface must be driven from the main thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", config.DefaultFile, "TOML settings file")
	headless := flag.Bool("headless", false, "render without a window or GPU")
	frames := flag.Int("frames", 0, "stop after this many frames, 0 runs until closed")
	technique := flag.String("technique", "", "shader technique: color, texture, light, specular, lightmap, alphamap, multitexture, bumpmap, translate")
	software := flag.Bool("software", false, "use the software WebGPU adapter")
	printConfig := flag.Bool("print-config", false, "print the effective settings and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("oxy-tutorial: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "headless":
			cfg.Debug.Headless = *headless
		case "frames":
			cfg.Debug.Frames = *frames
		case "technique":
			cfg.Scene.Technique = *technique
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("oxy-tutorial: %v", err)
	}

	if *printConfig {
		if err := cfg.Encode(os.Stdout); err != nil {
			log.Fatalf("oxy-tutorial: %v", err)
		}
		return
	}

	if err := run(cfg, *software); err != nil {
		log.Fatalf("oxy-tutorial: %v", err)
	}
}

func run(cfg config.Config, software bool) error {
	windowOptions := []window.WindowBuilderOption{
		window.WithTitle("oxy-tutorial"),
		window.WithSize(cfg.Screen.Width, cfg.Screen.Height),
		window.WithFullscreen(cfg.Screen.Fullscreen),
	}

	options := engine.ConfigOptions(cfg)
	if cfg.Debug.Headless {
		options = append(options,
			engine.WithWindow(window.NewHeadlessWindow(windowOptions...)),
			engine.WithBackend(renderer.NewHeadlessBackend()),
		)
	} else {
		w, err := window.NewWindow(windowOptions...)
		if err != nil {
			return err
		}
		options = append(options,
			engine.WithWindow(w),
			engine.WithBackendOptions(renderer.WithForceSoftwareRenderer(software)),
		)
	}

	return engine.NewEngine(options...).Run()
}
