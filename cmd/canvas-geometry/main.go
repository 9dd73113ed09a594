package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/menta2k/canvas-geometry/internal/config"
	"github.com/menta2k/canvas-geometry/internal/logging"
	"github.com/menta2k/canvas-geometry/pkg/client"
	"github.com/menta2k/canvas-geometry/pkg/detection"
	"github.com/menta2k/canvas-geometry/pkg/llamacpp"
	"github.com/menta2k/canvas-geometry/pkg/ollama"
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, cfg *config.Config, args []string) error
}

var commands = []command{
	{"fit", "scale an image into a container", runFit},
	{"crop", "crop images to an aspect ratio", runCrop},
	{"extend", "grow the canvas to an aspect ratio", runExtend},
	{"presets", "render crops and extensions for every preset", runPresets},
	{"outpaint", "extend and fill the new area with the inference service", runOutpaint},
	{"inpaint", "regenerate a masked area with the inference service", runInpaint},
	{"enhance", "upscale with the inference service", runEnhance},
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [-config file] [-debug] <command> [flags]\n\ncommands:\n", filepath.Base(os.Args[0]))
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-9s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(os.Stderr, "\nrun '%s <command> -h' for command flags\n", filepath.Base(os.Args[0]))
}

func main() {
	var configPath string
	var debug bool

	flag.StringVar(&configPath, "config", "", "config file (json or yaml), default "+config.GetConfigPath())
	flag.BoolVar(&debug, "debug", false, "enable debug logging")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		logging.Fatalf("config: %v", err)
	}
	if debug {
		cfg.Log.Debug = true
	}

	closer, err := logging.Setup(logging.Options{
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Debug:      cfg.Log.Debug,
	})
	if err != nil {
		logging.Fatalf("log setup: %v", err)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	name, args := flag.Arg(0), flag.Args()[1:]
	for _, c := range commands {
		if c.name == name {
			if err := c.run(ctx, cfg, args); err != nil {
				stop()
				closer.Close()
				logging.Fatalf("%s: %v", name, err)
			}
			return
		}
	}
	usage()
	os.Exit(2)
}

// loadConfig reads path, or the default location when it exists. A missing
// default file is not an error.
func loadConfig(path string) (*config.Config, error) {
	explicit := path != ""
	if !explicit {
		path = config.GetConfigPath()
	}

	cfg, err := config.LoadFromFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return config.Default(), nil
		}
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildLocator returns the focus locator for method, falling back to the
// configured one when method is empty.
func buildLocator(cfg config.FocusConfig, method string) (detection.Locator, error) {
	if method == "" {
		method = cfg.Method
	}

	switch strings.ToLower(method) {
	case "face":
		return detection.NewFaceLocatorFromFile(cfg.CascadePath, detection.DefaultFaceParams())
	case "model":
		vc, err := visionClient(cfg)
		if err != nil {
			return nil, err
		}
		return detection.NewModelLocator(vc, cfg.Model), nil
	}
	return detection.New(method)
}

func visionClient(cfg config.FocusConfig) (client.VisionClient, error) {
	switch cfg.VisionBackend {
	case "", "ollama":
		return ollama.NewClient(cfg.VisionURL)
	case "llamacpp":
		return llamacpp.NewClient(cfg.VisionURL)
	}
	return nil, fmt.Errorf("unknown vision backend %q (use ollama or llamacpp)", cfg.VisionBackend)
}

// parseSize parses "WIDTHxHEIGHT".
func parseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("size %q: expected WIDTHxHEIGHT", s)
	}
	w, err1 := strconv.Atoi(strings.TrimSpace(ws))
	h, err2 := strconv.Atoi(strings.TrimSpace(hs))
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("size %q: expected positive WIDTHxHEIGHT", s)
	}
	return w, h, nil
}
