package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/menta2k/canvas-geometry/internal/config"
	"github.com/menta2k/canvas-geometry/internal/logging"
	"github.com/menta2k/canvas-geometry/internal/utils"
	"github.com/menta2k/canvas-geometry/pkg/analyzer"
	"github.com/menta2k/canvas-geometry/pkg/cropper"
	"github.com/menta2k/canvas-geometry/pkg/geometry"
	"github.com/menta2k/canvas-geometry/pkg/inference"
	"github.com/menta2k/canvas-geometry/pkg/processing"
	"github.com/menta2k/canvas-geometry/pkg/types"
)

// output holds the flags shared by every command that writes images.
type output struct {
	dir      string
	format   string
	quality  int
	lossless bool
	suffix   string
}

func (o *output) register(fs *flag.FlagSet, cfg config.OutputConfig) {
	fs.StringVar(&o.dir, "out", cfg.Dir, "output directory")
	fs.StringVar(&o.format, "ext", cfg.Format, "output format: jpg|png|webp")
	fs.IntVar(&o.quality, "quality", cfg.Quality, "JPEG/WebP output quality (1-100)")
	fs.BoolVar(&o.lossless, "lossless", cfg.Lossless, "WebP lossless mode")
	fs.StringVar(&o.suffix, "suffix", cfg.Suffix, "suffix added to output file names")
}

func (o *output) save(p *processing.Processor, img image.Image, input, tag string) (string, error) {
	if err := utils.EnsureDir(o.dir); err != nil {
		return "", err
	}
	path := utils.OutputFilename(input, o.dir, o.suffix, tag, o.format)
	if err := p.SaveImage(img, path, o.format, o.quality, o.lossless); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	if info, err := os.Stat(path); err == nil {
		logging.Printf("wrote %s (%s)", path, utils.FormatFileSize(info.Size()))
	}
	return path, nil
}

// session bundles the loaders every command needs.
type session struct {
	cfg       *config.Config
	processor *processing.Processor
	analyzer  *analyzer.ImageAnalyzer
}

func newSession(cfg *config.Config) *session {
	return &session{
		cfg:       cfg,
		processor: processing.NewProcessor(),
		analyzer: analyzer.NewWithConfig(analyzer.Config{
			SupportedFormats: cfg.Analyzer.SupportedFormats,
			MinImageSize:     cfg.Analyzer.MinImageSize,
			MaxImageSize:     cfg.Analyzer.MaxImageSize,
			Step:             cfg.Editor.QuantizationStep,
		}),
	}
}

func (s *session) load(ctx context.Context, src string) (image.Image, error) {
	img, err := s.processor.LoadImageSmart(ctx, src)
	if err != nil {
		return nil, err
	}
	if err := s.analyzer.Validate(img); err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	info := s.analyzer.Inspect(img)
	logging.Debugf("loaded %s: %dx%d %s, nearest %s", src, info.Width, info.Height, info.Orientation, info.NearestPreset.Short())
	return img, nil
}

func (s *session) inference() (*inference.Client, error) {
	b := s.cfg.Backend
	return inference.NewClient(b.URL,
		inference.WithTimeout(b.Timeout()),
		inference.WithRateLimit(b.RequestsPerSecond, b.Burst))
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseFill(s string) (color.Color, error) {
	switch strings.ToLower(s) {
	case "", "transparent":
		return color.Transparent, nil
	case "white":
		return color.White, nil
	case "black":
		return color.Black, nil
	}
	return nil, fmt.Errorf("fill %q: use transparent, white or black", s)
}

func runFit(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("fit", flag.ExitOnError)
	in := fs.String("in", "", "input image path or URL")
	container := fs.String("container", "1280x720", "container size WIDTHxHEIGHT")
	fs.Parse(args)
	if *in == "" {
		return fmt.Errorf("-in is required")
	}

	cw, ch, err := parseSize(*container)
	if err != nil {
		return err
	}
	s := newSession(cfg)
	img, err := s.load(ctx, *in)
	if err != nil {
		return err
	}

	fit, err := geometry.FitToContainer(types.DimensionsOf(img), types.Dimensions{Width: float64(cw), Height: float64(ch)})
	if err != nil {
		return err
	}
	return printJSON(struct {
		Image analyzer.Info `json:"image"`
		Fit   geometry.Fit  `json:"fit"`
	}{s.analyzer.Inspect(img), fit})
}

func runCrop(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("crop", flag.ExitOnError)
	ratioFlag := fs.String("ratio", "1:1", "aspect ratio: preset name, W:H or decimal")
	focus := fs.String("focus", "", "focus method: center|smartcrop|face|model (default from config)")
	size := fs.String("size", "", "resize the crop to exactly WIDTHxHEIGHT")
	upscale := fs.Bool("upscale", false, "allow -size larger than the source")
	var out output
	out.register(fs, cfg.Output)
	fs.Parse(args)
	if fs.NArg() == 0 {
		return fmt.Errorf("usage: crop [flags] <image|dir|url>...")
	}

	ar, err := geometry.ParseAspectRatio(*ratioFlag)
	if err != nil {
		return err
	}
	var tw, th int
	if *size != "" {
		if tw, th, err = parseSize(*size); err != nil {
			return err
		}
	}
	inputs, err := utils.ExpandInputs(fs.Args())
	if err != nil {
		return err
	}
	locator, err := buildLocator(cfg.Focus, *focus)
	if err != nil {
		return err
	}

	c := cropper.NewWithConfig(cropper.Config{AllowUpscaling: *upscale})
	c.SetLocator(locator)
	s := newSession(cfg)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, in := range inputs {
		g.Go(func() error {
			img, err := s.load(ctx, in)
			if err != nil {
				return err
			}
			var res cropper.CropResult
			if tw > 0 {
				res, err = c.CropToSize(ctx, img, tw, th)
			} else {
				res, err = c.CropToAspectRatio(ctx, img, ar)
			}
			if err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}
			logging.Printf("%s: %s region %+v, %.0f%% kept", in, ar.Short(), res.Region, res.Coverage*100)
			_, err = out.save(s.processor, res.Image, in, ar.Short())
			return err
		})
	}
	return g.Wait()
}

// extensionFor returns the manual extension when either amount is set,
// otherwise the extension for ratio.
func extensionFor(img image.Image, ratio string, w, h, step int) (types.ExtensionResult, error) {
	dims := types.DimensionsOf(img)
	if w > 0 || h > 0 {
		return geometry.ManualExtension(dims, w, h)
	}
	ar, err := geometry.ParseAspectRatio(ratio)
	if err != nil {
		return types.ExtensionResult{}, err
	}
	r, ok := ar.Value()
	if !ok {
		return types.ExtensionResult{}, fmt.Errorf("ratio %s: use -w/-h for a custom extension", ar)
	}
	return geometry.ExtensionForRatio(dims, r, step)
}

func runExtend(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("extend", flag.ExitOnError)
	in := fs.String("in", "", "input image path or URL")
	ratio := fs.String("ratio", "16:9", "target aspect ratio")
	w := fs.Int("w", 0, "manual width extension in px (overrides -ratio)")
	h := fs.Int("h", 0, "manual height extension in px (overrides -ratio)")
	step := fs.Int("step", cfg.Editor.QuantizationStep, "round ratio extensions up to a multiple of this")
	fill := fs.String("fill", "transparent", "fill for the new area: transparent|white|black")
	preview := fs.Bool("preview", false, "write a checkerboard preview instead of the plain canvas")
	var out output
	out.register(fs, cfg.Output)
	fs.Parse(args)
	if *in == "" {
		return fmt.Errorf("-in is required")
	}

	fillColor, err := parseFill(*fill)
	if err != nil {
		return err
	}
	s := newSession(cfg)
	img, err := s.load(ctx, *in)
	if err != nil {
		return err
	}
	ext, err := extensionFor(img, *ratio, *w, *h, *step)
	if err != nil {
		return err
	}
	if ext.IsZero() {
		logging.Printf("%s already has the requested ratio", *in)
	}

	var canvas *image.NRGBA
	if *preview {
		canvas, err = processing.ExtensionPreview(img, ext)
	} else {
		canvas, err = processing.ExtendCanvas(img, ext, fillColor)
	}
	if err != nil {
		return err
	}
	ai := geometry.AIContentPercentage(types.DimensionsOf(img), ext.Size())
	logging.Printf("canvas %dx%d (+%dx%d), %d%% to generate", ext.Width, ext.Height, ext.ExtendWidth, ext.ExtendHeight, ai)

	_, err = out.save(s.processor, canvas, *in, fmt.Sprintf("%dx%d", ext.Width, ext.Height))
	return err
}

func runPresets(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("presets", flag.ExitOnError)
	in := fs.String("in", "", "input image path or URL")
	focus := fs.String("focus", "", "focus method for crops (default from config)")
	previews := fs.Bool("previews", true, "also write crop and extension previews")
	var out output
	out.register(fs, cfg.Output)
	fs.Parse(args)
	if *in == "" {
		return fmt.Errorf("-in is required")
	}

	s := newSession(cfg)
	img, err := s.load(ctx, *in)
	if err != nil {
		return err
	}
	locator, err := buildLocator(cfg.Focus, *focus)
	if err != nil {
		return err
	}
	c := cropper.New()
	c.SetLocator(locator)

	plans, err := s.analyzer.PlanAll(img)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, plan := range plans {
		g.Go(func() error {
			res, err := c.CropToAspectRatio(gctx, img, plan.Ratio)
			if err != nil {
				return err
			}
			tag := utils.SanitizeFilename(plan.Ratio.Short())
			if _, err := out.save(s.processor, res.Image, *in, "crop_"+tag); err != nil {
				return err
			}
			if !*previews {
				return nil
			}
			if _, err := out.save(s.processor, processing.CropPreview(img, res.Region), *in, "crop_preview_"+tag); err != nil {
				return err
			}
			if plan.Extension.IsZero() {
				return nil
			}
			ext, err := processing.ExtensionPreview(img, plan.Extension)
			if err != nil {
				return err
			}
			_, err = out.save(s.processor, ext, *in, "extend_preview_"+tag)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return printJSON(plans)
}

func runOutpaint(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("outpaint", flag.ExitOnError)
	in := fs.String("in", "", "input image path or URL")
	ratio := fs.String("ratio", "16:9", "target aspect ratio")
	w := fs.Int("w", 0, "manual width extension in px (overrides -ratio)")
	h := fs.Int("h", 0, "manual height extension in px (overrides -ratio)")
	defaults := inference.DefaultOutpaintSettings()
	prompt := fs.String("prompt", "", "what to generate in the new area")
	negative := fs.String("negative", "", "negative prompt")
	guidance := fs.Float64("guidance", defaults.GuidanceScale, "guidance scale")
	steps := fs.Int("steps", defaults.NumSteps, "diffusion steps")
	seed := fs.Int64("seed", -1, "seed, -1 for random")
	samples := fs.Int("samples", defaults.NumSamples, "number of results")
	var out output
	out.register(fs, cfg.Output)
	fs.Parse(args)
	if *in == "" {
		return fmt.Errorf("-in is required")
	}

	s := newSession(cfg)
	img, err := s.load(ctx, *in)
	if err != nil {
		return err
	}
	ext, err := extensionFor(img, *ratio, *w, *h, cfg.Editor.QuantizationStep)
	if err != nil {
		return err
	}
	if ext.IsZero() {
		return fmt.Errorf("%s already has the requested ratio, nothing to outpaint", *in)
	}

	settings := defaults.WithExtension(ext)
	settings.Prompt = *prompt
	settings.NegativePrompt = *negative
	settings.GuidanceScale = *guidance
	settings.NumSteps = *steps
	settings.NumSamples = *samples
	if *seed >= 0 {
		settings.Seed = seed
	}

	api, err := s.inference()
	if err != nil {
		return err
	}
	logging.Printf("outpainting %s to %dx%d (%d%% generated) via %s", *in, ext.Width, ext.Height,
		geometry.AIContentPercentage(types.DimensionsOf(img), ext.Size()), api.BaseURL())

	results, err := api.Outpaint(ctx, img, settings)
	if err != nil {
		return err
	}
	for i, res := range results {
		if _, err := out.save(s.processor, res, *in, fmt.Sprintf("outpaint_%d", i+1)); err != nil {
			return err
		}
	}
	return nil
}

func runInpaint(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("inpaint", flag.ExitOnError)
	in := fs.String("in", "", "input image path or URL")
	maskPath := fs.String("mask", "", "mask image; red pixels mark the area to regenerate")
	prompt := fs.String("prompt", "", "what to put in the masked area")
	negative := fs.String("negative", "", "negative prompt")
	modelType := fs.String("model-type", "powerpaint", "inpainting model on the service")
	steps := fs.Int("steps", 30, "diffusion steps")
	guidance := fs.Float64("guidance", 7.5, "guidance scale")
	seed := fs.Int64("seed", 42, "seed")
	var out output
	out.register(fs, cfg.Output)
	fs.Parse(args)
	if *in == "" || *maskPath == "" {
		return fmt.Errorf("-in and -mask are required")
	}

	s := newSession(cfg)
	img, err := s.load(ctx, *in)
	if err != nil {
		return err
	}
	mask, err := s.processor.LoadImage(*maskPath)
	if err != nil {
		return err
	}
	if mask.Bounds().Size() != img.Bounds().Size() {
		return fmt.Errorf("mask is %v, image is %v", mask.Bounds().Size(), img.Bounds().Size())
	}

	api, err := s.inference()
	if err != nil {
		return err
	}
	res, err := api.Inpaint(ctx, inference.InpaintRequest{
		ModelType:      *modelType,
		Prompt:         *prompt,
		NegativePrompt: *negative,
		Steps:          *steps,
		GuidanceScale:  *guidance,
		Seed:           *seed,
		Image:          img,
		Mask:           mask,
	})
	if err != nil {
		return err
	}
	_, err = out.save(s.processor, res, *in, "inpaint")
	return err
}

func runEnhance(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("enhance", flag.ExitOnError)
	scale := fs.Int("scale", 2, "upscale factor")
	var out output
	out.register(fs, cfg.Output)
	fs.Parse(args)
	if fs.NArg() == 0 {
		return fmt.Errorf("usage: enhance [flags] <image|dir|url>...")
	}

	inputs, err := utils.ExpandInputs(fs.Args())
	if err != nil {
		return err
	}
	s := newSession(cfg)
	api, err := s.inference()
	if err != nil {
		return err
	}

	// the client's rate limiter paces the uploads
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, cfg.Backend.Burst))
	for _, in := range inputs {
		g.Go(func() error {
			img, err := s.load(ctx, in)
			if err != nil {
				return err
			}
			res, err := api.Enhance(ctx, img, *scale)
			if err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}
			_, err = out.save(s.processor, res, in, fmt.Sprintf("x%d", *scale))
			return err
		})
	}
	return g.Wait()
}
