package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dotback/Gemini-Transparent-Background/internal/chromakey"
	"github.com/dotback/Gemini-Transparent-Background/internal/imaging"
	"github.com/dotback/Gemini-Transparent-Background/internal/server"
)

var log = server.NewLogger(os.Stderr, zerolog.InfoLevel)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "remove":
		err = runRemove(os.Args[2:])
	case "mask":
		err = runMask(os.Args[2:])
	case "sample":
		err = runSample(os.Args[2:])
	case "-h", "--help", "help":
		usage()
		return
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fail(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: chromakey <command> [flags] image...")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  remove [-out file | -out-dir dir] [-key green] [-despill 0.7] [-feather 2] [-erode 0] [-dilate 0] image...")
	fmt.Fprintln(os.Stderr, "  mask   [-out file | -out-dir dir] [-stage feathered] [keying flags] image...")
	fmt.Fprintln(os.Stderr, "  sample [-sample corners] [-sample-size 8] image...")
	fmt.Fprintln(os.Stderr, "Run a command with -h for all flags.")
}

func fail(err error) {
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	fmt.Fprintln(os.Stderr, "chromakey:", err)
	os.Exit(1)
}

// outputFlags are the destination flags of commands that write images.
type outputFlags struct {
	out     *string
	outDir  *string
	verbose *bool
}

func registerOutputFlags(fs *flag.FlagSet) *outputFlags {
	return &outputFlags{
		out:     fs.String("out", "", "output PNG (single input only)"),
		outDir:  fs.String("out-dir", "", "output directory; default next to each input"),
		verbose: fs.Bool("v", false, "debug logging"),
	}
}

func (o *outputFlags) check(inputs []string) error {
	if len(inputs) == 0 {
		return errors.New("missing input image")
	}
	if *o.out != "" && len(inputs) > 1 {
		return errors.New("-out needs exactly one input; use -out-dir")
	}
	if *o.verbose {
		log = log.Level(zerolog.DebugLevel)
	}
	return nil
}

func (o *outputFlags) path(in, suffix string) string {
	if *o.out != "" {
		return *o.out
	}
	return imaging.OutputPath(in, *o.outDir, suffix)
}

func runRemove(args []string) error {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	kf := registerKeyFlags(fs)
	of := registerOutputFlags(fs)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := of.check(fs.Args()); err != nil {
		return err
	}
	p, err := kf.params()
	if err != nil {
		return err
	}

	return eachInput(fs.Args(), p, func(in string, res *chromakey.Result) error {
		saved, err := imaging.SavePNG(res.Image, of.path(in, "_nobg"))
		if err != nil {
			return err
		}
		log.Info().Str("in", in).Str("out", saved).Str("key", res.Key.Hex).
			Int("transparent", res.Stats.Transparent).Int("partial", res.Stats.Partial).
			Msg("removed background")
		return nil
	})
}

func runMask(args []string) error {
	fs := flag.NewFlagSet("mask", flag.ContinueOnError)
	kf := registerKeyFlags(fs)
	of := registerOutputFlags(fs)
	stage := fs.String("stage", "feathered", "mask to write: raw, refined or feathered")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := of.check(fs.Args()); err != nil {
		return err
	}
	p, err := kf.params()
	if err != nil {
		return err
	}
	pick, err := maskStage(*stage)
	if err != nil {
		return err
	}

	return eachInput(fs.Args(), p, func(in string, res *chromakey.Result) error {
		saved, err := imaging.SavePNG(pick(res).ToGray(), of.path(in, "_mask"))
		if err != nil {
			return err
		}
		log.Info().Str("in", in).Str("out", saved).Str("stage", *stage).Msg("wrote mask")
		return nil
	})
}

func maskStage(name string) (func(*chromakey.Result) *chromakey.Mask, error) {
	switch strings.ToLower(name) {
	case "raw":
		return func(r *chromakey.Result) *chromakey.Mask { return r.Raw }, nil
	case "refined":
		return func(r *chromakey.Result) *chromakey.Mask { return r.Refined }, nil
	case "feathered":
		return func(r *chromakey.Result) *chromakey.Mask { return r.Feathered }, nil
	}
	return nil, fmt.Errorf("unknown mask stage %q", name)
}

// eachInput keys every input with p and hands the result to write. It stops
// at the first failure.
func eachInput(inputs []string, p chromakey.Params, write func(in string, res *chromakey.Result) error) error {
	cache := imaging.NewImageCache()
	for _, in := range inputs {
		img, err := cache.Load(in)
		if err != nil {
			return fmt.Errorf("%s: %w", in, err)
		}
		res, err := chromakey.Remove(img, p)
		if err != nil {
			return fmt.Errorf("%s: %w", in, err)
		}
		if res.Key.Sampled && !res.Key.Uniform {
			log.Warn().Str("in", in).Str("key", res.Key.Hex).Msg("backdrop is not uniform; sampled key may be unreliable")
		}
		if err := write(in, res); err != nil {
			return fmt.Errorf("%s: %w", in, err)
		}
		// Inputs are only read once.
		cache.Evict(in)
	}
	return nil
}

func runSample(args []string) error {
	fs := flag.NewFlagSet("sample", flag.ContinueOnError)
	region := fs.String("sample", "corners", "sample region: corners or border")
	size := fs.Int("sample-size", chromakey.DefaultSampleSize, "corner patch size or border width in pixels")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("missing input image")
	}

	src := chromakey.SampledFromRegion(chromakey.SampleRegion{
		Kind: chromakey.RegionKind(strings.ToLower(*region)),
		Size: *size,
	})
	cache := imaging.NewImageCache()
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	for _, in := range fs.Args() {
		img, err := cache.Load(in)
		if err != nil {
			return fmt.Errorf("%s: %w", in, err)
		}
		ks, err := chromakey.ResolveKey(img, src)
		if err != nil {
			return fmt.Errorf("%s: %w", in, err)
		}
		if err := enc.Encode(struct {
			File string `json:"file"`
			chromakey.KeySample
		}{in, ks}); err != nil {
			return err
		}
	}
	return nil
}
