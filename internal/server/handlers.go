package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dotback/Gemini-Transparent-Background/internal/chromakey"
	"github.com/dotback/Gemini-Transparent-Background/internal/imaging"
)

// errInvalidArguments marks tool arguments that could not be decoded or are
// missing. Together with chromakey.ErrInvalidParameter it maps to -32602.
var errInvalidArguments = errors.New("invalid arguments")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "chromakey_remove_background").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Invalid arguments and keying parameters return -32602; any other tool
// failure returns -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.Warn().Err(err).Str("tool", params.Name).Msg("tool failed")
		if errors.Is(err, errInvalidArguments) || errors.Is(err, chromakey.ErrInvalidParameter) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	s.log.Debug().Str("tool", params.Name).Dur("elapsed", time.Since(start)).Msg("tool done")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Inspection
	case "image_crop":
		return s.handleImageCrop(args)
	case "image_sample_color":
		return s.handleImageSampleColor(args)
	case "image_sample_colors_multi":
		return s.handleImageSampleColorsMulti(args)
	case "image_dominant_colors":
		return s.handleImageDominantColors(args)

	// Keying
	case "chromakey_sample_key":
		return s.handleChromakeySampleKey(args)
	case "chromakey_mask":
		return s.handleChromakeyMask(args)
	case "chromakey_remove_background":
		return s.handleChromakeyRemoveBackground(args)
	case "chromakey_preview":
		return s.handleChromakeyPreview(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments into dst. A missing path is an
// argument error for every tool.
func decodeArgs(args json.RawMessage, dst interface{ path() string }) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing arguments", errInvalidArguments)
	}
	if err := json.Unmarshal(args, dst); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArguments, err)
	}
	if dst.path() == "" {
		return fmt.Errorf("%w: path is required", errInvalidArguments)
	}
	return nil
}

type pathArgs struct {
	Path string `json:"path"`
}

func (a *pathArgs) path() string { return a.Path }

// === Basic Image Information Handlers ===

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Inspection Handlers ===

type imageCropArgs struct {
	pathArgs
	X1    int     `json:"x1"`
	Y1    int     `json:"y1"`
	X2    int     `json:"x2"`
	Y2    int     `json:"y2"`
	Scale float64 `json:"scale"`
}

func (s *Server) handleImageCrop(args json.RawMessage) (interface{}, error) {
	var a imageCropArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Crop(img, imaging.Region{X1: a.X1, Y1: a.Y1, X2: a.X2, Y2: a.Y2}, a.Scale)
}

type imageSampleColorArgs struct {
	pathArgs
	X int `json:"x"`
	Y int `json:"y"`
}

// sampledColor is a color sample with its distance from the configured key.
type sampledColor struct {
	*imaging.ColorResult
	KeyDistance float64 `json:"key_distance"`
	SpillExcess float64 `json:"spill_excess"`
}

func (s *Server) handleImageSampleColor(args json.RawMessage) (interface{}, error) {
	var a imageSampleColorArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	c, err := imaging.SampleColor(img, a.X, a.Y)
	if err != nil {
		return nil, err
	}

	out := sampledColor{ColorResult: c}
	// Distance and spill are only meaningful against a fixed key.
	if def := s.cfg.Defaults; def.Key.Kind == chromakey.KeyFixed {
		r, g, b := float64(c.RGB.R)/255, float64(c.RGB.G)/255, float64(c.RGB.B)/255
		out.KeyDistance = chromakey.Distance(colorful.Color{R: r, G: g, B: b}, def.Key.Color, def.LuminanceWeight)
		out.SpillExcess = chromakey.SpillExcess(r, g, b, def.Key.Color)
	}
	return out, nil
}

type imageSampleColorsMultiArgs struct {
	pathArgs
	Points []struct {
		X     int    `json:"x"`
		Y     int    `json:"y"`
		Label string `json:"label,omitempty"`
	} `json:"points"`
}

func (s *Server) handleImageSampleColorsMulti(args json.RawMessage) (interface{}, error) {
	var a imageSampleColorsMultiArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	points := make([]imaging.LabeledPoint, len(a.Points))
	for i, p := range a.Points {
		points[i] = imaging.LabeledPoint{X: p.X, Y: p.Y, Label: p.Label}
	}
	return imaging.SampleColorsMulti(img, points)
}

type imageDominantColorsArgs struct {
	pathArgs
	Count  int             `json:"count"`
	Region *imaging.Region `json:"region,omitempty"`
}

func (s *Server) handleImageDominantColors(args json.RawMessage) (interface{}, error) {
	var a imageDominantColorsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Count == 0 {
		a.Count = 5
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.DominantColors(img, a.Count, a.Region)
}

// === Keying Handlers ===

type sampleKeyArgs struct {
	pathArgs
	Region *chromakey.SampleRegion `json:"region,omitempty"`
}

type sampleKeyResult struct {
	chromakey.KeySample
	Warning string `json:"warning,omitempty"`
}

func (s *Server) handleChromakeySampleKey(args json.RawMessage) (interface{}, error) {
	var a sampleKeyArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	region := chromakey.SampleRegion{Kind: chromakey.RegionCorners}
	if a.Region != nil {
		region = *a.Region
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	ks, err := chromakey.ResolveKey(img, chromakey.SampledFromRegion(region))
	if err != nil {
		return nil, err
	}
	return sampleKeyResult{KeySample: ks, Warning: uniformityWarning(ks)}, nil
}

func uniformityWarning(ks chromakey.KeySample) string {
	if !ks.Sampled || ks.Uniform {
		return ""
	}
	return fmt.Sprintf("backdrop is not uniform (std dev %.3f/%.3f/%.3f); sampled key may be unreliable",
		ks.StdDev[0], ks.StdDev[1], ks.StdDev[2])
}

type maskArgs struct {
	keyingArgs
	Stage      string `json:"stage"`
	OutputPath string `json:"output_path"`
}

type maskResult struct {
	OutputPath string              `json:"output_path"`
	Stage      string              `json:"stage"`
	Width      int                 `json:"width"`
	Height     int                 `json:"height"`
	Key        chromakey.KeySample `json:"key"`
	Stats      chromakey.Stats     `json:"stats"`
}

func (s *Server) handleChromakeyMask(args json.RawMessage) (interface{}, error) {
	var a maskArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Stage == "" {
		a.Stage = "feathered"
	}

	res, err := s.runPipeline(a.Path, a.keyingArgs)
	if err != nil {
		return nil, err
	}

	var m *chromakey.Mask
	switch strings.ToLower(a.Stage) {
	case "raw":
		m = res.Raw
	case "refined":
		m = res.Refined
	case "feathered":
		m = res.Feathered
	default:
		return nil, fmt.Errorf("%w: unknown mask stage %q (want raw, refined or feathered)", errInvalidArguments, a.Stage)
	}

	out := a.OutputPath
	if out == "" {
		out = imaging.OutputPath(a.Path, s.cfg.OutputDir, "_mask")
	}
	saved, err := imaging.SavePNG(m.ToGray(), out)
	if err != nil {
		return nil, err
	}

	return maskResult{
		OutputPath: saved,
		Stage:      strings.ToLower(a.Stage),
		Width:      m.Width,
		Height:     m.Height,
		Key:        res.Key,
		Stats:      res.Stats,
	}, nil
}

type removeArgs struct {
	keyingArgs
	OutputPath string `json:"output_path"`
}

type removeResult struct {
	OutputPath string              `json:"output_path"`
	Width      int                 `json:"width"`
	Height     int                 `json:"height"`
	Key        chromakey.KeySample `json:"key"`
	Stats      chromakey.Stats     `json:"stats"`
	Warning    string              `json:"warning,omitempty"`
}

func (s *Server) handleChromakeyRemoveBackground(args json.RawMessage) (interface{}, error) {
	var a removeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	res, err := s.runPipeline(a.Path, a.keyingArgs)
	if err != nil {
		return nil, err
	}

	out := a.OutputPath
	if out == "" {
		out = imaging.OutputPath(a.Path, s.cfg.OutputDir, "_nobg")
	}
	saved, err := imaging.SavePNG(res.Image, out)
	if err != nil {
		return nil, err
	}

	return removeResult{
		OutputPath: saved,
		Width:      res.Stats.Width,
		Height:     res.Stats.Height,
		Key:        res.Key,
		Stats:      res.Stats,
		Warning:    uniformityWarning(res.Key),
	}, nil
}

type previewArgs struct {
	keyingArgs
	Background  string `json:"background"`
	CheckerSize int    `json:"checker_size"`
	MaxWidth    int    `json:"max_width"`
}

type previewResult struct {
	*imaging.EncodedImage
	Key   chromakey.KeySample `json:"key"`
	Stats chromakey.Stats     `json:"stats"`
}

func (s *Server) handleChromakeyPreview(args json.RawMessage) (interface{}, error) {
	var a previewArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	res, err := s.runPipeline(a.Path, a.keyingArgs)
	if err != nil {
		return nil, err
	}

	enc, err := imaging.Preview(res.Image, imaging.PreviewOptions{
		Background:  a.Background,
		CheckerSize: a.CheckerSize,
		MaxWidth:    a.MaxWidth,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidArguments, err)
	}
	return previewResult{EncodedImage: enc, Key: res.Key, Stats: res.Stats}, nil
}

// runPipeline loads path and keys it with the server defaults overridden by
// a.
func (s *Server) runPipeline(path string, a keyingArgs) (*chromakey.Result, error) {
	p, err := a.params(s.cfg.Defaults)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := chromakey.Remove(img, p)
	if err != nil {
		return nil, err
	}
	s.log.Debug().
		Str("path", path).
		Str("key", res.Key.Hex).
		Bool("sampled", res.Key.Sampled).
		Int("transparent", res.Stats.Transparent).
		Int("partial", res.Stats.Partial).
		Int("opaque", res.Stats.Opaque).
		Dur("elapsed", time.Since(start)).
		Msg("pipeline")
	return res, nil
}
