package server

import (
	"github.com/dotback/Gemini-Transparent-Background/internal/chromakey"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the image file",
}

func integerProperty(description string) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": description}
}

func radiusProperty(description string, def, limit int) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": description, "default": def, "minimum": 0, "maximum": limit}
}

func numberProperty(description string, def float64) map[string]interface{} {
	return map[string]interface{}{"type": "number", "description": description, "default": def}
}

func enumProperty(description string, def string, values ...string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description, "default": def, "enum": values}
}

var regionProperty = map[string]interface{}{
	"type":        "object",
	"description": "Rectangle relative to the image origin; (x1,y1) inclusive, (x2,y2) exclusive",
	"properties": map[string]interface{}{
		"x1": map[string]interface{}{"type": "integer"},
		"y1": map[string]interface{}{"type": "integer"},
		"x2": map[string]interface{}{"type": "integer"},
		"y2": map[string]interface{}{"type": "integer"},
	},
	"required": []string{"x1", "y1", "x2", "y2"},
}

var sampleRegionProperty = map[string]interface{}{
	"type":        "object",
	"description": "Where to sample the backdrop color. Default: the four corners, 8px patches",
	"properties": map[string]interface{}{
		"kind": map[string]interface{}{
			"type": "string",
			"enum": []string{"corners", "border", "rect"},
		},
		"size": integerProperty("Patch size for corners, frame width for border"),
		"x1":   map[string]interface{}{"type": "integer"},
		"y1":   map[string]interface{}{"type": "integer"},
		"x2":   map[string]interface{}{"type": "integer"},
		"y2":   map[string]interface{}{"type": "integer"},
	},
	"required": []string{"kind"},
}

// keyingSchema returns an input schema holding the shared keying
// parameters, advertising d as their defaults, plus extra tool-specific
// properties.
func keyingSchema(d chromakey.Params, extra map[string]interface{}) map[string]interface{} {
	key := "auto"
	if d.Key.Kind == chromakey.KeyFixed {
		key = d.Key.Color.Hex()
	}
	props := map[string]interface{}{
		"path": pathProperty,
		"key": map[string]interface{}{
			"type":        "string",
			"description": `Backdrop color: "green", "blue", "#RRGGBB", or "auto" to sample it from sample_region`,
			"default":     key,
		},
		"sample_region":     sampleRegionProperty,
		"edge_threshold":    numberProperty("Color distance at or below which a pixel is fully background", d.EdgeThreshold),
		"soft_band":         numberProperty("Width of the partial-alpha band above edge_threshold; 0 gives a hard cut", d.SoftBand),
		"luminance_weight":  numberProperty("Weight of brightness difference in the color distance", d.LuminanceWeight),
		"erosion_radius":    radiusProperty("Erosion radius in pixels; removes specks", d.ErosionRadius, chromakey.MaxMorphRadius),
		"dilation_radius":   radiusProperty("Dilation radius in pixels; fills pinholes", d.DilationRadius, chromakey.MaxMorphRadius),
		"morph_order":       enumProperty("Order of erosion and dilation", morphOrderName(d.MorphOrder), "opening", "closing"),
		"feather_radius":    radiusProperty("Edge feather radius in pixels", d.FeatherRadius, chromakey.MaxFeatherRadius),
		"feather_kernel":    enumProperty("Feather kernel", featherKernelName(d.FeatherKernel), "gaussian", "box"),
		"despill_strength":  numberProperty("How strongly to remove key-color spill from edges, 0-1", d.DespillStrength),
		"despill_threshold": numberProperty("Minimum spill excess (0-1) before a pixel is corrected", d.DespillThreshold),
		"despill_weight":    enumProperty("Mask that weights despill", despillWeightName(d.DespillWeight), "feathered", "refined"),
	}
	for k, v := range extra {
		props[k] = v
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"required":   []string{"path"},
	}
}

func morphOrderName(o chromakey.MorphOrder) string {
	if o == chromakey.Closing {
		return "closing"
	}
	return "opening"
}

func featherKernelName(k chromakey.FeatherKernel) string {
	if k == chromakey.Box {
		return "box"
	}
	return "gaussian"
}

func despillWeightName(w chromakey.DespillWeight) string {
	if w == chromakey.RefinedMask {
		return "refined"
	}
	return "feathered"
}

// GetToolDefinitions returns all available tools. Keying parameters
// advertise d as their defaults.
func GetToolDefinitions(d chromakey.Params) []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and whether it already has alpha.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{"path": pathProperty},
				"required":   []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{"path": pathProperty},
				"required":   []string{"path"},
			},
		},

		// Inspection
		{
			Name:        "image_crop",
			Description: "Crop a region from an image (source or keyed output) and return it as base64 PNG. Use a scale above 1 to inspect edge alpha up close.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":  pathProperty,
					"x1":    integerProperty("Left edge X coordinate (0-based)"),
					"y1":    integerProperty("Top edge Y coordinate (0-based)"),
					"x2":    integerProperty("Right edge X coordinate (exclusive)"),
					"y2":    integerProperty("Bottom edge Y coordinate (exclusive)"),
					"scale": numberProperty("Scale factor; values above 1 use nearest-neighbor", 1.0),
				},
				"required": []string{"path", "x1", "y1", "x2", "y2"},
			},
		},
		{
			Name:        "image_sample_color",
			Description: "Get the color at a pixel in hex, RGB, RGBA, HSV and HSL, with its distance from the default key color and its spill excess.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"x":    integerProperty("X coordinate (0-based)"),
					"y":    integerProperty("Y coordinate (0-based)"),
				},
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "image_sample_colors_multi",
			Description: "Sample colors at several labeled points in one call.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"points": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":     map[string]interface{}{"type": "integer"},
								"y":     map[string]interface{}{"type": "integer"},
								"label": map[string]interface{}{"type": "string"},
							},
							"required": []string{"x", "y"},
						},
					},
				},
				"required": []string{"path", "points"},
			},
		},
		{
			Name:        "image_dominant_colors",
			Description: "Return the most common colors of an image or region. On a green-screen shot the first entry is usually the backdrop.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Number of colors to return",
						"default":     5,
					},
					"region": regionProperty,
				},
				"required": []string{"path"},
			},
		},

		// Keying
		{
			Name:        "chromakey_sample_key",
			Description: "Estimate the backdrop key color by averaging a region and report whether the backdrop is uniform enough for keying.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty,
					"region": sampleRegionProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "chromakey_mask",
			Description: "Compute the alpha mask for a green/blue-screen image and save it as a grayscale PNG (white = subject).",
			InputSchema: keyingSchema(d, map[string]interface{}{
				"stage":       enumProperty("Which mask to save", "feathered", "raw", "refined", "feathered"),
				"output_path": map[string]interface{}{"type": "string", "description": "Where to save the mask. Default <name>_mask.png in the output directory"},
			}),
		},
		{
			Name:        "chromakey_remove_background",
			Description: "Remove a uniform green/blue backdrop: key, refine, feather and despill, then save a transparent PNG.",
			InputSchema: keyingSchema(d, map[string]interface{}{
				"output_path": map[string]interface{}{"type": "string", "description": "Where to save the result. Default <name>_nobg.png in the output directory"},
			}),
		},
		{
			Name:        "chromakey_preview",
			Description: "Key an image and return it as base64 PNG composited over a checkerboard or solid color, without saving.",
			InputSchema: keyingSchema(d, map[string]interface{}{
				"background":   map[string]interface{}{"type": "string", "description": "Solid #RRGGBB background instead of a checkerboard"},
				"checker_size": integerProperty("Checkerboard square size in pixels. Default 8"),
				"max_width":    integerProperty("Downscale previews wider than this. Default: no scaling"),
			}),
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(s.cfg.Defaults),
		},
	}
}
