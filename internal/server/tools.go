package server

import (
	"github.com/ironsheep/geo-features-mcp/internal/features"
	"github.com/ironsheep/geo-features-mcp/internal/imaging"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func featureTypeProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Feature category used to label and style the output. Unknown values become \"other\".",
		"enum":        features.Names(),
		"default":     string(features.Default),
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Information
		{
			Name:        "image_info",
			Description: "Read an image header and return its dimensions, format, channel count, bit depth and file size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},

		// Extraction
		{
			Name:        "extract_features",
			Description: "Run the feature extraction chain (grayscale, Gaussian blur, inverted adaptive threshold, Canny, morphological closing) and write a binary mask PNG to the output directory.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "vectorize_mask",
			Description: "Convert a binary mask into GeoJSON polygons, save the collection to the output directory and return it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"mask_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the mask image. Pixels brighter than mid-gray are foreground.",
					},
					"feature_type": featureTypeProperty(),
				},
				"required": []string{"mask_path"},
			},
		},
		{
			Name:        "process_image",
			Description: "Store an uploaded image, extract its feature mask and vectorize it in one step. Accepts PNG, JPEG and TIFF files.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file (.png, .jpg, .jpeg, .tif, .tiff)",
					},
					"feature_type": featureTypeProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Stored Results
		{
			Name:        "load_geojson",
			Description: "Load a previously saved feature collection from the output directory by filename.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"filename": map[string]interface{}{
						"type":        "string",
						"description": "Name of a .geojson file in the output directory, as returned by process_image or vectorize_mask",
					},
				},
				"required": []string{"filename"},
			},
		},

		// Visualization
		{
			Name:        "mask_preview",
			Description: "Tint the mask's foreground over the source image in the feature type's colour and return the composite as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the source image",
					},
					"mask_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the mask, same size as the source image",
					},
					"feature_type": featureTypeProperty(),
					"max_dimension": map[string]interface{}{
						"type":        "integer",
						"description": "Scale the preview down so neither side exceeds this many pixels. Negative disables scaling. Default 1024",
						"default":     defaultPreviewDim,
					},
					"region": map[string]interface{}{
						"type":        "string",
						"description": "Optional named region to zoom into. Takes precedence over x1/y1/x2/y2",
						"enum":        imaging.Regions,
					},
					"x1": map[string]interface{}{
						"type":        "integer",
						"description": "Optional zoom rectangle left edge (0-based)",
					},
					"y1": map[string]interface{}{
						"type":        "integer",
						"description": "Optional zoom rectangle top edge (0-based)",
					},
					"x2": map[string]interface{}{
						"type":        "integer",
						"description": "Optional zoom rectangle right edge (exclusive)",
					},
					"y2": map[string]interface{}{
						"type":        "integer",
						"description": "Optional zoom rectangle bottom edge (exclusive)",
					},
				},
				"required": []string{"path", "mask_path"},
			},
		},
		{
			Name:        "feature_styles",
			Description: "List the supported feature types and the map style (stroke colour, fill colour, opacity, weight) of each.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
