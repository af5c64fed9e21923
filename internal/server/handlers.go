package server

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/ironsheep/geo-features-mcp/internal/features"
	"github.com/ironsheep/geo-features-mcp/internal/imaging"
	"github.com/ironsheep/geo-features-mcp/internal/pipeline"
	"github.com/ironsheep/geo-features-mcp/internal/vectorize"
)

// AllowedExtensions lists the upload formats process_image accepts.
var AllowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
}

// defaultPreviewDim bounds mask previews when the caller gives no limit.
const defaultPreviewDim = 1024

// previewAlpha is the tint opacity of mask previews.
const previewAlpha = 160

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "process_image", "load_geojson").
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
// Tool execution errors return a JSON-RPC error response with code -32000.
// Pipeline failures carry their kind in the error data.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.Warn("tool failed", zap.String("tool", params.Name), zap.Error(err))
		return s.errorResponse(req.ID, -32000, "Tool execution failed", errorData(err))
	}

	return s.toolResponse(req.ID, params.Name, result)
}

// toolResponse wraps a tool result in MCP's text content. A result that
// cannot be encoded becomes a -32603 error rather than an empty payload.
func (s *Server) toolResponse(id interface{}, tool string, result interface{}) *MCPResponse {
	text, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		s.log.Error("failed to encode tool result", zap.String("tool", tool), zap.Error(err))
		return s.errorResponse(id, -32603, "Internal error", fmt.Sprintf("failed to encode %s result: %v", tool, err))
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": string(text),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_info":
		return s.handleImageInfo(args)
	case "extract_features":
		return s.handleExtractFeatures(args)
	case "vectorize_mask":
		return s.handleVectorizeMask(args)
	case "process_image":
		return s.handleProcessImage(args)
	case "load_geojson":
		return s.handleLoadGeoJSON(args)
	case "mask_preview":
		return s.handleMaskPreview(args)
	case "feature_styles":
		return s.handleFeatureStyles(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
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

// errorData is the error string, or for pipeline failures an object with
// the string and the failure kind.
func errorData(err error) interface{} {
	var pe *pipeline.ProcessingError
	if errors.As(err, &pe) {
		return map[string]interface{}{
			"error": err.Error(),
			"kind":  string(pe.Kind),
		}
	}
	return err.Error()
}

// unmarshalArgs decodes tool arguments, treating missing arguments as {}.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// === Image Information ===

type pathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageInfo(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	return imaging.LoadImageInfo(a.Path)
}

// === Extraction ===

// ExtractResult describes a mask written by the pipeline.
type ExtractResult struct {
	MaskPath     string `json:"mask_path"`
	MaskFilename string `json:"mask_filename"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Backend      string `json:"backend"`
}

func (s *Server) handleExtractFeatures(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	return s.extract(a.Path)
}

func (s *Server) extract(path string) (*ExtractResult, error) {
	maskPath, err := s.pipe.Process(path)
	if err != nil {
		return nil, err
	}
	info, err := imaging.LoadImageInfo(maskPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read mask: %w", err)
	}
	return &ExtractResult{
		MaskPath:     maskPath,
		MaskFilename: filepath.Base(maskPath),
		Width:        info.Width,
		Height:       info.Height,
		Backend:      pipeline.Backend(),
	}, nil
}

// === Vectorization ===

type vectorizeArgs struct {
	MaskPath    string `json:"mask_path"`
	FeatureType string `json:"feature_type"`
}

// VectorizeResult describes a feature collection saved to the output
// directory.
type VectorizeResult struct {
	GeoJSONFilename string                     `json:"geojson_filename"`
	FeatureType     features.FeatureType       `json:"feature_type"`
	FeatureCount    int                        `json:"feature_count"`
	GeoJSON         *geojson.FeatureCollection `json:"geojson"`
}

func (s *Server) handleVectorizeMask(args json.RawMessage) (interface{}, error) {
	var a vectorizeArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.MaskPath == "" {
		return nil, errors.New("mask_path is required")
	}
	return s.vectorize(a.MaskPath, features.ParseFeatureType(a.FeatureType))
}

func (s *Server) vectorize(maskPath string, ft features.FeatureType) (*VectorizeResult, error) {
	fc, err := s.vec.FromFile(maskPath, ft)
	if err != nil {
		return nil, err
	}
	name, err := vectorize.Save(fc, s.cfg.Paths.OutputDir)
	if err != nil {
		return nil, err
	}
	s.log.Info("features vectorized",
		zap.String("mask", maskPath),
		zap.String("geojson", name),
		zap.String("feature_type", string(ft)),
		zap.Int("features", len(fc.Features)))
	return &VectorizeResult{
		GeoJSONFilename: name,
		FeatureType:     ft,
		FeatureCount:    len(fc.Features),
		GeoJSON:         fc,
	}, nil
}

// === Full Processing ===

type processArgs struct {
	Path        string `json:"path"`
	FeatureType string `json:"feature_type"`
}

// ProcessResult mirrors the response of an upload: the stored upload name,
// the mask and GeoJSON filenames in the output directory, and the features.
type ProcessResult struct {
	Success         bool                       `json:"success"`
	Filename        string                     `json:"filename"`
	MaskFilename    string                     `json:"mask_filename"`
	GeoJSONFilename string                     `json:"geojson_filename"`
	FeatureType     features.FeatureType       `json:"feature_type"`
	FeatureCount    int                        `json:"feature_count"`
	GeoJSON         *geojson.FeatureCollection `json:"geojson"`
}

func (s *Server) handleProcessImage(args json.RawMessage) (interface{}, error) {
	var a processArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	return s.Process(a.Path, features.ParseFeatureType(a.FeatureType))
}

// Process stores a copy of the image in the upload directory, extracts its
// feature mask and vectorizes the mask.
func (s *Server) Process(path string, ft features.FeatureType) (*ProcessResult, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !AllowedExtensions[ext] {
		return nil, fmt.Errorf("unsupported file type %q: expected png, jpg, jpeg, tif or tiff", ext)
	}

	stored, err := s.storeUpload(path)
	if err != nil {
		return nil, err
	}

	extracted, err := s.extract(stored)
	if err != nil {
		return nil, err
	}
	vec, err := s.vectorize(extracted.MaskPath, ft)
	if err != nil {
		return nil, err
	}

	return &ProcessResult{
		Success:         true,
		Filename:        filepath.Base(stored),
		MaskFilename:    extracted.MaskFilename,
		GeoJSONFilename: vec.GeoJSONFilename,
		FeatureType:     ft,
		FeatureCount:    vec.FeatureCount,
		GeoJSON:         vec.GeoJSON,
	}, nil
}

// storeUpload copies path into the upload directory as <hex>_<basename>.
func (s *Server) storeUpload(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	u := uuid.New()
	dst := filepath.Join(s.cfg.Paths.UploadDir, hex.EncodeToString(u[:])+"_"+filepath.Base(path))
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	return dst, nil
}

// === Stored Results ===

type loadArgs struct {
	Filename string `json:"filename"`
}

func (s *Server) handleLoadGeoJSON(args json.RawMessage) (interface{}, error) {
	var a loadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if err := checkFilename(a.Filename); err != nil {
		return nil, err
	}
	return vectorize.Load(filepath.Join(s.cfg.Paths.OutputDir, a.Filename))
}

// checkFilename accepts only plain .geojson names inside the output
// directory.
func checkFilename(name string) error {
	switch {
	case name == "":
		return errors.New("filename is required")
	case name != filepath.Base(name), strings.ContainsAny(name, `/\`), strings.Contains(name, ".."):
		return fmt.Errorf("invalid filename %q", name)
	case !strings.EqualFold(filepath.Ext(name), vectorize.GeoJSONExt):
		return fmt.Errorf("not a %s file: %q", vectorize.GeoJSONExt, name)
	}
	return nil
}

// === Preview ===

type previewArgs struct {
	Path         string `json:"path"`
	MaskPath     string `json:"mask_path"`
	FeatureType  string `json:"feature_type"`
	MaxDimension int    `json:"max_dimension"`

	// Optional zoom: a named region, or an explicit rectangle.
	Region string `json:"region"`
	X1     *int   `json:"x1"`
	Y1     *int   `json:"y1"`
	X2     *int   `json:"x2"`
	Y2     *int   `json:"y2"`
}

// zoom returns the requested preview region within b, or b itself.
func (a previewArgs) zoom(b image.Rectangle) (image.Rectangle, error) {
	if a.Region != "" {
		return imaging.NamedRegion(b, a.Region)
	}
	if a.X1 == nil && a.Y1 == nil && a.X2 == nil && a.Y2 == nil {
		return b, nil
	}
	if a.X1 == nil || a.Y1 == nil || a.X2 == nil || a.Y2 == nil {
		return image.Rectangle{}, errors.New("x1, y1, x2 and y2 must be given together")
	}
	return image.Rectangle{Min: image.Pt(*a.X1, *a.Y1), Max: image.Pt(*a.X2, *a.Y2)}, nil
}

func (s *Server) handleMaskPreview(args json.RawMessage) (interface{}, error) {
	var a previewArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" || a.MaskPath == "" {
		return nil, errors.New("path and mask_path are required")
	}
	if a.MaxDimension == 0 {
		a.MaxDimension = defaultPreviewDim
	}

	src, err := imaging.Open(a.Path)
	if err != nil {
		return nil, err
	}
	mask, err := imaging.LoadMask(a.MaskPath)
	if err != nil {
		return nil, err
	}
	r, err := a.zoom(src.Bounds())
	if err != nil {
		return nil, err
	}
	if r != src.Bounds() {
		if src, mask, err = imaging.CropPair(src, mask, r); err != nil {
			return nil, err
		}
	}

	tint := features.StyleFor(features.ParseFeatureType(a.FeatureType)).RGBA(previewAlpha)
	return imaging.MaskOverlay(src, mask, tint, a.MaxDimension)
}

// === Styles ===

// StylesResult lists the feature types and how each is drawn.
type StylesResult struct {
	FeatureTypes []string                  `json:"feature_types"`
	Default      features.FeatureType      `json:"default"`
	Styles       map[string]features.Style `json:"styles"`
}

func (s *Server) handleFeatureStyles(args json.RawMessage) (interface{}, error) {
	return &StylesResult{
		FeatureTypes: features.Names(),
		Default:      features.Default,
		Styles:       features.Styles(),
	}, nil
}
