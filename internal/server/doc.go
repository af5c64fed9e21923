// Package server implements the MCP (Model Context Protocol) server for
// geographic feature extraction.
//
// This package provides a JSON-RPC 2.0 server that exposes the extraction
// pipeline and the vectorizer through the MCP protocol, so an assistant can
// turn an aerial image into a binary feature mask and then into GeoJSON
// polygons.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image Information:
//   - image_info: Dimensions, format, channels and bit depth
//
// Extraction:
//   - extract_features: Write the binary edge mask for an image
//   - vectorize_mask: Turn a mask into a saved GeoJSON collection
//   - process_image: Store an upload, extract and vectorize in one call
//
// Stored Results:
//   - load_geojson: Read a saved collection back by filename
//
// Visualization:
//   - mask_preview: Mask tinted over its source image
//   - feature_styles: Feature types and their map styles
//
// # Files
//
// process_image copies its input into the upload directory as
// <hex>_<name>. Masks (<hex>_processed.png) and collections (<hex>.geojson)
// are written to the output directory. load_geojson only reads plain
// filenames from that directory.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string, or for pipeline failures an object with
//     "error" and "kind" (decode, io or processing)
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv, err := server.New(cfg, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
