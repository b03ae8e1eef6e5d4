// Package server implements the MCP (Model Context Protocol) server for
// chroma-key background removal.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0, one request per
// line. Logs go to stderr so stdout carries only protocol traffic.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image information and inspection:
//   - image_load, image_dimensions
//   - image_crop: zoom into a region, e.g. a keyed edge
//   - image_sample_color, image_sample_colors_multi
//   - image_dominant_colors: find the backdrop color
//
// Keying:
//   - chromakey_sample_key: estimate the key color from the backdrop
//   - chromakey_mask: save the alpha mask as grayscale PNG
//   - chromakey_remove_background: save a transparent PNG
//   - chromakey_preview: return the result over a checkerboard
//
// Keying tools share one parameter set (key, thresholds, morphology,
// feathering, despill). Omitted parameters take the defaults from Config,
// which ConfigFromEnv reads from CHROMAKEY_MCP_* variables.
//
// # Image Caching
//
// Decoded source images are cached by path for the lifetime of the process.
// Keying results are always recomputed.
//
// # Error Handling
//
// Undecodable arguments and invalid keying parameters return JSON-RPC code
// -32602. Other tool failures, such as unreadable files, return -32000. The
// error data field carries the Go error string.
package server
