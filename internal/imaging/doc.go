// Package imaging provides the file and pixel plumbing around the chroma-key
// core: decoding and caching source images, sampling colors, and encoding
// results for MCP clients or disk.
//
// # Coordinate System
//
// All pixel coordinates are 0-based and relative to the image origin, with
// (0,0) at the top-left. For regions, (x1,y1) is inclusive and (x2,y2) is
// exclusive.
//
// # Supported Formats
//
// PNG, JPEG and GIF decode through the standard library; BMP, TIFF and WebP
// through golang.org/x/image. Output is always PNG, the only supported format
// that carries the alpha channel produced by keying.
//
// # Color Representation
//
// Sampled colors are reported non-premultiplied, in hex, RGB, RGBA, HSV and
// HSL. HSV is the space keying distances are measured in.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Cached images are shared
// between callers and must not be modified.
package imaging
