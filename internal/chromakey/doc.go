// Package chromakey turns an image shot against a uniform green or blue
// backdrop into a transparent-background image.
//
// # Pipeline
//
// Remove runs five stages in a fixed order, each producing new buffers:
//
//  1. Classify: per-pixel distance to the key color mapped through a soft
//     threshold band into a mask (0 = background, 1 = subject)
//  2. Refine: erosion and dilation with square neighborhoods to drop specks
//     and close pinholes
//  3. Feather: separable Gaussian or box blur of the mask boundary
//  4. Despill: neutralize key-colored tint on partially transparent pixels,
//     weighted by 1 - mask
//  5. Composite: despilled color plus feathered mask as alpha
//
// Every stage is also exported on its own and can be composed by hand.
//
// # Key Color
//
// The key is either fixed (Fixed(Green), Fixed(Blue), ParseKeyColor) or
// sampled from corners, a border frame or a rectangle of the input
// (SampledFromRegion). The source is resolved once, before classification.
//
// # Color Distance
//
// Colors are compared on the hue/saturation plane (saturation times the unit
// hue vector) with a down-weighted brightness term, see Distance. Shadows and
// hot spots on the backdrop change brightness far more than hue, so they stay
// close to the key.
//
// # Value Ranges
//
// Buffers hold float64 values in [0,1]; every stage clamps its output. Output
// images are 8-bit non-premultiplied NRGBA with the same size as the input.
//
// # Errors
//
// Malformed buffers fail with *InvalidInputError (errors.Is ErrInvalidInput)
// and out-of-range parameters with *InvalidParameterError (errors.Is
// ErrInvalidParameter). No stage returns partial output.
//
// # Thread Safety
//
// All functions are pure: they read their inputs and allocate their outputs.
// Concurrent runs share no state. Rows inside a stage are processed in
// parallel.
package chromakey
