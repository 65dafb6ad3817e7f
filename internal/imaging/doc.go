// Package imaging provides the pixel-level stages of sprite correction:
// content bounds, edge maps, affine resampling, resizing and PNG I/O.
//
// All functions operate on *image.NRGBA with its origin at (0,0). Use
// ToNRGBA to normalise any decoded image first.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - BoundingBox corners are inclusive on both ends
//
// Pixel (x, y) covers the square [x, x+1) × [y, y+1); resampling places
// samples at pixel centres (x+0.5, y+0.5).
//
// # Transparency
//
// A pixel counts as content when its alpha is at or above the caller's
// threshold (DefaultAlphaThreshold is 10). Edge detection blends colour
// toward a background intensity by alpha so the silhouette itself produces
// edges, and resampling interpolates premultiplied values so fully
// transparent pixels never bleed their colour into the result.
//
// # Thread Safety
//
// Functions are stateless and never modify their inputs. Warp spreads rows
// across goroutines internally.
package imaging
