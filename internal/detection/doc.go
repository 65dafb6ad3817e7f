// Package detection finds the isometric projection angles of a sprite from
// its edge map.
//
// # Algorithm Overview
//
//  1. Line detection: a Hough transform over 1° bins proposes candidate
//     lines, and each is refined by a total least squares fit of its
//     supporting edge pixels (DetectLines).
//  2. Classification: segments between -60° and -15° belong to the left
//     axis, those between 15° and 60° to the right axis. Near-horizontal
//     and near-vertical segments (tile tops, walls) are ignored (Classify).
//  3. Estimation: each axis takes the length-weighted median of its
//     segments, so a few long silhouette edges outvote many short texture
//     edges (EstimateAngles).
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Angles are in degrees from the +X axis, normalised to (-90, 90]. Because
// Y points down, a 2:1 tile's left edge reads -26.565° and its right edge
// +26.565°.
package detection
