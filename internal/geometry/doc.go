// Package geometry holds the projection math for isometric correction.
//
// Angles are measured in image coordinates: X grows rightward and Y grows
// downward, so an edge that rises to the right has a negative angle. For a
// 2:1 isometric tile the two projection axes sit at -26.565° (left) and
// +26.565° (right).
//
// A correction is a linear map M that sends the detected axis directions onto
// the target axis directions:
//
//	M = B_target · B_current⁻¹
//
// where each B is a 2×2 basis matrix whose columns are unit vectors along the
// left and right axes. Translation is chosen later, at resampling time, and
// lives in Affine.
package geometry
