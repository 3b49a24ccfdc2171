package cook

import (
	"strconv"
	"strings"
)

// ReverseWinding reverses the vertex order of every face. The cook engine
// winds faces opposite to the host's front-face convention, so every mesh
// goes through this exactly once. Applying it twice restores the input.
func ReverseWinding(faceCounts, vertices []int) []int {
	out := make([]int, len(vertices))
	offset := 0
	for _, n := range faceCounts {
		for i := 0; i < n && offset+i < len(vertices); i++ {
			out[offset+i] = vertices[offset+n-1-i]
		}
		offset += n
	}
	return out
}

// CVString formats the control points as a flat whitespace-separated
// coordinate string, the format the host curve node parameter expects.
func (c *Curve) CVString() string {
	parts := make([]string, len(c.Points))
	for i, v := range c.Points {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}
