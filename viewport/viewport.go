// Package viewport holds the transient zoom and pan state a client uses to
// place a document on screen. It is never persisted with the document.
package viewport

import "math"

type Viewport struct {
	Zoom float64 `json:"zoom"`
	PanX float64 `json:"panX"`
	PanY float64 `json:"panY"`
}

// Default is zoom 1 with no pan.
func Default() Viewport {
	return Viewport{Zoom: 1}
}

func (v Viewport) zoom() float64 {
	if v.Zoom <= 0 {
		return 1
	}
	return v.Zoom
}

// ToDocument converts a point in a view of the given size to document
// offsets from the logical center. Fractions are truncated toward zero.
func (v Viewport) ToDocument(px, py, width, height float64) (x, y int) {
	z := v.zoom()
	dx := (px - width/2 - v.PanX) / z
	dy := (py - height/2 - v.PanY) / z
	return int(dx), int(dy)
}

// ToDocumentSize converts an on-screen emoji size to its logical size,
// never less than 1.
func (v Viewport) ToDocumentSize(size float64) int {
	logical := int(math.Round(size / v.zoom()))
	if logical < 1 {
		return 1
	}
	return logical
}

// FromDocument converts document offsets to a point in a view of the given
// size.
func (v Viewport) FromDocument(x, y int, width, height float64) (px, py float64) {
	z := v.zoom()
	return width/2 + float64(x)*z + v.PanX, height/2 + float64(y)*z + v.PanY
}

// ScaledSize is the on-screen size of an emoji of the given logical size.
func (v Viewport) ScaledSize(size int) float64 {
	return float64(size) * v.zoom()
}

// ZoomToFit returns a viewport that fits an image of imgW x imgH into a view
// of width x height, with the pan reset. The receiver is returned unchanged
// when any dimension is not positive.
func (v Viewport) ZoomToFit(imgW, imgH, width, height float64) Viewport {
	if imgW <= 0 || imgH <= 0 || width <= 0 || height <= 0 {
		return v
	}
	return Viewport{Zoom: math.Min(width/imgW, height/imgH)}
}
