package handler

import "battlefeed/internal/model"

// Coords returns the effect anchor point of an element: horizontally centered
// and biased toward the top half.
func Coords(rect model.Rect) model.Point {
	return model.Point{
		PageX: rect.Left + rect.Width/2,
		PageY: rect.Top + rect.Height/2.25,
	}
}
