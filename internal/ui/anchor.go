package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"battlefeed/internal/model"
)

// ErrNotMounted is returned by anchors whose visual element is not on screen.
var ErrNotMounted = errors.New("anchor not mounted")

// Anchor is a screen-anchored reference to a player's visual element.
type Anchor interface {
	BoundingRect() (model.Rect, error)
}

// StaticAnchor is an anchor with a fixed bounding box.
type StaticAnchor model.Rect

func (a StaticAnchor) BoundingRect() (model.Rect, error) {
	return model.Rect(a), nil
}

// UnmountedAnchor is an anchor with no element behind it.
type UnmountedAnchor struct{}

func (UnmountedAnchor) BoundingRect() (model.Rect, error) {
	return model.Rect{}, ErrNotMounted
}

// ParseAnchor parses "left,top,width,height". An empty input yields an unmounted anchor.
func ParseAnchor(input string) (Anchor, error) {
	if strings.TrimSpace(input) == "" {
		return UnmountedAnchor{}, nil
	}
	rect, err := ParseRect(input)
	if err != nil {
		return nil, err
	}
	return StaticAnchor(rect), nil
}

// ParseRect parses "left,top,width,height".
func ParseRect(input string) (model.Rect, error) {
	parts := strings.Split(input, ",")
	if len(parts) != 4 {
		return model.Rect{}, fmt.Errorf("invalid rect %q: want left,top,width,height", input)
	}
	values := make([]float64, 0, 4)
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return model.Rect{}, fmt.Errorf("invalid rect %q: %w", input, err)
		}
		values = append(values, v)
	}
	if values[2] < 0 || values[3] < 0 {
		return model.Rect{}, fmt.Errorf("invalid rect %q: negative size", input)
	}
	return model.Rect{Left: values[0], Top: values[1], Width: values[2], Height: values[3]}, nil
}
