package model

// Alert types understood by the UI shell.
const (
	AlertSuccess = "success"
	AlertFailure = "failure"
)

// Alert is the payload of a user-visible notification.
type Alert struct {
	Status  bool   `json:"status"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Rect is a screen-anchored bounding box of a visual element.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point is a page coordinate used to anchor a visual effect.
type Point struct {
	PageX float64 `json:"page_x"`
	PageY float64 `json:"page_y"`
}

// SignalKind tags a Signal.
type SignalKind string

const (
	SignalAlert    SignalKind = "alert"
	SignalNavigate SignalKind = "navigate"
	SignalRefresh  SignalKind = "refresh"
	SignalSparkle  SignalKind = "sparkle"
	SignalSound    SignalKind = "sound"
)

// Signal is one UI side effect produced by an event handler.
type Signal struct {
	Kind    SignalKind `json:"kind"`
	Alert   *Alert     `json:"alert,omitempty"`
	Route   string     `json:"route,omitempty"`
	Counter int        `json:"counter,omitempty"`
	Point   *Point     `json:"point,omitempty"`
	Sound   string     `json:"sound,omitempty"`
	At      string     `json:"at"`
}
