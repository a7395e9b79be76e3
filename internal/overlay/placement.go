package overlay

import "voxtype/internal/domain"

// Window geometry in logical pixels.
const (
	Width  = 280
	Height = 70

	edgePadding    = 20
	taskbarPadding = 60
)

// Size is a logical screen size.
type Size struct {
	Width  int
	Height int
}

// Point is a logical window origin relative to the screen.
type Point struct {
	X int
	Y int
}

// Place returns the window origin for pos on a screen of the given size.
// Unknown positions are placed at bottom center.
func Place(pos domain.OverlayPosition, screen Size) Point {
	left := edgePadding
	center := (screen.Width - Width) / 2
	right := screen.Width - Width - edgePadding
	top := edgePadding
	bottom := screen.Height - Height - taskbarPadding

	switch domain.ParseOverlayPosition(string(pos)) {
	case domain.OverlayTopLeft:
		return Point{X: left, Y: top}
	case domain.OverlayTopCenter:
		return Point{X: center, Y: top}
	case domain.OverlayTopRight:
		return Point{X: right, Y: top}
	case domain.OverlayBottomLeft:
		return Point{X: left, Y: bottom}
	case domain.OverlayBottomRight:
		return Point{X: right, Y: bottom}
	default:
		return Point{X: center, Y: bottom}
	}
}
