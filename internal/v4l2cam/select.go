package v4l2cam

import "github.com/smazurov/camtune/internal/media"

// Size is a frame size offered by a device.
type Size struct {
	Width  int
	Height int
}

// SelectSize picks the frame size that best satisfies a width constraint.
//
// A Min constraint takes the narrowest size at least Min wide. An Ideal
// constraint takes the size whose width is closest to Ideal, preferring the
// wider one on a tie. With no constraint the largest size wins. Equal widths
// resolve to the taller size. ok is false when nothing qualifies.
func SelectSize(sizes []Size, r media.Range) (best Size, ok bool) {
	for _, s := range sizes {
		if s.Width <= 0 || s.Height <= 0 {
			continue
		}
		if r.Min > 0 && s.Width < r.Min {
			continue
		}
		if !ok || better(s, best, r) {
			best, ok = s, true
		}
	}
	return best, ok
}

// better reports whether a beats b for r. Both already satisfy r.Min.
func better(a, b Size, r media.Range) bool {
	switch {
	case r.Min > 0:
		if a.Width != b.Width {
			return a.Width < b.Width
		}
	case r.Ideal > 0:
		da, db := abs(a.Width-r.Ideal), abs(b.Width-r.Ideal)
		if da != db {
			return da < db
		}
		if a.Width != b.Width {
			return a.Width > b.Width
		}
	default:
		if a.Width*a.Height != b.Width*b.Height {
			return a.Width*a.Height > b.Width*b.Height
		}
	}
	return a.Height > b.Height
}

// satisfies reports whether a delivered width honors r.
func satisfies(width int, r media.Range) bool {
	return r.Min <= 0 || width >= r.Min
}

// guessSize turns a bare width constraint into a 16:9 request for drivers
// that do not enumerate frame sizes.
func guessSize(r media.Range) Size {
	w := r.Ideal
	if r.Min > w {
		w = r.Min
	}
	return Size{Width: w, Height: w * 9 / 16}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
