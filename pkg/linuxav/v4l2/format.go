//go:build linux

package v4l2

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"unsafe"

	"golang.org/x/sys/unix"
)

// enumFormats walks VIDIOC_ENUM_FMT until the driver reports EINVAL.
func enumFormats(fd int) ([]FormatInfo, error) {
	var formats []FormatInfo
	for i := uint32(0); ; i++ {
		desc := v4l2Fmtdesc{index: i, typ: bufTypeVideoCapture}
		err := ioctl(fd, vidiocEnumFmt, unsafe.Pointer(&desc))
		if errors.Is(err, unix.EINVAL) {
			return formats, nil
		}
		if err != nil {
			return nil, fmt.Errorf("enum format %d: %w", i, err)
		}
		formats = append(formats, FormatInfo{
			PixelFormat: desc.pixelformat,
			FormatName:  cstr(desc.description[:]),
			Emulated:    desc.flags&fmtFlagEmulated != 0,
		})
	}
}

// enumFrameSizes walks VIDIOC_ENUM_FRAMESIZES. Drivers without frame size
// enumeration (ENOTTY) yield an empty list.
func enumFrameSizes(fd int, pixelFormat uint32) ([]Resolution, error) {
	var sizes []Resolution
	for i := uint32(0); ; i++ {
		fs := v4l2Frmsizeenum{index: i, pixelFormat: pixelFormat}
		err := ioctl(fd, vidiocEnumFramesizes, unsafe.Pointer(&fs))
		switch {
		case errors.Is(err, unix.EINVAL):
			return sizes, nil
		case errors.Is(err, unix.ENOTTY):
			return []Resolution{}, nil
		case err != nil:
			return nil, fmt.Errorf("enum frame size %d: %w", i, err)
		}

		if fs.typ == frmsizeTypeDiscrete {
			sizes = append(sizes, Resolution{Width: fs.discrete.width, Height: fs.discrete.height})
			continue
		}
		// A continuous or stepwise range is the only entry the driver reports.
		return append(sizes, stepwiseResolutions(fs.stepwise())...), nil
	}
}

// rangeWidths are sampled from a continuous or stepwise size range. They
// cover the widths the negotiation tiers ask for.
var rangeWidths = []uint32{640, 800, 854, 960, 1024, 1280, 1600, 1920, 2160, 2220, 2340, 2560, 3840}

// stepwiseResolutions samples a size range at 16:9 and 4:3 for each of
// rangeWidths, snapped to the driver's step, plus the maximum size. The
// result is ordered by area.
func stepwiseResolutions(sw *v4l2FrmsizeStepwise) []Resolution {
	seen := make(map[Resolution]struct{})
	var out []Resolution
	add := func(r Resolution) {
		if r.Width < sw.minWidth || r.Width > sw.maxWidth || r.Height < sw.minHeight || r.Height > sw.maxHeight {
			return
		}
		if _, dup := seen[r]; dup {
			return
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}

	for _, w := range rangeWidths {
		w = snap(w, sw.minWidth, sw.stepWidth)
		add(Resolution{Width: w, Height: snap(w*9/16, sw.minHeight, sw.stepHeight)})
		add(Resolution{Width: w, Height: snap(w*3/4, sw.minHeight, sw.stepHeight)})
	}
	add(Resolution{Width: sw.maxWidth, Height: sw.maxHeight})

	slices.SortFunc(out, func(a, b Resolution) int {
		if c := cmp.Compare(a.Area(), b.Area()); c != 0 {
			return c
		}
		return cmp.Compare(a.Width, b.Width)
	})
	return out
}

// snap rounds v down onto the grid min + k*step.
func snap(v, lo, step uint32) uint32 {
	if step <= 1 || v < lo {
		return v
	}
	return lo + (v-lo)/step*step
}

// FormatFourCC renders a pixel format code as its four characters.
func FormatFourCC(format uint32) string {
	return string([]byte{byte(format), byte(format >> 8), byte(format >> 16), byte(format >> 24)})
}
