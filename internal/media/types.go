// Package media defines the capture model shared by the negotiation engine
// and the device backends: facing requests, width constraints, live streams
// and the playback surface used to check decoded frames.
package media

import (
	"fmt"
	"strings"
)

// FacingRequest selects which side of the device the camera faces.
type FacingRequest string

// Facing requests. Values match the W3C facingMode strings.
const (
	FacingFront FacingRequest = "user"
	FacingBack  FacingRequest = "environment"
)

// ParseFacing converts a user supplied facing name to a FacingRequest.
func ParseFacing(s string) (FacingRequest, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "front", "user":
		return FacingFront, nil
	case "back", "rear", "environment":
		return FacingBack, nil
	default:
		return "", fmt.Errorf("unknown facing mode %q", s)
	}
}

// PlatformClass groups runtimes by how they treat capture constraints.
type PlatformClass string

// Platform classes.
const (
	PlatformIOS     PlatformClass = "ios"
	PlatformMobile  PlatformClass = "mobile"
	PlatformDesktop PlatformClass = "desktop"
)

// ParsePlatform converts a platform name to a PlatformClass.
func ParsePlatform(s string) (PlatformClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ios":
		return PlatformIOS, nil
	case "mobile", "android":
		return PlatformMobile, nil
	case "desktop", "", "linux":
		return PlatformDesktop, nil
	default:
		return "", fmt.Errorf("unknown platform %q", s)
	}
}

// ClassifyUserAgent derives the platform class from a User-Agent header.
func ClassifyUserAgent(ua string) PlatformClass {
	lower := strings.ToLower(ua)
	switch {
	case strings.Contains(lower, "iphone"), strings.Contains(lower, "ipad"), strings.Contains(lower, "ipod"):
		return PlatformIOS
	case strings.Contains(lower, "android"):
		return PlatformMobile
	default:
		return PlatformDesktop
	}
}

// ResolvedFacing is a facing request encoded for a platform: either the bare
// value or the value wrapped as an ideal preference.
type ResolvedFacing struct {
	Value FacingRequest `toml:"value" json:"value"`
	Ideal bool          `toml:"ideal,omitempty" json:"ideal,omitempty"`
}

func (f ResolvedFacing) String() string {
	if f.Ideal {
		return fmt.Sprintf("{ideal:%s}", f.Value)
	}
	return string(f.Value)
}

// Range is a width constraint. Ideal is a target the device should get close
// to, Min is a guarantee. Zero means unset.
type Range struct {
	Ideal int `toml:"ideal,omitempty" json:"ideal,omitempty"`
	Min   int `toml:"min,omitempty" json:"min,omitempty"`
}

// IsZero reports whether no bound is set.
func (r Range) IsZero() bool {
	return r.Ideal == 0 && r.Min == 0
}

func (r Range) String() string {
	switch {
	case r.Ideal > 0 && r.Min > 0:
		return fmt.Sprintf("ideal:%d,min:%d", r.Ideal, r.Min)
	case r.Ideal > 0:
		return fmt.Sprintf("ideal:%d", r.Ideal)
	case r.Min > 0:
		return fmt.Sprintf("min:%d", r.Min)
	default:
		return "any"
	}
}

// VideoConstraints is the video part of a capture request.
type VideoConstraints struct {
	Width  Range
	Facing ResolvedFacing
}

// Constraints is a full capture request.
type Constraints struct {
	Audio bool
	Video VideoConstraints
}

// Settings is what a track reports it is currently delivering.
// Zero dimensions mean unreported.
type Settings struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns Width*Height.
func (s Settings) Area() int {
	return s.Width * s.Height
}

func (s Settings) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}
