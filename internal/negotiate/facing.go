package negotiate

import "github.com/smazurov/camtune/internal/media"

// NormalizeFacing encodes a facing request for a platform.
// iOS negotiates worse when the value is wrapped, other mobiles need the
// ideal wrapper to fall back to any camera, desktops take the bare value.
func NormalizeFacing(facing media.FacingRequest, platform media.PlatformClass) media.ResolvedFacing {
	switch platform {
	case media.PlatformMobile:
		return media.ResolvedFacing{Value: facing, Ideal: true}
	default:
		return media.ResolvedFacing{Value: facing}
	}
}
