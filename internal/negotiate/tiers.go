package negotiate

import "github.com/smazurov/camtune/internal/media"

// canonicalTiers is ordered by preference: very high ideal widths, then a band
// of guaranteed minimum widths, then mid-range ideal fallbacks.
var canonicalTiers = []media.Range{
	{Ideal: 3840}, // 4K UHD
	{Ideal: 2560}, // QHD
	{Ideal: 2340}, // FHD+
	{Ideal: 2220},
	{Ideal: 2160},

	{Min: 1920},
	{Min: 1600},
	{Min: 1280},
	{Min: 1024},
	{Min: 960},
	{Min: 854},
	{Min: 800},

	{Ideal: 1280},
	{Ideal: 1024},
}

// iosPreferred tiers are tried first on iOS, which is unreliable above them.
var iosPreferred = map[media.Range]bool{
	{Ideal: 1280}: true,
	{Ideal: 1024}: true,
}

// TiersFor returns the ordered tier table for a platform. The result is a
// fresh slice the caller may modify.
func TiersFor(platform media.PlatformClass) []media.Range {
	if platform != media.PlatformIOS {
		return append([]media.Range(nil), canonicalTiers...)
	}

	tiers := make([]media.Range, 0, len(canonicalTiers))
	for _, t := range canonicalTiers {
		if iosPreferred[t] {
			tiers = append(tiers, t)
		}
	}
	for _, t := range canonicalTiers {
		if !iosPreferred[t] {
			tiers = append(tiers, t)
		}
	}
	return tiers
}

// CandidateKey identifies a candidate constraint set. Two candidates with the
// same tier and resolved facing are the same key.
type CandidateKey struct {
	Width  media.Range
	Facing media.ResolvedFacing
}

// KeyOf returns the key of a candidate.
func KeyOf(c media.VideoConstraints) CandidateKey {
	return CandidateKey{Width: c.Width, Facing: c.Facing}
}
