package negotiate

import (
	"testing"

	"github.com/smazurov/camtune/internal/media"
)

func TestTiersForDesktopMatchesCanonicalOrder(t *testing.T) {
	for _, p := range []media.PlatformClass{media.PlatformDesktop, media.PlatformMobile} {
		tiers := TiersFor(p)
		if len(tiers) != 14 {
			t.Fatalf("%s: expected 14 tiers, got %d", p, len(tiers))
		}
		if tiers[0] != (media.Range{Ideal: 3840}) {
			t.Errorf("%s: first tier = %v, want ideal:3840", p, tiers[0])
		}
		if tiers[5] != (media.Range{Min: 1920}) {
			t.Errorf("%s: tier 5 = %v, want min:1920", p, tiers[5])
		}
		if tiers[13] != (media.Range{Ideal: 1024}) {
			t.Errorf("%s: last tier = %v, want ideal:1024", p, tiers[13])
		}
	}
}

func TestTiersForIOSIsStablePartition(t *testing.T) {
	tiers := TiersFor(media.PlatformIOS)
	canonical := TiersFor(media.PlatformDesktop)

	if len(tiers) != len(canonical) {
		t.Fatalf("expected %d tiers, got %d", len(canonical), len(tiers))
	}
	if tiers[0] != (media.Range{Ideal: 1280}) || tiers[1] != (media.Range{Ideal: 1024}) {
		t.Fatalf("preferred tiers not first: %v, %v", tiers[0], tiers[1])
	}

	// The remainder keeps canonical relative order.
	var rest []media.Range
	for _, r := range canonical {
		if !iosPreferred[r] {
			rest = append(rest, r)
		}
	}
	for i, r := range rest {
		if tiers[i+2] != r {
			t.Errorf("tier %d = %v, want %v", i+2, tiers[i+2], r)
		}
	}
}

func TestTiersForReturnsFreshSlice(t *testing.T) {
	a := TiersFor(media.PlatformDesktop)
	a[0] = media.Range{Ideal: 1}

	b := TiersFor(media.PlatformDesktop)
	if b[0] != (media.Range{Ideal: 3840}) {
		t.Errorf("modifying a returned table changed the canonical table: %v", b[0])
	}
}

func TestCandidateKeyEquality(t *testing.T) {
	a := KeyOf(media.VideoConstraints{Width: media.Range{Min: 1920}, Facing: media.ResolvedFacing{Value: media.FacingBack}})
	b := KeyOf(media.VideoConstraints{Width: media.Range{Min: 1920}, Facing: media.ResolvedFacing{Value: media.FacingBack}})
	c := KeyOf(media.VideoConstraints{Width: media.Range{Min: 1920}, Facing: media.ResolvedFacing{Value: media.FacingBack, Ideal: true}})
	d := KeyOf(media.VideoConstraints{Width: media.Range{Ideal: 1920}, Facing: media.ResolvedFacing{Value: media.FacingBack}})

	if a != b {
		t.Error("identical candidates should have equal keys")
	}
	if a == c {
		t.Error("bare and ideal facing should have different keys")
	}
	if a == d {
		t.Error("min and ideal widths should have different keys")
	}
}
