// Package negotiate finds the highest capture resolution a camera will
// actually deliver.
//
// Many devices accept a constraint and keep returning zero-sized, frozen or
// black frames, so acceptance alone proves nothing. A Session walks an ordered
// tier table from the largest width down, applies each tier to the live track
// and only accepts a tier once a LivenessProbe has decoded a real frame of
// the reported size:
//
//	acquirer := negotiate.NewRetryingAcquirer(device)
//	session := negotiate.NewSession(&negotiate.SessionOptions{
//	    Platform: media.PlatformDesktop,
//	    Acquirer: acquirer,
//	    Prober:   negotiate.NewLivenessProbe(player),
//	    Hints:    hintStore,
//	    Status:   negotiate.NewStatus(bus),
//	})
//	res, err := session.Negotiate(ctx, media.FacingBack)
//	if err != nil {
//	    // negotiate.ReasonOf(err) tells why; Status carries the weak flag
//	}
//	defer res.Stream.Stop()
//
// States:
//
//	init -> acquiring-base -> probing <-> verifying -> succeeded
//	                             |
//	                             v
//	                  fallback-acquiring -> fallback-verifying -> succeeded
//
// Any state may end in failed. A session holds at most one open stream and
// stops it before acquiring another. A returned stream belongs to the caller.
package negotiate
