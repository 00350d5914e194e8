// Package led drives a board LED as a camera activity indicator: blinking
// while a negotiation runs, solid while a verified stream is held.
package led

// Patterns understood by every Controller.
const (
	PatternSolid = "solid"
	PatternBlink = "blink"
)

// Controller sets board LEDs.
type Controller interface {
	// Set switches the named LED on or off. pattern is PatternSolid,
	// PatternBlink or a raw kernel trigger name; empty leaves the trigger.
	Set(name string, on bool, pattern string) error

	// Available returns the LED names this board exposes.
	Available() []string
}
