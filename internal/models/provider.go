package models

// Provider identifies the tracking source an element set came from.
type Provider string

const (
	// ProviderCelestrak is provider A: third-party fitted, highest positional fidelity.
	ProviderCelestrak Provider = "celestrak"
	// ProviderSpaceTrack is provider B: independent radar tracking, smoother drag.
	ProviderSpaceTrack Provider = "spacetrack"
)

func (p Provider) Valid() bool {
	switch p {
	case ProviderCelestrak, ProviderSpaceTrack:
		return true
	default:
		return false
	}
}

func (p Provider) String() string { return string(p) }
