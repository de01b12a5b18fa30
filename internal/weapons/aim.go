package weapons

import "math"

// Pitch values inside [pitchBandMin, pitchBandMax] point too close to the
// vertical poles and are snapped out of the band. pitchSnapSplit decides
// which edge a clamped value lands on.
const (
	pitchBandMin   = 85.0
	pitchSnapSplit = 150.0
	pitchBandMax   = 280.0
)

// Orientation is a look direction expressed as yaw and pitch in degrees,
// both kept in [0, 360).
type Orientation struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

// NormalizeDegrees wraps an angle into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	m := math.Mod(deg, 360)
	if m < 0 {
		m += 360
	}
	return m
}

// ClampPitch keeps a pitch angle out of the dead band around the vertical
// poles: values in [85, 280] snap to 85 when at or below 150 degrees and to
// 280 otherwise. Both recoil application and direct look input go through
// this same function so the two paths can never disagree about the limits.
func ClampPitch(pitch float64) float64 {
	p := NormalizeDegrees(pitch)
	if p < pitchBandMin || p > pitchBandMax {
		return p
	}
	if p <= pitchSnapSplit {
		return pitchBandMin
	}
	return pitchBandMax
}

// Kick returns the orientation rotated by one recoil step: the horizontal
// offset turns yaw, the vertical kick raises pitch, and the result passes
// through the shared pitch clamp.
func (o Orientation) Kick(horizontal, vertical float64) Orientation {
	return Orientation{
		Yaw:   NormalizeDegrees(o.Yaw + horizontal),
		Pitch: ClampPitch(o.Pitch + vertical),
	}
}

// Normalized returns the orientation with both angles wrapped into [0, 360)
// and the pitch clamped. Look input from clients is sanitized through this
// before it reaches an actor.
func (o Orientation) Normalized() Orientation {
	return Orientation{
		Yaw:   NormalizeDegrees(o.Yaw),
		Pitch: ClampPitch(o.Pitch),
	}
}
