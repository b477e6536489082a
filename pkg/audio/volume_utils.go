package audio

import "math"

// volumeToPower maps a 0..1 linear volume to beep's base-2 volume exponent.
func volumeToPower(vol float64) float64 {
	if vol <= 0.01 {
		return -10 // Silent
	}
	return math.Log2(vol)
}
