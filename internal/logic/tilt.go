package logic

import "math"

// CountsPerG is the accelerometer full-scale divisor (±2g range, 16384 LSB/g).
const CountsPerG = 16384.0

// Tilt converts a raw 3-axis reading into pitch-like angles in degrees.
func Tilt(rawX, rawY, rawZ int16) (angleX, angleY float64) {
	ax := float64(rawX) / CountsPerG
	ay := float64(rawY) / CountsPerG
	az := float64(rawZ) / CountsPerG

	angleX = math.Atan2(ax, math.Sqrt(ay*ay+az*az)) * 180 / math.Pi
	angleY = math.Atan2(ay, math.Sqrt(ax*ax+az*az)) * 180 / math.Pi
	return angleX, angleY
}
