package geo

import "math"

// Mean Earth radius in meters.
const earthRadiusM = 6371000

// DistanceM returns the haversine great-circle distance in meters between two
// lat/lng points in degrees.
func DistanceM(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := Radians(lat2 - lat1)
	dLng := Radians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(Radians(lat1))*math.Cos(Radians(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusM * c
}

// BearingDeg returns the initial great-circle bearing from point 1 to point 2,
// normalized into [0,360) with 0 = north. Identical points yield NaN; callers
// treat a NaN bearing as "no movement".
func BearingDeg(lat1, lng1, lat2, lng2 float64) float64 {
	if lat1 == lat2 && lng1 == lng2 {
		return math.NaN()
	}
	φ1 := Radians(lat1)
	φ2 := Radians(lat2)
	dλ := Radians(lng2 - lng1)

	y := math.Sin(dλ) * math.Cos(φ2)
	x := math.Cos(φ1)*math.Sin(φ2) - math.Sin(φ1)*math.Cos(φ2)*math.Cos(dλ)
	return NormalizeDeg(Degrees(math.Atan2(y, x)))
}

// NormalizeDeg wraps an angle in degrees into [0,360).
func NormalizeDeg(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// AngleDiffDeg returns the smallest absolute difference between two bearings,
// in [0,180].
func AngleDiffDeg(a, b float64) float64 {
	d := math.Abs(NormalizeDeg(a) - NormalizeDeg(b))
	if d > 180 {
		d = 360 - d
	}
	return d
}

func Radians(deg float64) float64 { return deg * math.Pi / 180 }

func Degrees(rad float64) float64 { return rad * 180 / math.Pi }
