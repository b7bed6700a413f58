// Package projection implements the normalized spherical Web Mercator
// mapping used by the clustering engine.
//
// Longitudes map linearly onto [0, 1] and latitudes map through the
// Mercator formula onto [0, 1], with 0 at the northern edge and 1 at the
// southern edge. Latitudes outside the projection's domain clamp to the
// nearest edge, so the poles stay representable.
package projection

import "math"

// LngX maps a longitude in degrees onto the [0, 1] axis.
// The input is not wrapped; longitudes outside [-180, 180] map outside [0, 1].
func LngX(lng float64) float64 {
	return lng/360 + 0.5
}

// LatY maps a latitude in degrees onto the [0, 1] axis, clamped at the edges.
func LatY(lat float64) float64 {
	sin := math.Sin(lat * math.Pi / 180)
	y := 0.5 - 0.25*math.Log((1+sin)/(1-sin))/math.Pi
	if y < 0 {
		return 0
	}
	if y > 1 {
		return 1
	}
	return y
}

// XLng is the inverse of LngX.
func XLng(x float64) float64 {
	return (x - 0.5) * 360
}

// YLat is the inverse of LatY away from the clamped edges.
func YLat(y float64) float64 {
	y2 := (180 - y*360) * math.Pi / 180
	return 360*math.Atan(math.Exp(y2))/math.Pi - 90
}

// Radius converts a pixel radius at the given tile extent and zoom level
// into normalized projection units.
func Radius(radius float64, extent int, zoom int) float64 {
	return radius / (float64(extent) * math.Pow(2, float64(zoom)))
}
