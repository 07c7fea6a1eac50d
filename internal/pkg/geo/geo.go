// Package geo ranks stations and service centers by great-circle distance.
// Everything here is stateless math over coordinates loaded by the caller.
package geo

import (
	"math"
	"sort"

	"github.com/batterysmart/swapledger/app/models"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// DefaultMaxDistanceKm bounds nearest-station searches unless the caller
// asks for a different radius.
const DefaultMaxDistanceKm = 10.0

// Haversine returns the great-circle distance in kilometers between two
// coordinates.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// RankedStation is a station with its distance from the query origin.
type RankedStation struct {
	Station    models.Station `json:"station"`
	DistanceKm float64        `json:"distance_km"`
}

// NearestStations ranks stations by distance from the origin, closest first,
// dropping anything beyond maxKm (non-positive means DefaultMaxDistanceKm)
// and cutting the list at limit. Equal distances order by station code so
// results are deterministic.
func NearestStations(lat, lon float64, stations []models.Station, maxKm float64, limit int) []RankedStation {
	if maxKm <= 0 {
		maxKm = DefaultMaxDistanceKm
	}
	if limit <= 0 {
		limit = 5
	}

	ranked := make([]RankedStation, 0, len(stations))
	for _, st := range stations {
		d := Haversine(lat, lon, st.Latitude, st.Longitude)
		if d > maxKm {
			continue
		}
		ranked = append(ranked, RankedStation{Station: st, DistanceKm: roundKm(d)})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].DistanceKm != ranked[j].DistanceKm {
			return ranked[i].DistanceKm < ranked[j].DistanceKm
		}
		return ranked[i].Station.Code < ranked[j].Station.Code
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// RankedCenter is a DSK center with its distance from the query origin.
type RankedCenter struct {
	Center     models.DSKCenter `json:"center"`
	DistanceKm float64          `json:"distance_km"`
}

// NearestCenters ranks DSK centers by distance, closest first, ties by code.
func NearestCenters(lat, lon float64, centers []models.DSKCenter, limit int) []RankedCenter {
	if limit <= 0 {
		limit = 5
	}

	ranked := make([]RankedCenter, 0, len(centers))
	for _, c := range centers {
		d := Haversine(lat, lon, c.Latitude, c.Longitude)
		ranked = append(ranked, RankedCenter{Center: c, DistanceKm: roundKm(d)})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].DistanceKm != ranked[j].DistanceKm {
			return ranked[i].DistanceKm < ranked[j].DistanceKm
		}
		return ranked[i].Center.Code < ranked[j].Center.Code
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// roundKm keeps two decimals, enough for display and stable tie-breaks.
func roundKm(d float64) float64 {
	return math.Round(d*100) / 100
}
