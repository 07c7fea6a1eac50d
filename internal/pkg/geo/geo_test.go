package geo

import (
	"math"
	"testing"

	"github.com/batterysmart/swapledger/app/models"
)

// Connaught Place, New Delhi.
const originLat, originLon = 28.6315, 77.2167

func TestHaversineKnownDistances(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		wantKm                 float64
		tolKm                  float64
	}{
		{"same point", originLat, originLon, originLat, originLon, 0, 0.001},
		{"delhi to gurgaon", 28.6315, 77.2167, 28.4595, 77.0266, 26.7, 1.0},
		{"delhi to mumbai", 28.6139, 77.2090, 19.0760, 72.8777, 1148, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.wantKm) > tt.tolKm {
				t.Fatalf("Haversine = %.2f km, want %.2f ± %.2f", got, tt.wantKm, tt.tolKm)
			}
		})
	}
}

func TestHaversineIsSymmetric(t *testing.T) {
	d1 := Haversine(28.6315, 77.2167, 28.7041, 77.1025)
	d2 := Haversine(28.7041, 77.1025, 28.6315, 77.2167)

	if math.Abs(d1-d2) > 1e-9 {
		t.Fatalf("expected symmetric distance, got %v and %v", d1, d2)
	}
}

func station(code string, lat, lon float64) models.Station {
	return models.Station{Code: code, Name: "Station " + code, Latitude: lat, Longitude: lon}
}

func TestNearestStationsOrdersByDistance(t *testing.T) {
	stations := []models.Station{
		station("ST0003", 28.70, 77.30),     // ~11 km, outside default radius
		station("ST0002", 28.64, 77.22),     // ~1 km
		station("ST0001", 28.6315, 77.2167), // at origin
	}

	ranked := NearestStations(originLat, originLon, stations, 0, 0)

	if len(ranked) != 2 {
		t.Fatalf("expected 2 stations within %v km, got %d", DefaultMaxDistanceKm, len(ranked))
	}
	if ranked[0].Station.Code != "ST0001" || ranked[1].Station.Code != "ST0002" {
		t.Fatalf("wrong order: %s, %s", ranked[0].Station.Code, ranked[1].Station.Code)
	}
	if ranked[0].DistanceKm != 0 {
		t.Fatalf("expected zero distance at origin, got %v", ranked[0].DistanceKm)
	}
}

func TestNearestStationsTieBreaksByCode(t *testing.T) {
	// Same coordinates, so identical distance; order must come from codes.
	stations := []models.Station{
		station("ST0200", 28.64, 77.22),
		station("ST0100", 28.64, 77.22),
		station("ST0150", 28.64, 77.22),
	}

	ranked := NearestStations(originLat, originLon, stations, 0, 0)

	want := []string{"ST0100", "ST0150", "ST0200"}
	for i, code := range want {
		if ranked[i].Station.Code != code {
			t.Fatalf("position %d: got %s, want %s", i, ranked[i].Station.Code, code)
		}
	}
}

func TestNearestStationsHonorsMaxKmAndLimit(t *testing.T) {
	stations := []models.Station{
		station("ST0001", 28.6315, 77.2167),
		station("ST0002", 28.6320, 77.2170),
		station("ST0003", 28.6330, 77.2180),
		station("ST0004", 28.90, 77.60), // ~48 km away
	}

	ranked := NearestStations(originLat, originLon, stations, 50, 2)
	if len(ranked) != 2 {
		t.Fatalf("limit not applied, got %d results", len(ranked))
	}

	ranked = NearestStations(originLat, originLon, stations, 5, 10)
	for _, r := range ranked {
		if r.Station.Code == "ST0004" {
			t.Fatalf("station beyond maxKm included")
		}
	}
}

func TestNearestCentersRanksAndLimits(t *testing.T) {
	centers := []models.DSKCenter{
		{Code: "DSK0002", Latitude: 28.70, Longitude: 77.10},
		{Code: "DSK0001", Latitude: 28.6315, Longitude: 77.2167},
		{Code: "DSK0003", Latitude: 19.0760, Longitude: 72.8777}, // Mumbai
	}

	ranked := NearestCenters(originLat, originLon, centers, 2)

	if len(ranked) != 2 {
		t.Fatalf("expected limit 2, got %d", len(ranked))
	}
	if ranked[0].Center.Code != "DSK0001" {
		t.Fatalf("closest center wrong: %s", ranked[0].Center.Code)
	}
	// Centers have no radius cutoff; distant ones rank last instead.
	if ranked[1].Center.Code != "DSK0002" {
		t.Fatalf("second center wrong: %s", ranked[1].Center.Code)
	}
}
