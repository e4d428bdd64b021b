package geo

import (
	"math"
	"testing"
)

func TestHaversineKm(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		tolerance              float64
	}{
		{"same point", 40.7128, -74.0060, 40.7128, -74.0060, 0, 1e-9},
		{"new york to london", 40.7128, -74.0060, 51.5074, -0.1278, 5570, 10},
		{"one degree of latitude", 0, 0, 1, 0, 111.19, 0.1},
		{"antipodal", 0, 0, 0, 180, math.Pi * EarthRadiusKm, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineKm(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("HaversineKm() = %.3f, want %.3f ± %.3f", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestBoundingBoxContainsRadius(t *testing.T) {
	lat, lon, radius := 48.8566, 2.3522, 25.0
	box := BoundingBox(lat, lon, radius)

	if box.MinLat >= lat || box.MaxLat <= lat || box.MinLon >= lon || box.MaxLon <= lon {
		t.Fatalf("box %+v does not contain its centre", box)
	}

	// Points exactly radius away along each axis must fall inside the box.
	north := lat + radius/EarthRadiusKm*180/math.Pi
	if north > box.MaxLat+1e-9 {
		t.Errorf("north edge %.6f outside box max lat %.6f", north, box.MaxLat)
	}
	if d := HaversineKm(lat, lon, lat, box.MaxLon); d < radius {
		t.Errorf("east edge only %.3f km away, want >= %.3f", d, radius)
	}
}

func TestBoundingBoxNearPoleSpansAllLongitudes(t *testing.T) {
	box := BoundingBox(89.9, 10, 50)
	if box.MinLon != -180 || box.MaxLon != 180 {
		t.Errorf("expected full longitude range near the pole, got %+v", box)
	}
	if box.MaxLat != 90 {
		t.Errorf("MaxLat = %v, want 90", box.MaxLat)
	}
}
