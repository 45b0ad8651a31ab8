package overpass_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/samirrijal/geotales/internal/adapters/overpass"
	"github.com/samirrijal/geotales/internal/core/domain"
)

func TestNearbyPOIs_QueryShape(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		query = string(body)
		w.Write([]byte(`{"elements":[]}`))
	}))
	defer srv.Close()

	client := overpass.New(srv.URL, 5*time.Second)
	_, err := client.NearbyPOIs(context.Background(), domain.GeoPoint{Lat: 43.263, Lon: -2.935}, 15000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		`node["tourism"="attraction"](around:15000,43.263000,-2.935000)`,
		`node["historic"](around:15000,43.263000,-2.935000)`,
		"out center 30;",
	} {
		if !strings.Contains(query, want) {
			t.Errorf("query missing %q:\n%s", want, query)
		}
	}
}

func TestNearbyPOIs_ParsesElements(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"elements":[
			{"id":101,"lat":43.26,"lon":-2.93,"tags":{"name":"Guggenheim Museum","tourism":"attraction"}},
			{"id":102,"lat":43.27,"lon":-2.92,"tags":{"historic":"monument"}}
		]}`))
	}))
	defer srv.Close()

	client := overpass.New(srv.URL, 5*time.Second)
	pois, err := client.NearbyPOIs(context.Background(), domain.GeoPoint{Lat: 43.263, Lon: -2.935}, 15000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pois) != 2 {
		t.Fatalf("expected 2 POIs, got %d", len(pois))
	}
	if pois[0].ID != 101 || pois[0].Title != "Guggenheim Museum" {
		t.Errorf("unexpected first POI: %+v", pois[0])
	}
	if pois[0].Location.Lat != 43.26 || pois[0].Location.Lon != -2.93 {
		t.Errorf("unexpected location: %v", pois[0].Location)
	}
	// Nodes without a name tag get the placeholder title.
	if pois[1].Title != "Unnamed POI" {
		t.Errorf("expected placeholder title, got %q", pois[1].Title)
	}
	if pois[1].Named() {
		t.Error("placeholder POI must not count as named")
	}
}

func TestNearbyPOIs_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := overpass.New(srv.URL, 5*time.Second)
	_, err := client.NearbyPOIs(context.Background(), domain.GeoPoint{Lat: 1, Lon: 2}, 15000)
	if err == nil {
		t.Fatal("expected error for 429")
	}
}
