package domain

import "strings"

// UnnamedTitle is the placeholder title assigned to POIs that carry no name
// tag. POIs with this prefix are never sent to the encyclopedia lookup and
// never appear as landmarks.
const UnnamedTitle = "Unnamed"

// POI is a tagged location returned by the map database, identified by its
// provider-assigned OSM id.
type POI struct {
	ID       int64             `json:"osm_id"`
	Title    string            `json:"title"`
	Location GeoPoint          `json:"location"`
	Tags     map[string]string `json:"tags,omitempty"`
}

// Named reports whether the POI carries a real name rather than the
// UnnamedTitle placeholder.
func (p POI) Named() bool {
	return p.Title != "" && !strings.HasPrefix(p.Title, UnnamedTitle)
}

// Summary is a short encyclopedia entry for a titled page.
type Summary struct {
	Title     string `json:"title"`
	Extract   string `json:"extract"`
	Thumbnail string `json:"thumbnail,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
}

// Landmark is a POI merged with its encyclopedia summary. A POI without a
// successful summary lookup is dropped, never emitted bare.
type Landmark struct {
	ID        int64             `json:"osm_id"`
	Title     string            `json:"title"`
	Location  GeoPoint          `json:"location"`
	Tags      map[string]string `json:"tags,omitempty"`
	Summary   string            `json:"summary"`
	Thumbnail string            `json:"thumbnail,omitempty"`
	SourceURL string            `json:"source_url,omitempty"`
}

// MergeLandmark combines a POI and its summary into a Landmark. The summary
// title wins over the raw map name, matching the encyclopedia's canonical
// page title.
func MergeLandmark(p POI, s Summary) Landmark {
	title := s.Title
	if title == "" {
		title = p.Title
	}
	return Landmark{
		ID:        p.ID,
		Title:     title,
		Location:  p.Location,
		Tags:      p.Tags,
		Summary:   s.Extract,
		Thumbnail: s.Thumbnail,
		SourceURL: s.SourceURL,
	}
}

// Fact is a short descriptive text block associated with a place, split into
// reader-sized paragraphs.
type Fact struct {
	Place      string   `json:"place"`
	Paragraphs []string `json:"paragraphs"`
	URL        string   `json:"url,omitempty"`
}

// RouteStory is the aggregate result for one origin/destination request.
// This is the internal (and cached) representation; the HTTP layer renders
// the polyline as [lat, lon] pairs.
type RouteStory struct {
	Polyline  Path       `json:"polyline"`
	Landmarks []Landmark `json:"landmarks"`
	Facts     []Fact     `json:"facts"`
}

// NarrationItem is one stop of a narrated drive: a location, the nearest
// encyclopedia article title, and its summary text.
type NarrationItem struct {
	Location string `json:"location"`
	Title    string `json:"title"`
	Summary  string `json:"summary"`
}
