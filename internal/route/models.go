package route

import (
	"time"

	"backend-traillog/internal/place"
)

type Route struct {
	ID            string       `json:"id"`
	AuthorID      string       `json:"author_id"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Price         float64      `json:"price"`
	Difficulty    int          `json:"difficulty"`
	Public        bool         `json:"public"`
	Likes         int          `json:"likes"`
	LikedByMe     bool         `json:"liked_by_me"`
	Places        []RoutePlace `json:"places,omitempty"`
	Comments      []Comment    `json:"comments,omitempty"`
	Progress      int          `json:"progress"`
	DirectionsURL string       `json:"directions_url,omitempty"`
	DistanceKm    float64      `json:"distance_km"`
	CreatedAt     time.Time    `json:"created_at"`
}

// RoutePlace is one stop on a route. Position defines the visiting order and
// drives the progress projection.
type RoutePlace struct {
	Position int         `json:"position"`
	Visited  bool        `json:"visited"`
	Place    place.Place `json:"place"`
}

type Comment struct {
	ID          string    `json:"id"`
	RouteID     string    `json:"route_id"`
	AuthorID    string    `json:"author_id"`
	AuthorName  string    `json:"author_name"`
	AuthorImage string    `json:"author_image"`
	Body        string    `json:"body"`
	Likes       int       `json:"likes"`
	LikedByMe   bool      `json:"liked_by_me"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Difficulty  int      `json:"difficulty"`
	Public      bool     `json:"public"`
	Places      []string `json:"places"`
}

type EditInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Difficulty  int     `json:"difficulty"`
	Public      bool    `json:"public"`
}
