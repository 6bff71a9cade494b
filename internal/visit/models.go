package visit

import "time"

type Visit struct {
	UserID    string    `json:"user_id"`
	PlaceID   string    `json:"place_id"`
	VisitedAt time.Time `json:"visited_at"`
}

// VisitedPlace is a place summary paired with when the caller redeemed it.
type VisitedPlace struct {
	PlaceID   string    `json:"place_id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	VisitedAt time.Time `json:"visited_at"`
}
