package place

import "time"

type Place struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"author_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Difficulty  int       `json:"difficulty"`
	Public      bool      `json:"public"`
	Likes       int       `json:"likes"`
	LikedByMe   bool      `json:"liked_by_me"`
	Photos      []Photo   `json:"photos,omitempty"`
	Comments    []Comment `json:"comments,omitempty"`
	QRCodes     []QRCode  `json:"qr_codes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Photo struct {
	ID        string    `json:"id"`
	PlaceID   string    `json:"place_id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

type Comment struct {
	ID          string    `json:"id"`
	PlaceID     string    `json:"place_id"`
	AuthorID    string    `json:"author_id"`
	AuthorName  string    `json:"author_name"`
	AuthorImage string    `json:"author_image"`
	Body        string    `json:"body"`
	Likes       int       `json:"likes"`
	LikedByMe   bool      `json:"liked_by_me"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type QRCode struct {
	ID        string    `json:"id"`
	PlaceID   string    `json:"place_id"`
	Value     string    `json:"value"`
	ScanURL   string    `json:"scan_url"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Difficulty  int      `json:"difficulty"`
	Public      bool     `json:"public"`
	Photos      []string `json:"photos"`
}

type EditInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Difficulty  int    `json:"difficulty"`
	Public      bool   `json:"public"`
}
