package route

import (
	"context"
	"errors"

	"backend-traillog/internal/db"
	"backend-traillog/internal/rules"
	"backend-traillog/internal/shared/geo"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// Create stores a route and its ordered place refs. The position of each ref
// is the index in the input slice; that order is what progress and directions
// are computed from later.
func (s *Service) Create(ctx context.Context, callerID string, input CreateInput) (Route, error) {
	points, err := s.authorPoints(ctx, callerID)
	if err != nil {
		return Route{}, err
	}

	route := Route{
		ID:          uuid.NewString(),
		AuthorID:    callerID,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Difficulty:  input.Difficulty,
		Public:      rules.ResolvePublicFlag(points, input.Public),
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return Route{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		INSERT INTO routes (id, author_id, name, description, price, difficulty, public)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at
	`, route.ID, route.AuthorID, route.Name, route.Description, route.Price, route.Difficulty, route.Public)
	if err := row.Scan(&route.CreatedAt); err != nil {
		return Route{}, err
	}

	for i, placeID := range input.Places {
		if _, err := tx.Exec(ctx, `
			INSERT INTO route_places (route_id, place_id, position)
			VALUES ($1,$2,$3)
		`, route.ID, placeID, i); err != nil {
			return Route{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Route{}, err
	}
	return route, nil
}

// Get returns a route with its ordered places, the caller's visit state per
// place, the progress prefix and a directions link. Private routes of other
// users report db.ErrNotFound.
func (s *Service) Get(ctx context.Context, callerID, id string) (Route, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, author_id, name, description, price, difficulty, public, created_at
		FROM routes WHERE id=$1
	`, id)
	var route Route
	if err := row.Scan(&route.ID, &route.AuthorID, &route.Name, &route.Description, &route.Price, &route.Difficulty, &route.Public, &route.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Route{}, db.ErrNotFound
		}
		return Route{}, err
	}
	if !rules.CanView(callerID, route.AuthorID, route.Public) {
		return Route{}, db.ErrNotFound
	}

	if err := s.db.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE user_id=$2) > 0
		FROM route_likes WHERE route_id=$1
	`, route.ID, callerID).Scan(&route.Likes, &route.LikedByMe); err != nil {
		return Route{}, err
	}

	if err := s.attachPlaces(ctx, callerID, &route); err != nil {
		return Route{}, err
	}

	var err error
	route.Comments, err = s.Comments(ctx, callerID, route.ID)
	if err != nil {
		return Route{}, err
	}
	return route, nil
}

// attachPlaces loads the ordered stops and derives the read-time projections:
// visit progress, the directions link and the total distance.
func (s *Service) attachPlaces(ctx context.Context, callerID string, route *Route) error {
	var err error
	route.Places, err = s.places(ctx, callerID, route.ID)
	if err != nil {
		return err
	}

	ordered := make([]string, 0, len(route.Places))
	locations := make([]string, 0, len(route.Places))
	visited := map[string]bool{}
	for _, rp := range route.Places {
		ordered = append(ordered, rp.Place.ID)
		locations = append(locations, rp.Place.Location)
		if rp.Visited {
			visited[rp.Place.ID] = true
		}
	}
	route.Progress = rules.ProgressPrefix(ordered, visited)
	route.DirectionsURL = rules.DirectionsURL(locations)
	route.DistanceKm = totalDistanceKm(locations)
	return nil
}

// List returns every route visible to the caller, most liked first, each with
// its ordered places attached.
func (s *Service) List(ctx context.Context, callerID string) ([]Route, error) {
	rows, err := s.db.Query(ctx, `
		SELECT r.id, r.author_id, r.name, r.description, r.price, r.difficulty, r.public, r.created_at,
		       COUNT(l.user_id), COUNT(l.user_id) FILTER (WHERE l.user_id=$1) > 0
		FROM routes r
		LEFT JOIN route_likes l ON l.route_id = r.id
		WHERE r.public = true OR r.author_id = $1
		GROUP BY r.id
		ORDER BY COUNT(l.user_id) DESC, r.created_at DESC
	`, callerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.collectAndAttach(ctx, callerID, rows)
}

// ListByAuthor returns the caller's own routes, private ones included.
func (s *Service) ListByAuthor(ctx context.Context, callerID string) ([]Route, error) {
	rows, err := s.db.Query(ctx, `
		SELECT r.id, r.author_id, r.name, r.description, r.price, r.difficulty, r.public, r.created_at,
		       COUNT(l.user_id), COUNT(l.user_id) FILTER (WHERE l.user_id=$1) > 0
		FROM routes r
		LEFT JOIN route_likes l ON l.route_id = r.id
		WHERE r.author_id = $1
		GROUP BY r.id
		ORDER BY r.created_at DESC
	`, callerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.collectAndAttach(ctx, callerID, rows)
}

// ListLiked returns the routes the caller has liked.
func (s *Service) ListLiked(ctx context.Context, callerID string) ([]Route, error) {
	rows, err := s.db.Query(ctx, `
		SELECT r.id, r.author_id, r.name, r.description, r.price, r.difficulty, r.public, r.created_at,
		       COUNT(l.user_id), true
		FROM routes r
		JOIN route_likes mine ON mine.route_id = r.id AND mine.user_id = $1
		LEFT JOIN route_likes l ON l.route_id = r.id
		GROUP BY r.id
		ORDER BY r.created_at DESC
	`, callerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.collectAndAttach(ctx, callerID, rows)
}

// Edit replaces the mutable fields of the caller's route. The place sequence
// is immutable after creation.
func (s *Service) Edit(ctx context.Context, callerID, id string, input EditInput) (Route, error) {
	points, err := s.authorPoints(ctx, callerID)
	if err != nil {
		return Route{}, err
	}
	public := rules.ResolvePublicFlag(points, input.Public)

	tag, err := s.db.Exec(ctx, `
		UPDATE routes
		SET name=$3, description=$4, price=$5, difficulty=$6, public=$7
		WHERE id=$1 AND author_id=$2
	`, id, callerID, input.Name, input.Description, input.Price, input.Difficulty, public)
	if err != nil {
		return Route{}, err
	}
	if tag.RowsAffected() == 0 {
		return Route{}, db.ErrNotFound
	}
	return s.Get(ctx, callerID, id)
}

func (s *Service) Delete(ctx context.Context, callerID, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM routes WHERE id=$1 AND author_id=$2`, id, callerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

// Like records at most one like per (user, route); duplicates report
// db.ErrConflict.
func (s *Service) Like(ctx context.Context, callerID, routeID string) error {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO route_likes (user_id, route_id)
		SELECT $1, $2
		WHERE NOT EXISTS (SELECT 1 FROM route_likes WHERE user_id=$1 AND route_id=$2)
	`, callerID, routeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrConflict
	}
	return nil
}

func (s *Service) Dislike(ctx context.Context, callerID, routeID string) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM route_likes WHERE user_id=$1 AND route_id=$2
	`, callerID, routeID)
	return err
}

func (s *Service) AddComment(ctx context.Context, callerID, routeID, body string) (Comment, error) {
	comment := Comment{ID: uuid.NewString(), RouteID: routeID, AuthorID: callerID, Body: body}
	row := s.db.QueryRow(ctx, `
		INSERT INTO route_comments (id, route_id, author_id, body)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at, updated_at
	`, comment.ID, comment.RouteID, comment.AuthorID, comment.Body)
	if err := row.Scan(&comment.CreatedAt, &comment.UpdatedAt); err != nil {
		return Comment{}, err
	}
	return comment, nil
}

func (s *Service) EditComment(ctx context.Context, callerID, commentID, body string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE route_comments SET body=$3, updated_at=now()
		WHERE id=$1 AND author_id=$2
	`, commentID, callerID, body)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (s *Service) RemoveComment(ctx context.Context, callerID, commentID string) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM route_comments WHERE id=$1 AND author_id=$2
	`, commentID, callerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (s *Service) LikeComment(ctx context.Context, callerID, commentID string) error {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO route_comment_likes (user_id, comment_id)
		SELECT $1, $2
		WHERE NOT EXISTS (SELECT 1 FROM route_comment_likes WHERE user_id=$1 AND comment_id=$2)
	`, callerID, commentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrConflict
	}
	return nil
}

func (s *Service) DislikeComment(ctx context.Context, callerID, commentID string) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM route_comment_likes WHERE user_id=$1 AND comment_id=$2
	`, callerID, commentID)
	return err
}

func (s *Service) Comments(ctx context.Context, callerID, routeID string) ([]Comment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT c.id, c.route_id, c.author_id, u.name, u.image, c.body,
		       COUNT(cl.user_id), COUNT(cl.user_id) FILTER (WHERE cl.user_id=$2) > 0,
		       c.created_at, c.updated_at
		FROM route_comments c
		JOIN users u ON u.id = c.author_id
		LEFT JOIN route_comment_likes cl ON cl.comment_id = c.id
		WHERE c.route_id=$1
		GROUP BY c.id, u.name, u.image
		ORDER BY c.created_at
	`, routeID, callerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.RouteID, &c.AuthorID, &c.AuthorName, &c.AuthorImage, &c.Body, &c.Likes, &c.LikedByMe, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, nil
}

// places loads the ordered stops with the caller's visit flag per place.
func (s *Service) places(ctx context.Context, callerID, routeID string) ([]RoutePlace, error) {
	rows, err := s.db.Query(ctx, `
		SELECT rp.position,
		       p.id, p.author_id, p.name, p.description, p.location, p.difficulty, p.public, p.created_at,
		       EXISTS (SELECT 1 FROM visits v WHERE v.place_id = p.id AND v.user_id = $2)
		FROM route_places rp
		JOIN places p ON p.id = rp.place_id
		WHERE rp.route_id = $1
		ORDER BY rp.position
	`, routeID, callerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stops []RoutePlace
	for rows.Next() {
		var rp RoutePlace
		if err := rows.Scan(&rp.Position, &rp.Place.ID, &rp.Place.AuthorID, &rp.Place.Name, &rp.Place.Description, &rp.Place.Location, &rp.Place.Difficulty, &rp.Place.Public, &rp.Place.CreatedAt, &rp.Visited); err != nil {
			return nil, err
		}
		stops = append(stops, rp)
	}
	return stops, nil
}

func (s *Service) collectAndAttach(ctx context.Context, callerID string, rows pgx.Rows) ([]Route, error) {
	routes, err := collectRoutes(rows)
	if err != nil {
		return nil, err
	}
	for i := range routes {
		if err := s.attachPlaces(ctx, callerID, &routes[i]); err != nil {
			return nil, err
		}
	}
	return routes, nil
}

func (s *Service) authorPoints(ctx context.Context, userID string) (int, error) {
	var points int
	if err := s.db.QueryRow(ctx, `SELECT points FROM users WHERE id=$1`, userID).Scan(&points); err != nil {
		return 0, err
	}
	return points, nil
}

func collectRoutes(rows pgx.Rows) ([]Route, error) {
	var routes []Route
	for rows.Next() {
		var r Route
		if err := rows.Scan(&r.ID, &r.AuthorID, &r.Name, &r.Description, &r.Price, &r.Difficulty, &r.Public, &r.CreatedAt, &r.Likes, &r.LikedByMe); err != nil {
			return nil, err
		}
		routes = append(routes, r)
	}
	return routes, nil
}

// totalDistanceKm sums the leg distances between consecutive stops. Legs with
// unparseable coordinates are skipped.
func totalDistanceKm(locations []string) float64 {
	total := 0.0
	havePrev := false
	var prevLat, prevLng float64
	for _, loc := range locations {
		lat, lng, err := geo.ParseLocation(loc)
		if err != nil {
			havePrev = false
			continue
		}
		if havePrev {
			total += geo.HaversineKm(prevLat, prevLng, lat, lng)
		}
		prevLat, prevLng = lat, lng
		havePrev = true
	}
	return total
}
