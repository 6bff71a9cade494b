package place

import (
	"context"
	"encoding/json"
	"errors"

	"backend-traillog/internal/db"
	"backend-traillog/internal/feed"
	"backend-traillog/internal/rules"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Service struct {
	db      db.Querier
	hub     *feed.Hub
	baseURL string
}

func NewService(db db.Querier, hub *feed.Hub, baseURL string) *Service {
	return &Service{db: db, hub: hub, baseURL: baseURL}
}

// Create stores a new place together with its initial photos and an
// auto-generated QR code. The requested public flag is clamped to the
// author's points balance, never rejected.
func (s *Service) Create(ctx context.Context, callerID string, input CreateInput) (Place, error) {
	points, err := s.authorPoints(ctx, callerID)
	if err != nil {
		return Place{}, err
	}

	place := Place{
		ID:          uuid.NewString(),
		AuthorID:    callerID,
		Name:        input.Name,
		Description: input.Description,
		Location:    input.Location,
		Difficulty:  input.Difficulty,
		Public:      rules.ResolvePublicFlag(points, input.Public),
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return Place{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		INSERT INTO places (id, author_id, name, description, location, difficulty, public)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at
	`, place.ID, place.AuthorID, place.Name, place.Description, place.Location, place.Difficulty, place.Public)
	if err := row.Scan(&place.CreatedAt); err != nil {
		return Place{}, err
	}

	for _, url := range input.Photos {
		photo := Photo{ID: uuid.NewString(), PlaceID: place.ID, URL: url}
		row := tx.QueryRow(ctx, `
			INSERT INTO place_photos (id, place_id, url)
			VALUES ($1,$2,$3)
			RETURNING created_at
		`, photo.ID, photo.PlaceID, photo.URL)
		if err := row.Scan(&photo.CreatedAt); err != nil {
			return Place{}, err
		}
		place.Photos = append(place.Photos, photo)
	}

	qr := QRCode{ID: uuid.NewString(), PlaceID: place.ID, Value: uuid.NewString()}
	row = tx.QueryRow(ctx, `
		INSERT INTO qr_codes (id, place_id, value)
		VALUES ($1,$2,$3)
		RETURNING created_at
	`, qr.ID, qr.PlaceID, qr.Value)
	if err := row.Scan(&qr.CreatedAt); err != nil {
		return Place{}, err
	}
	qr.ScanURL = s.scanURL(qr.Value)
	place.QRCodes = append(place.QRCodes, qr)

	if err := tx.Commit(ctx); err != nil {
		return Place{}, err
	}
	return place, nil
}

// Get returns a single place with its photos, comments and like state.
// Private places of other users report db.ErrNotFound, the same as a missing
// id. QR codes are included only for the author.
func (s *Service) Get(ctx context.Context, callerID, id string) (Place, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, author_id, name, description, location, difficulty, public, created_at
		FROM places WHERE id=$1
	`, id)
	var place Place
	if err := row.Scan(&place.ID, &place.AuthorID, &place.Name, &place.Description, &place.Location, &place.Difficulty, &place.Public, &place.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Place{}, db.ErrNotFound
		}
		return Place{}, err
	}
	if !rules.CanView(callerID, place.AuthorID, place.Public) {
		return Place{}, db.ErrNotFound
	}

	if err := s.db.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE user_id=$2) > 0
		FROM place_likes WHERE place_id=$1
	`, place.ID, callerID).Scan(&place.Likes, &place.LikedByMe); err != nil {
		return Place{}, err
	}

	photos, err := s.loadPhotos(ctx, []string{place.ID})
	if err != nil {
		return Place{}, err
	}
	place.Photos = photos[place.ID]

	place.Comments, err = s.Comments(ctx, callerID, place.ID)
	if err != nil {
		return Place{}, err
	}

	if rules.CanMutate(callerID, place.AuthorID) {
		place.QRCodes, err = s.qrCodes(ctx, place.ID)
		if err != nil {
			return Place{}, err
		}
	}
	return place, nil
}

// List returns every place visible to the caller, most liked first.
func (s *Service) List(ctx context.Context, callerID string) ([]Place, error) {
	rows, err := s.db.Query(ctx, `
		SELECT p.id, p.author_id, p.name, p.description, p.location, p.difficulty, p.public, p.created_at,
		       COUNT(l.user_id), COUNT(l.user_id) FILTER (WHERE l.user_id=$1) > 0
		FROM places p
		LEFT JOIN place_likes l ON l.place_id = p.id
		WHERE p.public = true OR p.author_id = $1
		GROUP BY p.id
		ORDER BY COUNT(l.user_id) DESC, p.created_at DESC
	`, callerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.collectPlaces(ctx, rows)
}

// ListByAuthor returns the caller's own places, private ones included.
func (s *Service) ListByAuthor(ctx context.Context, callerID string) ([]Place, error) {
	rows, err := s.db.Query(ctx, `
		SELECT p.id, p.author_id, p.name, p.description, p.location, p.difficulty, p.public, p.created_at,
		       COUNT(l.user_id), COUNT(l.user_id) FILTER (WHERE l.user_id=$1) > 0
		FROM places p
		LEFT JOIN place_likes l ON l.place_id = p.id
		WHERE p.author_id = $1
		GROUP BY p.id
		ORDER BY p.created_at DESC
	`, callerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.collectPlaces(ctx, rows)
}

// ListLiked returns the places the caller has liked.
func (s *Service) ListLiked(ctx context.Context, callerID string) ([]Place, error) {
	rows, err := s.db.Query(ctx, `
		SELECT p.id, p.author_id, p.name, p.description, p.location, p.difficulty, p.public, p.created_at,
		       COUNT(l.user_id), true
		FROM places p
		JOIN place_likes mine ON mine.place_id = p.id AND mine.user_id = $1
		LEFT JOIN place_likes l ON l.place_id = p.id
		GROUP BY p.id
		ORDER BY p.created_at DESC
	`, callerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.collectPlaces(ctx, rows)
}

// Edit replaces the mutable fields of the caller's place. A non-author gets
// db.ErrNotFound whether or not the place exists.
func (s *Service) Edit(ctx context.Context, callerID, id string, input EditInput) (Place, error) {
	points, err := s.authorPoints(ctx, callerID)
	if err != nil {
		return Place{}, err
	}
	public := rules.ResolvePublicFlag(points, input.Public)

	tag, err := s.db.Exec(ctx, `
		UPDATE places
		SET name=$3, description=$4, location=$5, difficulty=$6, public=$7
		WHERE id=$1 AND author_id=$2
	`, id, callerID, input.Name, input.Description, input.Location, input.Difficulty, public)
	if err != nil {
		return Place{}, err
	}
	if tag.RowsAffected() == 0 {
		return Place{}, db.ErrNotFound
	}
	return s.Get(ctx, callerID, id)
}

func (s *Service) Delete(ctx context.Context, callerID, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM places WHERE id=$1 AND author_id=$2`, id, callerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (s *Service) AddPhoto(ctx context.Context, callerID, placeID, url string) (Photo, error) {
	photo := Photo{ID: uuid.NewString(), PlaceID: placeID, URL: url}
	row := s.db.QueryRow(ctx, `
		INSERT INTO place_photos (id, place_id, url)
		SELECT $1, p.id, $3
		FROM places p WHERE p.id=$2 AND p.author_id=$4
		RETURNING created_at
	`, photo.ID, placeID, url, callerID)
	if err := row.Scan(&photo.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Photo{}, db.ErrNotFound
		}
		return Photo{}, err
	}
	return photo, nil
}

func (s *Service) RemovePhoto(ctx context.Context, callerID, placeID, photoID string) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM place_photos ph
		USING places p
		WHERE ph.id=$1 AND ph.place_id=$2 AND p.id=ph.place_id AND p.author_id=$3
	`, photoID, placeID, callerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (s *Service) AddComment(ctx context.Context, callerID, placeID, body string) (Comment, error) {
	comment := Comment{ID: uuid.NewString(), PlaceID: placeID, AuthorID: callerID, Body: body}
	row := s.db.QueryRow(ctx, `
		INSERT INTO place_comments (id, place_id, author_id, body)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at, updated_at
	`, comment.ID, comment.PlaceID, comment.AuthorID, comment.Body)
	if err := row.Scan(&comment.CreatedAt, &comment.UpdatedAt); err != nil {
		return Comment{}, err
	}
	return comment, nil
}

// EditComment is scoped to the comment's author. The place's author gets no
// special treatment here.
func (s *Service) EditComment(ctx context.Context, callerID, commentID, body string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE place_comments SET body=$3, updated_at=now()
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
		DELETE FROM place_comments WHERE id=$1 AND author_id=$2
	`, commentID, callerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

// Like records at most one like per (user, place). The insert-if-absent is a
// single statement so concurrent duplicates cannot both land; a duplicate
// reports db.ErrConflict.
func (s *Service) Like(ctx context.Context, callerID, placeID string) error {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO place_likes (user_id, place_id)
		SELECT $1, $2
		WHERE NOT EXISTS (SELECT 1 FROM place_likes WHERE user_id=$1 AND place_id=$2)
	`, callerID, placeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrConflict
	}
	s.publish(placeID, feed.Event{Type: "place_liked", UserID: callerID, PlaceID: placeID})
	return nil
}

// Dislike removes any like the caller holds on the place. Removing an absent
// like is a no-op.
func (s *Service) Dislike(ctx context.Context, callerID, placeID string) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM place_likes WHERE user_id=$1 AND place_id=$2
	`, callerID, placeID)
	return err
}

func (s *Service) LikeComment(ctx context.Context, callerID, commentID string) error {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO place_comment_likes (user_id, comment_id)
		SELECT $1, $2
		WHERE NOT EXISTS (SELECT 1 FROM place_comment_likes WHERE user_id=$1 AND comment_id=$2)
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
		DELETE FROM place_comment_likes WHERE user_id=$1 AND comment_id=$2
	`, callerID, commentID)
	return err
}

func (s *Service) Comments(ctx context.Context, callerID, placeID string) ([]Comment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT c.id, c.place_id, c.author_id, u.name, u.image, c.body,
		       COUNT(cl.user_id), COUNT(cl.user_id) FILTER (WHERE cl.user_id=$2) > 0,
		       c.created_at, c.updated_at
		FROM place_comments c
		JOIN users u ON u.id = c.author_id
		LEFT JOIN place_comment_likes cl ON cl.comment_id = c.id
		WHERE c.place_id=$1
		GROUP BY c.id, u.name, u.image
		ORDER BY c.created_at
	`, placeID, callerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PlaceID, &c.AuthorID, &c.AuthorName, &c.AuthorImage, &c.Body, &c.Likes, &c.LikedByMe, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, nil
}

// GenerateQRCode mints an additional redeemable code for the caller's place.
func (s *Service) GenerateQRCode(ctx context.Context, callerID, placeID string) (QRCode, error) {
	qr := QRCode{ID: uuid.NewString(), PlaceID: placeID, Value: uuid.NewString()}
	row := s.db.QueryRow(ctx, `
		INSERT INTO qr_codes (id, place_id, value)
		SELECT $1, p.id, $3
		FROM places p WHERE p.id=$2 AND p.author_id=$4
		RETURNING created_at
	`, qr.ID, placeID, qr.Value, callerID)
	if err := row.Scan(&qr.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return QRCode{}, db.ErrNotFound
		}
		return QRCode{}, err
	}
	qr.ScanURL = s.scanURL(qr.Value)
	return qr, nil
}

// QRCodes lists the codes of the caller's place, author only.
func (s *Service) QRCodes(ctx context.Context, callerID, placeID string) ([]QRCode, error) {
	var authorID string
	err := s.db.QueryRow(ctx, `SELECT author_id FROM places WHERE id=$1`, placeID).Scan(&authorID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !rules.CanMutate(callerID, authorID) {
		return nil, db.ErrNotFound
	}
	return s.qrCodes(ctx, placeID)
}

func (s *Service) qrCodes(ctx context.Context, placeID string) ([]QRCode, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, place_id, value, created_at
		FROM qr_codes WHERE place_id=$1
		ORDER BY created_at
	`, placeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []QRCode
	for rows.Next() {
		var qr QRCode
		if err := rows.Scan(&qr.ID, &qr.PlaceID, &qr.Value, &qr.CreatedAt); err != nil {
			return nil, err
		}
		qr.ScanURL = s.scanURL(qr.Value)
		codes = append(codes, qr)
	}
	return codes, nil
}

func (s *Service) loadPhotos(ctx context.Context, placeIDs []string) (map[string][]Photo, error) {
	if len(placeIDs) == 0 {
		return map[string][]Photo{}, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, place_id, url, created_at
		FROM place_photos WHERE place_id = ANY($1)
		ORDER BY created_at
	`, placeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	photos := map[string][]Photo{}
	for rows.Next() {
		var p Photo
		if err := rows.Scan(&p.ID, &p.PlaceID, &p.URL, &p.CreatedAt); err != nil {
			return nil, err
		}
		photos[p.PlaceID] = append(photos[p.PlaceID], p)
	}
	return photos, nil
}

func (s *Service) collectPlaces(ctx context.Context, rows pgx.Rows) ([]Place, error) {
	var places []Place
	var ids []string
	for rows.Next() {
		var p Place
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Name, &p.Description, &p.Location, &p.Difficulty, &p.Public, &p.CreatedAt, &p.Likes, &p.LikedByMe); err != nil {
			return nil, err
		}
		ids = append(ids, p.ID)
		places = append(places, p)
	}

	photos, err := s.loadPhotos(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range places {
		places[i].Photos = photos[places[i].ID]
	}
	return places, nil
}

func (s *Service) authorPoints(ctx context.Context, userID string) (int, error) {
	var points int
	if err := s.db.QueryRow(ctx, `SELECT points FROM users WHERE id=$1`, userID).Scan(&points); err != nil {
		return 0, err
	}
	return points, nil
}

func (s *Service) scanURL(value string) string {
	return s.baseURL + "/visits/qr/" + value
}

func (s *Service) publish(topic string, event feed.Event) {
	if s.hub == nil {
		return
	}
	payload, _ := json.Marshal(event)
	s.hub.Broadcast(topic, payload)
}
