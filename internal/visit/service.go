package visit

import (
	"context"
	"encoding/json"
	"errors"

	"backend-traillog/internal/db"
	"backend-traillog/internal/feed"

	"github.com/jackc/pgx/v5"
)

type Service struct {
	db  db.Querier
	hub *feed.Hub
}

func NewService(db db.Querier, hub *feed.Hub) *Service {
	return &Service{db: db, hub: hub}
}

// Redeem converts a scanned QR token into a visit and one point for the
// caller. The visit and the point award happen in one transaction, and the
// increment itself carries the already-visited guard, so two concurrent scans
// of the same code by the same user can never award twice: whichever runs
// second sees zero rows updated and rolls back with db.ErrConflict. The
// unique index on (user_id, place_id) backs the same guarantee in storage.
func (s *Service) Redeem(ctx context.Context, userID, token string) (Visit, error) {
	var placeID string
	err := s.db.QueryRow(ctx, `SELECT place_id FROM qr_codes WHERE value=$1`, token).Scan(&placeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Visit{}, db.ErrNotFound
	}
	if err != nil {
		return Visit{}, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return Visit{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE users SET points = points + 1
		WHERE id = $1
		  AND NOT EXISTS (SELECT 1 FROM visits WHERE user_id = $1 AND place_id = $2)
	`, userID, placeID)
	if err != nil {
		return Visit{}, err
	}
	if tag.RowsAffected() == 0 {
		return Visit{}, db.ErrConflict
	}

	visit := Visit{UserID: userID, PlaceID: placeID}
	row := tx.QueryRow(ctx, `
		INSERT INTO visits (user_id, place_id)
		VALUES ($1,$2)
		RETURNING visited_at
	`, visit.UserID, visit.PlaceID)
	if err := row.Scan(&visit.VisitedAt); err != nil {
		return Visit{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Visit{}, err
	}

	if s.hub != nil {
		payload, _ := json.Marshal(feed.Event{
			Type:    "place_visited",
			UserID:  visit.UserID,
			PlaceID: visit.PlaceID,
			At:      visit.VisitedAt,
		})
		s.hub.Broadcast(visit.PlaceID, payload)
	}
	return visit, nil
}

// ListVisited returns the caller's redeemed places, most recent first.
func (s *Service) ListVisited(ctx context.Context, userID string) ([]VisitedPlace, error) {
	rows, err := s.db.Query(ctx, `
		SELECT v.place_id, p.name, p.location, v.visited_at
		FROM visits v
		JOIN places p ON p.id = v.place_id
		WHERE v.user_id=$1
		ORDER BY v.visited_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visited []VisitedPlace
	for rows.Next() {
		var vp VisitedPlace
		if err := rows.Scan(&vp.PlaceID, &vp.Name, &vp.Location, &vp.VisitedAt); err != nil {
			return nil, err
		}
		visited = append(visited, vp)
	}
	return visited, nil
}
