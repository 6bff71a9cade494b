package user

import (
	"context"
	"errors"
	"time"

	"backend-traillog/internal/db"

	"github.com/jackc/pgx/v5"
)

type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"created_at"`
}

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Me(ctx context.Context, userID string) (Profile, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, email, name, image, points, created_at
		FROM users WHERE id=$1
	`, userID)
	var p Profile
	if err := row.Scan(&p.ID, &p.Email, &p.Name, &p.Image, &p.Points, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, db.ErrNotFound
		}
		return Profile{}, err
	}
	return p, nil
}
