package user

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"backend-traillog/internal/db"
	"backend-traillog/internal/place"
	"backend-traillog/internal/route"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestMe(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT id, email, name, image, points, created_at`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "name", "image", "points", "created_at"}).
			AddRow("user-1", "hiker@example.com", "Hiker", "", 42, time.Now()))

	svc := NewService(mock)
	profile, err := svc.Me(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if profile.Points != 42 || profile.Email != "hiker@example.com" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestMeMissing(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT id, email, name, image, points, created_at`).
		WithArgs("user-x").
		WillReturnError(pgx.ErrNoRows)

	svc := NewService(mock)
	if _, err := svc.Me(context.Background(), "user-x"); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testApp(t *testing.T, mock pgxmock.PgxPoolIface) *fiber.App {
	t.Helper()
	app := fiber.New()
	fakeAuth := func(c *fiber.Ctx) error {
		c.Locals("user_id", "user-1")
		return c.Next()
	}
	placeSvc := place.NewService(mock, nil, "http://localhost:8080")
	routeSvc := route.NewService(mock)
	RegisterRoutes(app.Group("/users"), NewService(mock), placeSvc, routeSvc, fakeAuth)
	return app
}

func TestMeHandler(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT id, email, name, image, points, created_at`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "name", "image", "points", "created_at"}).
			AddRow("user-1", "hiker@example.com", "Hiker", "", 42, time.Now()))

	app := testApp(t, mock)
	resp, err := app.Test(httptest.NewRequest("GET", "/users/me", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestMyPlacesHandler(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`WHERE p.author_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "author_id", "name", "description", "location", "difficulty", "public", "created_at", "likes", "liked"}).
			AddRow("place-1", "user-1", "Mine", "", "49.2,19.9", 1, false, time.Now(), 0, false))
	mock.ExpectQuery(`FROM place_photos`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "place_id", "url", "created_at"}))

	app := testApp(t, mock)
	resp, err := app.Test(httptest.NewRequest("GET", "/users/me/places", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestLikedRoutesHandler(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`JOIN route_likes mine`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "author_id", "name", "description", "price", "difficulty", "public", "created_at", "likes", "liked"}).
			AddRow("route-1", "user-2", "Loop", "", 0.0, 2, true, time.Now(), 4, true))
	mock.ExpectQuery(`FROM route_places`).
		WithArgs("route-1", "user-1").
		WillReturnRows(pgxmock.NewRows([]string{"position", "id", "author_id", "name", "description", "location", "difficulty", "public", "created_at", "visited"}))

	app := testApp(t, mock)
	resp, err := app.Test(httptest.NewRequest("GET", "/users/me/liked/routes", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
