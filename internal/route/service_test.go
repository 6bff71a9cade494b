package route

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"backend-traillog/internal/db"

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

func TestCreateRouteKeepsOrder(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT points FROM users`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"points"}).AddRow(150))

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO routes`).
		WithArgs(pgxmock.AnyArg(), "user-1", "Tatra loop", "desc", 0.0, 3, true).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec(`INSERT INTO route_places`).
		WithArgs(pgxmock.AnyArg(), "place-a", 0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO route_places`).
		WithArgs(pgxmock.AnyArg(), "place-b", 1).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	svc := NewService(mock)
	route, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:        "Tatra loop",
		Description: "desc",
		Difficulty:  3,
		Public:      true,
		Places:      []string{"place-a", "place-b"},
	})
	if err != nil {
		t.Fatalf("create route: %v", err)
	}
	if !route.Public {
		t.Fatalf("expected public route for author above threshold")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateRouteClampsPublic(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT points FROM users`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"points"}).AddRow(99))

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO routes`).
		WithArgs(pgxmock.AnyArg(), "user-1", "Quiet loop", "", 0.0, 1, false).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec(`INSERT INTO route_places`).
		WithArgs(pgxmock.AnyArg(), "place-a", 0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO route_places`).
		WithArgs(pgxmock.AnyArg(), "place-b", 1).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	svc := NewService(mock)
	route, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:       "Quiet loop",
		Difficulty: 1,
		Public:     true,
		Places:     []string{"place-a", "place-b"},
	})
	if err != nil {
		t.Fatalf("create route: %v", err)
	}
	if route.Public {
		t.Fatalf("expected public flag clamped below threshold")
	}
}

func TestGetRouteProgressAndDirections(t *testing.T) {
	mock := newMock(t)

	createdAt := time.Now()
	mock.ExpectQuery(`SELECT id, author_id, name, description, price, difficulty, public, created_at`).
		WithArgs("route-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "author_id", "name", "description", "price", "difficulty", "public", "created_at"}).
			AddRow("route-1", "user-2", "Tatra loop", "desc", 0.0, 3, true, createdAt))

	mock.ExpectQuery(`FROM route_likes`).
		WithArgs("route-1", "user-1").
		WillReturnRows(pgxmock.NewRows([]string{"count", "liked"}).AddRow(3, true))

	// first stop visited, second not, third visited: the contiguous prefix is 1
	mock.ExpectQuery(`FROM route_places`).
		WithArgs("route-1", "user-1").
		WillReturnRows(pgxmock.NewRows([]string{"position", "id", "author_id", "name", "description", "location", "difficulty", "public", "created_at", "visited"}).
			AddRow(0, "place-a", "user-2", "Start", "", "49.2011,20.0703", 2, true, createdAt, true).
			AddRow(1, "place-b", "user-2", "Middle", "", "49.2506,19.9339", 3, true, createdAt, false).
			AddRow(2, "place-c", "user-2", "End", "", "49.2317,19.9816", 3, true, createdAt, true))

	mock.ExpectQuery(`FROM route_comments`).
		WithArgs("route-1", "user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "route_id", "author_id", "name", "image", "body", "likes", "liked", "created_at", "updated_at"}))

	svc := NewService(mock)
	route, err := svc.Get(context.Background(), "user-1", "route-1")
	if err != nil {
		t.Fatalf("get route: %v", err)
	}
	if route.Progress != 1 {
		t.Fatalf("expected progress 1, got %d", route.Progress)
	}
	if len(route.Places) != 3 || route.Places[0].Place.ID != "place-a" || route.Places[2].Place.ID != "place-c" {
		t.Fatalf("expected ordered places, got %+v", route.Places)
	}
	if !strings.Contains(route.DirectionsURL, "google.com/maps/dir") {
		t.Fatalf("expected directions link, got %q", route.DirectionsURL)
	}
	if route.DistanceKm <= 0 {
		t.Fatalf("expected positive total distance, got %f", route.DistanceKm)
	}
	if route.Likes != 3 || !route.LikedByMe {
		t.Fatalf("unexpected like state: %d %v", route.Likes, route.LikedByMe)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListRoutesIncludesPlaces(t *testing.T) {
	mock := newMock(t)

	createdAt := time.Now()
	mock.ExpectQuery(`WHERE r.public = true OR r.author_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "author_id", "name", "description", "price", "difficulty", "public", "created_at", "likes", "liked"}).
			AddRow("route-1", "user-2", "Tatra loop", "", 0.0, 3, true, createdAt, 5, false))

	mock.ExpectQuery(`FROM route_places`).
		WithArgs("route-1", "user-1").
		WillReturnRows(pgxmock.NewRows([]string{"position", "id", "author_id", "name", "description", "location", "difficulty", "public", "created_at", "visited"}).
			AddRow(0, "place-a", "user-2", "Start", "", "49.2011,20.0703", 2, true, createdAt, true).
			AddRow(1, "place-b", "user-2", "End", "", "49.2506,19.9339", 3, true, createdAt, false))

	svc := NewService(mock)
	routes, err := svc.List(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(routes) != 1 {
		t.Fatalf("expected 1 route")
	}
	if len(routes[0].Places) != 2 || routes[0].Places[0].Place.ID != "place-a" {
		t.Fatalf("expected ordered places in listing, got %+v", routes[0].Places)
	}
	if routes[0].Progress != 1 {
		t.Fatalf("expected progress 1 in listing, got %d", routes[0].Progress)
	}
	if routes[0].DistanceKm <= 0 || !strings.Contains(routes[0].DirectionsURL, "google.com/maps/dir") {
		t.Fatalf("expected derived distance and directions in listing")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetRouteHidesPrivate(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT id, author_id, name, description, price, difficulty, public, created_at`).
		WithArgs("route-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "author_id", "name", "description", "price", "difficulty", "public", "created_at"}).
			AddRow("route-1", "user-2", "Hidden", "", 0.0, 1, false, time.Now()))

	svc := NewService(mock)
	if _, err := svc.Get(context.Background(), "user-1", "route-1"); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for private route of another user, got %v", err)
	}
}

func TestGetRouteMissing(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT id, author_id, name, description, price, difficulty, public, created_at`).
		WithArgs("route-x").
		WillReturnError(pgx.ErrNoRows)

	svc := NewService(mock)
	if _, err := svc.Get(context.Background(), "user-1", "route-x"); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEditRouteNotOwned(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT points FROM users`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"points"}).AddRow(200))
	mock.ExpectExec(`UPDATE routes`).
		WithArgs("route-1", "user-1", "New", "", 0.0, 2, true).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	svc := NewService(mock)
	_, err := svc.Edit(context.Background(), "user-1", "route-1", EditInput{Name: "New", Difficulty: 2, Public: true})
	if !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign route, got %v", err)
	}
}

func TestDeleteRoute(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec(`DELETE FROM routes`).
		WithArgs("route-1", "user-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	svc := NewService(mock)
	if err := svc.Delete(context.Background(), "user-1", "route-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	mock.ExpectExec(`DELETE FROM routes`).
		WithArgs("route-1", "user-2").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	if err := svc.Delete(context.Background(), "user-2", "route-1"); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLikeRouteTwice(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec(`INSERT INTO route_likes`).
		WithArgs("user-1", "route-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO route_likes`).
		WithArgs("user-1", "route-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectExec(`DELETE FROM route_likes`).
		WithArgs("user-1", "route-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM route_likes`).
		WithArgs("user-1", "route-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	svc := NewService(mock)
	if err := svc.Like(context.Background(), "user-1", "route-1"); err != nil {
		t.Fatalf("first like: %v", err)
	}
	if err := svc.Like(context.Background(), "user-1", "route-1"); !errors.Is(err, db.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate like, got %v", err)
	}
	if err := svc.Dislike(context.Background(), "user-1", "route-1"); err != nil {
		t.Fatalf("dislike: %v", err)
	}
	if err := svc.Dislike(context.Background(), "user-1", "route-1"); err != nil {
		t.Fatalf("repeated dislike should stay a no-op, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRouteCommentOwnership(t *testing.T) {
	mock := newMock(t)

	createdAt := time.Now()
	mock.ExpectQuery(`INSERT INTO route_comments`).
		WithArgs(pgxmock.AnyArg(), "route-1", "user-1", "scenic").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(createdAt, createdAt))

	svc := NewService(mock)
	comment, err := svc.AddComment(context.Background(), "user-1", "route-1", "scenic")
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}

	mock.ExpectExec(`DELETE FROM route_comments`).
		WithArgs(comment.ID, "user-2").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	if err := svc.RemoveComment(context.Background(), "user-2", comment.ID); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign comment removal, got %v", err)
	}
}

func TestRouteCommentLikeConflict(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec(`INSERT INTO route_comment_likes`).
		WithArgs("user-1", "comment-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectExec(`DELETE FROM route_comment_likes`).
		WithArgs("user-1", "comment-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	svc := NewService(mock)
	if err := svc.LikeComment(context.Background(), "user-1", "comment-1"); !errors.Is(err, db.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := svc.DislikeComment(context.Background(), "user-1", "comment-1"); err != nil {
		t.Fatalf("comment dislike should be idempotent, got %v", err)
	}
}
