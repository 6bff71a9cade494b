package route

import (
	"errors"

	"backend-traillog/internal/auth"
	"backend-traillog/internal/db"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req CreateInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name required")
		}
		if len(req.Places) < 2 {
			return fiber.NewError(fiber.StatusBadRequest, "at least 2 places required")
		}
		route, err := svc.Create(c.Context(), auth.CallerID(c), req)
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(route)
	})

	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		routes, err := svc.List(c.Context(), auth.CallerID(c))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(routes)
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		route, err := svc.Get(c.Context(), auth.CallerID(c), c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(route)
	})

	r.Put("/:id", authMiddleware, func(c *fiber.Ctx) error {
		var req EditInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		route, err := svc.Edit(c.Context(), auth.CallerID(c), c.Params("id"), req)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(route)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), auth.CallerID(c), c.Params("id")); err != nil {
			return httpError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/:id/like", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Like(c.Context(), auth.CallerID(c), c.Params("id")); err != nil {
			return httpError(err)
		}
		return c.SendStatus(fiber.StatusCreated)
	})

	r.Delete("/:id/like", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Dislike(c.Context(), auth.CallerID(c), c.Params("id")); err != nil {
			return httpError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/:id/comments", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			Body string `json:"body"`
		}
		if err := c.BodyParser(&body); err != nil || body.Body == "" {
			return fiber.NewError(fiber.StatusBadRequest, "body required")
		}
		comment, err := svc.AddComment(c.Context(), auth.CallerID(c), c.Params("id"), body.Body)
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(comment)
	})

	r.Put("/comments/:commentId", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			Body string `json:"body"`
		}
		if err := c.BodyParser(&body); err != nil || body.Body == "" {
			return fiber.NewError(fiber.StatusBadRequest, "body required")
		}
		if err := svc.EditComment(c.Context(), auth.CallerID(c), c.Params("commentId"), body.Body); err != nil {
			return httpError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Delete("/comments/:commentId", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.RemoveComment(c.Context(), auth.CallerID(c), c.Params("commentId")); err != nil {
			return httpError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/comments/:commentId/like", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.LikeComment(c.Context(), auth.CallerID(c), c.Params("commentId")); err != nil {
			return httpError(err)
		}
		return c.SendStatus(fiber.StatusCreated)
	})

	r.Delete("/comments/:commentId/like", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.DislikeComment(c.Context(), auth.CallerID(c), c.Params("commentId")); err != nil {
			return httpError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func httpError(err error) error {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "not found")
	case errors.Is(err, db.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, "conflict")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
