package place

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
		if req.Name == "" || req.Location == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name and location required")
		}
		place, err := svc.Create(c.Context(), auth.CallerID(c), req)
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(place)
	})

	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		places, err := svc.List(c.Context(), auth.CallerID(c))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(places)
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		place, err := svc.Get(c.Context(), auth.CallerID(c), c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(place)
	})

	r.Put("/:id", authMiddleware, func(c *fiber.Ctx) error {
		var req EditInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		place, err := svc.Edit(c.Context(), auth.CallerID(c), c.Params("id"), req)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(place)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), auth.CallerID(c), c.Params("id")); err != nil {
			return httpError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/:id/photos", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			URL string `json:"url"`
		}
		if err := c.BodyParser(&body); err != nil || body.URL == "" {
			return fiber.NewError(fiber.StatusBadRequest, "url required")
		}
		photo, err := svc.AddPhoto(c.Context(), auth.CallerID(c), c.Params("id"), body.URL)
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(photo)
	})

	r.Delete("/:id/photos/:photoId", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.RemovePhoto(c.Context(), auth.CallerID(c), c.Params("id"), c.Params("photoId")); err != nil {
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

	r.Post("/:id/qrcodes", authMiddleware, func(c *fiber.Ctx) error {
		qr, err := svc.GenerateQRCode(c.Context(), auth.CallerID(c), c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(qr)
	})

	r.Get("/:id/qrcodes", authMiddleware, func(c *fiber.Ctx) error {
		codes, err := svc.QRCodes(c.Context(), auth.CallerID(c), c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(codes)
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
