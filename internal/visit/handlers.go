package visit

import (
	"errors"

	"backend-traillog/internal/auth"
	"backend-traillog/internal/db"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	// The QR image on a place encodes this URL, so redemption is a GET.
	r.Get("/qr/:value", authMiddleware, func(c *fiber.Ctx) error {
		visit, err := svc.Redeem(c.Context(), auth.CallerID(c), c.Params("value"))
		if err != nil {
			switch {
			case errors.Is(err, db.ErrNotFound):
				return fiber.NewError(fiber.StatusNotFound, "unknown qr code")
			case errors.Is(err, db.ErrConflict):
				return fiber.NewError(fiber.StatusConflict, "already visited")
			default:
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			}
		}
		return c.Status(fiber.StatusCreated).JSON(visit)
	})

	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		visited, err := svc.ListVisited(c.Context(), auth.CallerID(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(visited)
	})
}
