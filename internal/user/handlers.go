package user

import (
	"errors"

	"backend-traillog/internal/auth"
	"backend-traillog/internal/db"
	"backend-traillog/internal/place"
	"backend-traillog/internal/route"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, places *place.Service, routes *route.Service, authMiddleware fiber.Handler) {
	r.Get("/me", authMiddleware, func(c *fiber.Ctx) error {
		profile, err := svc.Me(c.Context(), auth.CallerID(c))
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(profile)
	})

	r.Get("/me/places", authMiddleware, func(c *fiber.Ctx) error {
		own, err := places.ListByAuthor(c.Context(), auth.CallerID(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(own)
	})

	r.Get("/me/routes", authMiddleware, func(c *fiber.Ctx) error {
		own, err := routes.ListByAuthor(c.Context(), auth.CallerID(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(own)
	})

	r.Get("/me/liked/places", authMiddleware, func(c *fiber.Ctx) error {
		liked, err := places.ListLiked(c.Context(), auth.CallerID(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(liked)
	})

	r.Get("/me/liked/routes", authMiddleware, func(c *fiber.Ctx) error {
		liked, err := routes.ListLiked(c.Context(), auth.CallerID(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(liked)
	})
}
