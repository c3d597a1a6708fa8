package journeys

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		riderID, _ := c.Locals("rider_id").(string)
		if riderID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "rider_id missing")
		}
		list, err := svc.List(c.Context(), riderID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(list)
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		detail, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			if errors.Is(err, ErrJourneyNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "journey not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(detail)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), c.Params("id")); err != nil {
			if errors.Is(err, ErrJourneyNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "journey not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
