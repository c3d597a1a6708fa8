package tracking

import (
	"errors"

	"backend-rollpath/internal/engine"

	"github.com/gofiber/fiber/v2"
)

// All session routes are bearer-authenticated and scoped to the rider in the
// token: one rider can never read or drive another rider's session.
func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/sessions", authMiddleware, func(c *fiber.Ctx) error {
		var req StartRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		rid, err := riderID(c)
		if err != nil {
			return err
		}
		session, err := svc.Start(c.Context(), rid, req)
		if err != nil {
			return statusError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(session)
	})

	r.Post("/sessions/:id/location", authMiddleware, func(c *fiber.Ctx) error {
		var req LocationRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		rid, err := riderID(c)
		if err != nil {
			return err
		}
		out, err := svc.AddLocation(c.Context(), rid, c.Params("id"), req)
		if err != nil {
			return statusError(err)
		}
		return c.JSON(out)
	})

	r.Post("/sessions/:id/inertial", authMiddleware, func(c *fiber.Ctx) error {
		var req InertialRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		rid, err := riderID(c)
		if err != nil {
			return err
		}
		if err := svc.AddInertial(c.Context(), rid, c.Params("id"), req); err != nil {
			return statusError(err)
		}
		return c.SendStatus(fiber.StatusAccepted)
	})

	r.Post("/sessions/:id/ramp", authMiddleware, func(c *fiber.Ctx) error {
		var req RampRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		rid, err := riderID(c)
		if err != nil {
			return err
		}
		if err := svc.AddRamp(c.Context(), rid, c.Params("id"), req); err != nil {
			return statusError(err)
		}
		return c.SendStatus(fiber.StatusAccepted)
	})

	r.Post("/sessions/:id/pause", authMiddleware, func(c *fiber.Ctx) error {
		rid, err := riderID(c)
		if err != nil {
			return err
		}
		session, err := svc.Pause(rid, c.Params("id"))
		if err != nil {
			return statusError(err)
		}
		return c.JSON(session)
	})

	r.Post("/sessions/:id/resume", authMiddleware, func(c *fiber.Ctx) error {
		rid, err := riderID(c)
		if err != nil {
			return err
		}
		session, err := svc.Resume(rid, c.Params("id"))
		if err != nil {
			return statusError(err)
		}
		return c.JSON(session)
	})

	r.Post("/sessions/:id/stop", authMiddleware, func(c *fiber.Ctx) error {
		rid, err := riderID(c)
		if err != nil {
			return err
		}
		summary, err := svc.Stop(c.Context(), rid, c.Params("id"))
		if err != nil {
			return statusError(err)
		}
		return c.JSON(summary)
	})

	r.Get("/sessions/:id", authMiddleware, func(c *fiber.Ctx) error {
		rid, err := riderID(c)
		if err != nil {
			return err
		}
		progress, err := svc.Progress(rid, c.Params("id"))
		if err != nil {
			return statusError(err)
		}
		return c.JSON(progress)
	})
}

func riderID(c *fiber.Ctx) (string, error) {
	rid, _ := c.Locals("rider_id").(string)
	if rid == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "rider_id missing")
	}
	return rid, nil
}

func statusError(err error) error {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrPermissionDenied):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, engine.ErrBadTransition):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrBadSensor):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
