package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/clearnightbot/clearnight/internal/config"
	"github.com/clearnightbot/clearnight/internal/store"
)

var validate = validator.New()

// ReportBuilder produces the report text for a calendar date.
type ReportBuilder interface {
	Build(ctx context.Context, date time.Time) (string, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, builder ReportBuilder, chats *store.ChatRegistry, settings *config.SettingsStore, tz *time.Location) {
	v1 := app.Group("/api/v1")

	v1.Get("/report", func(c *fiber.Ctx) error {
		date, err := resolveDate(c.Query("date", "today"), tz)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		text, err := builder.Build(c.Context(), date)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to build report")
		}

		return c.JSON(fiber.Map{
			"date":   date.Format("2006-01-02"),
			"report": text,
		})
	})

	v1.Post("/subscribers", func(c *fiber.Ctx) error {
		var req subscribeRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		added, err := chats.Add(req.ChatID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to persist subscriber")
		}

		return c.JSON(fiber.Map{
			"chat_id": req.ChatID,
			"added":   added,
		})
	})

	v1.Get("/subscribers", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"chat_ids": chats.ListAll(),
		})
	})

	v1.Get("/settings", func(c *fiber.Ctx) error {
		return c.JSON(settings.Snapshot())
	})

	v1.Put("/settings", func(c *fiber.Ctx) error {
		// Start from the current snapshot so partial bodies update only the
		// fields they name.
		next := settings.Snapshot()
		if err := c.BodyParser(&next); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := settings.Update(next); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(settings.Snapshot())
	})
}

// subscribeRequest holds the body for subscriber registration.
type subscribeRequest struct {
	ChatID int64 `json:"chat_id" validate:"required"`
}

// resolveDate accepts "today", "tomorrow", or YYYY-MM-DD in the site
// timezone.
func resolveDate(s string, tz *time.Location) (time.Time, error) {
	now := time.Now().In(tz)
	switch s {
	case "today":
		return now, nil
	case "tomorrow":
		return now.AddDate(0, 0, 1), nil
	}
	d, err := time.ParseInLocation("2006-01-02", s, tz)
	if err != nil {
		return time.Time{}, errors.New("invalid date; use today, tomorrow, or YYYY-MM-DD")
	}
	return d, nil
}
