package handlers

import (
	"errors"
	"log/slog"

	"github.com/attunelab/welfare-archive/internal/storage"
	"github.com/gofiber/fiber/v2"
)

// failStorage maps storage errors onto the response taxonomy: validation
// rejections are 400, direct-fetch misses 404, transient backend failures
// 503, anything else 500.
func failStorage(c *fiber.Ctx, err error) error {
	var validation *storage.ValidationError
	switch {
	case errors.As(err, &validation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "ValidationError",
			"message": validation.Error(),
		})
	case errors.Is(err, storage.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "NotFound",
			"message": "record not found",
		})
	case errors.Is(err, storage.ErrStorageUnavailable):
		slog.Error("storage unavailable", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"error":   "StorageUnavailable",
			"message": "storage temporarily unavailable",
		})
	default:
		slog.Error("unexpected handler error", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Internal",
			"message": "internal server error",
		})
	}
}

func failBadRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   "ValidationError",
		"message": message,
	})
}
