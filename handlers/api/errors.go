package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"threadpost/utils"
)

// ErrorHandler maps any error reaching the boundary to a JSON response.
// AppError already carries the status and classification; anything else is a
// plain 500. Context entries (typo suggestions, forwarded upstream payloads)
// ride along as extra top-level keys.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	body := fiber.Map{"message": "Server error."}

	var appErr *utils.AppError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &appErr):
		code = appErr.Code
		body["message"] = appErr.Message
		for k, v := range appErr.Context {
			body[k] = v
		}
		if code >= 500 {
			utils.Log.Error("Request failed (%s): %v", appErr.Kind, appErr)
		} else {
			utils.Log.Debug("Request rejected (%s): %v", appErr.Kind, appErr)
		}
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		body["message"] = fiberErr.Message
	default:
		utils.Log.Error("Unclassified error: %v", err)
	}

	return c.Status(code).JSON(body)
}
