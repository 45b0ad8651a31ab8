package http

import "github.com/gofiber/fiber/v2"

// errorResponse is the error envelope the map UI expects:
// {"status":"error","message":"..."}.
type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// errBadRequest returns a 400 error: the request could not produce a route
// (missing fields, unresolvable location, insufficient route data).
func errBadRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Status: "error", Message: msg})
}

// errInternal returns a 500 error for unhandled failures.
func errInternal(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Status: "error", Message: msg})
}
