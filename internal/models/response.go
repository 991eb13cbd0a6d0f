package models

import "github.com/gofiber/fiber/v2"

// APIResponse is the uniform success envelope returned by every endpoint.
type APIResponse struct {
	StatusCode int    `json:"statusCode"`
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
}

// Respond writes the standard success envelope with the given status.
func Respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(APIResponse{
		StatusCode: status,
		Success:    status < 400,
		Message:    message,
		Data:       data,
	})
}
