package server

import (
	"errors"
	"strconv"

	"jotly/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPage     = 1
	defaultPageSize = 5
	maxPageSize     = 100
)

// errResponseWritten signals that the helper already wrote the error response
// and the handler should just return nil.
var errResponseWritten = errors.New("response already written")

// parsePagination reads page/limit query params, applying defaults and the
// page-size cap. Non-numeric or non-positive values fall back to defaults.
func parsePagination(c *fiber.Ctx) (page, limit int) {
	page = c.QueryInt("page", defaultPage)
	if page < 1 {
		page = defaultPage
	}
	limit = c.QueryInt("limit", defaultPageSize)
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

// parseID reads the :id route param as a uint. On failure it writes the 400
// response itself and returns errResponseWritten.
func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		if respErr := models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid blog ID")); respErr != nil {
			return 0, respErr
		}
		return 0, errResponseWritten
	}
	return uint(id), nil
}
