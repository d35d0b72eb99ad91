package server

import (
	"errors"
	"strconv"

	"bullpen/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten signals that a helper already wrote an error response
// to the client, so the caller should return nil.
var errResponseWritten = errors.New("response already written")

const (
	defaultPaginationLimit = 50
	maxPaginationLimit     = 100
)

// parseID parses an unsigned integer route parameter. On failure it writes a
// 400 response and returns errResponseWritten.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	raw := c.Params(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+param+" parameter"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parseLimit extracts the limit query parameter with sane bounds.
func parseLimit(c *fiber.Ctx) int {
	limit := c.QueryInt("limit", defaultPaginationLimit)
	if limit <= 0 {
		limit = defaultPaginationLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}
	return limit
}
