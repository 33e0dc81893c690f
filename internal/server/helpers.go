package server

import (
	"errors"
	"strings"
	"unicode"

	"studyhub/internal/middleware"
	"studyhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten means a helper already committed the response.
// Handlers must return nil so the ErrorHandler does not overwrite it.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter as a positive uint.
// On failure it writes a 400 envelope and returns errResponseWritten.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam turns a route param name into a label: "id" -> "ID", "forumId" -> "forum ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		return strings.ToLower(strings.Join(splitCamel(param[:len(param)-2]), " ")) + " ID"
	}
	return param
}

func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	return append(words, s[start:])
}

// parseBody decodes the JSON body into dest.
// On failure it writes a 400 envelope and returns errResponseWritten.
func parseBody(c *fiber.Ctx, dest any) error {
	if err := c.BodyParser(dest); err != nil {
		_ = models.RespondWithError(c, models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// respond writes data with status, or the error envelope when err is set.
func respond(c *fiber.Ctx, status int, data any, err error) error {
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondWithData(c, status, data)
}

func currentUser(c *fiber.Ctx) uint {
	return middleware.CurrentUserID(c)
}
