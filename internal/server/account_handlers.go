package server

import (
	"io"

	"studyhub/internal/models"
	"studyhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUserNotifications handles GET /api/notifications
func (s *Server) GetUserNotifications(c *fiber.Ctx) error {
	list, err := s.notificationService.GetUserNotifications(c.UserContext(), currentUser(c))
	return respond(c, fiber.StatusOK, list, err)
}

// GetUnreadNotificationCount handles GET /api/notifications/unread-count
func (s *Server) GetUnreadNotificationCount(c *fiber.Ctx) error {
	count, err := s.notificationService.GetUnreadNotificationCount(c.UserContext(), currentUser(c))
	return respond(c, fiber.StatusOK, fiber.Map{"count": count}, err)
}

// MarkNotificationAsRead handles POST /api/notifications/:id/read
func (s *Server) MarkNotificationAsRead(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	return respond(c, fiber.StatusOK, nil, s.notificationService.MarkNotificationAsRead(c.UserContext(), id, currentUser(c)))
}

// MarkAllNotificationsAsRead handles POST /api/notifications/read-all
func (s *Server) MarkAllNotificationsAsRead(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, nil, s.notificationService.MarkAllNotificationsAsRead(c.UserContext(), currentUser(c)))
}

// UploadFile handles POST /api/uploads/:bucket with a multipart "file" and an optional "folder".
func (s *Server) UploadFile(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithError(c, models.NewValidationError("No file uploaded"))
	}

	src, err := file.Open()
	if err != nil {
		return models.RespondWithError(c, models.NewValidationError("Unable to read uploaded file"))
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return models.RespondWithError(c, models.NewValidationError("Unable to read uploaded file"))
	}

	result, err := s.uploadService.UploadFile(c.UserContext(), service.FileInput{
		Name:    file.Filename,
		Content: content,
	}, c.Params("bucket"), c.FormValue("folder"))
	return respond(c, fiber.StatusCreated, result, err)
}

// GetProfile handles GET /api/profile
func (s *Server) GetProfile(c *fiber.Ctx) error {
	profile, err := s.profileService.GetProfile(c.UserContext(), currentUser(c))
	return respond(c, fiber.StatusOK, profile, err)
}

// UpdateProfile handles PUT /api/profile. Omitted fields are left unchanged.
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var patch models.ProfilePatch
	if err := parseBody(c, &patch); err != nil {
		return nil
	}
	profile, err := s.profileService.UpdateProfile(c.UserContext(), currentUser(c), patch)
	return respond(c, fiber.StatusOK, profile, err)
}

// GetFeatureFlags returns the configured flags and their value for the caller.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return models.RespondWithData(c, fiber.StatusOK, fiber.Map{
		"names":     s.featureFlags.Names(),
		"evaluated": s.featureFlags.Snapshot(currentUser(c)),
	})
}
