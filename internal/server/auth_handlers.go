package server

import (
	"studyhub/internal/identity"
	"studyhub/internal/middleware"
	"studyhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// sessionResponse is the payload of every auth endpoint that yields a session.
type sessionResponse struct {
	Session *identity.Session `json:"session"`
	Profile *models.Profile   `json:"profile"`
}

// Signup handles POST /api/auth/signup
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
		Username string `json:"username"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	ctx := c.UserContext()
	session, err := s.provider.SignUp(ctx, req.Email, req.Password, identity.SignUpData{
		FullName: req.FullName,
		Username: req.Username,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusCreated, s.withProfile(c, session))
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	session, err := s.provider.SignInWithPassword(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, s.withProfile(c, session))
}

// Logout handles POST /api/auth/logout. Requests without a token succeed without doing anything.
func (s *Server) Logout(c *fiber.Ctx) error {
	token, ok := middleware.BearerToken(c)
	if !ok {
		return models.RespondWithData(c, fiber.StatusOK, nil)
	}
	if err := s.provider.SignOut(c.UserContext(), token); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, nil)
}

// GetSession handles GET /api/auth/session. Anonymous callers get a null session.
func (s *Server) GetSession(c *fiber.Ctx) error {
	token, _ := middleware.BearerToken(c)
	session, err := s.provider.GetSession(c.UserContext(), token)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if session == nil {
		return models.RespondWithData(c, fiber.StatusOK, sessionResponse{})
	}
	return models.RespondWithData(c, fiber.StatusOK, s.withProfile(c, session))
}

// UpdatePassword handles PUT /api/auth/password
func (s *Server) UpdatePassword(c *fiber.Ctx) error {
	var req struct {
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	token, _ := middleware.BearerToken(c)
	if err := s.provider.UpdatePassword(c.UserContext(), token, req.Password); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, nil)
}

// withProfile attaches the session user's profile. A missing profile is logged and left null.
func (s *Server) withProfile(c *fiber.Ctx, session *identity.Session) sessionResponse {
	out := sessionResponse{Session: session}
	profile, err := s.profileService.GetProfile(c.UserContext(), session.User.ID)
	if err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "Error fetching profile", "user_id", session.User.ID, "error", err)
		return out
	}
	out.Profile = profile
	return out
}
