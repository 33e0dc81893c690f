package server

import (
	"studyhub/internal/featureflags"
	"studyhub/internal/models"
	"studyhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postService.GetPosts(c.UserContext(), currentUser(c))
	return respond(c, fiber.StatusOK, posts, err)
}

// GetSavedPosts handles GET /api/posts/saved
func (s *Server) GetSavedPosts(c *fiber.Ctx) error {
	posts, err := s.postService.GetSavedPosts(c.UserContext(), currentUser(c))
	return respond(c, fiber.StatusOK, posts, err)
}

// GetPostDetails handles GET /api/posts/:id
func (s *Server) GetPostDetails(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.GetPostDetails(c.UserContext(), id, currentUser(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if post == nil {
		return models.RespondWithError(c, models.NewNotFoundError("Post", id))
	}
	return models.RespondWithData(c, fiber.StatusOK, post)
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	authorID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	posts, err := s.postService.GetUserPosts(c.UserContext(), authorID, currentUser(c))
	return respond(c, fiber.StatusOK, posts, err)
}

// CreatePost handles POST /api/posts. With atomic_post_create enabled for the author the post,
// tags and attachments are written in one transaction.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req service.PostInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	userID := currentUser(c)
	create := s.postService.CreatePost
	if s.featureFlags.Enabled(featureflags.AtomicPostCreate, userID) {
		create = s.postService.CreatePostAtomic
	}

	post, err := create(c.UserContext(), userID, req)
	return respond(c, fiber.StatusCreated, post, err)
}

// TogglePostLike handles POST /api/posts/:id/like
func (s *Server) TogglePostLike(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	state, err := s.postService.TogglePostLike(c.UserContext(), id, currentUser(c))
	return respond(c, fiber.StatusOK, state, err)
}

// ToggleSavePost handles POST /api/posts/:id/save
func (s *Server) ToggleSavePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	state, err := s.postService.ToggleSavePost(c.UserContext(), id, currentUser(c))
	return respond(c, fiber.StatusOK, state, err)
}

// AddComment handles POST /api/posts/:id/comments
func (s *Server) AddComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	comment, err := s.postService.AddComment(c.UserContext(), id, currentUser(c), req.Content)
	return respond(c, fiber.StatusCreated, comment, err)
}
