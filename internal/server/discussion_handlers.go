package server

import (
	"studyhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetDiscussionForums handles GET /api/forums
func (s *Server) GetDiscussionForums(c *fiber.Ctx) error {
	forums, err := s.discussionService.GetDiscussionForums(c.UserContext())
	return respond(c, fiber.StatusOK, forums, err)
}

// CreateForum handles POST /api/forums
func (s *Server) CreateForum(c *fiber.Ctx) error {
	var req service.ForumInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	forum, err := s.discussionService.CreateForum(c.UserContext(), currentUser(c), req)
	return respond(c, fiber.StatusCreated, forum, err)
}

// GetForumTopics handles GET /api/forums/:id/topics
func (s *Server) GetForumTopics(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	topics, err := s.discussionService.GetForumTopics(c.UserContext(), id)
	return respond(c, fiber.StatusOK, topics, err)
}

// CreateDiscussionTopic handles POST /api/forums/:id/topics
func (s *Server) CreateDiscussionTopic(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.TopicInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	topic, err := s.discussionService.CreateDiscussionTopic(c.UserContext(), id, currentUser(c), req)
	return respond(c, fiber.StatusCreated, topic, err)
}

// GetTopicReplies handles GET /api/topics/:id/replies
func (s *Server) GetTopicReplies(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	replies, err := s.discussionService.GetTopicReplies(c.UserContext(), id)
	return respond(c, fiber.StatusOK, replies, err)
}

// CreateTopicReply handles POST /api/topics/:id/replies
func (s *Server) CreateTopicReply(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.ReplyInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	reply, err := s.discussionService.CreateTopicReply(c.UserContext(), id, currentUser(c), req)
	return respond(c, fiber.StatusCreated, reply, err)
}

// GetLearningResources handles GET /api/resources, filtered by ?subject= when present.
func (s *Server) GetLearningResources(c *fiber.Ctx) error {
	resources, err := s.resourceService.GetLearningResourcesBySubject(c.UserContext(), c.Query("subject"))
	return respond(c, fiber.StatusOK, resources, err)
}

// AddLearningResource handles POST /api/resources
func (s *Server) AddLearningResource(c *fiber.Ctx) error {
	var req service.ResourceInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	resource, err := s.resourceService.AddLearningResource(c.UserContext(), currentUser(c), req)
	return respond(c, fiber.StatusCreated, resource, err)
}
