package server

import (
	"studyhub/internal/models"
	"studyhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetAllCourses handles GET /api/courses
func (s *Server) GetAllCourses(c *fiber.Ctx) error {
	courses, err := s.courseService.GetAllCourses(c.UserContext())
	return respond(c, fiber.StatusOK, courses, err)
}

// GetUserCourses handles GET /api/courses/mine
func (s *Server) GetUserCourses(c *fiber.Ctx) error {
	courses, err := s.courseService.GetUserCourses(c.UserContext(), currentUser(c))
	return respond(c, fiber.StatusOK, courses, err)
}

// CreateCourse handles POST /api/courses
func (s *Server) CreateCourse(c *fiber.Ctx) error {
	var req service.CourseInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	course, err := s.courseService.CreateCourse(c.UserContext(), currentUser(c), req)
	return respond(c, fiber.StatusCreated, course, err)
}

// EnrollInCourse handles POST /api/courses/:id/enroll
func (s *Server) EnrollInCourse(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	return respond(c, fiber.StatusOK, nil, s.courseService.EnrollInCourse(c.UserContext(), id, currentUser(c)))
}

// UnenrollFromCourse handles DELETE /api/courses/:id/enroll
func (s *Server) UnenrollFromCourse(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	return respond(c, fiber.StatusOK, nil, s.courseService.UnenrollFromCourse(c.UserContext(), id, currentUser(c)))
}

// IsEnrolledInCourse handles GET /api/courses/:id/enrollment
func (s *Server) IsEnrolledInCourse(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	enrolled, err := s.courseService.IsEnrolledInCourse(c.UserContext(), id, currentUser(c))
	return respond(c, fiber.StatusOK, fiber.Map{"enrolled": enrolled}, err)
}

// GetAllEvents handles GET /api/events
func (s *Server) GetAllEvents(c *fiber.Ctx) error {
	events, err := s.eventService.GetAllEvents(c.UserContext())
	return respond(c, fiber.StatusOK, events, err)
}

// GetUserEvents handles GET /api/events/mine
func (s *Server) GetUserEvents(c *fiber.Ctx) error {
	events, err := s.eventService.GetUserEvents(c.UserContext(), currentUser(c))
	return respond(c, fiber.StatusOK, events, err)
}

// CreateEvent handles POST /api/events
func (s *Server) CreateEvent(c *fiber.Ctx) error {
	var req service.EventInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	event, err := s.eventService.CreateEvent(c.UserContext(), currentUser(c), req)
	return respond(c, fiber.StatusCreated, event, err)
}

// UpdateEventAttendance handles PUT /api/events/:id/attendance
func (s *Server) UpdateEventAttendance(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Status models.AttendanceStatus `json:"status"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	err = s.eventService.UpdateEventAttendance(c.UserContext(), id, currentUser(c), req.Status)
	return respond(c, fiber.StatusOK, fiber.Map{"status": req.Status}, err)
}

// GetEventAttendanceStatus handles GET /api/events/:id/attendance
func (s *Server) GetEventAttendanceStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	status, err := s.eventService.GetEventAttendanceStatus(c.UserContext(), id, currentUser(c))
	return respond(c, fiber.StatusOK, fiber.Map{"status": status}, err)
}

// GetStudyGroups handles GET /api/groups
func (s *Server) GetStudyGroups(c *fiber.Ctx) error {
	groups, err := s.groupService.GetStudyGroups(c.UserContext(), currentUser(c))
	return respond(c, fiber.StatusOK, groups, err)
}

// CreateGroup handles POST /api/groups
func (s *Server) CreateGroup(c *fiber.Ctx) error {
	var req service.GroupInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	group, err := s.groupService.CreateGroup(c.UserContext(), currentUser(c), req)
	return respond(c, fiber.StatusCreated, group, err)
}

// JoinGroup handles POST /api/groups/:id/join
func (s *Server) JoinGroup(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	group, err := s.groupService.JoinGroup(c.UserContext(), id, currentUser(c))
	return respond(c, fiber.StatusOK, group, err)
}
