package service

import (
	"context"
	"strings"
	"time"

	"studyhub/internal/cache"
	"studyhub/internal/models"
	"studyhub/internal/observability"
	"studyhub/internal/repository"
	"studyhub/internal/validation"
)

type EventService struct {
	repo repository.EventRepository
}

// EventInput is the payload for creating an event.
type EventInput struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=5000"`
	EventDate   time.Time `json:"event_date" validate:"required"`
	Location    string    `json:"location" validate:"max=300"`
}

func NewEventService(repo repository.EventRepository) *EventService {
	return &EventService{repo: repo}
}

// GetUserEvents returns the events userID is attending or interested in, soonest first.
func (s *EventService) GetUserEvents(ctx context.Context, userID uint) (_ []models.EventView, err error) {
	defer observability.TrackOperation("get_user_events")(&err)
	if err := requireUser(userID); err != nil {
		return []models.EventView{}, err
	}
	out, err := s.repo.GetUserEvents(ctx, userID)
	if err != nil {
		return nil, fail(ctx, "Error fetching events", err)
	}
	return out, nil
}

// GetAllEvents returns every event, soonest first, each with status not_attending.
func (s *EventService) GetAllEvents(ctx context.Context) (_ []models.EventView, err error) {
	defer observability.TrackOperation("get_all_events")(&err)
	var out []models.EventView
	err = cache.Aside(ctx, cache.EventCalendarKey, &out, cache.EventCalendarTTL, func() error {
		var err error
		out, err = s.repo.GetAll(ctx)
		return err
	})
	if err != nil {
		return nil, fail(ctx, "Error fetching all events", err)
	}
	if out == nil {
		out = []models.EventView{}
	}
	// The catalog carries no viewer; per-user status comes from GetEventAttendanceStatus.
	for i := range out {
		out[i].Status = models.StatusNotAttending
	}
	return out, nil
}

// CreateEvent schedules an event organized by organizerID.
func (s *EventService) CreateEvent(ctx context.Context, organizerID uint, in EventInput) (_ *models.Event, err error) {
	defer observability.TrackOperation("create_event")(&err)
	if err := requireUser(organizerID); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	event := &models.Event{
		OrganizerID: organizerID,
		Title:       in.Title,
		Description: in.Description,
		EventDate:   in.EventDate,
		Location:    in.Location,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, fail(ctx, "Error creating event", err)
	}
	cache.Invalidate(ctx, cache.EventCalendarKey)
	return event, nil
}

// UpdateEventAttendance records status for (eventID, userID). Repeating a call leaves the same single row.
func (s *EventService) UpdateEventAttendance(ctx context.Context, eventID, userID uint, status models.AttendanceStatus) (err error) {
	defer observability.TrackOperation("update_event_attendance")(&err)
	if err := requireUser(userID); err != nil {
		return err
	}
	if !status.Valid() {
		return models.NewValidationError("Invalid attendance status")
	}
	if err := s.repo.UpsertAttendance(ctx, eventID, userID, status); err != nil {
		return fail(ctx, "Error updating event attendance", err)
	}
	return nil
}

// GetEventAttendanceStatus returns userID's status, defaulting to not_attending.
func (s *EventService) GetEventAttendanceStatus(ctx context.Context, eventID, userID uint) (_ models.AttendanceStatus, err error) {
	defer observability.TrackOperation("get_event_attendance_status")(&err)
	if err := requireUser(userID); err != nil {
		return models.StatusNotAttending, err
	}
	attendance, err := s.repo.FindAttendance(ctx, eventID, userID)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return models.StatusNotAttending, nil
		}
		return models.StatusNotAttending, fail(ctx, "Error checking attendance status", err)
	}
	return attendance.Status, nil
}
