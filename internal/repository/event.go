package repository

import (
	"context"
	"fmt"

	"studyhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventRepository defines the interface for events and attendance
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	// GetAll returns every event, soonest first.
	GetAll(ctx context.Context) ([]models.EventView, error)
	// GetUserEvents returns the events userID is attending or interested in, soonest first.
	GetUserEvents(ctx context.Context, userID uint) ([]models.EventView, error)
	FindAttendance(ctx context.Context, eventID, userID uint) (*models.EventAttendee, error)
	// UpsertAttendance leaves exactly one (event, user) row carrying status.
	UpsertAttendance(ctx context.Context, eventID, userID uint, status models.AttendanceStatus) error
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Omit("Organizer").Create(event).Error
}

const eventColumns = "events.id, events.title, events.description, events.event_date, events.location, " +
	"events.created_at, events.organizer_id, COALESCE(profiles.full_name, '" + models.UnknownOrganizer + "') AS organizer_name"

func (r *eventRepository) GetAll(ctx context.Context) ([]models.EventView, error) {
	events := []models.EventView{}
	err := r.db.WithContext(ctx).
		Table("events").
		Select(eventColumns+", ? AS status", models.StatusNotAttending).
		Joins("LEFT JOIN profiles ON profiles.id = events.organizer_id").
		Order("events.event_date ASC, events.id ASC").
		Scan(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) GetUserEvents(ctx context.Context, userID uint) ([]models.EventView, error) {
	events := []models.EventView{}
	err := r.db.WithContext(ctx).
		Table("events").
		Select(eventColumns+", event_attendees.status AS status").
		Joins("LEFT JOIN profiles ON profiles.id = events.organizer_id").
		Joins("JOIN event_attendees ON event_attendees.event_id = events.id").
		Where("event_attendees.user_id = ? AND event_attendees.status <> ?", userID, models.StatusNotAttending).
		Order("events.event_date ASC, events.id ASC").
		Scan(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) FindAttendance(ctx context.Context, eventID, userID uint) (*models.EventAttendee, error) {
	var attendee models.EventAttendee
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		First(&attendee).Error
	if err != nil {
		return nil, notFound(err, "Attendance", fmt.Sprintf("%d/%d", eventID, userID))
	}
	return &attendee, nil
}

func (r *eventRepository) UpsertAttendance(ctx context.Context, eventID, userID uint, status models.AttendanceStatus) error {
	row := models.EventAttendee{EventID: eventID, UserID: userID, Status: status}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(&row).Error
}
