package view

import (
	"context"
	"time"

	"studyhub/internal/models"
)

// EventAPI is the slice of the event façade the events page needs.
type EventAPI interface {
	GetAllEvents(ctx context.Context) ([]models.EventView, error)
	GetUserEvents(ctx context.Context, userID uint) ([]models.EventView, error)
	UpdateEventAttendance(ctx context.Context, eventID, userID uint, status models.AttendanceStatus) error
}

const EmptyEvents = "No events yet"

// EventsView pairs the event calendar with the events the viewer responded to.
type EventsView struct {
	All  *Collection[models.EventView]
	Mine *Collection[models.EventView]

	api    EventAPI
	viewer Viewer
}

func NewEventsView(api EventAPI, viewer Viewer) *EventsView {
	return &EventsView{
		All: NewCollection("all events", api.GetAllEvents),
		Mine: NewCollection("events", func(ctx context.Context) ([]models.EventView, error) {
			return api.GetUserEvents(ctx, viewer.UserID())
		}),
		api:    api,
		viewer: viewer,
	}
}

func (v *EventsView) Load(ctx context.Context) {
	_ = v.Mine.Load(ctx)
	_ = v.All.Load(ctx)
}

func byEventID(id uint) func(models.EventView) bool {
	return func(e models.EventView) bool { return e.ID == id }
}

// SetAttendance records status and copies the event into Mine with that status, replacing any
// previous entry. All is never mutated.
func (v *EventsView) SetAttendance(ctx context.Context, eventID uint, status models.AttendanceStatus) error {
	if err := v.api.UpdateEventAttendance(ctx, eventID, v.viewer.UserID(), status); err != nil {
		logFailure(ctx, "Error updating event attendance", err, "event_id", eventID)
		return err
	}
	event, ok := v.All.Find(byEventID(eventID))
	if !ok {
		return nil
	}
	event.Status = status
	v.Mine.Upsert(byEventID(eventID), event)
	return nil
}

// Upcoming returns the events in All that start after now.
func (v *EventsView) Upcoming(now time.Time) []models.EventView {
	var out []models.EventView
	for _, e := range v.All.Items() {
		if e.EventDate.After(now) {
			out = append(out, e)
		}
	}
	return out
}

func (v *EventsView) EmptyMessage() string {
	if v.Mine.Empty() {
		return EmptyEvents
	}
	return ""
}
