package models

import "time"

// AttendanceStatus is a user's declared intent for an event.
type AttendanceStatus string

const (
	StatusAttending    AttendanceStatus = "attending"
	StatusInterested   AttendanceStatus = "interested"
	StatusNotAttending AttendanceStatus = "not_attending"
)

// Valid reports whether s is a known attendance status.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusAttending, StatusInterested, StatusNotAttending:
		return true
	}
	return false
}

// Event is a scheduled campus event.
type Event struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrganizerID uint      `gorm:"not null;index" json:"organizer_id"`
	Organizer   *Profile  `gorm:"foreignKey:OrganizerID" json:"-"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	EventDate   time.Time `gorm:"index;not null" json:"event_date"`
	Location    string    `json:"location"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EventAttendee holds at most one row per (event, user).
type EventAttendee struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	EventID   uint             `gorm:"not null;uniqueIndex:idx_attendees_event_user" json:"event_id"`
	UserID    uint             `gorm:"not null;uniqueIndex:idx_attendees_event_user;index" json:"user_id"`
	Status    AttendanceStatus `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// EventView is an event joined with its organizer and the viewer's status.
type EventView struct {
	ID            uint             `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	EventDate     time.Time        `json:"event_date"`
	Location      string           `json:"location"`
	CreatedAt     time.Time        `json:"created_at"`
	OrganizerID   uint             `json:"organizer_id"`
	OrganizerName string           `json:"organizer_name"`
	Status        AttendanceStatus `json:"status"`
}
