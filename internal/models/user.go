package models

import "time"

// Fallback display names used when a joined profile is missing.
const (
	UnknownUser       = "Unknown User"
	UnknownInstructor = "Unknown Instructor"
	UnknownOrganizer  = "Unknown Organizer"
	UnknownAuthor     = "Unknown Author"
)

// User is the identity row behind a session.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile is the public projection of a user, one-to-one with User.
type Profile struct {
	ID         uint      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Username   string    `gorm:"uniqueIndex;not null" json:"username"`
	FullName   string    `json:"full_name"`
	Department string    `json:"department"`
	Bio        string    `gorm:"type:text" json:"bio"`
	AvatarURL  string    `json:"avatar_url"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ProfilePatch carries a partial profile update. Nil fields are left untouched.
type ProfilePatch struct {
	Username   *string `json:"username,omitempty" validate:"omitempty,min=3,max=30"`
	FullName   *string `json:"full_name,omitempty" validate:"omitempty,max=120"`
	Department *string `json:"department,omitempty" validate:"omitempty,max=120"`
	Bio        *string `json:"bio,omitempty" validate:"omitempty,max=2000"`
	AvatarURL  *string `json:"avatar_url,omitempty" validate:"omitempty,max=2048"`
}

// Updates returns the column map for the non-nil fields.
func (p ProfilePatch) Updates() map[string]any {
	out := map[string]any{}
	if p.Username != nil {
		out["username"] = *p.Username
	}
	if p.FullName != nil {
		out["full_name"] = *p.FullName
	}
	if p.Department != nil {
		out["department"] = *p.Department
	}
	if p.Bio != nil {
		out["bio"] = *p.Bio
	}
	if p.AvatarURL != nil {
		out["avatar_url"] = *p.AvatarURL
	}
	return out
}

// Apply merges the patch into a copy of profile.
func (p ProfilePatch) Apply(profile Profile) Profile {
	if p.Username != nil {
		profile.Username = *p.Username
	}
	if p.FullName != nil {
		profile.FullName = *p.FullName
	}
	if p.Department != nil {
		profile.Department = *p.Department
	}
	if p.Bio != nil {
		profile.Bio = *p.Bio
	}
	if p.AvatarURL != nil {
		profile.AvatarURL = *p.AvatarURL
	}
	return profile
}
