package domain

import "time"

// DefaultTagColor is the display color given to tags created without one.
const DefaultTagColor = "#3B82F6"

// User is a team member who creates, owns, or is assigned work.
// Users are never deleted once created.
type User struct {
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name"`            // Unique display name
	Email     string    `json:"email,omitempty"` // Optional
	ID        int64     `json:"id"`
}

// Project groups tasks. Archiving only hides a project from default listings.
type Project struct {
	CreatedAt   time.Time `json:"created_at"`
	Name        string    `json:"name"` // Unique
	Description string    `json:"description,omitempty"`
	ID          int64     `json:"id"`
	Archived    bool      `json:"archived"`
}

// Tag is a colored label that can be attached to any number of tasks.
type Tag struct {
	Name  string `json:"name"`  // Unique
	Color string `json:"color"` // Display color, e.g. "#3B82F6"
	ID    int64  `json:"id"`
}
