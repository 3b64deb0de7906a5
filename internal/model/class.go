package model

import "time"

// Class is a joinable classroom identified by a short share code.
type Class struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Active    bool      `json:"active"`
	TeacherID *int      `json:"teacher_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateClassRequest is the payload for creating a class.
type CreateClassRequest struct {
	Name string `json:"name" binding:"required,min=1,max=120"`
}

// UpdateClassRequest toggles a class's joinability or renames it.
type UpdateClassRequest struct {
	Name   string `json:"name" binding:"omitempty,min=1,max=120"`
	Active *bool  `json:"active" binding:"omitempty"`
}
