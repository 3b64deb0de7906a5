package model

import "time"

// Student is an identity record created when a student first joins a class
// or is registered explicitly. Students are never deleted in normal flow.
type Student struct {
	ID       int       `json:"id"`
	FullName string    `json:"full_name"`
	Email    *string   `json:"email,omitempty"`
	JoinedAt time.Time `json:"joined_at"`
}

// Enrollment links one student to one class. At most one enrollment exists
// per (student, class) pair.
type Enrollment struct {
	ID        int       `json:"id"`
	StudentID int       `json:"student_id"`
	ClassID   int       `json:"class_id"`
	JoinedAt  time.Time `json:"joined_at"`
}

// JoinClassRequest is the payload for joining a class with a class code.
type JoinClassRequest struct {
	FullName  string `json:"full_name" binding:"required,min=1,max=255"`
	Email     string `json:"email" binding:"omitempty,email"`
	ClassCode string `json:"class_code" binding:"required,min=4,max=10"`
}

// JoinClassResponse is returned after a successful (or repeated) join.
type JoinClassResponse struct {
	Message      string `json:"message"`
	StudentID    int    `json:"student_id"`
	ClassID      int    `json:"class_id"`
	EnrollmentID int    `json:"enrollment_id"`
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// StudentLoginRequest authenticates a pre-registered student by identity.
type StudentLoginRequest struct {
	FullName string `json:"full_name" binding:"required,min=1,max=255"`
	Email    string `json:"email" binding:"required,email"`
}

// StudentLoginResponse is returned after successful student login.
type StudentLoginResponse struct {
	Token   string  `json:"token"`
	Student Student `json:"student"`
}
