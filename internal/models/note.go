package models

import "time"

type Note struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Subject    string    `json:"subject,omitempty"`
	GradeLevel string    `json:"grade_level,omitempty"`
	IsPublic   bool      `json:"is_public"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type CreateNoteRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	Subject    string `json:"subject,omitempty"`
	GradeLevel string `json:"grade_level,omitempty"`
	IsPublic   bool   `json:"is_public"`
}
