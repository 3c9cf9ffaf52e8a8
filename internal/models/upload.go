package models

import "time"

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

type Upload struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	FileURL     string     `json:"file_url"`
	FileType    string     `json:"file_type,omitempty"`
	FileSize    int64      `json:"file_size,omitempty"`
	Subject     string     `json:"subject,omitempty"`
	Topic       string     `json:"topic,omitempty"`
	GradeLevel  string     `json:"grade_level,omitempty"`
	Visibility  Visibility `json:"visibility"`
	Tags        []string   `json:"tags,omitempty"`
	Views       int        `json:"views"`
	Likes       int        `json:"likes"`
	Downloads   int        `json:"downloads"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type CreateUploadRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	FileURL     string     `json:"file_url"`
	FileType    string     `json:"file_type,omitempty"`
	FileSize    int64      `json:"file_size,omitempty"`
	Subject     string     `json:"subject,omitempty"`
	Topic       string     `json:"topic,omitempty"`
	GradeLevel  string     `json:"grade_level,omitempty"`
	Visibility  Visibility `json:"visibility,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

// UpdateUploadRequest carries only the fields the owner may change;
// nil pointers leave the stored value untouched.
type UpdateUploadRequest struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Subject     *string     `json:"subject,omitempty"`
	Topic       *string     `json:"topic,omitempty"`
	GradeLevel  *string     `json:"grade_level,omitempty"`
	Visibility  *Visibility `json:"visibility,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
}

type ToggleLikeResponse struct {
	Liked bool `json:"liked"`
}
