package models

import "time"

type PastPaper struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Subject    string    `json:"subject"`
	GradeLevel string    `json:"grade_level"`
	ExamBoard  string    `json:"exam_board,omitempty"`
	Year       int       `json:"year,omitempty"`
	FileURL    string    `json:"file_url,omitempty"`
	UploadedBy *int64    `json:"uploaded_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type TutorMessageRequest struct {
	Message string `json:"message"`
}

type TutorMessageResponse struct {
	Response string `json:"response"`
}

type TutorChat struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}
