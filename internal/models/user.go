package models

import "time"

type Role string

const (
	RoleUser    Role = "user"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

type User struct {
	ID                 int64     `json:"id"`
	Email              string    `json:"email"`
	Name               string    `json:"name"`
	Password           string    `json:"-"`
	Role               Role      `json:"role"`
	XP                 int64     `json:"xp"`
	Coins              int64     `json:"coins"`
	Level              int       `json:"level"`
	Streak             int       `json:"streak"`
	StreakFreezeTokens int       `json:"streak_freeze_tokens"`
	FreeExpiresAt      time.Time `json:"free_expires_at"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	LastSignedIn       time.Time `json:"last_signed_in"`
}

type StudentProfile struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	GradeLevel string    `json:"grade_level"`
	County     string    `json:"county,omitempty"`
	School     string    `json:"school,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type UpsertProfileRequest struct {
	GradeLevel string `json:"grade_level"`
	County     string `json:"county,omitempty"`
	School     string `json:"school,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
