package user

import (
	"strings"
	"time"
)

type User struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"first_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	MobileNumber string    `json:"mobile_number"`
	ProfileImage string    `json:"profileImage"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// SignupRequest carries the multipart form fields of POST /api/auth/signup.
// The optional profile image travels as a separate file part.
type SignupRequest struct {
	FirstName    string `form:"first_name"`
	Email        string `form:"email_id"`
	Password     string `form:"password"`
	MobileNumber string `form:"mobile_number"`
}

// Normalize applies the single email policy: trimmed, lowercased. The name
// and phone are trimmed only.
func (r *SignupRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.Email = NormalizeEmail(r.Email)
	r.MobileNumber = strings.TrimSpace(r.MobileNumber)
}

func (r *SignupRequest) Complete() bool {
	return r.FirstName != "" && r.Email != "" && r.Password != "" && r.MobileNumber != ""
}

type LoginRequest struct {
	Email    string `json:"email_id" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Public is the sanitized view returned by login.
type Public struct {
	FirstName    string `json:"first_name"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobile_number"`
	ProfileImage string `json:"profileImage"`
}

func (u User) Public() Public {
	return Public{
		FirstName:    u.FirstName,
		Email:        u.Email,
		MobileNumber: u.MobileNumber,
		ProfileImage: u.ProfileImage,
	}
}
