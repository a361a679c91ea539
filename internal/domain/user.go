package domain

import "time"

type Role string

const (
	RoleCitizen   Role = "citizen"
	RoleParalegal Role = "paralegal"
	RoleAdmin     Role = "admin"
)

type User struct {
	ID                string    `json:"id"`
	FullName          string    `json:"full_name"`
	Email             string    `json:"email"`
	ProfilePictureURL string    `json:"profile_picture_url,omitempty"`
	Role              Role      `json:"role"`
	CreatedAt         time.Time `json:"created_at"`
}
