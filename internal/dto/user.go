package dto

import (
	"io"
	"time"
)

// FileUpload abstracts an uploaded file so workflows stay independent of the
// HTTP layer. Open returns a fresh reader for the file content.
type FileUpload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// CreateUserRequest is bound from the multipart create-user form. The profile
// picture file is attached by the handler after binding.
type CreateUserRequest struct {
	FirstName   string `form:"first_name" binding:"required,max=55"`
	LastName    string `form:"last_name" binding:"required,max=55"`
	Email       string `form:"email" binding:"required,email"`
	PhoneNumber string `form:"phone_number" binding:"omitempty,min=10,max=15"`
	Password    string `form:"password" binding:"required,min=8,max=100"`
	Role        string `form:"role" binding:"omitempty"`
	Gender      string `form:"gender" binding:"omitempty"`
	DateOfBirth string `form:"date_of_birth" binding:"omitempty"`
	Nationality string `form:"nationality" binding:"omitempty"`

	ProfilePic *FileUpload `form:"-"`
}

// UpdateProfileRequest carries a sparse patch: absent or blank fields leave
// the stored values unchanged.
type UpdateProfileRequest struct {
	FirstName     string `form:"first_name" binding:"omitempty,max=55"`
	LastName      string `form:"last_name" binding:"omitempty,max=55"`
	PhoneNumber   string `form:"phone_number" binding:"omitempty,min=10,max=15"`
	Gender        string `form:"gender" binding:"omitempty"`
	DateOfBirth   string `form:"date_of_birth" binding:"omitempty"`
	Address       string `form:"address" binding:"omitempty"`
	StateOfOrigin string `form:"state_of_origin" binding:"omitempty"`
	Nationality   string `form:"nationality" binding:"omitempty"`
	FacebookLink  string `form:"facebook_link" binding:"omitempty,max=2048"`
	TwitterLink   string `form:"twitter_link" binding:"omitempty,max=2048"`
	LinkedinLink  string `form:"linkedin_link" binding:"omitempty,max=2048"`
	InstagramLink string `form:"instagram_link" binding:"omitempty,max=2048"`

	ProfilePic *FileUpload `form:"-"`
}

// DeleteUsersRequest lists the user ids for a bulk deletion.
type DeleteUsersRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

type ProfileResponse struct {
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	PhoneNumber   string  `json:"phone_number,omitempty"`
	Gender        *string `json:"gender"`
	DateOfBirth   *string `json:"date_of_birth"`
	Address       string  `json:"address,omitempty"`
	StateOfOrigin string  `json:"state_of_origin,omitempty"`
	Nationality   string  `json:"nationality,omitempty"`
	ProfilePic    string  `json:"profile_pic,omitempty"`
	FacebookLink  string  `json:"facebook_link,omitempty"`
	TwitterLink   string  `json:"twitter_link,omitempty"`
	LinkedinLink  string  `json:"linkedin_link,omitempty"`
	InstagramLink string  `json:"instagram_link,omitempty"`
}

type UserResponse struct {
	ID           string           `json:"id"`
	FirstName    string           `json:"first_name"`
	LastName     string           `json:"last_name"`
	Email        string           `json:"email"`
	PhoneNumber  string           `json:"phone_number,omitempty"`
	AccountType  string           `json:"account_type,omitempty"`
	IsActive     bool             `json:"is_active"`
	AccessToken  string           `json:"access_token,omitempty"`
	RefreshToken string           `json:"refresh_token,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	Profile      *ProfileResponse `json:"profile,omitempty"`
}
