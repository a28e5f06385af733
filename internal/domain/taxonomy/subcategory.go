package taxonomy

import "time"

// SubCategory statuses are a closed set, unlike the free-text category status.
const (
	SubStatusActive   = "Active"
	SubStatusInactive = "Inactive"
)

type SubCategory struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	CategoryID  int64     `json:"categoryId"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Profile     string    `json:"profile"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Parent name, populated on listing only.
	Category *CategoryRef `json:"category,omitempty"`
}

type CategoryRef struct {
	Name string `json:"name"`
}

type CreateSubCategoryRequest struct {
	Name        string `form:"name"`
	CategoryID  int64  `form:"categoryId"`
	Description string `form:"description"`
	Status      string `form:"status"`
}

type UpdateSubCategoryRequest struct {
	Name        *string `form:"name"`
	CategoryID  *int64  `form:"categoryId"`
	Description *string `form:"description"`
	Status      *string `form:"status"`
}

func ValidSubStatus(s string) bool {
	return s == SubStatusActive || s == SubStatusInactive
}
