package taxonomy

import "time"

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Profile     string    `json:"profile"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateCategoryRequest struct {
	Name        string `form:"name"`
	Description string `form:"description"`
	Status      string `form:"status"`
}

// UpdateCategoryRequest is a partial update; nil means not supplied.
type UpdateCategoryRequest struct {
	Name        *string `form:"name"`
	Description *string `form:"description"`
	Status      *string `form:"status"`
}
