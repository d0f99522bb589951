// AngelaMos | 2026
// entity.go

package product

import (
	"time"
)

const CategoryAll = "All"

type Product struct {
	ID          string    `db:"id"          json:"id"`
	Name        string    `db:"name"        json:"name"`
	Code        string    `db:"code"        json:"code"`
	Description string    `db:"description" json:"description"`
	Category    string    `db:"category"    json:"category"`
	ImageURL    string    `db:"image_url"   json:"image"`
	ImageID     string    `db:"image_id"    json:"imageId"`
	CreatedAt   time.Time `db:"created_at"  json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at"  json:"updatedAt"`
}

type ListParams struct {
	Offset   int
	Limit    int
	Search   string
	Category string
	// Sort is "ASC" or "DESC" on created_at.
	Sort string
}
