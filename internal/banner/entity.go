// AngelaMos | 2026
// entity.go

package banner

import (
	"time"
)

type Banner struct {
	ID        string    `db:"id"         json:"id"`
	ImageURL  string    `db:"image_url"  json:"image"`
	ImageID   string    `db:"image_id"   json:"imageId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
