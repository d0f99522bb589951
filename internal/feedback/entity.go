// AngelaMos | 2026
// entity.go

package feedback

import (
	"time"
)

const UnknownPage = "unknown"

type Feedback struct {
	ID          string    `db:"id"           json:"id"`
	Message     string    `db:"message"      json:"message"`
	SubmittedAt time.Time `db:"submitted_at" json:"submittedAt"`
	UserAgent   string    `db:"user_agent"   json:"userAgent"`
	Page        string    `db:"page"         json:"page"`
	IPAddress   string    `db:"ip_address"   json:"ipAddress"`
	CreatedAt   time.Time `db:"created_at"   json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at"   json:"updatedAt"`
}

// Summary is what admins see; client metadata stays in the database.
type Summary struct {
	ID          string    `db:"id"           json:"id"`
	Message     string    `db:"message"      json:"message"`
	SubmittedAt time.Time `db:"submitted_at" json:"submittedAt"`
	CreatedAt   time.Time `db:"created_at"   json:"createdAt"`
}

type Overview struct {
	Total  int `db:"total"  json:"total"`
	Recent int `db:"recent" json:"recent"`
	Today  int `db:"today"  json:"today"`
}
