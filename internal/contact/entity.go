// AngelaMos | 2026
// entity.go

package contact

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

const (
	StatusNew       = "new"
	StatusRead      = "read"
	StatusResponded = "responded"
	StatusClosed    = "closed"
)

var Statuses = []string{StatusNew, StatusRead, StatusResponded, StatusClosed}

func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

type Contact struct {
	ID            string         `db:"id"             json:"id"`
	Name          string         `db:"name"           json:"name"`
	Email         string         `db:"email"          json:"email"`
	Phone         string         `db:"phone"          json:"phone"`
	Company       string         `db:"company"        json:"company"`
	Message       string         `db:"message"        json:"message"`
	Status        string         `db:"status"         json:"status"`
	EmailSent     bool           `db:"email_sent"     json:"emailSent"`
	EmailError    *string        `db:"email_error"    json:"emailError"`
	EmailMetadata *EmailMetadata `db:"email_metadata" json:"emailMetadata"`
	IPAddress     string         `db:"ip_address"     json:"ipAddress"`
	UserAgent     string         `db:"user_agent"     json:"userAgent"`
	CreatedAt     time.Time      `db:"created_at"     json:"createdAt"`
	UpdatedAt     time.Time      `db:"updated_at"     json:"updatedAt"`
}

// EmailMetadata is the delivery summary stored on a contact after a
// successful fan-out. Exactly one of SentAt and ResentAt is set.
type EmailMetadata struct {
	AdminEmailsSent       int        `json:"adminEmailsSent"`
	AdminEmailsFailed     int        `json:"adminEmailsFailed"`
	CustomerEmailSent     bool       `json:"customerEmailSent"`
	TotalEmailsAttempted  int        `json:"totalEmailsAttempted"`
	TotalEmailsSuccessful int        `json:"totalEmailsSuccessful"`
	SentAt                *time.Time `json:"sentAt,omitempty"`
	ResentAt              *time.Time `json:"resentAt,omitempty"`
}

func (m EmailMetadata) Value() (driver.Value, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *EmailMetadata) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = EmailMetadata{}
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("email_metadata: unsupported type")
	}
}

// Summary is the list view of a contact. Client metadata and delivery
// details are left out.
type Summary struct {
	ID         string    `db:"id"          json:"id"`
	Name       string    `db:"name"        json:"name"`
	Email      string    `db:"email"       json:"email"`
	Phone      string    `db:"phone"       json:"phone"`
	Company    string    `db:"company"     json:"company"`
	Message    string    `db:"message"     json:"message"`
	Status     string    `db:"status"      json:"status"`
	EmailSent  bool      `db:"email_sent"  json:"emailSent"`
	EmailError *string   `db:"email_error" json:"emailError"`
	CreatedAt  time.Time `db:"created_at"  json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at"  json:"updatedAt"`
}

type ListParams struct {
	Offset int
	Limit  int
	Status string
	Search string
}

type Overview struct {
	Total int `db:"total" json:"total"`
	Today int `db:"today" json:"today"`
	Week  int `db:"week"  json:"week"`
	Month int `db:"month" json:"month"`
}

type EmailStats struct {
	EmailsSent   int `db:"emails_sent"   json:"emailsSent"`
	EmailsFailed int `db:"emails_failed" json:"emailsFailed"`
}

type Stats struct {
	Overview   Overview       `json:"overview"`
	ByStatus   map[string]int `json:"byStatus"`
	EmailStats EmailStats     `json:"emailStats"`
}

// StatsWindow holds the lower bounds used by the overview counts.
type StatsWindow struct {
	Today time.Time
	Week  time.Time
	Month time.Time
}

func WindowAt(now time.Time) StatsWindow {
	y, m, d := now.Date()
	return StatsWindow{
		Today: time.Date(y, m, d, 0, 0, 0, 0, now.Location()),
		Week:  now.Add(-7 * 24 * time.Hour),
		Month: time.Date(y, m, 1, 0, 0, 0, 0, now.Location()),
	}
}
