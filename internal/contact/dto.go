// AngelaMos | 2026
// dto.go

package contact

import (
	"time"
)

type SubmitRequest struct {
	Name    string `json:"name"    validate:"required,min=2,max=100"`
	Email   string `json:"email"   validate:"required,email,max=254"`
	Phone   string `json:"phone"   validate:"required,phone"`
	Company string `json:"company" validate:"max=200"`
	Message string `json:"message" validate:"required,min=10,max=1000"`
}

// ClientMeta is what the transport layer knows about the submitter.
type ClientMeta struct {
	IPAddress string
	UserAgent string
}

type Receipt struct {
	ID          string    `json:"id"`
	SubmittedAt time.Time `json:"submittedAt"`
	EmailSent   bool      `json:"emailSent"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new read responded closed"`
}

type StatusResponse struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type DeletedResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ReportResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Data    *Report `json:"data,omitempty"`
	Details *Report `json:"details,omitempty"`
}
