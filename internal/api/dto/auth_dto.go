package dto

import (
	"time"

	"github.com/casekit/case-gateway/internal/domain"
)

// LoginRequest carries the credentials from the login form.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse describes the authenticated session to the browser.
// The token itself never leaves the gateway; the UI only needs the
// profile and how long the session has left.
type SessionResponse struct {
	User             *domain.User `json:"user"`
	State            string       `json:"state"`
	RemainingSeconds int64        `json:"remainingSeconds"`
	ExpiringSoon     bool         `json:"expiringSoon"`
}

// ProfileUpdateRequest mirrors domain.ProfileUpdate at the wire.
type ProfileUpdateRequest struct {
	Email      *string `json:"email" validate:"omitempty,email"`
	FullName   *string `json:"fullName" validate:"omitempty,min=1"`
	Department *string `json:"department"`
}

// ToDomain converts the request to the domain update.
func (r ProfileUpdateRequest) ToDomain() domain.ProfileUpdate {
	return domain.ProfileUpdate{
		Email:      r.Email,
		FullName:   r.FullName,
		Department: r.Department,
	}
}

// PreferenceResponse wraps one cached UI preference entry.
type PreferenceResponse struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Retrieved time.Time `json:"retrieved"`
}
