// file: internals/features/verifications/dto/verification_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	eventModel "compsphere_backend/internals/features/events/model"
	model "compsphere_backend/internals/features/verifications/model"
)

/* =========================================================
   Messages
   ========================================================= */

const (
	MsgInvalidQR   = "invalid or expired QR code"
	MsgUsedQR      = "QR code already used"
	MsgValidQR     = "QR code valid"
	MsgExpiredQR   = "QR code expired"
	MsgVerified    = "verification successful"
	MsgIssued      = "verification issued"
	MsgRegenerated = "verification regenerated"
)

// Diagnostic: pesan untuk halaman admin berdasarkan status record.
func Diagnostic(status model.VerificationStatus) string {
	switch status {
	case model.StatusActive:
		return MsgValidQR
	case model.StatusUsed:
		return MsgUsedQR
	case model.StatusExpired:
		return MsgExpiredQR
	}
	return MsgInvalidQR
}

/* =========================================================
   Requests
   ========================================================= */

// NormalizeToken: token di URL boleh uppercase / ada spasi, disimpan lowercase.
func NormalizeToken(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

type TokenParam struct {
	Token string `validate:"required,len=32,hexadecimal"`
}

type ConsumeRequest struct {
	Note string `json:"note" form:"note" validate:"omitempty,max=255"`
}

func (r *ConsumeRequest) Normalize() {
	r.Note = strings.TrimSpace(r.Note)
}

func (r *ConsumeRequest) Validate(v *validator.Validate) error {
	return v.Struct(r)
}

// Meta yang disimpan ke verified_meta saat consume.
func (r *ConsumeRequest) Meta(ip, userAgent string) datatypes.JSONMap {
	m := datatypes.JSONMap{}
	if ip = strings.TrimSpace(ip); ip != "" {
		m["ip"] = ip
	}
	if userAgent = strings.TrimSpace(userAgent); userAgent != "" {
		if len(userAgent) > 255 {
			userAgent = userAgent[:255]
		}
		m["user_agent"] = userAgent
	}
	if r.Note != "" {
		m["note"] = r.Note
	}
	return m
}

type QRQuery struct {
	Format string `query:"format" validate:"omitempty,oneof=png webp"`
	Size   int    `query:"size" validate:"omitempty,min=128,max=1024"`
}

func (q *QRQuery) Normalize() {
	q.Format = strings.ToLower(strings.TrimSpace(q.Format))
}

type ListQuery struct {
	Status string `query:"status" validate:"omitempty,verification_status"`
}

// NewValidator: validator/v10 plus tag "verification_status" (active | used | expired).
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("verification_status", func(fl validator.FieldLevel) bool {
		return model.VerificationStatus(fl.Field().String()).Valid()
	})
	return v
}

/* =========================================================
   Responses
   ========================================================= */

type VerificationResponse struct {
	ID           uuid.UUID                `json:"id"`
	Variant      string                   `json:"variant"`
	Token        string                   `json:"verification_token"`
	Status       model.VerificationStatus `json:"status"`
	IsValid      bool                     `json:"is_valid"`
	Message      string                   `json:"message"`
	VerifiedAt   *time.Time               `json:"verified_at,omitempty"`
	VerifiedBy   *uuid.UUID               `json:"verified_by,omitempty"`
	VerifiedMeta datatypes.JSONMap        `json:"verified_meta,omitempty"`
	CreatedAt    time.Time                `json:"created_at"`
	UpdatedAt    time.Time                `json:"updated_at"`

	VerifyURL string `json:"verify_url,omitempty"`
	QRURL     string `json:"qr_url,omitempty"`

	TeamActivity *TeamActivitySubject `json:"team_activity,omitempty"`
	Registration *RegistrationSubject `json:"registration,omitempty"`
}

type TeamActivitySubject struct {
	EventID      uuid.UUID `json:"event_id"`
	EventCode    string    `json:"event_code"`
	EventName    string    `json:"event_name"`
	ActivityID   uuid.UUID `json:"activity_id"`
	ActivityCode string    `json:"activity_code"`
	ActivityName string    `json:"activity_name"`
	TeamID       uuid.UUID `json:"team_id"`
	TeamCode     string    `json:"team_code"`
	TeamName     string    `json:"team_name"`
}

type RegistrationSubject struct {
	RegistrationID uuid.UUID  `json:"event_registration_id"`
	EventID        uuid.UUID  `json:"event_id"`
	EventCode      string     `json:"event_code"`
	EventName      string     `json:"event_name"`
	UserID         uuid.UUID  `json:"user_id"`
	SubEventID     *uuid.UUID `json:"sub_event_id,omitempty"`
}

func fromCore(c *model.VerificationCore, variant string) VerificationResponse {
	return VerificationResponse{
		ID:           c.ID,
		Variant:      variant,
		Token:        c.VerificationToken,
		Status:       c.Status,
		IsValid:      c.IsActive(),
		Message:      Diagnostic(c.Status),
		VerifiedAt:   c.VerifiedAt,
		VerifiedBy:   c.VerifiedBy,
		VerifiedMeta: c.VerifiedMeta,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func FromTeamActivity(m *model.TeamActivityVerification) VerificationResponse {
	out := fromCore(m.Core(), m.Variant())
	out.TeamActivity = &TeamActivitySubject{TeamID: m.SubjectTeamID, ActivityID: m.SubjectActivityID}
	return out
}

func FromEventRegistration(m *model.EventRegistrationVerification) VerificationResponse {
	out := fromCore(m.Core(), m.Variant())
	out.Registration = &RegistrationSubject{RegistrationID: m.SubjectRegistrationID}
	return out
}

// WithTeamActivity melengkapi ringkasan subject (kode & nama) dari tabel event.
func (r VerificationResponse) WithTeamActivity(ev *eventModel.Event, act *eventModel.Activity, team *eventModel.Team) VerificationResponse {
	r.TeamActivity = &TeamActivitySubject{
		EventID:      ev.EventID,
		EventCode:    ev.EventCode,
		EventName:    ev.EventName,
		ActivityID:   act.ActivityID,
		ActivityCode: act.ActivityCode,
		ActivityName: act.ActivityName,
		TeamID:       team.TeamID,
		TeamCode:     team.TeamCode,
		TeamName:     team.TeamName,
	}
	return r
}

func (r VerificationResponse) WithRegistration(ev *eventModel.Event, reg *eventModel.EventRegistration) VerificationResponse {
	r.Registration = &RegistrationSubject{
		RegistrationID: reg.EventRegistrationID,
		EventID:        ev.EventID,
		EventCode:      ev.EventCode,
		EventName:      ev.EventName,
		UserID:         reg.EventRegistrationUserID,
		SubEventID:     reg.EventRegistrationSubID,
	}
	return r
}

func (r VerificationResponse) WithURLs(verifyURL, qrURL string) VerificationResponse {
	r.VerifyURL = verifyURL
	r.QRURL = qrURL
	return r
}
