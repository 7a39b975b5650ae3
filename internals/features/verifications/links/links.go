// Package links builds the public verification URLs printed into QR codes.
// Format path harus tetap sama persis: QR lama yang sudah dicetak masih dipakai.
package links

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
)

type Builder struct {
	BaseURL string // tanpa trailing slash, mis. https://compsphere.id
	Prefix  string // admin prefix tanpa slash, mis. "admin"
}

func NewBuilder(baseURL, prefix string) *Builder {
	p := strings.Trim(strings.TrimSpace(prefix), "/")
	if p == "" {
		p = "admin"
	}
	return &Builder{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		Prefix:  p,
	}
}

func seg(s string) string { return url.PathEscape(s) }

// TeamActivityPath → /{prefix}/{event_code}/{activity_code}/{team_code}
func (b *Builder) TeamActivityPath(eventCode, activityCode, teamCode string) string {
	return "/" + b.Prefix + "/" + seg(eventCode) + "/" + seg(activityCode) + "/" + seg(teamCode)
}

// TokenPath → /{prefix}/verify/{token}
func (b *Builder) TokenPath(token string) string {
	return "/" + b.Prefix + "/verify/" + seg(token)
}

// RegistrationPath → /{prefix}/verify-registration/{event_code}/{user_id}/{token}[?sub_event_id={id}]
func (b *Builder) RegistrationPath(eventCode string, userID uuid.UUID, token string, subEventID *uuid.UUID) string {
	p := "/" + b.Prefix + "/verify-registration/" + seg(eventCode) + "/" + userID.String() + "/" + seg(token)
	if subEventID != nil {
		p += "?sub_event_id=" + url.QueryEscape(subEventID.String())
	}
	return p
}

// Absolute prepends BaseURL; base kosong → path relatif apa adanya.
func (b *Builder) Absolute(path string) string {
	return b.BaseURL + path
}

func (b *Builder) TeamActivityURL(eventCode, activityCode, teamCode string) string {
	return b.Absolute(b.TeamActivityPath(eventCode, activityCode, teamCode))
}

func (b *Builder) TokenURL(token string) string {
	return b.Absolute(b.TokenPath(token))
}

func (b *Builder) RegistrationURL(eventCode string, userID uuid.UUID, token string, subEventID *uuid.UUID) string {
	return b.Absolute(b.RegistrationPath(eventCode, userID, token, subEventID))
}
