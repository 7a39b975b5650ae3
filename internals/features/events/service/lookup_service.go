// file: internals/features/events/service/lookup_service.go
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	model "compsphere_backend/internals/features/events/model"
)

// ErrNotFound dipakai semua lookup di bawah; caller memetakan ke 404.
var ErrNotFound = errors.New("event resource not found")

// Lookup membungkus query read-only ke tabel event yang dipakai fitur verifikasi.
type Lookup struct {
	DB *gorm.DB
}

func NewLookup(db *gorm.DB) *Lookup {
	return &Lookup{DB: db}
}

func (l *Lookup) db(ctx context.Context) *gorm.DB {
	return l.DB.WithContext(ctx)
}

func first[T any](q *gorm.DB) (*T, error) {
	var out T
	if err := q.First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (l *Lookup) FindEventByCode(ctx context.Context, code string) (*model.Event, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrNotFound
	}
	return first[model.Event](l.db(ctx).Where("event_code = ?", code))
}

func (l *Lookup) FindEventByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	return first[model.Event](l.db(ctx).Where("event_id = ?", id))
}

func (l *Lookup) FindActivityByID(ctx context.Context, id uuid.UUID) (*model.Activity, error) {
	return first[model.Activity](l.db(ctx).Where("activity_id = ?", id))
}

func (l *Lookup) FindActivityByCode(ctx context.Context, eventID uuid.UUID, code string) (*model.Activity, error) {
	return first[model.Activity](l.db(ctx).
		Where("activity_event_id = ? AND activity_code = ?", eventID, strings.TrimSpace(code)))
}

func (l *Lookup) FindTeamByID(ctx context.Context, id uuid.UUID) (*model.Team, error) {
	return first[model.Team](l.db(ctx).Where("team_id = ?", id))
}

func (l *Lookup) FindTeamByCode(ctx context.Context, eventID uuid.UUID, code string) (*model.Team, error) {
	return first[model.Team](l.db(ctx).
		Where("team_event_id = ? AND team_code = ?", eventID, strings.TrimSpace(code)))
}

func (l *Lookup) IsTeamMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	var n int64
	if err := l.db(ctx).Model(&model.TeamMember{}).
		Where("team_member_team_id = ? AND team_member_user_id = ?", teamID, userID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (l *Lookup) FindRegistration(ctx context.Context, id uuid.UUID) (*model.EventRegistration, error) {
	return first[model.EventRegistration](l.db(ctx).Where("event_registration_id = ?", id))
}

// ActivitySubject resolves the human-readable triple used in the admin QR URL.
type ActivitySubject struct {
	Event    *model.Event
	Activity *model.Activity
	Team     *model.Team
}

func (l *Lookup) ResolveActivitySubject(ctx context.Context, eventCode, activityCode, teamCode string) (*ActivitySubject, error) {
	ev, err := l.FindEventByCode(ctx, eventCode)
	if err != nil {
		return nil, err
	}
	act, err := l.FindActivityByCode(ctx, ev.EventID, activityCode)
	if err != nil {
		return nil, err
	}
	team, err := l.FindTeamByCode(ctx, ev.EventID, teamCode)
	if err != nil {
		return nil, err
	}
	return &ActivitySubject{Event: ev, Activity: act, Team: team}, nil
}

// LoadActivitySubject is the reverse direction (ids → codes), used when building URLs.
// Activity dan team wajib berada di event yang sama.
func (l *Lookup) LoadActivitySubject(ctx context.Context, teamID, activityID uuid.UUID) (*ActivitySubject, error) {
	team, err := l.FindTeamByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	act, err := l.FindActivityByID(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if act.ActivityEventID != team.TeamEventID {
		return nil, ErrNotFound
	}
	ev, err := l.FindEventByID(ctx, team.TeamEventID)
	if err != nil {
		return nil, err
	}
	return &ActivitySubject{Event: ev, Activity: act, Team: team}, nil
}
