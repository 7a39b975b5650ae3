// file: internals/features/verifications/service/verification_service.go
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	model "compsphere_backend/internals/features/verifications/model"
	repo "compsphere_backend/internals/features/verifications/repository"
	"compsphere_backend/internals/features/verifications/token"
	"compsphere_backend/internals/metrics"
)

var ErrMissingActor = errors.New("consume requires an actor id")

// Service wires validator, consumer and issuance policy on top of one variant's store.
type Service[T any, PT interface {
	*T
	repo.Record
}] struct {
	Store   *repo.Store[T, PT]
	Metrics *metrics.VerificationMetrics
	Now     func() time.Time
}

type (
	TeamActivityService      = Service[model.TeamActivityVerification, *model.TeamActivityVerification]
	EventRegistrationService = Service[model.EventRegistrationVerification, *model.EventRegistrationVerification]
)

func NewTeamActivityService(db *gorm.DB, gen *token.Generator, m *metrics.VerificationMetrics) *TeamActivityService {
	return &TeamActivityService{Store: repo.NewTeamActivityStore(db, gen), Metrics: m}
}

func NewEventRegistrationService(db *gorm.DB, gen *token.Generator, m *metrics.VerificationMetrics) *EventRegistrationService {
	return &EventRegistrationService{Store: repo.NewEventRegistrationStore(db, gen), Metrics: m}
}

func (s *Service[T, PT]) Variant() string { return s.Store.Variant() }

func (s *Service[T, PT]) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

/* =========================
   Validator (read-only)
   ========================= */

// IsValid reports whether tok currently resolves to an active record.
func (s *Service[T, PT]) IsValid(ctx context.Context, tok string) (bool, error) {
	if !token.IsWellFormed(tok) {
		return false, nil
	}
	return s.Store.IsActive(ctx, tok)
}

// Inspect fetches the record regardless of status, for diagnostic messages.
func (s *Service[T, PT]) Inspect(ctx context.Context, tok string) (PT, error) {
	if !token.IsWellFormed(tok) {
		return nil, repo.ErrNotFound
	}
	return s.Store.FindByToken(ctx, tok)
}

/* =========================
   Consumer
   ========================= */

// Consume marks tok as used by actor. On ErrAlreadyConsumed the untouched record is returned too.
func (s *Service[T, PT]) Consume(ctx context.Context, tok string, actor uuid.UUID, meta datatypes.JSONMap) (PT, error) {
	if actor == uuid.Nil {
		return nil, ErrMissingActor
	}
	if !token.IsWellFormed(tok) {
		s.Metrics.Consumed(s.Variant(), metrics.ResultNotFound)
		return nil, repo.ErrNotFound
	}

	rec, err := s.Store.Consume(ctx, tok, actor, s.now(), meta)
	switch {
	case err == nil:
		s.Metrics.Consumed(s.Variant(), metrics.ResultSuccess)
	case errors.Is(err, repo.ErrAlreadyConsumed):
		s.Metrics.Consumed(s.Variant(), metrics.ResultAlreadyConsumed)
	case errors.Is(err, repo.ErrNotFound):
		s.Metrics.Consumed(s.Variant(), metrics.ResultNotFound)
	default:
		s.Metrics.Consumed(s.Variant(), metrics.ResultError)
	}
	return rec, err
}

/* =========================
   Issuance
   ========================= */

// GetOrCreateActive returns the subject's active record, creating one when the subject has
// none. Subjects whose latest record is already used are not re-issued: the used record is
// returned with ErrAlreadyConsumed.
func (s *Service[T, PT]) GetOrCreateActive(ctx context.Context, subject PT) (rec PT, created bool, err error) {
	rec, err = s.Store.FindActiveBySubject(ctx, subject)
	if err == nil {
		return rec, false, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, false, err
	}

	if latest, lerr := s.Store.FindLatestBySubject(ctx, subject); lerr == nil {
		if latest.Core().Status == model.StatusUsed {
			return latest, false, repo.ErrAlreadyConsumed
		}
	} else if !errors.Is(lerr, repo.ErrNotFound) {
		return nil, false, lerr
	}

	rec, err = s.Store.Create(ctx, subject)
	if errors.Is(err, repo.ErrDuplicateActiveSubject) {
		// kalah balapan dengan request lain → pakai record miliknya
		rec, err = s.Store.FindActiveBySubject(ctx, subject)
		return rec, false, err
	}
	if err != nil {
		return nil, false, err
	}
	s.Metrics.Issued(s.Variant())
	return rec, true, nil
}

// Regenerate expires the subject's active record and issues a new one in one transaction.
func (s *Service[T, PT]) Regenerate(ctx context.Context, subject PT) (PT, error) {
	var (
		out     PT
		used    PT
		expired int64
	)
	err := s.Store.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st := s.Store.WithTx(tx)

		latest, err := st.FindLatestBySubject(ctx, subject)
		switch {
		case err == nil && latest.Core().Status == model.StatusUsed:
			used = latest
			return repo.ErrAlreadyConsumed
		case err != nil && !errors.Is(err, repo.ErrNotFound):
			return err
		}

		expired, err = st.ExpireActiveBySubject(ctx, subject, s.now())
		if err != nil {
			return err
		}
		out, err = st.Create(ctx, subject)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrAlreadyConsumed):
			return used, err
		case errors.Is(err, repo.ErrDuplicateActiveSubject):
			// regenerate lain untuk subject yang sama sudah commit → pakai record miliknya
			return s.Store.FindActiveBySubject(ctx, subject)
		}
		return nil, err
	}
	s.Metrics.Expired(s.Variant(), expired)
	s.Metrics.Issued(s.Variant())
	return out, nil
}

/* =========================
   Expiry
   ========================= */

// ExpireStale expires active records older than ttl, batch by batch, until a short batch.
func (s *Service[T, PT]) ExpireStale(ctx context.Context, ttl time.Duration, batch int) (int64, error) {
	if ttl <= 0 {
		return 0, nil
	}
	if batch <= 0 {
		batch = 500
	}
	now := s.now()
	cutoff := now.Add(-ttl)

	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := s.Store.ExpireIssuedBefore(ctx, cutoff, batch, now)
		total += n
		if err != nil {
			return total, err
		}
		if n < int64(batch) {
			break
		}
	}
	s.Metrics.Expired(s.Variant(), total)
	return total, nil
}
