package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	model "compsphere_backend/internals/features/verifications/model"
	repo "compsphere_backend/internals/features/verifications/repository"
	"compsphere_backend/internals/features/verifications/service"
	"compsphere_backend/internals/metrics"
	dbtest "compsphere_backend/internals/testutil"
)

func newTeamService(t *testing.T) (*service.TeamActivityService, *dbtest.Fixture, *metrics.VerificationMetrics) {
	t.Helper()
	db := dbtest.NewDB(t)
	fx := dbtest.Seed(t, db)
	m := metrics.NewVerificationMetrics(prometheus.NewRegistry())
	return service.NewTeamActivityService(db, nil, m), fx, m
}

func TestService_IssueThenVerifyOnce(t *testing.T) {
	ctx := context.Background()
	svc, fx, m := newTeamService(t)
	subject := func() *model.TeamActivityVerification {
		return model.NewTeamActivitySubject(fx.Team.TeamID, fx.Activity.ActivityID)
	}

	rec, created, err := svc.GetOrCreateActive(ctx, subject())
	require.NoError(t, err)
	assert.True(t, created)

	ok, err := svc.IsValid(ctx, rec.VerificationToken)
	require.NoError(t, err)
	assert.True(t, ok)

	// read-only: validasi berulang tidak mengubah apa pun
	ok, err = svc.IsValid(ctx, rec.VerificationToken)
	require.NoError(t, err)
	assert.True(t, ok)

	same, created, err := svc.GetOrCreateActive(ctx, subject())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, rec.VerificationToken, same.VerificationToken)

	admin := uuid.New()
	used, err := svc.Consume(ctx, rec.VerificationToken, admin, datatypes.JSONMap{"note": "ok"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusUsed, used.Status)
	assert.Equal(t, admin, *used.VerifiedBy)

	ok, err = svc.IsValid(ctx, rec.VerificationToken)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Consume(ctx, rec.VerificationToken, uuid.New(), nil)
	assert.ErrorIs(t, err, repo.ErrAlreadyConsumed)

	// subject yang sudah used tidak diterbitkan ulang
	again, created, err := svc.GetOrCreateActive(ctx, subject())
	assert.ErrorIs(t, err, repo.ErrAlreadyConsumed)
	assert.False(t, created)
	assert.Equal(t, rec.ID, again.ID)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.IssuedCounter(model.VariantTeamActivity)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConsumedCounter(model.VariantTeamActivity, metrics.ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConsumedCounter(model.VariantTeamActivity, metrics.ResultAlreadyConsumed)))
}

func TestService_UnknownAndMalformedTokens(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTeamService(t)

	for _, tok := range []string{"", "abc", "ZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZ", "0123456789abcdef0123456789abcdef"} {
		ok, err := svc.IsValid(ctx, tok)
		require.NoError(t, err)
		assert.False(t, ok, tok)

		_, err = svc.Consume(ctx, tok, uuid.New(), nil)
		assert.ErrorIs(t, err, repo.ErrNotFound, tok)

		_, err = svc.Inspect(ctx, tok)
		assert.ErrorIs(t, err, repo.ErrNotFound, tok)
	}
}

func TestService_ConsumeRequiresActor(t *testing.T) {
	ctx := context.Background()
	svc, fx, _ := newTeamService(t)

	rec, _, err := svc.GetOrCreateActive(ctx, model.NewTeamActivitySubject(fx.Team.TeamID, fx.Activity.ActivityID))
	require.NoError(t, err)

	_, err = svc.Consume(ctx, rec.VerificationToken, uuid.Nil, nil)
	assert.ErrorIs(t, err, service.ErrMissingActor)

	ok, err := svc.IsValid(ctx, rec.VerificationToken)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestService_ConcurrentGetOrCreateYieldsOneActive(t *testing.T) {
	ctx := context.Background()
	svc, fx, _ := newTeamService(t)

	const workers = 6
	toks := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec, _, err := svc.GetOrCreateActive(ctx, model.NewTeamActivitySubject(fx.Team.TeamID, fx.Activity.ActivityID))
			if assert.NoError(t, err) {
				toks[i] = rec.VerificationToken
			}
		}(i)
	}
	wg.Wait()

	for _, tok := range toks[1:] {
		assert.Equal(t, toks[0], tok)
	}
	_, total, err := svc.Store.List(ctx, repo.ListFilter{Status: model.StatusActive})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestService_Regenerate(t *testing.T) {
	ctx := context.Background()
	svc, fx, m := newTeamService(t)
	subject := func() *model.TeamActivityVerification {
		return model.NewTeamActivitySubject(fx.Team.TeamID, fx.Activity.ActivityID)
	}

	first, _, err := svc.GetOrCreateActive(ctx, subject())
	require.NoError(t, err)

	second, err := svc.Regenerate(ctx, subject())
	require.NoError(t, err)
	assert.NotEqual(t, first.VerificationToken, second.VerificationToken)
	assert.Equal(t, model.StatusActive, second.Status)

	old, err := svc.Inspect(ctx, first.VerificationToken)
	require.NoError(t, err)
	assert.Equal(t, model.StatusExpired, old.Status)

	_, err = svc.Consume(ctx, first.VerificationToken, uuid.New(), nil)
	assert.ErrorIs(t, err, repo.ErrAlreadyConsumed)

	_, err = svc.Consume(ctx, second.VerificationToken, uuid.New(), nil)
	require.NoError(t, err)

	used, err := svc.Regenerate(ctx, subject())
	assert.ErrorIs(t, err, repo.ErrAlreadyConsumed)
	assert.Equal(t, second.ID, used.ID)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExpiredCounter(model.VariantTeamActivity)))
}

func TestService_RegistrationVariant(t *testing.T) {
	ctx := context.Background()
	db := dbtest.NewDB(t)
	fx := dbtest.Seed(t, db)
	svc := service.NewEventRegistrationService(db, nil, nil)

	rec, created, err := svc.GetOrCreateActive(ctx, model.NewEventRegistrationSubject(fx.Registration.EventRegistrationID))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, fx.Registration.EventRegistrationID, rec.SubjectRegistrationID)

	_, err = svc.Consume(ctx, rec.VerificationToken, uuid.New(), nil)
	require.NoError(t, err)
	_, err = svc.Consume(ctx, rec.VerificationToken, uuid.New(), nil)
	assert.ErrorIs(t, err, repo.ErrAlreadyConsumed)
}

func TestService_ExpireStale(t *testing.T) {
	ctx := context.Background()
	svc, fx, _ := newTeamService(t)

	rec, _, err := svc.GetOrCreateActive(ctx, model.NewTeamActivitySubject(fx.Team.TeamID, fx.Activity.ActivityID))
	require.NoError(t, err)

	n, err := svc.ExpireStale(ctx, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, n, "ttl 0 disables expiry")

	n, err = svc.ExpireStale(ctx, 24*time.Hour, 10)
	require.NoError(t, err)
	assert.Zero(t, n)

	svc.Now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	n, err = svc.ExpireStale(ctx, 24*time.Hour, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	ok, err := svc.IsValid(ctx, rec.VerificationToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExpiryScheduler_RunOnce(t *testing.T) {
	ctx := context.Background()
	svc, fx, _ := newTeamService(t)
	_, _, err := svc.GetOrCreateActive(ctx, model.NewTeamActivitySubject(fx.Team.TeamID, fx.Activity.ActivityID))
	require.NoError(t, err)
	svc.Now = func() time.Time { return time.Now().Add(72 * time.Hour) }

	disabled := &service.ExpiryScheduler{Sweepers: []service.Sweeper{svc}}
	assert.False(t, disabled.Enabled())

	sched := &service.ExpiryScheduler{Sweepers: []service.Sweeper{svc}, TTL: time.Hour, Batch: 5}
	assert.True(t, sched.Enabled())
	assert.EqualValues(t, 1, sched.RunOnce(ctx))
	assert.Zero(t, sched.RunOnce(ctx))
}
