// file: internals/features/verifications/controller/admin_controller.go
package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	eventModel "compsphere_backend/internals/features/events/model"
	eventService "compsphere_backend/internals/features/events/service"
	dto "compsphere_backend/internals/features/verifications/dto"
	model "compsphere_backend/internals/features/verifications/model"
	repo "compsphere_backend/internals/features/verifications/repository"
	helper "compsphere_backend/internals/helpers"
)

/* =========================================================
   Admin: scan by token
   GET|POST /{prefix}/verify/:token
   ========================================================= */

// ShowByToken menampilkan record (team activity dulu, lalu registrasi) tanpa mengubah apa pun.
func (ctl *VerificationController) ShowByToken(c *fiber.Ctx) error {
	tok, err := ctl.tokenParam(c)
	if err != nil {
		return verifyError(c, err, nil)
	}
	ctx := c.UserContext()

	if rec, err := ctl.Teams.Inspect(ctx, tok); err == nil {
		resp := ctl.teamActivityResponse(c, rec)
		return helper.JsonOK(c, resp.Message, resp)
	} else if !errors.Is(err, repo.ErrNotFound) {
		return verifyError(c, err, nil)
	}

	rec, err := ctl.Regs.Inspect(ctx, tok)
	if err != nil {
		return verifyError(c, err, nil)
	}
	resp := ctl.registrationResponse(c, rec)
	return helper.JsonOK(c, resp.Message, resp)
}

func (ctl *VerificationController) ConsumeByToken(c *fiber.Ctx) error {
	tok, err := ctl.tokenParam(c)
	if err != nil {
		return verifyError(c, err, nil)
	}
	req, err := ctl.consumeRequest(c)
	if err != nil {
		return badRequest(c, err)
	}
	actor, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return verifyError(c, err, nil)
	}
	ctx := c.UserContext()
	meta := req.Meta(c.IP(), c.Get(fiber.HeaderUserAgent))

	exists, err := ctl.Teams.Store.TokenExists(ctx, tok)
	if err != nil {
		return verifyError(c, err, nil)
	}
	if exists {
		rec, err := ctl.Teams.Consume(ctx, tok, actor, meta)
		return ctl.teamConsumeResult(c, rec, err)
	}

	rec, err := ctl.Regs.Consume(ctx, tok, actor, meta)
	if err != nil {
		if rec != nil {
			return verifyError(c, err, ctl.registrationResponse(c, rec))
		}
		return verifyError(c, err, nil)
	}
	return helper.JsonOK(c, dto.MsgVerified, ctl.registrationResponse(c, rec))
}

func (ctl *VerificationController) teamConsumeResult(c *fiber.Ctx, rec *model.TeamActivityVerification, err error) error {
	if err != nil {
		if rec != nil {
			return verifyError(c, err, ctl.teamActivityResponse(c, rec))
		}
		return verifyError(c, err, nil)
	}
	return helper.JsonOK(c, dto.MsgVerified, ctl.teamActivityResponse(c, rec))
}

/* =========================================================
   Admin: scan by triple
   GET|POST /{prefix}/:event_code/:activity_code/:team_code
   ========================================================= */

// tripleRecord: record active untuk (team, activity); kalau tidak ada, record terakhir (diagnosa).
func (ctl *VerificationController) tripleRecord(c *fiber.Ctx) (*eventService.ActivitySubject, *model.TeamActivityVerification, error) {
	ctx := c.UserContext()
	subj, err := ctl.Lookup.ResolveActivitySubject(ctx, c.Params("event_code"), c.Params("activity_code"), c.Params("team_code"))
	if err != nil {
		return nil, nil, err
	}
	subject := model.NewTeamActivitySubject(subj.Team.TeamID, subj.Activity.ActivityID)

	rec, err := ctl.Teams.Store.FindActiveBySubject(ctx, subject)
	if err == nil {
		return subj, rec, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, nil, err
	}
	rec, err = ctl.Teams.Store.FindLatestBySubject(ctx, subject)
	if err != nil {
		return nil, nil, err
	}
	return subj, rec, nil
}

func (ctl *VerificationController) ShowByTriple(c *fiber.Ctx) error {
	subj, rec, err := ctl.tripleRecord(c)
	if err != nil {
		return verifyError(c, err, nil)
	}
	resp := ctl.teamResponse(subj, rec)
	resp.QRURL = ""
	return helper.JsonOK(c, resp.Message, resp)
}

func (ctl *VerificationController) ConsumeByTriple(c *fiber.Ctx) error {
	req, err := ctl.consumeRequest(c)
	if err != nil {
		return badRequest(c, err)
	}
	actor, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return verifyError(c, err, nil)
	}
	subj, rec, err := ctl.tripleRecord(c)
	if err != nil {
		return verifyError(c, err, nil)
	}
	if !rec.IsActive() {
		resp := ctl.teamResponse(subj, rec)
		if rec.Status == model.StatusUsed {
			return verifyError(c, repo.ErrAlreadyConsumed, resp)
		}
		return verifyError(c, repo.ErrNotFound, nil)
	}

	used, err := ctl.Teams.Consume(c.UserContext(), rec.VerificationToken, actor, req.Meta(c.IP(), c.Get(fiber.HeaderUserAgent)))
	if err != nil {
		if used != nil {
			return verifyError(c, err, ctl.teamResponse(subj, used))
		}
		return verifyError(c, err, nil)
	}
	return helper.JsonOK(c, dto.MsgVerified, ctl.teamResponse(subj, used))
}

/* =========================================================
   Admin: scan registration
   GET|POST /{prefix}/verify-registration/:event_code/:user_id/:token[?sub_event_id=]
   ========================================================= */

// registrationRecord: token harus cocok dengan event, user, dan (opsional) sub-event di URL.
func (ctl *VerificationController) registrationRecord(c *fiber.Ctx) (*model.EventRegistrationVerification, *eventModel.EventRegistration, *eventModel.Event, error) {
	subEventID, err := optionalUUIDQuery(c, "sub_event_id")
	if err != nil {
		return nil, nil, nil, err
	}
	userID, err := uuid.Parse(strings.TrimSpace(c.Params("user_id")))
	if err != nil {
		return nil, nil, nil, repo.ErrNotFound
	}
	tok, err := ctl.tokenParam(c)
	if err != nil {
		return nil, nil, nil, err
	}

	ctx := c.UserContext()
	rec, err := ctl.Regs.Inspect(ctx, tok)
	if err != nil {
		return nil, nil, nil, err
	}
	reg, err := ctl.Lookup.FindRegistration(ctx, rec.SubjectRegistrationID)
	if err != nil {
		return nil, nil, nil, err
	}
	ev, err := ctl.Lookup.FindEventByID(ctx, reg.EventRegistrationEventID)
	if err != nil {
		return nil, nil, nil, err
	}
	if ev.EventCode != strings.TrimSpace(c.Params("event_code")) ||
		reg.EventRegistrationUserID != userID ||
		!reg.MatchesSubEvent(subEventID) {
		return nil, nil, nil, repo.ErrNotFound
	}
	return rec, reg, ev, nil
}

func (ctl *VerificationController) ShowRegistration(c *fiber.Ctx) error {
	rec, reg, ev, err := ctl.registrationRecord(c)
	if err != nil {
		return verifyError(c, err, nil)
	}
	resp := ctl.ownRegistrationResponse(ev, reg, rec)
	resp.QRURL = ""
	return helper.JsonOK(c, resp.Message, resp)
}

func (ctl *VerificationController) ConsumeRegistration(c *fiber.Ctx) error {
	req, err := ctl.consumeRequest(c)
	if err != nil {
		return badRequest(c, err)
	}
	actor, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return verifyError(c, err, nil)
	}
	rec, reg, ev, err := ctl.registrationRecord(c)
	if err != nil {
		return verifyError(c, err, nil)
	}

	used, err := ctl.Regs.Consume(c.UserContext(), rec.VerificationToken, actor, req.Meta(c.IP(), c.Get(fiber.HeaderUserAgent)))
	if err != nil {
		if used != nil {
			resp := ctl.ownRegistrationResponse(ev, reg, used)
			resp.QRURL = ""
			return verifyError(c, err, resp)
		}
		return verifyError(c, err, nil)
	}
	resp := ctl.ownRegistrationResponse(ev, reg, used)
	resp.QRURL = ""
	return helper.JsonOK(c, dto.MsgVerified, resp)
}

/* =========================================================
   Admin dashboard
   ========================================================= */

func (ctl *VerificationController) listQuery(c *fiber.Ctx) (model.VerificationStatus, helper.Paging, error) {
	var q dto.ListQuery
	if err := c.QueryParser(&q); err != nil {
		return "", helper.Paging{}, fiber.NewError(fiber.StatusBadRequest, "Query tidak valid")
	}
	q.Status = strings.ToLower(strings.TrimSpace(q.Status))
	if err := ctl.Validator.Struct(&q); err != nil {
		return "", helper.Paging{}, err
	}
	return model.VerificationStatus(q.Status), helper.ResolvePaging(c, 20, 100), nil
}

// GET /{prefix}/dashboard/activities/:activity_id/verifications?status=&page=&per_page=
func (ctl *VerificationController) ListActivityVerifications(c *fiber.Ctx) error {
	activityID, err := helper.ParseUUIDParam(c, "activity_id")
	if err != nil {
		return verifyError(c, err, nil)
	}
	status, pg, err := ctl.listQuery(c)
	if err != nil {
		return badRequest(c, err)
	}

	rows, total, err := ctl.Teams.Store.List(c.UserContext(), repo.ListFilter{
		Subject: map[string]any{"activity_id": activityID},
		Status:  status,
		Offset:  pg.Offset,
		Limit:   pg.Limit,
	})
	if err != nil {
		return verifyError(c, err, nil)
	}

	out := make([]dto.VerificationResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.FromTeamActivity(&rows[i]))
	}
	return helper.JsonList(c, "ok", out, helper.BuildPaginationFromPage(total, pg.Page, pg.PerPage))
}

// GET /{prefix}/dashboard/events/:event_id/registration-verifications?status=&page=&per_page=
func (ctl *VerificationController) ListEventRegistrationVerifications(c *fiber.Ctx) error {
	eventID, err := helper.ParseUUIDParam(c, "event_id")
	if err != nil {
		return verifyError(c, err, nil)
	}
	status, pg, err := ctl.listQuery(c)
	if err != nil {
		return badRequest(c, err)
	}

	inEvent := func(db *gorm.DB) *gorm.DB {
		sub := ctl.DB.Model(&eventModel.EventRegistration{}).
			Select("event_registration_id").
			Where("event_registration_event_id = ?", eventID)
		return db.Where("event_registration_id IN (?)", sub)
	}
	rows, total, err := ctl.Regs.Store.List(c.UserContext(), repo.ListFilter{
		Status: status,
		Scopes: []func(*gorm.DB) *gorm.DB{inEvent},
		Offset: pg.Offset,
		Limit:  pg.Limit,
	})
	if err != nil {
		return verifyError(c, err, nil)
	}

	out := make([]dto.VerificationResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.FromEventRegistration(&rows[i]))
	}
	return helper.JsonList(c, "ok", out, helper.BuildPaginationFromPage(total, pg.Page, pg.PerPage))
}
