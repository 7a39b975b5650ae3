// file: internals/features/verifications/controller/participant_controller.go
package controller

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	eventModel "compsphere_backend/internals/features/events/model"
	eventService "compsphere_backend/internals/features/events/service"
	dto "compsphere_backend/internals/features/verifications/dto"
	model "compsphere_backend/internals/features/verifications/model"
	"compsphere_backend/internals/features/verifications/qrcode"
	helper "compsphere_backend/internals/helpers"
)

/* =========================================================
   Team activity (anggota tim)
   ========================================================= */

// teamSubject: cek team/activity ada, satu event, dan caller anggota tim.
func (ctl *VerificationController) teamSubject(c *fiber.Ctx) (*eventService.ActivitySubject, error) {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return nil, err
	}
	teamID, err := helper.ParseUUIDParam(c, "team_id")
	if err != nil {
		return nil, err
	}
	activityID, err := helper.ParseUUIDParam(c, "activity_id")
	if err != nil {
		return nil, err
	}

	ctx := c.UserContext()
	subj, err := ctl.Lookup.LoadActivitySubject(ctx, teamID, activityID)
	if errors.Is(err, eventService.ErrNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "Team atau activity tidak ditemukan")
	}
	if err != nil {
		return nil, err
	}
	member, err := ctl.Lookup.IsTeamMember(ctx, teamID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, fiber.NewError(fiber.StatusForbidden, "Kamu bukan anggota tim ini")
	}
	return subj, nil
}

func (ctl *VerificationController) teamQRPath(subj *eventService.ActivitySubject) string {
	return fmt.Sprintf("/api/u/teams/%s/activities/%s/verification/qr", subj.Team.TeamID, subj.Activity.ActivityID)
}

func (ctl *VerificationController) teamResponse(subj *eventService.ActivitySubject, rec *model.TeamActivityVerification) dto.VerificationResponse {
	return dto.FromTeamActivity(rec).
		WithTeamActivity(subj.Event, subj.Activity, subj.Team).
		WithURLs(
			ctl.Links.TeamActivityURL(subj.Event.EventCode, subj.Activity.ActivityCode, subj.Team.TeamCode),
			ctl.teamQRPath(subj),
		)
}

// GET /api/u/teams/:team_id/activities/:activity_id/verification
func (ctl *VerificationController) GetTeamActivityVerification(c *fiber.Ctx) error {
	subj, err := ctl.teamSubject(c)
	if err != nil {
		return verifyError(c, err, nil)
	}

	rec, created, err := ctl.Teams.GetOrCreateActive(c.UserContext(),
		model.NewTeamActivitySubject(subj.Team.TeamID, subj.Activity.ActivityID))
	if err != nil {
		if rec != nil {
			return verifyError(c, err, ctl.teamResponse(subj, rec))
		}
		return verifyError(c, err, nil)
	}
	if created {
		return helper.JsonCreated(c, dto.MsgIssued, ctl.teamResponse(subj, rec))
	}
	return helper.JsonOK(c, "ok", ctl.teamResponse(subj, rec))
}

// POST /api/u/teams/:team_id/activities/:activity_id/verification/regenerate
func (ctl *VerificationController) RegenerateTeamActivityVerification(c *fiber.Ctx) error {
	subj, err := ctl.teamSubject(c)
	if err != nil {
		return verifyError(c, err, nil)
	}

	rec, err := ctl.Teams.Regenerate(c.UserContext(),
		model.NewTeamActivitySubject(subj.Team.TeamID, subj.Activity.ActivityID))
	if err != nil {
		if rec != nil {
			return verifyError(c, err, ctl.teamResponse(subj, rec))
		}
		return verifyError(c, err, nil)
	}
	return helper.JsonCreated(c, dto.MsgRegenerated, ctl.teamResponse(subj, rec))
}

// GET /api/u/teams/:team_id/activities/:activity_id/verification/qr?format=png|webp&size=
func (ctl *VerificationController) TeamActivityQR(c *fiber.Ctx) error {
	q, err := ctl.qrQuery(c)
	if err != nil {
		return badRequest(c, err)
	}
	subj, err := ctl.teamSubject(c)
	if err != nil {
		return verifyError(c, err, nil)
	}

	rec, _, err := ctl.Teams.GetOrCreateActive(c.UserContext(),
		model.NewTeamActivitySubject(subj.Team.TeamID, subj.Activity.ActivityID))
	if err != nil {
		if rec != nil {
			return verifyError(c, err, ctl.teamResponse(subj, rec))
		}
		return verifyError(c, err, nil)
	}
	// URL triple tidak memuat token; tetap diterbitkan agar admin bisa consume
	url := ctl.Links.TeamActivityURL(subj.Event.EventCode, subj.Activity.ActivityCode, subj.Team.TeamCode)
	return ctl.sendQR(c, url, q)
}

/* =========================================================
   Event registration (pemilik registrasi)
   ========================================================= */

func (ctl *VerificationController) ownRegistration(c *fiber.Ctx) (*eventModel.EventRegistration, *eventModel.Event, error) {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return nil, nil, err
	}
	regID, err := helper.ParseUUIDParam(c, "registration_id")
	if err != nil {
		return nil, nil, err
	}

	ctx := c.UserContext()
	reg, err := ctl.Lookup.FindRegistration(ctx, regID)
	if errors.Is(err, eventService.ErrNotFound) {
		return nil, nil, fiber.NewError(fiber.StatusNotFound, "Registrasi tidak ditemukan")
	}
	if err != nil {
		return nil, nil, err
	}
	if reg.EventRegistrationUserID != userID {
		return nil, nil, fiber.NewError(fiber.StatusForbidden, "Registrasi ini bukan milikmu")
	}
	ev, err := ctl.Lookup.FindEventByID(ctx, reg.EventRegistrationEventID)
	if err != nil {
		return nil, nil, err
	}
	return reg, ev, nil
}

func (ctl *VerificationController) ownRegistrationResponse(ev *eventModel.Event, reg *eventModel.EventRegistration, rec *model.EventRegistrationVerification) dto.VerificationResponse {
	return dto.FromEventRegistration(rec).
		WithRegistration(ev, reg).
		WithURLs(
			ctl.Links.RegistrationURL(ev.EventCode, reg.EventRegistrationUserID, rec.VerificationToken, reg.EventRegistrationSubID),
			fmt.Sprintf("/api/u/event-registrations/%s/verification/qr", reg.EventRegistrationID),
		)
}

// GET /api/u/event-registrations/:registration_id/verification
func (ctl *VerificationController) GetRegistrationVerification(c *fiber.Ctx) error {
	reg, ev, err := ctl.ownRegistration(c)
	if err != nil {
		return verifyError(c, err, nil)
	}

	rec, created, err := ctl.Regs.GetOrCreateActive(c.UserContext(),
		model.NewEventRegistrationSubject(reg.EventRegistrationID))
	if err != nil {
		if rec != nil {
			return verifyError(c, err, ctl.ownRegistrationResponse(ev, reg, rec))
		}
		return verifyError(c, err, nil)
	}
	if created {
		return helper.JsonCreated(c, dto.MsgIssued, ctl.ownRegistrationResponse(ev, reg, rec))
	}
	return helper.JsonOK(c, "ok", ctl.ownRegistrationResponse(ev, reg, rec))
}

// POST /api/u/event-registrations/:registration_id/verification/regenerate
func (ctl *VerificationController) RegenerateRegistrationVerification(c *fiber.Ctx) error {
	reg, ev, err := ctl.ownRegistration(c)
	if err != nil {
		return verifyError(c, err, nil)
	}

	rec, err := ctl.Regs.Regenerate(c.UserContext(), model.NewEventRegistrationSubject(reg.EventRegistrationID))
	if err != nil {
		if rec != nil {
			return verifyError(c, err, ctl.ownRegistrationResponse(ev, reg, rec))
		}
		return verifyError(c, err, nil)
	}
	return helper.JsonCreated(c, dto.MsgRegenerated, ctl.ownRegistrationResponse(ev, reg, rec))
}

// GET /api/u/event-registrations/:registration_id/verification/qr
func (ctl *VerificationController) RegistrationQR(c *fiber.Ctx) error {
	q, err := ctl.qrQuery(c)
	if err != nil {
		return badRequest(c, err)
	}
	reg, ev, err := ctl.ownRegistration(c)
	if err != nil {
		return verifyError(c, err, nil)
	}

	rec, _, err := ctl.Regs.GetOrCreateActive(c.UserContext(), model.NewEventRegistrationSubject(reg.EventRegistrationID))
	if err != nil {
		if rec != nil {
			return verifyError(c, err, ctl.ownRegistrationResponse(ev, reg, rec))
		}
		return verifyError(c, err, nil)
	}
	url := ctl.Links.RegistrationURL(ev.EventCode, reg.EventRegistrationUserID, rec.VerificationToken, reg.EventRegistrationSubID)
	return ctl.sendQR(c, url, q)
}

/* =========================================================
   QR image
   ========================================================= */

func (ctl *VerificationController) qrQuery(c *fiber.Ctx) (*dto.QRQuery, error) {
	var q dto.QRQuery
	if err := c.QueryParser(&q); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Query tidak valid")
	}
	q.Normalize()
	if err := ctl.Validator.Struct(&q); err != nil {
		return nil, err
	}
	return &q, nil
}

func badRequest(c *fiber.Ctx, err error) error {
	if isValidationErr(err) {
		return helper.JsonValidationError(c, helper.ValidationFieldErrors(err))
	}
	return verifyError(c, err, nil)
}

func (ctl *VerificationController) sendQR(c *fiber.Ctx, url string, q *dto.QRQuery) error {
	format, err := qrcode.ParseFormat(q.Format)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	img, err := ctl.QR.Render(url, q.Size, format)
	if err != nil {
		return verifyError(c, err, nil)
	}
	c.Set(fiber.HeaderContentType, format.ContentType())
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(img)
}

