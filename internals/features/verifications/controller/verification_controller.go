// file: internals/features/verifications/controller/verification_controller.go
package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	eventService "compsphere_backend/internals/features/events/service"
	dto "compsphere_backend/internals/features/verifications/dto"
	"compsphere_backend/internals/features/verifications/links"
	model "compsphere_backend/internals/features/verifications/model"
	"compsphere_backend/internals/features/verifications/qrcode"
	repo "compsphere_backend/internals/features/verifications/repository"
	"compsphere_backend/internals/features/verifications/service"
	"compsphere_backend/internals/features/verifications/token"
	helper "compsphere_backend/internals/helpers"
	"compsphere_backend/internals/metrics"
)

/* =========================
   Controller
   ========================= */

type VerificationController struct {
	DB        *gorm.DB
	Validator *validator.Validate

	Lookup *eventService.Lookup
	Teams  *service.TeamActivityService
	Regs   *service.EventRegistrationService
	Links  *links.Builder
	QR     *qrcode.Renderer
}

func NewVerificationController(db *gorm.DB, m *metrics.VerificationMetrics, lb *links.Builder) *VerificationController {
	gen := token.NewGenerator()
	return &VerificationController{
		DB:        db,
		Validator: dto.NewValidator(),
		Lookup:    eventService.NewLookup(db),
		Teams:     service.NewTeamActivityService(db, gen, m),
		Regs:      service.NewEventRegistrationService(db, gen, m),
		Links:     lb,
		QR:        qrcode.NewRenderer(),
	}
}

/* =========================
   Small helpers
   ========================= */

// verifyError memetakan error domain ke response admin; data ikut dikirim untuk 409.
func verifyError(c *fiber.Ctx, err error, data any) error {
	switch {
	case errors.Is(err, repo.ErrNotFound), errors.Is(err, eventService.ErrNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, dto.MsgInvalidQR)
	case errors.Is(err, repo.ErrAlreadyConsumed):
		return helper.JsonErrorWithData(c, fiber.StatusConflict, dto.MsgUsedQR, data)
	case errors.Is(err, service.ErrMissingActor):
		return helper.JsonError(c, fiber.StatusUnauthorized, "User belum login")
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return helper.JsonError(c, fe.Code, fe.Message)
	}
	log.Printf("[ERROR] verification %s %s: %v", c.Method(), c.Path(), err)
	return helper.JsonError(c, fiber.StatusInternalServerError, "")
}

// tokenParam: normalisasi + validasi format. Token rusak diperlakukan sama dengan "tidak ada".
func (ctl *VerificationController) tokenParam(c *fiber.Ctx) (string, error) {
	p := dto.TokenParam{Token: dto.NormalizeToken(c.Params("token"))}
	if err := ctl.Validator.Struct(&p); err != nil {
		return "", repo.ErrNotFound
	}
	return p.Token, nil
}

func (ctl *VerificationController) consumeRequest(c *fiber.Ctx) (*dto.ConsumeRequest, error) {
	var req dto.ConsumeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Body tidak valid")
		}
	}
	req.Normalize()
	if err := req.Validate(ctl.Validator); err != nil {
		return nil, err
	}
	return &req, nil
}

func isValidationErr(err error) bool {
	var ve validator.ValidationErrors
	return errors.As(err, &ve)
}

func (ctl *VerificationController) teamActivityResponse(c *fiber.Ctx, rec *model.TeamActivityVerification) dto.VerificationResponse {
	out := dto.FromTeamActivity(rec)
	subj, err := ctl.Lookup.LoadActivitySubject(c.UserContext(), rec.SubjectTeamID, rec.SubjectActivityID)
	if err != nil {
		log.Printf("[WARN] load activity subject %s/%s: %v", rec.SubjectTeamID, rec.SubjectActivityID, err)
		return out
	}
	return out.
		WithTeamActivity(subj.Event, subj.Activity, subj.Team).
		WithURLs(ctl.Links.TeamActivityURL(subj.Event.EventCode, subj.Activity.ActivityCode, subj.Team.TeamCode), "")
}

func (ctl *VerificationController) registrationResponse(c *fiber.Ctx, rec *model.EventRegistrationVerification) dto.VerificationResponse {
	out := dto.FromEventRegistration(rec)
	ctx := c.UserContext()
	reg, err := ctl.Lookup.FindRegistration(ctx, rec.SubjectRegistrationID)
	if err != nil {
		log.Printf("[WARN] load registration %s: %v", rec.SubjectRegistrationID, err)
		return out
	}
	ev, err := ctl.Lookup.FindEventByID(ctx, reg.EventRegistrationEventID)
	if err != nil {
		log.Printf("[WARN] load event %s: %v", reg.EventRegistrationEventID, err)
		return out
	}
	return out.
		WithRegistration(ev, reg).
		WithURLs(ctl.Links.RegistrationURL(ev.EventCode, reg.EventRegistrationUserID, rec.VerificationToken, reg.EventRegistrationSubID), "")
}

// optionalUUIDQuery: query kosong → nil; isi tapi bukan UUID → 400.
func optionalUUIDQuery(c *fiber.Ctx, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, key+" tidak valid")
	}
	return &id, nil
}
