package controller_test

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compsphere_backend/internals/constants"
	verifCtrl "compsphere_backend/internals/features/verifications/controller"
	dto "compsphere_backend/internals/features/verifications/dto"
	"compsphere_backend/internals/features/verifications/links"
	model "compsphere_backend/internals/features/verifications/model"
	verifRoute "compsphere_backend/internals/features/verifications/route"
	helper "compsphere_backend/internals/helpers"
	helperAuth "compsphere_backend/internals/helpers/auth"
	authMiddleware "compsphere_backend/internals/middlewares/auth"
	"compsphere_backend/internals/testutil"
)

type envelope struct {
	Success   bool                     `json:"success"`
	Message   string                   `json:"message"`
	ErrorCode string                   `json:"error_code"`
	Data      dto.VerificationResponse `json:"data"`
}

type listEnvelope struct {
	Data       []dto.VerificationResponse `json:"data"`
	Pagination helper.Pagination          `json:"pagination"`
}

type harness struct {
	app   *fiber.App
	fx    *testutil.Fixture
	admin uuid.UUID
}

// fakeAuth menggantikan AuthJWT: identitas dari header test.
func fakeAuth(c *fiber.Ctx) error {
	if u := c.Get("X-Test-User"); u != "" {
		c.Locals(helperAuth.LocUserID, u)
	}
	if r := c.Get("X-Test-Role"); r != "" {
		c.Locals(helperAuth.LocRole, r)
	}
	return c.Next()
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.NewDB(t)
	fx := testutil.Seed(t, db)

	ctl := verifCtrl.NewVerificationController(db, nil, links.NewBuilder("http://test.local", "admin"))
	app := fiber.New(fiber.Config{ErrorHandler: helper.FromFiberError})
	verifRoute.VerificationUserRoutes(app.Group("/api/u", fakeAuth), ctl)
	verifRoute.VerificationAdminRoutes(app.Group("/admin", fakeAuth,
		authMiddleware.OnlyRoles("admin only", constants.VerifierRoles...)), ctl)

	return &harness{app: app, fx: fx, admin: uuid.New()}
}

func (h *harness) call(t *testing.T, method, target string, userID uuid.UUID, role string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if userID != uuid.Nil {
		req.Header.Set("X-Test-User", userID.String())
	}
	if role != "" {
		req.Header.Set("X-Test-Role", role)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func decode(t *testing.T, raw []byte) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return env
}

func (h *harness) teamPath() string {
	return "/api/u/teams/" + h.fx.Team.TeamID.String() + "/activities/" + h.fx.Activity.ActivityID.String() + "/verification"
}

func (h *harness) regPath() string {
	return "/api/u/event-registrations/" + h.fx.Registration.EventRegistrationID.String() + "/verification"
}

func requestURI(t *testing.T, abs string) string {
	t.Helper()
	u, err := url.Parse(abs)
	require.NoError(t, err)
	return u.RequestURI()
}

/* =========================================================
   Team activity flow
   ========================================================= */

func TestTeamActivity_IssueShowConsume(t *testing.T) {
	h := newHarness(t)
	lead := h.fx.LeadUserID

	resp, raw := h.call(t, fiber.MethodGet, h.teamPath(), lead, "", nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	issued := decode(t, raw).Data
	assert.True(t, issued.IsValid)
	assert.Len(t, issued.Token, 32)
	assert.Equal(t, "http://test.local/admin/"+h.fx.Event.EventCode+"/checkpoint-1/team-alpha", issued.VerifyURL)

	// idempotent: token yang sama
	resp, raw = h.call(t, fiber.MethodGet, h.teamPath(), lead, "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, issued.Token, decode(t, raw).Data.Token)

	triple := requestURI(t, issued.VerifyURL)

	// admin melihat (read-only, boleh berulang)
	for i := 0; i < 2; i++ {
		resp, raw = h.call(t, fiber.MethodGet, triple, h.admin, "admin", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
		shown := decode(t, raw)
		assert.True(t, shown.Data.IsValid)
		assert.Equal(t, dto.MsgValidQR, shown.Message)
		require.NotNil(t, shown.Data.TeamActivity)
		assert.Equal(t, "team-alpha", shown.Data.TeamActivity.TeamCode)
	}

	resp, raw = h.call(t, fiber.MethodPost, triple, h.admin, "committee", map[string]string{"note": " booth 3 "})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	used := decode(t, raw).Data
	assert.Equal(t, model.StatusUsed, used.Status)
	assert.False(t, used.IsValid)
	require.NotNil(t, used.VerifiedBy)
	assert.Equal(t, h.admin, *used.VerifiedBy)
	assert.Equal(t, "booth 3", used.VerifiedMeta["note"])

	resp, raw = h.call(t, fiber.MethodPost, triple, uuid.New(), "admin", nil)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	conflict := decode(t, raw)
	assert.Equal(t, dto.MsgUsedQR, conflict.Message)
	assert.Equal(t, h.admin, *conflict.Data.VerifiedBy)

	// token path juga menolak
	resp, _ = h.call(t, fiber.MethodPost, "/admin/verify/"+issued.Token, uuid.New(), "admin", nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// peserta tidak mendapat token baru setelah check-in
	resp, raw = h.call(t, fiber.MethodGet, h.teamPath(), lead, "", nil)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, issued.Token, decode(t, raw).Data.Token)
}

func TestTeamActivity_ConsumeByToken(t *testing.T) {
	h := newHarness(t)

	_, raw := h.call(t, fiber.MethodGet, h.teamPath(), h.fx.LeadUserID, "", nil)
	tok := decode(t, raw).Data.Token

	// uppercase di URL tetap dikenali
	resp, raw := h.call(t, fiber.MethodGet, "/admin/verify/"+strings.ToUpper(tok), h.admin, "admin", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	assert.True(t, decode(t, raw).Data.IsValid)

	resp, raw = h.call(t, fiber.MethodPost, "/admin/verify/"+tok, h.admin, "admin", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, dto.MsgVerified, decode(t, raw).Message)

	resp, raw = h.call(t, fiber.MethodGet, "/admin/verify/"+tok, h.admin, "admin", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	shown := decode(t, raw)
	assert.False(t, shown.Data.IsValid)
	assert.Equal(t, dto.MsgUsedQR, shown.Message)
}

func TestTeamActivity_Regenerate(t *testing.T) {
	h := newHarness(t)

	_, raw := h.call(t, fiber.MethodGet, h.teamPath(), h.fx.LeadUserID, "", nil)
	oldTok := decode(t, raw).Data.Token

	resp, raw := h.call(t, fiber.MethodPost, h.teamPath()+"/regenerate", h.fx.LeadUserID, "", nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	newTok := decode(t, raw).Data.Token
	assert.NotEqual(t, oldTok, newTok)

	resp, raw = h.call(t, fiber.MethodGet, "/admin/verify/"+oldTok, h.admin, "admin", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	old := decode(t, raw)
	assert.Equal(t, model.StatusExpired, old.Data.Status)
	assert.Equal(t, dto.MsgExpiredQR, old.Message)

	resp, _ = h.call(t, fiber.MethodPost, "/admin/verify/"+oldTok, h.admin, "admin", nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestTeamActivity_Authorization(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.call(t, fiber.MethodGet, h.teamPath(), uuid.Nil, "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = h.call(t, fiber.MethodGet, h.teamPath(), uuid.New(), "", nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = h.call(t, fiber.MethodGet, "/api/u/teams/not-a-uuid/activities/"+h.fx.Activity.ActivityID.String()+"/verification", h.fx.LeadUserID, "", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = h.call(t, fiber.MethodGet, "/api/u/teams/"+h.fx.Team.TeamID.String()+"/activities/"+uuid.NewString()+"/verification", h.fx.LeadUserID, "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// peserta biasa tidak boleh ke jalur admin
	resp, _ = h.call(t, fiber.MethodGet, "/admin/verify/0123456789abcdef0123456789abcdef", h.fx.LeadUserID, "user", nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAdmin_UnknownAndMalformedTokens(t *testing.T) {
	h := newHarness(t)

	for _, tok := range []string{"0123456789abcdef0123456789abcdef", "not-a-token", "zz"} {
		resp, raw := h.call(t, fiber.MethodPost, "/admin/verify/"+tok, h.admin, "admin", nil)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, tok)
		assert.Equal(t, dto.MsgInvalidQR, decode(t, raw).Message)

		resp, _ = h.call(t, fiber.MethodGet, "/admin/verify/"+tok, h.admin, "admin", nil)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, tok)
	}

	resp, _ := h.call(t, fiber.MethodGet, "/admin/no-event/no-activity/no-team", h.admin, "admin", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// triple valid tapi belum pernah diterbitkan
	resp, _ = h.call(t, fiber.MethodPost, "/admin/"+h.fx.Event.EventCode+"/checkpoint-1/team-alpha", h.admin, "admin", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAdmin_ConsumeNoteValidation(t *testing.T) {
	h := newHarness(t)
	_, raw := h.call(t, fiber.MethodGet, h.teamPath(), h.fx.LeadUserID, "", nil)
	tok := decode(t, raw).Data.Token

	resp, _ := h.call(t, fiber.MethodPost, "/admin/verify/"+tok, h.admin, "admin", map[string]string{"note": strings.Repeat("x", 300)})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	// tidak ada perubahan status
	resp, raw = h.call(t, fiber.MethodGet, "/admin/verify/"+tok, h.admin, "admin", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, decode(t, raw).Data.IsValid)
}

/* =========================================================
   Registration flow
   ========================================================= */

func TestRegistration_IssueAndConsume(t *testing.T) {
	h := newHarness(t)

	resp, raw := h.call(t, fiber.MethodGet, h.regPath(), h.fx.LeadUserID, "", nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	issued := decode(t, raw).Data

	want := "http://test.local/admin/verify-registration/" + h.fx.Event.EventCode + "/" +
		h.fx.LeadUserID.String() + "/" + issued.Token + "?sub_event_id=" + h.fx.SubEvent.SubEventID.String()
	assert.Equal(t, want, issued.VerifyURL)

	target := requestURI(t, issued.VerifyURL)

	// sub_event_id lain → ditolak
	wrongSub := strings.Replace(target, h.fx.SubEvent.SubEventID.String(), uuid.NewString(), 1)
	resp, _ = h.call(t, fiber.MethodGet, wrongSub, h.admin, "admin", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// user_id lain → ditolak
	wrongUser := strings.Replace(target, h.fx.LeadUserID.String(), uuid.NewString(), 1)
	resp, _ = h.call(t, fiber.MethodPost, wrongUser, h.admin, "admin", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = h.call(t, fiber.MethodGet, strings.Replace(target, "sub_event_id="+h.fx.SubEvent.SubEventID.String(), "sub_event_id=bogus", 1), h.admin, "admin", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, raw = h.call(t, fiber.MethodGet, target, h.admin, "admin", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	assert.True(t, decode(t, raw).Data.IsValid)

	resp, raw = h.call(t, fiber.MethodPost, target, h.admin, "admin", map[string]string{"note": "gate A"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	used := decode(t, raw).Data
	assert.Equal(t, model.StatusUsed, used.Status)
	assert.Equal(t, "gate A", used.VerifiedMeta["note"])

	resp, raw = h.call(t, fiber.MethodPost, target, h.admin, "admin", nil)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, dto.MsgUsedQR, decode(t, raw).Message)
}

func TestRegistration_OwnerOnly(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.call(t, fiber.MethodGet, h.regPath(), uuid.New(), "", nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = h.call(t, fiber.MethodGet, "/api/u/event-registrations/"+uuid.NewString()+"/verification", h.fx.LeadUserID, "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

/* =========================================================
   QR & dashboard
   ========================================================= */

func TestQR_PNG(t *testing.T) {
	h := newHarness(t)

	resp, raw := h.call(t, fiber.MethodGet, h.teamPath()+"/qr?size=200", h.fx.LeadUserID, "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, "image/png", resp.Header.Get(fiber.HeaderContentType))
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())

	resp, _ = h.call(t, fiber.MethodGet, h.teamPath()+"/qr?format=gif", h.fx.LeadUserID, "", nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = h.call(t, fiber.MethodGet, h.regPath()+"/qr", h.fx.LeadUserID, "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestDashboard_Lists(t *testing.T) {
	h := newHarness(t)

	_, _ = h.call(t, fiber.MethodGet, h.teamPath(), h.fx.LeadUserID, "", nil)
	_, _ = h.call(t, fiber.MethodPost, h.teamPath()+"/regenerate", h.fx.LeadUserID, "", nil)
	_, _ = h.call(t, fiber.MethodGet, h.regPath(), h.fx.LeadUserID, "", nil)

	resp, raw := h.call(t, fiber.MethodGet, "/admin/dashboard/activities/"+h.fx.Activity.ActivityID.String()+"/verifications", h.admin, "admin", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	var all listEnvelope
	require.NoError(t, json.Unmarshal(raw, &all))
	assert.EqualValues(t, 2, all.Pagination.Total)

	resp, raw = h.call(t, fiber.MethodGet, "/admin/dashboard/activities/"+h.fx.Activity.ActivityID.String()+"/verifications?status=active", h.admin, "admin", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var active listEnvelope
	require.NoError(t, json.Unmarshal(raw, &active))
	assert.EqualValues(t, 1, active.Pagination.Total)
	require.Len(t, active.Data, 1)
	assert.True(t, active.Data[0].IsValid)

	resp, _ = h.call(t, fiber.MethodGet, "/admin/dashboard/activities/"+h.fx.Activity.ActivityID.String()+"/verifications?status=weird", h.admin, "admin", nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	resp, raw = h.call(t, fiber.MethodGet, "/admin/dashboard/events/"+h.fx.Event.EventID.String()+"/registration-verifications", h.admin, "admin", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	var regs listEnvelope
	require.NoError(t, json.Unmarshal(raw, &regs))
	assert.EqualValues(t, 1, regs.Pagination.Total)

	resp, raw = h.call(t, fiber.MethodGet, "/admin/dashboard/events/"+uuid.NewString()+"/registration-verifications", h.admin, "admin", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &regs))
	assert.Zero(t, regs.Pagination.Total)
}
