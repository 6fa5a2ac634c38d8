package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academyhq/academy-backend/internal/storage"
	"github.com/academyhq/academy-backend/internal/wizard"
)

func newWizardTestApp(t *testing.T) (*fiber.App, *storage.MemoryStore) {
	t.Helper()

	store := storage.NewMemoryStore()
	snapshots := wizard.NewSnapshots(store, 30*time.Minute)
	handler := NewWizardHandler(snapshots)

	app := fiber.New()
	app.Get("/api/wizard/:sid", handler.Open)
	app.Post("/api/wizard/:sid/events", handler.Event)
	app.Post("/api/wizard/:sid/close", handler.Close)
	return app, store
}

func openWizard(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func wizardEvent(t *testing.T, app *fiber.App, sid string, event fiber.Map) *http.Response {
	t.Helper()
	return postJSON(t, app, "/api/wizard/"+sid+"/events", event)
}

func wizardState(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := decodeJSON(t, resp)
	state, ok := body["state"].(map[string]interface{})
	require.True(t, ok, "response missing state: %v", body)
	return state
}

func TestWizardEndpoints_FullFlow(t *testing.T) {
	app, _ := newWizardTestApp(t)

	resp := openWizard(t, app, "/api/wizard/w1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeJSON(t, resp)
	assert.Equal(t, false, body["resumed"])

	resp = wizardEvent(t, app, "w1", fiber.Map{"type": "select_sport", "sport": "football"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = wizardEvent(t, app, "w1", fiber.Map{"type": "next"})
	state := wizardState(t, resp)
	assert.Equal(t, "calendar", state["current_step"])

	date := time.Now().AddDate(0, 0, 7).Format(time.RFC3339)
	resp = wizardEvent(t, app, "w1", fiber.Map{"type": "select_date", "date": date})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = wizardEvent(t, app, "w1", fiber.Map{"type": "next"})
	state = wizardState(t, resp)
	assert.Equal(t, "auth", state["current_step"])

	resp = wizardEvent(t, app, "w1", fiber.Map{"type": "authenticated", "phone": testPhone})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = wizardEvent(t, app, "w1", fiber.Map{"type": "next"})
	state = wizardState(t, resp)
	assert.Equal(t, "details", state["current_step"])

	resp = wizardEvent(t, app, "w1", fiber.Map{
		"type":    "submit_details",
		"details": fiber.Map{"name": "Ravi Kumar", "age": 12, "email": "ravi@example.com"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = wizardEvent(t, app, "w1", fiber.Map{"type": "booking_created", "booking_id": "TRB00042"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = wizardEvent(t, app, "w1", fiber.Map{"type": "next"})
	state = wizardState(t, resp)
	assert.Equal(t, "confirmation", state["current_step"])
	assert.Equal(t, "TRB00042", state["actual_booking_id"])
}

func TestWizardEndpoints_ValidationErrorsSurfaceInState(t *testing.T) {
	app, _ := newWizardTestApp(t)

	resp := openWizard(t, app, "/api/wizard/w2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = wizardEvent(t, app, "w2", fiber.Map{"type": "next"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := wizardState(t, resp)
	assert.Equal(t, "sport", state["current_step"])
	errs := state["errors"].(map[string]interface{})
	assert.Contains(t, errs, "sport")
}

func TestWizardEndpoints_OpenResumesSavedState(t *testing.T) {
	app, _ := newWizardTestApp(t)

	resp := openWizard(t, app, "/api/wizard/w3")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = wizardEvent(t, app, "w3", fiber.Map{"type": "select_sport", "sport": "tennis"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = openWizard(t, app, "/api/wizard/w3")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeJSON(t, resp)
	assert.Equal(t, true, body["resumed"])
	state := body["state"].(map[string]interface{})
	assert.Equal(t, "tennis", state["selected_sport"])
}

func TestWizardEndpoints_OpenSportQueryOverrides(t *testing.T) {
	app, _ := newWizardTestApp(t)

	resp := openWizard(t, app, "/api/wizard/w4?sport=cricket")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := wizardState(t, resp)
	assert.Equal(t, "cricket", state["selected_sport"])
	assert.Equal(t, "calendar", state["current_step"])
}

func TestWizardEndpoints_UnknownEventRejected(t *testing.T) {
	app, _ := newWizardTestApp(t)

	resp := wizardEvent(t, app, "w5", fiber.Map{"type": "jump_to_end"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWizardEndpoints_CloseMidFlowKeepsSnapshot(t *testing.T) {
	app, store := newWizardTestApp(t)

	resp := openWizard(t, app, "/api/wizard/w6")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = wizardEvent(t, app, "w6", fiber.Map{"type": "select_sport", "sport": "football"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/wizard/w6/close", nil)
	closeResp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, closeResp.StatusCode)

	_, err = store.GetWizardSnapshot("w6")
	assert.NoError(t, err, "mid-flow close keeps the snapshot for resume")
}
