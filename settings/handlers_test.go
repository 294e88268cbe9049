package settings_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"kartbook/memstore"
	"kartbook/models"
	"kartbook/settings"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type stubMailer struct {
	to  []string
	err error
}

func (m *stubMailer) SendTest(_ context.Context, to string) error {
	m.to = append(m.to, to)
	return m.err
}

func setup(t *testing.T) (*httprouter.Router, *memstore.Settings, *stubMailer) {
	t.Helper()
	initial := settings.Defaults()
	initial.EmailSettings.Password = "hunter2"
	store := memstore.NewSettings(initial)
	mailer := &stubMailer{}
	h := &settings.Handler{Store: store, Mailer: mailer}

	router := httprouter.New()
	router.GET("/api/settings", h.GetSettings)
	router.PUT("/api/settings", h.UpdateSettings)
	router.GET("/api/settings/public", h.GetPublicSettings)
	router.POST("/api/settings/holidays", h.AddHoliday)
	router.DELETE("/api/settings/holidays/:date", h.RemoveHoliday)
	router.PUT("/api/settings/email-templates/:type", h.UpdateEmailTemplate)
	router.POST("/api/settings/test-email", h.SendTestEmail)
	return router, store, mailer
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetSettingsHidesSecrets(t *testing.T) {
	router, _, _ := setup(t)
	rec := do(router, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, "Kart Booking System", gjson.Get(body, "businessName").String())
	assert.False(t, gjson.Get(body, "emailSettings.password").Exists())
	assert.Equal(t, int64(7), gjson.Get(body, "workingHours.#").Int())
}

func TestPublicSettingsOmitTemplates(t *testing.T) {
	router, _, _ := setup(t)
	rec := do(router, http.MethodGet, "/api/settings/public", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, int64(30), gjson.Get(body, "timeslotDuration").Int())
	assert.False(t, gjson.Get(body, "emailTemplates").Exists())
	assert.False(t, gjson.Get(body, "emailSettings").Exists())
}

func TestUpdateSettingsMerges(t *testing.T) {
	router, store, _ := setup(t)
	rec := do(router, http.MethodPut, "/api/settings", `{
		"businessName": " Tallinn Karting ",
		"maxMinutesPerSession": 90,
		"emailSettings": {"host": "smtp.example.com", "password": ""}
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	s, err := store.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Tallinn Karting", s.BusinessName)
	assert.Equal(t, 90, s.MaxMinutesPerSession)
	assert.Equal(t, 30, s.TimeslotDuration)
	assert.Equal(t, "smtp.example.com", s.EmailSettings.Host)
	assert.Equal(t, "hunter2", s.EmailSettings.Password)
	assert.False(t, s.UpdatedAt.IsZero())
}

func TestUpdateSettingsValidates(t *testing.T) {
	router, _, _ := setup(t)
	tests := map[string]string{
		"zero duration": `{"timeslotDuration": 0}`,
		"bad day":       `{"workingHours": [{"day": "funday", "isOpen": true, "openTime": "09:00", "closeTime": "10:00"}]}`,
		"bad clock":     `{"workingHours": [{"day": "monday", "isOpen": true, "openTime": "9:00", "closeTime": "10:00"}]}`,
		"bad email":     `{"adminNotificationEmails": ["nobody"]}`,
		"bad provider":  `{"emailSettings": {"provider": "pigeon"}}`,
		"not json":      `{`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			rec := do(router, http.MethodPut, "/api/settings", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestHolidays(t *testing.T) {
	router, store, _ := setup(t)

	rec := do(router, http.MethodPost, "/api/settings/holidays", `{"date": "2025-06-24", "description": "Midsummer"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "2025-06-24", gjson.Get(rec.Body.String(), "0.date").String())
	assert.NotEmpty(t, gjson.Get(rec.Body.String(), "0._id").String())

	rec = do(router, http.MethodPost, "/api/settings/holidays", `{"date": "2025-06-24", "description": "Again"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodPost, "/api/settings/holidays", `{"date": "24.06.2025", "description": "Wrong format"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodDelete, "/api/settings/holidays/2025-06-24", "")
	require.Equal(t, http.StatusOK, rec.Code)
	s, _ := store.Current(context.Background())
	assert.Empty(t, s.Holidays)
}

func TestUpdateEmailTemplate(t *testing.T) {
	router, store, _ := setup(t)

	rec := do(router, http.MethodPut, "/api/settings/email-templates/"+models.TemplateBookingConfirmation, `{"subject": "See you on track", "body": "<p>Hi {{customerName}}</p>"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	s, _ := store.Current(context.Background())
	tmpl, ok := s.Template(models.TemplateBookingConfirmation)
	require.True(t, ok)
	assert.Equal(t, "See you on track", tmpl.Subject)

	rec = do(router, http.MethodPut, "/api/settings/email-templates/newsletter", `{"subject": "x", "body": "y"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSendTestEmail(t *testing.T) {
	router, _, mailer := setup(t)

	rec := do(router, http.MethodPost, "/api/settings/test-email", `{"email": "ops@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"ops@example.com"}, mailer.to)

	mailer.err = errors.New("connection refused")
	rec = do(router, http.MethodPost, "/api/settings/test-email", `{"email": "ops@example.com"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
