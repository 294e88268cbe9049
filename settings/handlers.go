package settings

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"kartbook/models"
	"kartbook/utils"

	"github.com/golang-sql/civil"
	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

// Store holds the settings document. Current creates it with Defaults when
// it does not exist yet.
type Store interface {
	Current(ctx context.Context) (*models.Settings, error)
	Save(ctx context.Context, s *models.Settings) error
}

// TestMailer sends the test message of the email configuration screen.
type TestMailer interface {
	SendTest(ctx context.Context, to string) error
}

type Handler struct {
	Store  Store
	Mailer TestMailer
}

type workingDayInput struct {
	Day       string `json:"day" validate:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	IsOpen    bool   `json:"isOpen"`
	OpenTime  string `json:"openTime" validate:"required,clock"`
	CloseTime string `json:"closeTime" validate:"required,clock"`
}

type holidayInput struct {
	Date        string `json:"date" validate:"required,isodate"`
	Description string `json:"description" validate:"required,max=200"`
}

type templateInput struct {
	Type    string `json:"type" validate:"required,oneof=booking_confirmation booking_cancellation admin_notification"`
	Subject string `json:"subject" validate:"required,max=300"`
	Body    string `json:"body" validate:"required"`
}

type emailSettingsInput struct {
	Provider *string `json:"provider" validate:"omitnil,oneof=smtp sendgrid mailgun"`
	Host     *string `json:"host" validate:"omitnil,max=255"`
	Port     *int    `json:"port" validate:"omitnil,gt=0,lt=65536"`
	Username *string `json:"username"`
	Password *string `json:"password"`
	APIKey   *string `json:"apiKey"`
}

// Update is a partial settings change. Slices replace the stored list when
// present; emailSettings is merged field by field.
type Update struct {
	BusinessName            *string             `json:"businessName" validate:"omitnil,min=1,max=200"`
	BusinessEmail           *string             `json:"businessEmail" validate:"omitnil,email"`
	AdminNotificationEmails []string            `json:"adminNotificationEmails" validate:"omitempty,dive,email"`
	TimeslotDuration        *int                `json:"timeslotDuration" validate:"omitnil,gt=0,lte=720"`
	MaxConsecutiveSlots     *int                `json:"maxConsecutiveSlots" validate:"omitnil,gte=1"`
	MinAdvanceBookingTime   *int                `json:"minAdvanceBookingTime" validate:"omitnil,gte=0"`
	MaxAdvanceBookingDays   *int                `json:"maxAdvanceBookingDays" validate:"omitnil,gte=0"`
	MaxKartsPerTimeslot     *int                `json:"maxKartsPerTimeslot" validate:"omitnil,gte=0"`
	MaxMinutesPerSession    *int                `json:"maxMinutesPerSession" validate:"omitnil,gte=0"`
	WorkingHours            []workingDayInput   `json:"workingHours" validate:"omitempty,dive"`
	Holidays                []holidayInput      `json:"holidays" validate:"omitempty,dive"`
	EmailTemplates          []templateInput     `json:"emailTemplates" validate:"omitempty,dive"`
	EmailSettings           *emailSettingsInput `json:"emailSettings"`
}

// Apply merges u into s.
func (u Update) Apply(s *models.Settings) {
	setString(&s.BusinessName, u.BusinessName)
	setString(&s.BusinessEmail, u.BusinessEmail)
	setInt(&s.TimeslotDuration, u.TimeslotDuration)
	setInt(&s.MaxConsecutiveSlots, u.MaxConsecutiveSlots)
	setInt(&s.MinAdvanceBookingTime, u.MinAdvanceBookingTime)
	setInt(&s.MaxAdvanceBookingDays, u.MaxAdvanceBookingDays)
	setInt(&s.MaxKartsPerTimeslot, u.MaxKartsPerTimeslot)
	setInt(&s.MaxMinutesPerSession, u.MaxMinutesPerSession)

	if u.AdminNotificationEmails != nil {
		s.AdminNotificationEmails = u.AdminNotificationEmails
	}
	if u.WorkingHours != nil {
		s.WorkingHours = make([]models.WorkingDay, 0, len(u.WorkingHours))
		for _, wd := range u.WorkingHours {
			s.WorkingHours = append(s.WorkingHours, models.WorkingDay(wd))
		}
	}
	if u.Holidays != nil {
		s.Holidays = make([]models.Holiday, 0, len(u.Holidays))
		for _, h := range u.Holidays {
			s.Holidays = append(s.Holidays, newHoliday(h))
		}
	}
	if u.EmailTemplates != nil {
		s.EmailTemplates = make([]models.EmailTemplate, 0, len(u.EmailTemplates))
		for _, t := range u.EmailTemplates {
			s.EmailTemplates = append(s.EmailTemplates, models.EmailTemplate(t))
		}
	}
	if es := u.EmailSettings; es != nil {
		setString(&s.EmailSettings.Provider, es.Provider)
		setString(&s.EmailSettings.Host, es.Host)
		setInt(&s.EmailSettings.Port, es.Port)
		setString(&s.EmailSettings.Username, es.Username)
		setSecret(&s.EmailSettings.Password, es.Password)
		setSecret(&s.EmailSettings.APIKey, es.APIKey)
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// setSecret ignores empty values, which is what redacted responses carry.
func setSecret(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func newHoliday(h holidayInput) models.Holiday {
	d, _ := civil.ParseDate(h.Date)
	return models.Holiday{ID: uuid.NewString(), Date: d.String(), Description: strings.TrimSpace(h.Description)}
}

// redacted hides transport secrets from API responses.
func redacted(s *models.Settings) *models.Settings {
	c := s.Clone()
	c.EmailSettings.Password = ""
	c.EmailSettings.APIKey = ""
	return c
}

func (h *Handler) load(ctx context.Context, w http.ResponseWriter) (*models.Settings, bool) {
	s, err := h.Store.Current(ctx)
	if err != nil {
		log.Printf("[Settings] load: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	return s, true
}

func (h *Handler) save(ctx context.Context, w http.ResponseWriter, s *models.Settings) bool {
	s.UpdatedAt = time.Now().UTC()
	if err := h.Store.Save(ctx, s); err != nil {
		log.Printf("[Settings] save: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update settings")
		return false
	}
	return true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := utils.Validate(v); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, utils.ValidationMessage(err))
		return false
	}
	return true
}

// GET /api/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	s, ok := h.load(ctx, w)
	if !ok {
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, redacted(s))
}

// GET /api/settings/public
func (h *Handler) GetPublicSettings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	s, ok := h.load(ctx, w)
	if !ok {
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, s.Public())
}

// PUT /api/settings
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var u Update
	if !decode(w, r, &u) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	s, ok := h.load(ctx, w)
	if !ok {
		return
	}
	u.Apply(s)
	if !h.save(ctx, w, s) {
		return
	}
	log.Printf("[Settings] updated")
	utils.RespondWithJSON(w, http.StatusOK, redacted(s))
}

// POST /api/settings/holidays
func (h *Handler) AddHoliday(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in holidayInput
	if !decode(w, r, &in) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	s, ok := h.load(ctx, w)
	if !ok {
		return
	}
	holiday := newHoliday(in)
	for _, existing := range s.Holidays {
		if existing.Date == holiday.Date {
			utils.RespondWithError(w, http.StatusBadRequest, "Holiday already exists for this date")
			return
		}
	}
	s.Holidays = append(s.Holidays, holiday)
	if !h.save(ctx, w, s) {
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, s.Holidays)
}

// DELETE /api/settings/holidays/:date
func (h *Handler) RemoveHoliday(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	d, err := civil.ParseDate(ps.ByName("date"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Date must be YYYY-MM-DD")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	s, ok := h.load(ctx, w)
	if !ok {
		return
	}
	kept := make([]models.Holiday, 0, len(s.Holidays))
	for _, holiday := range s.Holidays {
		if holiday.Date != d.String() {
			kept = append(kept, holiday)
		}
	}
	s.Holidays = kept
	if !h.save(ctx, w, s) {
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, s.Holidays)
}

// PUT /api/settings/email-templates/:type
func (h *Handler) UpdateEmailTemplate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var in struct {
		Subject string `json:"subject" validate:"required,max=300"`
		Body    string `json:"body" validate:"required"`
	}
	if !decode(w, r, &in) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	s, ok := h.load(ctx, w)
	if !ok {
		return
	}
	kind := ps.ByName("type")
	for i, t := range s.EmailTemplates {
		if t.Type != kind {
			continue
		}
		s.EmailTemplates[i] = models.EmailTemplate{Type: kind, Subject: in.Subject, Body: in.Body}
		if !h.save(ctx, w, s) {
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, s.EmailTemplates[i])
		return
	}
	utils.RespondWithError(w, http.StatusNotFound, "Email template not found")
}

// POST /api/settings/test-email
func (h *Handler) SendTestEmail(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in struct {
		Email string `json:"email" validate:"required,email"`
	}
	if !decode(w, r, &in) {
		return
	}
	if h.Mailer == nil {
		utils.RespondWithError(w, http.StatusServiceUnavailable, "Email is not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	if err := h.Mailer.SendTest(ctx, in.Email); err != nil {
		log.Printf("[Settings] test email to %s: %v", in.Email, err)
		utils.RespondWithError(w, http.StatusBadGateway, "Failed to send test email: "+err.Error())
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Test email sent successfully"})
}
