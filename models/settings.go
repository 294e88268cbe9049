package models

import "time"

// SettingsID is the _id of the single settings document.
const SettingsID = "global"

type Settings struct {
	ID                      string          `json:"_id" bson:"_id"`
	BusinessName            string          `json:"businessName" bson:"businessName"`
	BusinessEmail           string          `json:"businessEmail" bson:"businessEmail"`
	AdminNotificationEmails []string        `json:"adminNotificationEmails" bson:"adminNotificationEmails"`
	TimeslotDuration        int             `json:"timeslotDuration" bson:"timeslotDuration"`
	MaxConsecutiveSlots     int             `json:"maxConsecutiveSlots" bson:"maxConsecutiveSlots"`
	MinAdvanceBookingTime   int             `json:"minAdvanceBookingTime" bson:"minAdvanceBookingTime"`
	MaxAdvanceBookingDays   int             `json:"maxAdvanceBookingDays" bson:"maxAdvanceBookingDays"`
	MaxKartsPerTimeslot     int             `json:"maxKartsPerTimeslot" bson:"maxKartsPerTimeslot"`
	MaxMinutesPerSession    int             `json:"maxMinutesPerSession" bson:"maxMinutesPerSession"`
	WorkingHours            []WorkingDay    `json:"workingHours" bson:"workingHours"`
	Holidays                []Holiday       `json:"holidays" bson:"holidays"`
	EmailTemplates          []EmailTemplate `json:"emailTemplates" bson:"emailTemplates"`
	EmailSettings           EmailSettings   `json:"emailSettings" bson:"emailSettings"`
	UpdatedAt               time.Time       `json:"updatedAt" bson:"updatedAt"`
}

type WorkingDay struct {
	Day       string `json:"day" bson:"day"`
	IsOpen    bool   `json:"isOpen" bson:"isOpen"`
	OpenTime  string `json:"openTime" bson:"openTime"`
	CloseTime string `json:"closeTime" bson:"closeTime"`
}

// Holiday dates are calendar dates, "YYYY-MM-DD".
type Holiday struct {
	ID          string `json:"_id" bson:"_id"`
	Date        string `json:"date" bson:"date"`
	Description string `json:"description" bson:"description"`
}

const (
	TemplateBookingConfirmation = "booking_confirmation"
	TemplateBookingCancellation = "booking_cancellation"
	TemplateAdminNotification   = "admin_notification"
)

type EmailTemplate struct {
	Type    string `json:"type" bson:"type"`
	Subject string `json:"subject" bson:"subject"`
	Body    string `json:"body" bson:"body"`
}

type EmailSettings struct {
	Provider string `json:"provider" bson:"provider"`
	Host     string `json:"host" bson:"host"`
	Port     int    `json:"port" bson:"port"`
	Username string `json:"username" bson:"username"`
	Password string `json:"password,omitempty" bson:"password"`
	APIKey   string `json:"apiKey,omitempty" bson:"apiKey"`
}

// Template returns the email template of the given type.
func (s *Settings) Template(kind string) (EmailTemplate, bool) {
	for _, t := range s.EmailTemplates {
		if t.Type == kind {
			return t, true
		}
	}
	return EmailTemplate{}, false
}

// PublicSettings is the subset of settings the booking page may see.
type PublicSettings struct {
	BusinessName          string       `json:"businessName"`
	BusinessEmail         string       `json:"businessEmail"`
	TimeslotDuration      int          `json:"timeslotDuration"`
	MaxConsecutiveSlots   int          `json:"maxConsecutiveSlots"`
	MinAdvanceBookingTime int          `json:"minAdvanceBookingTime"`
	MaxAdvanceBookingDays int          `json:"maxAdvanceBookingDays"`
	MaxKartsPerTimeslot   int          `json:"maxKartsPerTimeslot"`
	MaxMinutesPerSession  int          `json:"maxMinutesPerSession"`
	WorkingHours          []WorkingDay `json:"workingHours"`
	Holidays              []Holiday    `json:"holidays"`
}

func (s *Settings) Public() PublicSettings {
	return PublicSettings{
		BusinessName:          s.BusinessName,
		BusinessEmail:         s.BusinessEmail,
		TimeslotDuration:      s.TimeslotDuration,
		MaxConsecutiveSlots:   s.MaxConsecutiveSlots,
		MinAdvanceBookingTime: s.MinAdvanceBookingTime,
		MaxAdvanceBookingDays: s.MaxAdvanceBookingDays,
		MaxKartsPerTimeslot:   s.MaxKartsPerTimeslot,
		MaxMinutesPerSession:  s.MaxMinutesPerSession,
		WorkingHours:          s.WorkingHours,
		Holidays:              s.Holidays,
	}
}

// Clone returns a copy that shares no slices with s.
func (s *Settings) Clone() *Settings {
	c := *s
	c.AdminNotificationEmails = append([]string(nil), s.AdminNotificationEmails...)
	c.WorkingHours = append([]WorkingDay(nil), s.WorkingHours...)
	c.Holidays = append([]Holiday(nil), s.Holidays...)
	c.EmailTemplates = append([]EmailTemplate(nil), s.EmailTemplates...)
	return &c
}
