package settings

import (
	"kartbook/models"
)

// Defaults is the configuration a fresh installation starts with.
func Defaults() *models.Settings {
	weekday := func(day string) models.WorkingDay {
		return models.WorkingDay{Day: day, IsOpen: true, OpenTime: "09:00", CloseTime: "18:00"}
	}
	return &models.Settings{
		ID:                      models.SettingsID,
		BusinessName:            "Kart Booking System",
		BusinessEmail:           "info@kartbooking.com",
		AdminNotificationEmails: []string{"admin@kartbooking.com"},
		TimeslotDuration:        30,
		MaxConsecutiveSlots:     4,
		MinAdvanceBookingTime:   2,
		MaxAdvanceBookingDays:   30,
		MaxKartsPerTimeslot:     5,
		MaxMinutesPerSession:    60,
		WorkingHours: []models.WorkingDay{
			weekday("monday"),
			weekday("tuesday"),
			weekday("wednesday"),
			weekday("thursday"),
			weekday("friday"),
			{Day: "saturday", IsOpen: true, OpenTime: "10:00", CloseTime: "16:00"},
			{Day: "sunday", IsOpen: false, OpenTime: "00:00", CloseTime: "00:00"},
		},
		Holidays: []models.Holiday{},
		EmailTemplates: []models.EmailTemplate{
			{
				Type:    models.TemplateBookingConfirmation,
				Subject: "Your Kart Booking Confirmation",
				Body:    "<h1>Booking Confirmation</h1><p>Dear {{customerName}},</p><p>Your booking for {{date}} from {{startTime}} to {{endTime}} has been confirmed.</p><p>Timeslots: {{timeslots}}</p><p>Total: {{totalPrice}}</p><p>Thank you for choosing {{businessName}}!</p>",
			},
			{
				Type:    models.TemplateBookingCancellation,
				Subject: "Your Kart Booking Cancellation",
				Body:    "<h1>Booking Cancellation</h1><p>Dear {{customerName}},</p><p>Your booking for {{date}} from {{startTime}} to {{endTime}} has been cancelled.</p><p>We hope to see you another time at {{businessName}}.</p>",
			},
			{
				Type:    models.TemplateAdminNotification,
				Subject: "New Booking Notification",
				Body:    "<h1>New Booking</h1><p>A new booking has been made by {{customerName}} for {{date}} from {{startTime}} to {{endTime}}.</p><p>Timeslots: {{timeslots}}</p><p>Total: {{totalPrice}}</p>",
			},
		},
		EmailSettings: models.EmailSettings{
			Provider: "smtp",
			Port:     587,
		},
	}
}
