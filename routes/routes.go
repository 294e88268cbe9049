package routes

import (
	"fmt"
	"net/http"

	"kartbook/auth"
	"kartbook/booking"
	"kartbook/karts"
	"kartbook/middleware"
	"kartbook/ratelim"
	"kartbook/settings"

	"github.com/julienschmidt/httprouter"
)

// Handlers bundles everything the router serves.
type Handlers struct {
	Auth     *auth.Handler
	Bookings *booking.Handler
	Hub      *booking.Hub
	Karts    *karts.Handler
	Settings *settings.Handler

	Guard     middleware.Auth
	Limiter   *ratelim.RateLimiter
	UploadDir string
}

func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

// New registers every route on a fresh router.
func New(h Handlers) *httprouter.Router {
	router := httprouter.New()
	router.GET("/health", Index)

	AddAuthRoutes(router, h)
	AddBookingRoutes(router, h)
	AddKartRoutes(router, h)
	AddSettingsRoutes(router, h)
	AddStaticRoutes(router, h)
	return router
}

func AddStaticRoutes(router *httprouter.Router, h Handlers) {
	router.ServeFiles(karts.PublicPrefix+"/*filepath", http.Dir(h.UploadDir))
}

func AddAuthRoutes(router *httprouter.Router, h Handlers) {
	router.POST("/api/users/login", h.Limiter.Limit(h.Auth.Login))
}

func AddBookingRoutes(router *httprouter.Router, h Handlers) {
	admin := h.Guard.RequireAdmin

	router.GET("/api/timeslots", h.Bookings.GetTimeslots)
	router.POST("/api/bookings", h.Limiter.Limit(h.Bookings.CreateBooking))
	router.GET("/api/ws/availability/:date", h.Hub.HandleWS)

	router.GET("/api/bookings", admin(h.Bookings.ListBookings))
	router.GET("/api/bookings/:id", admin(h.Bookings.GetBooking))
	router.GET("/api/bookings/:id/receipt", admin(h.Bookings.GetReceipt))
	router.PUT("/api/bookings/:id", admin(h.Bookings.UpdateBooking))
	router.DELETE("/api/bookings/:id", admin(h.Bookings.DeleteBooking))
}

func AddKartRoutes(router *httprouter.Router, h Handlers) {
	admin := h.Guard.RequireAdmin

	router.GET("/api/karts", h.Karts.ListKarts)
	router.GET("/api/admin/karts", admin(h.Karts.ListAllKarts))
	router.GET("/api/karts/:id", h.Karts.GetKart)
	router.POST("/api/karts", admin(h.Karts.CreateKart))
	router.PUT("/api/karts/:id", admin(h.Karts.UpdateKart))
	router.DELETE("/api/karts/:id", admin(h.Karts.DeleteKart))
	router.POST("/api/karts/:id/image", admin(h.Karts.UploadKartImage))

	router.GET("/api/kart-types", h.Karts.ListKartTypes)
	router.GET("/api/admin/kart-types", admin(h.Karts.ListAllKartTypes))
	router.GET("/api/kart-types/:id", h.Karts.GetKartType)
	router.POST("/api/kart-types", admin(h.Karts.CreateKartType))
	router.PUT("/api/kart-types/:id", admin(h.Karts.UpdateKartType))
	router.DELETE("/api/kart-types/:id", admin(h.Karts.DeleteKartType))
}

func AddSettingsRoutes(router *httprouter.Router, h Handlers) {
	admin := h.Guard.RequireAdmin

	router.GET("/api/settings", admin(h.Settings.GetSettings))
	router.PUT("/api/settings", admin(h.Settings.UpdateSettings))
	router.GET("/api/settings/public", h.Settings.GetPublicSettings)
	router.POST("/api/settings/holidays", admin(h.Settings.AddHoliday))
	router.DELETE("/api/settings/holidays/:date", admin(h.Settings.RemoveHoliday))
	router.PUT("/api/settings/email-templates/:type", admin(h.Settings.UpdateEmailTemplate))
	router.POST("/api/settings/test-email", admin(h.Settings.SendTestEmail))
}
