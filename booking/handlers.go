package booking

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"kartbook/models"
	"kartbook/receipt"
	"kartbook/utils"

	"github.com/julienschmidt/httprouter"
)

const maxBodyBytes = 1 << 20

// Handler exposes the Service over HTTP.
type Handler struct {
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Service: svc}
}

// GET /api/timeslots?date=YYYY-MM-DD
func (h *Handler) GetTimeslots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	slots, err := h.Service.Timeslots(ctx, r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, slots)
}

// POST /api/bookings
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	res, err := h.Service.Create(ctx, req)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"ok":       true,
		"booking":  res.Booking,
		"warnings": res.Warnings,
	})
}

// GET /api/bookings?startDate=&endDate=&status=
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q := r.URL.Query()
	bookings, err := h.Service.List(ctx, models.BookingFilter{
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		Status:    q.Get("status"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	utils.RespondWithJSON(w, http.StatusOK, bookings)
}

// GET /api/bookings/:id
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	b, err := h.Service.Get(ctx, ps.ByName("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, b)
}

// PUT /api/bookings/:id
func (h *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var patch Patch
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&patch); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	res, err := h.Service.Update(ctx, ps.ByName("id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"booking":  res.Booking,
		"warnings": res.Warnings,
	})
}

// DELETE /api/bookings/:id
func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := ps.ByName("id")
	if err := h.Service.Delete(ctx, id); err != nil {
		writeError(w, err)
		return
	}
	log.Printf("[Booking] %s deleted by %q", id, utils.GetUserIDFromRequest(r))
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "Booking removed"})
}

// GET /api/bookings/:id/receipt
func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	b, err := h.Service.Get(ctx, ps.ByName("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	settings, err := h.Service.Settings.Current(ctx)
	if err != nil {
		writeError(w, err)
		return
	}

	names := make(map[string]string)
	for _, sel := range b.KartSelections {
		if _, seen := names[sel.Kart]; seen {
			continue
		}
		names[sel.Kart] = sel.Kart
		if k, err := h.Service.Karts.GetByID(ctx, sel.Kart); err == nil {
			names[sel.Kart] = k.Name
		}
	}

	pdf, err := receipt.Render(b, receipt.Info{
		BusinessName:  settings.BusinessName,
		BusinessEmail: settings.BusinessEmail,
		KartNames:     names,
	})
	if err != nil {
		log.Printf("[Receipt] render %s: %v", b.ID, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate receipt")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="booking-`+b.ID+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

func writeError(w http.ResponseWriter, err error) {
	var rej *Rejection
	switch {
	case errors.As(err, &rej):
		status := http.StatusUnprocessableEntity
		if rej.Input() {
			status = http.StatusBadRequest
		} else if rej.Reason == ReasonInsufficientInventory {
			status = http.StatusConflict
		}
		utils.RespondWithJSON(w, status, map[string]any{
			"ok":     false,
			"reason": rej.Reason,
			"error":  rej.Error(),
		})
	case errors.Is(err, models.ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Booking not found")
	case errors.Is(err, models.ErrConflict):
		utils.RespondWithError(w, http.StatusConflict, "Booking was changed by another request")
	case errors.Is(err, context.DeadlineExceeded):
		utils.RespondWithError(w, http.StatusServiceUnavailable, "Timed out")
	default:
		log.Printf("[Booking] %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
