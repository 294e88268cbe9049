package karts

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"kartbook/models"
	"kartbook/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

type KartStore interface {
	ListActive(ctx context.Context) ([]models.Kart, error)
	ListAll(ctx context.Context) ([]models.Kart, error)
	GetByID(ctx context.Context, id string) (*models.Kart, error)
	Create(ctx context.Context, k *models.Kart) error
	Update(ctx context.Context, k *models.Kart) error
	Delete(ctx context.Context, id string) error
}

type KartTypeStore interface {
	ListActive(ctx context.Context) ([]models.KartType, error)
	ListAll(ctx context.Context) ([]models.KartType, error)
	GetByID(ctx context.Context, id string) (*models.KartType, error)
	Create(ctx context.Context, t *models.KartType) error
	Update(ctx context.Context, t *models.KartType) error
	Delete(ctx context.Context, id string) error
}

// Handler serves the kart catalogue and kart types.
type Handler struct {
	Karts     KartStore
	Types     KartTypeStore
	UploadDir string
}

type kartInput struct {
	Name         string        `json:"name" validate:"required,max=100"`
	Description  string        `json:"description" validate:"required"`
	Type         string        `json:"type" validate:"required"`
	Image        string        `json:"image"`
	PricePerSlot *models.Money `json:"pricePerSlot" validate:"required"`
	Quantity     *int          `json:"quantity" validate:"required,min=0"`
}

type kartPatch struct {
	Name         *string       `json:"name" validate:"omitempty,max=100"`
	Description  *string       `json:"description"`
	Type         *string       `json:"type"`
	Image        *string       `json:"image"`
	PricePerSlot *models.Money `json:"pricePerSlot"`
	Quantity     *int          `json:"quantity" validate:"omitempty,min=0"`
	IsActive     *bool         `json:"isActive"`
}

// The admin UI sends updates either bare or wrapped in "kartData".
type kartPatchEnvelope struct {
	kartPatch
	KartData *kartPatch `json:"kartData"`
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	if err := utils.Validate(v); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, utils.ValidationMessage(err))
		return false
	}
	return true
}

func respondStoreError(w http.ResponseWriter, what string, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, what+" not found")
	case errors.Is(err, models.ErrConflict):
		utils.RespondWithError(w, http.StatusConflict, what+" already exists")
	case errors.Is(err, context.DeadlineExceeded):
		utils.RespondWithError(w, http.StatusServiceUnavailable, "Request timed out")
	default:
		log.Printf("[Karts] %s: %v", strings.ToLower(what), err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *Handler) ListKarts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	karts, err := h.Karts.ListActive(ctx)
	if err != nil {
		respondStoreError(w, "Kart", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, nonNil(karts))
}

func (h *Handler) ListAllKarts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	karts, err := h.Karts.ListAll(ctx)
	if err != nil {
		respondStoreError(w, "Kart", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, nonNil(karts))
}

func (h *Handler) GetKart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	k, err := h.Karts.GetByID(ctx, ps.ByName("id"))
	if err != nil {
		respondStoreError(w, "Kart", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, k)
}

func (h *Handler) CreateKart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var in kartInput
	if !decode(w, r, &in) {
		return
	}
	if in.PricePerSlot.IsNegative() {
		utils.RespondWithError(w, http.StatusBadRequest, "pricePerSlot must not be negative")
		return
	}

	now := time.Now().UTC()
	k := &models.Kart{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		Type:         in.Type,
		Image:        in.Image,
		PricePerSlot: *in.PricePerSlot,
		Quantity:     *in.Quantity,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if k.Image == "" {
		k.Image = models.DefaultKartImage
	}
	if err := h.Karts.Create(ctx, k); err != nil {
		respondStoreError(w, "Kart", err)
		return
	}
	log.Printf("[Karts] created %s (%s)", k.ID, k.Name)
	utils.RespondWithJSON(w, http.StatusCreated, k)
}

func (h *Handler) UpdateKart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var env kartPatchEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	p := env.kartPatch
	if env.KartData != nil {
		p = *env.KartData
	}
	if err := utils.Validate(p); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, utils.ValidationMessage(err))
		return
	}
	if p.PricePerSlot != nil && p.PricePerSlot.IsNegative() {
		utils.RespondWithError(w, http.StatusBadRequest, "pricePerSlot must not be negative")
		return
	}

	k, err := h.Karts.GetByID(ctx, ps.ByName("id"))
	if err != nil {
		respondStoreError(w, "Kart", err)
		return
	}
	p.apply(k)
	k.UpdatedAt = time.Now().UTC()
	if err := h.Karts.Update(ctx, k); err != nil {
		respondStoreError(w, "Kart", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, k)
}

// Empty strings keep the current value.
func (p kartPatch) apply(k *models.Kart) {
	setNonEmpty(&k.Name, p.Name)
	setNonEmpty(&k.Description, p.Description)
	setNonEmpty(&k.Type, p.Type)
	setNonEmpty(&k.Image, p.Image)
	if p.PricePerSlot != nil {
		k.PricePerSlot = *p.PricePerSlot
	}
	if p.Quantity != nil {
		k.Quantity = *p.Quantity
	}
	if p.IsActive != nil {
		k.IsActive = *p.IsActive
	}
}

func setNonEmpty(dst *string, v *string) {
	if v != nil && strings.TrimSpace(*v) != "" {
		*dst = strings.TrimSpace(*v)
	}
}

func (h *Handler) DeleteKart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Karts.Delete(ctx, ps.ByName("id")); err != nil {
		respondStoreError(w, "Kart", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Kart removed"})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
