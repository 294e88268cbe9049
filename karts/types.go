package karts

import (
	"context"
	"net/http"
	"strings"
	"time"

	"kartbook/models"
	"kartbook/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

type kartTypeInput struct {
	Name        string `json:"name" validate:"required,max=50"`
	Description string `json:"description"`
}

type kartTypePatch struct {
	Name        *string `json:"name" validate:"omitempty,max=50"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

func (h *Handler) ListKartTypes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	types, err := h.Types.ListActive(ctx)
	if err != nil {
		respondStoreError(w, "Kart type", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, nonNil(types))
}

func (h *Handler) ListAllKartTypes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	types, err := h.Types.ListAll(ctx)
	if err != nil {
		respondStoreError(w, "Kart type", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, nonNil(types))
}

func (h *Handler) GetKartType(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	t, err := h.Types.GetByID(ctx, ps.ByName("id"))
	if err != nil {
		respondStoreError(w, "Kart type", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, t)
}

func (h *Handler) CreateKartType(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var in kartTypeInput
	if !decode(w, r, &in) {
		return
	}
	now := time.Now().UTC()
	t := &models.KartType{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.Types.Create(ctx, t); err != nil {
		respondStoreError(w, "Kart type", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, t)
}

func (h *Handler) UpdateKartType(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var p kartTypePatch
	if !decode(w, r, &p) {
		return
	}
	t, err := h.Types.GetByID(ctx, ps.ByName("id"))
	if err != nil {
		respondStoreError(w, "Kart type", err)
		return
	}
	setNonEmpty(&t.Name, p.Name)
	setNonEmpty(&t.Description, p.Description)
	if p.IsActive != nil {
		t.IsActive = *p.IsActive
	}
	t.UpdatedAt = time.Now().UTC()
	if err := h.Types.Update(ctx, t); err != nil {
		respondStoreError(w, "Kart type", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, t)
}

func (h *Handler) DeleteKartType(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Types.Delete(ctx, ps.ByName("id")); err != nil {
		respondStoreError(w, "Kart type", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Kart type removed"})
}
