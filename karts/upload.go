package karts

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"kartbook/utils"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

const (
	maxImageSize = 10 << 20
	thumbWidth   = 300
	// PublicPrefix is where UploadDir is served from.
	PublicPrefix = "/static/uploads"
)

// errBadImage marks uploads that are not a readable image.
var errBadImage = errors.New("invalid image")

// saveImage writes the decoded image and a thumbnail under dir and returns
// the generated file name.
func saveImage(file *multipart.FileHeader, dir string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("%w: failed to open image file: %v", errBadImage, err)
	}
	defer src.Close()

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("%w: failed to decode image: %v", errBadImage, err)
	}

	name := uuid.NewString() + ".jpg"
	thumbDir := filepath.Join(dir, "thumb")
	if err := os.MkdirAll(thumbDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := imaging.Save(img, filepath.Join(dir, name)); err != nil {
		return "", fmt.Errorf("failed to save original image: %w", err)
	}
	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, filepath.Join(thumbDir, name)); err != nil {
		return "", fmt.Errorf("failed to save thumbnail: %w", err)
	}
	return name, nil
}

// UploadKartImage stores the multipart "image" field and points the kart at
// its thumbnail.
func (h *Handler) UploadKartImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	k, err := h.Karts.GetByID(ctx, ps.ByName("id"))
	if err != nil {
		respondStoreError(w, "Kart", err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	files := r.MultipartForm.File["image"]
	if len(files) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing image file")
		return
	}

	dir := filepath.Join(h.UploadDir, "karts")
	name, err := saveImage(files[0], dir)
	if errors.Is(err, errBadImage) {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		log.Printf("[Karts] save image for %s: %v", k.ID, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to store image")
		return
	}

	k.Image = PublicPrefix + "/karts/thumb/" + name
	k.UpdatedAt = time.Now().UTC()
	if err := h.Karts.Update(ctx, k); err != nil {
		respondStoreError(w, "Kart", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, k)
}
