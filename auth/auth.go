package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"kartbook/globals"
	"kartbook/middleware"
	"kartbook/models"
	"kartbook/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"golang.org/x/crypto/bcrypt"
)

const accessTokenTTL = 12 * time.Hour

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
}

type Handler struct {
	Users  UserStore
	Secret []byte
	TTL    time.Duration
	now    func() time.Time
}

func NewHandler(users UserStore, secret []byte) *Handler {
	return &Handler{Users: users, Secret: secret, TTL: accessTokenTTL, now: time.Now}
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// Login checks admin credentials and issues an HS256 access token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var input loginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	input.Email = strings.TrimSpace(input.Email)
	if err := utils.Validate(input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.Users.GetByEmail(ctx, input.Email)
	if errors.Is(err, models.ErrNotFound) {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		log.Printf("[Auth] lookup %s: %v", input.Email, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Login failed")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if !user.IsAdmin {
		utils.RespondWithError(w, http.StatusForbidden, "Admin access required")
		return
	}

	token, exp, err := h.issue(user)
	if err != nil {
		log.Printf("[Auth] sign token: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Login failed")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: exp, User: user})
}

func (h *Handler) issue(u *models.User) (string, time.Time, error) {
	now := time.Now
	if h.now != nil {
		now = h.now
	}
	ttl := h.TTL
	if ttl <= 0 {
		ttl = accessTokenTTL
	}
	issued := now()
	exp := issued.Add(ttl)

	var roles []string
	if u.IsAdmin {
		roles = append(roles, globals.RoleAdmin)
	}
	claims := middleware.Claims{
		Email:  u.Email,
		UserID: u.ID,
		Role:   roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.Secret)
	return signed, exp, err
}
