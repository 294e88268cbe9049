package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"kartbook/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// EnsureAdmin creates the admin account if no user has the given email.
// An existing account is promoted to admin but its password is kept.
func EnsureAdmin(ctx context.Context, users UserStore, email, password, name string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		log.Println("[Auth] ADMIN_EMAIL or ADMIN_PASSWORD not set; skipping admin seeding")
		return nil
	}

	existing, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.IsAdmin {
			return nil
		}
		existing.IsAdmin = true
		existing.UpdatedAt = time.Now()
		log.Printf("[Auth] promoting %s to admin", email)
		return users.Update(ctx, existing)
	case !errors.Is(err, models.ErrNotFound):
		return fmt.Errorf("look up admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if name == "" {
		name = "Admin"
	}
	now := time.Now()
	u := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		IsAdmin:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, u); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Printf("[Auth] admin account %s created", email)
	return nil
}
