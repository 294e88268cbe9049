package karts

import (
	"context"
	"fmt"
	"log"
	"time"

	"kartbook/models"

	"github.com/google/uuid"
)

var defaultTypes = []struct{ name, description string }{
	{"Adult", "Standard kart for adults, suitable for individuals over 16 years of age."},
	{"Child", "Smaller kart designed for children between 8-15 years of age."},
	{"Duo", "Two-seater kart for an adult and a child, or for two smaller adults."},
	{"Racing", "High-performance kart for experienced drivers."},
	{"Beginner", "Slower kart with enhanced safety features for first-time drivers."},
}

// SeedTypes inserts the default kart types when none exist yet.
func SeedTypes(ctx context.Context, types KartTypeStore) (int, error) {
	existing, err := types.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list kart types: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	for i, d := range defaultTypes {
		t := &models.KartType{
			ID:          uuid.NewString(),
			Name:        d.name,
			Description: d.description,
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := types.Create(ctx, t); err != nil {
			return i, fmt.Errorf("seed kart type %s: %w", d.name, err)
		}
	}
	log.Printf("[Karts] seeded %d kart types", len(defaultTypes))
	return len(defaultTypes), nil
}
