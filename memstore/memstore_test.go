package memstore

import (
	"context"
	"testing"
	"time"

	"kartbook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func booking(id, date, start, status string) *models.Booking {
	return &models.Booking{ID: id, Date: date, StartTime: start, Status: status}
}

func TestBookingsReplaceIsConditional(t *testing.T) {
	ctx := context.Background()
	s := NewBookings()
	require.NoError(t, s.Create(ctx, booking("b1", "2025-06-02", "10:00", models.StatusConfirmed)))
	assert.ErrorIs(t, s.Create(ctx, booking("b1", "2025-06-02", "10:00", models.StatusConfirmed)), models.ErrConflict)

	cancelled := booking("b1", "2025-06-02", "10:00", models.StatusCancelled)
	require.NoError(t, s.Replace(ctx, cancelled, models.StatusConfirmed))
	// a second writer still expecting "confirmed" loses
	assert.ErrorIs(t, s.Replace(ctx, cancelled, models.StatusConfirmed), models.ErrConflict)
	assert.ErrorIs(t, s.Replace(ctx, booking("nope", "", "", ""), ""), models.ErrNotFound)

	byDate, err := s.ListByDate(ctx, "2025-06-02")
	require.NoError(t, err)
	assert.Empty(t, byDate)
}

func TestBookingsAreCopied(t *testing.T) {
	ctx := context.Background()
	s := NewBookings()
	b := booking("b1", "2025-06-02", "10:00", models.StatusConfirmed)
	require.NoError(t, s.Create(ctx, b))
	b.CustomerName = "changed after create"

	got, err := s.GetByID(ctx, "b1")
	require.NoError(t, err)
	assert.Empty(t, got.CustomerName)
	got.Status = models.StatusCancelled

	again, err := s.GetByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, again.Status)
}

func TestBookingsListAndUnsent(t *testing.T) {
	ctx := context.Background()
	s := NewBookings()
	for _, b := range []*models.Booking{
		booking("c", "2025-06-03", "09:00", models.StatusConfirmed),
		booking("a", "2025-06-02", "11:00", models.StatusConfirmed),
		booking("b", "2025-06-02", "09:30", models.StatusPending),
		booking("d", "2025-05-30", "09:00", models.StatusConfirmed),
	} {
		require.NoError(t, s.Create(ctx, b))
	}
	fresh := booking("e", "2025-06-04", "09:00", models.StatusConfirmed)
	fresh.CreatedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Create(ctx, fresh))
	require.NoError(t, s.MarkEmailSent(ctx, "c"))
	assert.ErrorIs(t, s.MarkEmailSent(ctx, "zzz"), models.ErrNotFound)

	all, err := s.List(ctx, models.BookingFilter{StartDate: "2025-06-01"})
	require.NoError(t, err)
	ids := make([]string, 0, len(all))
	for _, b := range all {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"b", "a", "c", "e"}, ids)

	// "e" is younger than the cutoff
	unsent, err := s.ListUnsent(ctx, "2025-06-01", time.Date(2025, 6, 1, 11, 59, 50, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, unsent, 1)
	assert.Equal(t, "a", unsent[0].ID)

	require.NoError(t, s.Delete(ctx, "a"))
	assert.ErrorIs(t, s.Delete(ctx, "a"), models.ErrNotFound)
}

func TestSettingsDefaultsAndSave(t *testing.T) {
	ctx := context.Background()
	s := NewSettings(nil)
	cur, err := s.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Kart Booking System", cur.BusinessName)

	cur.BusinessName = "Rada"
	cur.ID = "ignored"
	require.NoError(t, s.Save(ctx, cur))
	again, err := s.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Rada", again.BusinessName)
	assert.Equal(t, models.SettingsID, again.ID)
}
