package db

import (
	"context"
	"testing"
	"time"

	"kartbook/models"
	"kartbook/timeslot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func ns(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func toD(t *testing.T, v any) bson.D {
	t.Helper()
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	var d bson.D
	require.NoError(t, bson.Unmarshal(raw, &d))
	return d
}

func sampleBooking(t *testing.T) *models.Booking {
	slot, err := timeslot.Parse("09:00-09:30")
	require.NoError(t, err)
	return &models.Booking{
		ID:                "b-1",
		CustomerName:      "Mari Tamm",
		CustomerEmail:     "mari@example.com",
		Date:              "2025-06-02",
		StartTime:         "09:00",
		EndTime:           "09:30",
		Duration:          30,
		SelectedTimeslots: []timeslot.Key{slot},
		KartSelections: []models.KartSelection{
			{Kart: "adult", Quantity: 2, PricePerSlot: models.NewMoney(25), Timeslot: &slot},
		},
		SlotKarts:  models.SlotKarts{slot: {"adult": 2}},
		TotalPrice: models.NewMoney(50),
		Status:     models.StatusConfirmed,
	}
}

func TestBookingStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		require.NoError(mt, BookingStore{Coll: mt.Coll}.Create(context.Background(), sampleBooking(mt.T)))
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key error"}))
		err := BookingStore{Coll: mt.Coll}.Create(context.Background(), sampleBooking(mt.T))
		assert.ErrorIs(mt, err, models.ErrConflict)
	})

	mt.Run("get round trip", func(mt *mtest.T) {
		want := sampleBooking(mt.T)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, toD(mt.T, want)))

		got, err := BookingStore{Coll: mt.Coll}.GetByID(context.Background(), want.ID)
		require.NoError(mt, err)
		assert.Equal(mt, want.SelectedTimeslots, got.SelectedTimeslots)
		assert.Equal(mt, want.SlotKarts, got.SlotKarts)
		assert.True(mt, got.TotalPrice.Equal(models.NewMoney(50)))
		require.NotNil(mt, got.KartSelections[0].Timeslot)
		assert.Equal(mt, "09:00-09:30", got.KartSelections[0].Timeslot.String())
	})

	mt.Run("get missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch))
		_, err := BookingStore{Coll: mt.Coll}.GetByID(context.Background(), "nope")
		assert.ErrorIs(mt, err, models.ErrNotFound)
	})

	mt.Run("list by date", func(mt *mtest.T) {
		b := sampleBooking(mt.T)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, toD(mt.T, b)))
		got, err := BookingStore{Coll: mt.Coll}.ListByDate(context.Background(), "2025-06-02")
		require.NoError(mt, err)
		require.Len(mt, got, 1)
		assert.Equal(mt, "b-1", got[0].ID)
	})

	mt.Run("list empty is not nil", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch))
		got, err := BookingStore{Coll: mt.Coll}.List(context.Background(), models.BookingFilter{Status: models.StatusPending})
		require.NoError(mt, err)
		assert.NotNil(mt, got)
		assert.Empty(mt, got)
	})

	mt.Run("replace", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
		err := BookingStore{Coll: mt.Coll}.Replace(context.Background(), sampleBooking(mt.T), models.StatusConfirmed)
		assert.NoError(mt, err)
	})

	mt.Run("replace stale status", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, bson.D{{Key: "n", Value: 1}}),
		)
		err := BookingStore{Coll: mt.Coll}.Replace(context.Background(), sampleBooking(mt.T), models.StatusPending)
		assert.ErrorIs(mt, err, models.ErrConflict)
	})

	mt.Run("replace missing", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch),
		)
		err := BookingStore{Coll: mt.Coll}.Replace(context.Background(), sampleBooking(mt.T), models.StatusConfirmed)
		assert.ErrorIs(mt, err, models.ErrNotFound)
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		assert.ErrorIs(mt, BookingStore{Coll: mt.Coll}.Delete(context.Background(), "nope"), models.ErrNotFound)
	})

	mt.Run("mark email sent", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
		assert.NoError(mt, BookingStore{Coll: mt.Coll}.MarkEmailSent(context.Background(), "b-1"))
	})
}

func TestLegacyNumericPriceDecodes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("double price", func(mt *mtest.T) {
		doc := bson.D{
			{Key: "_id", Value: "k-1"},
			{Key: "name", Value: "Adult"},
			{Key: "pricePerSlot", Value: 25.5},
			{Key: "quantity", Value: int32(4)},
			{Key: "isActive", Value: true},
		}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, doc))
		k, err := KartStore{Coll: mt.Coll}.GetByID(context.Background(), "k-1")
		require.NoError(mt, err)
		assert.Equal(mt, "25.5", k.PricePerSlot.String())
		assert.Equal(mt, 4, k.Quantity)
	})
}

func TestLegacyDatetimeDateDecodes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("datetime date", func(mt *mtest.T) {
		stored := toD(mt.T, sampleBooking(mt.T))
		for i := range stored {
			if stored[i].Key == "date" {
				stored[i].Value = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
			}
		}
		current := toD(mt.T, sampleBooking(mt.T))
		current[0].Value = "b-2"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, stored, current))

		got, err := BookingStore{Coll: mt.Coll}.ListByDate(context.Background(), "2025-06-02")
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, "2025-06-02", got[0].Date)
		assert.Equal(mt, "2025-06-02", got[1].Date)
		assert.True(mt, got[0].TotalPrice.Equal(models.NewMoney(50)))
		assert.Equal(mt, 2, got[0].SlotKarts[got[0].SelectedTimeslots[0]]["adult"])
	})
}

func TestKartTypeStoreConflicts(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate name on update", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key error"}))
		err := KartTypeStore{Coll: mt.Coll}.Update(context.Background(), &models.KartType{ID: "t-1", Name: "Adult"})
		assert.ErrorIs(mt, err, models.ErrConflict)
	})

	mt.Run("update missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))
		err := KartTypeStore{Coll: mt.Coll}.Update(context.Background(), &models.KartType{ID: "t-9", Name: "Racing"})
		assert.ErrorIs(mt, err, models.ErrNotFound)
	})
}

func TestSettingsStoreCurrent(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("upserted defaults", func(mt *mtest.T) {
		stored := toD(mt.T, &models.Settings{
			ID:               models.SettingsID,
			BusinessName:     "Kart Booking System",
			TimeslotDuration: 30,
		})
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: stored}))

		s, err := SettingsStore{Coll: mt.Coll}.Current(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, models.SettingsID, s.ID)
		assert.Equal(mt, 30, s.TimeslotDuration)
	})
}

func TestUserStoreLowercasesEmail(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		u := &models.User{ID: "u-1", Email: "Admin@Example.com"}
		require.NoError(mt, UserStore{Coll: mt.Coll}.Create(context.Background(), u))
		assert.Equal(mt, "admin@example.com", u.Email)
	})

	mt.Run("missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch))
		_, err := UserStore{Coll: mt.Coll}.GetByEmail(context.Background(), "ghost@example.com")
		assert.ErrorIs(mt, err, models.ErrNotFound)
	})
}
