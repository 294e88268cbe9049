package mq

import (
	"context"
	"encoding/json"
	"testing"

	"kartbook/models"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitterPublishes(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ev := models.BookingEvent{Type: models.EventBookingCreated, BookingID: "b-1", Date: "2025-06-02"}
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	mock.ExpectPublish(BookingChannel, data).SetVal(1)

	Emitter{Conn: db}.Publish(context.Background(), ev)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDispatch(t *testing.T) {
	var got []models.BookingEvent
	handle := func(_ context.Context, ev models.BookingEvent) { got = append(got, ev) }

	dispatch(context.Background(), `{"type":"booking-updated","bookingId":"b-1","date":"2025-06-02"}`, handle)
	dispatch(context.Background(), `not json`, handle)
	dispatch(context.Background(), `{"type":"booking-updated"}`, handle)

	require.Len(t, got, 1)
	assert.Equal(t, "2025-06-02", got[0].Date)
	assert.Equal(t, models.EventBookingUpdated, got[0].Type)
}
