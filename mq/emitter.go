package mq

import (
	"context"
	"encoding/json"
	"log"

	"kartbook/models"

	"github.com/redis/go-redis/v9"
)

// BookingChannel carries booking changes between app instances.
const BookingChannel = "booking-events"

// Emitter publishes booking events to Redis. It implements
// booking.EventPublisher.
type Emitter struct {
	Conn redis.Cmdable
}

func (e Emitter) Publish(ctx context.Context, ev models.BookingEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[Emit] Failed to marshal event: %v", err)
		return
	}
	if err := e.Conn.Publish(context.WithoutCancel(ctx), BookingChannel, data).Err(); err != nil {
		log.Printf("[Emit] Failed to publish %s for %s: %v", ev.Type, ev.Date, err)
		return
	}
	log.Printf("[Emit] %s %s published to '%s'", ev.Type, ev.BookingID, BookingChannel)
}

// StartBookingWorker delivers every event on BookingChannel to handle until
// ctx is done.
func StartBookingWorker(ctx context.Context, conn *redis.Client, handle func(context.Context, models.BookingEvent)) {
	sub := conn.Subscribe(ctx, BookingChannel)
	defer sub.Close()
	ch := sub.Channel()

	log.Println("[BookingWorker] Listening for booking events...")
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			dispatch(ctx, msg.Payload, handle)
		}
	}
}

func dispatch(ctx context.Context, payload string, handle func(context.Context, models.BookingEvent)) {
	var ev models.BookingEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		log.Printf("[BookingWorker] Failed to parse event: %v", err)
		return
	}
	if ev.Date == "" {
		log.Printf("[BookingWorker] Event without date: %s", payload)
		return
	}
	handle(ctx, ev)
}
