package main

import (
	"context"
	"fmt"
	"log"

	"kartbook/auth"
	"kartbook/booking"
	"kartbook/config"
	"kartbook/db"
	"kartbook/karts"
	"kartbook/memstore"
	"kartbook/settings"
)

type settingsStore interface {
	booking.SettingsStore
	settings.Store
}

type stores struct {
	karts     karts.KartStore
	kartTypes karts.KartTypeStore
	settings  settingsStore
	bookings  booking.BookingStore
	users     auth.UserStore
	close     func(context.Context) error
}

// openStores picks the storage backend named by STORE_DRIVER.
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.StoreDriver {
	case "memory":
		log.Println("[Store] using in-memory storage; data is lost on restart")
		return &stores{
			karts:     memstore.NewKarts(),
			kartTypes: memstore.NewKartTypes(),
			settings:  memstore.NewSettings(nil),
			bookings:  memstore.NewBookings(),
			users:     memstore.NewUsers(),
			close:     func(context.Context) error { return nil },
		}, nil
	case "mongo", "":
		if err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase); err != nil {
			return nil, err
		}
		if err := db.EnsureSchema(ctx, db.Database); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return &stores{
			karts:     db.KartStore{Coll: db.KartsCollection},
			kartTypes: db.KartTypeStore{Coll: db.KartTypesCollection},
			settings:  db.SettingsStore{Coll: db.SettingsCollection},
			bookings:  db.BookingStore{Coll: db.BookingsCollection},
			users:     db.UserStore{Coll: db.UserCollection},
			close:     db.Disconnect,
		}, nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
