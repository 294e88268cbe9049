package models

import (
	"fmt"
	"time"

	"kartbook/timeslot"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusCancelled
}

// KartSelection is a booked quantity of one kart. A nil Timeslot marks a
// selection written before per-slot tagging existed.
type KartSelection struct {
	Kart         string        `json:"kart" bson:"kart"`
	Quantity     int           `json:"quantity" bson:"quantity"`
	PricePerSlot Money         `json:"pricePerSlot" bson:"pricePerSlot"`
	Timeslot     *timeslot.Key `json:"timeslot,omitempty" bson:"timeslot,omitempty"`
}

// KartMix maps kart id to quantity.
type KartMix map[string]int

// Total is the number of karts in the mix.
func (m KartMix) Total() int {
	n := 0
	for _, q := range m {
		n += q
	}
	return n
}

// SlotKarts records the kart mix booked for each timeslot.
type SlotKarts map[timeslot.Key]KartMix

func (s SlotKarts) MarshalBSONValue() (bsontype.Type, []byte, error) {
	doc := make(bson.M, len(s))
	for k, mix := range s {
		doc[timeslot.Format(k)] = map[string]int(mix)
	}
	return bson.MarshalValue(doc)
}

func (s *SlotKarts) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t == bsontype.Null || t == bsontype.Undefined {
		*s = nil
		return nil
	}
	var raw map[string]map[string]int
	if err := (bson.RawValue{Type: t, Value: data}).Unmarshal(&raw); err != nil {
		return fmt.Errorf("slot karts: %w", err)
	}
	out := make(SlotKarts, len(raw))
	for key, mix := range raw {
		k, err := timeslot.Parse(key)
		if err != nil {
			return err
		}
		out[k] = KartMix(mix)
	}
	*s = out
	return nil
}

type Booking struct {
	ID                string          `json:"_id" bson:"_id"`
	CustomerName      string          `json:"customerName" bson:"customerName"`
	CustomerEmail     string          `json:"customerEmail" bson:"customerEmail"`
	CustomerPhone     string          `json:"customerPhone" bson:"customerPhone"`
	Date              string          `json:"date" bson:"date"`
	StartTime         string          `json:"startTime" bson:"startTime"`
	EndTime           string          `json:"endTime" bson:"endTime"`
	Duration          int             `json:"duration" bson:"duration"`
	SelectedTimeslots []timeslot.Key  `json:"selectedTimeslots" bson:"selectedTimeslots"`
	KartSelections    []KartSelection `json:"kartSelections" bson:"kartSelections"`
	SlotKarts         SlotKarts       `json:"timeslotKartQuantities,omitempty" bson:"timeslotKartQuantities,omitempty"`
	TotalPrice        Money           `json:"totalPrice" bson:"totalPrice"`
	Status            string          `json:"status" bson:"status"`
	Notes             string          `json:"notes" bson:"notes"`
	EmailSent         bool            `json:"emailSent" bson:"emailSent"`
	CreatedAt         time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// UnmarshalBSON also reads documents whose date was stored as a BSON
// datetime. Such dates are midnight UTC of the booked day.
func (b *Booking) UnmarshalBSON(data []byte) error {
	type plain Booking
	if v, err := bson.Raw(data).LookupErr("date"); err == nil && v.Type == bsontype.DateTime {
		var doc bson.D
		if err := bson.Unmarshal(data, &doc); err != nil {
			return err
		}
		for i := range doc {
			if doc[i].Key == "date" {
				doc[i].Value = v.Time().UTC().Format(time.DateOnly)
			}
		}
		if data, err = bson.Marshal(doc); err != nil {
			return err
		}
	}
	return bson.Unmarshal(data, (*plain)(b))
}

// Clone returns a deep copy of b.
func (b *Booking) Clone() *Booking {
	c := *b
	c.SelectedTimeslots = append([]timeslot.Key(nil), b.SelectedTimeslots...)
	c.KartSelections = make([]KartSelection, len(b.KartSelections))
	for i, sel := range b.KartSelections {
		if sel.Timeslot != nil {
			k := *sel.Timeslot
			sel.Timeslot = &k
		}
		c.KartSelections[i] = sel
	}
	if b.SlotKarts != nil {
		c.SlotKarts = make(SlotKarts, len(b.SlotKarts))
		for k, mix := range b.SlotKarts {
			m := make(KartMix, len(mix))
			for id, q := range mix {
				m[id] = q
			}
			c.SlotKarts[k] = m
		}
	}
	return &c
}

// BookingFilter narrows an admin booking listing. Empty fields match all.
type BookingFilter struct {
	StartDate string
	EndDate   string
	Status    string
}

const (
	EventBookingCreated = "booking-created"
	EventBookingUpdated = "booking-updated"
	EventBookingDeleted = "booking-deleted"
)

// BookingEvent announces a change to the bookings of a date.
type BookingEvent struct {
	Type      string `json:"type"`
	BookingID string `json:"bookingId"`
	Date      string `json:"date"`
}
