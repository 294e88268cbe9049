package timeslot

// Generate splits [open, close) into consecutive slots of duration minutes.
// A trailing interval shorter than duration is dropped. Nothing wraps past
// midnight: close <= open yields no slots.
func Generate(open, close Minute, duration int) []Key {
	if duration <= 0 || close <= open {
		return nil
	}
	step := Minute(duration)
	slots := make([]Key, 0, int(close-open)/duration)
	for start := open; start+step <= close; start += step {
		slots = append(slots, Key{Start: start, End: start + step})
	}
	return slots
}
