package common

import "sync"

// Admitting a booking is a check-then-act sequence: read the overlap count,
// then insert. Two concurrent requests for the same accommodation could
// both pass the check, so the whole sequence runs under a per-accommodation
// mutex. Locks are never removed; the table is bounded by the number of
// accommodations ever booked on this instance.
var accommodationLocks sync.Map

func lockAccommodation(accommodationID uint) func() {
	v, _ := accommodationLocks.LoadOrStore(accommodationID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
