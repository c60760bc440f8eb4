package types

import "time"

// BookingStatus is the lifecycle state of a booking.
// WAITING is the initial state and the only one with outgoing transitions.
type BookingStatus string

// Supported booking statuses.
const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
)

// Booking represents a request to use an item for a time window.
type Booking struct {
	// ID is the unique identifier of the booking.
	ID int64 `json:"id" db:"id"`

	// Start is the beginning of the requested time window.
	Start time.Time `json:"start" db:"start_at"`

	// End is the end of the requested time window. Start precedes End;
	// this is enforced at the boundary before a booking is created.
	End time.Time `json:"end" db:"end_at"`

	// Status is the current lifecycle state.
	Status BookingStatus `json:"status" db:"status"`

	// Item is a short projection of the booked item.
	Item BookingItem `json:"item"`

	// Booker is a short projection of the user who requested the booking.
	Booker BookingUser `json:"booker"`
}

// BookingItem is the item projection embedded in a booking.
type BookingItem struct {
	ID   int64  `json:"id" db:"item_id"`
	Name string `json:"name" db:"item_name"`

	// OwnerID is carried for authorization checks and never serialized.
	OwnerID int64 `json:"-" db:"owner_id"`
}

// BookingUser is the booker projection embedded in a booking.
type BookingUser struct {
	ID int64 `json:"id" db:"booker_id"`
}

// BookingRef is the lightweight booking projection attached to an item's
// detailed view (last and next booking as seen by the item's owner).
type BookingRef struct {
	ID       int64     `json:"id" db:"id"`
	BookerID int64     `json:"booker_id" db:"booker_id"`
	Start    time.Time `json:"start" db:"start_at"`
	End      time.Time `json:"end" db:"end_at"`
}

// BookingState is a filter token for booking list queries. Unlike
// BookingStatus it also names time-window buckets computed against "now".
type BookingState string

// Supported booking list filters.
const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
)

// ParseBookingState validates a raw filter token against the fixed
// enumeration. It reports false for any unrecognized token.
func ParseBookingState(raw string) (BookingState, bool) {
	switch BookingState(raw) {
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return BookingState(raw), true
	default:
		return "", false
	}
}
