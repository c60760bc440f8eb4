package types

import "time"

// ItemRequest is a catalog gap reported by a user: a description of an item
// they want that nobody has listed yet. Requests are immutable after
// creation; items listed in answer to a request point back at it.
type ItemRequest struct {
	// ID is the unique identifier of the request.
	ID int64 `json:"id" db:"id"`

	// Description says what kind of item the requester is looking for.
	Description string `json:"description" db:"description"`

	// RequesterID identifies the user who filed the request.
	RequesterID int64 `json:"-" db:"requester_id"`

	// Created is the timestamp the request was filed.
	Created time.Time `json:"created" db:"created_at"`

	// Items lists the items created in answer to this request, discovered
	// by reverse lookup on the item's request reference.
	Items []Item `json:"items"`
}
