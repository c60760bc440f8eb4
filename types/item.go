package types

import "time"

// Item represents something a user has listed for sharing.
type Item struct {
	// ID is the unique identifier of the item.
	ID int64 `json:"id" db:"id"`

	// Name is the short display name of the item.
	Name string `json:"name" db:"name"`

	// Description is the free-text description of the item.
	Description string `json:"description" db:"description"`

	// Available reports whether the item can currently be booked.
	Available bool `json:"available" db:"available"`

	// OwnerID identifies the user who listed the item. An item has
	// exactly one owner.
	OwnerID int64 `json:"owner_id" db:"owner_id"`

	// RequestID optionally identifies the item-request this item was
	// listed in answer to.
	RequestID *int64 `json:"request_id,omitempty" db:"request_id"`

	// PhotoKey is the object-storage key of the item's photo, empty when
	// no photo has been uploaded. Never serialized.
	PhotoKey string `json:"-" db:"photo_key"`

	// PhotoContentType is the MIME type of the stored photo.
	PhotoContentType string `json:"-" db:"photo_content_type"`
}

// ItemPatch carries a partial update for an item. A nil field leaves the
// stored value unchanged.
type ItemPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

// ItemDetail is the detailed item view. LastBooking and NextBooking are
// only populated when the requester owns the item.
type ItemDetail struct {
	Item
	LastBooking *BookingRef `json:"last_booking"`
	NextBooking *BookingRef `json:"next_booking"`
	Comments    []Comment   `json:"comments"`
}

// Comment is feedback left on an item by a user who completed a booking
// of it.
type Comment struct {
	// ID is the unique identifier of the comment.
	ID int64 `json:"id" db:"id"`

	// Text is the comment body.
	Text string `json:"text" db:"text"`

	// ItemID identifies the commented item.
	ItemID int64 `json:"item_id" db:"item_id"`

	// AuthorID identifies the commenting user.
	AuthorID int64 `json:"-" db:"author_id"`

	// AuthorName is the display name of the commenting user.
	AuthorName string `json:"author_name" db:"author_name"`

	// Created is the timestamp the comment was persisted.
	Created time.Time `json:"created" db:"created_at"`
}
