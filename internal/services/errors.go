package services

import "errors"

// ErrConflict marks a business-rule violation on entities that do exist:
// booking an own item, booking an unavailable item, confirming a booking of
// somebody else's item, or re-confirming a booking that already left WAITING.
var ErrConflict = errors.New("conflict")

// ErrCommentNotAllowed is returned when a user tries to comment on an item
// without a finished booking of it.
var ErrCommentNotAllowed = errors.New("no finished booking of the item")

// ErrUnknownState is returned for a booking list filter token outside the
// fixed enumeration.
var ErrUnknownState = errors.New("unknown state")

// ErrPhotosDisabled is returned when no photo storage backend is configured.
var ErrPhotosDisabled = errors.New("photo storage not configured")
