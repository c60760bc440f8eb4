package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gearshare/apiserver/internal/events"
	"github.com/gearshare/apiserver/internal/store"
	"github.com/gearshare/apiserver/types"
)

// BookingRepository defines persistence operations for bookings.
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (types.Booking, error)
	Create(ctx context.Context, booking types.Booking) (types.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status types.BookingStatus) error
	ListByBooker(ctx context.Context, bookerID int64, state types.BookingState, now time.Time, offset, limit int) ([]types.Booking, error)
	ListByOwner(ctx context.Context, ownerID int64, state types.BookingState, now time.Time, offset, limit int) ([]types.Booking, error)
}

// BookingService enforces the booking lifecycle: WAITING at creation, a
// single owner-driven transition to APPROVED or REJECTED, and the
// owner-or-booker visibility rule on reads.
type BookingService struct {
	bookings  BookingRepository
	items     ItemRepository
	users     UserRepository
	publisher events.Publisher
}

func NewBookingService(bookings BookingRepository, items ItemRepository, users UserRepository, publisher events.Publisher) *BookingService {
	if publisher == nil {
		publisher = events.NewNoopPublisher()
	}
	return &BookingService{
		bookings:  bookings,
		items:     items,
		users:     users,
		publisher: publisher,
	}
}

// Create books an item for the given window. The caller must not own the
// item and the item must be available. The window is taken verbatim;
// start-before-end and future-dated checks happen at the boundary.
func (s *BookingService) Create(ctx context.Context, userID, itemID int64, start, end time.Time) (types.Booking, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return types.Booking{}, fmt.Errorf("item %d: %w", itemID, err)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return types.Booking{}, fmt.Errorf("user %d: %w", userID, err)
	}
	if item.OwnerID == userID {
		return types.Booking{}, fmt.Errorf("%w: user %d already owns item %d", ErrConflict, userID, itemID)
	}
	if !item.Available {
		return types.Booking{}, fmt.Errorf("%w: item %d is not available", ErrConflict, itemID)
	}

	booking := types.Booking{
		Start:  start,
		End:    end,
		Status: types.StatusWaiting,
		Item: types.BookingItem{
			ID:      item.ID,
			Name:    item.Name,
			OwnerID: item.OwnerID,
		},
		Booker: types.BookingUser{ID: user.ID},
	}
	created, err := s.bookings.Create(ctx, booking)
	if err != nil {
		return types.Booking{}, err
	}

	s.publish(ctx, events.TypeBookingCreated, created)
	return created, nil
}

// Confirm approves or rejects a WAITING booking. Only the owner of the
// booked item may confirm, and a booking that already left WAITING cannot
// transition again.
func (s *BookingService) Confirm(ctx context.Context, userID, bookingID int64, approved bool) (types.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return types.Booking{}, fmt.Errorf("booking %d: %w", bookingID, err)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return types.Booking{}, fmt.Errorf("user %d: %w", userID, err)
	}
	if booking.Item.OwnerID != userID {
		return types.Booking{}, fmt.Errorf("%w: user %d does not own item %d", ErrConflict, userID, booking.Item.ID)
	}
	if booking.Status != types.StatusWaiting {
		return types.Booking{}, fmt.Errorf("%w: booking %d is already %s", ErrConflict, bookingID, booking.Status)
	}

	status := types.StatusRejected
	eventType := events.TypeBookingRejected
	if approved {
		status = types.StatusApproved
		eventType = events.TypeBookingApproved
	}
	if err := s.bookings.UpdateStatus(ctx, bookingID, status); err != nil {
		return types.Booking{}, err
	}
	booking.Status = status

	s.publish(ctx, eventType, booking)
	return booking, nil
}

// Get returns the booking to its booker or the item's owner. Anyone else
// gets a not-found error rather than a forbidden one, so the existence of
// the booking is not leaked.
func (s *BookingService) Get(ctx context.Context, userID, bookingID int64) (types.Booking, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return types.Booking{}, fmt.Errorf("user %d: %w", userID, err)
	}
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return types.Booking{}, fmt.Errorf("booking %d: %w", bookingID, err)
	}
	if booking.Booker.ID != userID && booking.Item.OwnerID != userID {
		return types.Booking{}, fmt.Errorf("booking %d for user %d: %w", bookingID, userID, store.ErrNotFound)
	}
	return booking, nil
}

// ListByBooker returns the user's own bookings in the given state bucket.
func (s *BookingService) ListByBooker(ctx context.Context, userID int64, rawState string, offset, limit int) ([]types.Booking, error) {
	state, err := s.prepareList(ctx, userID, rawState)
	if err != nil {
		return nil, err
	}
	return s.bookings.ListByBooker(ctx, userID, state, time.Now(), offset, limit)
}

// ListByOwner returns bookings on the user's items in the given state bucket.
func (s *BookingService) ListByOwner(ctx context.Context, userID int64, rawState string, offset, limit int) ([]types.Booking, error) {
	state, err := s.prepareList(ctx, userID, rawState)
	if err != nil {
		return nil, err
	}
	return s.bookings.ListByOwner(ctx, userID, state, time.Now(), offset, limit)
}

func (s *BookingService) prepareList(ctx context.Context, userID int64, rawState string) (types.BookingState, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return "", fmt.Errorf("user %d: %w", userID, err)
	}
	state, ok := types.ParseBookingState(rawState)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownState, rawState)
	}
	return state, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking types.Booking) {
	event := events.Event{
		Type:       eventType,
		BookingID:  booking.ID,
		ItemID:     booking.Item.ID,
		BookerID:   booking.Booker.ID,
		OwnerID:    booking.Item.OwnerID,
		OccurredAt: time.Now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("publish %s for booking %d: %v", eventType, booking.ID, err)
	}
}
