package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gearshare/apiserver/internal/store"
	"github.com/gearshare/apiserver/types"
)

// ItemRepository defines persistence operations for items.
type ItemRepository interface {
	GetByID(ctx context.Context, id int64) (types.Item, error)
	Create(ctx context.Context, item types.Item) (types.Item, error)
	Update(ctx context.Context, item types.Item) (types.Item, error)
	Delete(ctx context.Context, id int64) error
	ListByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]types.Item, error)
	SearchAvailable(ctx context.Context, text string, offset, limit int) ([]types.Item, error)
	ListByRequest(ctx context.Context, requestID int64) ([]types.Item, error)
	SetPhoto(ctx context.Context, id int64, key, contentType string) error
}

// CommentRepository defines persistence operations for item comments.
type CommentRepository interface {
	Create(ctx context.Context, comment types.Comment) (types.Comment, error)
	ListByItem(ctx context.Context, itemID int64) ([]types.Comment, error)
}

// BookingReader is the slice of booking persistence the item views need.
type BookingReader interface {
	LastForItem(ctx context.Context, itemID int64, now time.Time) (types.BookingRef, error)
	NextForItem(ctx context.Context, itemID int64, now time.Time) (types.BookingRef, error)
	ExistsFinished(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error)
}

// PhotoStore holds item photos in object storage.
type PhotoStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// ItemService encapsulates catalog and comment use-cases.
type ItemService struct {
	items    ItemRepository
	users    UserRepository
	bookings BookingReader
	comments CommentRepository
	requests RequestRepository
	photos   PhotoStore
}

func NewItemService(items ItemRepository, users UserRepository, bookings BookingReader, comments CommentRepository, requests RequestRepository, photos PhotoStore) *ItemService {
	return &ItemService{
		items:    items,
		users:    users,
		bookings: bookings,
		comments: comments,
		requests: requests,
		photos:   photos,
	}
}

// Create lists a new item for the owner. When the item answers an
// item-request, the request must exist.
func (s *ItemService) Create(ctx context.Context, ownerID int64, item types.Item) (types.Item, error) {
	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		return types.Item{}, fmt.Errorf("user %d: %w", ownerID, err)
	}
	if item.RequestID != nil {
		if _, err := s.requests.GetByID(ctx, *item.RequestID); err != nil {
			return types.Item{}, fmt.Errorf("request %d: %w", *item.RequestID, err)
		}
	}
	item.OwnerID = ownerID
	return s.items.Create(ctx, item)
}

// Update applies a partial update. Only the item's owner may update it, and
// only the fields present in the patch overwrite stored values.
func (s *ItemService) Update(ctx context.Context, ownerID, itemID int64, patch types.ItemPatch) (types.Item, error) {
	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		return types.Item{}, fmt.Errorf("user %d: %w", ownerID, err)
	}
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return types.Item{}, fmt.Errorf("item %d: %w", itemID, err)
	}
	if item.OwnerID != ownerID {
		return types.Item{}, fmt.Errorf("%w: user %d does not own item %d", ErrConflict, ownerID, itemID)
	}
	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Available != nil {
		item.Available = *patch.Available
	}
	return s.items.Update(ctx, item)
}

func (s *ItemService) Delete(ctx context.Context, itemID int64) error {
	return s.items.Delete(ctx, itemID)
}

// GetDetail returns the detailed item view. The owner additionally sees the
// item's most recent finished booking and nearest upcoming booking; other
// users only see comments.
func (s *ItemService) GetDetail(ctx context.Context, userID, itemID int64) (types.ItemDetail, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return types.ItemDetail{}, fmt.Errorf("item %d: %w", itemID, err)
	}
	return s.detail(ctx, item, item.OwnerID == userID)
}

// ListByOwner returns the owner's items as detailed views.
func (s *ItemService) ListByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]types.ItemDetail, error) {
	items, err := s.items.ListByOwner(ctx, ownerID, offset, limit)
	if err != nil {
		return nil, err
	}
	details := make([]types.ItemDetail, 0, len(items))
	for _, item := range items {
		detail, err := s.detail(ctx, item, true)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

// Search matches available items by name or description. Blank text yields
// an empty result, not a match-everything.
func (s *ItemService) Search(ctx context.Context, text string, offset, limit int) ([]types.Item, error) {
	if strings.TrimSpace(text) == "" {
		return []types.Item{}, nil
	}
	return s.items.SearchAvailable(ctx, text, offset, limit)
}

// AddComment persists a comment by a user who has a finished booking of the
// item. Anyone else is refused.
func (s *ItemService) AddComment(ctx context.Context, userID, itemID int64, text string) (types.Comment, error) {
	now := time.Now()
	ok, err := s.bookings.ExistsFinished(ctx, userID, itemID, now)
	if err != nil {
		return types.Comment{}, err
	}
	if !ok {
		return types.Comment{}, fmt.Errorf("%w: user %d on item %d", ErrCommentNotAllowed, userID, itemID)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return types.Comment{}, fmt.Errorf("user %d: %w", userID, err)
	}
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return types.Comment{}, fmt.Errorf("item %d: %w", itemID, err)
	}
	return s.comments.Create(ctx, types.Comment{
		Text:       text,
		ItemID:     item.ID,
		AuthorID:   user.ID,
		AuthorName: user.Name,
		Created:    now,
	})
}

// AttachPhoto stores the item's photo. Only the owner may attach one.
func (s *ItemService) AttachPhoto(ctx context.Context, ownerID, itemID int64, contentType string, r io.Reader, size int64) error {
	if s.photos == nil {
		return ErrPhotosDisabled
	}
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return fmt.Errorf("item %d: %w", itemID, err)
	}
	if item.OwnerID != ownerID {
		return fmt.Errorf("%w: user %d does not own item %d", ErrConflict, ownerID, itemID)
	}
	key := fmt.Sprintf("items/%d/photo", itemID)
	if err := s.photos.Put(ctx, key, r, size, contentType); err != nil {
		return err
	}
	return s.items.SetPhoto(ctx, itemID, key, contentType)
}

// Photo opens the item's photo for reading and returns its content type.
func (s *ItemService) Photo(ctx context.Context, itemID int64) (io.ReadCloser, string, error) {
	if s.photos == nil {
		return nil, "", ErrPhotosDisabled
	}
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, "", fmt.Errorf("item %d: %w", itemID, err)
	}
	if item.PhotoKey == "" {
		return nil, "", fmt.Errorf("photo for item %d: %w", itemID, store.ErrNotFound)
	}
	reader, err := s.photos.Get(ctx, item.PhotoKey)
	if err != nil {
		return nil, "", err
	}
	return reader, item.PhotoContentType, nil
}

func (s *ItemService) detail(ctx context.Context, item types.Item, withBookings bool) (types.ItemDetail, error) {
	comments, err := s.comments.ListByItem(ctx, item.ID)
	if err != nil {
		return types.ItemDetail{}, err
	}
	detail := types.ItemDetail{
		Item:     item,
		Comments: comments,
	}
	if !withBookings {
		return detail, nil
	}

	now := time.Now()
	if last, err := s.bookings.LastForItem(ctx, item.ID, now); err == nil {
		detail.LastBooking = &last
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.ItemDetail{}, err
	}
	if next, err := s.bookings.NextForItem(ctx, item.ID, now); err == nil {
		detail.NextBooking = &next
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.ItemDetail{}, err
	}
	return detail, nil
}
