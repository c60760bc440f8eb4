package services

import (
	"context"
	"fmt"
	"time"

	"github.com/gearshare/apiserver/types"
)

// RequestRepository defines persistence operations for item-requests.
type RequestRepository interface {
	GetByID(ctx context.Context, id int64) (types.ItemRequest, error)
	Create(ctx context.Context, request types.ItemRequest) (types.ItemRequest, error)
	ListByRequester(ctx context.Context, requesterID int64) ([]types.ItemRequest, error)
	ListOthers(ctx context.Context, userID int64, offset, limit int) ([]types.ItemRequest, error)
}

// RequestService encapsulates item-request use-cases. Requests are
// immutable after creation; the items answering a request are discovered by
// reverse lookup on the item's request reference.
type RequestService struct {
	requests RequestRepository
	items    ItemRepository
	users    UserRepository
}

func NewRequestService(requests RequestRepository, items ItemRepository, users UserRepository) *RequestService {
	return &RequestService{
		requests: requests,
		items:    items,
		users:    users,
	}
}

func (s *RequestService) Create(ctx context.Context, userID int64, description string) (types.ItemRequest, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return types.ItemRequest{}, fmt.Errorf("user %d: %w", userID, err)
	}
	created, err := s.requests.Create(ctx, types.ItemRequest{
		Description: description,
		RequesterID: userID,
		Created:     time.Now(),
	})
	if err != nil {
		return types.ItemRequest{}, err
	}
	created.Items = []types.Item{}
	return created, nil
}

// ListOwn returns the user's requests, newest first, each with the items
// answering it.
func (s *RequestService) ListOwn(ctx context.Context, userID int64) ([]types.ItemRequest, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("user %d: %w", userID, err)
	}
	requests, err := s.requests.ListByRequester(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.attachItems(ctx, requests)
}

// ListOthers returns other users' requests, newest first.
func (s *RequestService) ListOthers(ctx context.Context, userID int64, offset, limit int) ([]types.ItemRequest, error) {
	requests, err := s.requests.ListOthers(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	return s.attachItems(ctx, requests)
}

func (s *RequestService) Get(ctx context.Context, userID, requestID int64) (types.ItemRequest, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return types.ItemRequest{}, fmt.Errorf("user %d: %w", userID, err)
	}
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return types.ItemRequest{}, fmt.Errorf("request %d: %w", requestID, err)
	}
	requests, err := s.attachItems(ctx, []types.ItemRequest{request})
	if err != nil {
		return types.ItemRequest{}, err
	}
	return requests[0], nil
}

func (s *RequestService) attachItems(ctx context.Context, requests []types.ItemRequest) ([]types.ItemRequest, error) {
	for i := range requests {
		items, err := s.items.ListByRequest(ctx, requests[i].ID)
		if err != nil {
			return nil, err
		}
		requests[i].Items = items
	}
	return requests, nil
}
