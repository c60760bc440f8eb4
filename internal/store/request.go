package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gearshare/apiserver/types"
)

// RequestRepository handles persistence for item-requests.
type RequestRepository struct {
	db *sql.DB
}

func NewRequestRepository(db *sql.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) GetByID(ctx context.Context, id int64) (types.ItemRequest, error) {
	const query = `
		SELECT id, description, requester_id, created_at
		FROM item_requests
		WHERE id = $1`
	var request types.ItemRequest
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&request.ID,
		&request.Description,
		&request.RequesterID,
		&request.Created,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.ItemRequest{}, ErrNotFound
		}
		return types.ItemRequest{}, err
	}
	return request, nil
}

func (r *RequestRepository) Create(ctx context.Context, request types.ItemRequest) (types.ItemRequest, error) {
	const query = `
		INSERT INTO item_requests (description, requester_id, created_at)
		VALUES ($1, $2, $3)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		request.Description,
		request.RequesterID,
		request.Created,
	).Scan(&request.ID); err != nil {
		return types.ItemRequest{}, err
	}
	return request, nil
}

func (r *RequestRepository) ListByRequester(ctx context.Context, requesterID int64) ([]types.ItemRequest, error) {
	const query = `
		SELECT id, description, requester_id, created_at
		FROM item_requests
		WHERE requester_id = $1
		ORDER BY created_at DESC`
	return r.queryRequests(ctx, query, requesterID)
}

// ListOthers returns requests filed by everyone except the given user,
// newest first.
func (r *RequestRepository) ListOthers(ctx context.Context, userID int64, offset, limit int) ([]types.ItemRequest, error) {
	const query = `
		SELECT id, description, requester_id, created_at
		FROM item_requests
		WHERE requester_id <> $1
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3`
	return r.queryRequests(ctx, query, userID, offset, limit)
}

func (r *RequestRepository) queryRequests(ctx context.Context, query string, args ...any) ([]types.ItemRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]types.ItemRequest, 0)
	for rows.Next() {
		var request types.ItemRequest
		if err := rows.Scan(
			&request.ID,
			&request.Description,
			&request.RequesterID,
			&request.Created,
		); err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, rows.Err()
}
