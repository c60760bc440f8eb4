package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gearshare/apiserver/types"
)

// ItemRepository handles persistence for items.
type ItemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

const itemColumns = `id, name, description, available, owner_id, request_id, photo_key, photo_content_type`

func scanItem(row interface{ Scan(...any) error }) (types.Item, error) {
	var item types.Item
	var requestID sql.NullInt64
	err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Description,
		&item.Available,
		&item.OwnerID,
		&requestID,
		&item.PhotoKey,
		&item.PhotoContentType,
	)
	if err != nil {
		return types.Item{}, err
	}
	if requestID.Valid {
		item.RequestID = &requestID.Int64
	}
	return item, nil
}

func (r *ItemRepository) GetByID(ctx context.Context, id int64) (types.Item, error) {
	const query = `
		SELECT ` + itemColumns + `
		FROM items
		WHERE id = $1`
	item, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Item{}, ErrNotFound
		}
		return types.Item{}, err
	}
	return item, nil
}

func (r *ItemRepository) Create(ctx context.Context, item types.Item) (types.Item, error) {
	const query = `
		INSERT INTO items (name, description, available, owner_id, request_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	var requestID sql.NullInt64
	if item.RequestID != nil {
		requestID = sql.NullInt64{Int64: *item.RequestID, Valid: true}
	}
	if err := r.db.QueryRowContext(
		ctx,
		query,
		item.Name,
		item.Description,
		item.Available,
		item.OwnerID,
		requestID,
	).Scan(&item.ID); err != nil {
		return types.Item{}, err
	}
	return item, nil
}

func (r *ItemRepository) Update(ctx context.Context, item types.Item) (types.Item, error) {
	const query = `
		UPDATE items
		SET name = $1,
			description = $2,
			available = $3
		WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, item.Name, item.Description, item.Available, item.ID)
	if err != nil {
		return types.Item{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Item{}, err
	}
	if affected == 0 {
		return types.Item{}, ErrNotFound
	}
	return item, nil
}

func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM items WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ItemRepository) ListByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]types.Item, error) {
	const query = `
		SELECT ` + itemColumns + `
		FROM items
		WHERE owner_id = $1
		ORDER BY id
		OFFSET $2 LIMIT $3`
	return r.queryItems(ctx, query, ownerID, offset, limit)
}

// SearchAvailable matches available items whose name or description contains
// the text, case-insensitively. Blank text is rejected one layer up.
func (r *ItemRepository) SearchAvailable(ctx context.Context, text string, offset, limit int) ([]types.Item, error) {
	const query = `
		SELECT ` + itemColumns + `
		FROM items
		WHERE available = TRUE
		  AND (name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')
		ORDER BY id
		OFFSET $2 LIMIT $3`
	return r.queryItems(ctx, query, text, offset, limit)
}

// ListByRequest finds the items listed in answer to an item-request.
func (r *ItemRepository) ListByRequest(ctx context.Context, requestID int64) ([]types.Item, error) {
	const query = `
		SELECT ` + itemColumns + `
		FROM items
		WHERE request_id = $1
		ORDER BY id`
	return r.queryItems(ctx, query, requestID)
}

func (r *ItemRepository) SetPhoto(ctx context.Context, id int64, key, contentType string) error {
	const query = `
		UPDATE items
		SET photo_key = $1,
			photo_content_type = $2
		WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, key, contentType, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ItemRepository) queryItems(ctx context.Context, query string, args ...any) ([]types.Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]types.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
