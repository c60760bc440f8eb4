package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/gearshare/apiserver/internal/events"
	"github.com/gearshare/apiserver/internal/store"
	"github.com/gearshare/apiserver/types"
)

type fakeUserRepo struct {
	users  map[int64]types.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]types.User)}
}

func (f *fakeUserRepo) add(name, email string) types.User {
	f.nextID++
	user := types.User{ID: f.nextID, Name: name, Email: email}
	f.users[user.ID] = user
	return user
}

func (f *fakeUserRepo) List(_ context.Context, offset, limit int) ([]types.User, error) {
	users := make([]types.User, 0, len(f.users))
	for _, user := range f.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return page(users, offset, limit), nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (types.User, error) {
	user, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicate
		}
	}
	f.nextID++
	user.ID = f.nextID
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	if _, ok := f.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	for _, existing := range f.users {
		if existing.ID != user.ID && existing.Email == user.Email {
			return types.User{}, store.ErrDuplicate
		}
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeItemRepo struct {
	items  map[int64]types.Item
	nextID int64
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: make(map[int64]types.Item)}
}

func (f *fakeItemRepo) add(ownerID int64, name string, available bool) types.Item {
	f.nextID++
	item := types.Item{
		ID:          f.nextID,
		Name:        name,
		Description: name + " description",
		Available:   available,
		OwnerID:     ownerID,
	}
	f.items[item.ID] = item
	return item
}

func (f *fakeItemRepo) GetByID(_ context.Context, id int64) (types.Item, error) {
	item, ok := f.items[id]
	if !ok {
		return types.Item{}, store.ErrNotFound
	}
	return item, nil
}

func (f *fakeItemRepo) Create(_ context.Context, item types.Item) (types.Item, error) {
	f.nextID++
	item.ID = f.nextID
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeItemRepo) Update(_ context.Context, item types.Item) (types.Item, error) {
	if _, ok := f.items[item.ID]; !ok {
		return types.Item{}, store.ErrNotFound
	}
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeItemRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.items[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeItemRepo) ListByOwner(_ context.Context, ownerID int64, offset, limit int) ([]types.Item, error) {
	items := f.filter(func(item types.Item) bool { return item.OwnerID == ownerID })
	return page(items, offset, limit), nil
}

func (f *fakeItemRepo) SearchAvailable(_ context.Context, text string, offset, limit int) ([]types.Item, error) {
	needle := strings.ToLower(text)
	items := f.filter(func(item types.Item) bool {
		if !item.Available {
			return false
		}
		return strings.Contains(strings.ToLower(item.Name), needle) ||
			strings.Contains(strings.ToLower(item.Description), needle)
	})
	return page(items, offset, limit), nil
}

func (f *fakeItemRepo) ListByRequest(_ context.Context, requestID int64) ([]types.Item, error) {
	return f.filter(func(item types.Item) bool {
		return item.RequestID != nil && *item.RequestID == requestID
	}), nil
}

func (f *fakeItemRepo) SetPhoto(_ context.Context, id int64, key, contentType string) error {
	item, ok := f.items[id]
	if !ok {
		return store.ErrNotFound
	}
	item.PhotoKey = key
	item.PhotoContentType = contentType
	f.items[id] = item
	return nil
}

func (f *fakeItemRepo) filter(keep func(types.Item) bool) []types.Item {
	items := make([]types.Item, 0)
	for _, item := range f.items {
		if keep(item) {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

type fakeBookingRepo struct {
	bookings map[int64]types.Booking
	nextID   int64
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[int64]types.Booking)}
}

func (f *fakeBookingRepo) add(item types.Item, bookerID int64, start, end time.Time, status types.BookingStatus) types.Booking {
	f.nextID++
	booking := types.Booking{
		ID:     f.nextID,
		Start:  start,
		End:    end,
		Status: status,
		Item:   types.BookingItem{ID: item.ID, Name: item.Name, OwnerID: item.OwnerID},
		Booker: types.BookingUser{ID: bookerID},
	}
	f.bookings[booking.ID] = booking
	return booking
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (types.Booking, error) {
	booking, ok := f.bookings[id]
	if !ok {
		return types.Booking{}, store.ErrNotFound
	}
	return booking, nil
}

func (f *fakeBookingRepo) Create(_ context.Context, booking types.Booking) (types.Booking, error) {
	f.nextID++
	booking.ID = f.nextID
	f.bookings[booking.ID] = booking
	return booking, nil
}

func (f *fakeBookingRepo) UpdateStatus(_ context.Context, id int64, status types.BookingStatus) error {
	booking, ok := f.bookings[id]
	if !ok {
		return store.ErrNotFound
	}
	booking.Status = status
	f.bookings[id] = booking
	return nil
}

func (f *fakeBookingRepo) ListByBooker(_ context.Context, bookerID int64, state types.BookingState, now time.Time, offset, limit int) ([]types.Booking, error) {
	return f.list(func(b types.Booking) bool { return b.Booker.ID == bookerID }, state, now, offset, limit), nil
}

func (f *fakeBookingRepo) ListByOwner(_ context.Context, ownerID int64, state types.BookingState, now time.Time, offset, limit int) ([]types.Booking, error) {
	return f.list(func(b types.Booking) bool { return b.Item.OwnerID == ownerID }, state, now, offset, limit), nil
}

func (f *fakeBookingRepo) list(owns func(types.Booking) bool, state types.BookingState, now time.Time, offset, limit int) []types.Booking {
	bookings := make([]types.Booking, 0)
	for _, b := range f.bookings {
		if !owns(b) {
			continue
		}
		switch state {
		case types.StateAll:
		case types.StateCurrent:
			if b.Start.After(now) || !b.End.After(now) {
				continue
			}
		case types.StatePast:
			if !b.End.Before(now) {
				continue
			}
		case types.StateFuture:
			if !b.Start.After(now) {
				continue
			}
		case types.StateWaiting, types.StateRejected:
			if b.Status != types.BookingStatus(state) {
				continue
			}
		}
		bookings = append(bookings, b)
	}
	if state == types.StateAll || state == types.StateFuture {
		sort.Slice(bookings, func(i, j int) bool { return bookings[i].Start.After(bookings[j].Start) })
	} else {
		sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID < bookings[j].ID })
	}
	return page(bookings, offset, limit)
}

func (f *fakeBookingRepo) LastForItem(_ context.Context, itemID int64, now time.Time) (types.BookingRef, error) {
	var best *types.Booking
	for _, b := range f.bookings {
		if b.Item.ID != itemID || !b.End.Before(now) {
			continue
		}
		b := b
		if best == nil || b.End.After(best.End) {
			best = &b
		}
	}
	if best == nil {
		return types.BookingRef{}, store.ErrNotFound
	}
	return types.BookingRef{ID: best.ID, BookerID: best.Booker.ID, Start: best.Start, End: best.End}, nil
}

func (f *fakeBookingRepo) NextForItem(_ context.Context, itemID int64, now time.Time) (types.BookingRef, error) {
	var best *types.Booking
	for _, b := range f.bookings {
		if b.Item.ID != itemID || !b.Start.After(now) {
			continue
		}
		b := b
		if best == nil || b.Start.Before(best.Start) {
			best = &b
		}
	}
	if best == nil {
		return types.BookingRef{}, store.ErrNotFound
	}
	return types.BookingRef{ID: best.ID, BookerID: best.Booker.ID, Start: best.Start, End: best.End}, nil
}

func (f *fakeBookingRepo) ExistsFinished(_ context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	for _, b := range f.bookings {
		if b.Booker.ID == bookerID && b.Item.ID == itemID && b.End.Before(now) {
			return true, nil
		}
	}
	return false, nil
}

type fakeCommentRepo struct {
	comments map[int64]types.Comment
	nextID   int64
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[int64]types.Comment)}
}

func (f *fakeCommentRepo) Create(_ context.Context, comment types.Comment) (types.Comment, error) {
	f.nextID++
	comment.ID = f.nextID
	f.comments[comment.ID] = comment
	return comment, nil
}

func (f *fakeCommentRepo) ListByItem(_ context.Context, itemID int64) ([]types.Comment, error) {
	comments := make([]types.Comment, 0)
	for _, comment := range f.comments {
		if comment.ItemID == itemID {
			comments = append(comments, comment)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].Created.After(comments[j].Created) })
	return comments, nil
}

type fakeRequestRepo struct {
	requests map[int64]types.ItemRequest
	nextID   int64
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[int64]types.ItemRequest)}
}

func (f *fakeRequestRepo) GetByID(_ context.Context, id int64) (types.ItemRequest, error) {
	request, ok := f.requests[id]
	if !ok {
		return types.ItemRequest{}, store.ErrNotFound
	}
	return request, nil
}

func (f *fakeRequestRepo) Create(_ context.Context, request types.ItemRequest) (types.ItemRequest, error) {
	f.nextID++
	request.ID = f.nextID
	f.requests[request.ID] = request
	return request, nil
}

func (f *fakeRequestRepo) ListByRequester(_ context.Context, requesterID int64) ([]types.ItemRequest, error) {
	return f.filter(func(r types.ItemRequest) bool { return r.RequesterID == requesterID }), nil
}

func (f *fakeRequestRepo) ListOthers(_ context.Context, userID int64, offset, limit int) ([]types.ItemRequest, error) {
	requests := f.filter(func(r types.ItemRequest) bool { return r.RequesterID != userID })
	return page(requests, offset, limit), nil
}

func (f *fakeRequestRepo) filter(keep func(types.ItemRequest) bool) []types.ItemRequest {
	requests := make([]types.ItemRequest, 0)
	for _, request := range f.requests {
		if keep(request) {
			requests = append(requests, request)
		}
	}
	sort.Slice(requests, func(i, j int) bool { return requests[i].Created.After(requests[j].Created) })
	return requests
}

type capturePublisher struct {
	published []events.Event
}

func (c *capturePublisher) Publish(_ context.Context, event events.Event) error {
	c.published = append(c.published, event)
	return nil
}

func (c *capturePublisher) Close() error { return nil }

func page[T any](all []T, offset, limit int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}
