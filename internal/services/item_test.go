package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/gearshare/apiserver/internal/store"
	"github.com/gearshare/apiserver/types"
)

type itemFixture struct {
	users    *fakeUserRepo
	items    *fakeItemRepo
	bookings *fakeBookingRepo
	comments *fakeCommentRepo
	requests *fakeRequestRepo
	svc      *ItemService
}

func newItemFixture(photos PhotoStore) *itemFixture {
	f := &itemFixture{
		users:    newFakeUserRepo(),
		items:    newFakeItemRepo(),
		bookings: newFakeBookingRepo(),
		comments: newFakeCommentRepo(),
		requests: newFakeRequestRepo(),
	}
	f.svc = NewItemService(f.items, f.users, f.bookings, f.comments, f.requests, photos)
	return f
}

func TestItemCreate(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture(nil)
	owner := f.users.add("Olga", "olga@example.com")

	item, err := f.svc.Create(ctx, owner.ID, types.Item{Name: "drill", Description: "cordless", Available: true})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if item.OwnerID != owner.ID {
		t.Fatalf("owner id %d, want %d", item.OwnerID, owner.ID)
	}
	if item.ID == 0 {
		t.Fatalf("expected item id to be set")
	}
}

func TestItemCreateMissingUser(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture(nil)

	_, err := f.svc.Create(ctx, 42, types.Item{Name: "drill", Available: true})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found for missing user, got %v", err)
	}
}

func TestItemCreateMissingRequest(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture(nil)
	owner := f.users.add("Olga", "olga@example.com")

	requestID := int64(42)
	_, err := f.svc.Create(ctx, owner.ID, types.Item{Name: "drill", Available: true, RequestID: &requestID})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found for missing request, got %v", err)
	}
}

func TestItemUpdatePartial(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture(nil)
	owner := f.users.add("Olga", "olga@example.com")
	item := f.items.add(owner.ID, "drill", true)

	available := false
	updated, err := f.svc.Update(ctx, owner.ID, item.ID, types.ItemPatch{Available: &available})
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if updated.Available {
		t.Fatalf("expected item to be unavailable after patch")
	}
	// Fields absent from the patch keep their stored values.
	if updated.Name != item.Name || updated.Description != item.Description {
		t.Fatalf("untouched fields changed: %+v", updated)
	}
}

func TestItemUpdateByNonOwner(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture(nil)
	owner := f.users.add("Olga", "olga@example.com")
	other := f.users.add("Boris", "boris@example.com")
	item := f.items.add(owner.ID, "drill", true)

	name := "hammer"
	_, err := f.svc.Update(ctx, other.ID, item.ID, types.ItemPatch{Name: &name})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict for non-owner update, got %v", err)
	}
}

func TestItemSearch(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture(nil)
	owner := f.users.add("Olga", "olga@example.com")
	f.items.add(owner.ID, "cordless drill", true)
	f.items.add(owner.ID, "drill press", false)
	f.items.add(owner.ID, "ladder", true)

	found, err := f.svc.Search(ctx, "DRILL", 0, 20)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("expected only the available drill, got %d items", len(found))
	}
	if found[0].Name != "cordless drill" {
		t.Fatalf("unexpected search hit: %q", found[0].Name)
	}
}

func TestItemSearchBlankText(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture(nil)
	owner := f.users.add("Olga", "olga@example.com")
	f.items.add(owner.ID, "drill", true)

	found, err := f.svc.Search(ctx, "   ", 0, 20)
	if err != nil {
		t.Fatalf("search blank: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("blank search must return an empty list, got %d items", len(found))
	}
}

func TestItemDetailBookingsOwnerOnly(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture(nil)
	owner := f.users.add("Olga", "olga@example.com")
	booker := f.users.add("Boris", "boris@example.com")
	item := f.items.add(owner.ID, "drill", true)

	now := time.Now()
	last := f.bookings.add(item, booker.ID, now.Add(-3*time.Hour), now.Add(-2*time.Hour), types.StatusApproved)
	next := f.bookings.add(item, booker.ID, now.Add(2*time.Hour), now.Add(3*time.Hour), types.StatusApproved)

	detail, err := f.svc.GetDetail(ctx, owner.ID, item.ID)
	if err != nil {
		t.Fatalf("get detail as owner: %v", err)
	}
	if detail.LastBooking == nil || detail.LastBooking.ID != last.ID {
		t.Fatalf("owner should see last booking %d, got %+v", last.ID, detail.LastBooking)
	}
	if detail.NextBooking == nil || detail.NextBooking.ID != next.ID {
		t.Fatalf("owner should see next booking %d, got %+v", next.ID, detail.NextBooking)
	}

	detail, err = f.svc.GetDetail(ctx, booker.ID, item.ID)
	if err != nil {
		t.Fatalf("get detail as booker: %v", err)
	}
	if detail.LastBooking != nil || detail.NextBooking != nil {
		t.Fatalf("non-owner must not see item bookings: %+v", detail)
	}
}

func TestItemDetailNoBookings(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture(nil)
	owner := f.users.add("Olga", "olga@example.com")
	item := f.items.add(owner.ID, "drill", true)

	detail, err := f.svc.GetDetail(ctx, owner.ID, item.ID)
	if err != nil {
		t.Fatalf("get detail: %v", err)
	}
	if detail.LastBooking != nil || detail.NextBooking != nil {
		t.Fatalf("expected nil booking refs for a never-booked item: %+v", detail)
	}
	if detail.Comments == nil {
		t.Fatalf("comments must be an empty slice, not nil")
	}
}

func TestItemAddComment(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture(nil)
	owner := f.users.add("Olga", "olga@example.com")
	booker := f.users.add("Boris", "boris@example.com")
	item := f.items.add(owner.ID, "drill", true)

	now := time.Now()
	f.bookings.add(item, booker.ID, now.Add(-3*time.Hour), now.Add(-2*time.Hour), types.StatusApproved)

	comment, err := f.svc.AddComment(ctx, booker.ID, item.ID, "worked great")
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if comment.AuthorName != booker.Name {
		t.Fatalf("author name %q, want %q", comment.AuthorName, booker.Name)
	}
	if comment.Created.IsZero() {
		t.Fatalf("expected created timestamp to be set")
	}
}

func TestItemAddCommentWithoutFinishedBooking(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture(nil)
	owner := f.users.add("Olga", "olga@example.com")
	booker := f.users.add("Boris", "boris@example.com")
	item := f.items.add(owner.ID, "drill", true)

	// A booking still in progress does not earn comment rights.
	now := time.Now()
	f.bookings.add(item, booker.ID, now.Add(-time.Hour), now.Add(time.Hour), types.StatusApproved)

	_, err := f.svc.AddComment(ctx, booker.ID, item.ID, "too early")
	if !errors.Is(err, ErrCommentNotAllowed) {
		t.Fatalf("expected comment refusal, got %v", err)
	}
}

type memoryPhotoStore struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemoryPhotoStore() *memoryPhotoStore {
	return &memoryPhotoStore{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (m *memoryPhotoStore) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *memoryPhotoStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func TestItemPhotoRoundTrip(t *testing.T) {
	ctx := context.Background()
	photos := newMemoryPhotoStore()
	f := newItemFixture(photos)
	owner := f.users.add("Olga", "olga@example.com")
	item := f.items.add(owner.ID, "drill", true)

	payload := []byte("fake-jpeg-bytes")
	err := f.svc.AttachPhoto(ctx, owner.ID, item.ID, "image/jpeg", bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		t.Fatalf("attach photo: %v", err)
	}

	reader, contentType, err := f.svc.Photo(ctx, item.ID)
	if err != nil {
		t.Fatalf("get photo: %v", err)
	}
	defer reader.Close()
	if contentType != "image/jpeg" {
		t.Fatalf("content type %q, want image/jpeg", contentType)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read photo: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Fatalf("photo bytes do not round-trip")
	}
}

func TestItemPhotoByNonOwner(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture(newMemoryPhotoStore())
	owner := f.users.add("Olga", "olga@example.com")
	other := f.users.add("Boris", "boris@example.com")
	item := f.items.add(owner.ID, "drill", true)

	err := f.svc.AttachPhoto(ctx, other.ID, item.ID, "image/png", bytes.NewReader([]byte("x")), 1)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict for non-owner photo upload, got %v", err)
	}
}

func TestItemPhotoDisabled(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture(nil)
	owner := f.users.add("Olga", "olga@example.com")
	item := f.items.add(owner.ID, "drill", true)

	err := f.svc.AttachPhoto(ctx, owner.ID, item.ID, "image/png", bytes.NewReader([]byte("x")), 1)
	if !errors.Is(err, ErrPhotosDisabled) {
		t.Fatalf("expected photos-disabled error, got %v", err)
	}
	if _, _, err := f.svc.Photo(ctx, item.ID); !errors.Is(err, ErrPhotosDisabled) {
		t.Fatalf("expected photos-disabled error on read, got %v", err)
	}
}

func TestItemPhotoMissing(t *testing.T) {
	ctx := context.Background()
	f := newItemFixture(newMemoryPhotoStore())
	owner := f.users.add("Olga", "olga@example.com")
	item := f.items.add(owner.ID, "drill", true)

	_, _, err := f.svc.Photo(ctx, item.ID)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found for item without photo, got %v", err)
	}
}
