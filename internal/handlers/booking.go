package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gearshare/apiserver/internal/services"
)

// BookingHandler provides HTTP handlers for bookings.
type BookingHandler struct {
	bookingService *services.BookingService
}

func NewBookingHandler(bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// BookingRouter registers booking routes on the given router.
func BookingRouter(r chi.Router, bookingService *services.BookingService) {
	handler := NewBookingHandler(bookingService)

	r.Post("/", handler.CreateBooking)
	r.Get("/", handler.ListByBooker)
	r.Get("/owner", handler.ListByOwner)
	r.Route("/{bookingID}", func(r chi.Router) {
		r.Get("/", handler.GetBooking)
		r.Patch("/", handler.ConfirmBooking)
	})
}

type CreateBookingRequest struct {
	ItemID int64     `json:"item_id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.ItemID < 1 {
		writeError(w, http.StatusBadRequest, "item_id is required")
		return
	}
	if req.Start.IsZero() || req.End.IsZero() {
		writeError(w, http.StatusBadRequest, "start and end are required")
		return
	}
	now := time.Now()
	if req.Start.Before(now) {
		writeError(w, http.StatusBadRequest, "start must not be in the past")
		return
	}
	if !req.Start.Before(req.End) {
		writeError(w, http.StatusBadRequest, "start must be before end")
		return
	}

	booking, err := h.bookingService.Create(r.Context(), userID, req.ItemID, req.Start, req.End)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (h *BookingHandler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bookingID, err := pathID(r, "bookingID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var approved bool
	switch strings.TrimSpace(r.URL.Query().Get("approved")) {
	case "true":
		approved = true
	case "false":
		approved = false
	default:
		writeError(w, http.StatusBadRequest, "approved must be true or false")
		return
	}

	booking, err := h.bookingService.Confirm(r.Context(), userID, bookingID, approved)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bookingID, err := pathID(r, "bookingID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	booking, err := h.bookingService.Get(r.Context(), userID, bookingID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) ListByBooker(w http.ResponseWriter, r *http.Request) {
	userID, state, offset, limit, ok := h.listParams(w, r)
	if !ok {
		return
	}

	bookings, err := h.bookingService.ListByBooker(r.Context(), userID, state, offset, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *BookingHandler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	userID, state, offset, limit, ok := h.listParams(w, r)
	if !ok {
		return
	}

	bookings, err := h.bookingService.ListByOwner(r.Context(), userID, state, offset, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *BookingHandler) listParams(w http.ResponseWriter, r *http.Request) (userID int64, state string, offset, limit int, ok bool) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return 0, "", 0, 0, false
	}
	offset, limit, err = parsePagination(r, defaultListSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return 0, "", 0, 0, false
	}
	state = strings.TrimSpace(r.URL.Query().Get("state"))
	if state == "" {
		state = "ALL"
	}
	return userID, state, offset, limit, true
}
