package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ariefcatur/go-room-bookings/internal/bookings"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type CreateBookingReq struct {
	RoomID    string `json:"roomId"`
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type CreateBookingResp struct {
	ID string `json:"id"`
}

type DeleteBookingResp struct {
	DeletedID string `json:"deletedID"`
}

type SplitBookingReq struct {
	DeleteDates []string `json:"deleteDates"`
}

type SplitBookingResp struct {
	Message string   `json:"message"`
	Outcome string   `json:"outcome"`
	IDs     []string `json:"ids"`
}

// AuditLister is satisfied by *bookings.AuditRepo.
type AuditLister interface {
	ListForBooking(ctx context.Context, bookingID string) ([]bookings.AuditEntry, error)
}

type BookingsHandler struct {
	Service *bookings.Service
	Audit   AuditLister // nil leaves /bookings/{id}/audit unrouted
}

func (h *BookingsHandler) Register(r chi.Router) {
	r.Get("/bookings", h.listBookings)
	r.Post("/bookings", h.createBooking)
	r.Get("/bookings/{id}", h.getBooking)
	r.Delete("/bookings/{id}", h.deleteBooking)
	r.Post("/bookings/{id}/split", h.splitBooking)
	if h.Audit != nil {
		r.Get("/bookings/{id}/audit", h.bookingAudit)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, bookings.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, bookings.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, bookings.ErrValidation),
		errors.Is(err, bookings.ErrNonContiguous),
		errors.Is(err, bookings.ErrEmptyResult):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *BookingsHandler) listBookings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	bs, err := h.Service.List(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bs)
}

func (h *BookingsHandler) getBooking(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	b, err := h.Service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingsHandler) createBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	start, err := bookings.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, err)
		return
	}
	end, err := bookings.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := h.Service.Create(ctx, bookings.Draft{
		RoomID:    req.RoomID,
		Name:      req.Name,
		StartDate: start,
		EndDate:   end,
	}, middleware.GetReqID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CreateBookingResp{ID: id})
}

func (h *BookingsHandler) deleteBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Service.Delete(ctx, id, middleware.GetReqID(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteBookingResp{DeletedID: id})
}

func (h *BookingsHandler) splitBooking(w http.ResponseWriter, r *http.Request) {
	var req SplitBookingReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "deleteDates must be an array with at least one date"})
		return
	}
	if len(req.DeleteDates) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "deleteDates must be an array with at least one date"})
		return
	}
	dates, err := bookings.ParseDates(req.DeleteDates)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Service.Split(ctx, chi.URLParam(r, "id"), dates, middleware.GetReqID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SplitBookingResp{
		Message: res.Outcome.Message(),
		Outcome: res.Outcome.Kind().String(),
		IDs:     res.IDs,
	})
}

func (h *BookingsHandler) bookingAudit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	entries, err := h.Audit.ListForBooking(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
