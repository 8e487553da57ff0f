package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"bloodflow/m/domain"
	"bloodflow/m/internal/report"
	"bloodflow/m/internal/store"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	store  *store.BloodDataStore
	logger *zap.Logger
}

// New constructs a Handler.
func New(s *store.BloodDataStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: s, logger: logger}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))
	r.Use(middleware.RequestID)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)
	r.Get("/status", h.status)

	r.Route("/donors", func(r chi.Router) {
		r.Get("/", h.listDonors)
		r.Post("/", h.addDonor)
		r.Delete("/{id}", h.removeDonor)
	})

	r.Route("/requests", func(r chi.Router) {
		r.Get("/", h.listRequests)
		r.Post("/", h.addRequest)
		r.Get("/{id}", h.getRequest)
		r.Put("/{id}/status", h.updateRequestStatus)
	})

	r.Route("/inventory", func(r chi.Router) {
		r.Get("/", h.listInventory)
		r.Put("/{bloodGroup}", h.updateInventory)
	})

	r.Get("/summary", h.summary)
	r.Post("/reset", h.reset)
	r.Get("/reports/export.xlsx", h.exportWorkbook)

	return r
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{"ready": h.store.Ready()})
}

// Donors

func (h *Handler) listDonors(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Donors())
}

func (h *Handler) addDonor(w http.ResponseWriter, r *http.Request) {
	var in domain.DonorInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	group, err := in.Normalize()
	if err != nil {
		h.respondStoreError(w, err)
		return
	}

	donor, err := h.store.AddDonor(r.Context(), in.Name, in.Contact, group)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, donor)
}

func (h *Handler) removeDonor(w http.ResponseWriter, r *http.Request) {
	if err := h.store.RemoveDonor(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Requests

func (h *Handler) listRequests(w http.ResponseWriter, r *http.Request) {
	requests := h.store.Requests()
	raw := r.URL.Query().Get("status")
	if raw == "" {
		respondJSON(w, http.StatusOK, requests)
		return
	}

	status, err := domain.ParseRequestStatus(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	filtered := make([]domain.BloodRequest, 0, len(requests))
	for _, req := range requests {
		if req.Status == status {
			filtered = append(filtered, req)
		}
	}
	respondJSON(w, http.StatusOK, filtered)
}

func (h *Handler) addRequest(w http.ResponseWriter, r *http.Request) {
	var in domain.RequestInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	group, err := in.Normalize()
	if err != nil {
		h.respondStoreError(w, err)
		return
	}

	req, err := h.store.AddRequest(r.Context(), in.PatientName, group, in.Units)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, req)
}

func (h *Handler) getRequest(w http.ResponseWriter, r *http.Request) {
	if !h.store.Ready() {
		h.respondStoreError(w, store.ErrNotReady)
		return
	}
	req, ok := h.store.Request(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, "request not found")
		return
	}
	respondJSON(w, http.StatusOK, req)
}

type statusUpdate struct {
	Status string `json:"status"`
}

func (h *Handler) updateRequestStatus(w http.ResponseWriter, r *http.Request) {
	var in statusUpdate
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	status := domain.RequestStatus(in.Status)
	if _, err := domain.ParseRequestStatus(in.Status); err != nil {
		h.respondStoreError(w, store.ErrInvalidStatus)
		return
	}
	if !h.store.Ready() {
		h.respondStoreError(w, store.ErrNotReady)
		return
	}

	id := chi.URLParam(r, "id")
	if _, ok := h.store.Request(id); !ok {
		respondError(w, http.StatusNotFound, "request not found")
		return
	}
	if err := h.store.UpdateRequestStatus(r.Context(), id, status); err != nil {
		h.respondStoreError(w, err)
		return
	}

	req, _ := h.store.Request(id)
	respondJSON(w, http.StatusOK, req)
}

// Inventory

func (h *Handler) listInventory(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Inventory())
}

type inventoryUpdate struct {
	Units *int64 `json:"units"`
}

func (h *Handler) updateInventory(w http.ResponseWriter, r *http.Request) {
	raw, err := url.PathUnescape(chi.URLParam(r, "bloodGroup"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid blood group")
		return
	}
	group, err := domain.ParseBloodGroup(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var in inventoryUpdate
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.Units == nil {
		respondError(w, http.StatusBadRequest, "units is required")
		return
	}

	if err := h.store.UpdateInventory(r.Context(), group, *in.Units); err != nil {
		h.respondStoreError(w, err)
		return
	}
	for _, item := range h.store.Inventory() {
		if item.BloodGroup == group {
			respondJSON(w, http.StatusOK, item)
			return
		}
	}
	respondError(w, http.StatusInternalServerError, "inventory row missing")
}

// Dashboard and maintenance

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Summary())
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ResetData(r.Context()); err != nil {
		h.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.store.Snapshot())
}

func (h *Handler) exportWorkbook(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := report.WriteWorkbook(&buf, h.store.Snapshot()); err != nil {
		h.logger.Error("unable to build report", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "unable to build report")
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", "attachment; filename=bloodflow-report.xlsx")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

type insufficientStockResponse struct {
	Error      string            `json:"error"`
	BloodGroup domain.BloodGroup `json:"blood_group"`
	Requested  int64             `json:"requested"`
	Available  int64             `json:"available"`
}

type validationResponse struct {
	Error string `json:"error"`
	Field string `json:"field"`
}

func (h *Handler) respondStoreError(w http.ResponseWriter, err error) {
	var (
		validationErr *domain.ValidationError
		stockErr      *store.InsufficientStockError
	)
	switch {
	case errors.As(err, &validationErr):
		respondJSON(w, http.StatusBadRequest, validationResponse{Error: validationErr.Message, Field: validationErr.Field})
	case errors.As(err, &stockErr):
		respondJSON(w, http.StatusConflict, insufficientStockResponse{
			Error:      stockErr.Error(),
			BloodGroup: stockErr.Group,
			Requested:  stockErr.Requested,
			Available:  stockErr.Available,
		})
	case errors.Is(err, store.ErrFulfilledIsTerminal):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrInvalidStatus):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotReady):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.logger.Error("unhandled store error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// Helpers
func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
