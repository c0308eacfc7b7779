// Package registryd implements the local registry API server: the
// create/update/list endpoints and the duplicate lookup the intake wizard
// consumes. It is the reference collaborator for development and tests;
// a production deployment would point the client at the office's central
// registry instead.
package registryd

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/registradesk/registra/internal/logger"
	"github.com/registradesk/registra/internal/record"
	"github.com/registradesk/registra/internal/registry"
	"github.com/registradesk/registra/internal/validate"
)

// Handler serves the registry API over a Store.
type Handler struct {
	store Store
	now   func() time.Time
}

// NewHandler creates a handler over the given store.
func NewHandler(store Store) *Handler {
	return &Handler{store: store, now: time.Now}
}

// Router builds the chi router for the registry API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/records", h.createRecord)
		r.Get("/records", h.listRecords)
		r.Get("/records/{id}", h.getRecord)
		r.Put("/records/{id}", h.updateRecord)
		r.Post("/duplicates", h.checkDuplicates)
	})

	return r
}

// NewServer builds an HTTP server with sane defaults around the handler.
func NewServer(addr string, h *Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (h *Handler) createRecord(w http.ResponseWriter, r *http.Request) {
	var req registry.SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Type.Valid() {
		writeMessage(w, http.StatusBadRequest, fmt.Sprintf("unknown record type %q", req.Type))
		return
	}

	if fieldErrs := serverValidate(req.Type, req.Fields); len(fieldErrs) > 0 {
		writeFieldErrors(w, fieldErrs)
		return
	}

	// The registry is where uniqueness is actually enforced; the wizard's
	// duplicate alert is advisory.
	existing, err := h.store.List(r.Context(), req.Type)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "storage failure")
		logger.Error("registryd: list for uniqueness check: %v", err)
		return
	}
	target := identityOf(req.Type, req.Fields)
	if exact, _ := classify(req.Type, target, existing, ""); exact {
		writeMessage(w, http.StatusConflict, "a record with the same identity fields is already registered")
		return
	}

	seq, err := h.store.NextSeq(r.Context())
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "storage failure")
		logger.Error("registryd: next sequence: %v", err)
		return
	}

	now := h.now().UTC()
	rec := record.Record{
		ID:         uuid.NewString(),
		Type:       req.Type,
		RegistryNo: fmt.Sprintf("%d-%06d", now.Year(), seq),
		Fields:     req.Fields,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.store.Put(r.Context(), rec); err != nil {
		writeMessage(w, http.StatusInternalServerError, "storage failure")
		logger.Error("registryd: put record: %v", err)
		return
	}

	logger.Info("registryd: created %s record %s (%s)", rec.Type, rec.ID, rec.RegistryNo)
	writeJSON(w, http.StatusCreated, rec)
}

func (h *Handler) updateRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req registry.SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	existing, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "record not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "storage failure")
		logger.Error("registryd: get record %s: %v", id, err)
		return
	}

	if req.Type != "" && req.Type != existing.Type {
		writeMessage(w, http.StatusBadRequest, "record type cannot be changed")
		return
	}

	if fieldErrs := serverValidate(existing.Type, req.Fields); len(fieldErrs) > 0 {
		writeFieldErrors(w, fieldErrs)
		return
	}

	all, err := h.store.List(r.Context(), existing.Type)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "storage failure")
		logger.Error("registryd: list for uniqueness check: %v", err)
		return
	}
	target := identityOf(existing.Type, req.Fields)
	// An edit must not conflict with itself.
	if exact, _ := classify(existing.Type, target, all, id); exact {
		writeMessage(w, http.StatusConflict, "a record with the same identity fields is already registered")
		return
	}

	updated := *existing
	updated.Fields = req.Fields
	updated.UpdatedAt = h.now().UTC()

	if err := h.store.Put(r.Context(), updated); err != nil {
		writeMessage(w, http.StatusInternalServerError, "storage failure")
		logger.Error("registryd: put record: %v", err)
		return
	}

	logger.Info("registryd: updated %s record %s", updated.Type, updated.ID)
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) getRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "record not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "storage failure")
		logger.Error("registryd: get record %s: %v", id, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request) {
	t := record.Type(r.URL.Query().Get("type"))
	if t != "" && !t.Valid() {
		writeMessage(w, http.StatusBadRequest, fmt.Sprintf("unknown record type %q", t))
		return
	}
	records, err := h.store.List(r.Context(), t)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "storage failure")
		logger.Error("registryd: list records: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, registry.ListResponse{Records: records})
}

func (h *Handler) checkDuplicates(w http.ResponseWriter, r *http.Request) {
	var req registry.DuplicateCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Type.Valid() {
		writeMessage(w, http.StatusBadRequest, fmt.Sprintf("unknown record type %q", req.Type))
		return
	}

	candidates, err := h.store.List(r.Context(), req.Type)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "storage failure")
		logger.Error("registryd: list for duplicate check: %v", err)
		return
	}

	exact, similar := classify(req.Type, req.Identity, candidates, req.ExcludeID)
	writeJSON(w, http.StatusOK, registry.DuplicateCheckResponse{
		Success:        true,
		IsDuplicate:    exact,
		SimilarRecords: similar,
	})
}

// serverValidate re-runs the full rule set server-side. The server is
// authoritative: a client that skipped validation still cannot persist an
// invalid record.
func serverValidate(t record.Type, fields record.Fields) map[string][]string {
	_, errs := validate.All(t, fields)
	if errs.OK() {
		return nil
	}
	out := make(map[string][]string, len(errs))
	for field, msg := range errs {
		out[field] = []string{msg}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("registryd: encoding response: %v", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func writeFieldErrors(w http.ResponseWriter, errs map[string][]string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": errs})
}
