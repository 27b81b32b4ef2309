package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/itemdesk/internal/middleware"
	"github.com/vyrodovalexey/itemdesk/internal/model"
	"github.com/vyrodovalexey/itemdesk/internal/store"
	"github.com/vyrodovalexey/itemdesk/internal/validate"
)

// Version is the application version.
const Version = "1.0.0"

// maxBodyBytes bounds the size of a create request body.
const maxBodyBytes = 1 << 20

// RESTHandler handles REST API requests for items.
type RESTHandler struct {
	store  store.Store
	logger *zap.Logger
}

// NewRESTHandler creates a new RESTHandler instance.
func NewRESTHandler(s store.Store, logger *zap.Logger) *RESTHandler {
	return &RESTHandler{
		store:  s,
		logger: logger,
	}
}

// RegisterRoutes registers the item routes, each named after its operation.
// The OPTIONS routes let CORS preflights reach the middleware.
func (h *RESTHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet).Name(middleware.OpHealth)
	router.HandleFunc("/items", h.ListItems).Methods(http.MethodGet).Name(middleware.OpList)
	router.HandleFunc("/items", h.CreateItem).Methods(http.MethodPost).Name(middleware.OpCreate)
	router.HandleFunc("/items", preflight).Methods(http.MethodOptions).Name(middleware.OpPreflight)
	router.HandleFunc("/items/{id}", h.GetItem).Methods(http.MethodGet).Name(middleware.OpGet)
	router.HandleFunc("/items/{id}", h.DeleteItem).Methods(http.MethodDelete).Name(middleware.OpDelete)
	router.HandleFunc("/items/{id}", preflight).Methods(http.MethodOptions).Name(middleware.OpPreflight)
}

func preflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health requests.
func (h *RESTHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	response := HealthResponse{
		Status:  "healthy",
		Version: Version,
	}
	h.writeJSON(w, http.StatusOK, response)
}

// ListItems handles GET /items requests.
func (h *RESTHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := h.store.List(ctx)
	if err != nil {
		h.log(r).Error("failed to list items", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "failed to retrieve items", "")
		return
	}

	h.writeJSON(w, http.StatusOK, items)
}

// GetItem handles GET /items/{id} requests.
func (h *RESTHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := model.ItemID(mux.Vars(r)["id"])

	item, err := h.store.Get(ctx, id)
	if err != nil {
		h.handleStoreError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, item)
}

// CreateItem handles POST /items requests. Any id in the body is ignored.
func (h *RESTHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input model.ItemDraft
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&input); err != nil {
		h.log(r).Warn("invalid request body", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	form := model.FormState{Name: input.Name, Category: input.Category, Description: input.Description}
	if errs := validate.Form(form); errs.HasErrors() {
		details := describe(errs)
		h.log(r).Warn("validation failed", zap.String("details", details))
		h.writeError(w, http.StatusBadRequest, "validation failed", details)
		return
	}

	item, err := h.store.Create(ctx, &input)
	if err != nil {
		h.handleStoreError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, item)
}

// DeleteItem handles DELETE /items/{id} requests.
func (h *RESTHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	if err := validate.Identifier(id); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid item ID", "")
		return
	}

	if err := h.store.Delete(ctx, model.ItemID(id)); err != nil {
		h.handleStoreError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusNoContent, nil)
}

// handleStoreError handles store errors and writes appropriate HTTP responses.
func (h *RESTHandler) handleStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "item not found", "")
	case errors.Is(err, store.ErrInvalidID):
		h.writeError(w, http.StatusBadRequest, "invalid item ID", "")
	default:
		h.log(r).Error("store operation failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal server error", "")
	}
}

// log returns the request-scoped logger, which carries the request ID and operation.
func (h *RESTHandler) log(r *http.Request) *zap.Logger {
	return middleware.Logger(r.Context(), h.logger)
}

// writeJSON writes a JSON response with the given status code.
func (h *RESTHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError writes an error response with the given status code and message.
func (h *RESTHandler) writeError(w http.ResponseWriter, status int, message, details string) {
	response := model.ErrorResponse{
		Code:    status,
		Message: message,
		Details: details,
	}
	h.writeJSON(w, status, response)
}

// describe renders validation errors as "field: message" pairs sorted by field.
func describe(errs model.ValidationErrors) string {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, string(field))
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+errs[model.Field(field)])
	}
	return strings.Join(parts, "; ")
}
