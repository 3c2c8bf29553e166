package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/meteora/weather-history/internal/export"
	"github.com/meteora/weather-history/internal/geo"
	"github.com/meteora/weather-history/internal/model"
	"github.com/meteora/weather-history/internal/repository"
	"github.com/meteora/weather-history/internal/service"
	"github.com/meteora/weather-history/internal/weather"
)

// Handler handles HTTP requests
type Handler struct {
	service  service.ServiceInterface
	logger   *zap.Logger
	validate *validator.Validate
}

// NewHandler creates a new handler instance
func NewHandler(service service.ServiceInterface, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		service:  service,
		logger:   logger,
		validate: newValidator(),
	}
}

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ResolveLocation handles POST /api/v1/geo/resolve
func (h *Handler) ResolveLocation(w http.ResponseWriter, r *http.Request) {
	var req model.ResolveRequest
	if !h.decode(w, r, &req) {
		return
	}

	loc, err := h.service.ResolveLocation(r.Context(), req.Input)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, loc)
}

// ReverseLocation handles POST /api/v1/geo/reverse
func (h *Handler) ReverseLocation(w http.ResponseWriter, r *http.Request) {
	var req model.CoordinatesRequest
	if !h.decode(w, r, &req) {
		return
	}

	loc, err := h.service.ReverseLocation(r.Context(), *req.Latitude, *req.Longitude)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, loc)
}

// FetchWeather handles POST /api/v1/weather/fetch
func (h *Handler) FetchWeather(w http.ResponseWriter, r *http.Request) {
	var req model.CoordinatesRequest
	if !h.decode(w, r, &req) {
		return
	}

	bundle, err := h.service.FetchWeather(r.Context(), *req.Latitude, *req.Longitude)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, bundle)
}

// ListRequests handles GET /api/v1/requests
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.ListRequests(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if records == nil {
		records = []model.WeatherRequest{}
	}
	h.writeJSON(w, http.StatusOK, records)
}

// CreateRequest handles POST /api/v1/requests
func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var req model.CreateRequestInput
	if !h.decode(w, r, &req) {
		return
	}

	record, err := h.service.CreateRequest(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, record)
}

// GetRequest handles GET /api/v1/requests/{id}
func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.GetRequest(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, record)
}

// UpdateRequest handles PATCH /api/v1/requests/{id}
func (h *Handler) UpdateRequest(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateRequestInput
	if !h.decode(w, r, &req) {
		return
	}

	record, err := h.service.UpdateRequest(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, record)
}

// DeleteRequest handles DELETE /api/v1/requests/{id}
func (h *Handler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteRequest(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, model.DeleteResponse{OK: true})
}

// ExportRequests handles GET /api/v1/export
func (h *Handler) ExportRequests(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	opts := export.Options{
		Locale:   export.MatchLocale(r.Header.Get("Accept-Language")),
		Location: time.UTC,
	}
	if tz := query.Get("tz"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, model.ErrorResponse{
				Error:  "invalid time zone",
				Fields: map[string]string{"tz": "unknown time zone"},
			})
			return
		}
		opts.Location = loc
	}

	doc, err := h.service.ExportRequests(r.Context(), query.Get("format"), parseIDs(query.Get("ids")), opts)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	if doc.ContentType == "application/pdf" {
		w.Header().Set("Cache-Control", "no-store")
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Body); err != nil {
		h.logger.Warn("Failed to write export", zap.Error(err))
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// parseIDs splits a comma separated id list, dropping blanks.
func parseIDs(raw string) []string {
	if raw == "" {
		return nil
	}
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// decode reads a JSON body into dst and validates it. It writes the error
// response itself and reports whether the handler may continue.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, model.ErrorResponse{Error: "invalid JSON body"})
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			h.handleError(w, r, err)
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = describe(fe)
		}
		h.writeError(w, http.StatusBadRequest, model.ErrorResponse{Error: "validation failed", Fields: fields})
		return false
	}
	return true
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}

// handleError maps service errors to HTTP responses.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		h.writeError(w, http.StatusBadRequest, model.ErrorResponse{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, export.ErrUnsupportedFormat):
		h.writeError(w, http.StatusBadRequest, model.ErrorResponse{
			Error:  "unsupported export format",
			Fields: map[string]string{"format": "must be one of " + formatList()},
		})
	case errors.Is(err, geo.ErrEmptyInput):
		h.writeError(w, http.StatusBadRequest, model.ErrorResponse{
			Error:  "validation failed",
			Fields: map[string]string{"input": "is required"},
		})
	case errors.Is(err, repository.ErrNotFound):
		h.writeError(w, http.StatusNotFound, model.ErrorResponse{Error: "request not found"})
	case errors.Is(err, geo.ErrNoMatch):
		h.writeError(w, http.StatusInternalServerError, model.ErrorResponse{Error: geo.NoMatchMessage})
	case errors.Is(err, geo.ErrResolution):
		h.logger.Error("Location resolution failed", zap.String("path", r.URL.Path), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, model.ErrorResponse{Error: "failed to resolve location"})
	case errors.Is(err, weather.ErrFetch):
		h.logger.Error("Weather fetch failed", zap.String("path", r.URL.Path), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, model.ErrorResponse{Error: "failed to fetch weather data"})
	default:
		h.logger.Error("Request failed", zap.String("path", r.URL.Path), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, model.ErrorResponse{Error: "internal server error"})
	}
}

func formatList() string {
	names := make([]string, len(export.Formats))
	for i, f := range export.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Error encoding response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, body model.ErrorResponse) {
	h.writeJSON(w, status, body)
}
