package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"f1insights/internal/analytics"
	apierrors "f1insights/internal/errors"
	"f1insights/internal/exporter"
	"f1insights/internal/middleware"
	"f1insights/internal/services"
	"f1insights/pkg/contracts/domain"
)

type actionCtxKey struct{}

// AnalyticsHandler serves the menu, selectors, views and exports
type AnalyticsHandler struct {
	service      AnalyticsServiceInterface
	validator    *middleware.ValidationMiddleware
	queryParams  *middleware.QueryParamValidator
	exporter     *exporter.Exporter
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAnalyticsHandler creates a new analytics handler with RFC 7807 error handling
func NewAnalyticsHandler(
	service AnalyticsServiceInterface,
	validator *middleware.ValidationMiddleware,
	exp *exporter.Exporter,
	logger *slog.Logger,
	errorHandler *apierrors.ErrorHandler,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		service:      service,
		validator:    validator,
		queryParams:  middleware.NewQueryParamValidator(logger, errorHandler),
		exporter:     exp,
		logger:       logger.With(slog.String("component", "analytics_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the analytics routes, mounted under /api
func (h *AnalyticsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/menu", h.GetMenu)
	r.Get("/datasets", h.GetDatasets)
	r.Get("/drivers", h.GetDrivers)
	r.Get("/constructors", h.GetConstructors)

	r.Route("/analytics/{action}", func(r chi.Router) {
		r.Use(h.ActionCtx)
		r.Get("/", h.RunAction)
		r.Get("/defaults", h.GetDefaults)
		r.Get("/export", h.ExportAction)
	})

	return r
}

// ActionCtx resolves the {action} URL parameter against the menu
func (h *AnalyticsHandler) ActionCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "action")
		action, ok := analytics.Lookup(id)
		if !ok {
			h.errorHandler.HandleError(w, r, apierrors.UnknownActionError(id))
			return
		}
		ctx := context.WithValue(r.Context(), actionCtxKey{}, action)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func actionFromContext(ctx context.Context) analytics.Action {
	action, _ := ctx.Value(actionCtxKey{}).(analytics.Action)
	return action
}

// GetMenu handles GET /api/menu
func (h *AnalyticsHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	menu := h.service.Menu()
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   menu,
		"count":  len(menu),
	})
}

// GetDatasets handles GET /api/datasets
func (h *AnalyticsHandler) GetDatasets(w http.ResponseWriter, r *http.Request) {
	datasets, err := h.service.Datasets(r.Context())
	if err != nil {
		h.fail(w, r, "", err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   datasets,
		"count":  len(datasets),
	})
}

// GetDrivers handles GET /api/drivers
func (h *AnalyticsHandler) GetDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.service.Drivers(r.Context())
	if err != nil {
		h.fail(w, r, "", err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   drivers,
		"count":  len(drivers),
	})
}

// GetConstructors handles GET /api/constructors
func (h *AnalyticsHandler) GetConstructors(w http.ResponseWriter, r *http.Request) {
	constructors, err := h.service.Constructors(r.Context())
	if err != nil {
		h.fail(w, r, "", err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   constructors,
		"count":  len(constructors),
	})
}

// GetDefaults handles GET /api/analytics/{action}/defaults
func (h *AnalyticsHandler) GetDefaults(w http.ResponseWriter, r *http.Request) {
	action := actionFromContext(r.Context())

	params, err := h.service.Defaults(r.Context(), action.ID)
	if err != nil {
		h.fail(w, r, action.ID, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   params,
	})
}

// RunAction handles GET /api/analytics/{action}
func (h *AnalyticsHandler) RunAction(w http.ResponseWriter, r *http.Request) {
	action := actionFromContext(r.Context())

	view, ok := h.run(w, r, action)
	if !ok {
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
	})
}

// ExportAction handles GET /api/analytics/{action}/export?format=xlsx|csv
func (h *AnalyticsHandler) ExportAction(w http.ResponseWriter, r *http.Request) {
	action := actionFromContext(r.Context())

	raw, ok := h.queryParams.ValidateEnum(w, r, "format",
		[]string{string(exporter.FormatXLSX), string(exporter.FormatCSV)}, string(exporter.FormatXLSX))
	if !ok {
		return
	}
	format, err := exporter.ParseFormat(raw)
	if err != nil {
		h.fail(w, r, action.ID, err)
		return
	}

	view, ok := h.run(w, r, action)
	if !ok {
		return
	}

	// Buffer so a failed export still gets a problem response
	var buf bytes.Buffer
	if err := h.exporter.Export(&buf, view, format); err != nil {
		if errors.Is(err, exporter.ErrNoTables) {
			h.fail(w, r, action.ID, err)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.ExportError(action.ID, err))
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName(action.ID)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "export write interrupted",
			slog.String("action", action.ID),
			slog.String("error", err.Error()))
	}
}

func (h *AnalyticsHandler) run(w http.ResponseWriter, r *http.Request, action analytics.Action) (*domain.View, bool) {
	params, err := h.validator.ParseParams(r.URL.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}

	h.logger.InfoContext(r.Context(), "running analytics action",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("action", action.ID),
	)

	view, err := h.service.Run(r.Context(), action.ID, params)
	if err != nil {
		h.fail(w, r, action.ID, err)
		return nil, false
	}
	return view, true
}

func (h *AnalyticsHandler) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	h.errorHandler.HandleError(w, r, mapServiceError(action, err))
}

// mapServiceError maps service, analytics and export errors to API errors
func mapServiceError(action string, err error) error {
	var apiErr *apierrors.APIError
	var appErr *apierrors.AppError

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return err
	case errors.As(err, &apiErr), errors.As(err, &appErr):
		return err
	case errors.Is(err, services.ErrDatasetNotLoaded):
		return apierrors.ErrDatasetUnavailable
	case errors.Is(err, services.ErrUnknownAction):
		return apierrors.UnknownActionError(action)
	case errors.Is(err, analytics.ErrUnknownDriver), errors.Is(err, analytics.ErrUnknownConstructor):
		return apierrors.NewWithDetails(http.StatusNotFound, "ENTITY_NOT_FOUND", apierrors.ErrEntityNotFound.Message, err.Error())
	case errors.Is(err, exporter.ErrUnsupportedFormat):
		return apierrors.ErrUnsupportedFormat
	case errors.Is(err, exporter.ErrNoTables):
		return apierrors.NewWithDetails(http.StatusNotFound, "NOT_FOUND", "The view has no tables to export", action)
	default:
		return apierrors.AnalyticsError(action, err)
	}
}
