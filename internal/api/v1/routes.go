// Package v1 provides the REST API handlers for reading synced translations.
package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-logr/logr"

	"github.com/stacklok/translations-sync/internal/api/common"
	"github.com/stacklok/translations-sync/internal/mask"
	"github.com/stacklok/translations-sync/internal/status"
	"github.com/stacklok/translations-sync/internal/storage"
	"github.com/stacklok/translations-sync/internal/versions"
)

// StatusProvider exposes the current sync status
type StatusProvider interface {
	GetStatus() *status.SyncStatus
}

// Routes holds the dependencies of the translations API handlers
type Routes struct {
	storage        storage.TranslationsStorage
	statusProvider StatusProvider
}

// NewRoutes creates a new Routes instance
func NewRoutes(translationsStorage storage.TranslationsStorage, statusProvider StatusProvider) *Routes {
	return &Routes{
		storage:        translationsStorage,
		statusProvider: statusProvider,
	}
}

// Router creates the router for the v1 translations API
func Router(translationsStorage storage.TranslationsStorage, statusProvider StatusProvider) http.Handler {
	routes := NewRoutes(translationsStorage, statusProvider)

	r := chi.NewRouter()
	r.Get("/translations", routes.getTranslations)
	r.Get("/status", routes.getStatus)

	return r
}

// HealthRouter creates a router for health check endpoints
func HealthRouter(translationsStorage storage.TranslationsStorage) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", healthHandler)
	r.Get("/readiness", readinessHandler(translationsStorage))
	r.Get("/version", versionHandler)

	return r
}

// getTranslations handles GET /v1/translations
//
// @Summary		Get translations
// @Description	Get the synced translations, optionally filtered by tags and locale
// @Tags			translations
// @Produce		json
// @Param			tags	query		string	false	"Comma separated tag filter"
// @Param			lang	query		string	false	"Locale code"
// @Success		200		{object}	map[string]any
// @Failure		400		{object}	common.ErrorResponse
// @Failure		404		{object}	common.ErrorResponse
// @Router			/v1/translations [get]
func (rr *Routes) getTranslations(w http.ResponseWriter, r *http.Request) {
	logger := logr.FromContextOrDiscard(r.Context())

	lang, err := common.GetAndValidateQueryParam(r, "lang")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	filterTags := common.GetQueryList(r, "tags")

	doc, err := rr.storage.GetTranslations(r.Context(), filterTags)
	if errors.Is(err, storage.ErrSnapshotNotFound) {
		common.WriteErrorResponse(w, "No translations have been synced yet", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Error(err, "Failed to read translations")
		common.WriteErrorResponse(w, "Failed to read translations", http.StatusInternalServerError)
		return
	}

	if lang != "" {
		localized, ok := mask.SelectLocale(doc, lang)
		if !ok {
			common.WriteErrorResponse(w, fmt.Sprintf("Locale %s not found", lang), http.StatusNotFound)
			return
		}
		doc = localized
	}

	common.WriteJSONResponse(w, doc, http.StatusOK)
}

// getStatus handles GET /v1/status
//
// @Summary		Sync status
// @Description	Get the status of the translations sync loop
// @Tags			system
// @Produce		json
// @Success		200	{object}	status.SyncStatus
// @Router			/v1/status [get]
func (rr *Routes) getStatus(w http.ResponseWriter, _ *http.Request) {
	syncStatus := rr.statusProvider.GetStatus()
	if syncStatus == nil {
		syncStatus = &status.SyncStatus{}
	}
	common.WriteJSONResponse(w, syncStatus, http.StatusOK)
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, HealthResponse{Status: "ok"}, http.StatusOK)
}

// readinessHandler reports ready once a snapshot has been stored
func readinessHandler(translationsStorage storage.TranslationsStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, err := translationsStorage.HasTranslations(r.Context())
		if err != nil {
			common.WriteErrorResponse(w, "Translations storage not ready: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		if !ok {
			common.WriteErrorResponse(w, "No translations have been synced yet", http.StatusServiceUnavailable)
			return
		}

		common.WriteJSONResponse(w, ReadinessResponse{Status: "ready"}, http.StatusOK)
	}
}

// versionHandler handles version information requests
func versionHandler(w http.ResponseWriter, _ *http.Request) {
	info := versions.GetVersionInfo()

	common.WriteJSONResponse(w, VersionResponse{
		Version:   info.Version,
		Commit:    info.Commit,
		BuildDate: info.BuildDate,
		GoVersion: info.GoVersion,
		Platform:  info.Platform,
	}, http.StatusOK)
}
