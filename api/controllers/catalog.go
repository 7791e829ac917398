package controllers

import (
	"net/http"
	"time"

	"github.com/tokopos/terminal-api/api/responses"
	catalogsvc "github.com/tokopos/terminal-api/internal/catalog"
	pkgerrors "github.com/tokopos/terminal-api/pkg/errors"
	"github.com/tokopos/terminal-api/pkg/logger"
	"github.com/tokopos/terminal-api/pkg/upstream"
)

type productListResponse struct {
	Products  []upstream.Product `json:"products"`
	FetchedAt time.Time          `json:"fetched_at"`
}

type categoryListResponse struct {
	Categories []upstream.Category `json:"categories"`
	FetchedAt  time.Time           `json:"fetched_at"`
}

// CatalogProducts serves the cached product catalog.
func CatalogProducts(svc catalogsvc.Service, tokens upstreamTokenSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		_, token, err := sessionToken(r, tokens)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.Snapshot(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, productListResponse{
			Products:  snapshot.Products(),
			FetchedAt: snapshot.FetchedAt(),
		})
	}
}

// CatalogCategories serves the cached category list.
func CatalogCategories(svc catalogsvc.Service, tokens upstreamTokenSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		_, token, err := sessionToken(r, tokens)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.Snapshot(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, categoryListResponse{
			Categories: snapshot.Categories(),
			FetchedAt:  snapshot.FetchedAt(),
		})
	}
}

// CatalogRefresh forces a fetch regardless of the cache TTL.
func CatalogRefresh(svc catalogsvc.Service, tokens upstreamTokenSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		_, token, err := sessionToken(r, tokens)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.Refresh(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, productListResponse{
			Products:  snapshot.Products(),
			FetchedAt: snapshot.FetchedAt(),
		})
	}
}
