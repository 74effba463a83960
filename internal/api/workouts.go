// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/gcp-go-workout-content/internal/core/model"
	"github.com/jaycherian/gcp-go-workout-content/internal/core/services"
)

// ErrorResponse is the body of every error answer.
type ErrorResponse struct {
	Error string              `json:"error"`
	Kind  string              `json:"kind"`
	Tiers []model.TierAttempt `json:"tiers,omitempty"`
}

// WorkoutRouter sets up the workout routes.
//
// This function defines the following endpoints:
//   - GET /workouts/search: Filtered, paginated, enriched exercise search. Falls
//     back to the static catalog when the live catalog fails.
//   - GET /workouts/filters: Values for the filter pickers.
//   - GET /workouts/media: Streams exercise media resolved by id or source URL.
func WorkoutRouter(r *gin.RouterGroup, state *State) {
	listCacheControl := fmt.Sprintf("public, max-age=%d", state.Config.Search.CacheMaxAgeInSeconds)
	mediaCacheControl := fmt.Sprintf("public, max-age=%d, immutable", state.Config.Media.CacheMaxAgeInSeconds)

	workouts := r.Group("/workouts")
	{
		workouts.GET("/search", func(c *gin.Context) {
			ctx := c.Request.Context()
			filters := model.SearchFilters{
				Query:     c.Query("q"),
				BodyPart:  c.Query("bodyPart"),
				Target:    c.Query("target"),
				Equipment: c.Query("equipment"),
			}
			limit := services.ParseLimit(c.Query("limit"), state.Config.Search)
			offset := services.ParseOffset(c.Query("offset"))

			result, err := state.Search.Search(ctx, filters, limit, offset)
			var upstream *model.UpstreamError
			if errors.As(err, &upstream) {
				slog.WarnContext(ctx, "catalog unavailable, serving static catalog",
					"source", upstream.Source, "status", upstream.StatusCode)
				result, err = state.Search.WithFallbackCatalog().Search(ctx, filters, limit, offset)
			}
			if err != nil {
				writeError(c, err)
				return
			}
			c.Header("Cache-Control", listCacheControl)
			c.JSON(http.StatusOK, result)
		})

		workouts.GET("/filters", func(c *gin.Context) {
			options, _ := state.Filters.Options(c.Request.Context())
			c.Header("Cache-Control", listCacheControl)
			c.JSON(http.StatusOK, options)
		})

		workouts.GET("/media", func(c *gin.Context) {
			params := model.MediaParams{ID: c.Query("id"), Src: c.Query("src")}
			stream, err := state.Media.Resolve(c.Request.Context(), params)
			if err != nil {
				writeError(c, err)
				return
			}
			defer stream.Close()

			c.DataFromReader(http.StatusOK, stream.ContentLength, stream.ContentType, stream.Body, map[string]string{
				"Cache-Control":                mediaCacheControl,
				"Access-Control-Allow-Origin":  "*",
				"Cross-Origin-Resource-Policy": "cross-origin",
				"X-Content-Type-Options":       "nosniff",
			})
		})
	}
}

// writeError maps the typed service errors to HTTP answers.
func writeError(c *gin.Context, err error) {
	var validation *model.ValidationError
	var notFound *model.NotFoundError
	var upstream *model.UpstreamError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: validation.Error(), Kind: "validation"})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "media not found", Kind: "not_found", Tiers: notFound.Attempts})
	case errors.As(err, &upstream):
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: fmt.Sprintf("upstream %s unavailable", upstream.Source), Kind: "upstream"})
	default:
		slog.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Kind: "internal"})
	}
}
