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
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Stats is the body of GET /stats.
type Stats struct {
	UptimeSeconds          int64  `json:"uptimeSeconds"`
	EnrichmentCacheEntries int    `json:"enrichmentCacheEntries"`
	MediaTiers             int    `json:"mediaTiers"`
	Catalog                string `json:"catalog"`
	Enrichment             string `json:"enrichment"`
	MirrorEnabled          bool   `json:"mirrorEnabled"`
}

// Dashboard sets up the "/stats" route group with process statistics.
func Dashboard(r *gin.RouterGroup, state *State) {
	stats := r.Group("/stats")
	{
		stats.GET("", func(c *gin.Context) {
			c.JSON(http.StatusOK, Stats{
				UptimeSeconds:          int64(time.Since(state.Started).Seconds()),
				EnrichmentCacheEntries: state.EnrichmentCache.Len(),
				MediaTiers:             state.MediaTiers,
				Catalog:                state.Config.Catalog.Name,
				Enrichment:             state.Config.Enrichment.Name,
				MirrorEnabled:          state.Config.Media.MirrorBucket != "",
			})
		})
	}
}
