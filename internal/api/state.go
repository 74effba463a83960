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

// Package api contains the HTTP surface of the service: the workout routes,
// the operational endpoints and the middleware shared by all of them.
package api

import (
	"time"

	"github.com/jaycherian/gcp-go-workout-content/internal/cloud"
	"github.com/jaycherian/gcp-go-workout-content/internal/core/services"
	"github.com/jaycherian/gcp-go-workout-content/internal/core/workflow"
)

// State holds the shared dependencies of the HTTP handlers. It is built once
// at start-up; the enrichment cache inside it lives as long as the process.
type State struct {
	Config          *cloud.Config
	Search          *services.SearchService
	Filters         *services.FilterService
	Media           *services.MediaService
	EnrichmentCache services.EnrichmentCache
	MediaTiers      int
	Started         time.Time
}

// NewState wires the services from configuration and the shared clients.
func NewState(config *cloud.Config, clients *cloud.ServiceClients) *State {
	catalog := services.NewCatalogService(clients.HTTPClient, config.Catalog)
	enrichmentCache := services.NewMemoryEnrichmentCache()
	enrichment := services.NewEnrichmentService(clients.HTTPClient, config.Enrichment, enrichmentCache)
	normalizer := services.NewNormalizer(config.Media.ProxyPath)
	resolution := workflow.NewMediaResolutionWorkflow(config, clients)

	return &State{
		Config:          config,
		Search:          services.NewSearchService(catalog, enrichment, normalizer, config),
		Filters:         services.NewFilterService(catalog),
		Media:           services.NewMediaService(resolution, clients.MirrorPublisher),
		EnrichmentCache: enrichmentCache,
		MediaTiers:      resolution.Tiers(),
		Started:         time.Now(),
	}
}
