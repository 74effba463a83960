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

// Package workflow assembles commands into the media workflows.
//
// MediaResolutionWorkflow turns a media request into a byte stream by trying
// an ordered list of tiers:
//
//	id:  [mirror] -> provider -> legacy-cdn
//	src: source
//
// The first tier that produces a stream wins. When every tier fails the
// workflow returns a *model.NotFoundError naming each tier and the reason it
// did not serve, including tiers that were skipped.
package workflow

import (
	"context"
	"strings"

	"github.com/jaycherian/gcp-go-workout-content/internal/cloud"
	"github.com/jaycherian/gcp-go-workout-content/internal/core/commands"
	"github.com/jaycherian/gcp-go-workout-content/internal/core/cor"
	"github.com/jaycherian/gcp-go-workout-content/internal/core/model"
)

// MediaResolutionWorkflow resolves media by id or by source URL.
type MediaResolutionWorkflow struct {
	cor.BaseCommand
	byID     *cor.FirstSuccessChain
	bySource *cor.FirstSuccessChain
}

// NewUpstreamMediaChain builds the id tiers that reach outside the service
// (provider, then legacy CDN). The mirror workflow uses it directly.
func NewUpstreamMediaChain(name string, config *cloud.Config, serviceClients *cloud.ServiceClients) *cor.FirstSuccessChain {
	chain := cor.NewFirstSuccessChain(name)
	addUpstreamTiers(chain, config, serviceClients)
	return chain
}

func addUpstreamTiers(chain cor.Chain, config *cloud.Config, serviceClients *cloud.ServiceClients) {
	chain.AddCommand(commands.NewProviderMedia(commands.TierProvider, serviceClients.HTTPClient, config.Catalog, config.Media))
	chain.AddCommand(commands.NewLegacyCDNMedia(commands.TierLegacyCDN, serviceClients.HTTPClient, config.Media))
}

// NewMediaResolutionWorkflow wires the tiers from configuration. The mirror
// tier is only part of the id chain when a mirror store is available.
func NewMediaResolutionWorkflow(config *cloud.Config, serviceClients *cloud.ServiceClients) *MediaResolutionWorkflow {
	byID := cor.NewFirstSuccessChain("media-by-id")
	if serviceClients.MirrorStore != nil {
		byID.AddCommand(commands.NewMirrorMedia(commands.TierMirror, serviceClients.MirrorStore, config.Media.MirrorPrefix))
	}
	addUpstreamTiers(byID, config, serviceClients)

	bySource := cor.NewFirstSuccessChain("media-by-source")
	bySource.AddCommand(commands.NewSourceURLMedia(commands.TierSource, serviceClients.HTTPClient, config.Media))

	return &MediaResolutionWorkflow{
		BaseCommand: *cor.NewBaseCommand("media-resolution-workflow"),
		byID:        byID,
		bySource:    bySource,
	}
}

// Resolve returns the media stream for params. The caller owns the returned
// stream and must close it.
//
// Errors:
//   - *model.ValidationError when neither id nor src is usable. No network
//     call is made in that case.
//   - *model.NotFoundError when every tier failed.
func (w *MediaResolutionWorkflow) Resolve(ctx context.Context, params model.MediaParams) (*model.MediaStream, error) {
	chain, input, target, err := w.route(params)
	if err != nil {
		return nil, err
	}

	chCtx := cor.NewBaseContext()
	defer chCtx.Close()
	chCtx.SetContext(ctx)
	chCtx.Add(cor.CtxIn, input)

	chain.Execute(chCtx)

	stream, ok := chCtx.Get(cor.CtxOut).(*model.MediaStream)
	if chCtx.HasErrors() || !ok {
		attempts := cor.Attempts(chCtx)
		notFound := &model.NotFoundError{Target: target, Attempts: make([]model.TierAttempt, 0, len(attempts))}
		for _, a := range attempts {
			notFound.Attempts = append(notFound.Attempts, model.TierAttempt{Tier: a.Name, Reason: a.Reason})
		}
		return nil, notFound
	}
	return stream, nil
}

// route picks the chain for params; id wins over src.
func (w *MediaResolutionWorkflow) route(params model.MediaParams) (*cor.FirstSuccessChain, string, string, error) {
	if id := strings.TrimSpace(params.ID); id != "" {
		return w.byID, id, "id " + id, nil
	}
	if strings.TrimSpace(params.Src) != "" {
		src, err := commands.NormalizeSourceURL(params.Src)
		if err != nil {
			return nil, "", "", err
		}
		return w.bySource, src, "src", nil
	}
	return nil, "", "", &model.ValidationError{Field: "id", Reason: "either id or src is required"}
}

// Tiers returns the number of tiers in the id chain.
func (w *MediaResolutionWorkflow) Tiers() int {
	return w.byID.Len()
}
