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

package services_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/jaycherian/gcp-go-workout-content/internal/core/commands"
	"github.com/jaycherian/gcp-go-workout-content/internal/core/model"
	"github.com/jaycherian/gcp-go-workout-content/internal/core/services"
	test "github.com/jaycherian/gcp-go-workout-content/internal/testutil"
	"github.com/zeebo/assert"
)

func TestFilterOptionsFromCatalog(t *testing.T) {
	cs := test.NewCatalogServer(t, test.MixedExercises())
	config := test.NewTestConfig(cs.URL, "", "")
	filters := services.NewFilterService(services.NewCatalogService(cs.Client(), config.Catalog))

	options, fallback := filters.Options(context.Background())
	assert.False(t, fallback)
	assert.DeepEqual(t, []string{"back", "chest", "lower legs", "upper arms", "upper legs"}, options.BodyParts)
	assert.DeepEqual(t, []string{"barbell", "body weight", "dumbbell", "kettlebell"}, options.Equipment)
	assert.DeepEqual(t, []string{"biceps", "calves", "glutes", "lats", "pectorals"}, options.Targets)
}

func TestFilterOptionsFallBackPerField(t *testing.T) {
	cs := test.NewCatalogServer(t, test.MixedExercises())
	cs.FailedLists.Store("targetList", http.StatusInternalServerError)
	config := test.NewTestConfig(cs.URL, "", "")
	filters := services.NewFilterService(services.NewCatalogService(cs.Client(), config.Catalog))

	options, fallback := filters.Options(context.Background())
	assert.True(t, fallback)
	assert.DeepEqual(t, model.UniqueTargets(), options.Targets)
	assert.DeepEqual(t, []string{"barbell", "body weight", "dumbbell", "kettlebell"}, options.Equipment)
}

type stubResolver struct {
	tier string
	err  error
}

func (r stubResolver) Resolve(context.Context, model.MediaParams) (*model.MediaStream, error) {
	if r.err != nil {
		return nil, r.err
	}
	return &model.MediaStream{Body: io.NopCloser(strings.NewReader("GIF89a")), ContentType: "image/gif", Tier: r.tier}, nil
}

type recordingPublisher struct {
	mu  sync.Mutex
	ids []string
}

func (p *recordingPublisher) RequestMirror(_ context.Context, id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = append(p.ids, id)
}

func TestMediaServiceRequestsMirrorForUpstreamHits(t *testing.T) {
	ctx := context.Background()
	publisher := &recordingPublisher{}

	upstream := services.NewMediaService(stubResolver{tier: commands.TierLegacyCDN}, publisher)
	stream, err := upstream.Resolve(ctx, model.MediaParams{ID: " 37 "})
	assert.NoError(t, err)
	assert.NoError(t, stream.Close())
	_, _ = upstream.Resolve(ctx, model.MediaParams{Src: "https://cdn.example.com/a.gif"})

	mirrored := services.NewMediaService(stubResolver{tier: commands.TierMirror}, publisher)
	_, _ = mirrored.Resolve(ctx, model.MediaParams{ID: "25"})

	failing := services.NewMediaService(stubResolver{err: errors.New("boom")}, publisher)
	_, err = failing.Resolve(ctx, model.MediaParams{ID: "99"})
	assert.Error(t, err)

	assert.DeepEqual(t, []string{"37"}, publisher.ids)

	unpublished := services.NewMediaService(stubResolver{tier: commands.TierProvider}, nil)
	_, err = unpublished.Resolve(ctx, model.MediaParams{ID: "37"})
	assert.NoError(t, err)
}
