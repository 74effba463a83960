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

package services

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/jaycherian/gcp-go-workout-content/internal/core/model"
)

// FilterService lists the values available to the search filters. Each
// field falls back to the static catalog on its own when the live listing fails.
type FilterService struct {
	Catalog ExerciseCatalog
}

func NewFilterService(catalog ExerciseCatalog) *FilterService {
	return &FilterService{Catalog: catalog}
}

// Options never fails; the bool reports whether any field used the fallback.
func (s *FilterService) Options(ctx context.Context) (*model.FilterOptions, bool) {
	fallback := false
	field := func(name string, live func(context.Context) ([]string, error), static func() []string) []string {
		values, err := live(ctx)
		if err != nil {
			slog.WarnContext(ctx, "filter listing unavailable, using static values", "field", name, "error", err)
			fallback = true
			return sortedUnique(static())
		}
		return sortedUnique(values)
	}

	return &model.FilterOptions{
		BodyParts: field("bodyParts", s.Catalog.ListBodyParts, model.UniqueBodyParts),
		Equipment: field("equipment", s.Catalog.ListEquipment, model.UniqueEquipment),
		Targets:   field("targets", s.Catalog.ListTargets, model.UniqueTargets),
	}, fallback
}

func sortedUnique(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
