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
	"strings"

	"github.com/jaycherian/gcp-go-workout-content/internal/core/model"
)

// StaticCatalog serves the embedded fallback records through the same
// interface as the live catalog. It never fails.
type StaticCatalog struct{}

func NewStaticCatalog() *StaticCatalog {
	return &StaticCatalog{}
}

func (c *StaticCatalog) Name() string {
	return model.FallbackCatalogName
}

// Fetch matches the selector the same way the live catalog does: a name
// substring for search, case-insensitive equality for target and body part.
func (c *StaticCatalog) Fetch(_ context.Context, query model.CatalogQuery) ([]model.Exercise, error) {
	search := strings.ToLower(strings.TrimSpace(query.Search))
	target := strings.TrimSpace(query.Target)
	bodyPart := strings.TrimSpace(query.BodyPart)

	matches := make([]model.Exercise, 0)
	for _, e := range model.GetFallbackExercises() {
		switch {
		case search != "":
			if !strings.Contains(strings.ToLower(e.Name), search) {
				continue
			}
		case target != "":
			if !strings.EqualFold(e.Target, target) {
				continue
			}
		case bodyPart != "":
			if !strings.EqualFold(e.BodyPart, bodyPart) {
				continue
			}
		}
		matches = append(matches, e)
	}
	return Window(matches, query.Offset, query.Limit), nil
}

func (c *StaticCatalog) ListBodyParts(context.Context) ([]string, error) {
	return model.UniqueBodyParts(), nil
}

func (c *StaticCatalog) ListTargets(context.Context) ([]string, error) {
	return model.UniqueTargets(), nil
}

func (c *StaticCatalog) ListEquipment(context.Context) ([]string, error) {
	return model.UniqueEquipment(), nil
}
