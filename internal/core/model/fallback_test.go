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

package model_test

import (
	"slices"
	"testing"

	"github.com/jaycherian/gcp-go-workout-content/internal/core/model"
	"github.com/zeebo/assert"
)

// TestFallbackCatalogShape checks the fallback catalog is usable as a drop-in
// replacement for the live catalog: unique ids, and every record carrying the
// classification fields used by the search filters.
func TestFallbackCatalogShape(t *testing.T) {
	exercises := model.GetFallbackExercises()
	assert.True(t, len(exercises) >= 8)

	seen := make(map[string]bool)
	for _, e := range exercises {
		assert.False(t, seen[e.ID])
		seen[e.ID] = true
		assert.True(t, e.Name != "")
		assert.True(t, e.BodyPart != "")
		assert.True(t, e.Target != "")
		assert.True(t, e.Equipment != "")
	}
}

func TestFallbackCatalogIsImmutable(t *testing.T) {
	first := model.GetFallbackExercises()
	first[0].Name = "changed"
	first[1].SecondaryMuscles[0] = "changed"

	second := model.GetFallbackExercises()
	assert.Equal(t, second[0].Name, "3/4 sit-up")
	assert.Equal(t, second[1].SecondaryMuscles[0], "triceps")
}

func TestFallbackDerivedAccessors(t *testing.T) {
	for _, values := range [][]string{model.UniqueBodyParts(), model.UniqueTargets(), model.UniqueEquipment()} {
		assert.True(t, len(values) > 0)
		assert.True(t, slices.IsSorted(values))
		assert.Equal(t, len(slices.Compact(slices.Clone(values))), len(values))
	}

	assert.True(t, slices.Contains(model.UniqueBodyParts(), "cardio"))
	assert.True(t, slices.Contains(model.UniqueEquipment(), "barbell"))
	assert.True(t, slices.Contains(model.UniqueTargets(), "pectorals"))
}
