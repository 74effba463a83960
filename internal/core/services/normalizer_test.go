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
	"testing"

	"github.com/jaycherian/gcp-go-workout-content/internal/core/model"
	"github.com/jaycherian/gcp-go-workout-content/internal/core/services"
	test "github.com/jaycherian/gcp-go-workout-content/internal/testutil"
	"github.com/zeebo/assert"
)

const proxyPath = "/api/v1/workouts/media"

func TestNormalizeSynthesizesDescription(t *testing.T) {
	normalizer := services.NewNormalizer(proxyPath)
	benchPress := test.MixedExercises()[0]

	out := normalizer.Normalize("exercisedb", "wger", benchPress, nil)

	assert.Equal(t, "0025", out.ID)
	assert.Equal(t, "Barbell Bench Press", out.Title)
	assert.Equal(t, proxyPath+"?src=https%3A%2F%2Fmedia.example.com%2F0025.gif", out.MediaURL)
	assert.Equal(t, out.MediaURL, out.PreviewURL)
	assert.Equal(t, out.MediaURL, out.ThumbnailURL)
	assert.Equal(t, model.MediaTypeGIF, out.MediaType)
	assert.Equal(t, "Start in a stable position to perform the Barbell Bench Press. "+
		"Focus on engaging your pectorals. "+
		"Keep the movement controlled to protect your chest. "+
		"Use the barbell with a steady grip and tempo.", out.Description)
	assert.Equal(t, "<p>"+out.Description+"</p>", out.InstructionsHTML)
	assert.Equal(t, "exercisedb+synthesized", out.Source)
	assert.DeepEqual(t, []string{"pectorals"}, out.PrimaryMuscles)
	assert.DeepEqual(t, []string{"triceps", "shoulders"}, out.SecondaryMuscles)
	assert.DeepEqual(t, []string{"barbell"}, out.EquipmentList)
}

func TestNormalizeUsesEnrichment(t *testing.T) {
	normalizer := services.NewNormalizer(proxyPath)
	pullUp := test.MixedExercises()[2]

	out := normalizer.Normalize("exercisedb", "wger", pullUp, &model.Enrichment{
		DescriptionHTML: "<p>Hang <strong>still</strong>.</p>",
		DescriptionText: "Hang still.",
	})
	assert.Equal(t, "Hang still.", out.Description)
	assert.Equal(t, "<p>Hang <strong>still</strong>.</p>", out.InstructionsHTML)
	assert.Equal(t, "exercisedb+wger", out.Source)
	assert.Equal(t, proxyPath+"?id=0652", out.MediaURL)

	blank := normalizer.Normalize("exercisedb", "wger", pullUp, &model.Enrichment{DescriptionText: "  "})
	assert.Equal(t, "exercisedb+synthesized", blank.Source)
}

func TestNormalizeSparseRecord(t *testing.T) {
	normalizer := services.NewNormalizer(proxyPath)

	out := normalizer.Normalize("static", "wger", model.Exercise{ID: "x1"}, nil)
	assert.Equal(t, "Start in a stable position to perform the exercise.", out.Description)
	assert.Equal(t, 0, len(out.PrimaryMuscles))
	assert.Equal(t, 0, len(out.EquipmentList))

	escaped := normalizer.Normalize("static", "wger", model.Exercise{ID: "x2", Name: "crunch", Target: "abs & core"}, nil)
	assert.Equal(t, "<p>Start in a stable position to perform the Crunch. Focus on engaging your abs &amp; core.</p>", escaped.InstructionsHTML)

	crowded := normalizer.Normalize("static", "wger", model.Exercise{
		ID:               "x3",
		Name:             "complex",
		SecondaryMuscles: []string{"a", "b", "c", "d", "e", "f", "g", "h"},
	}, nil)
	assert.Equal(t, model.MaxAuxiliaryEntries, len(crowded.SecondaryMuscles))
}

func TestMediaTypeOf(t *testing.T) {
	cases := map[string]model.MediaType{
		"https://media.example.com/0025.gif":  model.MediaTypeGIF,
		"https://media.example.com/0294.mp4":  model.MediaTypeMP4,
		"//media.example.com/0662.png":        model.MediaTypeImage,
		"https://media.example.com/a.JPG?w=2": model.MediaTypeImage,
		"https://media.example.com/a.jpeg":    model.MediaTypeImage,
		"https://media.example.com/a.webp":    model.MediaTypeImage,
		"https://media.example.com/a":         model.MediaTypeGIF,
		"":                                    model.MediaTypeGIF,
	}
	for raw, want := range cases {
		assert.Equal(t, want, services.MediaTypeOf(raw))
	}
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Barbell Bench Press", services.Title("  barbell   bench press "))
	assert.Equal(t, "Push Up", services.Title("PUSH UP"))
	assert.Equal(t, "", services.Title(""))
}
