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

package test

import (
	"fmt"

	"github.com/jaycherian/gcp-go-workout-content/internal/core/model"
)

// CardioExercises returns n cardio records with ids "c001".."c00n".
func CardioExercises(n int) []model.Exercise {
	out := make([]model.Exercise, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, model.Exercise{
			ID:        fmt.Sprintf("c%03d", i),
			Name:      fmt.Sprintf("cardio move %d", i),
			BodyPart:  "cardio",
			Target:    "cardiovascular system",
			Equipment: "body weight",
			GifURL:    fmt.Sprintf("https://media.example.com/c%03d.gif", i),
		})
	}
	return out
}

// ChestExercisesWithBarbells returns total chest records of which only the
// records at the given positions use a barbell; the rest use dumbbells.
func ChestExercisesWithBarbells(total int, barbellAt ...int) []model.Exercise {
	barbell := make(map[int]bool, len(barbellAt))
	for _, i := range barbellAt {
		barbell[i] = true
	}
	out := make([]model.Exercise, 0, total)
	for i := 0; i < total; i++ {
		equipment := "dumbbell"
		if barbell[i] {
			equipment = "Barbell"
		}
		out = append(out, model.Exercise{
			ID:        fmt.Sprintf("%04d", i+100),
			Name:      fmt.Sprintf("chest press variation %d", i),
			BodyPart:  "chest",
			Target:    "pectorals",
			Equipment: equipment,
		})
	}
	return out
}

// MixedExercises is a small catalog spanning several body parts and equipment.
func MixedExercises() []model.Exercise {
	return []model.Exercise{
		{ID: "0025", Name: "barbell bench press", BodyPart: "chest", Target: "pectorals", Equipment: "barbell",
			GifURL: "https://media.example.com/0025.gif", SecondaryMuscles: []string{"triceps", "shoulders"}},
		{ID: "0294", Name: "dumbbell biceps curl", BodyPart: "upper arms", Target: "biceps", Equipment: "dumbbell",
			GifURL: "https://media.example.com/0294.mp4"},
		{ID: "0652", Name: "pull-up", BodyPart: "back", Target: "lats", Equipment: "body weight"},
		{ID: "0662", Name: "push-up", BodyPart: "chest", Target: "pectorals", Equipment: "body weight",
			GifURL: "//media.example.com/0662.png"},
		{ID: "1373", Name: "calf raise", BodyPart: "lower legs", Target: "calves", Equipment: "body weight"},
		{ID: "3214", Name: "kettlebell goblet squat", BodyPart: "upper legs", Target: "glutes", Equipment: "kettlebell"},
	}
}

// Names returns the names of records, in order.
func Names(records []model.Exercise) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Name)
	}
	return out
}
