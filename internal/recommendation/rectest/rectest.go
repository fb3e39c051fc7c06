// Package rectest builds schema-conformant recommendation payloads for tests.
package rectest

import (
	"encoding/json"
	"fmt"
)

func strs(prefix string, n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s %d", prefix, i+1)
	}
	return out
}

// Core returns a valid v1 document for sport.
func Core(sport string, score int) map[string]any {
	exercises := make([]any, 3)
	for i := range exercises {
		exercises[i] = map[string]any{
			"name":        fmt.Sprintf("Drill %d", i+1),
			"description": "Controlled movement at an easy pace",
			"duration":    "10 minutes",
			"repetitions": "3 sets of 10",
			"videoUrl":    fmt.Sprintf("https://www.youtube.com/watch?v=drill%d", i+1),
		}
	}
	return map[string]any{
		"sport":       sport,
		"score":       score,
		"reason":      "Low impact and fits the schedule",
		"explanation": "Builds endurance while protecting the joints.",
		"benefits":    strs("benefit", 5),
		"precautions": strs("precaution", 4),
		"exercises":   exercises,
	}
}

// Alternatives returns n valid alternative entries.
func Alternatives(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = map[string]any{
			"sport":       fmt.Sprintf("Alternative %d", i+1),
			"score":       70 - i,
			"reason":      "Similar benefits",
			"benefits":    strs("alt benefit", 3),
			"precautions": strs("alt precaution", 2),
		}
	}
	return out
}

// Plan returns a valid training plan with the given number of weeks.
func Plan(weeks int) map[string]any {
	ws := make([]any, weeks)
	for i := range ws {
		sessions := make([]any, 3)
		for j := range sessions {
			sessions[j] = map[string]any{
				"day":       j*2 + 1,
				"title":     fmt.Sprintf("Session %d", j+1),
				"duration":  "45 minutes",
				"exercises": strs("exercise", 2),
			}
		}
		ws[i] = map[string]any{
			"week":     i + 1,
			"focus":    "Technique",
			"sessions": sessions,
		}
	}
	return map[string]any{
		"duration":        fmt.Sprintf("%d weeks", weeks),
		"goal":            "Swim 1 km continuously",
		"weeks":           ws,
		"equipment":       []any{"swimsuit", "goggles"},
		"progressionTips": strs("tip", 3),
	}
}

// Full returns a valid v3 document.
func Full(sport string, score int) map[string]any {
	doc := Core(sport, score)
	doc["alternatives"] = Alternatives(2)
	doc["trainingPlan"] = Plan(2)
	return doc
}

// JSON marshals v, panicking on failure.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
