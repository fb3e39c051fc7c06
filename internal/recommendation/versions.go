package recommendation

import (
	"fmt"
	"strings"
)

const (
	VersionV1   = "v1"
	VersionV2   = "v2"
	VersionV3   = "v3"
	VersionPlan = "plan"

	DefaultVersion = VersionV3
)

func intp(v int) *int { return &v }

func text(name, hint string) Field {
	return Field{Name: name, Kind: KindString, Required: true, NonEmpty: true, Hint: hint}
}

func optionalText(name, hint string) Field {
	return Field{Name: name, Kind: KindString, Hint: hint}
}

func integer(name string, min, max *int, hint string) Field {
	return Field{Name: name, Kind: KindInteger, Required: true, Min: min, Max: max, Hint: hint}
}

func texts(name string, minItems, maxItems int, hint string) Field {
	item := Field{Kind: KindString, NonEmpty: true}
	return Field{Name: name, Kind: KindArray, Required: true, MinItems: minItems, MaxItems: maxItems, Items: &item, Hint: hint}
}

func objects(name string, minItems, maxItems int, hint string, fields ...Field) Field {
	item := Field{Kind: KindObject, Fields: fields}
	return Field{Name: name, Kind: KindArray, Required: true, MinItems: minItems, MaxItems: maxItems, Items: &item, Hint: hint}
}

func object(name, hint string, fields ...Field) Field {
	return Field{Name: name, Kind: KindObject, Required: true, Fields: fields, Hint: hint}
}

func coreFields() []Field {
	return []Field{
		text("sport", "name of the recommended sport, in the requested language"),
		integer("score", intp(0), intp(100), "compatibility score"),
		text("reason", "short reason the sport fits this profile"),
		text("explanation", "detailed, personalised explanation"),
		texts("benefits", 5, 5, "benefits for this user"),
		texts("precautions", 4, 4, "precautions adapted to the user's health"),
		objects("exercises", 3, 3, "starter exercises",
			text("name", "exercise name"),
			text("description", "how to perform it"),
			text("duration", "for example \"10 minutes\""),
			text("repetitions", "for example \"3 sets of 12\""),
			text("videoUrl", "link to a demonstration video of the exercise"),
		),
	}
}

func alternativesField() Field {
	return objects("alternatives", 2, 3, "other sports that would also suit the user",
		text("sport", "alternative sport name"),
		integer("score", intp(0), intp(100), "compatibility score"),
		text("reason", "why it is a good alternative"),
		texts("benefits", 3, 5, "benefits"),
		texts("precautions", 2, 4, "precautions"),
	)
}

func planFields() []Field {
	return []Field{
		text("duration", "total plan length, for example \"4 weeks\""),
		text("goal", "what the plan achieves"),
		objects("weeks", 2, 4, "weekly breakdown",
			integer("week", intp(1), nil, "week number starting at 1"),
			text("focus", "focus of the week"),
			objects("sessions", 3, 4, "training sessions of the week",
				integer("day", intp(1), intp(7), "day of the week, 1 to 7"),
				text("title", "session title"),
				text("duration", "session length"),
				texts("exercises", 1, 0, "exercises performed"),
				optionalText("notes", "optional coaching notes"),
			),
			optionalText("milestone", "optional goal for the end of the week"),
		),
		texts("equipment", 1, 0, "equipment needed"),
		texts("progressionTips", 3, 5, "tips to progress safely"),
	}
}

var (
	V1 = register(Schema{
		Version:        VersionV1,
		Description:    "core recommendation",
		Discriminators: []string{"sport", "score"},
		Fields:         coreFields(),
	})

	V2 = register(Schema{
		Version:        VersionV2,
		Description:    "recommendation with alternatives",
		Discriminators: []string{"sport", "score"},
		Fields:         append(coreFields(), alternativesField()),
	})

	V3 = register(Schema{
		Version:        VersionV3,
		Description:    "recommendation with alternatives and a training plan",
		Discriminators: []string{"sport", "score"},
		Fields: append(coreFields(),
			alternativesField(),
			object("trainingPlan", "progressive training plan for the recommended sport", planFields()...),
		),
	})

	Plan = register(Schema{
		Version:        VersionPlan,
		Description:    "standalone training plan",
		Discriminators: []string{"goal", "weeks"},
		Fields:         planFields(),
	})
)

// Extensions returns the top-level fields this schema adds on top of v1.
func (s Schema) Extensions() []Field {
	if s.Version == VersionPlan {
		return nil
	}
	core := make(map[string]struct{}, len(V1.Fields))
	for _, f := range V1.Fields {
		core[f.Name] = struct{}{}
	}
	var out []Field
	for _, f := range s.Fields {
		if _, ok := core[f.Name]; !ok {
			out = append(out, f)
		}
	}
	return out
}

// Rules renders one line per constraint, suitable for a prompt.
func (s Schema) Rules() []string {
	var out []string
	for _, f := range s.Fields {
		out = appendRules(out, "", f)
	}
	return out
}

func appendRules(out []string, parent string, f Field) []string {
	path := joinPath(parent, f.Name)
	out = append(out, fmt.Sprintf("- %q: %s", path, describeField(f)))
	switch f.Kind {
	case KindObject:
		for _, sub := range f.Fields {
			out = appendRules(out, path, sub)
		}
	case KindArray:
		if f.Items != nil && f.Items.Kind == KindObject {
			for _, sub := range f.Items.Fields {
				out = appendRules(out, path+"[]", sub)
			}
		}
	}
	return out
}

func describeField(f Field) string {
	var parts []string
	if f.Required {
		parts = append(parts, "required")
	} else {
		parts = append(parts, "optional")
	}
	switch f.Kind {
	case KindString:
		if f.NonEmpty {
			parts = append(parts, "non-empty string")
		} else {
			parts = append(parts, "string")
		}
	case KindInteger:
		switch {
		case f.Min != nil && f.Max != nil:
			parts = append(parts, fmt.Sprintf("integer between %d and %d", *f.Min, *f.Max))
		case f.Min != nil:
			parts = append(parts, fmt.Sprintf("integer >= %d", *f.Min))
		default:
			parts = append(parts, "integer")
		}
	case KindObject:
		parts = append(parts, "object")
	case KindArray:
		elem := "strings"
		if f.Items != nil && f.Items.Kind == KindObject {
			elem = "objects"
		}
		parts = append(parts, cardinality(f)+" "+elem)
	}
	line := strings.Join(parts, " ")
	if f.Hint != "" {
		line += " (" + f.Hint + ")"
	}
	return line
}

func cardinality(f Field) string {
	switch {
	case f.MaxItems > 0 && f.MinItems == f.MaxItems:
		return fmt.Sprintf("array of exactly %d", f.MinItems)
	case f.MaxItems > 0:
		return fmt.Sprintf("array of %d to %d", f.MinItems, f.MaxItems)
	case f.MinItems > 0:
		return fmt.Sprintf("array of at least %d", f.MinItems)
	default:
		return "array of"
	}
}
