// Package prompt renders the instruction text sent to the completion backend.
// Every function here is pure: the same profile and schema always produce the
// same bytes.
package prompt

import (
	"embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"sport-backend/internal/llm"
	"sport-backend/internal/profile"
	"sport-backend/internal/recommendation"
)

//go:embed templates/*
var templates embed.FS

const (
	notSpecified  = "not specified"
	noneSpecified = "none specified"
	none          = "none"
	noHealthIssue = "no particular health issues"
)

func mustTemplate(name string) string {
	b, err := templates.ReadFile("templates/" + name)
	if err != nil {
		panic(fmt.Sprintf("prompt template %s: %v", name, err))
	}
	return string(b)
}

var (
	recommendationTemplate = mustTemplate("recommendation.txt")
	planTemplate           = mustTemplate("plan.txt")
	systemTemplate         = mustTemplate("system.txt")
	safetyTemplate         = mustTemplate("safety.txt")
)

// Example returns the embedded example document for a schema version.
func Example(version string) (string, bool) {
	b, err := templates.ReadFile("templates/example_" + version + ".json")
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(b)), true
}

// SystemMessage returns the system instruction for a request in language.
func SystemMessage(language string) string {
	return llm.WithLanguageDirective(strings.TrimSpace(systemTemplate), language)
}

// Build renders the recommendation prompt for p under schema.
func Build(p *profile.Profile, schema recommendation.Schema) string {
	if p == nil {
		p = &profile.Profile{}
	}
	replacer := strings.NewReplacer(append(profilePairs(p),
		"{{SCHEMA_VERSION}}", schema.Version,
		"{{RULES}}", strings.Join(schema.Rules(), "\n"),
		"{{ESCALATION}}", escalation(schema),
		"{{EXAMPLE}}", example(schema),
	)...)
	return replacer.Replace(recommendationTemplate)
}

// BuildPlan renders the standalone training plan prompt for sport.
func BuildPlan(p *profile.Profile, sport string) string {
	if p == nil {
		p = &profile.Profile{}
	}
	schema := recommendation.Plan
	replacer := strings.NewReplacer(append(profilePairs(p),
		"{{SPORT}}", orDefault(sport, "the requested sport"),
		"{{SCHEMA_VERSION}}", schema.Version,
		"{{RULES}}", strings.Join(schema.Rules(), "\n"),
		"{{EXAMPLE}}", example(schema),
	)...)
	return replacer.Replace(planTemplate)
}

func profilePairs(p *profile.Profile) []string {
	health := strings.Join(p.HealthConcerns(), ", ")
	if health == "" {
		health = noHealthIssue
	}
	return []string{
		"{{AGE}}", number(p.Age, notSpecified),
		"{{GENDER}}", orDefault(p.Gender, notSpecified),
		"{{HEIGHT}}", number(p.Height, notSpecified),
		"{{WEIGHT}}", number(p.Weight, notSpecified),
		"{{BMI}}", strconv.FormatFloat(p.BMI(), 'f', 1, 64),
		"{{LEG_LENGTH}}", number(p.LegLength, notSpecified),
		"{{ARM_LENGTH}}", number(p.ArmLength, notSpecified),
		"{{WAIST}}", number(p.WaistSize, notSpecified),
		"{{FITNESS_LEVEL}}", orDefault(p.FitnessLevel, notSpecified),
		"{{ACTIVITY_LEVEL}}", orDefault(p.ActivityLevel, notSpecified),
		"{{EXERCISE_FREQUENCY}}", orDefault(p.ExerciseFrequency, notSpecified),
		"{{HEALTH}}", health,
		"{{SAFETY}}", safety(p),
		"{{MAIN_GOAL}}", orDefault(p.MainGoal, "general fitness"),
		"{{SPECIFIC_GOALS}}", p.SpecificGoals.Join(noneSpecified),
		"{{MOTIVATIONS}}", p.Motivations.Join(noneSpecified),
		"{{FEARS}}", p.Fears.Join(none),
		"{{AVAILABLE_TIME}}", orDefault(p.AvailableTime, notSpecified),
		"{{PREFERRED_TIME}}", orDefault(p.PreferredTime, notSpecified),
		"{{AVAILABLE_DAYS}}", number(p.AvailableDays, notSpecified),
		"{{WORK_TYPE}}", orDefault(p.WorkType, notSpecified),
		"{{SLEEP_QUALITY}}", orDefault(p.SleepQuality, notSpecified),
		"{{STRESS_LEVEL}}", orDefault(p.StressLevel, notSpecified),
		"{{LIFESTYLE}}", orDefault(p.Lifestyle, notSpecified),
		"{{EXERCISE_PREFERENCES}}", p.ExercisePreferences.Join(noneSpecified),
		"{{EXERCISE_AVERSIONS}}", p.ExerciseAversions.Join(none),
		"{{LOCATION}}", orDefault(p.LocationPreference, notSpecified),
		"{{TEAM}}", orDefault(p.TeamPreference, notSpecified),
		"{{EQUIPMENT}}", p.EquipmentAvailable.Join(none),
		"{{MUSIC}}", orDefault(p.MusicPreference, notSpecified),
		"{{SOCIAL}}", orDefault(p.SocialPreference, notSpecified),
		"{{PRACTISED_SPORTS}}", p.PractisedSports.Join(none),
		"{{FAVORITE_ACTIVITY}}", orDefault(p.FavoriteActivity, notSpecified),
		"{{PAST_EXPERIENCE}}", orDefault(p.PastExperienceWithFitness, notSpecified),
		"{{SUCCESS_FACTORS}}", p.SuccessFactors.Join(noneSpecified),
		"{{CHALLENGES}}", p.PrimaryChallenges.Join(none),
		"{{SUPPORT_SYSTEM}}", orDefault(p.SupportSystem, notSpecified),
		"{{EXTRA}}", extra(p),
		"{{LANGUAGE}}", p.Language(),
		"{{TONE}}", orDefault(p.PreferredTone, "encouraging"),
		"{{LEARNING_STYLE}}", orDefault(p.LearningStyle, notSpecified),
	}
}

func safety(p *profile.Profile) string {
	concerns := p.HealthConcerns()
	if len(concerns) == 0 {
		return ""
	}
	return strings.NewReplacer("{{HEALTH}}", strings.Join(concerns, ", ")).Replace(safetyTemplate)
}

// escalation spells out every field of the tiers added on top of v1, since
// models tend to drop them.
func escalation(schema recommendation.Schema) string {
	ext := schema.Extensions()
	if len(ext) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nMANDATORY SECTIONS:\n")
	for _, f := range ext {
		fmt.Fprintf(&b, "The %q section is REQUIRED. It must contain:\n", f.Name)
		for _, line := range subRules(schema, f.Name) {
			b.WriteString("  " + line + "\n")
		}
	}
	b.WriteString("Omitting any of these sections or fields makes the WHOLE response invalid.\n")
	return b.String()
}

func subRules(schema recommendation.Schema, name string) []string {
	var out []string
	for _, line := range schema.Rules() {
		if strings.HasPrefix(line, fmt.Sprintf("- %q", name)) ||
			strings.HasPrefix(line, "- \""+name+".") ||
			strings.HasPrefix(line, "- \""+name+"[]") {
			out = append(out, line)
		}
	}
	return out
}

func example(schema recommendation.Schema) string {
	if ex, ok := Example(schema.Version); ok {
		return ex
	}
	return "{}"
}

func extra(p *profile.Profile) string {
	keys := p.ExtraKeys()
	if len(keys) == 0 {
		return none
	}
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("- %s: %s", k, render(p.Extra[k])))
	}
	return strings.Join(lines, "\n")
}

func render(v any) string {
	switch t := v.(type) {
	case nil:
		return notSpecified
	case string:
		return orDefault(t, notSpecified)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

func number(v *float64, fallback string) string {
	if v == nil {
		return fallback
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v == "" {
		return fallback
	}
	return v
}
