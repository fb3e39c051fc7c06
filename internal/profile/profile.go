package profile

import (
	"encoding/json"
	"math"
	"reflect"
	"sort"
	"strings"
)

const (
	DefaultLanguage = "en"
	DefaultHeightCm = 170.0
	DefaultWeightKg = 70.0
)

// Profile is the free-form user record a recommendation is built from.
// Unknown keys are kept in Extra so callers can send fields this type does not model.
type Profile struct {
	// Physical metrics
	Age       *float64 `json:"age,omitempty" validate:"omitempty,gte=0,lte=120"`
	Gender    string   `json:"gender,omitempty"`
	Height    *float64 `json:"height,omitempty" validate:"omitempty,gte=100,lte=250"`
	Weight    *float64 `json:"weight,omitempty" validate:"omitempty,gte=30,lte=300"`
	LegLength *float64 `json:"legLength,omitempty" validate:"omitempty,gte=40,lte=150"`
	ArmLength *float64 `json:"armLength,omitempty" validate:"omitempty,gte=40,lte=120"`
	WaistSize *float64 `json:"waistSize,omitempty" validate:"omitempty,gte=40,lte=200"`

	// Fitness & health
	FitnessLevel      string     `json:"fitnessLevel,omitempty"`
	ActivityLevel     string     `json:"activityLevel,omitempty"`
	ExerciseFrequency string     `json:"exerciseFrequency,omitempty"`
	JointProblems     bool       `json:"jointProblems,omitempty"`
	KneeProblems      bool       `json:"kneeProblems,omitempty"`
	BackProblems      bool       `json:"backProblems,omitempty"`
	HeartProblems     bool       `json:"heartProblems,omitempty"`
	HealthConditions  StringList `json:"healthConditions,omitempty"`
	OtherHealthIssues string     `json:"otherHealthIssues,omitempty"`
	Injuries          string     `json:"injuries,omitempty"`
	Allergies         string     `json:"allergies,omitempty"`

	// Goals & motivation
	MainGoal      string     `json:"mainGoal,omitempty"`
	SpecificGoals StringList `json:"specificGoals,omitempty"`
	Motivations   StringList `json:"motivations,omitempty"`
	Fears         StringList `json:"fears,omitempty"`

	// Availability & lifestyle
	AvailableTime string   `json:"availableTime,omitempty"`
	PreferredTime string   `json:"preferredTime,omitempty"`
	AvailableDays *float64 `json:"availableDays,omitempty" validate:"omitempty,gte=0,lte=7"`
	WorkType      string   `json:"workType,omitempty"`
	SleepQuality  string   `json:"sleepQuality,omitempty"`
	StressLevel   string   `json:"stressLevel,omitempty"`
	Lifestyle     string   `json:"lifestyle,omitempty"`

	// Preferences
	ExercisePreferences StringList `json:"exercisePreferences,omitempty"`
	ExerciseAversions   StringList `json:"exerciseAversions,omitempty"`
	LocationPreference  string     `json:"locationPreference,omitempty"`
	TeamPreference      string     `json:"teamPreference,omitempty"`
	EquipmentAvailable  StringList `json:"equipmentAvailable,omitempty"`
	MusicPreference     string     `json:"musicPreference,omitempty"`
	SocialPreference    string     `json:"socialPreference,omitempty"`

	// Experience
	PractisedSports           StringList `json:"practisedSports,omitempty"`
	FavoriteActivity          string     `json:"favoriteActivity,omitempty"`
	PastExperienceWithFitness string     `json:"pastExperienceWithFitness,omitempty"`
	SuccessFactors            StringList `json:"successFactors,omitempty"`

	// Challenges & support
	PrimaryChallenges StringList `json:"primaryChallenges,omitempty"`
	SupportSystem     string     `json:"supportSystem,omitempty"`

	LanguageCode  string `json:"language,omitempty" validate:"max=16"`
	PreferredTone string `json:"preferredTone,omitempty"`
	LearningStyle string `json:"learningStyle,omitempty"`

	Extra map[string]any `json:"-"`
}

var knownKeys = jsonKeys(reflect.TypeOf(Profile{}))

func jsonKeys(t reflect.Type) map[string]struct{} {
	keys := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		name, _, _ := strings.Cut(tag, ",")
		if name == "" || name == "-" {
			continue
		}
		keys[name] = struct{}{}
	}
	return keys
}

// UnmarshalJSON decodes the modeled fields and keeps every other key in Extra.
func (p *Profile) UnmarshalJSON(data []byte) error {
	type plain Profile
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key := range knownKeys {
		delete(raw, key)
	}
	if len(raw) == 0 {
		raw = nil
	}
	*p = Profile(decoded)
	p.Extra = raw
	return nil
}

// Language returns the requested output language, defaulting to English.
func (p *Profile) Language() string {
	if p == nil {
		return DefaultLanguage
	}
	lang := strings.TrimSpace(p.LanguageCode)
	if lang == "" {
		return DefaultLanguage
	}
	return lang
}

// BMI computes weight_kg / height_m^2. Missing or non-positive measurements
// fall back to 170 cm and 70 kg.
func (p *Profile) BMI() float64 {
	height := DefaultHeightCm
	weight := DefaultWeightKg
	if p != nil {
		if v, ok := positive(p.Height); ok {
			height = v
		}
		if v, ok := positive(p.Weight); ok {
			weight = v
		}
	}
	meters := height / 100
	return weight / (meters * meters)
}

// HealthConcerns lists every reported health flag and free-text issue.
func (p *Profile) HealthConcerns() []string {
	if p == nil {
		return nil
	}
	var out []string
	if p.JointProblems {
		out = append(out, "joint problems")
	}
	if p.KneeProblems {
		out = append(out, "knee problems")
	}
	if p.BackProblems {
		out = append(out, "back problems")
	}
	if p.HeartProblems {
		out = append(out, "heart problems")
	}
	out = append(out, p.HealthConditions.Values()...)
	if v := strings.TrimSpace(p.OtherHealthIssues); v != "" {
		out = append(out, v)
	}
	if v := strings.TrimSpace(p.Injuries); v != "" {
		out = append(out, "injuries: "+v)
	}
	if v := strings.TrimSpace(p.Allergies); v != "" {
		out = append(out, "allergies: "+v)
	}
	return out
}

// ExtraKeys returns the unmodeled keys in sorted order.
func (p *Profile) ExtraKeys() []string {
	if p == nil || len(p.Extra) == 0 {
		return nil
	}
	keys := make([]string, 0, len(p.Extra))
	for k := range p.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func positive(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) || *v <= 0 {
		return 0, false
	}
	return *v, true
}
