package recommendation

// Document is a validated sport recommendation.
//
// JSON Schema (v3, the widest version):
// {
//   "sport": "string",
//   "score": "integer (0-100)",
//   "reason": "string",
//   "explanation": "string",
//   "benefits": ["string" x5],
//   "precautions": ["string" x4],
//   "exercises": [
//     {"name", "description", "duration", "repetitions", "videoUrl"} x3
//   ],
//   "alternatives": [
//     {"sport", "score", "reason", "benefits" (3-5), "precautions" (2-4)} x2-3
//   ],
//   "trainingPlan": {
//     "duration": "string",
//     "goal": "string",
//     "weeks": [
//       {
//         "week": "integer >= 1",
//         "focus": "string",
//         "sessions": [
//           {"day": "1-7", "title", "duration", "exercises": ["string"], "notes"?} x3-4
//         ],
//         "milestone"?: "string"
//       } x2-4
//     ],
//     "equipment": ["string"],
//     "progressionTips": ["string" x3-5]
//   }
// }
type Document struct {
	Sport        string        `json:"sport"`
	Score        int           `json:"score"`
	Reason       string        `json:"reason"`
	Explanation  string        `json:"explanation"`
	Benefits     []string      `json:"benefits"`
	Precautions  []string      `json:"precautions"`
	Exercises    []Exercise    `json:"exercises"`
	Alternatives []Alternative `json:"alternatives,omitempty"`
	TrainingPlan *TrainingPlan `json:"trainingPlan,omitempty"`
}

type Exercise struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
	Repetitions string `json:"repetitions"`
	VideoURL    string `json:"videoUrl"`
}

type Alternative struct {
	Sport       string   `json:"sport"`
	Score       int      `json:"score"`
	Reason      string   `json:"reason"`
	Benefits    []string `json:"benefits"`
	Precautions []string `json:"precautions"`
}

type TrainingPlan struct {
	Duration        string   `json:"duration"`
	Goal            string   `json:"goal"`
	Weeks           []Week   `json:"weeks"`
	Equipment       []string `json:"equipment"`
	ProgressionTips []string `json:"progressionTips"`
}

type Week struct {
	Week      int       `json:"week"`
	Focus     string    `json:"focus"`
	Sessions  []Session `json:"sessions"`
	Milestone string    `json:"milestone,omitempty"`
}

type Session struct {
	Day       int      `json:"day"`
	Title     string   `json:"title"`
	Duration  string   `json:"duration"`
	Exercises []string `json:"exercises"`
	Notes     string   `json:"notes,omitempty"`
}
