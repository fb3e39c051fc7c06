package extract

import "fmt"

// Category summarizes why extraction gave up.
type Category string

const (
	CategoryBackendUnavailable Category = "backend_unavailable"
	CategoryMalformedOutput    Category = "malformed_output"
)

// Error is returned when the attempt budget is exhausted. It never carries
// raw model text.
type Error struct {
	Category           Category
	Attempts           int
	TransportFailures  int
	ParseFailures      int
	ValidationFailures int
	Last               error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extraction failed (%s) after %d attempts: transport=%d parse=%d validation=%d",
		e.Category, e.Attempts, e.TransportFailures, e.ParseFailures, e.ValidationFailures)
}

func (e *Error) Unwrap() error { return e.Last }

func exhaustionError(history []Outcome) *Error {
	e := &Error{Attempts: len(history)}
	for _, out := range history {
		switch out.Kind {
		case KindTransport:
			e.TransportFailures++
		case KindParse:
			e.ParseFailures++
		case KindValidation:
			e.ValidationFailures++
		}
		if out.Err != nil {
			e.Last = out.Err
		}
	}
	e.Category = CategoryMalformedOutput
	if e.Attempts > 0 && e.TransportFailures == e.Attempts {
		e.Category = CategoryBackendUnavailable
	}
	return e
}
