package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: `  {"a":1}  `, want: `{"a":1}`},
		{name: "json tag", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "bare fence", in: "```\n{\"a\":1}\n```\n", want: `{"a":1}`},
		{name: "missing closing fence", in: "```json\n{\"a\":1}", want: `{"a":1}`},
		{name: "single line", in: "```json{\"a\":1}```", want: `{"a":1}`},
		{name: "prose first is untouched", in: "Here:\n```json\n{}\n```", want: "Here:\n```json\n{}\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripFences(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, StripFences(got), "StripFences must be idempotent")
		})
	}
}
