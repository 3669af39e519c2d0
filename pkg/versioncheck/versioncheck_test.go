package versioncheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name      string
		installed string
		required  string
		current   string
		want      Decision
		wantErr   bool
	}{
		{
			name:      "below-required",
			installed: "2.0.0",
			required:  "2.1.0",
			current:   "2.3.0",
			want:      DecisionUpdateRequired,
		},
		{
			name:      "between-required-and-current",
			installed: "2.2.0",
			required:  "2.1.0",
			current:   "2.3.0",
			want:      DecisionUpdateAvailable,
		},
		{
			name:      "equal-to-current",
			installed: "2.3.0",
			required:  "2.1.0",
			current:   "2.3.0",
			want:      DecisionNone,
		},
		{
			name:      "numeric-not-lexical",
			installed: "2.10.0",
			required:  "2.9.0",
			current:   "2.9.5",
			want:      DecisionNone,
		},
		{
			name:      "short-segments",
			installed: "3.1",
			required:  "3.1.0",
			current:   "3.2",
			want:      DecisionUpdateAvailable,
		},
		{
			name:      "missing-required",
			installed: "1.0.0",
			required:  "",
			current:   "2.0.0",
			want:      DecisionIgnore,
		},
		{
			name:      "missing-current",
			installed: "1.0.0",
			required:  "2.0.0",
			current:   "",
			want:      DecisionIgnore,
		},
		{
			name:      "malformed-server-value",
			installed: "1.0.0",
			required:  "not-a-version",
			current:   "2.0.0",
			want:      DecisionIgnore,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compare(tt.installed, tt.required, tt.current)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse(t *testing.T) {
	v, err := Parse("2.10.0")
	assert.NoError(t, err)
	assert.Equal(t, "2.10.0", v.String())

	_, err = Parse("two")
	assert.Error(t, err)
}
