package params

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/funcinfra/pipelinectl/internal/errkind"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    map[string]any
		wantErr string
	}{
		{
			name:  "mixed values",
			input: "a=1;b=true;c=false",
			want:  map[string]any{"a": "1", "b": true, "c": false},
		},
		{
			name:  "trailing separator",
			input: "a=1;",
			want:  map[string]any{"a": "1"},
		},
		{
			name:  "empty segments",
			input: ";;a=1;;",
			want:  map[string]any{"a": "1"},
		},
		{
			name:  "empty string",
			input: "",
			want:  map[string]any{},
		},
		{
			name:  "boolean coercion is case-sensitive",
			input: "a=True;b=FALSE",
			want:  map[string]any{"a": "True", "b": "FALSE"},
		},
		{
			name:  "empty value",
			input: "a=",
			want:  map[string]any{"a": ""},
		},
		{
			name:    "missing equals",
			input:   "a=1;oops",
			wantErr: `invalid parameter "oops": expected exactly one "="`,
		},
		{
			name:    "too many equals",
			input:   "a=b=c",
			wantErr: `invalid parameter "a=b=c": expected exactly one "="`,
		},
		{
			name:    "empty key",
			input:   "=1",
			wantErr: `invalid parameter "=1": expected exactly one "="`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.input)
			if tc.wantErr != "" {
				assert.EqualError(t, err, tc.wantErr)
				assert.True(t, errors.Is(err, errkind.ErrValidation))
				assert.Nil(t, got)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseARM(t *testing.T) {
	got, err := ParseARM("siteName=func-canary;alwaysOn=true")
	assert.NoError(t, err)
	assert.Equal(t, map[string]any{
		"siteName": map[string]any{"value": "func-canary"},
		"alwaysOn": map[string]any{"value": true},
	}, got)

	_, err = ParseARM("broken")
	var perr *ParseError
	assert.True(t, errors.As(err, &perr))
	assert.Equal(t, "broken", perr.Segment)
}
