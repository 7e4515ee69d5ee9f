package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStepsShapes(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantTitles []string
	}{
		{"bare list", `[{"title":"A","content":"a"},{"title":"B","content":"b"}]`, []string{"A", "B"}},
		{"steps wrapper", `{"steps":[{"title":"S"}]}`, []string{"S"}},
		{"data wrapper", `{"data":[{"title":"D","content":"B"}]}`, []string{"D"}},
		{"steps preferred over data", `{"steps":[{"title":"S"}],"data":[{"title":"D"}]}`, []string{"S"}},
		{"null steps falls back to data", `{"steps":null,"data":[{"title":"D"}]}`, []string{"D"}},
		{"empty steps list is still a list", `{"steps":[],"data":[{"title":"D"}]}`, []string{}},
		{"empty list", `[]`, []string{}},
		{"surrounding whitespace", "\n  [{\"title\":\"W\"}]\n", []string{"W"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drafts, err := DecodeSteps(tt.input)
			require.NoError(t, err)
			titles := make([]string, len(drafts))
			for i, d := range drafts {
				titles[i] = d.Title
			}
			assert.Equal(t, tt.wantTitles, titles)
		})
	}
}

func TestDecodeStepsRejectsNonLists(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"object without list", `{"title":"A"}`},
		{"steps is a string", `{"steps":"nope","data":[{"title":"D"}]}`},
		{"data is an object", `{"data":{"title":"D"}}`},
		{"number", `42`},
		{"string", `"steps"`},
		{"null", `null`},
		{"list of strings", `["a","b"]`},
		{"list with null", `[{"title":"A"},null]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSteps(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidFormat), "got %v", err)
		})
	}
}

func TestDecodeStepsMalformedJSON(t *testing.T) {
	_, err := DecodeSteps("not json{")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidFormat))
	assert.Contains(t, err.Error(), "failed to parse model output")
}

func TestDecodeStepsKeepsFieldsVerbatim(t *testing.T) {
	drafts, err := DecodeSteps(`[
		{"title":"Init repo","content":"Create a git repo","command":"git init","step_order":9},
		{"title":"No command","content":"Just read"},
		{"title":"Null command","command":null}
	]`)
	require.NoError(t, err)
	require.Len(t, drafts, 3)

	require.NotNil(t, drafts[0].Command)
	assert.Equal(t, "git init", *drafts[0].Command)
	assert.Nil(t, drafts[1].Command)
	assert.Nil(t, drafts[2].Command)
	assert.Equal(t, "", drafts[2].Content)
}

func TestDecodeStepsPassesNonStringFieldsThrough(t *testing.T) {
	drafts, err := DecodeSteps(`[
		{"title":1,"content":{"text":"nested"},"command":["git add .", "git commit"]},
		{"title":"Count","content":true,"command":42},
		{"title":null,"content":"Body"}
	]`)
	require.NoError(t, err)
	require.Len(t, drafts, 3)

	assert.Equal(t, "1", drafts[0].Title)
	assert.Equal(t, `{"text":"nested"}`, drafts[0].Content)
	require.NotNil(t, drafts[0].Command)
	assert.Equal(t, `["git add .","git commit"]`, *drafts[0].Command)

	assert.Equal(t, "true", drafts[1].Content)
	require.NotNil(t, drafts[1].Command)
	assert.Equal(t, "42", *drafts[1].Command)

	assert.Equal(t, "", drafts[2].Title)
	assert.Equal(t, "Body", drafts[2].Content)
	assert.Nil(t, drafts[2].Command)
}

func TestTruthy(t *testing.T) {
	for _, v := range []string{"null", "false", `""`, "0", "0.0", "-0", ""} {
		assert.False(t, truthy([]byte(v)), v)
	}
	for _, v := range []string{"true", "1", `"x"`, "[]", "{}"} {
		assert.True(t, truthy([]byte(v)), v)
	}
}
