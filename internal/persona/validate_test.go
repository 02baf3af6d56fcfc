package persona

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConformingDocument(t *testing.T) {
	out := Validate(validDocument(), DefaultFieldSpec())
	if diff := cmp.Diff(ValidationOutcome{Valid: true}, out); diff != "" {
		t.Errorf("unexpected outcome (-want +got):\n%s", diff)
	}
}

func TestValidateMissingTopLevelKey(t *testing.T) {
	spec := DefaultFieldSpec()

	for _, key := range spec.Required {
		t.Run(key, func(t *testing.T) {
			doc := validDocument()
			delete(doc, key)

			out := Validate(doc, spec)

			assert.False(t, out.Valid)
			assert.Equal(t, key, out.FailurePath)
			assert.Equal(t, reasonMissing, out.Reason)
		})
	}
}

func TestValidateFailFastOrder(t *testing.T) {
	doc := validDocument()
	delete(doc, "goals")
	delete(doc, "preferred_channels")
	// A nested problem must not be reported while a top-level key is missing.
	doc["demographics"] = "not an object"

	out := Validate(doc, DefaultFieldSpec())

	assert.Equal(t, "goals", out.FailurePath)
}

func TestValidateNested(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(doc map[string]any)
		wantPath string
		reason   string
	}{
		{
			name:     "demographics not an object",
			mutate:   func(doc map[string]any) { doc["demographics"] = []any{"35"} },
			wantPath: "demographics",
			reason:   reasonNotObject,
		},
		{
			name: "missing demographics child",
			mutate: func(doc map[string]any) {
				delete(doc["demographics"].(map[string]any), "gender")
			},
			wantPath: "demographics.gender",
			reason:   reasonMissing,
		},
		{
			name: "occupation under demographics missing title",
			mutate: func(doc map[string]any) {
				occ := doc["demographics"].(map[string]any)["occupation"].(map[string]any)
				delete(occ, "title")
			},
			wantPath: "demographics.occupation.title",
			reason:   reasonMissing,
		},
		{
			name: "location under demographics is a string",
			mutate: func(doc map[string]any) {
				doc["demographics"].(map[string]any)["location"] = "Denver"
			},
			wantPath: "demographics.location",
			reason:   reasonNotObject,
		},
		{
			name: "top-level occupation checked on its own",
			mutate: func(doc map[string]any) {
				doc["occupation"] = map[string]any{"title": "x"}
			},
			wantPath: "occupation.industry",
			reason:   reasonMissing,
		},
		{
			name: "technological proficiency missing tools",
			mutate: func(doc map[string]any) {
				delete(doc["technological_proficiency"].(map[string]any), "tools")
			},
			wantPath: "technological_proficiency.tools",
			reason:   reasonMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDocument()
			tt.mutate(doc)

			out := Validate(doc, DefaultFieldSpec())

			assert.False(t, out.Valid)
			assert.Equal(t, tt.wantPath, out.FailurePath)
			assert.Equal(t, tt.reason, out.Reason)
		})
	}
}

func TestValidateIsStructuralOnly(t *testing.T) {
	doc := validDocument()
	doc["goals"] = nil
	doc["demographics"].(map[string]any)["age"] = "thirty-five"

	assert.True(t, Validate(doc, DefaultFieldSpec()).Valid)
}

func TestFieldSpecLoading(t *testing.T) {
	t.Run("default when path empty", func(t *testing.T) {
		spec, err := LoadFieldSpec("")
		require.NoError(t, err)
		assert.Equal(t, "name", spec.Required[0])
		assert.Equal(t, []string{"city", "country"}, spec.ChildrenOf("location"))
	})

	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "spec.yaml")
		require.NoError(t, os.WriteFile(path, []byte("version: 2\nrequired: [title]\n"), 0o644))

		spec, err := LoadFieldSpec(path)
		require.NoError(t, err)
		assert.Equal(t, 2, spec.Version)
		assert.True(t, Validate(map[string]any{"title": "x"}, spec).Valid)
	})

	t.Run("rejects nested field without children", func(t *testing.T) {
		_, err := ParseFieldSpec([]byte("required: [a]\nnested:\n  - field: b\n    under: a\n"))
		assert.Error(t, err)
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := ParseFieldSpec([]byte("version: 1\n"))
		assert.Error(t, err)
	})
}

func TestFieldSpecDescribe(t *testing.T) {
	text := DefaultFieldSpec().Describe()

	assert.Contains(t, text, "Top-level keys: name, demographics")
	assert.Contains(t, text, `"demographics.occupation" is an object with keys: title, industry, years_of_experience.`)
}
