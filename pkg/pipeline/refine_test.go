package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xhad/buddy/pkg/pipeline"
)

func TestUnionKeywords(t *testing.T) {
	tests := []struct {
		name  string
		lists [][]string
		want  []string
	}{
		{"empty", nil, nil},
		{"original first", [][]string{{"b", "a"}, {"c"}}, []string{"b", "a", "c"}},
		{"case duplicates collapse", [][]string{{"Study Tips"}, {"study tips", "STUDY TIPS", "Exams"}}, []string{"Study Tips", "Exams"}},
		{"trims and drops blanks", [][]string{{" gpa ", ""}, {"  ", "GPA"}}, []string{"gpa"}},
		{"superset of original", [][]string{{"x", "y"}, {"y", "x"}}, []string{"x", "y"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pipeline.UnionKeywords(tt.lists...))
		})
	}
}

func TestHistory(t *testing.T) {
	h := pipeline.NewHistory(0)
	for _, q := range []string{"1", "2", "3", "4", "5", "6", "7"} {
		h.Add(q, "a"+q)
	}

	entries := h.Entries()
	assert.Len(t, entries, pipeline.DefaultHistorySize)
	assert.Equal(t, "3", entries[0].Question)
	assert.Equal(t, "a7", entries[4].Answer)
}
