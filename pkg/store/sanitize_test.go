package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "texas tech", escapeLike("texas tech"))
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\dir`, escapeLike(`c:\dir`))
}

func TestSanitizeMetadata(t *testing.T) {
	in := map[string]interface{}{
		"chunk_text": "ok\xffdone",
		"chunk_id":   3,
		"file_name":  "guide.pdf",
	}
	out := sanitizeMetadata(in)
	assert.Equal(t, "okdone", out["chunk_text"])
	assert.Equal(t, 3, out["chunk_id"])
	assert.Equal(t, "guide.pdf", out["file_name"])
	assert.Equal(t, "ok\xffdone", in["chunk_text"])
}
