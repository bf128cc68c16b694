package logfields

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestHelperKeyNames verifies helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  string
		attr slog.Attr
	}{
		{"BuildID", KeyBuildID, "b1", BuildID("b1")},
		{"Asset", KeyAsset, "blog/post.md", Asset("blog/post.md")},
		{"MediaType", KeyMediaType, "text/html", MediaType("text/html")},
		{"Processor", KeyProcessor, "markdown", Processor("markdown")},
		{"Kit", KeyKit, "base", Kit("base")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.key, c.attr.Key)
			assert.Equal(t, c.val, c.attr.Value.String())
		})
	}
}

func TestNumericHelpers(t *testing.T) {
	assert.Equal(t, int64(3), Pass(3).Value.Int64())
	assert.Equal(t, int64(7), Pending(7).Value.Int64())
	assert.InDelta(t, 1.5, DurationMS(1.5).Value.Float64(), 0.0001)
}

func TestError(t *testing.T) {
	assert.Equal(t, "", Error(nil).Value.String())
	assert.Equal(t, "boom", Error(errors.New("boom")).Value.String())
	assert.Equal(t, KeyError, Error(nil).Key)
}
