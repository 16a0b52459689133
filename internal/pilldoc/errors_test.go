package pilldoc

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	t.Run("401 and 403 classify as auth", func(t *testing.T) {
		assert.Equal(t, KindAuth, remoteError("/x", 401, "", "no").Kind)
		assert.Equal(t, KindAuth, remoteError("/x", 403, "", "no").Kind)
		assert.Equal(t, KindRemote, remoteError("/x", 500, "", "no").Kind)
	})

	t.Run("body preview truncated", func(t *testing.T) {
		huge := strings.Repeat("x", maxBodyPreview*2)
		e := remoteError("/x", 500, huge, "big")
		assert.Len(t, e.Body, maxBodyPreview)
	})

	t.Run("untyped errors map to remote", func(t *testing.T) {
		assert.Equal(t, KindRemote, KindOf(errors.New("plain")))
		assert.Equal(t, KindRemote, AsError(errors.New("plain")).Kind)
	})

	t.Run("KindOf unwraps", func(t *testing.T) {
		wrapped := fmt.Errorf("outer: %w", NotFoundf("inner"))
		assert.Equal(t, KindNotFound, KindOf(wrapped))
	})

	t.Run("WithStep copies", func(t *testing.T) {
		base := ValidationErrorf("bad input")
		stepped := base.WithStep("accounts")
		assert.Equal(t, "accounts", stepped.Step)
		assert.Empty(t, base.Step)
	})

	t.Run("ToMap omits empty fields", func(t *testing.T) {
		m := ValidationErrorf("bad").ToMap()
		assert.Equal(t, "VALIDATION_ERROR", m["kind"])
		_, has := m["status"]
		assert.False(t, has)

		m = remoteError("/x", 500, "body", "msg").ToMap()
		assert.Equal(t, 500, m["status"])
		assert.Equal(t, "/x", m["endpoint"])
	})
}
