package pilldoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nameRecords(names ...string) []Record {
	out := make([]Record, 0, len(names))
	for i, name := range names {
		out = append(out, Record{"id": string(rune('a' + i)), "약국명": name})
	}
	return out
}

func TestSelectionMatching(t *testing.T) {
	records := nameRecords("서울약국", "강남약국", "정보센터")

	t.Run("substring match collects in listing order", func(t *testing.T) {
		sel, err := DeriveSelection("약국", "", false, 0, false, false)
		require.NoError(t, err)
		got := sel.Collect(records)
		require.Len(t, got, 2)
		assert.Equal(t, "서울약국", got[0].PharmName())
		assert.Equal(t, "강남약국", got[1].PharmName())
	})

	t.Run("index picks within matches", func(t *testing.T) {
		sel, err := DeriveSelection("약국", "", false, 1, true, false)
		require.NoError(t, err)
		rec, err := sel.Choose(sel.Collect(records))
		require.NoError(t, err)
		assert.Equal(t, "강남약국", rec.PharmName())
	})

	t.Run("out of range index is a validation error", func(t *testing.T) {
		sel, err := DeriveSelection("약국", "", false, 5, true, false)
		require.NoError(t, err)
		_, err = sel.Choose(sel.Collect(records))
		require.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))
		assert.Contains(t, err.Error(), "0-1")
	})

	t.Run("no match is not found", func(t *testing.T) {
		sel, err := DeriveSelection("한의원", "", false, 0, false, false)
		require.NoError(t, err)
		_, err = sel.Choose(sel.Collect(records))
		require.Error(t, err)
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("exact match requires the full name", func(t *testing.T) {
		sel, err := DeriveSelection("약국", "", true, 0, false, false)
		require.NoError(t, err)
		assert.Empty(t, sel.Collect(records))

		sel, err = DeriveSelection("서울약국", "", true, 0, false, false)
		require.NoError(t, err)
		assert.Len(t, sel.Collect(records), 1)
	})

	t.Run("multiple matches default to first without uniqueness", func(t *testing.T) {
		sel, err := DeriveSelection("약국", "", false, 0, false, false)
		require.NoError(t, err)
		rec, err := sel.Choose(sel.Collect(records))
		require.NoError(t, err)
		assert.Equal(t, "서울약국", rec.PharmName())
	})

	t.Run("multiple matches with uniqueness are ambiguous", func(t *testing.T) {
		sel, err := DeriveSelection("약국", "", false, 0, false, true)
		require.NoError(t, err)
		_, err = sel.Choose(sel.Collect(records))
		require.Error(t, err)
		assert.Equal(t, KindAmbiguous, KindOf(err))
		assert.Contains(t, err.Error(), "서울약국")
	})
}

func TestSelectionBizNo(t *testing.T) {
	records := []Record{
		{"id": "a", "약국명": "서울약국", "bizNO": "123-45-67890"},
		{"id": "b", "약국명": "강남약국", "bizNO": "999-88-77777"},
	}

	t.Run("matches on normalized number", func(t *testing.T) {
		sel, err := DeriveSelection("", "1234567890", false, 0, false, false)
		require.NoError(t, err)
		got := sel.Collect(records)
		require.Len(t, got, 1)
		assert.Equal(t, "서울약국", got[0].PharmName())
	})

	t.Run("bizNo takes precedence over pharmName", func(t *testing.T) {
		sel, err := DeriveSelection("강남약국", "123-45-67890", false, 0, false, false)
		require.NoError(t, err)
		assert.Equal(t, "bizNo", sel.Field)
		assert.Equal(t, "1234567890", sel.Value)
	})

	t.Run("neither field is a validation error", func(t *testing.T) {
		_, err := DeriveSelection("", "", false, 0, false, false)
		require.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))
	})
}
