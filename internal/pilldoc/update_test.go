package pilldoc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUpdater serves one listing page and records update calls.
type fakeUpdater struct {
	records []Record
	patches []struct {
		id   string
		body map[string]interface{}
	}
}

func (f *fakeUpdater) Accounts(ctx context.Context, call Call, params Params) (*AccountsPage, error) {
	page, _ := toInt(params["page"])
	if page > 1 {
		return &AccountsPage{TotalCount: len(f.records), TotalPages: 1, NowPage: page}, nil
	}
	return &AccountsPage{Items: f.records, TotalCount: len(f.records), TotalPages: 1, NowPage: 1}, nil
}

func (f *fakeUpdater) UpdateAccount(ctx context.Context, call Call, id string, body map[string]interface{}, contentType string) (map[string]interface{}, error) {
	f.patches = append(f.patches, struct {
		id   string
		body map[string]interface{}
	}{id, body})
	return map[string]interface{}{"updated": true}, nil
}

func seoulGangnam() []Record {
	return []Record{
		{"id": "u-1", "약국명": "서울약국", "bizNO": "111-11-11111"},
		{"id": "u-2", "약국명": "강남약국", "bizNO": "222-22-22222"},
	}
}

func TestUpdateBySearch(t *testing.T) {
	changes := map[string]interface{}{"isAdDisplay": 0}

	t.Run("unique match patches", func(t *testing.T) {
		fake := &fakeUpdater{records: seoulGangnam()}
		result, err := UpdateBySearch(context.Background(), fake, Call{},
			UpdateRequest{PharmName: "서울약국", Changes: changes}, nil, nil, nil)
		require.NoError(t, err)
		require.Len(t, fake.patches, 1)
		assert.Equal(t, "u-1", fake.patches[0].id)
		assert.Equal(t, changes, fake.patches[0].body)
		matched := result["matched"].(map[string]interface{})
		assert.Equal(t, "u-1", matched["id"])
		assert.Equal(t, 1, matched["matchCount"])
	})

	t.Run("ambiguous match writes nothing", func(t *testing.T) {
		fake := &fakeUpdater{records: seoulGangnam()}
		_, err := UpdateBySearch(context.Background(), fake, Call{},
			UpdateRequest{PharmName: "약국", Changes: changes}, nil, nil, nil)
		require.Error(t, err)
		assert.Equal(t, KindAmbiguous, KindOf(err))
		assert.Empty(t, fake.patches)
	})

	t.Run("matchIndex disambiguates", func(t *testing.T) {
		fake := &fakeUpdater{records: seoulGangnam()}
		_, err := UpdateBySearch(context.Background(), fake, Call{},
			UpdateRequest{PharmName: "약국", Changes: changes, Index: 0, HasIndex: true},
			nil, nil, nil)
		require.NoError(t, err)
		require.Len(t, fake.patches, 1)
		assert.Equal(t, "u-1", fake.patches[0].id)
	})

	t.Run("bizNo search matches exactly", func(t *testing.T) {
		fake := &fakeUpdater{records: seoulGangnam()}
		_, err := UpdateBySearch(context.Background(), fake, Call{},
			UpdateRequest{BizNo: "222-22-22222", Changes: changes}, nil, nil, nil)
		require.NoError(t, err)
		require.Len(t, fake.patches, 1)
		assert.Equal(t, "u-2", fake.patches[0].id)
	})

	t.Run("no match writes nothing", func(t *testing.T) {
		fake := &fakeUpdater{records: seoulGangnam()}
		_, err := UpdateBySearch(context.Background(), fake, Call{},
			UpdateRequest{PharmName: "없는약국", Changes: changes}, nil, nil, nil)
		require.Error(t, err)
		assert.Equal(t, KindNotFound, KindOf(err))
		assert.Empty(t, fake.patches)
	})

	t.Run("empty changes rejected before any remote call", func(t *testing.T) {
		fake := &fakeUpdater{records: seoulGangnam()}
		_, err := UpdateBySearch(context.Background(), fake, Call{},
			UpdateRequest{PharmName: "서울약국"}, nil, nil, nil)
		require.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))
		assert.Empty(t, fake.patches)
	})

	t.Run("missing search terms rejected", func(t *testing.T) {
		fake := &fakeUpdater{}
		_, err := UpdateBySearch(context.Background(), fake, Call{},
			UpdateRequest{Changes: changes}, nil, nil, nil)
		require.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("dry run reports the match without writing", func(t *testing.T) {
		fake := &fakeUpdater{records: seoulGangnam()}
		result, err := UpdateBySearch(context.Background(), fake, Call{},
			UpdateRequest{PharmName: "서울약국", Changes: changes, DryRun: true},
			nil, nil, nil)
		require.NoError(t, err)
		assert.Empty(t, fake.patches)
		assert.Equal(t, true, result["dryRun"])
		matched := result["matched"].(map[string]interface{})
		assert.Equal(t, "u-1", matched["id"])
	})
}
