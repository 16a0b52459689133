package pharmacy

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hjsh200219/pilldoc-user-mcp/internal/pilldoc"
	"github.com/hjsh200219/pilldoc-user-mcp/internal/tools"
	"github.com/hjsh200219/pilldoc-user-mcp/internal/tools/testutil"
)

func resultMap(t *testing.T, res *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	text := res.Content[0].(mcp.TextContent).Text
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	return out
}

func TestPharmTool(t *testing.T) {
	reg, ok := tools.GetTool("pilldoc_pharm")
	require.True(t, ok)

	t.Run("fetches by business number", func(t *testing.T) {
		client := &testutil.MockClient{
			PharmFunc: func(ctx context.Context, call pilldoc.Call, bizNo string) (map[string]interface{}, error) {
				assert.Equal(t, "123-45-67890", bizNo)
				return map[string]interface{}{"약국명": "서울약국"}, nil
			},
		}
		ctx := testutil.NewContext(client, nil)
		res, err := reg.Handler(ctx, map[string]interface{}{"token": "tok", "bizNo": "123-45-67890"})
		require.NoError(t, err)
		require.False(t, res.IsError)
		assert.Equal(t, "서울약국", resultMap(t, res)["약국명"])
	})

	t.Run("bizNo required", func(t *testing.T) {
		ctx := testutil.NewContext(&testutil.MockClient{}, nil)
		res, err := reg.Handler(ctx, map[string]interface{}{"token": "tok"})
		require.NoError(t, err)
		require.True(t, res.IsError)
	})
}

func TestFindPharmTool(t *testing.T) {
	reg, ok := tools.GetTool("pilldoc_find_pharm")
	require.True(t, ok)

	account := pilldoc.Record{"id": "u-1", "약국명": "서울약국", "bizNO": "111-11-11111"}

	newClient := func() *testutil.MockClient {
		return &testutil.MockClient{
			AccountsFunc: func(ctx context.Context, call pilldoc.Call, params pilldoc.Params) (*pilldoc.AccountsPage, error) {
				return &pilldoc.AccountsPage{
					Items: []pilldoc.Record{account}, TotalCount: 1, TotalPages: 1, NowPage: 1,
				}, nil
			},
			UserFunc: func(ctx context.Context, call pilldoc.Call, id string) (map[string]interface{}, error) {
				return map[string]interface{}{"displayName": "홍길동"}, nil
			},
			PharmFunc: func(ctx context.Context, call pilldoc.Call, bizNo string) (map[string]interface{}, error) {
				assert.Equal(t, "1111111111", bizNo)
				return map[string]interface{}{"약국명": "서울약국"}, nil
			},
			AdpsRejectsFunc: func(ctx context.Context, call pilldoc.Call, bizNo string) (map[string]interface{}, error) {
				return map[string]interface{}{"data": []interface{}{}}, nil
			},
		}
	}

	t.Run("composite view with all sections", func(t *testing.T) {
		ctx := testutil.NewContext(newClient(), nil)
		res, err := reg.Handler(ctx, map[string]interface{}{"token": "tok", "pharmName": "서울약국"})
		require.NoError(t, err)
		require.False(t, res.IsError)
		out := resultMap(t, res)

		acct := out["account"].(map[string]interface{})
		assert.Equal(t, "서울약국", acct["약국명"])
		user := out["user"].(map[string]interface{})
		assert.NotNil(t, user["value"])
		pharm := out["pharm"].(map[string]interface{})
		assert.NotNil(t, pharm["value"])
		assert.Equal(t, float64(1), out["matchCount"])
	})

	t.Run("failed section reported absent", func(t *testing.T) {
		client := newClient()
		client.PharmFunc = func(ctx context.Context, call pilldoc.Call, bizNo string) (map[string]interface{}, error) {
			return nil, pilldoc.RemoteErrorf("/v1/pilldoc/pharm/"+bizNo, "pharm endpoint down")
		}
		ctx := testutil.NewContext(client, nil)
		res, err := reg.Handler(ctx, map[string]interface{}{"token": "tok", "pharmName": "서울약국"})
		require.NoError(t, err)
		require.False(t, res.IsError)
		out := resultMap(t, res)
		pharm := out["pharm"].(map[string]interface{})
		assert.Contains(t, pharm["absent"], "pharm endpoint down")
		user := out["user"].(map[string]interface{})
		assert.NotNil(t, user["value"])
	})

	t.Run("search terms required", func(t *testing.T) {
		ctx := testutil.NewContext(newClient(), nil)
		res, err := reg.Handler(ctx, map[string]interface{}{"token": "tok"})
		require.NoError(t, err)
		require.True(t, res.IsError)
		text := res.Content[0].(mcp.TextContent).Text
		assert.Contains(t, text, "VALIDATION_ERROR")
	})
}
