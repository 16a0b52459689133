package stats

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

func sampleRecords() []pilldoc.Record {
	return []pilldoc.Record{
		{"createdAt": "2024-01-05", "검색용주소": "서울 강남구", "erpCode": float64(3), "isAdDisplay": float64(0)},
		{"createdAt": "2024-01-15", "검색용주소": "서울 마포구", "erpCode": float64(3), "isAdDisplay": float64(1)},
		{"createdAt": "2024-02-20", "검색용주소": "부산 해운대구", "erpCode": float64(7), "isAdDisplay": float64(1)},
	}
}

func pagedClient(records []pilldoc.Record) *testutil.MockClient {
	return &testutil.MockClient{
		AccountsFunc: func(ctx context.Context, call pilldoc.Call, params pilldoc.Params) (*pilldoc.AccountsPage, error) {
			return &pilldoc.AccountsPage{
				Items: records, TotalCount: len(records), TotalPages: 1, NowPage: 1,
			}, nil
		},
	}
}

func TestAccountsStatsTool(t *testing.T) {
	reg, ok := tools.GetTool("pilldoc_accounts_stats")
	require.True(t, ok)

	t.Run("groups the scanned listing", func(t *testing.T) {
		ctx := testutil.NewContext(pagedClient(sampleRecords()), nil)
		res, err := reg.Handler(ctx, map[string]interface{}{"token": "tok"})
		require.NoError(t, err)
		require.False(t, res.IsError)
		out := resultMap(t, res)

		assert.Equal(t, float64(3), out["total"])
		monthly := out["monthly"].([]interface{})
		require.Len(t, monthly, 2)
		first := monthly[0].(map[string]interface{})
		assert.Equal(t, "2024-01", first["key"])
		assert.Equal(t, float64(2), first["count"])

		ad := out["adBlocked"].(map[string]interface{})
		assert.Equal(t, float64(1), ad["blocked"])
		assert.Equal(t, float64(2), ad["notBlocked"])
		assert.Equal(t, float64(3), out["totalCountReported"])
	})

	t.Run("filter errors propagate", func(t *testing.T) {
		ctx := testutil.NewContext(pagedClient(nil), nil)
		res, err := reg.Handler(ctx, map[string]interface{}{
			"token": "tok", "adBlocked": true, "isAdDisplay": float64(0),
		})
		require.NoError(t, err)
		require.True(t, res.IsError)
		text := res.Content[0].(mcp.TextContent).Text
		assert.Contains(t, text, "CONFIG_ERROR")
	})
}

func TestSummaryTool(t *testing.T) {
	reg, ok := tools.GetTool("pilldoc_summary")
	require.True(t, ok)

	t.Run("condensed snapshot", func(t *testing.T) {
		var sent pilldoc.Params
		client := &testutil.MockClient{
			AccountsFunc: func(ctx context.Context, call pilldoc.Call, params pilldoc.Params) (*pilldoc.AccountsPage, error) {
				sent = params
				return &pilldoc.AccountsPage{
					Items: sampleRecords(), TotalCount: 3, TotalPages: 1, NowPage: 1,
				}, nil
			},
		}
		ctx := testutil.NewContext(client, nil)
		res, err := reg.Handler(ctx, map[string]interface{}{"token": "tok", "top": float64(1)})
		require.NoError(t, err)
		require.False(t, res.IsError)
		out := resultMap(t, res)

		assert.Equal(t, float64(3), out["total"])
		regions := out["topRegions"].([]interface{})
		require.Len(t, regions, 1)
		top := regions[0].(map[string]interface{})
		assert.Equal(t, "서울", top["key"])
		assert.Equal(t, float64(2), top["count"])

		// presentation arg must not leak into the remote filter body
		_, has := sent["top"]
		assert.False(t, has)
	})
}
