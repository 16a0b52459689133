package pilldoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsAdd(t *testing.T) {
	acc := NewStats()
	acc.Add(Record{
		"createdAt": "2024-01-10T00:00:00Z", "검색용주소": "서울 강남구",
		"erpCode": float64(3), "isAdDisplay": float64(0),
	})
	acc.Add(Record{
		"createdAt": "2024-01-20T00:00:00Z", "검색용주소": "서울 마포구",
		"erpCode": float64(3), "isAdDisplay": float64(1),
	})
	acc.Add(Record{
		"createdAt": "2024-03-01T00:00:00Z", "검색용주소": "부산 해운대구",
		"광고차단": "차단",
	})
	acc.Add(Record{}) // nothing usable

	assert.Equal(t, 4, acc.Total)
	assert.Equal(t, map[string]int{"2024-01": 2, "2024-03": 1}, acc.Monthly)
	assert.Equal(t, map[string]int{"서울": 2, "부산": 1}, acc.Region)
	assert.Equal(t, map[string]int{"3": 2, "null": 2}, acc.ERP)
	assert.Equal(t, 2, acc.AdBlocked)
	assert.Equal(t, 1, acc.AdNotBlocked)
	assert.Equal(t, 1, acc.AdUnknown)
}

func TestStatsToMap(t *testing.T) {
	acc := NewStats()
	acc.Add(Record{"createdAt": "2024-02-05", "erpCode": float64(10)})
	acc.Add(Record{"createdAt": "2024-01-15", "erpCode": float64(2)})
	acc.Add(Record{"createdAt": "2024-03-20"})

	out := acc.ToMap(Summary{PagesFetched: 2, TotalCount: 3, Truncated: false})

	t.Run("monthly sorted ascending", func(t *testing.T) {
		monthly := out["monthly"].([]keyed)
		require.Len(t, monthly, 3)
		assert.Equal(t, "2024-01", monthly[0].Key)
		assert.Equal(t, "2024-02", monthly[1].Key)
		assert.Equal(t, "2024-03", monthly[2].Key)
	})

	t.Run("erp codes numeric order with null last", func(t *testing.T) {
		erp := out["erpCode"].([]keyed)
		require.Len(t, erp, 3)
		assert.Equal(t, "2", erp[0].Key)
		assert.Equal(t, "10", erp[1].Key)
		assert.Equal(t, "null", erp[2].Key)
	})

	t.Run("pagination outcome included", func(t *testing.T) {
		assert.Equal(t, 2, out["pagesFetched"])
		assert.Equal(t, 3, out["totalCountReported"])
		assert.Equal(t, false, out["truncated"])
	})

	t.Run("period spans min and max createdAt", func(t *testing.T) {
		period := out["period"].(map[string]interface{})
		assert.Equal(t, "2024-01-15", period["from"])
		assert.Equal(t, "2024-03-20", period["to"])
	})

	t.Run("unreported totals omitted", func(t *testing.T) {
		out := NewStats().ToMap(Summary{TotalCount: -1})
		_, has := out["totalCountReported"]
		assert.False(t, has)
		_, has = out["period"]
		assert.False(t, has)
	})
}

func TestSortedERP(t *testing.T) {
	got := sortedERP(map[string]int{
		"null": 1, "BIZ": 2, "7": 3, "12": 4,
	})
	keys := make([]string, 0, len(got))
	for _, k := range got {
		keys = append(keys, k.Key)
	}
	assert.Equal(t, []string{"7", "12", "BIZ", "null"}, keys)
}
