package pilldoc

import (
	"fmt"
	"strings"
)

// Record is one row from the accounts listing. The remote schema mixes
// English and Korean keys and changes without notice, so the row is kept as
// returned and read through accessors that know the observed key variants.
// Records are never mutated locally.
type Record map[string]interface{}

// str reads a key as a trimmed string, tolerating non-string values.
func (r Record) str(key string) string {
	val, ok := r[key]
	if !ok || val == nil {
		return ""
	}
	s := strings.TrimSpace(fmt.Sprintf("%v", val))
	if s == "None" || s == "<nil>" {
		return ""
	}
	return s
}

// firstOf returns the first non-empty value among the given keys.
func (r Record) firstOf(keys ...string) string {
	for _, k := range keys {
		if s := r.str(k); s != "" {
			return s
		}
	}
	return ""
}

// ID returns the account id used for user fetches and updates.
func (r Record) ID() string {
	return r.firstOf("id", "Id", "userId", "UserId", "accountId", "AccountId")
}

// PharmName returns the pharmacy display name.
func (r Record) PharmName() string {
	return r.str("약국명")
}

// OwnerName returns the pharmacist/owner display name.
func (r Record) OwnerName() string {
	return r.str("displayName")
}

// BizNo returns the normalized business registration number, or "" when the
// record carries none.
func (r Record) BizNo() string {
	raw := r.firstOf("bizNO", "bizNo", "사업자등록번호", "bizno")
	if raw == "" {
		return ""
	}
	return NormalizeBizNo(raw)
}

// Region returns the leading administrative region token of the address.
func (r Record) Region() string {
	addr := r.firstOf("검색용주소", "주소")
	if addr == "" {
		return ""
	}
	fields := strings.Fields(addr)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// ERPCode returns the ERP vendor code, with "null" standing in for a missing
// value so grouped counts keep a stable key.
func (r Record) ERPCode() string {
	val, ok := r["erpCode"]
	if !ok || val == nil {
		return "null"
	}
	return fmt.Sprintf("%v", val)
}

// CreatedAt returns the raw creation timestamp string.
func (r Record) CreatedAt() string {
	return r.str("createdAt")
}

// CreatedMonth returns the creation month as YYYY-MM, or "" when the record
// carries no usable timestamp. Derived by prefix so locale formatting cannot
// drift between runs.
func (r Record) CreatedMonth() string {
	s := r.CreatedAt()
	if len(s) < 7 {
		return ""
	}
	return s[:7]
}

// ad-block label fallbacks for records predating the isAdDisplay field.
// isAdDisplay==0 means the ad is suppressed (blocked).
var (
	adBlockedLabels = map[string]bool{
		"차단": true, "미표시": true, "y": true, "yes": true,
		"true": true, "blocked": true, "block": true,
	}
	adDisplayedLabels = map[string]bool{
		"표시": true, "표시중": true, "n": true, "no": true,
		"false": true, "display": true,
	}
)

// AdBlocked reports whether the record's ad display is suppressed. known is
// false when neither the flag nor the label is interpretable.
func (r Record) AdBlocked() (blocked, known bool) {
	if val, ok := r["isAdDisplay"]; ok && val != nil {
		if n, err := toInt(val); err == nil {
			return n == 0, true
		}
	}
	label := strings.ToLower(r.str("광고차단"))
	if label == "" {
		return false, false
	}
	if adBlockedLabels[label] {
		return true, true
	}
	if adDisplayedLabels[label] {
		return false, true
	}
	return false, false
}
