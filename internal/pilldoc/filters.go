package pilldoc

import (
	"fmt"
	"strconv"
	"strings"
)

// Params is the normalized filter map sent to the accounts listing endpoint.
type Params map[string]interface{}

// Clone returns a shallow copy; the paginator mutates page/pageSize per fetch.
func (p Params) Clone() Params {
	out := make(Params, len(p)+2)
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Boundary enumerations. The remote API is the final authority; these exist
// for advisory validation and documentation only.
var (
	// ERPKinds are the known pharmacy-management software vendor codes.
	ERPKinds = []string{"IT3000", "BIZPHARM", "UPHARM", "EPHARM", "WITHPHARM", "ETC"}

	// PharmChains are the known pharmacy chain names.
	PharmChains = []string{
		"온누리", "메디팜", "옵티마", "위드팜", "휴베이스",
		"리드팜", "가까운약국", "참약사", "기타",
	}

	// SalesChannelMin and SalesChannelMax bound the sales channel codes.
	SalesChannelMin = 0
	SalesChannelMax = 5
)

// filter keys the normalizer recognizes. Unknown keys pass through unchanged
// so new remote parameters work without a release.
const (
	keyPage              = "page"
	keyPageSize          = "pageSize"
	keySortBy            = "sortBy"
	keyERPKind           = "erpKind"
	keyIsAdDisplay       = "isAdDisplay"
	keyAdBlocked         = "adBlocked"
	keySalesChannel      = "salesChannel"
	keyPharmChain        = "pharmChain"
	keyCurrentSearchType = "currentSearchType"
	keySearchKeyword     = "searchKeyword"
	keyAccountType       = "accountType"
	keyBizNo             = "bizNo"
)

// NormalizeBizNo canonicalizes a business registration number to digits only.
// Idempotent: normalizing an already-normalized value is a no-op. A value
// with no digits at all is returned unchanged.
func NormalizeBizNo(val string) string {
	var b strings.Builder
	for _, ch := range val {
		if ch >= '0' && ch <= '9' {
			b.WriteByte(byte(ch))
		}
	}
	if b.Len() == 0 {
		return val
	}
	return b.String()
}

// NormalizeFilters translates tool-level convenience filters into the exact
// parameter map the accounts endpoint expects. It is pure: same input, same
// output. Enum violations are advisory and returned as warnings; the only
// hard failure is supplying both forms of a mutually exclusive pair.
func NormalizeFilters(raw map[string]interface{}) (Params, []string, error) {
	params := make(Params, len(raw))
	var warnings []string

	_, hasAdBlocked := raw[keyAdBlocked]
	_, hasIsAdDisplay := raw[keyIsAdDisplay]
	if hasAdBlocked && hasIsAdDisplay {
		return nil, nil, ConfigErrorf("adBlocked and isAdDisplay are mutually exclusive; supply only one")
	}

	for key, val := range raw {
		if val == nil {
			continue
		}
		switch key {
		case keyPage, keyPageSize:
			n, err := toInt(val)
			if err != nil {
				return nil, nil, ValidationErrorf("%s must be an integer: %v", key, err)
			}
			params[key] = n
		case "page_no": // alias for page
			if _, ok := raw[keyPage]; !ok {
				n, err := toInt(val)
				if err != nil {
					return nil, nil, ValidationErrorf("page_no must be an integer: %v", err)
				}
				params[keyPage] = n
			}
		case "page_count": // alias for pageSize
			if _, ok := raw[keyPageSize]; !ok {
				n, err := toInt(val)
				if err != nil {
					return nil, nil, ValidationErrorf("page_count must be an integer: %v", err)
				}
				params[keyPageSize] = n
			}
		case keyIsAdDisplay:
			n, err := toInt(val)
			if err != nil {
				return nil, nil, ValidationErrorf("isAdDisplay must be 0 or 1: %v", err)
			}
			if n != 0 && n != 1 {
				return nil, nil, ValidationErrorf("isAdDisplay must be 0 or 1, got %d", n)
			}
			params[keyIsAdDisplay] = n
		case keyAdBlocked:
			blocked, ok := val.(bool)
			if !ok {
				return nil, nil, ValidationErrorf("adBlocked must be a boolean")
			}
			// adBlocked=true means the ad is suppressed: isAdDisplay=0.
			if blocked {
				params[keyIsAdDisplay] = 0
			} else {
				params[keyIsAdDisplay] = 1
			}
		case keyERPKind:
			vals := toStringSlice(val)
			warnings = append(warnings, enumWarnings(keyERPKind, vals, ERPKinds)...)
			params[keyERPKind] = vals
		case keyPharmChain:
			vals := toStringSlice(val)
			warnings = append(warnings, enumWarnings(keyPharmChain, vals, PharmChains)...)
			params[keyPharmChain] = vals
		case keySalesChannel:
			// caller order preserved, no deduplication
			vals := toAnySlice(val)
			for _, v := range vals {
				if n, err := toInt(v); err == nil && (n < SalesChannelMin || n > SalesChannelMax) {
					warnings = append(warnings, fmt.Sprintf("salesChannel value %d outside documented range %d-%d", n, SalesChannelMin, SalesChannelMax))
				}
			}
			params[keySalesChannel] = vals
		case keyCurrentSearchType:
			params[keyCurrentSearchType] = toAnySlice(val)
		case keyBizNo:
			s, ok := val.(string)
			if !ok {
				return nil, nil, ValidationErrorf("bizNo must be a string")
			}
			params[keyBizNo] = NormalizeBizNo(s)
		case keySortBy, keySearchKeyword, keyAccountType:
			params[key] = fmt.Sprintf("%v", val)
		default:
			params[key] = val
		}
	}

	return params, warnings, nil
}

func enumWarnings(key string, vals, allowed []string) []string {
	var out []string
	for _, v := range vals {
		found := false
		for _, a := range allowed {
			if v == a {
				found = true
				break
			}
		}
		if !found {
			out = append(out, fmt.Sprintf("%s value %q not in documented set %v", key, v, allowed))
		}
	}
	return out
}

func toInt(val interface{}) (int, error) {
	switch v := val.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(v))
	default:
		return 0, fmt.Errorf("unsupported type %T", val)
	}
}

func toStringSlice(val interface{}) []string {
	switch v := val.(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	case string:
		return []string{v}
	default:
		return []string{fmt.Sprintf("%v", v)}
	}
}

func toAnySlice(val interface{}) []interface{} {
	switch v := val.(type) {
	case []interface{}:
		return v
	case []string:
		out := make([]interface{}, 0, len(v))
		for _, item := range v {
			out = append(out, item)
		}
		return out
	default:
		return []interface{}{v}
	}
}
