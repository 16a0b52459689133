package pilldoc

import (
	"context"
	"log/slog"
)

// detailClient is the slice of Client the aggregator needs.
type detailClient interface {
	User(ctx context.Context, call Call, id string) (map[string]interface{}, error)
	Pharm(ctx context.Context, call Call, bizNo string) (map[string]interface{}, error)
	AdpsRejects(ctx context.Context, call Call, bizNo string) (map[string]interface{}, error)
}

// SubResult is one sub-fetch of a composite detail. Exactly one of Value and
// Absent is meaningful: Absent explains why the section is missing (a fetch
// failure or an unresolvable prerequisite) without failing the composite.
type SubResult struct {
	Value  map[string]interface{} `json:"value,omitempty"`
	Absent string                 `json:"absent,omitempty"`
}

// ToMap renders the sub-result for a tool payload.
func (s SubResult) ToMap() map[string]interface{} {
	if s.Absent != "" {
		return map[string]interface{}{"absent": s.Absent}
	}
	return map[string]interface{}{"value": s.Value}
}

// Composite is the best-effort aggregate view of one account: the listing
// record itself plus its user, pharmacy, and campaign-rejection details.
type Composite struct {
	Account     Record
	User        SubResult
	Pharm       SubResult
	AdpsRejects SubResult
}

// ToMap renders the composite for a tool payload.
func (c Composite) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"account":     map[string]interface{}(c.Account),
		"user":        c.User.ToMap(),
		"pharm":       c.Pharm.ToMap(),
		"adpsRejects": c.AdpsRejects.ToMap(),
	}
}

// AggregateDetail fetches the detail sections for a matched account. Each
// section fails independently: a dead pharmacy endpoint still leaves the
// user detail intact. Only a nil account is a hard error.
func AggregateDetail(ctx context.Context, client detailClient, call Call, account Record, logger *slog.Logger) (Composite, error) {
	if account == nil {
		return Composite{}, ValidationErrorf("no account record to aggregate")
	}
	if logger == nil {
		logger = slog.Default()
	}
	comp := Composite{Account: account}

	if id := account.ID(); id == "" {
		comp.User = SubResult{Absent: "account record carries no id"}
	} else if user, err := client.User(ctx, call, id); err != nil {
		logger.Debug("user detail unavailable", "id", id, "error", err)
		comp.User = SubResult{Absent: AsError(err).Error()}
	} else {
		comp.User = SubResult{Value: user}
	}

	bizNo := account.BizNo()
	if bizNo == "" {
		comp.Pharm = SubResult{Absent: "account record carries no business number"}
		comp.AdpsRejects = SubResult{Absent: "account record carries no business number"}
		return comp, nil
	}

	if pharm, err := client.Pharm(ctx, call, bizNo); err != nil {
		logger.Debug("pharm detail unavailable", "biz_no", bizNo, "error", err)
		comp.Pharm = SubResult{Absent: AsError(err).Error()}
	} else {
		comp.Pharm = SubResult{Value: pharm}
	}

	if rejects, err := client.AdpsRejects(ctx, call, bizNo); err != nil {
		logger.Debug("campaign rejects unavailable", "biz_no", bizNo, "error", err)
		comp.AdpsRejects = SubResult{Absent: AsError(err).Error()}
	} else {
		comp.AdpsRejects = SubResult{Value: rejects}
	}

	return comp, nil
}
