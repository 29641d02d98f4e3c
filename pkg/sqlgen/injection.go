package sqlgen

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionCheckResult describes a bound value that matched a SQL injection
// pattern.
type InjectionCheckResult struct {
	ParamName   string // placeholder the value was bound to
	Fingerprint string // libinjection fingerprint of the detected pattern
}

// CheckBoundValues scans a bound statement's string values for injection
// patterns. Values travel through the driver's placeholder mechanism and are
// never interpolated, so this is defense in depth for values that end up in
// LIKE patterns or get echoed into reports. Non-string values cannot carry
// injection and are skipped.
func CheckBoundValues(bound *BoundStatement) []InjectionCheckResult {
	var results []InjectionCheckResult
	for i, value := range bound.Values {
		strValue, ok := value.(string)
		if !ok {
			continue
		}
		if isSQLi, fingerprint := libinjection.IsSQLi(strValue); isSQLi {
			results = append(results, InjectionCheckResult{
				ParamName:   bound.ParamNames[i],
				Fingerprint: string(fingerprint),
			})
		}
	}
	return results
}
