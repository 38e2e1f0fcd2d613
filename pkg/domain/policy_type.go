package domain

import dErrors "motorcover/pkg/domain-errors"

// PolicyType is the closed set of coverage products. It crosses the
// proposal and policy lifecycles, so it lives here rather than in either
// domain package.
type PolicyType string

const (
	PolicyTypeComprehensive PolicyType = "Comprehensive"
	PolicyTypeThirdParty    PolicyType = "ThirdParty"
	PolicyTypeFireAndTheft  PolicyType = "FireAndTheft"
)

var validPolicyTypes = map[PolicyType]bool{
	PolicyTypeComprehensive: true,
	PolicyTypeThirdParty:    true,
	PolicyTypeFireAndTheft:  true,
}

// ParsePolicyType validates a policy type string at a trust boundary.
func ParsePolicyType(s string) (PolicyType, error) {
	t := PolicyType(s)
	if !validPolicyTypes[t] {
		return "", dErrors.New(dErrors.CodeValidation, "unknown policy type: "+s)
	}
	return t, nil
}

// Valid reports whether the type is one of the closed set.
func (t PolicyType) Valid() bool { return validPolicyTypes[t] }
