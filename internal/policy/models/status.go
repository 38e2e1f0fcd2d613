package models

import dErrors "motorcover/pkg/domain-errors"

// PolicyStatus is the policy state machine's closed value set.
type PolicyStatus string

const (
	PolicyStatusActive     PolicyStatus = "Active"
	PolicyStatusExpired    PolicyStatus = "Expired"
	PolicyStatusTerminated PolicyStatus = "Terminated"
)

// policyTransitions is the single source of transition legality.
// Active and Expired flip through time passage and renewal; Terminated is
// the administrative terminal state.
var policyTransitions = map[PolicyStatus][]PolicyStatus{
	PolicyStatusActive:  {PolicyStatusExpired, PolicyStatusTerminated},
	PolicyStatusExpired: {PolicyStatusActive, PolicyStatusTerminated},
}

// CanTransitionTo reports whether the transition table allows moving to next.
func (s PolicyStatus) CanTransitionTo(next PolicyStatus) bool {
	for _, allowed := range policyTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions exist from this status.
func (s PolicyStatus) Terminal() bool {
	return len(policyTransitions[s]) == 0
}

func ParsePolicyStatus(s string) (PolicyStatus, error) {
	status := PolicyStatus(s)
	switch status {
	case PolicyStatusActive, PolicyStatusExpired, PolicyStatusTerminated:
		return status, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "unknown policy status: "+s)
}
