// Package certificate renders the policy document dispatched to the
// customer when a policy is issued.
package certificate

import (
	"bytes"
	"fmt"
	"text/template"

	policymodels "motorcover/internal/policy/models"
)

var policyTemplate = template.Must(template.New("policy").Parse(`MOTORCOVER INSURANCE CERTIFICATE
================================

Policy Number:    {{.Policy.ID}}
Policy Type:      {{.Policy.Type}}
Holder:           {{.HolderName}}

Coverage Amount:  {{printf "%.2f" .Policy.CoverageAmount}}
Annual Premium:   {{printf "%.2f" .Policy.PremiumAmount}}

Valid From:       {{.Policy.StartDate.Format "2 January 2006"}}
Valid Until:      {{.Policy.EndDate.Format "2 January 2006"}}
Renewal Due:      {{.Policy.RenewalReminderDate.Format "2 January 2006"}}

This certificate confirms that the vehicle identified by {{.Policy.VehicleID}}
is covered under the terms of the policy above. Keep this document with the
vehicle registration papers.
`))

type renderInput struct {
	Policy     *policymodels.Policy
	HolderName string
}

// Render produces the certificate for an issued policy.
func Render(policy *policymodels.Policy, holderName string) ([]byte, error) {
	var buf bytes.Buffer
	if err := policyTemplate.Execute(&buf, renderInput{Policy: policy, HolderName: holderName}); err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	return buf.Bytes(), nil
}
