package handler

import (
	"motorcover/internal/claim/models"
	"motorcover/internal/claim/service"
)

// ClaimResponse is a claim with its policy summary.
type ClaimResponse struct {
	Claim  *models.Claim  `json:"claim"`
	Policy *PolicySummary `json:"policy,omitempty"`
}

// PolicySummary is the policy slice embedded in claim payloads.
type PolicySummary struct {
	ID             string  `json:"id"`
	Type           string  `json:"type"`
	Status         string  `json:"status"`
	CoverageAmount float64 `json:"coverage_amount"`
}

// FromOne maps a single listed claim onto the response payload.
func FromOne(listed *service.Listed) ClaimResponse {
	resp := ClaimResponse{Claim: listed.Claim}
	if listed.Policy != nil {
		resp.Policy = &PolicySummary{
			ID:             listed.Policy.ID.String(),
			Type:           listed.Policy.Type,
			Status:         listed.Policy.Status,
			CoverageAmount: listed.Policy.CoverageAmount,
		}
	}
	return resp
}

// FromListed maps a claim listing onto response payloads.
func FromListed(listed []*service.Listed) []ClaimResponse {
	out := make([]ClaimResponse, 0, len(listed))
	for _, l := range listed {
		out = append(out, FromOne(l))
	}
	return out
}
