package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus counters for lifecycle transitions.
type Metrics struct {
	ProposalsSubmitted prometheus.Counter
	ProposalsApproved  prometheus.Counter
	ProposalsRejected  prometheus.Counter
	PoliciesIssued     prometheus.Counter
	PoliciesRenewed    prometheus.Counter
	ClaimsFiled        prometheus.Counter
	ClaimsApproved     prometheus.Counter
	ClaimsRejected     prometheus.Counter
	NotificationErrors prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ProposalsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "motorcover_proposals_submitted_total",
			Help: "Total number of coverage proposals submitted",
		}),
		ProposalsApproved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "motorcover_proposals_approved_total",
			Help: "Total number of proposals approved by an underwriter",
		}),
		ProposalsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "motorcover_proposals_rejected_total",
			Help: "Total number of proposals rejected by an underwriter",
		}),
		PoliciesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "motorcover_policies_issued_total",
			Help: "Total number of policies issued from approved proposals",
		}),
		PoliciesRenewed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "motorcover_policies_renewed_total",
			Help: "Total number of policy renewals",
		}),
		ClaimsFiled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "motorcover_claims_filed_total",
			Help: "Total number of claims filed",
		}),
		ClaimsApproved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "motorcover_claims_approved_total",
			Help: "Total number of claims approved",
		}),
		ClaimsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "motorcover_claims_rejected_total",
			Help: "Total number of claims rejected",
		}),
		NotificationErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "motorcover_notification_errors_total",
			Help: "Total number of failed notification dispatch attempts",
		}),
	}
}
