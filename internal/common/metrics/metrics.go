package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PurchaseAttempts counts purchase submissions by terminal result.
	PurchaseAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fcpro_purchase_attempts_total",
		Help: "Purchase attempts by result (success, rejected, failed).",
	}, []string{"result"})

	// PreconditionRejections counts gate failures by reason code.
	PreconditionRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fcpro_precondition_rejections_total",
		Help: "Purchase precondition failures by error code.",
	}, []string{"code"})

	// OperatorRelays counts deduplicated error relays to the operator.
	OperatorRelays = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fcpro_operator_relays_total",
		Help: "Distinct error reports forwarded to the operator identity.",
	})
)
