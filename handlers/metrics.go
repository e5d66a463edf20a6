package handlers

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts what the processor sees. A nil *Metrics records nothing.
type Metrics struct {
	TxScanned       prometheus.Counter
	OpsDetected     *prometheus.CounterVec
	NoMatch         *prometheus.CounterVec
	DuplicateBlocks prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TxScanned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "krc20",
			Name:      "transactions_scanned_total",
			Help:      "Non-coinbase transactions inspected for an envelope.",
		}),
		OpsDetected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "krc20",
			Name:      "operations_detected_total",
			Help:      "KRC-20 operations decoded, by operation.",
		}, []string{"op"}),
		NoMatch: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "krc20",
			Name:      "no_match_total",
			Help:      "Transactions without a KRC-20 operation, by reason.",
		}, []string{"reason"}),
		DuplicateBlocks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "krc20",
			Name:      "duplicate_blocks_total",
			Help:      "Blocks skipped because they were already processed.",
		}),
	}
}

func (m *Metrics) observe(extraction Extraction) {
	if m == nil {
		return
	}
	m.TxScanned.Inc()
	if extraction.Op != nil {
		m.OpsDetected.WithLabelValues(extraction.Op.Op.String()).Inc()
		return
	}
	m.NoMatch.WithLabelValues(NoMatchReason(extraction.Err)).Inc()
}

func (m *Metrics) duplicate() {
	if m == nil {
		return
	}
	m.DuplicateBlocks.Inc()
}

// NoMatchReason maps an Inspect error to a short label.
func NoMatchReason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrNoInput):
		return "no_input"
	case errors.Is(err, ErrNoNamespaceHeader):
		return "no_namespace_header"
	case errors.Is(err, ErrNoCarrier):
		return "no_carrier"
	case errors.Is(err, ErrCarrierNotPush):
		return "carrier_not_push"
	case errors.Is(err, ErrNoProtocolHeader):
		return "no_protocol_header"
	case errors.Is(err, ErrShortEnvelope):
		return "short_envelope"
	case errors.Is(err, ErrBadPayloadOpcode):
		return "bad_payload_opcode"
	case errors.Is(err, ErrBadPayload):
		return "bad_payload"
	}
	return "unknown"
}
