package model

// Metric identifies one of the closed set of rate metrics the analyzer
// tracks. Keeping the set enumerated (rather than free-form strings) keeps
// threshold bounds and baseline invariants checkable per metric.
type Metric string

const (
	ErrorRate      Metric = "error_rate"
	WarningRate    Metric = "warning_rate"
	FailedRate     Metric = "failed_rate"
	TimeoutRate    Metric = "timeout_rate"
	SSHRate        Metric = "ssh_rate"
	AuthRate       Metric = "auth_rate"
	ConnectionRate Metric = "connection_rate"
	DeniedRate     Metric = "denied_rate"
	AcceptedRate   Metric = "accepted_rate"
)

// Metrics returns every tracked metric in stable order.
func Metrics() []Metric {
	return []Metric{
		ErrorRate,
		WarningRate,
		FailedRate,
		TimeoutRate,
		SSHRate,
		AuthRate,
		ConnectionRate,
		DeniedRate,
		AcceptedRate,
	}
}

// Snapshot maps metrics to observed rates in [0,1] for one batch.
// A snapshot is produced by the counting step, then consumed read-only by
// the optimizer and the learning engine.
type Snapshot map[Metric]float64

// Clone returns an independent copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	for m, v := range s {
		out[m] = v
	}
	return out
}

// Severity is the adaptive severity classification of a batch or metric.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)
