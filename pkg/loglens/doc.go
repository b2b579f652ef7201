// Package loglens provides an adaptive log analyzer that decodes noisy
// input, scores metric rates against self-tuning thresholds, and learns
// baselines and patterns across batches.
//
// Quick start:
//
//	l, err := loglens.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	rep, _ := l.Analyze([]byte("error: connection refused\nGET /health 200\n"))
//	fmt.Println(rep.Severity, rep.Metrics["error_rate"])
//
// The Lens instance is stateful: every Analyze call updates thresholds,
// baselines, and learned patterns, so later batches are judged against what
// earlier batches taught it. Create once, reuse across batches. Safe for
// concurrent use.
package loglens
