package metrics

import (
	"fmt"
	"strings"
)

// DecodeError reports a screenshot that could not be decoded. It is fatal to
// the metrics that consume pixels (pixel, color) and aborts the comparison.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode screenshot %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// MissingDataError reports that a metric was invoked directly without the
// structural data it requires. The runner's availability pre-check converts
// this condition into a silent skip instead.
type MissingDataError struct {
	Metric Kind
	Side   string // "reference", "implementation", or "both"
	What   string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("%s metric: no %s on %s side", e.Metric, e.What, e.Side)
}

// UnavailableMetricsError reports explicitly requested metric kinds that have
// no implementation. This is a configuration problem and aborts the whole
// comparison.
type UnavailableMetricsError struct {
	Names []string
}

func (e *UnavailableMetricsError) Error() string {
	return fmt.Sprintf("metrics not available: %s", strings.Join(e.Names, ", "))
}
