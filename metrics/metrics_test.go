package metrics_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/sagarc03/sitehost"
	"github.com/sagarc03/sitehost/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "ok"},
		{"not found", fmt.Errorf("view: %w", sitehost.ErrNotFound), "not_found"},
		{"conflict", sitehost.ErrConflict, "conflict"},
		{"policy forbidden", &sitehost.PolicyError{Kind: sitehost.ErrForbiddenContent, Name: "shell.php"}, "forbidden"},
		{"policy not allowed", &sitehost.PolicyError{Kind: sitehost.ErrNotAllowed, Name: "a.exe2"}, "not_allowed"},
		{"too large", sitehost.ErrTooLarge, "too_large"},
		{"invalid name", sitehost.ErrInvalidName, "invalid"},
		{"timeout", fmt.Errorf("%w: %w", sitehost.ErrTimeout, context.DeadlineExceeded), "timeout"},
		{"canceled", context.Canceled, "canceled"},
		{"unknown", errors.New("disk on fire"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, metrics.Result(tt.err))
		})
	}
}

func counterValue(t *testing.T, operation, result string) float64 {
	t.Helper()
	var m dto.Metric
	err := metrics.OperationsTotal.WithLabelValues(operation, result).Write(&m)
	require.NoError(t, err)
	return m.GetCounter().GetValue()
}

func TestObserve(t *testing.T) {
	before := counterValue(t, "test_op", "conflict")

	metrics.Observe("test_op", sitehost.ErrConflict, time.Now())

	assert.Equal(t, before+1, counterValue(t, "test_op", "conflict"))
}
