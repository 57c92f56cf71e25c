package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegister_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestAnalysesTotal_ByOutcome(t *testing.T) {
	before := testutil.ToFloat64(AnalysesTotal.WithLabelValues("rejected"))
	AnalysesTotal.WithLabelValues("rejected").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(AnalysesTotal.WithLabelValues("rejected")))
}
