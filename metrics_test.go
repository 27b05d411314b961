package auth_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	auth "github.com/goliatone/go-authsvc"
)

func TestMetrics_ObserveFlow(t *testing.T) {
	m := auth.NewMetrics(prometheus.NewRegistry())

	m.ObserveFlow(auth.FlowSignin, auth.OutcomeSuccess)
	m.ObserveFlow(auth.FlowSignin, auth.OutcomeSuccess)
	m.ObserveFlow(auth.FlowSignup, auth.OutcomeRejected)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FlowsTotal.WithLabelValues(auth.FlowSignin, auth.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FlowsTotal.WithLabelValues(auth.FlowSignup, auth.OutcomeRejected)))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *auth.Metrics
	assert.NotPanics(t, func() {
		m.ObserveFlow(auth.FlowSignout, auth.OutcomeSuccess)
	})
}
