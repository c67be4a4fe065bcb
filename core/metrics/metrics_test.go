package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T) *prometheus.Registry {
	t.Helper()
	reg := prometheus.NewRegistry()
	require.NoError(t, registerAll(reg))
	return reg
}

func registerAll(reg *prometheus.Registry) error {
	for _, c := range Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func TestRouterServesMetrics(t *testing.T) {
	reg := newRegistry(t)
	ObserveJobRun("deadline", 20*time.Millisecond, nil)
	IncScenarioStep("add_task", "completed")

	srv := httptest.NewServer(NewRouter(reg, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `todobot_job_runs_total{status="ok",task="deadline"}`)
	assert.Contains(t, string(body), `todobot_scenario_steps_total{kind="add_task",result="completed"}`)
}

func TestRouterHealth(t *testing.T) {
	reg := newRegistry(t)
	var healthy atomic.Bool
	healthy.Store(true)
	srv := httptest.NewServer(NewRouter(reg, func(context.Context) error {
		if healthy.Load() {
			return nil
		}
		return errors.New("database down")
	}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	healthy.Store(false)
	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestNorm(t *testing.T) {
	assert.Equal(t, "unknown", norm("  "))
	assert.Equal(t, "send", norm(" SEND "))
}
