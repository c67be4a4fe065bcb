package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(scenarioSteps, scenarioTimeouts, activeScenarios) }

var (
	scenarioSteps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todobot_scenario_steps_total",
			Help: "Scenario steps, by scenario kind and result.",
		},
		[]string{"kind", "result"}, // result: transition|completed|cancelled|not_found
	)

	scenarioTimeouts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "todobot_scenario_timeouts_total",
			Help: "Scenario contexts reset because the user did not answer in time.",
		},
	)

	activeScenarios = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "todobot_active_scenarios",
			Help: "Scenario contexts seen by the last timeout sweep.",
		},
	)
)

// IncScenarioStep counts one scenario step outcome.
func IncScenarioStep(kind, result string) {
	scenarioSteps.WithLabelValues(norm(kind), norm(result)).Inc()
}

// IncScenarioTimeout counts one expired context.
func IncScenarioTimeout() { scenarioTimeouts.Inc() }

// SetActiveScenarios publishes the number of stored contexts.
func SetActiveScenarios(n int) { activeScenarios.Set(float64(n)) }
