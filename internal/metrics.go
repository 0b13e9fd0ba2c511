package internal

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts scheduler activity. A nil *Metrics records nothing.
type Metrics struct {
	commits        prometheus.Counter
	cellsChanged   prometheus.Counter
	reactionsRun   prometheus.Counter
	viewsBuilt     prometheus.Counter
	viewsRazed     prometheus.Counter
	nodesDestroyed prometheus.Counter
	liveReactions  prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		})
	}

	m := &Metrics{
		commits:        counter("commits_total", "Commit phases run."),
		cellsChanged:   counter("cells_changed_total", "Mutables changed by a commit."),
		reactionsRun:   counter("reactions_run_total", "Reaction and view reruns."),
		viewsBuilt:     counter("views_built_total", "Views built."),
		viewsRazed:     counter("views_razed_total", "Views razed."),
		nodesDestroyed: counter("nodes_destroyed_total", "Host nodes destroyed."),
		liveReactions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_reactions",
			Help:      "Registered reaction and view slots.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.commits,
			m.cellsChanged,
			m.reactionsRun,
			m.viewsBuilt,
			m.viewsRazed,
			m.nodesDestroyed,
			m.liveReactions,
		)
	}

	return m
}

func (m *Metrics) commit(changed int) {
	if m == nil {
		return
	}
	m.commits.Inc()
	m.cellsChanged.Add(float64(changed))
}

func (m *Metrics) reactionRun() {
	if m != nil {
		m.reactionsRun.Inc()
	}
}

func (m *Metrics) viewBuilt() {
	if m != nil {
		m.viewsBuilt.Inc()
	}
}

func (m *Metrics) viewRazed() {
	if m != nil {
		m.viewsRazed.Inc()
	}
}

func (m *Metrics) nodeDestroyed() {
	if m != nil {
		m.nodesDestroyed.Inc()
	}
}

func (m *Metrics) slots(n int) {
	if m != nil {
		m.liveReactions.Set(float64(n))
	}
}
