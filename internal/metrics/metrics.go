// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metrics holds the module's Prometheus counters and histograms,
// grounded on the teacher's pkg/ingestion/metrics.go sync.Once-guarded
// singleton pattern, retargeted from ingestion/embedding counters onto
// this system's analyzer/query/watch/seed-store instrumentation (§2.1).
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type collectors struct {
	once sync.Once

	FilesAnalyzed    prometheus.Counter
	ParseErrors      prometheus.Counter
	ResolverTimeouts prometheus.Counter
	RuleQuarantines  prometheus.Counter
	SeedSwaps        prometheus.Counter
	WatchEventsTotal prometheus.Counter
	QueryExecutions  prometheus.Counter
	QueryErrors      prometheus.Counter

	RuleApplyDuration prometheus.Histogram
	QueryDuration     prometheus.Histogram
	AnalysisDuration  prometheus.Histogram
}

var m collectors

var defaultBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

func (c *collectors) init() {
	c.once.Do(func() {
		c.FilesAnalyzed = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "devac_files_analyzed_total", Help: "Source files processed by the analyzer.",
		})
		c.ParseErrors = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "devac_parse_errors_total", Help: "Files that failed structural parsing.",
		})
		c.ResolverTimeouts = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "devac_resolver_timeouts_total", Help: "Resolver passes that exceeded their deadline.",
		})
		c.RuleQuarantines = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "devac_rule_quarantines_total", Help: "Rules quarantined after a predicate panic or malformed emit.",
		})
		c.SeedSwaps = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "devac_seed_generation_swaps_total", Help: "Atomic seed generation swaps committed.",
		})
		c.WatchEventsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "devac_watch_events_total", Help: "Filesystem change events processed by the watch loop.",
		})
		c.QueryExecutions = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "devac_query_executions_total", Help: "Federated queries executed.",
		})
		c.QueryErrors = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "devac_query_errors_total", Help: "Federated queries that returned an error.",
		})

		c.RuleApplyDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "devac_rule_apply_seconds", Help: "Rule engine apply-phase duration.", Buckets: defaultBuckets,
		})
		c.QueryDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "devac_query_seconds", Help: "Federated query execution duration.", Buckets: defaultBuckets,
		})
		c.AnalysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "devac_analysis_seconds", Help: "End to end analyzer run duration.", Buckets: defaultBuckets,
		})

		prometheus.MustRegister(
			c.FilesAnalyzed, c.ParseErrors, c.ResolverTimeouts, c.RuleQuarantines,
			c.SeedSwaps, c.WatchEventsTotal, c.QueryExecutions, c.QueryErrors,
			c.RuleApplyDuration, c.QueryDuration, c.AnalysisDuration,
		)
	})
}

// RecordFileAnalyzed increments the files-analyzed counter.
func RecordFileAnalyzed() { m.init(); m.FilesAnalyzed.Inc() }

// RecordParseError increments the parse-error counter.
func RecordParseError() { m.init(); m.ParseErrors.Inc() }

// RecordResolverTimeout increments the resolver-timeout counter.
func RecordResolverTimeout() { m.init(); m.ResolverTimeouts.Inc() }

// RecordRuleQuarantine increments the rule-quarantine counter.
func RecordRuleQuarantine() { m.init(); m.RuleQuarantines.Inc() }

// RecordSeedSwap increments the seed-generation-swap counter.
func RecordSeedSwap() { m.init(); m.SeedSwaps.Inc() }

// RecordWatchEvent increments the watch-events-processed counter.
func RecordWatchEvent() { m.init(); m.WatchEventsTotal.Inc() }

// RecordQueryExecution increments the query-executions counter and, on
// err != nil, the query-errors counter too.
func RecordQueryExecution(err error) {
	m.init()
	m.QueryExecutions.Inc()
	if err != nil {
		m.QueryErrors.Inc()
	}
}

// ObserveRuleApplyDuration records one rule-apply-phase duration in seconds.
func ObserveRuleApplyDuration(seconds float64) { m.init(); m.RuleApplyDuration.Observe(seconds) }

// ObserveQueryDuration records one federated query's duration in seconds.
func ObserveQueryDuration(seconds float64) { m.init(); m.QueryDuration.Observe(seconds) }

// ObserveAnalysisDuration records one analyzer run's total duration in seconds.
func ObserveAnalysisDuration(seconds float64) { m.init(); m.AnalysisDuration.Observe(seconds) }

// Handler returns the Prometheus HTTP handler for mounting behind
// --metrics-addr on the analyze subcommand.
func Handler() http.Handler {
	m.init()
	return promhttp.Handler()
}
