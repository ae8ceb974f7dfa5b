package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "depgraph_parse_seconds",
		Help:    "Time spent parsing and extracting records from a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "depgraph_analysis_seconds",
		Help:    "Time spent in each analysis pipeline stage.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	FilesAnalyzedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depgraph_files_analyzed_total",
		Help: "Total number of files analyzed, by outcome.",
	}, []string{"outcome"})

	ResolutionMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depgraph_resolution_misses_total",
		Help: "Total number of module specifiers no resolution strategy could map to a file.",
	})

	ReferenceLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depgraph_reference_lookups_total",
		Help: "Total number of export reference lookups, by outcome.",
	}, []string{"outcome"})

	ParserLeases = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "depgraph_parser_leases",
		Help: "Tree-sitter parsers currently checked out of a pool, by language.",
	}, []string{"language"})

	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "depgraph_graph_nodes",
		Help: "Number of nodes in the most recently built declaration tree.",
	})
)
