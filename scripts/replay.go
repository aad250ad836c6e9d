// Replay script for inspecting divergence metrics logs produced during
// planner runs.
// Run with: go run ./scripts/replay.go -path metrics -metric concept_js_divergence
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/beliefdrift/beliefdrift/internal/domain"
	"github.com/beliefdrift/beliefdrift/internal/metricslog"
)

func main() {
	path := flag.String("path", "metrics", "metrics file or directory to search")
	metric := flag.String("metric", domain.MetricConceptJSDivergence, "divergence metric to print")
	flag.Parse()

	file, err := metricslog.Discover(*path)
	if err != nil {
		log.Fatalf("Failed to locate metrics file: %v", err)
	}

	records, err := metricslog.Load(file)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", file, err)
	}
	if len(records) == 0 {
		log.Fatalf("No records in %s", file)
	}

	fmt.Printf("Loaded %d records from %s\n\n", len(records), file)

	series := metricslog.Series(records, *metric)
	if len(series) == 0 {
		log.Fatalf("Metric %q not present in any record", *metric)
	}
	fmt.Printf("%6s  %24s  %22s  %-20s\n", "step", *metric, "avg_concept_confidence", "action")
	for _, r := range records {
		value, ok := r.Metrics.Get(*metric)
		if !ok {
			continue
		}
		action := r.Action
		if action == "" {
			action = "-"
		}
		fmt.Printf("%6d  %24.4f  %22.4f  %-20s\n", r.Step, value, r.AvgConceptConfidence, action)
	}

	min, max := series[0].Value, series[0].Value
	sum := 0.0
	for _, p := range series {
		if p.Value < min {
			min = p.Value
		}
		if p.Value > max {
			max = p.Value
		}
		sum += p.Value
	}
	fmt.Printf("\n%s: min %.4f  max %.4f  mean %.4f\n", *metric, min, max, sum/float64(len(series)))
}
