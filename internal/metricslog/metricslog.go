// Package metricslog reads and writes line-delimited divergence records so
// planner runs can be inspected offline without going through the API.
package metricslog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/beliefdrift/beliefdrift/internal/domain"
)

// Writer appends one JSON record per line to a log file. Safe for
// concurrent use.
type Writer struct {
	mu   sync.Mutex
	file *os.File
}

func NewWriter(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create metrics log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open metrics log: %w", err)
	}
	return &Writer{file: f}, nil
}

func (w *Writer) Append(record domain.DivergenceRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append metrics record: %w", err)
	}
	return nil
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// Discover resolves a path to a concrete metrics file. A file path is
// returned as-is; for a directory the first *.jsonl, *.json, *.yaml or
// *.yml file (in that suffix order, sorted within each) wins.
func Discover(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return path, nil
	}

	for _, pattern := range []string{"*.jsonl", "*.json", "*.yaml", "*.yml"} {
		candidates, err := filepath.Glob(filepath.Join(path, pattern))
		if err != nil {
			return "", err
		}
		if len(candidates) > 0 {
			sort.Strings(candidates)
			return candidates[0], nil
		}
	}
	return "", fmt.Errorf("no metrics file found under %s", path)
}

// wireRecord distinguishes an absent step field from an explicit step 0.
// The shallower Step shadows the embedded one during decoding.
type wireRecord struct {
	domain.DivergenceRecord
	Step *int `json:"step"`
}

// toRecord fills in the positional index for records that carry no step.
func (w wireRecord) toRecord(idx int) domain.DivergenceRecord {
	r := w.DivergenceRecord
	if w.Step != nil {
		r.Step = *w.Step
	} else {
		r.Step = idx
	}
	return r
}

// Load parses a metrics file into records. JSONL files are read line by
// line; JSON and YAML files may hold either a single record or a list.
// Records without a step field get their positional index as the step.
func Load(path string) ([]domain.DivergenceRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl":
		return loadJSONL(data)
	case ".yaml", ".yml":
		return loadYAML(data)
	default:
		return loadJSON(data)
	}
}

func loadJSONL(data []byte) ([]domain.DivergenceRecord, error) {
	var records []domain.DivergenceRecord
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var w wireRecord
		if err := json.Unmarshal([]byte(text), &w); err != nil {
			return nil, fmt.Errorf("parse metrics line %d: %w", line, err)
		}
		records = append(records, w.toRecord(len(records)))
	}
	return records, scanner.Err()
}

func loadJSON(data []byte) ([]domain.DivergenceRecord, error) {
	var wires []wireRecord
	if err := json.Unmarshal(data, &wires); err == nil {
		records := make([]domain.DivergenceRecord, len(wires))
		for i, w := range wires {
			records[i] = w.toRecord(i)
		}
		return records, nil
	}
	var single wireRecord
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("parse metrics json: %w", err)
	}
	return []domain.DivergenceRecord{single.toRecord(0)}, nil
}

// loadYAML goes through a generic decode and a JSON round trip so the
// records keep their JSON field names in YAML files too.
func loadYAML(data []byte) ([]domain.DivergenceRecord, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse metrics yaml: %w", err)
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	if _, isList := raw.([]any); isList {
		return loadJSON(encoded)
	}
	var single wireRecord
	if err := json.Unmarshal(encoded, &single); err != nil {
		return nil, fmt.Errorf("parse metrics yaml: %w", err)
	}
	return []domain.DivergenceRecord{single.toRecord(0)}, nil
}

// Point is one sample of a named series.
type Point struct {
	Step  int
	Value float64
}

// Series extracts the named divergence metric from each record. Steps are
// taken as-is; Load already defaults absent ones to the positional index.
func Series(records []domain.DivergenceRecord, metric string) []Point {
	points := make([]Point, 0, len(records))
	for _, r := range records {
		value, ok := r.Metrics.Get(metric)
		if !ok {
			continue
		}
		points = append(points, Point{Step: r.Step, Value: value})
	}
	return points
}

// ConfidenceSeries extracts avg_concept_confidence from each record.
func ConfidenceSeries(records []domain.DivergenceRecord) []Point {
	points := make([]Point, 0, len(records))
	for _, r := range records {
		points = append(points, Point{Step: r.Step, Value: r.AvgConceptConfidence})
	}
	return points
}
