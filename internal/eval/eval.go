// Package eval benchmarks the verifier against FEVER-style labeled
// claims. Each sample's claim is verified against the loaded evidence
// corpus and the resulting status is mapped onto the three FEVER labels.
package eval

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/veridict/veridict/internal/model"
)

// FEVER labels
const (
	LabelSupports      = "SUPPORTS"
	LabelRefutes       = "REFUTES"
	LabelNotEnoughInfo = "NOT ENOUGH INFO"
)

// Sample is one labeled claim from a FEVER-style JSONL file
type Sample struct {
	ID    int    `json:"id"`
	Claim string `json:"claim"`
	Label string `json:"label"`
}

// LoadSamples reads samples from a JSONL file. Blank lines are skipped;
// limit > 0 caps how many samples are read.
func LoadSamples(path string, limit int) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var samples []Sample
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var s Sample
		if err := json.Unmarshal([]byte(text), &s); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		samples = append(samples, s)
		if limit > 0 && len(samples) >= limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return samples, nil
}

// MapStatus projects a verification status onto the FEVER label set.
// Partial support is not enough evidence by FEVER's standard.
func MapStatus(s model.Status) string {
	switch s {
	case model.StatusSupported:
		return LabelSupports
	case model.StatusConflicting:
		return LabelRefutes
	default:
		return LabelNotEnoughInfo
	}
}

// Verifier is the slice of the claim verifier the evaluator needs
type Verifier interface {
	Verify(ctx context.Context, claimIndex int, claim model.Claim) (model.VerificationRecord, error)
}

// LabelMetrics holds precision/recall/F1 for one label
type LabelMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"` // Gold samples carrying this label
}

// Report is the outcome of one evaluation run
type Report struct {
	Total     int                       `json:"total"`
	Errors    int                       `json:"errors"` // Samples that failed to verify
	Correct   int                       `json:"correct"`
	Accuracy  float64                   `json:"accuracy"`
	PerLabel  map[string]LabelMetrics   `json:"per_label"`
	Confusion map[string]map[string]int `json:"confusion"` // gold -> predicted -> count
}

// Evaluator runs labeled claims through a verifier
type Evaluator struct {
	verifier Verifier
	workers  int
}

// New creates an evaluator with the given verification parallelism
func New(verifier Verifier, workers int) *Evaluator {
	if workers <= 0 {
		workers = 1
	}
	return &Evaluator{verifier: verifier, workers: workers}
}

// Run verifies every sample and scores the predictions. A sample that
// fails to verify counts as an error and as a wrong prediction for its
// gold label; it never aborts the run.
func (e *Evaluator) Run(ctx context.Context, samples []Sample) *Report {
	predicted := make([]string, len(samples))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, e.workers)

	for i, sample := range samples {
		wg.Add(1)
		go func(idx int, s Sample) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			claim := model.Claim{Text: s.Claim, Type: model.ClaimTypeFactual, Confidence: 1}
			rec, err := e.verifier.Verify(ctx, idx, claim)
			if err != nil {
				return
			}
			predicted[idx] = MapStatus(rec.Status)
		}(i, sample)
	}
	wg.Wait()

	return score(samples, predicted)
}

func score(samples []Sample, predicted []string) *Report {
	report := &Report{
		Total:     len(samples),
		PerLabel:  make(map[string]LabelMetrics),
		Confusion: make(map[string]map[string]int),
	}

	goldCount := make(map[string]int)
	predCount := make(map[string]int)
	correctCount := make(map[string]int)

	for i, sample := range samples {
		gold := sample.Label
		pred := predicted[i]
		goldCount[gold]++
		if pred == "" {
			report.Errors++
			continue
		}
		predCount[pred]++
		if report.Confusion[gold] == nil {
			report.Confusion[gold] = make(map[string]int)
		}
		report.Confusion[gold][pred]++
		if pred == gold {
			report.Correct++
			correctCount[gold]++
		}
	}

	if report.Total > 0 {
		report.Accuracy = float64(report.Correct) / float64(report.Total)
	}

	for _, label := range []string{LabelSupports, LabelRefutes, LabelNotEnoughInfo} {
		if goldCount[label] == 0 && predCount[label] == 0 {
			continue
		}
		m := LabelMetrics{Support: goldCount[label]}
		if predCount[label] > 0 {
			m.Precision = float64(correctCount[label]) / float64(predCount[label])
		}
		if goldCount[label] > 0 {
			m.Recall = float64(correctCount[label]) / float64(goldCount[label])
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		report.PerLabel[label] = m
	}
	return report
}

// String renders the report as a plain-text table
func (r *Report) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Samples:  %d\n", r.Total)
	fmt.Fprintf(&b, "Correct:  %d\n", r.Correct)
	fmt.Fprintf(&b, "Errors:   %d\n", r.Errors)
	fmt.Fprintf(&b, "Accuracy: %.3f\n\n", r.Accuracy)

	labels := make([]string, 0, len(r.PerLabel))
	for label := range r.PerLabel {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	fmt.Fprintf(&b, "%-17s %9s %9s %9s %9s\n", "Label", "Precision", "Recall", "F1", "Support")
	for _, label := range labels {
		m := r.PerLabel[label]
		fmt.Fprintf(&b, "%-17s %9.3f %9.3f %9.3f %9d\n", label, m.Precision, m.Recall, m.F1, m.Support)
	}

	if len(r.Confusion) > 0 {
		b.WriteString("\nConfusion (gold -> predicted):\n")
		golds := make([]string, 0, len(r.Confusion))
		for gold := range r.Confusion {
			golds = append(golds, gold)
		}
		sort.Strings(golds)
		for _, gold := range golds {
			preds := make([]string, 0, len(r.Confusion[gold]))
			for pred := range r.Confusion[gold] {
				preds = append(preds, pred)
			}
			sort.Strings(preds)
			for _, pred := range preds {
				fmt.Fprintf(&b, "  %-17s -> %-17s %d\n", gold, pred, r.Confusion[gold][pred])
			}
		}
	}
	return b.String()
}

// JSON serializes the report
func (r *Report) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}
