package main

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/moodbiome/config"
)

// initStepSize is the CMA-ES starting step in normalized [0,1] space.
const initStepSize = 0.3

// Evaluator scores a raw parameter vector.
type Evaluator interface {
	Evaluate(x []float64) Evaluation
}

// evalRecord is one row of optimize_log.csv.
type evalRecord struct {
	Eval       int     `csv:"eval"`
	Fitness    float64 `csv:"fitness"`
	Balance    float64 `csv:"balance_pct"`
	Stability  float64 `csv:"stability"`
	Population float64 `csv:"mean_population"`
	Params     string  `csv:"params"`
}

// search runs CMA-ES over the parameter vector, logging every evaluation
// and keeping the best one.
type search struct {
	params    *ParamVector
	evaluator Evaluator
	maxEvals  int

	log           io.Writer
	headerWritten bool
	out           io.Writer

	evals    int
	best     Evaluation
	bestRaw  []float64
	bestEval int
	start    time.Time
}

func newSearch(params *ParamVector, ev Evaluator, maxEvals int, log, out io.Writer) *search {
	return &search{
		params:    params,
		evaluator: ev,
		maxEvals:  maxEvals,
		log:       log,
		out:       out,
	}
}

// Run minimizes from the values in start. Minimize stops with an error on
// some convergence failures; the best evaluation so far is kept regardless.
func (s *search) Run(start *config.Config) error {
	dim := s.params.Dim()
	x0 := s.params.Normalize(s.params.Clamp(s.params.ExtractFromConfig(start)))

	method := &optimize.CmaEsChol{
		InitStepSize: initStepSize,
		Population:   4 + int(3*math.Log(float64(dim))),
	}
	// One evaluation at a time; seeds already run in parallel
	settings := &optimize.Settings{
		FuncEvaluations: s.maxEvals,
		Concurrent:      1,
	}

	names := make([]string, dim)
	for i, spec := range s.params.Specs {
		names[i] = spec.Name
	}
	fmt.Fprintf(s.out, "CMA-ES over %s (population %d, %d evaluations)\n",
		strings.Join(names, ", "), method.Population, s.maxEvals)

	s.start = time.Now()
	_, err := optimize.Minimize(optimize.Problem{Func: s.evaluate}, x0, settings, method)
	return err
}

// evaluate is the objective seen by the optimizer: x is normalized.
func (s *search) evaluate(x []float64) float64 {
	raw := s.params.Clamp(s.params.Denormalize(x))
	ev := s.evaluator.Evaluate(raw)
	s.evals++

	if s.bestRaw == nil || ev.Fitness < s.best.Fitness {
		s.best = ev
		s.bestRaw = raw
		s.bestEval = s.evals
	}

	if err := s.record(ev, raw); err != nil {
		fmt.Fprintf(s.out, "optimize log: %v\n", err)
	}
	s.report(ev)
	return ev.Fitness
}

// record appends one evaluation to the CSV log.
func (s *search) record(ev Evaluation, raw []float64) error {
	rec := []evalRecord{{
		Eval:       s.evals,
		Fitness:    ev.Fitness,
		Balance:    ev.Balance * 100,
		Stability:  ev.Stability,
		Population: ev.Population,
		Params:     s.params.Format(raw),
	}}
	if s.headerWritten {
		return gocsv.MarshalWithoutHeaders(rec, s.log)
	}
	s.headerWritten = true
	return gocsv.Marshal(rec, s.log)
}

// report prints one progress line with the per-seed breakdown.
func (s *search) report(ev Evaluation) {
	var seeds strings.Builder
	for _, sc := range ev.Seeds {
		fmt.Fprintf(&seeds, " %d:%.0f%%/%.2f", sc.Seed, sc.Balance*100, sc.Stability)
	}

	eta := time.Duration(0)
	if s.evals < s.maxEvals {
		perEval := time.Since(s.start) / time.Duration(s.evals)
		eta = perEval * time.Duration(s.maxEvals-s.evals)
	}

	fmt.Fprintf(s.out, "eval %d/%d fitness=%.4f balance=%.1f%% stability=%.2f pop=%.0f [%s ] best=%.4f@%d eta=%s\n",
		s.evals, s.maxEvals, ev.Fitness, ev.Balance*100, ev.Stability, ev.Population,
		seeds.String(), s.best.Fitness, s.bestEval, eta.Round(time.Second))
}

// Summary prints the best evaluation and its per-seed scores.
func (s *search) Summary() {
	fmt.Fprintf(s.out, "\n%d evaluations in %s\n", s.evals, time.Since(s.start).Round(time.Second))
	if s.bestRaw == nil {
		return
	}
	fmt.Fprintf(s.out, "best #%d: fitness=%.4f balance=%.1f%% stability=%.2f pop=%.0f\n",
		s.bestEval, s.best.Fitness, s.best.Balance*100, s.best.Stability, s.best.Population)
	for _, sc := range s.best.Seeds {
		fmt.Fprintf(s.out, "  seed %d: balance=%.1f%% stability=%.2f pop=%.0f\n",
			sc.Seed, sc.Balance*100, sc.Stability, sc.Population)
	}
	for i, spec := range s.params.Specs {
		fmt.Fprintf(s.out, "  %s = %v\n", spec.Path, s.bestRaw[i])
	}
}

// WriteBest applies the best parameters to cfg and saves it as YAML.
func (s *search) WriteBest(cfg *config.Config, path string) error {
	if s.bestRaw == nil {
		return fmt.Errorf("no evaluations completed")
	}
	s.params.ApplyToConfig(cfg, s.bestRaw)
	return cfg.WriteYAML(path)
}
