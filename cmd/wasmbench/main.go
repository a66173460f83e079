package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"wasmbench/internal/config"
	"wasmbench/internal/report"
	"wasmbench/internal/stats"
	"wasmbench/internal/task"
	"wasmbench/internal/uploader"
	"wasmbench/internal/util"
	"wasmbench/internal/validator"
	"wasmbench/internal/vector"

	"gopkg.in/yaml.v3"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if closeLog := setupLogFile(cfg.Logging.LogFile); closeLog != nil {
		defer closeLog()
	}
	util.Infof("starting wasmbench: baseline=%s candidate=%s", cfg.Implementations.Baseline, cfg.Implementations.Candidate)
	if cfg.Logging.Verbose {
		if data, err := yaml.Marshal(&cfg); err == nil {
			util.Highlightf("config:\n%s", string(data))
		}
	}

	kinds, err := resolveTasks(cfg.Tasks)
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolve tasks: %v\n", err)
		os.Exit(1)
	}

	reporter := report.New(cfg.ReportDir)
	run, err := reporter.NewRun()
	if err != nil {
		fmt.Fprintf(os.Stderr, "prepare run directory: %v\n", err)
		os.Exit(1)
	}
	util.Infof("run %s writing to %s", run.ID, run.Dir)

	validations, failedTasks := validateAll(cfg, kinds)
	comparisons, stability := compareAll(cfg)

	if err := reporter.WriteValidation(run, validations); err != nil {
		fmt.Fprintf(os.Stderr, "write validation: %v\n", err)
		os.Exit(1)
	}
	if err := reporter.WriteComparisons(run, comparisons); err != nil {
		fmt.Fprintf(os.Stderr, "write comparisons: %v\n", err)
		os.Exit(1)
	}
	if err := reporter.WriteStability(run, stability); err != nil {
		fmt.Fprintf(os.Stderr, "write stability: %v\n", err)
		os.Exit(1)
	}
	if err := reporter.WriteText(run, "summary.txt", textReport(validations, comparisons, stability)); err != nil {
		util.Warnf("write text digest: %v", err)
	}

	summary := report.Summary{
		RunID:        run.ID,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Seed:         cfg.Seed,
		Baseline:     cfg.Implementations.Baseline,
		Candidate:    cfg.Implementations.Candidate,
		Tasks:        kindNames(kinds),
		Validation:   validations,
		Comparisons:  len(comparisons),
		ArchiveName:  report.RunArchiveName,
		ArchiveCodec: report.RunArchiveCodec,
		RunInfo:      cfg.RunInfo,
	}
	// Summary goes down first so the archive and the upload both carry it.
	if err := reporter.WriteSummary(run, summary); err != nil {
		fmt.Fprintf(os.Stderr, "write summary: %v\n", err)
		os.Exit(1)
	}
	if _, _, err := reporter.WriteRunArchive(run); err != nil {
		util.Warnf("archive run dir: %v", err)
		summary.ArchiveName, summary.ArchiveCodec = "", ""
		if err := reporter.WriteSummary(run, summary); err != nil {
			util.Warnf("rewrite summary: %v", err)
		}
	}

	if cfg.Storage.CloudEnabled() {
		up, err := uploader.ForStorage(cfg.Storage)
		if err != nil {
			util.Errorf("init uploader: %v", err)
		} else if location, err := up.UploadDir(context.Background(), run.Dir); err != nil {
			util.Errorf("upload run dir: %v", err)
		} else if location != "" {
			util.Infof("run uploaded to %s", location)
			// The local summary records where the run landed.
			summary.UploadLocation = location
			if err := reporter.WriteSummary(run, summary); err != nil {
				util.Warnf("rewrite summary: %v", err)
			}
		}
	}

	if failedTasks > 0 {
		util.Errorf("%d task(s) failed hash verification", failedTasks)
		os.Exit(1)
	}
	util.Infof("all %d task(s) verified, %d comparison(s) produced", len(validations), len(comparisons))
}

// textReport renders the plain-text run digest stored next to the JSON
// artifacts.
func textReport(validations []report.ValidationSummary, comparisons []stats.ComparisonResult, stability []stats.StabilityMetrics) string {
	var b strings.Builder
	for _, v := range validations {
		status := "ok"
		if v.Failed > 0 || !v.LayoutOK {
			status = "FAILED"
		}
		fmt.Fprintf(&b, "%s: %d/%d vectors passed (%s)\n", v.Task, v.Passed, v.Total, status)
	}
	for _, c := range comparisons {
		b.WriteString(c.Summary)
		b.WriteByte('\n')
	}
	for _, s := range stability {
		fmt.Fprintf(&b, "%s: stability %.2f, risk %s\n", s.Implementation, s.StabilityScore, s.RiskLevel)
	}
	return b.String()
}

// setupLogFile mirrors log output into path, keeping stdout. The returned
// closer is nil when no file could be opened.
func setupLogFile(path string) func() {
	if path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			util.Warnf("create log dir %s: %v", dir, err)
			return nil
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		util.Warnf("open log file %s: %v", path, err)
		return nil
	}
	log.SetOutput(io.MultiWriter(os.Stdout, f))
	return func() { util.CloseWithErr(f, path) }
}

func resolveTasks(names []string) ([]task.Kind, error) {
	if len(names) == 0 {
		return task.Kinds(), nil
	}
	kinds := make([]task.Kind, 0, len(names))
	for _, name := range names {
		kind, err := task.KindFromString(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func kindNames(kinds []task.Kind) []string {
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, k.String())
	}
	return names
}

func validateAll(cfg config.Config, kinds []task.Kind) ([]report.ValidationSummary, int) {
	summaries := make([]report.ValidationSummary, 0, len(kinds))
	failedTasks := 0
	for _, kind := range kinds {
		vectors, err := loadCorpus(cfg.VectorDir, kind)
		if err != nil {
			util.Errorf("load corpus for %s: %v", kind, err)
			failedTasks++
			continue
		}
		v := validator.New(task.ForKind(kind), vectors)
		rep, err := v.Evaluate()
		if err != nil {
			util.Errorf("evaluate %s: %v", kind, err)
			failedTasks++
			continue
		}
		if err := v.Emit(); err != nil {
			util.Warnf("emit %s: %v", kind, err)
		}
		if !rep.OK() {
			failedTasks++
		}
		summaries = append(summaries, report.NewValidationSummary(rep))
	}
	return summaries, failedTasks
}

// loadCorpus prefers a corpus file on disk and falls back to the generated
// reference corpus when none exists.
func loadCorpus(dir string, kind task.Kind) ([]vector.Vector, error) {
	path := filepath.Join(dir, kind.String()+".json")
	vectors, err := vector.Load(kind, path)
	if err == nil {
		return vectors, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	util.Warnf("no corpus at %s, generating reference vectors", path)
	return vector.Generate(kind)
}

func compareAll(cfg config.Config) ([]stats.ComparisonResult, []stats.StabilityMetrics) {
	sets, err := loadSampleSets(cfg.SampleDir)
	if err != nil {
		util.Warnf("load samples from %s: %v", cfg.SampleDir, err)
		return nil, nil
	}
	if len(sets) == 0 {
		util.Infof("no sample sets under %s, skipping comparison", cfg.SampleDir)
		return nil, nil
	}

	thresholds := stats.Thresholds{Alpha: cfg.Stats.Alpha, Power: cfg.Stats.Power, MinSamples: cfg.Stats.MinSamples}
	pairs := pairSampleSets(sets, cfg.Implementations.Baseline, cfg.Implementations.Candidate)
	results := make([]stats.ComparisonResult, 0, len(pairs))
	for _, pair := range pairs {
		result, err := stats.Compare(pair.baseline, pair.candidate, thresholds)
		if err != nil {
			util.Warnf("compare %s/%s: %v", pair.baseline.Task, pair.baseline.Scale, err)
			continue
		}
		results = append(results, result)
		util.Infof("%s/%s: %s (%s)", result.Task, result.Scale, result.Level, result.Summary)
	}

	stabilityMetrics := stabilityFor(sets, cfg.Implementations.Baseline, cfg.Implementations.Candidate)
	if len(stabilityMetrics) == 2 {
		util.Infof("consistency winner: %s", stats.ConsistencyWinner(stabilityMetrics[0], stabilityMetrics[1]))
	}
	return results, stabilityMetrics
}

type setPair struct {
	baseline  stats.SampleSet
	candidate stats.SampleSet
}

func loadSampleSets(dir string) ([]stats.SampleSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	sets := make([]stats.SampleSet, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			util.Warnf("read sample file %s: %v", path, err)
			continue
		}
		var set stats.SampleSet
		if err := json.Unmarshal(data, &set); err != nil {
			util.Warnf("decode sample file %s: %v", path, err)
			continue
		}
		if set.Task == "" || set.Implementation == "" {
			util.Warnf("sample file %s is missing task or implementation", path)
			continue
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// pairSampleSets matches baseline and candidate sets by task and scale.
func pairSampleSets(sets []stats.SampleSet, baseline, candidate string) []setPair {
	type key struct{ task, scale string }
	byKey := make(map[key]map[string]stats.SampleSet)
	keys := make([]key, 0)
	for _, set := range sets {
		k := key{set.Task, set.Scale}
		if byKey[k] == nil {
			byKey[k] = make(map[string]stats.SampleSet)
			keys = append(keys, k)
		}
		byKey[k][set.Implementation] = set
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].task != keys[j].task {
			return keys[i].task < keys[j].task
		}
		return keys[i].scale < keys[j].scale
	})
	pairs := make([]setPair, 0, len(keys))
	for _, k := range keys {
		base, okBase := byKey[k][baseline]
		cand, okCand := byKey[k][candidate]
		if !okBase || !okCand {
			util.Warnf("unpaired sample set for %s/%s", k.task, k.scale)
			continue
		}
		pairs = append(pairs, setPair{baseline: base, candidate: cand})
	}
	return pairs
}

// stabilityFor scores run-to-run variance per implementation from the
// outlier-filtered time series of every sample set.
func stabilityFor(sets []stats.SampleSet, baseline, candidate string) []stats.StabilityMetrics {
	cvs := map[string][]float64{}
	for _, set := range sets {
		filtered, _ := stats.FilterOutliers(set.Times())
		desc, err := stats.Describe(filtered)
		if err != nil {
			continue
		}
		cvs[set.Implementation] = append(cvs[set.Implementation], desc.CV)
	}
	metrics := make([]stats.StabilityMetrics, 0, 2)
	for _, impl := range []string{baseline, candidate} {
		m, err := stats.Stability(impl, cvs[impl])
		if err != nil {
			continue
		}
		metrics = append(metrics, m)
	}
	return metrics
}
