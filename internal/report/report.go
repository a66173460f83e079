package report

import (
	"archive/tar"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"wasmbench/internal/runinfo"
	"wasmbench/internal/stats"
	"wasmbench/internal/util"
	"wasmbench/internal/validator"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

// Reporter writes run artifacts to disk.
type Reporter struct {
	OutputDir   string
	UseUUIDPath bool
	runSeq      int
}

// Run describes a report directory for one harness invocation.
type Run struct {
	ID  string
	Dir string
}

// Summary captures the persisted metadata for a run.
type Summary struct {
	RunID          string              `json:"run_id"`
	Timestamp      string              `json:"timestamp"`
	Seed           uint32              `json:"seed"`
	Baseline       string              `json:"baseline"`
	Candidate      string              `json:"candidate"`
	Tasks          []string            `json:"tasks"`
	Validation     []ValidationSummary `json:"validation"`
	Comparisons    int                 `json:"comparisons"`
	UploadLocation string              `json:"upload_location,omitempty"`
	ArchiveName    string              `json:"archive_name,omitempty"`
	ArchiveCodec   string              `json:"archive_codec,omitempty"`
	RunInfo        *runinfo.BasicInfo  `json:"run_info,omitempty"`
}

// ValidationSummary condenses one task's verification outcome.
type ValidationSummary struct {
	Task         string             `json:"task"`
	Total        int                `json:"total"`
	Passed       int                `json:"passed"`
	Failed       int                `json:"failed"`
	LayoutOK     bool               `json:"layout_ok"`
	LayoutError  string             `json:"layout_error,omitempty"`
	FirstFailure *validator.Failure `json:"first_failure,omitempty"`
}

// NewValidationSummary flattens a validator report for persistence.
func NewValidationSummary(rep validator.Report) ValidationSummary {
	return ValidationSummary{
		Task:         rep.Task,
		Total:        rep.Total,
		Passed:       rep.Passed,
		Failed:       rep.Failed,
		LayoutOK:     rep.LayoutOK,
		LayoutError:  rep.LayoutError,
		FirstFailure: rep.FirstFailure,
	}
}

// New creates a reporter that writes to outputDir.
func New(outputDir string) *Reporter {
	return &Reporter{OutputDir: outputDir}
}

// NewRun allocates a new run directory.
func (r *Reporter) NewRun() (Run, error) {
	r.runSeq++
	runID := uuid.New().String()
	if v7, err := uuid.NewV7(); err == nil {
		runID = v7.String()
	}
	runDir := fmt.Sprintf("run_%04d_%s", r.runSeq, runID)
	if r.UseUUIDPath {
		runDir = runID
	}
	dir := filepath.Join(r.OutputDir, runDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Run{}, err
	}
	_ = os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Benchmark Run\n\n- Run metadata: summary.json\n- Hash verification per task: validation.json\n- Statistical comparisons: comparisons.json\n- Stability scores: stability.json\n"), 0o644)
	return Run{ID: runID, Dir: dir}, nil
}

const (
	RunArchiveName  = "run.tar.zst"
	RunArchiveCodec = "zstd"
)

// WriteSummary writes summary.json into the run directory.
func (r *Reporter) WriteSummary(run Run, summary Summary) error {
	if summary.Timestamp == "" {
		summary.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	return r.writeJSON(run, "summary.json", summary)
}

// WriteValidation writes validation.json into the run directory.
func (r *Reporter) WriteValidation(run Run, summaries []ValidationSummary) error {
	return r.writeJSON(run, "validation.json", summaries)
}

// WriteComparisons writes comparisons.json into the run directory.
func (r *Reporter) WriteComparisons(run Run, results []stats.ComparisonResult) error {
	return r.writeJSON(run, "comparisons.json", results)
}

// WriteStability writes stability.json into the run directory.
func (r *Reporter) WriteStability(run Run, metrics []stats.StabilityMetrics) error {
	return r.writeJSON(run, "stability.json", metrics)
}

func (r *Reporter) writeJSON(run Run, name string, v any) error {
	f, err := os.Create(filepath.Join(run.Dir, name))
	if err != nil {
		return err
	}
	defer util.CloseWithErr(f, "report output")
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// WriteText writes raw text content into the run directory.
func (r *Reporter) WriteText(run Run, name string, content string) error {
	path := filepath.Join(run.Dir, name)
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

// WriteRunArchive creates a compressed archive of the run directory.
func (r *Reporter) WriteRunArchive(run Run) (name string, codec string, err error) {
	archivePath := filepath.Join(run.Dir, RunArchiveName)
	if removeErr := os.Remove(archivePath); removeErr != nil && !os.IsNotExist(removeErr) {
		return "", "", removeErr
	}
	defer func() {
		if err != nil {
			_ = os.Remove(archivePath)
		}
	}()
	file, err := os.Create(archivePath)
	if err != nil {
		return "", "", err
	}
	defer util.CloseWithErr(file, "archive output")

	zw, err := zstd.NewWriter(file)
	if err != nil {
		return "", "", err
	}
	defer func() {
		if closeErr := zw.Close(); err == nil && closeErr != nil {
			err = closeErr
		}
	}()

	tw := tar.NewWriter(zw)
	defer func() {
		if closeErr := tw.Close(); err == nil && closeErr != nil {
			err = closeErr
		}
	}()

	walkErr := filepath.WalkDir(run.Dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || path == archivePath {
			return nil
		}
		rel, err := filepath.Rel(run.Dir, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		if _, err := io.Copy(tw, src); err != nil {
			util.CloseWithErr(src, "archive source")
			return err
		}
		util.CloseWithErr(src, "archive source")
		return nil
	})
	if walkErr != nil {
		return "", "", walkErr
	}
	return RunArchiveName, RunArchiveCodec, nil
}
