package report

import (
	"archive/tar"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wasmbench/internal/validator"

	"github.com/klauspost/compress/zstd"
)

func TestNewRunCreatesDirectoryAndReadme(t *testing.T) {
	r := New(t.TempDir())
	run, err := r.NewRun()
	if err != nil {
		t.Fatalf("new run: %v", err)
	}
	if run.ID == "" {
		t.Fatalf("expected non-empty run id")
	}
	if !strings.HasPrefix(filepath.Base(run.Dir), "run_0001_") {
		t.Fatalf("unexpected run dir name: %s", run.Dir)
	}
	if _, err := os.Stat(filepath.Join(run.Dir, "README.md")); err != nil {
		t.Fatalf("expected README in run dir: %v", err)
	}

	second, err := r.NewRun()
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(second.Dir), "run_0002_") {
		t.Fatalf("unexpected second run dir name: %s", second.Dir)
	}
}

func TestNewRunUUIDPath(t *testing.T) {
	r := New(t.TempDir())
	r.UseUUIDPath = true
	run, err := r.NewRun()
	if err != nil {
		t.Fatalf("new run: %v", err)
	}
	if filepath.Base(run.Dir) != run.ID {
		t.Fatalf("expected uuid dir name, got %s", filepath.Base(run.Dir))
	}
}

func TestWriteSummaryFillsTimestamp(t *testing.T) {
	r := New(t.TempDir())
	run, err := r.NewRun()
	if err != nil {
		t.Fatalf("new run: %v", err)
	}
	summary := Summary{
		RunID:     run.ID,
		Seed:      42,
		Baseline:  "rust",
		Candidate: "tinygo",
		Tasks:     []string{"mandelbrot"},
	}
	if err := r.WriteSummary(run, summary); err != nil {
		t.Fatalf("write summary: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(run.Dir, "summary.json"))
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	var got Summary
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if got.Timestamp == "" {
		t.Fatalf("expected timestamp to be filled")
	}
	if got.Seed != 42 || got.Baseline != "rust" {
		t.Fatalf("unexpected summary round trip: %+v", got)
	}
}

func TestNewValidationSummary(t *testing.T) {
	rep := validator.Report{
		Task:   "base64",
		Total:  10,
		Passed: 9,
		Failed: 1,
		FirstFailure: &validator.Failure{
			Name:     "base64_size_3",
			Expected: 100,
			Actual:   99,
			Diff:     -1,
		},
		LayoutOK: true,
	}
	got := NewValidationSummary(rep)
	if got.Task != "base64" || got.Total != 10 || got.Failed != 1 {
		t.Fatalf("unexpected validation summary: %+v", got)
	}
	if got.FirstFailure == nil || got.FirstFailure.Diff != -1 {
		t.Fatalf("expected first failure to carry through: %+v", got.FirstFailure)
	}
}

func TestWriteRunArchive(t *testing.T) {
	r := New(t.TempDir())
	run, err := r.NewRun()
	if err != nil {
		t.Fatalf("new run: %v", err)
	}
	if err := r.WriteText(run, "notes.txt", "hello"); err != nil {
		t.Fatalf("write text: %v", err)
	}
	if err := r.WriteSummary(run, Summary{RunID: run.ID}); err != nil {
		t.Fatalf("write summary: %v", err)
	}
	name, codec, err := r.WriteRunArchive(run)
	if err != nil {
		t.Fatalf("write archive: %v", err)
	}
	if name != RunArchiveName || codec != RunArchiveCodec {
		t.Fatalf("unexpected archive metadata: %s %s", name, codec)
	}

	f, err := os.Open(filepath.Join(run.Dir, name))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer f.Close()
	zr, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer zr.Close()
	tr := tar.NewReader(zr)
	found := map[string]string{}
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("tar next: %v", err)
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			t.Fatalf("tar read: %v", err)
		}
		found[hdr.Name] = string(data)
	}
	if found["notes.txt"] != "hello" {
		t.Fatalf("expected notes.txt in archive, got entries: %v", found)
	}
	if _, ok := found["README.md"]; !ok {
		t.Fatalf("expected README.md in archive")
	}
	// Summaries written before archiving ride along in the archive.
	if !strings.Contains(found["summary.json"], run.ID) {
		t.Fatalf("expected summary.json in archive, got entries: %v", found)
	}
}
