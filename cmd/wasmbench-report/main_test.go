package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"wasmbench/internal/report"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		nameIn string
		want   string
	}{
		{
			name:   "no prefix",
			prefix: "",
			nameIn: "reports.json",
			want:   "reports.json",
		},
		{
			name:   "trim prefix and name",
			prefix: "/a/b/",
			nameIn: "/reports.json",
			want:   "a/b/reports.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := objectKey(tt.prefix, tt.nameIn)
			if got != tt.want {
				t.Fatalf("objectKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeriveUploadObjectURL(t *testing.T) {
	if got := deriveUploadObjectURL("s3://bucket/abc/", report.RunArchiveName, ""); got != "" {
		t.Fatalf("unexpected url without public base: %q", got)
	}
	if got := deriveUploadObjectURL("s3://bucket/abc/", report.RunArchiveName, "https://cdn.example.com"); got != "https://cdn.example.com/abc/"+report.RunArchiveName {
		t.Fatalf("unexpected url with public base: %q", got)
	}
	if got := deriveUploadObjectURL("https://cdn.example.com/abc/", report.RunArchiveName, ""); got != "https://cdn.example.com/abc/"+report.RunArchiveName {
		t.Fatalf("unexpected url from https upload location: %q", got)
	}
	if got := deriveUploadObjectURL("gs://bucket/abc/", report.RunArchiveName, "https://cdn.example.com"); got != "" {
		t.Fatalf("unexpected url for gcs upload location: %q", got)
	}
}

func TestEntryFromSummaryAggregatesValidation(t *testing.T) {
	summary := report.Summary{
		RunID:     "run-1",
		Timestamp: "2026-08-29T10:00:00Z",
		Baseline:  "rust",
		Candidate: "tinygo",
		Validation: []report.ValidationSummary{
			{Task: "mandelbrot", Total: 10, Passed: 10},
			{Task: "base64", Total: 8, Passed: 7, Failed: 1},
		},
		Comparisons: 3,
	}
	entry := entryFromSummary(summary, "fallback", nil, loadOptions{})
	if entry.ID != "run-1" {
		t.Fatalf("unexpected entry id: %q", entry.ID)
	}
	if entry.Passed != 17 || entry.Failed != 1 {
		t.Fatalf("unexpected aggregate counts: passed=%d failed=%d", entry.Passed, entry.Failed)
	}
	if entry.Comparisons != 3 {
		t.Fatalf("unexpected comparison count: %d", entry.Comparisons)
	}

	entry = entryFromSummary(report.Summary{}, "fallback", nil, loadOptions{})
	if entry.ID != "fallback" {
		t.Fatalf("expected fallback id, got %q", entry.ID)
	}
}

func TestLoadLocalRunsSkipsDirsWithoutSummary(t *testing.T) {
	root := t.TempDir()
	runDir := filepath.Join(root, "run_0001_abc")
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		t.Fatalf("mkdir run dir: %v", err)
	}
	summary := report.Summary{RunID: "abc", Timestamp: "2026-08-29T10:00:00Z", Baseline: "rust", Candidate: "tinygo"}
	data, err := json.Marshal(summary)
	if err != nil {
		t.Fatalf("marshal summary: %v", err)
	}
	if err := os.WriteFile(filepath.Join(runDir, "summary.json"), data, 0o644); err != nil {
		t.Fatalf("write summary: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "empty_dir"), 0o755); err != nil {
		t.Fatalf("mkdir empty dir: %v", err)
	}

	runs, err := loadLocalRuns(root, loadOptions{MaxBytes: 1024})
	if err != nil {
		t.Fatalf("load local runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].ID != "abc" {
		t.Fatalf("unexpected run id: %q", runs[0].ID)
	}
	if _, ok := runs[0].Files["summary.json"]; !ok {
		t.Fatalf("expected summary.json inlined in files")
	}
}

func TestWriteJSONOutputsBothManifests(t *testing.T) {
	output := t.TempDir()
	site := SiteData{
		GeneratedAt: "2026-08-29T10:00:00Z",
		Source:      "reports",
		Runs: []RunEntry{
			{ID: "run-1", Timestamp: "2026-08-29T09:00:00Z", Baseline: "rust", Candidate: "tinygo"},
		},
	}
	if err := writeJSON(output, site); err != nil {
		t.Fatalf("writeJSON() failed: %v", err)
	}
	for _, file := range []string{"report.json", "reports.json"} {
		data, err := os.ReadFile(filepath.Join(output, file))
		if err != nil {
			t.Fatalf("missing output file %s: %v", file, err)
		}
		var got SiteData
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal %s: %v", file, err)
		}
		if len(got.Runs) != 1 || got.Runs[0].ID != "run-1" {
			t.Fatalf("unexpected manifest content in %s: %+v", file, got)
		}
	}
}
