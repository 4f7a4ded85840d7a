package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder(t *testing.T) {
	r := New()

	r.PageFetched(1000)
	r.PageFetched(12)
	r.ConceptProjected("namespace")
	r.ConceptProjected("namespace")
	r.LineWritten("namespace")
	r.ConceptSkipped("namespace")
	r.FileWritten("annotation")
	r.TemplateMissing("equivalence")

	if got := testutil.ToFloat64(r.pages); got != 2 {
		t.Errorf("pages = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.rows); got != 1012 {
		t.Errorf("rows = %v, want 1012", got)
	}
	if got := testutil.ToFloat64(r.concepts.WithLabelValues("namespace")); got != 2 {
		t.Errorf("concepts = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.lines.WithLabelValues("namespace")); got != 1 {
		t.Errorf("lines = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.skipped.WithLabelValues("namespace")); got != 1 {
		t.Errorf("skipped = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.files.WithLabelValues("annotation")); got != 1 {
		t.Errorf("files = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.missing.WithLabelValues("equivalence")); got != 1 {
		t.Errorf("missing = %v, want 1", got)
	}
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.PageFetched(1)
	r.ConceptProjected("namespace")
	r.LineWritten("namespace")
	r.ConceptSkipped("namespace")
	r.FileWritten("namespace")
	r.TemplateMissing("namespace")
	if r.Registry() != nil {
		t.Error("nil recorder should have no registry")
	}
	if err := r.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Errorf("WriteTextfile() on nil recorder = %v", err)
	}
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.PageFetched(3)
	r.LineWritten("annotation")

	path := filepath.Join(t.TempDir(), "reggie.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"reggie_store_pages_fetched_total 1",
		"reggie_store_rows_fetched_total 3",
		`reggie_generate_lines_written_total{variant="annotation"} 1`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("textfile missing %q:\n%s", want, data)
		}
	}

	if err := r.WriteTextfile(""); err != nil {
		t.Errorf("WriteTextfile(\"\") = %v, want nil", err)
	}
}
