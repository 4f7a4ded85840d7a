package archive

import (
	"archive/tar"
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ulikunitz/xz"

	rgerrors "github.com/openbel/reggie/core/errors"
)

var bundleTime = time.Date(2015, 6, 11, 19, 51, 19, 0, time.UTC)

func writeOutput(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"namespace/chebi.belns":       "[Values]\nwater|A\n",
		"namespace/chebi-ids.belns":   "[Values]\n15377|A\n",
		"annotation/anatomy.belanno":  "[Values]\nbrain|UBERON_1\n",
		"equivalence/chebi.beleq":     "[Values]\nwater|aaa\n",
		"equivalence/chebi-ids.beleq": "[Values]\n15377|aaa\n",
	}
	for rel, content := range files {
		p := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func sources(root string) []Source {
	return []Source{
		{Dir: filepath.Join(root, "namespace"), Prefix: "namespace"},
		{Dir: filepath.Join(root, "annotation"), Prefix: "annotation"},
		{Dir: filepath.Join(root, "equivalence"), Prefix: "equivalence"},
		{Dir: filepath.Join(root, "missing"), Prefix: "missing"},
	}
}

func TestCreateTarXz(t *testing.T) {
	root := writeOutput(t)
	dst := filepath.Join(t.TempDir(), "bundle", "resources.tar.xz")

	names, err := CreateTarXz(dst, sources(root), bundleTime)
	if err != nil {
		t.Fatalf("CreateTarXz() error = %v", err)
	}
	want := []string{
		"annotation/",
		"annotation/anatomy.belanno",
		"equivalence/",
		"equivalence/chebi-ids.beleq",
		"equivalence/chebi.beleq",
		"namespace/",
		"namespace/chebi-ids.belns",
		"namespace/chebi.belns",
	}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("names = %v, want %v", names, want)
	}

	files := readAll(t, dst)
	if len(files) != 5 {
		t.Errorf("Walk() visited %d files, want 5", len(files))
	}
	if got := files["namespace/chebi.belns"]; got != "[Values]\nwater|A\n" {
		t.Errorf("chebi.belns = %q", got)
	}

	for _, h := range headers(t, dst) {
		if !h.ModTime.Equal(bundleTime) {
			t.Errorf("%s mtime = %v", h.Name, h.ModTime)
		}
		if h.Uid != 0 || h.Gid != 0 || h.Uname != "" {
			t.Errorf("%s carries ownership", h.Name)
		}
	}
}

// readAll collects every file of the bundle through Walk.
func readAll(t *testing.T, path string) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := Walk(path, func(name string, content io.Reader) error {
		data, err := io.ReadAll(content)
		if err != nil {
			return err
		}
		files[name] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	return files
}

func headers(t *testing.T, path string) []*tar.Header {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	xzr, err := xz.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	var hdrs []*tar.Header
	tr := tar.NewReader(xzr)
	for {
		h, err := tr.Next()
		if err == io.EOF {
			return hdrs
		}
		if err != nil {
			t.Fatal(err)
		}
		hdrs = append(hdrs, h)
	}
}

func TestCreateTarXzIsReproducible(t *testing.T) {
	root := writeOutput(t)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.tar.xz")
	b := filepath.Join(dir, "b.tar.xz")

	if _, err := CreateTarXz(a, sources(root), bundleTime); err != nil {
		t.Fatal(err)
	}
	// Touch the sources; mtimes must not leak into the archive.
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(filepath.Join(root, "namespace", "chebi.belns"), later, later); err != nil {
		t.Fatal(err)
	}
	if _, err := CreateTarXz(b, sources(root), bundleTime); err != nil {
		t.Fatal(err)
	}

	da, _ := os.ReadFile(a)
	db, _ := os.ReadFile(b)
	if !bytes.Equal(da, db) {
		t.Error("bundles of identical content differ")
	}
}

func TestWalkStopsOnError(t *testing.T) {
	root := writeOutput(t)
	dst := filepath.Join(t.TempDir(), "r.tar.xz")
	if _, err := CreateTarXz(dst, sources(root), bundleTime); err != nil {
		t.Fatal(err)
	}

	stop := stderrors.New("stop")
	visited := 0
	err := Walk(dst, func(string, io.Reader) error {
		visited++
		return stop
	})
	if err != stop {
		t.Errorf("Walk() error = %v, want the visitor's error", err)
	}
	if visited != 1 {
		t.Errorf("visited %d files after an error, want 1", visited)
	}
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()
	zip := filepath.Join(dir, "x.zip")
	notXZ := filepath.Join(dir, "x.tar.xz")
	for _, p := range []string{zip, notXZ} {
		if err := os.WriteFile(p, []byte("not an archive"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name string
		path string
		want error
	}{
		{"unknown extension", zip, rgerrors.ErrUnsupported},
		{"not xz", notXZ, rgerrors.ErrInvalidInput},
		{"missing file", filepath.Join(dir, "none.tar.xz"), os.ErrNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Open(tt.path); !stderrors.Is(err, tt.want) {
				t.Errorf("Open() error = %v, want %v", err, tt.want)
			}
		})
	}
}
