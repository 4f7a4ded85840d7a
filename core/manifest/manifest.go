// Package manifest records the BLAKE3 digest and size of every resource
// file written by a run, so a later run or a copy of the output can be
// checked for drift.
package manifest

import (
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/openbel/reggie/core/errors"
	"github.com/openbel/reggie/internal/validation"
)

// osRename is a variable to allow testing of rename errors.
var osRename = os.Rename

// Entry describes one file, by path relative to the manifest root.
type Entry struct {
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	BLAKE3 string `json:"blake3"`
}

// Manifest lists the files of one run in path order.
type Manifest struct {
	Version         string  `json:"version,omitempty"`
	CreatedDateTime string  `json:"created_date_time,omitempty"`
	Files           []Entry `json:"files"`
}

// Digest returns the hex BLAKE3 digest of data.
func Digest(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}

// HashFile streams path through BLAKE3.
func HashFile(path string) (digest string, size int64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, errors.NewIO("open", path, err)
	}
	defer f.Close()

	digest, size, err = HashReader(f)
	if err != nil {
		return "", 0, errors.NewIO("read", path, err)
	}
	return digest, size, nil
}

// HashReader streams r through BLAKE3.
func HashReader(r io.Reader) (digest string, size int64, err error) {
	h := blake3.New()
	size, err = io.Copy(h, r)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), size, nil
}

// Build hashes paths, which must live under root.
func Build(root string, paths []string) (*Manifest, error) {
	m := &Manifest{Files: make([]Entry, 0, len(paths))}
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, errors.NewValidation("path", p+" is outside "+root)
		}
		digest, size, err := HashFile(p)
		if err != nil {
			return nil, err
		}
		m.Files = append(m.Files, Entry{Path: filepath.ToSlash(rel), Size: size, BLAKE3: digest})
	}
	sort.Slice(m.Files, func(i, j int) bool { return m.Files[i].Path < m.Files[j].Path })
	return m, nil
}

// WriteFile stores m as indented JSON, replacing path atomically.
func (m *Manifest) WriteFile(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode manifest")
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), ".manifest-*")
	if err != nil {
		return errors.NewIO("create", path, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.NewIO("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.NewIO("close", path, err)
	}
	if err := osRename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errors.NewIO("rename", path, err)
	}
	return nil
}

// Load reads a manifest written by WriteFile.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &errors.ParseError{Format: "manifest", Path: path, Message: err.Error(), Err: err}
	}
	return &m, nil
}

// Drift reasons.
const (
	Missing  = "missing"
	Resized  = "size"
	Modified = "digest"
)

// Drift is one file that no longer matches its entry.
type Drift struct {
	Path   string
	Reason string
}

// Verify re-hashes every entry of m under root and reports the files that
// changed. An entry path that leaves root is a ValidationError; other than
// that only I/O failures besides a missing file are errors.
func Verify(root string, m *Manifest) ([]Drift, error) {
	var drift []Drift
	for _, e := range m.Files {
		rel, err := validation.SanitizePath(root, filepath.FromSlash(e.Path))
		if err != nil {
			return nil, &errors.ValidationError{Field: "path", Value: e.Path, Message: err.Error(), Err: err}
		}
		p := filepath.Join(root, rel)
		info, err := os.Stat(p)
		if os.IsNotExist(err) {
			drift = append(drift, Drift{Path: e.Path, Reason: Missing})
			continue
		}
		if err != nil {
			return nil, errors.NewIO("stat", p, err)
		}
		if info.Size() != e.Size {
			drift = append(drift, Drift{Path: e.Path, Reason: Resized})
			continue
		}
		digest, _, err := HashFile(p)
		if err != nil {
			return nil, err
		}
		if digest != e.BLAKE3 {
			drift = append(drift, Drift{Path: e.Path, Reason: Modified})
		}
	}
	return drift, nil
}

// Compare reports the drift between m and found, the entries observed
// elsewhere (a bundle, a copy) keyed by manifest path. Files in found but not
// in m are ignored.
func Compare(m *Manifest, found map[string]Entry) []Drift {
	var drift []Drift
	for _, e := range m.Files {
		got, ok := found[e.Path]
		switch {
		case !ok:
			drift = append(drift, Drift{Path: e.Path, Reason: Missing})
		case got.Size != e.Size:
			drift = append(drift, Drift{Path: e.Path, Reason: Resized})
		case got.BLAKE3 != e.BLAKE3:
			drift = append(drift, Drift{Path: e.Path, Reason: Modified})
		}
	}
	return drift
}
