package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/ulikunitz/xz"
)

// Source is a directory to include in a bundle under Prefix.
type Source struct {
	Dir    string
	Prefix string
}

// CreateTarXz writes the files of every source into a tar.xz archive at
// dstPath. Entries are sorted by name and carry fixed ownership, modes and
// modTime, so the same inputs always produce the same bytes. Missing
// source directories are skipped. It returns the entry names written.
func CreateTarXz(dstPath string, sources []Source, modTime time.Time) (names []string, err error) {
	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create parent directory: %w", err)
	}

	entries, err := collect(sources)
	if err != nil {
		return nil, err
	}

	outFile, err := os.Create(dstPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive file: %w", err)
	}
	defer func() {
		if cerr := outFile.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close archive file: %w", cerr)
		}
	}()

	xw, err := xz.NewWriter(outFile)
	if err != nil {
		return nil, fmt.Errorf("xz writer: %w", err)
	}
	tw := tar.NewWriter(xw)

	modTime = modTime.UTC().Truncate(time.Second)
	for _, e := range entries {
		if err := writeEntry(tw, e, modTime); err != nil {
			return nil, fmt.Errorf("failed to add %s: %w", e.name, err)
		}
		names = append(names, e.name)
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish tar stream: %w", err)
	}
	if err := xw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish xz stream: %w", err)
	}
	return names, nil
}

type entry struct {
	name string
	path string
	dir  bool
	size int64
}

func collect(sources []Source) ([]entry, error) {
	var entries []entry
	seen := make(map[string]bool)
	for _, src := range sources {
		if _, err := os.Stat(src.Dir); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(src.Dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(src.Dir, p)
			if err != nil {
				return err
			}
			name := path.Join(src.Prefix, filepath.ToSlash(rel))
			if rel == "." {
				if src.Prefix == "" {
					return nil
				}
				name = path.Clean(src.Prefix)
			}
			if !d.IsDir() && !d.Type().IsRegular() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			if d.IsDir() {
				name += "/"
			}
			if seen[name] {
				return nil
			}
			seen[name] = true
			entries = append(entries, entry{name: name, path: p, dir: d.IsDir(), size: info.Size()})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", src.Dir, err)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
	return entries, nil
}

func writeEntry(tw *tar.Writer, e entry, modTime time.Time) error {
	hdr := &tar.Header{
		Name:    e.name,
		ModTime: modTime,
		Format:  tar.FormatPAX,
	}
	if e.dir {
		hdr.Typeflag = tar.TypeDir
		hdr.Mode = 0755
		return tw.WriteHeader(hdr)
	}
	hdr.Typeflag = tar.TypeReg
	hdr.Mode = 0644
	hdr.Size = e.size
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}

	f, err := os.Open(e.path)
	if err != nil {
		return err
	}
	defer f.Close()
	n, err := io.Copy(tw, f)
	if err != nil {
		return err
	}
	if n != e.size {
		return fmt.Errorf("file changed size while archiving")
	}
	return nil
}
