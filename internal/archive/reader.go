package archive

import (
	"archive/tar"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/openbel/reggie/core/errors"
)

// Reader reads the files of a bundle back in stored order.
type Reader struct {
	path string
	file *os.File
	tr   *tar.Reader
}

// Open opens a .tar.xz bundle, or an uncompressed .tar.
func Open(path string) (*Reader, error) {
	compressed := strings.HasSuffix(path, ".tar.xz")
	if !compressed && !strings.HasSuffix(path, ".tar") {
		return nil, errors.NewUnsupported("bundle format", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	var src io.Reader = f
	if compressed {
		xzr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, &errors.ParseError{Format: "xz", Path: path, Message: err.Error(), Err: err}
		}
		src = xzr
	}
	return &Reader{path: path, file: f, tr: tar.NewReader(src)}, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

// Walk calls fn with the name and content of every regular file. Directory
// entries are skipped. An error from fn stops the walk and is returned as is.
func (r *Reader) Walk(fn func(name string, content io.Reader) error) error {
	for {
		hdr, err := r.tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &errors.ParseError{Format: "tar", Path: r.path, Message: err.Error(), Err: err}
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if err := fn(hdr.Name, r.tr); err != nil {
			return err
		}
	}
}

// Walk opens the bundle at path and walks its files.
func Walk(path string, fn func(name string, content io.Reader) error) error {
	r, err := Open(path)
	if err != nil {
		return err
	}
	defer r.Close()
	return r.Walk(fn)
}
