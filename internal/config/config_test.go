package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	rgerrors "github.com/openbel/reggie/core/errors"
)

func TestRequire(t *testing.T) {
	if err := Require(Set(EnvTemplates, "/t"), Set(EnvVersion, "20150611")); err != nil {
		t.Fatalf("Require() error = %v", err)
	}

	err := Require(Set(EnvTemplates, ""), Set(EnvVersion, "1"), Set(EnvCreatedDateTime, "  "))
	if !errors.Is(err, rgerrors.ErrConfig) {
		t.Fatalf("Require() error = %v, want ErrConfig", err)
	}
	for _, name := range []string{EnvTemplates, EnvCreatedDateTime} {
		if !strings.Contains(err.Error(), name+" is not set") {
			t.Errorf("error %q does not mention %s", err, name)
		}
	}
	if strings.Contains(err.Error(), EnvVersion) {
		t.Errorf("error %q mentions a set variable", err)
	}
}

func TestOutputResolve(t *testing.T) {
	tests := []struct {
		name    string
		in      Output
		want    Output
		wantErr bool
	}{
		{
			name: "defaults from root",
			in:   Output{Root: "/out"},
			want: Output{Root: "/out", Namespace: "/out/namespace", Annotation: "/out/annotation", Equivalence: "/out/equivalence"},
		},
		{
			name: "explicit wins",
			in:   Output{Root: "/out", Namespace: "/ns"},
			want: Output{Root: "/out", Namespace: "/ns", Annotation: "/out/annotation", Equivalence: "/out/equivalence"},
		},
		{
			name: "all explicit",
			in:   Output{Namespace: "/a", Annotation: "/b", Equivalence: "/c"},
			want: Output{Namespace: "/a", Annotation: "/b", Equivalence: "/c"},
		},
		{
			name:    "nothing set",
			in:      Output{Namespace: "/a"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.Resolve()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got != tt.want {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEnsureDirs(t *testing.T) {
	root := t.TempDir()
	dirs := []string{filepath.Join(root, "a", "b"), filepath.Join(root, "c")}
	if err := EnsureDirs(dirs...); err != nil {
		t.Fatal(err)
	}
	for _, d := range dirs {
		if info, err := os.Stat(d); err != nil || !info.IsDir() {
			t.Errorf("%s not created", d)
		}
	}

	file := filepath.Join(root, "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	var ioErr *rgerrors.IOError
	if err := EnsureDirs(filepath.Join(file, "sub")); !errors.As(err, &ioErr) {
		t.Errorf("EnsureDirs() under a file error = %v, want IOError", err)
	}
}
