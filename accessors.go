package nestgen

import (
	"go/build"
	"io"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"emperror.dev/errors"
	"golang.org/x/mod/module"
)

// SourceAccessor opens proto files relative to each of the import paths in
// order, falling back to the Go module cache for imports named by module
// path (e.g. github.com/foo/bar/baz.proto).
func SourceAccessor(importPaths ...string) FileAccessor {
	if len(importPaths) == 0 {
		importPaths = []string{"."}
	}
	return func(name string) (io.ReadCloser, error) {
		for _, dir := range importPaths {
			if f, err := os.Open(filepath.Join(dir, filepath.FromSlash(name))); err == nil {
				return f, nil
			}
		}
		// well-known files are provided by the standard imports
		if strings.HasPrefix(name, "google/protobuf/") {
			return nil, os.ErrNotExist
		}
		rc, err := readFromModuleCache(name)
		if err != nil {
			return nil, errors.WithDetails(errors.Wrapf(err, "could not find %s in import paths or in go module cache", name), "import_paths", importPaths)
		}
		return rc, nil
	}
}

// MapAccessor serves proto sources from memory.
func MapAccessor(sources map[string]string) FileAccessor {
	return func(name string) (io.ReadCloser, error) {
		if src, ok := sources[name]; ok {
			return io.NopCloser(strings.NewReader(src)), nil
		}
		return nil, os.ErrNotExist
	}
}

// ImportName returns the name under which file is known to the compiler: its
// path relative to the first import path containing it.
func ImportName(file string, importPaths ...string) string {
	abs, err := filepath.Abs(file)
	if err != nil {
		return filepath.ToSlash(file)
	}
	for _, dir := range importPaths {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		if rel, err := filepath.Rel(absDir, abs); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return path.Clean(filepath.ToSlash(file))
}

func readFromModuleCache(dep string) (io.ReadCloser, error) {
	last := strings.LastIndex(dep, "/")
	if last == -1 {
		return nil, os.ErrNotExist
	}
	filename := dep[last+1:]
	if !strings.HasSuffix(filename, ".proto") {
		return nil, os.ErrNotExist
	}

	modulePath := dep[:last]
	if err := module.CheckImportPath(modulePath); err != nil {
		return nil, os.ErrNotExist
	}

	var protoFilePath string
	if pkg, err := build.Default.Import(modulePath, "", build.FindOnly); err == nil {
		protoFilePath = filepath.Join(pkg.Dir, filename)
	} else {
		cmd := exec.Command("go", "list", "-m", "-f", "{{.Dir}}", modulePath)
		cmd.Env = append(os.Environ(),
			"GOOS="+runtime.GOOS,
			"GOARCH="+runtime.GOARCH,
		)
		out, err := cmd.Output()
		if err != nil {
			return nil, os.ErrNotExist
		}
		protoFilePath = filepath.Join(strings.TrimSpace(string(out)), filename)
	}
	if _, err := os.Stat(protoFilePath); err != nil {
		return nil, os.ErrNotExist
	}
	return os.Open(protoFilePath)
}
