package tsgen

import (
	"path"
	"strings"

	"emperror.dev/errors"
)

// ImportExtension selects the file extension appended to relative module
// specifiers.
type ImportExtension string

const (
	ExtensionNone ImportExtension = "none"
	ExtensionJS   ImportExtension = "js"
	ExtensionTS   ImportExtension = "ts"
)

func ParseImportExtension(s string) (ImportExtension, error) {
	switch ImportExtension(strings.TrimPrefix(s, ".")) {
	case "", ExtensionNone:
		return ExtensionNone, nil
	case ExtensionJS:
		return ExtensionJS, nil
	case ExtensionTS:
		return ExtensionTS, nil
	}
	return "", errors.Errorf("invalid import extension %q (expected none, js or ts)", s)
}

func (e ImportExtension) suffix() string {
	if e == ExtensionNone || e == "" {
		return ""
	}
	return "." + string(e)
}

// RelativeImport returns the module specifier that resolves the file at
// target (a slash separated path without extension) from the document at
// from (a slash separated file path).
func RelativeImport(from, target string, ext ImportExtension) string {
	fromDir := strings.Split(path.Dir(path.Clean(from)), "/")
	if len(fromDir) == 1 && fromDir[0] == "." {
		fromDir = nil
	}
	to := strings.Split(path.Clean(target), "/")

	common := 0
	for common < len(fromDir) && common < len(to)-1 && fromDir[common] == to[common] {
		common++
	}
	var b strings.Builder
	if up := len(fromDir) - common; up > 0 {
		b.WriteString(strings.Repeat("../", up))
	} else {
		b.WriteString("./")
	}
	b.WriteString(strings.Join(to[common:], "/"))
	b.WriteString(ext.suffix())
	return b.String()
}
