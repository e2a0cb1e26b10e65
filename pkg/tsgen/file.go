// Package tsgen accumulates generated TypeScript source together with the
// import declarations it needs. Every File owns its own import table.
package tsgen

import (
	"bytes"
	"fmt"
	"strings"

	"emperror.dev/errors"
)

const ErrNameTaken = errors.Sentinel("identifier already declared")

// Symbol is a name that is either declared in the current document (From is
// empty) or imported from another module.
type Symbol struct {
	Name     string
	From     string
	TypeOnly bool
}

// Import returns a symbol resolved by a value import of name from module.
func Import(name, from string) Symbol {
	return Symbol{Name: name, From: from}
}

// ImportType returns a symbol that is only used in type positions.
func ImportType(name, from string) Symbol {
	return Symbol{Name: name, From: from, TypeOnly: true}
}

// Local returns a symbol declared in the current document.
func Local(name string) Symbol {
	return Symbol{Name: name}
}

func (s Symbol) key() string {
	return s.From + "\x00" + s.Name
}

type importEntry struct {
	name     string
	from     string
	local    string
	typeOnly bool
}

type File struct {
	name     string
	preamble string
	body     bytes.Buffer

	imports []*importEntry
	byKey   map[string]*importEntry
	// local identifier -> description of who declared it
	taken map[string]string
}

func NewFile(name string) *File {
	return &File{
		name:  name,
		byKey: map[string]*importEntry{},
		taken: map[string]string{},
	}
}

func (f *File) Name() string {
	return f.name
}

func (f *File) SetPreamble(preamble string) {
	f.preamble = preamble
}

// Export reserves name as a top-level identifier declared by this document.
// Reserving the same name twice is an error; origin describes the declaration
// and is reported back in that case.
func (f *File) Export(name, origin string) (Symbol, error) {
	if prev, ok := f.taken[name]; ok {
		return Symbol{}, errors.WithDetails(
			errors.WithMessagef(ErrNameTaken, "%s: %q", f.name, name),
			"identifier", name, "first", prev, "second", origin,
		)
	}
	f.taken[name] = origin
	return Local(name), nil
}

// Ref registers s with the import table if needed and returns the identifier
// by which s can be referenced in this document.
func (f *File) Ref(s Symbol) string {
	if s.From == "" {
		return s.Name
	}
	if e, ok := f.byKey[s.key()]; ok {
		if !s.TypeOnly {
			e.typeOnly = false
		}
		return e.local
	}
	local := s.Name
	for i := 1; ; i++ {
		if _, ok := f.taken[local]; !ok {
			break
		}
		local = fmt.Sprintf("%s$%d", s.Name, i)
	}
	f.taken[local] = "import from " + s.From
	e := &importEntry{
		name:     s.Name,
		from:     s.From,
		local:    local,
		typeOnly: s.TypeOnly,
	}
	f.imports = append(f.imports, e)
	f.byKey[s.key()] = e
	return local
}

// P prints a line consisting of the given values followed by a newline.
// Values may be strings, Symbols, slices of values, fmt.Stringers or any
// value printable with fmt.Sprint.
func (f *File) P(v ...any) {
	for _, x := range v {
		f.print(x)
	}
	f.body.WriteByte('\n')
}

func (f *File) print(x any) {
	switch x := x.(type) {
	case string:
		f.body.WriteString(x)
	case Symbol:
		f.body.WriteString(f.Ref(x))
	case []any:
		for _, y := range x {
			f.print(y)
		}
	case fmt.Stringer:
		f.body.WriteString(x.String())
	default:
		fmt.Fprint(&f.body, x)
	}
}

// Content returns the preamble, the import declarations and the body.
func (f *File) Content() []byte {
	var out bytes.Buffer
	if f.preamble != "" {
		out.WriteString(f.preamble)
		if !strings.HasSuffix(f.preamble, "\n") {
			out.WriteByte('\n')
		}
		out.WriteByte('\n')
	}
	if decls := f.importDecls(); len(decls) > 0 {
		for _, d := range decls {
			out.WriteString(d)
			out.WriteByte('\n')
		}
		out.WriteByte('\n')
	}
	out.Write(f.body.Bytes())
	return out.Bytes()
}

func (f *File) importDecls() []string {
	var modules []string
	byModule := map[string][]*importEntry{}
	for _, e := range f.imports {
		if _, ok := byModule[e.from]; !ok {
			modules = append(modules, e.from)
		}
		byModule[e.from] = append(byModule[e.from], e)
	}
	decls := make([]string, 0, len(modules))
	for _, m := range modules {
		entries := byModule[m]
		allTypes := true
		for _, e := range entries {
			allTypes = allTypes && e.typeOnly
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			n := e.name
			if e.local != e.name {
				n += " as " + e.local
			}
			if e.typeOnly && !allTypes {
				n = "type " + n
			}
			names = append(names, n)
		}
		kw := "import"
		if allTypes {
			kw = "import type"
		}
		decls = append(decls, fmt.Sprintf("%s { %s } from %q;", kw, strings.Join(names, ", "), m))
	}
	return decls
}
