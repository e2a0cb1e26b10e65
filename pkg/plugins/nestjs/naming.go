package nestjs

import (
	"strings"
	"unicode"

	"emperror.dev/errors"
	"github.com/iancoleman/strcase"
	"google.golang.org/protobuf/compiler/protogen"

	"github.com/kralicky/nestgen/pkg/tsgen"
)

var reservedIdentifiers = toSet(
	// keywords
	"break", "case", "catch", "class", "const", "continue", "debugger", "default",
	"delete", "do", "else", "enum", "export", "extends", "false", "finally", "for",
	"function", "if", "import", "in", "instanceof", "new", "null", "return", "super",
	"switch", "this", "throw", "true", "try", "typeof", "var", "void", "while", "with",
	"as", "implements", "interface", "let", "package", "private", "protected", "public",
	"static", "yield", "any", "boolean", "constructor", "declare", "get", "module",
	"require", "number", "set", "string", "symbol", "type", "from", "of", "await", "async",
	// globals the generated code relies on
	"Array", "Boolean", "Error", "Function", "Map", "Number", "Object", "Promise",
	"Record", "Reflect", "Set", "String", "Symbol", "Uint8Array", "globalThis", "undefined",
)

// members of the generated client class and of Object.prototype
var reservedMembers = toSet("constructor", "onModuleInit", "client", "grpc", "toString", "toJSON", "valueOf")

func toSet(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

// SafeIdentifier maps a schema name to a valid TypeScript identifier. The same
// input always yields the same identifier.
func SafeIdentifier(name string) string {
	id := identifierChars(name)
	if _, ok := reservedIdentifiers[id]; ok {
		id += "$"
	}
	return id
}

// identifierChars replaces characters that cannot appear in an identifier.
// Keywords are left alone; they are valid as member names.
func identifierChars(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

func methodLocalName(m *protogen.Method) string {
	name := identifierChars(strcase.ToLowerCamel(string(m.Desc.Name())))
	if _, ok := reservedMembers[name]; ok {
		name += "$"
	}
	return name
}

// serviceNames holds the identifiers generated for one service.
type serviceNames struct {
	service    *protogen.Service
	base       string
	surface    tsgen.Symbol
	binder     tsgen.Symbol
	client     tsgen.Symbol
	token      tsgen.Symbol
	tokenValue string
	methods    map[*protogen.Method]string
}

func tokenName(base string) string {
	return "INJECTED_" + strings.ToUpper(base) + "_PACKAGE"
}

// planService reserves every top-level identifier of svc in the document and
// computes method local names. All collisions are reported together.
func (g *fileGen) planService(svc *protogen.Service) (*serviceNames, error) {
	base := identifierChars(string(svc.Desc.Name()))
	origin := "service " + string(svc.Desc.FullName())
	n := &serviceNames{
		service:    svc,
		base:       base,
		tokenValue: string(svc.Desc.FullName()),
		methods:    make(map[*protogen.Method]string, len(svc.Methods)),
	}

	var errs error
	reserve := func(name string) tsgen.Symbol {
		sym, err := g.Export(name, origin)
		if err != nil {
			errs = errors.Append(errs, collision(err))
		}
		return sym
	}
	n.surface = reserve(SafeIdentifier(base + g.opts.role()))
	n.binder = reserve(SafeIdentifier(base + "Methods"))
	if g.opts.EmitClient {
		n.client = reserve(SafeIdentifier(base + "Client"))
		n.token = reserve(SafeIdentifier(tokenName(base)))
	}

	seen := map[string]*protogen.Method{}
	for _, m := range svc.Methods {
		local := methodLocalName(m)
		if prev, ok := seen[local]; ok {
			errs = errors.Append(errs, errors.WithDetails(
				errors.WithMessagef(ErrNameCollision, "methods %s and %s both map to %q",
					prev.Desc.Name(), m.Desc.Name(), local),
				"method", string(m.Desc.Name()),
			))
			continue
		}
		seen[local] = m
		n.methods[m] = local
	}
	if errs != nil {
		return nil, errors.WithDetails(errs, "service", string(svc.Desc.FullName()))
	}
	return n, nil
}

func collision(err error) error {
	return errors.WithDetails(errors.WithMessage(ErrNameCollision, err.Error()), errors.GetDetails(err)...)
}
