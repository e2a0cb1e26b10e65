package nestjs

import (
	_ "embed"
	"strings"

	"github.com/flosch/pongo2/v6"
	"google.golang.org/protobuf/compiler/protogen"
)

const (
	PluginName = "protoc-gen-nestjs"
	Version    = "v0.1.0"
)

//go:embed preamble.ts.j2
var preambleSource []byte

var preambleTemplate = pongo2.Must(pongo2.FromBytes(preambleSource))

func preamble(gen *protogen.Plugin, f *protogen.File) (string, error) {
	out, err := preambleTemplate.Execute(pongo2.Context{
		"plugin":    PluginName,
		"version":   Version,
		"parameter": gen.Request.GetParameter(),
		"file":      f.Desc.Path(),
		"package":   string(f.Desc.Package()),
		"syntax":    f.Desc.Syntax().String(),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n") + "\n", nil
}
