package nestgen

import (
	"google.golang.org/protobuf/compiler/protogen"

	"github.com/kralicky/nestgen/pkg/plugins/external"
	"github.com/kralicky/nestgen/pkg/plugins/nestjs"
)

type Generator interface {
	Name() string
	Generate(gen *protogen.Plugin) error
}

func DefaultGenerators(opts ...nestjs.Option) []Generator {
	return []Generator{
		nestjs.NewGenerator(opts...),
	}
}

// AllGenerators runs an external protobuf-es plugin for the message types in
// addition to the nestjs generator.
func AllGenerators(es ESConfig, opts ...nestjs.Option) []Generator {
	return []Generator{
		external.NewGenerator(es.Command, external.GeneratorOptions{Opt: es.Opt}),
		nestjs.NewGenerator(opts...),
	}
}
