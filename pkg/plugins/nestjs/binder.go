package nestjs

import (
	"strconv"
	"strings"

	"emperror.dev/errors"
	"github.com/samber/lo"
	"google.golang.org/protobuf/compiler/protogen"

	"github.com/kralicky/nestgen/pkg/tsgen"
)

// partition splits methods into those taking a single request and those
// taking a request stream. Relative order is preserved in both groups.
func (g *fileGen) partition(methods []*protogen.Method) (unary, streaming []*protogen.Method, err error) {
	unary = []*protogen.Method{}
	streaming = []*protogen.Method{}
	for _, m := range methods {
		shape, err := Classify(g.modeOf(m))
		if err != nil {
			return nil, nil, errors.WithDetails(err, "method", string(m.Desc.Name()))
		}
		if shape.StreamingRequest {
			streaming = append(streaming, m)
		} else {
			unary = append(unary, m)
		}
	}
	return unary, streaming, nil
}

// emitBinder writes the class decorator factory attaching GrpcMethod to every
// single-request rpc and GrpcStreamMethod to every streaming-request rpc.
func (g *fileGen) emitBinder(n *serviceNames) error {
	unary, streaming, err := g.partition(n.service.Methods)
	if err != nil {
		return err
	}
	g.P()
	g.P("export function ", n.binder, "() {")
	g.P("  return function (constructor: Function) {")
	g.bindLoop(n, grpcMethod, unary)
	g.bindLoop(n, grpcStreamMethod, streaming)
	g.P("  };")
	g.P("}")
	return nil
}

func (g *fileGen) bindLoop(n *serviceNames, strategy tsgen.Symbol, methods []*protogen.Method) {
	names := lo.Map(methods, func(m *protogen.Method, _ int) string {
		return strconv.Quote(n.methods[m])
	})
	g.P("    for (const method of [", strings.Join(names, ", "), "] as string[]) {")
	g.P("      ", g.bindHelper, "(constructor, ", strategy, ", ", strconv.Quote(string(n.service.Desc.Name())), ", method);")
	g.P("    }")
}

// emitBindHelper writes the registration function called by every binder.
// Handlers may be inherited. A method missing from the whole prototype chain
// is a configuration error.
func (g *fileGen) emitBindHelper() {
	g.P()
	g.P("function ", g.bindHelper, "(")
	g.P("  constructor: Function,")
	g.P("  strategy: (service: string, method: string) => MethodDecorator,")
	g.P("  service: string,")
	g.P("  method: string,")
	g.P("): void {")
	g.P("  let descriptor: PropertyDescriptor | undefined;")
	g.P("  for (let proto = constructor.prototype; descriptor === undefined && proto !== null && proto !== Object.prototype; proto = Object.getPrototypeOf(proto)) {")
	g.P("    descriptor = Reflect.getOwnPropertyDescriptor(proto, method);")
	g.P("  }")
	g.P("  if (descriptor === undefined) {")
	g.P("    throw new Error(`${constructor.name} does not implement ${service}.${method}`);")
	g.P("  }")
	g.P("  strategy(service, method)(constructor.prototype, method, descriptor);")
	g.P("}")
}
