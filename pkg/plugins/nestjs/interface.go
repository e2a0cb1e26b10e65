package nestjs

import (
	"emperror.dev/errors"
	"google.golang.org/protobuf/compiler/protogen"
)

func (g *fileGen) signature(m *protogen.Method, n *serviceNames) ([]any, Shape, error) {
	shape, err := Classify(g.modeOf(m))
	if err != nil {
		return nil, Shape{}, errors.WithDetails(err, "method", string(m.Desc.Name()))
	}
	return []any{
		n.methods[m], "(request: ", shape.Request(g.messageType(m.Input)), "): ",
		shape.Response(g.messageType(m.Output)),
	}, shape, nil
}

// emitInterface writes the method-surface interface, one signature per rpc in
// declaration order.
func (g *fileGen) emitInterface(n *serviceNames) error {
	g.P(serviceDoc(n.service))
	g.P("export interface ", n.surface, " {")
	for i, m := range n.service.Methods {
		if i != 0 {
			g.P()
		}
		sig, _, err := g.signature(m, n)
		if err != nil {
			return err
		}
		g.P(methodDoc(m))
		g.P("  ", sig, ";")
	}
	g.P("}")
	return nil
}
