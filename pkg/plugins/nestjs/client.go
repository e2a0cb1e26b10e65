package nestjs

import (
	"strconv"
)

// emitClient writes the injection token and the injectable client class
// delegating every rpc to the ClientGrpc service handle.
func (g *fileGen) emitClient(n *serviceNames) error {
	g.P()
	g.P("export const ", n.token, " = ", strconv.Quote(n.tokenValue), ";")
	g.P()
	g.P(serviceDoc(n.service))
	g.P("@", injectable, "()")
	g.P("export class ", n.client, " implements ", onModuleInit, ", ", n.surface, " {")
	g.P("  private client!: ", g.handleType, ";")
	g.P()
	g.P("  constructor(@", inject, "(", n.token, ") private readonly grpc: ", clientGrpc, ") {}")
	g.P()
	g.P("  onModuleInit(): void {")
	g.P("    this.client = this.grpc.getService<", g.handleType, ">(", strconv.Quote(string(n.service.Desc.Name())), ");")
	g.P("  }")
	for _, m := range n.service.Methods {
		sig, shape, err := g.signature(m, n)
		if err != nil {
			return err
		}
		g.P()
		g.P(methodDoc(m))
		g.P("  ", sig, " {")
		call := []any{"this.client.", n.methods[m], "(request)"}
		if shape.StreamingResponse {
			g.P("    return ", call, ";")
		} else {
			g.P("    return ", firstValueFrom, "(", call, ");")
		}
		g.P("  }")
	}
	g.P("}")
	return nil
}

func (g *fileGen) emitHandleType() {
	g.P()
	g.P("type ", g.handleType, " = { [method: string]: (request: any) => ", observable, "<any> };")
}
