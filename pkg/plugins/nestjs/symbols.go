package nestjs

import (
	"strings"

	"google.golang.org/protobuf/compiler/protogen"

	"github.com/kralicky/nestgen/pkg/tsgen"
)

const (
	rxjsModule          = "rxjs"
	nestCommonModule    = "@nestjs/common"
	nestMicroservices   = "@nestjs/microservices"
	wellKnownTypeModule = "@bufbuild/protobuf/wkt"
)

var (
	observable     = tsgen.ImportType("Observable", rxjsModule)
	firstValueFrom = tsgen.Import("firstValueFrom", rxjsModule)

	injectable   = tsgen.Import("Injectable", nestCommonModule)
	inject       = tsgen.Import("Inject", nestCommonModule)
	onModuleInit = tsgen.ImportType("OnModuleInit", nestCommonModule)

	clientGrpc       = tsgen.ImportType("ClientGrpc", nestMicroservices)
	grpcMethod       = tsgen.Import("GrpcMethod", nestMicroservices)
	grpcStreamMethod = tsgen.Import("GrpcStreamMethod", nestMicroservices)
)

// declared once per document
const (
	bindHelperName = "bindGrpcMethod"
	handleTypeName = "GrpcHandle"
)

// messageType returns the protobuf-es type of msg, imported from the module
// generated for the file that declares it.
func (g *fileGen) messageType(msg *protogen.Message) tsgen.Symbol {
	file := msg.Desc.ParentFile()
	name := string(msg.Desc.FullName())
	if pkg := string(file.Package()); pkg != "" {
		name = strings.TrimPrefix(name, pkg+".")
	}
	name = SafeIdentifier(strings.ReplaceAll(name, ".", "_"))

	if strings.HasPrefix(file.Path(), "google/protobuf/") {
		return tsgen.ImportType(name, wellKnownTypeModule)
	}
	target := strings.TrimSuffix(file.Path(), ".proto") + g.opts.PbSuffix
	return tsgen.ImportType(name, tsgen.RelativeImport(g.Name(), target, g.opts.ImportExtension))
}
