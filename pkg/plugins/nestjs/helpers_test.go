package nestjs

import (
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/compiler/protogen"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/pluginpb"
)

func newPlugin(t *testing.T, param string, files ...*descriptorpb.FileDescriptorProto) *protogen.Plugin {
	t.Helper()
	req := &pluginpb.CodeGeneratorRequest{ProtoFile: files}
	if param != "" {
		req.Parameter = lo.ToPtr(param)
	}
	for _, f := range files {
		if !strings.HasPrefix(f.GetName(), "google/") {
			req.FileToGenerate = append(req.FileToGenerate, f.GetName())
		}
	}
	opts := DefaultOptions()
	gen, err := protogen.Options{ParamFunc: opts.Set}.New(req)
	require.NoError(t, err)
	return gen
}

func protoFile(name, pkg string, messages []string, services ...*descriptorpb.ServiceDescriptorProto) *descriptorpb.FileDescriptorProto {
	fd := &descriptorpb.FileDescriptorProto{
		Name:    lo.ToPtr(name),
		Package: lo.ToPtr(pkg),
		Syntax:  lo.ToPtr("proto3"),
		Options: &descriptorpb.FileOptions{
			GoPackage: lo.ToPtr("example.com/" + strings.ReplaceAll(pkg, ".", "/")),
		},
		Service: services,
	}
	for _, m := range messages {
		fd.MessageType = append(fd.MessageType, &descriptorpb.DescriptorProto{Name: lo.ToPtr(m)})
	}
	return fd
}

func service(name string, methods ...*descriptorpb.MethodDescriptorProto) *descriptorpb.ServiceDescriptorProto {
	return &descriptorpb.ServiceDescriptorProto{Name: lo.ToPtr(name), Method: methods}
}

func rpc(name, in, out string, clientStreaming, serverStreaming bool) *descriptorpb.MethodDescriptorProto {
	return &descriptorpb.MethodDescriptorProto{
		Name:            lo.ToPtr(name),
		InputType:       lo.ToPtr(in),
		OutputType:      lo.ToPtr(out),
		ClientStreaming: lo.ToPtr(clientStreaming),
		ServerStreaming: lo.ToPtr(serverStreaming),
	}
}

func greeterFile() *descriptorpb.FileDescriptorProto {
	fd := protoFile("greeter/v1/greeter.proto", "greeter.v1", []string{"HelloRequest", "HelloResponse"},
		service("Greeter",
			rpc("SayHello", ".greeter.v1.HelloRequest", ".greeter.v1.HelloResponse", false, false),
			rpc("StreamHellos", ".greeter.v1.HelloRequest", ".greeter.v1.HelloResponse", false, true),
		),
	)
	fd.SourceCodeInfo = &descriptorpb.SourceCodeInfo{
		Location: []*descriptorpb.SourceCodeInfo_Location{
			{
				Path:            []int32{6, 0},
				Span:            []int32{4, 0, 8, 1},
				LeadingComments: lo.ToPtr(" Greeter says hello.\n"),
			},
		},
	}
	return fd
}

// generate runs g over files and returns the generated documents by name.
func generate(t *testing.T, g *generator, files ...*descriptorpb.FileDescriptorProto) map[string]string {
	t.Helper()
	gen := newPlugin(t, "", files...)
	require.NoError(t, g.Generate(gen))
	resp := gen.Response()
	require.Nil(t, resp.Error, resp.GetError())
	out := map[string]string{}
	for _, f := range resp.File {
		out[f.GetName()] = f.GetContent()
	}
	return out
}

func diffStrings(a, b string) string {
	text, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	return text
}
