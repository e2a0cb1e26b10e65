package external

import (
	"io"
	"os"
	"testing"

	"emperror.dev/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/compiler/protogen"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/pluginpb"
)

const fakePluginEnv = "NESTGEN_FAKE_PLUGIN"

// TestMain lets the test binary act as a protoc plugin when re-executed with
// fakePluginEnv set.
func TestMain(m *testing.M) {
	switch os.Getenv(fakePluginEnv) {
	case "":
		os.Exit(m.Run())
	case "error":
		writeResponse(&pluginpb.CodeGeneratorResponse{Error: lo.ToPtr("bad things")})
	case "crash":
		os.Stderr.WriteString("boom\n")
		os.Exit(3)
	case "insert":
		writeResponse(&pluginpb.CodeGeneratorResponse{
			File: []*pluginpb.CodeGeneratorResponse_File{
				{Name: lo.ToPtr("a.ts"), InsertionPoint: lo.ToPtr("imports"), Content: lo.ToPtr("x")},
			},
		})
	default:
		in, _ := io.ReadAll(os.Stdin)
		req := &pluginpb.CodeGeneratorRequest{}
		if err := proto.Unmarshal(in, req); err != nil {
			os.Exit(2)
		}
		var files []*pluginpb.CodeGeneratorResponse_File
		for _, name := range req.GetFileToGenerate() {
			files = append(files,
				&pluginpb.CodeGeneratorResponse_File{
					Name:    lo.ToPtr(name + "_pb.ts"),
					Content: lo.ToPtr("// param=" + req.GetParameter() + "\n"),
				},
				&pluginpb.CodeGeneratorResponse_File{
					Content: lo.ToPtr("export {};\n"),
				},
			)
		}
		writeResponse(&pluginpb.CodeGeneratorResponse{File: files})
	}
	os.Exit(0)
}

func writeResponse(resp *pluginpb.CodeGeneratorResponse) {
	out, _ := proto.Marshal(resp)
	os.Stdout.Write(out)
}

func fakePlugin(t *testing.T, mode string, opt string) *extGenerator {
	t.Helper()
	exe, err := os.Executable()
	require.NoError(t, err)
	return NewGenerator([]string{exe}, GeneratorOptions{
		Opt: opt,
		Env: []string{fakePluginEnv + "=" + mode},
	})
}

func newPlugin(t *testing.T) *protogen.Plugin {
	t.Helper()
	gen, err := protogen.Options{}.New(&pluginpb.CodeGeneratorRequest{
		FileToGenerate: []string{"a.proto"},
		Parameter:      lo.ToPtr("client=false"),
		ProtoFile: []*descriptorpb.FileDescriptorProto{{
			Name:    lo.ToPtr("a.proto"),
			Package: lo.ToPtr("a"),
			Syntax:  lo.ToPtr("proto3"),
			Options: &descriptorpb.FileOptions{GoPackage: lo.ToPtr("example.com/a")},
		}},
	})
	require.NoError(t, err)
	return gen
}

func TestGenerateCopiesFiles(t *testing.T) {
	gen := newPlugin(t)
	g := fakePlugin(t, "ok", "target=ts")
	require.NoError(t, g.Generate(gen))

	resp := gen.Response()
	require.Nil(t, resp.Error)
	require.Len(t, resp.File, 1)
	assert.Equal(t, "a.proto_pb.ts", resp.File[0].GetName())
	assert.Equal(t, "// param=target=ts\nexport {};\n", resp.File[0].GetContent())
}

func TestGenerateDoesNotForwardParameter(t *testing.T) {
	gen := newPlugin(t)
	g := fakePlugin(t, "ok", "")
	require.NoError(t, g.Generate(gen))
	assert.Equal(t, "// param=\nexport {};\n", gen.Response().File[0].GetContent())
}

func TestGenerateErrors(t *testing.T) {
	for _, mode := range []string{"error", "crash", "insert"} {
		t.Run(mode, func(t *testing.T) {
			err := fakePlugin(t, mode, "").Generate(newPlugin(t))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrPluginFailed))
		})
	}
}

func TestCrashIncludesStderr(t *testing.T) {
	err := fakePlugin(t, "crash", "").Generate(newPlugin(t))
	details := errors.GetDetails(err)
	assert.Contains(t, details, "boom")
}

func TestNoCommand(t *testing.T) {
	g := NewGenerator(nil, GeneratorOptions{})
	assert.Equal(t, "x-", g.Name())
	assert.ErrorIs(t, g.Generate(newPlugin(t)), ErrPluginFailed)
}

func TestName(t *testing.T) {
	g := NewGenerator([]string{"/usr/local/bin/protoc-gen-es", "--flag"}, GeneratorOptions{})
	assert.Equal(t, "x-protoc-gen-es", g.Name())
}
