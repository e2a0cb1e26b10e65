package nestgen

import (
	"io"
	"path"

	"emperror.dev/errors"
	"github.com/samber/lo"
	"google.golang.org/protobuf/compiler/protogen"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/pluginpb"
)

// placeholder import path root for files without a go_package option; protogen
// refuses to load those otherwise
const syntheticGoPackageRoot = "nestgen.invalid"

// RunPlugin reads a CodeGeneratorRequest from r, runs the generators returned
// by generators and writes the CodeGeneratorResponse to w. paramFunc receives
// every plugin parameter before generators is called.
func RunPlugin(r io.Reader, w io.Writer, paramFunc func(name, value string) error, generators func() []Generator) error {
	in, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "reading code generator request")
	}
	req := &pluginpb.CodeGeneratorRequest{}
	if err := proto.Unmarshal(in, req); err != nil {
		return errors.Wrap(err, "unmarshaling code generator request")
	}
	out, err := proto.Marshal(Run(req, paramFunc, generators))
	if err != nil {
		return errors.Wrap(err, "marshaling code generator response")
	}
	_, err = w.Write(out)
	return err
}

// Run executes generators against req. Failures are reported in the
// response, as protoc expects.
func Run(req *pluginpb.CodeGeneratorRequest, paramFunc func(name, value string) error, generators func() []Generator) *pluginpb.CodeGeneratorResponse {
	ensureGoPackages(req.GetProtoFile())
	plugin, err := protogen.Options{ParamFunc: paramFunc}.New(req)
	if err != nil {
		return &pluginpb.CodeGeneratorResponse{Error: lo.ToPtr(err.Error())}
	}
	plugin.SupportedFeatures = uint64(pluginpb.CodeGeneratorResponse_FEATURE_PROTO3_OPTIONAL) |
		uint64(pluginpb.CodeGeneratorResponse_FEATURE_SUPPORTS_EDITIONS)
	plugin.SupportedEditionsMinimum = descriptorpb.Edition_EDITION_PROTO2
	plugin.SupportedEditionsMaximum = descriptorpb.Edition_EDITION_2023

	for _, g := range generators() {
		if err := g.Generate(plugin); err != nil {
			plugin.Error(errors.WithMessagef(err, "%s", g.Name()))
			break
		}
	}
	return plugin.Response()
}

func ensureGoPackages(files []*descriptorpb.FileDescriptorProto) {
	for _, fd := range files {
		if fd.GetOptions().GetGoPackage() != "" {
			continue
		}
		if fd.Options == nil {
			fd.Options = &descriptorpb.FileOptions{}
		}
		fd.Options.GoPackage = lo.ToPtr(path.Join(syntheticGoPackageRoot, path.Dir(fd.GetName())))
	}
}
