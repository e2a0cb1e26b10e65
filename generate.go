package nestgen

import (
	"context"
	"os"
	"path/filepath"

	"emperror.dev/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/pluginpb"
)

type GeneratedFile struct {
	// Path of the generated file, relative to the output directory.
	Name string
	// Generated file content.
	Content string
}

func (g *GeneratedFile) WriteToDisk(outDir string) error {
	path := filepath.Join(outDir, filepath.FromSlash(g.Name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(g.Content), 0644)
}

type GenerateCodeOptions struct {
	importPaths []string
	accessor    FileAccessor
	parameter   string
	logger      *zap.Logger
}

type GenerateCodeOption func(*GenerateCodeOptions)

func (o *GenerateCodeOptions) apply(opts ...GenerateCodeOption) {
	for _, op := range opts {
		op(o)
	}
}

func WithImportPaths(paths ...string) GenerateCodeOption {
	return func(o *GenerateCodeOptions) {
		o.importPaths = append(o.importPaths, paths...)
	}
}

// WithAccessor replaces the default file system accessor.
func WithAccessor(accessor FileAccessor) GenerateCodeOption {
	return func(o *GenerateCodeOptions) {
		o.accessor = accessor
	}
}

// WithParameter sets the parameter string recorded in the request, as protoc
// would pass it.
func WithParameter(parameter string) GenerateCodeOption {
	return func(o *GenerateCodeOptions) {
		o.parameter = parameter
	}
}

func WithLogger(lg *zap.Logger) GenerateCodeOption {
	return func(o *GenerateCodeOptions) {
		o.logger = lg
	}
}

// GenerateCode compiles the named proto files and runs each generator over
// them. Names are resolved by the accessor, relative to the import paths.
func GenerateCode(ctx context.Context, generators []Generator, filenames []string, opts ...GenerateCodeOption) ([]*GeneratedFile, error) {
	options := GenerateCodeOptions{
		logger: zap.NewNop(),
	}
	options.apply(opts...)
	if options.accessor == nil {
		options.accessor = SourceAccessor(options.importPaths...)
	}

	fds, err := ParseFiles(ctx, options.accessor, filenames...)
	if err != nil {
		return nil, errors.Wrap(err, "compiling proto sources")
	}
	options.logger.Debug("compiled sources", zap.Strings("files", filenames))

	req := &pluginpb.CodeGeneratorRequest{
		FileToGenerate: filenames,
		ProtoFile:      descriptorProtos(fds),
		CompilerVersion: &pluginpb.Version{
			Major: lo.ToPtr[int32](1),
			Minor: lo.ToPtr[int32](0),
			Patch: lo.ToPtr[int32](0),
		},
	}
	if options.parameter != "" {
		req.Parameter = lo.ToPtr(options.parameter)
	}

	response := Run(req, nil, func() []Generator { return generators })
	if response.Error != nil {
		return nil, errors.New(response.GetError())
	}

	outputs := make([]*GeneratedFile, 0, len(response.GetFile()))
	for _, f := range response.GetFile() {
		outputs = append(outputs, &GeneratedFile{
			Name:    f.GetName(),
			Content: f.GetContent(),
		})
	}
	return outputs, nil
}
