// Package nestjs generates NestJS gRPC bindings for protobuf services: a
// method-surface interface, a decorator factory binding implementation
// methods to GrpcMethod/GrpcStreamMethod, and an injectable client.
package nestjs

import (
	"strings"

	"emperror.dev/errors"
	"go.uber.org/zap"
	"google.golang.org/protobuf/compiler/protogen"
	"google.golang.org/protobuf/types/pluginpb"

	"github.com/kralicky/nestgen/pkg/tsgen"
)

const (
	ErrUnknownStreamingMode = errors.Sentinel("unknown streaming mode")
	ErrNameCollision        = errors.Sentinel("generated name collision")
	ErrDuplicateToken       = errors.Sentinel("duplicate injection token")
)

type generator struct {
	opts   Options
	modeOf func(*protogen.Method) StreamingMode
}

func NewGenerator(opts ...Option) *generator {
	options := DefaultOptions()
	options.apply(opts...)
	return &generator{
		opts:   options,
		modeOf: ModeOf,
	}
}

func (*generator) Name() string {
	return "nestjs"
}

func (g *generator) Generate(gen *protogen.Plugin) error {
	opts := g.opts
	if err := opts.validate(); err != nil {
		return err
	}
	gen.SupportedFeatures |= uint64(pluginpb.CodeGeneratorResponse_FEATURE_PROTO3_OPTIONAL)

	lg := opts.Logger.Named(g.Name())
	tokens := map[string]string{}
	for _, f := range gen.Files {
		if !f.Generate {
			continue
		}
		if len(f.Services) == 0 {
			lg.Debug("no services, skipping", zap.String("file", f.Desc.Path()))
			continue
		}
		doc, err := g.generateFile(gen, f, &opts, lg, tokens)
		if err != nil {
			return errors.WithDetails(err, "file", f.Desc.Path())
		}
		out := gen.NewGeneratedFile(doc.Name(), "")
		if _, err := out.Write(doc.Content()); err != nil {
			return err
		}
		lg.Debug("generated", zap.String("file", f.Desc.Path()), zap.String("output", doc.Name()))
	}
	return nil
}

type fileGen struct {
	*tsgen.File
	opts   *Options
	modeOf func(*protogen.Method) StreamingMode

	bindHelper tsgen.Symbol
	handleType tsgen.Symbol
}

func (g *generator) generateFile(gen *protogen.Plugin, f *protogen.File, opts *Options, lg *zap.Logger, tokens map[string]string) (*tsgen.File, error) {
	name := strings.TrimSuffix(f.Desc.Path(), ".proto") + opts.fileSuffix() + ".ts"
	fg := &fileGen{
		File:   tsgen.NewFile(name),
		opts:   opts,
		modeOf: g.modeOf,
	}
	header, err := preamble(gen, f)
	if err != nil {
		return nil, errors.Wrap(err, "rendering preamble")
	}
	fg.SetPreamble(header)

	if fg.bindHelper, err = fg.Export(bindHelperName, "binder helper"); err != nil {
		return nil, err
	}
	if opts.EmitClient {
		if fg.handleType, err = fg.Export(handleTypeName, "client handle type"); err != nil {
			return nil, err
		}
	}

	// reserve every identifier before printing so imports are aliased around them
	var errs error
	plans := make([]*serviceNames, 0, len(f.Services))
	for _, svc := range f.Services {
		n, err := fg.planService(svc)
		if err != nil {
			errs = errors.Append(errs, err)
			continue
		}
		if opts.EmitClient {
			if prev, ok := tokens[n.tokenValue]; ok {
				errs = errors.Append(errs, errors.WithDetails(
					errors.WithMessagef(ErrDuplicateToken, "%q", n.tokenValue),
					"service", string(svc.Desc.FullName()), "first", prev,
				))
				continue
			}
			tokens[n.tokenValue] = f.Desc.Path()
		}
		plans = append(plans, n)
	}
	if errs != nil {
		return nil, errs
	}

	for i, n := range plans {
		lg.Debug("generating service",
			zap.String("service", string(n.service.Desc.FullName())),
			zap.Int("methods", len(n.service.Methods)),
		)
		if i != 0 {
			fg.P()
		}
		if err := fg.emitInterface(n); err != nil {
			return nil, errors.WithDetails(err, "service", string(n.service.Desc.FullName()))
		}
		if err := fg.emitBinder(n); err != nil {
			return nil, errors.WithDetails(err, "service", string(n.service.Desc.FullName()))
		}
		if opts.EmitClient {
			if err := fg.emitClient(n); err != nil {
				return nil, errors.WithDetails(err, "service", string(n.service.Desc.FullName()))
			}
		}
	}
	fg.emitBindHelper()
	if opts.EmitClient {
		fg.emitHandleType()
	}
	return fg.File, nil
}
