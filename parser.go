package nestgen

import (
	"context"
	"io"

	"github.com/bufbuild/protocompile"
	"github.com/bufbuild/protocompile/linker"
	"github.com/bufbuild/protocompile/reporter"
	"github.com/bufbuild/protocompile/walk"
	"github.com/jhump/protoreflect/desc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

type FileAccessor = func(path string) (io.ReadCloser, error)

func NewResolver(accessor FileAccessor) protocompile.Resolver {
	return protocompile.CompositeResolver{
		protocompile.WithStandardImports(&protocompile.SourceResolver{
			Accessor: accessor,
		}),
		// anything linked into this binary's global registry
		protocompile.ResolverFunc(func(path string) (protocompile.SearchResult, error) {
			fd, err := desc.LoadFileDescriptor(path)
			if err != nil {
				return protocompile.SearchResult{}, err
			}
			return protocompile.SearchResult{Desc: fd.UnwrapFile()}, nil
		}),
	}
}

func ParseFiles(ctx context.Context, accessor FileAccessor, filenames ...string) ([]*desc.FileDescriptor, error) {
	c := protocompile.Compiler{
		Resolver:       NewResolver(accessor),
		MaxParallelism: -1,
		SourceInfoMode: protocompile.SourceInfoExtraComments,
		Reporter:       reporter.NewReporter(nil, nil),
	}
	results, err := c.Compile(ctx, filenames...)
	if err != nil {
		return nil, err
	}
	fds := make([]protoreflect.FileDescriptor, len(results))
	for i, result := range results {
		if linkRes, ok := result.(linker.Result); ok {
			stripDynamicOptions(linkRes.FileDescriptorProto())
		}
		fds[i] = result
	}
	return desc.WrapFiles(fds)
}

// descriptorProtos returns fds and all of their transitive dependencies,
// each file listed after everything it imports.
func descriptorProtos(fds []*desc.FileDescriptor) []*descriptorpb.FileDescriptorProto {
	seen := map[string]struct{}{}
	var out []*descriptorpb.FileDescriptorProto
	var visit func(fd *desc.FileDescriptor)
	visit = func(fd *desc.FileDescriptor) {
		if _, ok := seen[fd.GetName()]; ok {
			return
		}
		seen[fd.GetName()] = struct{}{}
		for _, dep := range fd.GetDependencies() {
			visit(dep)
		}
		out = append(out, fd.AsFileDescriptorProto())
	}
	for _, fd := range fds {
		visit(fd)
	}
	return out
}

// stripDynamicOptions re-encodes custom options declared in the compiled
// sources so every options message holds only statically known fields.
// Options the generators read (deprecated) stay typed, custom ones become
// unknown fields. Best effort: an options message that fails to round trip
// is left as is.
func stripDynamicOptions(fd *descriptorpb.FileDescriptorProto) {
	fd.Options = staticOptions(fd.Options)
	_ = walk.DescriptorProtos(fd, func(_ protoreflect.FullName, msg proto.Message) error {
		switch msg := msg.(type) {
		case *descriptorpb.DescriptorProto:
			msg.Options = staticOptions(msg.Options)
			for _, extr := range msg.ExtensionRange {
				extr.Options = staticOptions(extr.Options)
			}
		case *descriptorpb.FieldDescriptorProto:
			msg.Options = staticOptions(msg.Options)
		case *descriptorpb.OneofDescriptorProto:
			msg.Options = staticOptions(msg.Options)
		case *descriptorpb.EnumDescriptorProto:
			msg.Options = staticOptions(msg.Options)
		case *descriptorpb.EnumValueDescriptorProto:
			msg.Options = staticOptions(msg.Options)
		case *descriptorpb.ServiceDescriptorProto:
			msg.Options = staticOptions(msg.Options)
		case *descriptorpb.MethodDescriptorProto:
			msg.Options = staticOptions(msg.Options)
		}
		return nil
	})
}

type optionsMessage[T any] interface {
	*T
	proto.Message
}

func staticOptions[O optionsMessage[T], T any](opts O) O {
	if opts == nil {
		return nil
	}
	var extensions []protoreflect.FieldDescriptor
	dynamic := opts.ProtoReflect().Type().New()
	opts.ProtoReflect().Range(func(fd protoreflect.FieldDescriptor, val protoreflect.Value) bool {
		if fd.IsExtension() {
			extensions = append(extensions, fd)
			dynamic.Set(fd, val)
		}
		return true
	})
	if len(extensions) == 0 {
		return opts
	}
	data, err := proto.MarshalOptions{AllowPartial: true}.Marshal(dynamic.Interface())
	if err != nil {
		return opts
	}
	clone := proto.Clone(opts).ProtoReflect()
	for _, fd := range extensions {
		clone.Clear(fd)
	}
	if err := (proto.UnmarshalOptions{AllowPartial: true, Merge: true}).Unmarshal(data, clone.Interface()); err != nil {
		return opts
	}
	return clone.Interface().(O)
}
