package nestjs

import (
	"emperror.dev/errors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/kralicky/nestgen/pkg/tsgen"
)

type Options struct {
	// Generate an injectable client class and name the method-surface
	// interface "<Service>Service". When false, only the controller surface
	// ("<Service>Controller") and the binder are generated.
	EmitClient bool `toml:"client"`
	// Suffix appended to the proto file name (without the .proto extension)
	// to form the generated file name. Defaults to "_nestjs" or
	// "_nestjs_controller" depending on EmitClient.
	FileSuffix string `toml:"file_suffix"`
	// Extension appended to relative import specifiers.
	ImportExtension tsgen.ImportExtension `toml:"import_extension"`
	// Suffix of the modules holding the message types, as written by
	// protoc-gen-es.
	PbSuffix string `toml:"pb_suffix"`

	Logger *zap.Logger `toml:"-"`
}

type Option func(*Options)

func (o *Options) apply(opts ...Option) {
	for _, op := range opts {
		op(o)
	}
}

func DefaultOptions() Options {
	return Options{
		EmitClient:      true,
		ImportExtension: tsgen.ExtensionNone,
		PbSuffix:        "_pb",
		Logger:          zap.NewNop(),
	}
}

func WithOptions(opts Options) Option {
	return func(o *Options) {
		lg := o.Logger
		*o = opts
		if o.Logger == nil {
			o.Logger = lg
		}
	}
}

func WithEmitClient(emit bool) Option {
	return func(o *Options) {
		o.EmitClient = emit
	}
}

func WithFileSuffix(suffix string) Option {
	return func(o *Options) {
		o.FileSuffix = suffix
	}
}

func WithImportExtension(ext tsgen.ImportExtension) Option {
	return func(o *Options) {
		o.ImportExtension = ext
	}
}

func WithLogger(lg *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = lg
	}
}

// FlagSet returns flags bound to o, using the current values as defaults.
func (o *Options) FlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("nestjs", pflag.ContinueOnError)
	fs.BoolVar(&o.EmitClient, "client", o.EmitClient, "generate an injectable client class (false generates controllers only)")
	fs.StringVar(&o.FileSuffix, "file_suffix", o.FileSuffix, "suffix of generated file names (default _nestjs or _nestjs_controller)")
	fs.Var(extensionValue{&o.ImportExtension}, "import_extension", "extension of relative imports: none, js or ts")
	fs.StringVar(&o.PbSuffix, "pb_suffix", o.PbSuffix, "suffix of the protobuf-es message modules")
	return fs
}

// Set assigns a single plugin parameter. It has the signature of
// protogen.Options.ParamFunc.
func (o *Options) Set(name, value string) error {
	fs := o.FlagSet()
	f := fs.Lookup(name)
	if f == nil {
		return errors.Errorf("unknown parameter %q", name)
	}
	if value == "" && f.NoOptDefVal != "" {
		value = f.NoOptDefVal
	}
	return errors.Wrapf(fs.Set(name, value), "invalid value for parameter %q", name)
}

type extensionValue struct {
	ext *tsgen.ImportExtension
}

func (v extensionValue) String() string {
	if v.ext == nil || *v.ext == "" {
		return string(tsgen.ExtensionNone)
	}
	return string(*v.ext)
}

func (v extensionValue) Set(s string) error {
	ext, err := tsgen.ParseImportExtension(s)
	if err != nil {
		return err
	}
	*v.ext = ext
	return nil
}

func (extensionValue) Type() string { return "extension" }

func (o *Options) validate() error {
	ext, err := tsgen.ParseImportExtension(string(o.ImportExtension))
	if err != nil {
		return err
	}
	o.ImportExtension = ext
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return nil
}

func (o *Options) role() string {
	if o.EmitClient {
		return "Service"
	}
	return "Controller"
}

func (o *Options) fileSuffix() string {
	switch {
	case o.FileSuffix != "":
		return o.FileSuffix
	case o.EmitClient:
		return "_nestjs"
	default:
		return "_nestjs_controller"
	}
}
