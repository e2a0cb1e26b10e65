package cmd

import (
	"fmt"
	"os"
	"strings"

	"emperror.dev/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/kralicky/nestgen"
	"github.com/kralicky/nestgen/pkg/plugins/nestjs"
)

func BuildRootCmd() *cobra.Command {
	var (
		outDir      string
		importPaths []string
		configPath  string
		logLevel    string
		withES      bool
		esCommand   []string
		esOpt       string
	)
	flagOpts := nestjs.DefaultOptions()

	rootCmd := &cobra.Command{
		Use:   "nestgen [proto files...]",
		Short: "Generate NestJS gRPC services, controllers and clients without protoc",
		Example: `$ nestgen greeter/v1/greeter.proto
  # generates ./greeter/v1/greeter_nestjs.ts
$ nestgen --client=false -o src/gen greeter/v1/greeter.proto
  # generates ./src/gen/greeter/v1/greeter_nestjs_controller.ts
$ nestgen --es -I proto -o src/gen proto/greeter/v1/greeter.proto
  # also runs protoc-gen-es, generating ./src/gen/greeter/v1/greeter_pb.ts`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := nestgen.DefaultConfig()
			if configPath != "" {
				var err error
				if cfg, err = nestgen.LoadConfig(configPath); err != nil {
					return err
				}
			}

			// explicit flags take precedence over the config file
			var setErr error
			cmd.Flags().Visit(func(f *pflag.Flag) {
				switch f.Name {
				case "output":
					cfg.Output = outDir
				case "import_path":
					cfg.ImportPaths = importPaths
				case "log_level":
					cfg.LogLevel = logLevel
				case "es", "es_command", "es_opt":
					if cfg.ES == nil {
						cfg.ES = nestgen.DefaultESConfig()
					}
					if f.Name == "es_command" {
						cfg.ES.Command = esCommand
					} else if f.Name == "es_opt" {
						cfg.ES.Opt = esOpt
					}
				default:
					if flagOpts.FlagSet().Lookup(f.Name) != nil {
						setErr = errors.Append(setErr, cfg.Options.Set(f.Name, f.Value.String()))
					}
				}
			})
			if setErr != nil {
				return setErr
			}
			if cmd.Flags().Changed("es") && !withES {
				cfg.ES = nil
			}
			if len(cfg.ImportPaths) == 0 {
				cfg.ImportPaths = []string{"."}
			}

			level, err := nestgen.ParseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}
			lg, err := nestgen.NewLogger(level)
			if err != nil {
				return err
			}
			defer lg.Sync()
			cfg.Options.Logger = lg.Named("nestjs")

			generators := nestgen.DefaultGenerators(nestjs.WithOptions(cfg.Options))
			if cfg.ES != nil {
				generators = nestgen.AllGenerators(*cfg.ES, nestjs.WithOptions(cfg.Options))
			}

			filenames := make([]string, len(args))
			for i, arg := range args {
				filenames[i] = nestgen.ImportName(arg, cfg.ImportPaths...)
			}
			files, err := nestgen.GenerateCode(cmd.Context(), generators, filenames,
				nestgen.WithImportPaths(cfg.ImportPaths...),
				nestgen.WithParameter(parameterString(cmd.Flags())),
				nestgen.WithLogger(lg),
			)
			if err != nil {
				return err
			}
			for _, file := range files {
				if err := file.WriteToDisk(cfg.Output); err != nil {
					return err
				}
				lg.Info("wrote file", zap.String("name", file.Name), zap.String("output", cfg.Output))
			}
			return nil
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&outDir, "output", "o", ".", "output directory")
	flags.StringSliceVarP(&importPaths, "import_path", "I", nil, "directories searched for imports (default .)")
	flags.StringVar(&configPath, "config", "", "path to a nestgen.toml config file")
	flags.StringVar(&logLevel, "log_level", "warn", "log level (debug, info, warn, error)")
	flags.BoolVar(&withES, "es", false, "also run protoc-gen-es to generate message types")
	flags.StringSliceVar(&esCommand, "es_command", nil, "protoc-gen-es command line (default protoc-gen-es)")
	flags.StringVar(&esOpt, "es_opt", "", "parameter passed to protoc-gen-es (default target=ts)")
	flags.AddFlagSet(flagOpts.FlagSet())
	flags.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "-", "_"))
	})
	return rootCmd
}

// parameterString renders the changed generator flags the way protoc would
// pass them to the plugin.
func parameterString(flags *pflag.FlagSet) string {
	opts := nestjs.DefaultOptions()
	known := opts.FlagSet()
	var params []string
	flags.Visit(func(f *pflag.Flag) {
		if known.Lookup(f.Name) != nil {
			params = append(params, f.Name+"="+f.Value.String())
		}
	})
	return strings.Join(params, ",")
}

func Execute() {
	if err := BuildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
