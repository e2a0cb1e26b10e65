package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/kralicky/nestgen"
	"github.com/kralicky/nestgen/pkg/plugins/nestjs"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v":
			fmt.Printf("%s %s\n", nestjs.PluginName, nestjs.Version)
			os.Exit(0)
		case "--help", "-h":
			fmt.Fprintf(os.Stderr, "%s is a protoc plugin and reads a CodeGeneratorRequest from stdin.\n\n", nestjs.PluginName)
			opts := nestjs.DefaultOptions()
			fs := opts.FlagSet()
			fs.String("log_level", "warn", "log level (debug, info, warn, error)")
			fmt.Fprintf(os.Stderr, "Parameters:\n%s", fs.FlagUsages())
			os.Exit(0)
		}
	}

	opts := nestjs.DefaultOptions()
	level := zap.NewAtomicLevelAt(zap.WarnLevel)
	paramFunc := func(name, value string) error {
		if name == "log_level" {
			return level.UnmarshalText([]byte(value))
		}
		return opts.Set(name, value)
	}

	lg, err := nestgen.NewLogger(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", nestjs.PluginName, err)
		os.Exit(1)
	}
	defer lg.Sync()

	err = nestgen.RunPlugin(os.Stdin, os.Stdout, paramFunc, func() []nestgen.Generator {
		opts.Logger = lg.Named("nestjs")
		return nestgen.DefaultGenerators(nestjs.WithOptions(opts))
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", nestjs.PluginName, err)
		os.Exit(1)
	}
}
