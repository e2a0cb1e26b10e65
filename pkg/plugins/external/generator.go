// Package external runs another protoc plugin, such as protoc-gen-es, as a
// subprocess and copies its output into the current response.
package external

import (
	"bytes"
	"os"
	"os/exec"
	"path"
	"strings"

	"emperror.dev/errors"
	"github.com/samber/lo"
	"google.golang.org/protobuf/compiler/protogen"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/pluginpb"
)

var ErrPluginFailed = errors.Sentinel("external plugin failed")

type GeneratorOptions struct {
	// Parameter string passed to the plugin.
	Opt string
	// Extra environment for the plugin process, as KEY=VALUE pairs.
	Env []string
}

// NewGenerator returns a generator that executes command[0] with the
// remaining elements as arguments.
func NewGenerator(command []string, opts GeneratorOptions) *extGenerator {
	return &extGenerator{
		command: command,
		opts:    opts,
	}
}

type extGenerator struct {
	command []string
	opts    GeneratorOptions
}

func (g *extGenerator) Name() string {
	if len(g.command) == 0 {
		return "x-"
	}
	return "x-" + path.Base(g.command[0])
}

func (g *extGenerator) Generate(gen *protogen.Plugin) error {
	if len(g.command) == 0 {
		return errors.WithMessage(ErrPluginFailed, "no command configured")
	}
	reqClone := proto.Clone(gen.Request).(*pluginpb.CodeGeneratorRequest)
	reqClone.Parameter = nil
	if g.opts.Opt != "" {
		reqClone.Parameter = lo.ToPtr(g.opts.Opt)
	}
	requestWire, err := proto.Marshal(reqClone)
	if err != nil {
		return err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(g.command[0], g.command[1:]...)
	cmd.Stdin = bytes.NewReader(requestWire)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = append(os.Environ(), g.opts.Env...)
	if err := cmd.Run(); err != nil {
		return errors.WithDetails(errors.WithMessage(ErrPluginFailed, err.Error()),
			"command", strings.Join(g.command, " "),
			"stderr", strings.TrimSpace(stderr.String()),
		)
	}

	response := &pluginpb.CodeGeneratorResponse{}
	if err := proto.Unmarshal(stdout.Bytes(), response); err != nil {
		return errors.Wrap(err, "decoding plugin response")
	}
	if response.Error != nil {
		return errors.WithDetails(errors.WithMessage(ErrPluginFailed, response.GetError()),
			"command", strings.Join(g.command, " "),
		)
	}

	// A file without a name continues the previous one.
	var current *protogen.GeneratedFile
	for _, f := range response.File {
		if f.GetInsertionPoint() != "" {
			return errors.WithDetails(errors.WithMessage(ErrPluginFailed, "insertion points are not supported"),
				"file", f.GetName(),
				"insertion_point", f.GetInsertionPoint(),
			)
		}
		if f.GetName() != "" {
			current = gen.NewGeneratedFile(f.GetName(), "")
		} else if current == nil {
			return errors.WithMessage(ErrPluginFailed, "first response file has no name")
		}
		if _, err := current.Write([]byte(f.GetContent())); err != nil {
			return err
		}
	}
	return nil
}
