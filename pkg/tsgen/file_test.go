package tsgen_test

import (
	"testing"

	"emperror.dev/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kralicky/nestgen/pkg/tsgen"
)

func TestImportsAreDeduplicated(t *testing.T) {
	f := tsgen.NewFile("a_nestjs.ts")
	obs := tsgen.ImportType("Observable", "rxjs")
	f.P("let a: ", obs, ";")
	f.P("let b: ", obs, ";")
	f.P(tsgen.Import("firstValueFrom", "rxjs"), "(x);")

	assert.Equal(t, `import { type Observable, firstValueFrom } from "rxjs";

let a: Observable;
let b: Observable;
firstValueFrom(x);
`, string(f.Content()))
}

func TestTypeOnlyImports(t *testing.T) {
	f := tsgen.NewFile("a_nestjs.ts")
	f.P(tsgen.ImportType("HelloRequest", "./a_pb"), " ", tsgen.ImportType("HelloResponse", "./a_pb"))
	assert.Equal(t, `import type { HelloRequest, HelloResponse } from "./a_pb";

HelloRequest HelloResponse
`, string(f.Content()))
}

func TestValueUseUpgradesTypeImport(t *testing.T) {
	f := tsgen.NewFile("a_nestjs.ts")
	f.P(tsgen.ImportType("X", "m"))
	f.P(tsgen.Import("X", "m"))
	assert.Equal(t, "import { X } from \"m\";\n\nX\nX\n", string(f.Content()))
}

func TestConflictingImportsAreAliased(t *testing.T) {
	f := tsgen.NewFile("a_nestjs.ts")
	_, err := f.Export("Observable", "service Observable")
	require.NoError(t, err)

	first := f.Ref(tsgen.ImportType("Observable", "rxjs"))
	second := f.Ref(tsgen.ImportType("Observable", "./other_pb"))
	assert.Equal(t, "Observable$1", first)
	assert.Equal(t, "Observable$2", second)
	assert.Equal(t, first, f.Ref(tsgen.ImportType("Observable", "rxjs")))

	assert.Equal(t, `import type { Observable as Observable$1 } from "rxjs";
import type { Observable as Observable$2 } from "./other_pb";

`, string(f.Content()))
}

func TestExportCollision(t *testing.T) {
	f := tsgen.NewFile("a_nestjs.ts")
	_, err := f.Export("INJECTED_GREETER_PACKAGE", "service Greeter")
	require.NoError(t, err)
	_, err = f.Export("INJECTED_GREETER_PACKAGE", "service GREETER")
	require.Error(t, err)
	assert.True(t, errors.Is(err, tsgen.ErrNameTaken))
	assert.Contains(t, err.Error(), "INJECTED_GREETER_PACKAGE")
}

func TestPreamble(t *testing.T) {
	f := tsgen.NewFile("a_nestjs.ts")
	f.SetPreamble("// header")
	f.P("export {};")
	assert.Equal(t, "// header\n\nexport {};\n", string(f.Content()))
}

func TestRelativeImport(t *testing.T) {
	cases := []struct {
		from, target string
		ext          tsgen.ImportExtension
		want         string
	}{
		{"greeter_nestjs.ts", "greeter_pb", tsgen.ExtensionNone, "./greeter_pb"},
		{"greeter/v1/greeter_nestjs.ts", "greeter/v1/greeter_pb", tsgen.ExtensionJS, "./greeter_pb.js"},
		{"greeter/v1/greeter_nestjs.ts", "common/v1/types_pb", tsgen.ExtensionNone, "../../common/v1/types_pb"},
		{"a/b_nestjs.ts", "a/c/d_pb", tsgen.ExtensionTS, "./c/d_pb.ts"},
		{"b_nestjs.ts", "a/d_pb", tsgen.ExtensionNone, "./a/d_pb"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, tsgen.RelativeImport(c.from, c.target, c.ext), "%s -> %s", c.from, c.target)
	}
}

func TestParseImportExtension(t *testing.T) {
	for in, want := range map[string]tsgen.ImportExtension{
		"":     tsgen.ExtensionNone,
		"none": tsgen.ExtensionNone,
		"js":   tsgen.ExtensionJS,
		".ts":  tsgen.ExtensionTS,
	} {
		got, err := tsgen.ParseImportExtension(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := tsgen.ParseImportExtension("mjs")
	assert.Error(t, err)
}
