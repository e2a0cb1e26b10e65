package nestjs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeIdentifier(t *testing.T) {
	for in, want := range map[string]string{
		"Greeter":    "Greeter",
		"class":      "class$",
		"Promise":    "Promise$",
		"Object":     "Object$",
		"my-service": "my_service",
		"9lives":     "_9lives",
		"dollar$":    "dollar$",
		"":           "_",
		"greeter.v1": "greeter_v1",
	} {
		assert.Equal(t, want, SafeIdentifier(in), in)
		assert.Equal(t, SafeIdentifier(in), SafeIdentifier(in))
	}
}

func TestMethodLocalNames(t *testing.T) {
	file := protoFile("m/m.proto", "m", []string{"M"},
		service("S",
			rpc("SayHello", ".m.M", ".m.M", false, false),
			rpc("list_items", ".m.M", ".m.M", false, false),
			rpc("Delete", ".m.M", ".m.M", false, false),
			rpc("OnModuleInit", ".m.M", ".m.M", false, false),
			rpc("Constructor", ".m.M", ".m.M", false, false),
			rpc("Get", ".m.M", ".m.M", false, false),
			rpc("New", ".m.M", ".m.M", false, false),
			rpc("ValueOf", ".m.M", ".m.M", false, false),
		),
	)
	gen := newPlugin(t, "", file)
	var names []string
	for _, m := range gen.Files[0].Services[0].Methods {
		names = append(names, methodLocalName(m))
	}
	assert.Equal(t, []string{"sayHello", "listItems", "delete", "onModuleInit$", "constructor$", "get", "new", "valueOf$"}, names)
}

func TestTokenName(t *testing.T) {
	assert.Equal(t, "INJECTED_GREETER_PACKAGE", tokenName("Greeter"))
	assert.Equal(t, "INJECTED_USERADMIN_PACKAGE", tokenName("UserAdmin"))
}
