package nestjs

import (
	"strings"

	"google.golang.org/protobuf/compiler/protogen"
	"google.golang.org/protobuf/types/descriptorpb"
)

func jsDoc(comments protogen.Comments, tag string, deprecated bool, indent string) string {
	var lines []string
	if text := strings.TrimRight(string(comments), "\n"); strings.TrimSpace(text) != "" {
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimPrefix(strings.TrimRight(line, " \t"), " ")
			lines = append(lines, strings.ReplaceAll(line, "*/", "*\\/"))
		}
		lines = append(lines, "")
	}
	lines = append(lines, tag)
	if deprecated {
		lines = append(lines, "@deprecated")
	}

	var b strings.Builder
	b.WriteString(indent + "/**\n")
	for _, line := range lines {
		if line == "" {
			b.WriteString(indent + " *\n")
			continue
		}
		b.WriteString(indent + " * " + line + "\n")
	}
	b.WriteString(indent + " */")
	return b.String()
}

func serviceDoc(svc *protogen.Service) string {
	opts, _ := svc.Desc.Options().(*descriptorpb.ServiceOptions)
	return jsDoc(svc.Comments.Leading, "@generated from service "+string(svc.Desc.FullName()), opts.GetDeprecated(), "")
}

func methodDoc(m *protogen.Method) string {
	opts, _ := m.Desc.Options().(*descriptorpb.MethodOptions)
	return jsDoc(m.Comments.Leading, "@generated from rpc "+string(m.Desc.FullName()), opts.GetDeprecated(), "  ")
}
