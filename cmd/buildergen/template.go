package main

import (
	"bytes"
	"fmt"
	"go/format"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"
)

var funcs = template.FuncMap{
	"formatter":  func(typ string) string { return formatters[typ] },
	"lowerFirst": lowerFirst,
	"jsonTag":    func(name string) string { return "`json:\"" + name + "\"`" },
	"equal":      equalExpr,
}

var entityTemplate = template.Must(template.New("entity").Funcs(funcs).Parse(`// Code generated by buildergen. DO NOT EDIT.

package {{.Package}}

import (
	"encoding/json"
	"fmt"
	"strings"
)

// {{.Doc}}
// Instances are immutable; derive modified copies with ToBuilder.
type {{.Name}} struct {
{{- range .Fields}}
	{{.Name}} {{.Type}}
{{- end}}
}

// {{.Name}}Fields lists the fields of {{.Name}} in declaration order.
var {{.Name}}Fields = []Field{
{{- range .Fields}}
	{Name: {{printf "%q" .Name}}, Type: {{printf "%q" .Type}}},
{{- end}}
}

// New{{.Name}} returns a {{.Name}} holding the given values in declaration
// order. It matches setting every field on a fresh builder.
func New{{.Name}}({{range $i, $f := .Fields}}{{if $i}}, {{end}}{{$f.Name}} {{$f.Type}}{{end}}) {{.Name}} {
	return {{.Name}}{
{{- range .Fields}}
		{{.Name}}: {{.Name}},
{{- end}}
	}
}
{{range .Fields}}
// {{.Go}} returns the {{.Name}} field.
func (e {{$.Name}}) {{.Go}}() {{.Type}} { return e.{{.Name}} }
{{end}}
// Equal reports whether e and other hold the same field values. Float fields
// treat NaN as equal to itself and keep 0 and -0 apart.
func (e {{.Name}}) Equal(other {{.Name}}) bool {
	return {{range $i, $f := .Fields}}{{if $i}} &&
		{{end}}{{equal $f}}{{end}}
}

// ToBuilder returns a new builder seeded with every field of e.
func (e {{.Name}}) ToBuilder() *{{.Name}}Builder {
	return &{{.Name}}Builder{
{{- range .Fields}}
		{{.Name}}: e.{{.Name}},
{{- end}}
	}
}

// String renders e as {{.Name}}(field=value, ...) in declaration order.
func (e {{.Name}}) String() string {
	var sb strings.Builder
	sb.WriteString("{{.Name}}(")
{{- range $i, $f := .Fields}}
	sb.WriteString("{{if $i}}, {{end}}{{$f.Name}}=")
	sb.WriteString({{formatter $f.Type}}(e.{{$f.Name}}))
{{- end}}
	sb.WriteByte(')')
	return sb.String()
}

type {{lowerFirst .Name}}JSON struct {
{{- range .Fields}}
	{{.Go}} {{.Type}} {{jsonTag .Name}}
{{- end}}
}

// MarshalJSON encodes e using the wire field names.
func (e {{.Name}}) MarshalJSON() ([]byte, error) {
	return json.Marshal({{lowerFirst .Name}}JSON{
{{- range .Fields}}
		{{.Go}}: e.{{.Name}},
{{- end}}
	})
}

// UnmarshalJSON decodes data through a fresh builder. Missing keys leave
// the corresponding field at its zero value.
func (e *{{.Name}}) UnmarshalJSON(data []byte) error {
	var w {{lowerFirst .Name}}JSON
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("{{$.Package}}: decode {{lowerFirst .Name}}: %w", err)
	}
	*e = New{{.Name}}Builder().
{{- range .Fields}}
		Set{{.Go}}(w.{{.Go}}).
{{- end}}
		Build()
	return nil
}

// {{.Name}}Builder accumulates {{.Name}} fields. The zero value is ready to
// use. A builder is not safe for concurrent use.
type {{.Name}}Builder struct {
{{- range .Fields}}
	{{.Name}} {{.Type}}
{{- end}}
}

// New{{.Name}}Builder returns a builder with every field at its zero value.
func New{{.Name}}Builder() *{{.Name}}Builder {
	return &{{.Name}}Builder{}
}
{{range .Fields}}
// Set{{.Go}} sets the {{.Name}} field.
func (b *{{$.Name}}Builder) Set{{.Go}}({{.Name}} {{.Type}}) *{{$.Name}}Builder {
	b.{{.Name}} = {{.Name}}
	return b
}
{{end}}
// Build returns a {{.Name}} snapshot of the builder's current state. The
// builder stays usable; later Set calls do not affect returned values.
func (b *{{.Name}}Builder) Build() {{.Name}} {
	return {{.Name}}{
{{- range .Fields}}
		{{.Name}}: b.{{.Name}},
{{- end}}
	}
}
`))

type entityData struct {
	Package string
	Entity
}

// Generate renders every entity of s and returns gofmt-formatted sources
// keyed by output file name.
func Generate(s *Schema) (map[string][]byte, error) {
	out := make(map[string][]byte, len(s.Entities))
	for _, e := range s.Entities {
		if e.Doc == "" {
			e.Doc = e.Name + " is a generated entity."
		}

		var buf bytes.Buffer
		if err := entityTemplate.Execute(&buf, entityData{Package: s.Package, Entity: e}); err != nil {
			return nil, fmt.Errorf("buildergen: render %s: %w", e.Name, err)
		}
		src, err := format.Source(buf.Bytes())
		if err != nil {
			return nil, fmt.Errorf("buildergen: format %s: %w", e.Name, err)
		}
		out[FileName(e)] = src
	}
	return out, nil
}

// FileName returns the output file name for e, e.g. product_gen.go.
func FileName(e Entity) string {
	return strings.ToLower(e.Name) + "_gen.go"
}

// equalExpr renders the Equal comparison for one field.
func equalExpr(f FieldSpec) string {
	if fn := equalers[f.Type]; fn != "" {
		return fmt.Sprintf("%s(e.%s, other.%s)", fn, f.Name, f.Name)
	}
	return fmt.Sprintf("e.%s == other.%s", f.Name, f.Name)
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
