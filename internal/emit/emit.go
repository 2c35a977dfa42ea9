// Package emit renders generated types into a TypeScript declaration file.
package emit

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/template"

	"github.com/reloquent/modelts/internal/model"
	"github.com/reloquent/modelts/internal/tsgen"
)

// Header opens every generated file.
const Header = "// This file is generated by modelts. Do not edit it by hand.\n"

// Declaration is one exported type.
type Declaration struct {
	Name   string
	Fields []string
}

// Namespace groups declarations under a dotted namespace. The empty
// namespace holds global types.
type Namespace struct {
	Name  string
	Types []Declaration
}

// Document is a complete declaration file.
type Document struct {
	Global     []Declaration
	Namespaces []Namespace
}

// Build groups model types and the registry's marked shapes by namespace,
// sorting namespaces and type names so output is stable across runs.
func Build(types []*tsgen.TransformedType, reg *model.Registry) *Document {
	grouped := make(map[string][]Declaration)

	for _, tt := range types {
		if tt == nil {
			continue
		}
		d := Declaration{Name: tt.Name}
		for _, f := range tt.Fields {
			d.Fields = append(d.Fields, f.String())
		}
		grouped[tt.Namespace] = append(grouped[tt.Namespace], d)
	}

	if reg != nil {
		for _, c := range reg.Marked() {
			if c.Shape == nil {
				continue
			}
			ns, name := model.SplitClass(c.Name)
			d := Declaration{Name: name}
			for _, f := range c.Shape.Fields {
				field := tsgen.Field{Name: f.Name, Type: f.Type, Optional: f.Optional, Nullable: f.Nullable}
				d.Fields = append(d.Fields, field.String())
			}
			grouped[ns] = append(grouped[ns], d)
		}
	}

	doc := &Document{}
	names := make([]string, 0, len(grouped))
	for ns, decls := range grouped {
		sort.SliceStable(decls, func(i, j int) bool { return decls[i].Name < decls[j].Name })
		if ns == "" {
			doc.Global = decls
			continue
		}
		names = append(names, ns)
	}
	sort.Strings(names)
	for _, ns := range names {
		doc.Namespaces = append(doc.Namespaces, Namespace{Name: ns, Types: grouped[ns]})
	}
	return doc
}

type typeData struct {
	Indent  string
	Keyword string
	Decl    Declaration
}

var funcs = template.FuncMap{
	"typeArgs": func(indent, keyword string, d Declaration) typeData {
		return typeData{Indent: indent, Keyword: keyword, Decl: d}
	},
}

const declarationSource = `{{define "type" -}}
{{.Indent}}{{.Keyword}} {{.Decl.Name}} = {
{{- range .Decl.Fields}}
{{$.Indent}}    {{.}};
{{- end}}
{{- if .Decl.Fields}}
{{.Indent}}{{end}}};
{{- end -}}
{{.Header}}
{{- range .Doc.Global}}
{{template "type" (typeArgs "" "type" .)}}
{{end}}
{{- range .Doc.Namespaces}}
declare namespace {{.Name}} {
{{- range .Types}}
{{template "type" (typeArgs "    " "export type" .)}}
{{- end}}
}
{{end -}}`

var declarationTemplate = template.Must(template.New("declarations").Funcs(funcs).Parse(declarationSource))

// Render produces the declaration file content.
func (d *Document) Render() (string, error) {
	var buf bytes.Buffer
	data := struct {
		Header string
		Doc    *Document
	}{Header, d}
	if err := declarationTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

// WriteFile writes content to path through a temporary file in the same
// directory, so readers never see a partial declaration file.
func WriteFile(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("writing declarations: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
