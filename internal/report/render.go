package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"
)

type Format string

const (
	FormatHTML Format = "html"
	FormatCSV  Format = "csv"
)

var ErrUnknownFormat = errors.New("unknown report format")

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatHTML, FormatCSV:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "text/html; charset=utf-8"
}

var page = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
th { background: #f0f0f0; }
tfoot td { font-weight: bold; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<table>
<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- else}}
<tr><td colspan="{{len .Headers}}">No data</td></tr>
{{- end}}
</tbody>
{{- if .Footer}}
<tfoot><tr>{{range .Footer}}<td>{{.}}</td>{{end}}</tr></tfoot>
{{- end}}
</table>
</body>
</html>
`))

// Render writes t to w in the given format.
func Render(w io.Writer, f Format, t *Table) error {
	switch f {
	case FormatHTML:
		return page.Execute(w, t)
	case FormatCSV:
		return writeCSV(w, t)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

func writeCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	if len(t.Footer) > 0 {
		if err := cw.Write(t.Footer); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
