// Package infopage renders the engine's introspection page and hosts the
// post-startup override that themes it. The page is the Go analogue of a
// stock interpreter info screen: version, build, settings table, function
// table, all styled by a single embedded style block.
package infopage

import (
	"fmt"
	"html/template"
	"io"

	"github.com/phptoro/bridge-sdk/funcs"
	"github.com/phptoro/bridge-sdk/settings"
)

// FunctionName is the well-known name of the introspection builtin in the
// engine's function table.
const FunctionName = "runtime_info"

// Snapshot is the engine state the page renders. The engine produces one
// per call so the page always reflects the live function table.
type Snapshot struct {
	Version        string
	GoVersion      string
	OS             string
	Arch           string
	Mode           string
	Settings       []settings.Setting
	Functions      []funcs.Entry
	EnvelopeSchema string
}

// stock page styles; the single closing style tag doubles as the theme
// injection anchor.
const stockTemplate = `<!DOCTYPE html>
<html>
<head>
<title>phpToro runtime {{.Version}}</title>
<style>
body { font-family: sans-serif; background-color: #fff; color: #222; }
table { border-collapse: collapse; width: 934px; }
td, th { border: 1px solid #999; padding: 4px 5px; font-size: 75%; }
.e { background-color: #ccf; width: 300px; font-weight: bold; }
.h { background-color: #99c; font-weight: bold; }
.v { background-color: #eee; max-width: 300px; word-wrap: break-word; }
h1 { font-size: 150%; }
h2 { font-size: 125%; }
</style>
</head>
<body>
<div class="center">
<h1>phpToro runtime {{.Version}}</h1>
<table>
<tr><td class="e">Engine version</td><td class="v">{{.Version}}</td></tr>
<tr><td class="e">Go version</td><td class="v">{{.GoVersion}}</td></tr>
<tr><td class="e">System</td><td class="v">{{.OS}}/{{.Arch}}</td></tr>
<tr><td class="e">Execution mode</td><td class="v">{{.Mode}}</td></tr>
</table>
<h2>Configuration</h2>
<table>
<tr class="h"><th>Directive</th><th>Value</th></tr>
{{- range .Settings}}
<tr><td class="e">{{.Name}}</td><td class="v">{{.Value}}</td></tr>
{{- end}}
</table>
<h2>Function table</h2>
<table>
<tr class="h"><th>Function</th><th>Kind</th></tr>
{{- range .Functions}}
<tr><td class="e">{{.Name}}</td><td class="v">{{.Kind}}</td></tr>
{{- end}}
</table>
{{- if .EnvelopeSchema}}
<h2>Invoke envelope schema</h2>
<pre>{{.EnvelopeSchema}}</pre>
{{- end}}
</div>
</body>
</html>
`

var stockPage = template.Must(template.New("infopage").Parse(stockTemplate))

// Render writes the stock introspection page for the given snapshot.
func Render(w io.Writer, snap Snapshot) error {
	if err := stockPage.Execute(w, snap); err != nil {
		return fmt.Errorf("failed to render info page: %w", err)
	}
	return nil
}
