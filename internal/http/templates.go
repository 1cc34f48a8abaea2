package httpx

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Renderer executes embedded page templates. Output is buffered so a
// template failure yields a clean 500 instead of a half-written page.
type Renderer struct {
	Logger *slog.Logger
}

// Render writes the named template with data as an HTML response.
func (re *Renderer) Render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		re.logger().Error("render template failed", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		// Client disconnects are not actionable here.
		return
	}
}

func (re *Renderer) logger() *slog.Logger {
	if re != nil && re.Logger != nil {
		return re.Logger
	}
	return slog.Default()
}

// StaticHandler serves the embedded static assets at /static/.
func StaticHandler() http.Handler {
	return http.FileServerFS(staticFS)
}
