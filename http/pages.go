package http

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"exohab/catalog"
	"exohab/ml"
	"exohab/render"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pageFuncs = template.FuncMap{
	"num":      formatValue,
	"imageURL": imageURL,
	"pageURL":  pageURL,
	"label":    fieldLabel,
}

var fieldLabels = map[string]string{
	ml.FieldRadius:   "Radius (Earth radii)",
	ml.FieldTemp:     "Equilibrium temperature (K)",
	ml.FieldFlux:     "Insolation flux (Earth flux)",
	ml.FieldStarTemp: "Stellar temperature (K)",
}

func fieldLabel(name string) string {
	if label, ok := fieldLabels[name]; ok {
		return label
	}
	return name
}

var pages = template.Must(template.New("pages").Funcs(pageFuncs).ParseFS(templateFS, "templates/*.html"))

func formatValue(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

func pageURL(name string) string {
	return "/planet/" + url.PathEscape(name)
}

func imageURL(name string) string {
	return pageURL(name) + "/image.png"
}

func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

type indexPage struct {
	Planets     []catalog.Record
	ModelLoaded bool
}

type detailPage struct {
	Planet   catalog.Record
	HasImage bool
}

type createPage struct {
	Fields      []string
	ModelLoaded bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, "index.html", indexPage{
		Planets:     s.deps.Catalog.Current().Display(),
		ModelLoaded: s.deps.Predictor.Available(),
	})
}

// handlePlanetPage renders the detail page and draws the image ahead of the
// browser asking for it. A render failure still serves the page.
func (s *Server) handlePlanetPage(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.deps.Catalog.Current().Lookup(r.PathValue("name"))
	if !ok {
		http.Error(w, "planet not found", http.StatusNotFound)
		return
	}

	hasImage := false
	if s.deps.Renderer != nil {
		_, err := s.deps.Renderer.Image(rec.Name, rec.Radius, rec.EqTemp)
		switch {
		case err == nil:
			hasImage = true
		case errors.Is(err, render.ErrMissingData):
			s.logger.Info("planet has no image data", zap.String("planet", rec.Name))
		default:
			s.logger.Error("render planet", zap.String("planet", rec.Name), zap.Error(err))
		}
	}

	s.renderPage(w, "detail.html", detailPage{Planet: rec, HasImage: hasImage})
}

func (s *Server) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, "create.html", createPage{
		Fields:      ml.FieldNames(),
		ModelLoaded: s.deps.Predictor.Available(),
	})
}

func (s *Server) renderPage(w http.ResponseWriter, name string, data interface{}) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("render template", zap.String("template", name), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
