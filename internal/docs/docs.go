package docs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"strconv"

	swaggerFiles "github.com/swaggo/files"
	"gopkg.in/yaml.v3"

	"gitlab.com/servicemarket/marketplace-api/internal/dispatch"
)

// DefaultPath is where the documentation is mounted when not configured
const DefaultPath = "/api-docs"

const specFile = "/openapi.json"

// viewerAssets are the Swagger UI files served next to the viewer
var viewerAssets = []string{
	"/swagger-ui.css",
	"/swagger-ui-bundle.js",
	"/favicon-32x32.png",
}

// Document is a decoded OpenAPI document
type Document map[string]interface{}

// Load reads an OpenAPI document from a YAML or JSON file
func Load(file string) (Document, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading API document: %w", err)
	}

	return Parse(data)
}

// Parse decodes a YAML or JSON OpenAPI document
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing API document: %w", err)
	}

	if len(doc) == 0 {
		return nil, fmt.Errorf("parsing API document: document is empty")
	}

	for k, v := range doc {
		doc[k] = stringKeys(v)
	}

	return doc, nil
}

// stringKeys converts YAML mappings with non-string keys, such as unquoted
// response codes, into JSON compatible maps
func stringKeys(v interface{}) interface{} {
	switch v := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(v))
		for k, val := range v {
			m[fmt.Sprint(k)] = stringKeys(val)
		}
		return m
	case map[string]interface{}:
		for k, val := range v {
			v[k] = stringKeys(val)
		}
		return v
	case []interface{}:
		for i, val := range v {
			v[i] = stringKeys(val)
		}
		return v
	}

	return v
}

// Generate builds a document listing the mounted collections
func Generate(title, version string, entries []dispatch.Entry) Document {
	tags := make([]interface{}, 0, len(entries))
	paths := make(map[string]interface{}, len(entries))

	for _, e := range entries {
		tags = append(tags, map[string]interface{}{
			"name":        e.Name,
			"description": fmt.Sprintf("Endpoints of the %s collection", e.Name),
		})

		paths[e.Prefix] = map[string]interface{}{
			"summary":     e.Name,
			"description": fmt.Sprintf("Every request beneath %s is handled by the %s collection.", e.Prefix, e.Name),
		}
	}

	return Document{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":   title,
			"version": version,
		},
		"tags":  tags,
		"paths": paths,
	}
}

// Docs serves the API documentation viewer and the document it displays
type Docs struct {
	html []byte
	spec []byte
}

// New renders doc for serving beneath path. Both responses are rendered once
// so every request receives identical bytes.
func New(path string, doc Document) (*Docs, error) {
	spec, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding API document: %w", err)
	}

	var html bytes.Buffer
	err = viewerTemplate.Execute(&html, viewerData{
		Title:     doc.title(),
		SpecURL:   path + specFile,
		AssetsURL: path,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering API viewer: %w", err)
	}

	return &Docs{html: html.Bytes(), spec: spec}, nil
}

// Mount registers the viewer and the document endpoints
func (d *Docs) Mount(r *dispatch.Router) {
	for _, path := range []string{"", "/"} {
		r.Handle(path, d.serveHTML, http.MethodGet, http.MethodHead)
	}

	r.Handle(specFile, d.serveSpec, http.MethodGet, http.MethodHead)

	assets := http.StripPrefix(r.Prefix(), swaggerFiles.Handler)
	for _, asset := range viewerAssets {
		r.Handle(asset, func(w http.ResponseWriter, req *http.Request) error {
			assets.ServeHTTP(w, req)
			return nil
		}, http.MethodGet, http.MethodHead)
	}
}

func (d *Docs) serveHTML(w http.ResponseWriter, r *http.Request) error {
	return serve(w, "text/html; charset=utf-8", d.html)
}

func (d *Docs) serveSpec(w http.ResponseWriter, r *http.Request) error {
	return serve(w, "application/json; charset=utf-8", d.spec)
}

func serve(w http.ResponseWriter, contentType string, body []byte) error {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)

	_, err := w.Write(body)
	return err
}

func (doc Document) title() string {
	if info, ok := doc["info"].(map[string]interface{}); ok {
		if title, ok := info["title"].(string); ok && title != "" {
			return title
		}
	}

	return "API documentation"
}

type viewerData struct {
	Title     string
	SpecURL   string
	AssetsURL string
}

var viewerTemplate = template.Must(template.New("viewer").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="{{.AssetsURL}}/swagger-ui.css">
  <link rel="icon" type="image/png" href="{{.AssetsURL}}/favicon-32x32.png" sizes="32x32">
</head>
<body>
  <div id="swagger-ui" data-spec="{{.SpecURL}}"></div>
  <script src="{{.AssetsURL}}/swagger-ui-bundle.js"></script>
  <script>
    window.onload = function () {
      var root = document.getElementById("swagger-ui");
      window.ui = SwaggerUIBundle({ url: root.dataset.spec, dom_id: "#swagger-ui" });
    };
  </script>
</body>
</html>
`))
