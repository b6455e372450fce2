package http

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/amww/loja"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pageNames = []string{
	"index",
	"produtos",
	"login",
	"cadastro-produtos",
	"editar-produto",
	"settings",
	"error",
}

var funcs = template.FuncMap{
	"price": formatPrice,
	"add":   func(a, b int) int { return a + b },
	"sub":   func(a, b int) int { return a - b },
	"seq": func(n int) []int {
		s := make([]int, n)
		for i := range s {
			s[i] = i + 1
		}
		return s
	},
	"field": func(name string, id any) string {
		return name + "_" + toString(id)
	},
}

var pages = mustParsePages()

func mustParsePages() map[string]*template.Template {
	out := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		out[name] = template.Must(template.New("layout.html").Funcs(funcs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html"))
	}
	return out
}

// viewData is the model handed to every template.
type viewData struct {
	Title    string
	Session  *Session
	Error    string
	Success  string
	Flashes  []string
	Products []loja.Product
	Page     loja.Page
	Product  loja.Product
	Form     loja.ProductInput
	Email    string
	Status   int
	Fields   fieldNames
}

type fieldNames struct {
	Name        string
	Description string
	Price       string
	Image       string
}

var formFields = fieldNames{
	Name:        loja.FieldName,
	Description: loja.FieldDescription,
	Price:       loja.FieldPrice,
	Image:       loja.FieldImage,
}

// render executes the named page into a buffer and writes it with status.
// A template failure produces a plain 500 instead of a truncated page.
func render(w http.ResponseWriter, r *http.Request, status int, name string, data viewData) {
	t, ok := pages[name]
	if !ok {
		slog.Error("unknown view", "view", name)
		http.Error(w, "Erro interno", http.StatusInternalServerError)
		return
	}

	data.Session = CurrentSession(r.Context())
	data.Fields = formFields
	if data.Status == 0 {
		data.Status = status
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("render view", "view", name, "err", err)
		http.Error(w, "Erro interno", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// formatPrice renders a price the way Brazilian shoppers read it: 2999.99 → "2.999,99".
func formatPrice(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	return b.String() + "," + frac
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case interface{ String() string }:
		return t.String()
	default:
		return ""
	}
}

func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	files := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			writeStatusPage(w, r, http.StatusNotFound, "Página não encontrada.")
			return
		}
		files.ServeHTTP(w, r)
	})
}
