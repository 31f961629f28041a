// Пакет templates — HTML-шаблоны web-клиента.
// Шаблоны встраиваются в бинарник через //go:embed и рендерятся
// стандартным html/template.
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/dustin/go-humanize"
)

//go:embed *.html
var content embed.FS

// Renderer — преднастроенный набор страниц поверх общего layout.
type Renderer struct {
	pages map[string]*template.Template
}

// pageFiles — страницы, каждая рендерится внутри layout.html.
var pageFiles = []string{
	"login.html",
	"register.html",
	"dashboard.html",
	"users.html",
}

// funcMap — функции форматирования, доступные в шаблонах.
var funcMap = template.FuncMap{
	// humanSize форматирует размер файла (1024 → "1.0 kB")
	"humanSize": func(b int64) string {
		if b < 0 {
			return "—"
		}
		return humanize.Bytes(uint64(b))
	},
	// fmtTime форматирует время для таблиц
	"fmtTime": func(t time.Time) string {
		if t.IsZero() {
			return "—"
		}
		return t.Local().Format("02.01.2006 15:04")
	},
	// fmtTimePtr форматирует опциональное время ("—" для nil)
	"fmtTimePtr": func(t *time.Time) string {
		if t == nil {
			return "—"
		}
		return t.Local().Format("02.01.2006 15:04")
	},
	// humanSizeMB форматирует размер, заданный в мегабайтах
	"humanSizeMB": func(mb float64) string {
		return fmt.Sprintf("%.1f MB", mb)
	},
}

// New разбирает встроенные шаблоны и возвращает Renderer.
func New() (*Renderer, error) {
	pages := make(map[string]*template.Template, len(pageFiles))

	for _, page := range pageFiles {
		tmpl, err := template.New("layout.html").
			Funcs(funcMap).
			ParseFS(content, "layout.html", page)
		if err != nil {
			return nil, fmt.Errorf("разбор шаблона %s: %w", page, err)
		}
		pages[page] = tmpl
	}

	return &Renderer{pages: pages}, nil
}

// Render рендерит страницу name с данными data.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("неизвестный шаблон: %q", name)
	}
	if err := tmpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		return fmt.Errorf("рендеринг %s: %w", name, err)
	}
	return nil
}
