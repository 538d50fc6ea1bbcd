// Package view locates and renders gallery templates.
//
// Templates are searched across an ordered list of roots: the active theme,
// its parent theme, then the bundled templates compiled into the binary. The
// first root holding a name wins. Lookups and parsed templates are memoised
// for the lifetime of the Resolver and never invalidated.
package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/pkordes/case-gallery/internal/domain"
	"github.com/pkordes/case-gallery/templates"
)

// Root is one template search location.
type Root struct {
	Name string
	FS   fs.FS
}

// Location is a resolved template: the root that holds it and its name
// within that root. The zero Location resolves nothing.
type Location struct {
	Root string
	Name string

	fsys fs.FS
}

// IsZero reports whether l is the empty location.
func (l Location) IsZero() bool { return l.fsys == nil }

// Path returns a display form of the location, "root:name".
func (l Location) Path() string {
	if l.IsZero() {
		return ""
	}
	return l.Root + ":" + l.Name
}

type lookup struct {
	loc Location
	ok  bool
}

// Resolver finds templates across its roots and renders them.
// It is safe for concurrent use.
type Resolver struct {
	roots []Root
	log   *slog.Logger

	located sync.Map // name -> lookup
	parsed  sync.Map // Location.Path() -> *template.Template
}

// NewResolver builds a Resolver that searches roots in order.
func NewResolver(logger *slog.Logger, roots ...Root) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{roots: roots, log: logger}
}

// DefaultRoots returns the theme override directories, when set, followed by
// the bundled templates.
func DefaultRoots(themeDir, parentThemeDir string) []Root {
	var roots []Root
	if themeDir != "" {
		roots = append(roots, Root{Name: "theme", FS: os.DirFS(themeDir)})
	}
	if parentThemeDir != "" {
		roots = append(roots, Root{Name: "parent-theme", FS: os.DirFS(parentThemeDir)})
	}
	return append(roots, Root{Name: "bundled", FS: templates.FS})
}

// Locate returns the first candidate name found in any root. Candidates are
// tried in order, and for each candidate the roots are tried in order.
func (r *Resolver) Locate(names ...string) (Location, bool) {
	for _, name := range names {
		if l := r.locateOne(name); l.ok {
			return l.loc, true
		}
	}
	return Location{}, false
}

func (r *Resolver) locateOne(name string) lookup {
	if v, ok := r.located.Load(name); ok {
		return v.(lookup)
	}
	var l lookup
	for _, root := range r.roots {
		info, err := fs.Stat(root.FS, name)
		if err == nil && !info.IsDir() {
			l = lookup{loc: Location{Root: root.Name, Name: name, fsys: root.FS}, ok: true}
			break
		}
	}
	v, _ := r.located.LoadOrStore(name, l)
	return v.(lookup)
}

// Render executes the template at loc with vars as its data. A zero location
// renders to the empty string without error.
func (r *Resolver) Render(loc Location, vars map[string]any) (string, error) {
	return r.execute(loc, vars)
}

// RenderPartial locates name and executes it with data as its dot.
// It is the render-to-string entry point for fragments.
func (r *Resolver) RenderPartial(name string, data any) (string, error) {
	loc, ok := r.Locate(name)
	if !ok {
		return "", fmt.Errorf("view.RenderPartial: %s: %w", name, domain.ErrNotFound)
	}
	return r.execute(loc, data)
}

func (r *Resolver) execute(loc Location, data any) (string, error) {
	if loc.IsZero() {
		return "", nil
	}
	tmpl, err := r.template(loc)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("view.Render: %s: %w", loc.Path(), err)
	}
	return buf.String(), nil
}

func (r *Resolver) template(loc Location) (*template.Template, error) {
	key := loc.Path()
	if v, ok := r.parsed.Load(key); ok {
		return v.(*template.Template), nil
	}
	src, err := fs.ReadFile(loc.fsys, loc.Name)
	if err != nil {
		return nil, fmt.Errorf("view.Render: read %s: %w", key, err)
	}
	tmpl, err := template.New(loc.Name).Funcs(r.funcs()).Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("view.Render: parse %s: %w", key, err)
	}
	v, _ := r.parsed.LoadOrStore(key, tmpl)
	return v.(*template.Template), nil
}

// funcs are the helpers available inside every template.
func (r *Resolver) funcs() template.FuncMap {
	return template.FuncMap{
		// partial renders another located template with data. A missing
		// partial renders nothing.
		"partial": func(name string, data any) (template.HTML, error) {
			loc, ok := r.Locate(name)
			if !ok {
				r.log.Warn("template partial not found", "name", name)
				return "", nil
			}
			out, err := r.execute(loc, data)
			return template.HTML(out), err
		},
		"join": strings.Join,
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
		"add": func(a, b int) int { return a + b },
	}
}
