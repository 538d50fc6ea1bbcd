// Package seed imports cases from a directory of Markdown files into the
// content store. Each file carries its metadata as YAML (---) or TOML (+++)
// front matter followed by the case body.
package seed

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/pkordes/case-gallery/internal/domain"
)

// Document is one parsed case file.
type Document struct {
	// Name is the file path the document was read from.
	Name string
	Meta FrontMatter
	Body string
}

// FrontMatter is the metadata block of a case file.
type FrontMatter struct {
	Title     string    `yaml:"title" toml:"title"`
	Slug      string    `yaml:"slug" toml:"slug"`
	Status    string    `yaml:"status" toml:"status"`
	Date      time.Time `yaml:"date" toml:"date"`
	MenuOrder int       `yaml:"menu_order" toml:"menu_order"`
	Featured  bool      `yaml:"featured" toml:"featured"`
	Excerpt   string    `yaml:"excerpt" toml:"excerpt"`

	// Categories are "/"-separated name paths, e.g. "Body/Tummy".
	Categories []string `yaml:"categories" toml:"categories"`
	Procedures []string `yaml:"procedures" toml:"procedures"`

	Patient          Patient        `yaml:"patient" toml:"patient"`
	PatientInfo      map[string]any `yaml:"patient_info" toml:"patient_info"`
	ProcedureDetails map[string]any `yaml:"procedure_details" toml:"procedure_details"`
	SEO              *SEO           `yaml:"seo" toml:"seo"`

	Before []Image `yaml:"before" toml:"before"`
	After  []Image `yaml:"after" toml:"after"`

	Meta       map[string]string `yaml:"meta" toml:"meta"`
	ExternalID string            `yaml:"external_id" toml:"external_id"`
}

// Patient holds the filterable patient attributes.
type Patient struct {
	Age    *int   `yaml:"age" toml:"age"`
	Gender string `yaml:"gender" toml:"gender"`
}

// SEO mirrors domain.SEO with file tags.
type SEO struct {
	Title       string `yaml:"title" toml:"title" json:"title,omitempty"`
	Description string `yaml:"description" toml:"description" json:"description,omitempty"`
	Keywords    string `yaml:"keywords" toml:"keywords" json:"keywords,omitempty"`
	NoIndex     bool   `yaml:"noindex" toml:"noindex" json:"noindex,omitempty"`
}

// Image is a before or after photo.
type Image struct {
	URL    string `yaml:"url" toml:"url"`
	Alt    string `yaml:"alt" toml:"alt"`
	Width  int    `yaml:"width" toml:"width"`
	Height int    `yaml:"height" toml:"height"`
}

const (
	yamlFence = "---"
	tomlFence = "+++"
)

// Parse splits a case file into front matter and body and decodes the front
// matter. The slug defaults to the slugified title, then the file name.
func Parse(name string, data []byte) (Document, error) {
	data = bytes.TrimPrefix(data, []byte("\uFEFF"))
	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	first, rest, _ := strings.Cut(text, "\n")
	fence := strings.TrimSpace(first)
	if fence != yamlFence && fence != tomlFence {
		return Document{}, fmt.Errorf("seed.Parse: %s: %w: missing front matter", name, domain.ErrValidation)
	}

	head, body, ok := cutFence(rest, fence)
	if !ok {
		return Document{}, fmt.Errorf("seed.Parse: %s: %w: unterminated front matter", name, domain.ErrValidation)
	}

	var fm FrontMatter
	var err error
	if fence == yamlFence {
		err = yaml.Unmarshal([]byte(head), &fm)
	} else {
		err = toml.Unmarshal([]byte(head), &fm)
	}
	if err != nil {
		return Document{}, fmt.Errorf("seed.Parse: %s: %w: %v", name, domain.ErrValidation, err)
	}

	fm.Title = strings.TrimSpace(fm.Title)
	if fm.Title == "" {
		return Document{}, fmt.Errorf("seed.Parse: %s: %w: title is required", name, domain.ErrValidation)
	}
	if fm.Slug == "" {
		fm.Slug = Slugify(fm.Title)
	}
	if fm.Slug == "" {
		fm.Slug = Slugify(strings.TrimSuffix(path.Base(name), path.Ext(name)))
	}
	fm.Slug = Slugify(fm.Slug)

	return Document{Name: name, Meta: fm, Body: strings.TrimSpace(body)}, nil
}

// cutFence finds the closing fence line in s.
func cutFence(s, fence string) (head, body string, ok bool) {
	lines := strings.SplitAfter(s, "\n")
	n := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == fence {
			return s[:n], s[n+len(line):], true
		}
		n += len(line)
	}
	return "", "", false
}

// Slugify lowercases s and joins its letter and digit runs with hyphens.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
