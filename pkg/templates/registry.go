package templates

import (
	"bytes"
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"text/template"

	"dabwish/pkg/errors"
)

//go:embed assets/*/*.tmpl
var embeddedFS embed.FS

// Message templates shipped with the binary
const (
	TelegramWelcome          = "telegram/welcome"
	TelegramVerificationCode = "telegram/verification_code"
	TelegramWishNotification = "telegram/wish_notification"
)

// Registry holds parsed templates keyed by their path without the .tmpl
// extension. It is immutable once loaded.
type Registry struct {
	templates map[string]*template.Template
}

// Load parses every .tmpl file under fsys. Templates fail to render when
// the data lacks a referenced key.
func Load(fsys fs.FS) (*Registry, error) {
	r := &Registry{templates: map[string]*template.Template{}}

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || path.Ext(p) != ".tmpl" {
			return err
		}

		id := strings.TrimSuffix(p, ".tmpl")
		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return errors.Wrapf(err, "read template %s", id)
		}
		parsed, err := template.New(id).Funcs(funcs).Option("missingkey=error").Parse(string(content))
		if err != nil {
			return errors.Wrapf(err, "parse template %s", id)
		}
		r.templates[id] = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Require fails when any of ids was not loaded
func (r *Registry) Require(ids ...string) error {
	for _, id := range ids {
		if _, ok := r.templates[id]; !ok {
			return errors.Wrapf(errors.ErrNotFound, "template %s", id)
		}
	}
	return nil
}

// Render executes the template id with data
func (r *Registry) Render(id string, data any) (string, error) {
	tmpl, ok := r.templates[id]
	if !ok {
		return "", errors.Wrapf(errors.ErrNotFound, "template %s", id)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Wrapf(err, "render template %s", id)
	}
	return buf.String(), nil
}

// IDs returns the loaded template ids in sorted order
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.templates))
	for id := range r.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

var loadEmbedded = sync.OnceValues(func() (*Registry, error) {
	sub, err := fs.Sub(embeddedFS, "assets")
	if err != nil {
		return nil, errors.Wrap(err, "open embedded templates")
	}
	r, err := Load(sub)
	if err != nil {
		return nil, err
	}
	if err := r.Require(TelegramWelcome, TelegramVerificationCode, TelegramWishNotification); err != nil {
		return nil, err
	}
	return r, nil
})

// Get returns the registry of embedded templates. It panics when they do not
// parse, which can only happen with a broken build.
func Get() *Registry {
	r, err := loadEmbedded()
	if err != nil {
		panic(err)
	}
	return r
}
