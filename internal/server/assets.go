package server

import (
	"bytes"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/json"
	"github.com/tdewolff/minify/v2/svg"
)

type asset struct {
	data        []byte
	contentType string
}

// assets is the frontend held in memory, minified once at startup.
type assets struct {
	files   map[string]asset
	modTime time.Time
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("image/svg+xml", svg.Minify)
	m.AddFuncRegexp(regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$"), js.Minify)
	m.AddFuncRegexp(regexp.MustCompile("[/+]json$"), json.Minify)
	return m
}

// loadAssets reads every file of fsys. With minifyAssets set, text assets
// are minified; files the minifier has no handler for are kept as is.
func loadAssets(fsys fs.FS, minifyAssets bool) (*assets, error) {
	m := newMinifier()
	a := &assets{files: map[string]asset{}, modTime: time.Now()}
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return errors.Wrapf(err, "read %s", p)
		}
		ctype := mime.TypeByExtension(path.Ext(p))
		if ctype == "" {
			ctype = http.DetectContentType(data)
		}
		if minifyAssets {
			mediatype := strings.TrimSpace(strings.Split(ctype, ";")[0])
			out, err := m.Bytes(mediatype, data)
			switch {
			case err == nil:
				data = out
			case errors.Is(err, minify.ErrNotExist):
			default:
				return errors.Wrapf(err, "minify %s", p)
			}
		}
		a.files[p] = asset{data: data, contentType: ctype}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Len returns the number of files held.
func (a *assets) Len() int {
	return len(a.files)
}

func (a *assets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" {
		name = "index.html"
	}
	f, ok := a.files[name]
	if !ok {
		if f, ok = a.files[path.Join(name, "index.html")]; !ok {
			http.NotFound(w, r)
			return
		}
	}
	w.Header().Set("Content-Type", f.contentType)
	http.ServeContent(w, r, name, a.modTime, bytes.NewReader(f.data))
}
