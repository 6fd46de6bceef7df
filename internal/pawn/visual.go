package pawn

import (
	"context"
	"net/url"
	"path"

	"github.com/pkg/errors"
)

// AssetVisual is a controller model the renderer fetches by URL.
type AssetVisual struct {
	Path string
	URL  string
}

// AssetPath returns the profile relative model path.
func (v AssetVisual) AssetPath() string {
	return v.Path
}

// URLLoader resolves model paths against a base URL. It does no I/O; the
// browser side downloads the model.
type URLLoader struct {
	base *url.URL
}

// NewURLLoader parses base, e.g. "https://cdn.example.com/profiles/".
func NewURLLoader(base string) (*URLLoader, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, errors.Wrap(err, "parse asset base url")
	}
	return &URLLoader{base: u}, nil
}

// LoadVisual implements VisualLoader.
func (l *URLLoader) LoadVisual(ctx context.Context, assetPath string) (Visual, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if assetPath == "" {
		return nil, errors.New("empty asset path")
	}
	u := *l.base
	u.Path = path.Join(u.Path, assetPath)
	return AssetVisual{Path: assetPath, URL: u.String()}, nil
}
