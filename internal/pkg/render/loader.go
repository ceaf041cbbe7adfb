package render

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
)

// loader serves templates referenced by include, import and extends from
// the search path of the main template, trimmed the same way.
type loader struct {
	fsys fs.FS
}

func (l *loader) Get(name string) (io.Reader, error) {
	p, err := l.Path(name)
	if err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("template %s not found", name)
		}
		return nil, err
	}
	return strings.NewReader(trimBlocks(string(data))), nil
}

func (l *loader) Path(name string) (string, error) {
	p := path.Clean(strings.TrimPrefix(name, "./"))
	if !fs.ValidPath(p) {
		return "", fmt.Errorf("template %s is outside the template directory", name)
	}
	return p, nil
}
