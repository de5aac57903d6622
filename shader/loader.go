package shader

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"

	"golang.org/x/sync/errgroup"
)

//go:embed glsl/*.vs glsl/*.fs
var embedded embed.FS

// Loader fetches the sources for a logical program.
type Loader interface {
	Load(ctx context.Context, name string) (*ProgramSet, error)
}

// FSLoader reads <name>.vs and <name>.fs from a file system.
type FSLoader struct {
	FS fs.FS
}

// NewFSLoader returns a loader over dir, or over the embedded sources if dir is empty.
func NewFSLoader(dir string) *FSLoader {
	if dir == "" {
		sub, err := fs.Sub(embedded, "glsl")
		if err != nil {
			panic(fmt.Sprintf("shader: embedded sources: %v", err))
		}
		return &FSLoader{FS: sub}
	}
	return &FSLoader{FS: os.DirFS(dir)}
}

// Load reads both stages concurrently and validates the result.
func (l *FSLoader) Load(ctx context.Context, name string) (*ProgramSet, error) {
	set := &ProgramSet{Name: name}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		src, err := l.read(ctx, name+".vs")
		set.Vertex = src
		return err
	})
	g.Go(func() error {
		src, err := l.read(ctx, name+".fs")
		set.Fragment = src
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, &LoadError{Program: name, Stage: StageFetch, Err: err}
	}

	if err := Validate(set); err != nil {
		return nil, err
	}
	return set, nil
}

func (l *FSLoader) read(ctx context.Context, file string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := fs.ReadFile(l.FS, path.Clean(file))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%s not found", file)
		}
		return "", err
	}
	return string(data), nil
}
