package itf

import (
	"fmt"
	"iter"
	"path/filepath"
)

// DefaultPattern is the file name layout the trace generator writes.
const DefaultPattern = "out%d.itf.json"

// Source locates one trace.
type Source struct {
	Index int
	Path  string
}

// Catalog is a lazy, restartable sequence of trace sources. Each call to
// Sources starts again from the first source.
type Catalog interface {
	Sources() iter.Seq[Source]
}

// NumberedDir yields Root/Pattern formatted with Start, Start+1, ...,
// Start+Count-1.
type NumberedDir struct {
	Root    string
	Pattern string
	Start   int
	Count   int
}

// Sources implements Catalog.
func (d NumberedDir) Sources() iter.Seq[Source] {
	pattern := d.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	return func(yield func(Source) bool) {
		for i := d.Start; i < d.Start+d.Count; i++ {
			src := Source{Index: i, Path: filepath.Join(d.Root, fmt.Sprintf(pattern, i))}
			if !yield(src) {
				return
			}
		}
	}
}

// Files yields explicit paths, indexed from 0 in order.
type Files []string

// Sources implements Catalog.
func (f Files) Sources() iter.Seq[Source] {
	return func(yield func(Source) bool) {
		for i, path := range f {
			if !yield(Source{Index: i, Path: path}) {
				return
			}
		}
	}
}
