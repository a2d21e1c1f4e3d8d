package shader

import (
	"embed"
	"io/fs"
	"os"
)

//go:embed assets/*.wgsl
var embeddedSources embed.FS

// DefaultSources returns the file system holding the built-in technique sources.
//
// Returns:
//   - fs.FS: the embedded WGSL sources, rooted so that "light.vs.wgsl" resolves directly
func DefaultSources() fs.FS {
	sub, err := fs.Sub(embeddedSources, "assets")
	if err != nil {
		panic("shader: embedded assets missing: " + err.Error())
	}
	return sub
}

// DirSources returns a file system reading technique sources from dir on disk.
//
// Parameters:
//   - dir: the directory holding the .wgsl files
//
// Returns:
//   - fs.FS: the directory file system
func DirSources(dir string) fs.FS {
	return os.DirFS(dir)
}
