package resolver

import (
	"io/fs"
	"os"
)

// FileSystem is the subset of file access the resolver needs.
type FileSystem interface {
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
}

type osFileSystem struct{}

func (osFileSystem) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }
func (osFileSystem) ReadFile(name string) ([]byte, error)  { return os.ReadFile(name) }

// OSFileSystem reads from the host filesystem.
func OSFileSystem() FileSystem { return osFileSystem{} }
