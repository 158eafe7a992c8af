package disc

import (
	"iter"
	"strings"
)

// EntryKind tells files and directories apart
type EntryKind uint8

const (
	KindFile EntryKind = iota
	KindDirectory
)

func (k EntryKind) String() string {
	if k == KindDirectory {
		return "directory"
	}
	return "file"
}

// FileInfo is one node of a disc filesystem. Files carry a byte range,
// directories carry their children in on-disc order.
type FileInfo struct {
	kind     EntryKind
	name     string
	offset   uint64
	size     uint64
	parent   *FileInfo
	children []*FileInfo
}

// NewFile creates a file entry covering [offset, offset+size)
func NewFile(name string, offset, size uint64) *FileInfo {
	return &FileInfo{kind: KindFile, name: name, offset: offset, size: size}
}

// NewDirectory creates a directory entry owning the given children
func NewDirectory(name string, children ...*FileInfo) *FileInfo {
	dir := &FileInfo{kind: KindDirectory, name: name}
	for _, child := range children {
		dir.Add(child)
	}
	return dir
}

// Add appends child to a directory. It is a no-op on files.
func (f *FileInfo) Add(child *FileInfo) {
	if f.kind != KindDirectory || child == nil {
		return
	}
	child.parent = f
	f.children = append(f.children, child)
}

func (f *FileInfo) Kind() EntryKind   { return f.kind }
func (f *FileInfo) IsDirectory() bool { return f.kind == KindDirectory }
func (f *FileInfo) Name() string      { return f.name }

// Offset is the entry's byte offset within its partition; zero for directories
func (f *FileInfo) Offset() uint64 { return f.offset }

// Size is the entry's byte size; zero for directories
func (f *FileInfo) Size() uint64 { return f.size }

// Path returns the entry's path from the root, e.g. "sub/" or "sub/b.bin".
// The root itself has an empty path.
func (f *FileInfo) Path() string {
	if f.parent == nil {
		return ""
	}
	return f.parent.Path() + f.name + f.suffix()
}

func (f *FileInfo) suffix() string {
	if f.kind == KindDirectory {
		return "/"
	}
	return ""
}

// NumChildren returns the number of direct children
func (f *FileInfo) NumChildren() int { return len(f.children) }

// Entries yields the direct children in on-disc order
func (f *FileInfo) Entries() iter.Seq[*FileInfo] {
	return func(yield func(*FileInfo) bool) {
		for _, child := range f.children {
			if !yield(child) {
				return
			}
		}
	}
}

// All yields every descendant depth-first, parents before their children
func (f *FileInfo) All() iter.Seq[*FileInfo] {
	return func(yield func(*FileInfo) bool) {
		f.walk(yield)
	}
}

func (f *FileInfo) walk(yield func(*FileInfo) bool) bool {
	for _, child := range f.children {
		if !yield(child) {
			return false
		}
		if child.kind == KindDirectory && !child.walk(yield) {
			return false
		}
	}
	return true
}

// Lookup resolves a slash separated path below f. Matching is case
// insensitive, as on the console. Returns nil when nothing matches.
func (f *FileInfo) Lookup(path string) *FileInfo {
	current := f
	for _, component := range strings.Split(path, "/") {
		if component == "" {
			continue
		}
		var next *FileInfo
		for _, child := range current.children {
			if strings.EqualFold(child.name, component) {
				next = child
				break
			}
		}
		if next == nil {
			return nil
		}
		current = next
	}
	return current
}
