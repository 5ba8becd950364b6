package source

import (
	"crypto/sha256"
	"fmt"
	"os"

	"fortio.org/safecast"
)

// FileSet manages a collection of buffers and resolves byte offsets to positions.
type FileSet struct {
	files []File
	index map[string]FileID // path -> latest id
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// Add stores a buffer from normalized bytes, computes LineIdx and Hash, and
// returns a new FileID. It always creates a new FileID even if a buffer with
// the same path already exists; the index points at the latest version.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	hash := sha256.Sum256(content)
	lineIdx := buildLineIndex(content)
	normalizedPath := normalizePath(path)

	lenFiles, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(lenFiles)
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Path:    normalizedPath,
		Content: content,
		LineIdx: lineIdx,
		Hash:    hash,
		Flags:   flags,
	})
	fileSet.index[normalizedPath] = id
	return id
}

// Load reads a buffer from disk, normalizes BOM/CRLF/NFC, and calls Add.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)
	content, hadNFC := normalizeNFC(content)

	flags := FileFlags(0)
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	if hadNFC {
		flags |= FileNormalizedNFC
	}
	return fileSet.Add(path, content, flags), nil
}

// AddVirtual stores an in-memory buffer (tests, stdin, editor overlays).
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	content, _ = removeBOM(content)
	content, _ = normalizeCRLF(content)
	content, _ = normalizeNFC(content)
	return fileSet.Add(name, content, FileVirtual)
}

// Get returns the buffer metadata for the given ID.
func (fileSet *FileSet) Get(id FileID) *File {
	return &fileSet.files[id]
}

// GetLatest returns the latest file ID for the given path, if it exists.
func (fileSet *FileSet) GetLatest(path string) (FileID, bool) {
	id, ok := fileSet.index[normalizePath(path)]
	return id, ok
}

// Resolve converts a span into line and column positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fileSet.files[span.File]
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// LineCount returns the number of lines in the buffer. A trailing newline
// does not start an extra line.
func (f *File) LineCount() uint32 {
	n, err := safecast.Conv[uint32](len(f.LineIdx))
	if err != nil {
		panic(fmt.Errorf("line index length overflow: %w", err))
	}
	if len(f.Content) == 0 {
		return 1
	}
	if f.Content[len(f.Content)-1] == '\n' {
		return n
	}
	return n + 1
}

// LineStart returns the byte offset where the 1-based line begins.
// Lines past the end of the buffer map to len(Content).
func (f *File) LineStart(lineNum uint32) uint32 {
	lenContent := f.contentLen()
	if lineNum <= 1 {
		return 0
	}
	if int(lineNum-2) >= len(f.LineIdx) {
		return lenContent
	}
	return f.LineIdx[lineNum-2] + 1
}

// LineEnd returns the byte offset just past the last content byte of the
// 1-based line, excluding the terminating newline.
func (f *File) LineEnd(lineNum uint32) uint32 {
	if lineNum == 0 {
		return 0
	}
	if int(lineNum-1) < len(f.LineIdx) {
		return f.LineIdx[lineNum-1]
	}
	return f.contentLen()
}

// Line returns the text of the 1-based line without its newline.
// Nonexistent lines yield an empty string.
func (f *File) Line(lineNum uint32) string {
	start := f.LineStart(lineNum)
	end := f.LineEnd(lineNum)
	if start >= end {
		return ""
	}
	return string(f.Content[start:end])
}

// LineOf returns the 1-based line number containing the byte offset.
func (f *File) LineOf(off uint32) uint32 {
	return toLineCol(f.LineIdx, off).Line
}

// Pos resolves a byte offset to a line/column pair.
func (f *File) Pos(off uint32) LineCol {
	return toLineCol(f.LineIdx, off)
}

func (f *File) contentLen() uint32 {
	n, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	return n
}
