package source

type (
	// FileID uniquely identifies a buffer within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about how a buffer was loaded.
	FileFlags uint8
)

const (
	// FileVirtual indicates the buffer was added from memory (test, stdin, editor overlay).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
	FileNormalizedNFC
)

// File captures metadata and content for a single buffer.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of '\n' bytes, ascending
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol represents a human-readable position in a buffer.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based, bytes
}
