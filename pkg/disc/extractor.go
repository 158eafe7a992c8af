package disc

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hansbonini/disctools/pkg/common"
	"github.com/spf13/afero"
)

// DefaultChunkSize bounds the staging buffer used while copying (128 MiB)
const DefaultChunkSize uint64 = 0x08000000

// ExistingPolicy decides what ExportDirectory does with files that are
// already present at the destination
type ExistingPolicy uint8

const (
	ExistingSkip ExistingPolicy = iota
	ExistingOverwrite
	ExistingFail
)

func (p ExistingPolicy) String() string {
	switch p {
	case ExistingOverwrite:
		return "overwrite"
	case ExistingFail:
		return "fail"
	default:
		return "skip"
	}
}

// ParseExistingPolicy converts "skip", "overwrite" or "fail"
func ParseExistingPolicy(s string) (ExistingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skip":
		return ExistingSkip, nil
	case "overwrite":
		return ExistingOverwrite, nil
	case "fail":
		return ExistingFail, nil
	}
	return ExistingSkip, fmt.Errorf("unknown existing-file policy %q", s)
}

// ProgressFunc is called with the logical path of every entry before it is
// processed. Returning true stops the export.
type ProgressFunc func(path string) (stop bool)

// Extractor copies volume data to a host filesystem. The zero value copies
// with DefaultChunkSize and the skip policy but needs a filesystem, so use
// NewExtractor.
type Extractor struct {
	fs        afero.Fs
	chunkSize uint64
	existing  ExistingPolicy
}

// NewExtractor creates an extractor writing into fs
func NewExtractor(fs afero.Fs) *Extractor {
	return &Extractor{
		fs:        fs,
		chunkSize: DefaultChunkSize,
		existing:  ExistingSkip,
	}
}

// SetChunkSize changes the copy staging buffer size. Zero, or a size that
// cannot be allocated, restores DefaultChunkSize.
func (e *Extractor) SetChunkSize(size uint64) {
	if _, err := common.SafeUint64ToInt(size); err != nil || size == 0 {
		size = DefaultChunkSize
	}
	e.chunkSize = size
}

// ChunkSize returns the copy staging buffer size
func (e *Extractor) ChunkSize() uint64 { return e.chunkSize }

// SetExistingPolicy changes how ExportDirectory treats existing files
func (e *Extractor) SetExistingPolicy(policy ExistingPolicy) {
	e.existing = policy
}

// ReadFile reads up to len(buffer) bytes of info starting offsetInFile bytes
// into the file. It returns the number of bytes placed in buffer, which is
// zero for missing entries, directories, offsets past the end and failed
// reads. Partial reads are never reported.
func ReadFile(v Volume, partition Partition, info *FileInfo, buffer []byte, offsetInFile uint64) int {
	if info == nil || info.IsDirectory() || offsetInFile >= info.Size() {
		return 0
	}

	readLength := min(uint64(len(buffer)), info.Size()-offsetInFile)

	common.LogDebug(common.DebugReadingFile, readLength, offsetInFile, info.Path(), info.Offset(), info.Size())

	if err := v.Read(info.Offset()+offsetInFile, buffer[:readLength], partition); err != nil {
		return 0
	}

	return int(readLength)
}

// ExportData copies size bytes starting at offset into a new file at
// exportFilename. A failed copy leaves the partially written file behind.
func (e *Extractor) ExportData(v Volume, partition Partition, offset, size uint64, exportFilename string) (err error) {
	f, err := e.fs.Create(exportFilename)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrWriteFailure, common.ErrFailedToCreateOutputFile, exportFilename, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("%w: %s %s: %w", ErrWriteFailure, common.ErrFailedToWriteOutput, exportFilename, closeErr)
		}
	}()

	chunkSize := e.chunkSize
	if chunkSize == 0 {
		chunkSize = DefaultChunkSize
	}

	for size > 0 {
		readSize := min(size, chunkSize)
		common.LogDebug(common.DebugCopyChunk, offset, readSize, size)

		buffer := make([]byte, readSize)

		if err := v.Read(offset, buffer, partition); err != nil {
			return fmt.Errorf("%w: %s at 0x%X: %w", ErrReadFailure, common.ErrFailedToReadVolume, offset, err)
		}

		if _, err := f.Write(buffer); err != nil {
			return fmt.Errorf("%w: %s %s: %w", ErrWriteFailure, common.ErrFailedToWriteOutput, exportFilename, err)
		}

		size -= readSize
		offset += readSize
	}

	return nil
}

// ExportFile copies one file entry to exportFilename
func (e *Extractor) ExportFile(v Volume, partition Partition, info *FileInfo, exportFilename string) error {
	if info == nil {
		return ErrNotFound
	}
	if info.IsDirectory() {
		return fmt.Errorf("%w: %s is a directory", ErrInvalidKind, info.Path())
	}

	return e.ExportData(v, partition, info.Offset(), info.Size(), exportFilename)
}

// ExportDirectory exports the children of directory into exportFolder,
// descending into subdirectories when recursive is set. filesystemPath is the
// logical path of directory and prefixes every path passed to updateProgress.
//
// Per-entry failures are logged and do not stop the walk. The returned error
// is ErrCanceled when updateProgress asked to stop, or describes why the walk
// could not start at all.
func (e *Extractor) ExportDirectory(v Volume, partition Partition, directory *FileInfo, recursive bool,
	filesystemPath, exportFolder string, updateProgress ProgressFunc) error {
	if directory == nil {
		return ErrNotFound
	}
	if !directory.IsDirectory() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidKind, directory.Path())
	}
	if updateProgress == nil {
		updateProgress = func(string) bool { return false }
	}

	canceled, err := e.exportDirectory(v, partition, directory, recursive, filesystemPath, exportFolder, updateProgress)
	if err != nil {
		return err
	}
	if canceled {
		return ErrCanceled
	}
	return nil
}

func (e *Extractor) exportDirectory(v Volume, partition Partition, directory *FileInfo, recursive bool,
	filesystemPath, exportFolder string, updateProgress ProgressFunc) (bool, error) {
	if err := e.fs.MkdirAll(exportFolder, 0o755); err != nil {
		return false, fmt.Errorf("%w: %s %s: %w", ErrWriteFailure, common.ErrFailedToCreateOutputDir, exportFolder, err)
	}

	for child := range directory.Entries() {
		if child.IsDirectory() && !recursive {
			continue
		}

		path := common.JoinDiscPath(filesystemPath, child.Name(), child.IsDirectory())
		if updateProgress(path) {
			common.LogInfo(common.InfoExportCanceled, path)
			return true, nil
		}

		if !common.IsSafeEntryName(child.Name()) {
			common.LogError(common.ErrUnsafeEntryName, child.Name(), filesystemPath)
			continue
		}

		exportPath := filepath.Join(exportFolder, child.Name())
		common.LogDebug(common.DebugExportPath, exportPath)

		if !child.IsDirectory() {
			if err := e.exportEntry(v, partition, child, exportPath); err != nil {
				common.LogError(common.ErrFailedToExportEntry, exportPath, err)
			}
			continue
		}

		canceled, err := e.exportDirectory(v, partition, child, recursive, path, exportPath, updateProgress)
		if err != nil {
			common.LogError(common.ErrFailedToExportDirectory, exportPath, err)
			continue
		}
		if canceled {
			return true, nil
		}
	}

	return false, nil
}

// exportEntry applies the existing-file policy before exporting a file
func (e *Extractor) exportEntry(v Volume, partition Partition, info *FileInfo, exportPath string) error {
	exists, err := afero.Exists(e.fs, exportPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}

	if exists {
		switch e.existing {
		case ExistingOverwrite:
			common.LogInfo(common.InfoOverwritingFile, exportPath)
		case ExistingFail:
			return fmt.Errorf("%w: %s", ErrAlreadyExists, exportPath)
		default:
			common.LogInfo(common.InfoAlreadyExists, exportPath)
			return nil
		}
	}

	return e.ExportFile(v, partition, info, exportPath)
}
