package gcm

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hansbonini/disctools/pkg/common"
	"github.com/hansbonini/disctools/pkg/disc"
)

// ErrMalformedFST is returned when the filesystem table is inconsistent
var ErrMalformedFST = errors.New("malformed filesystem table")

// ReadFileSystem loads the disc's filesystem table (FST) and returns its
// root directory
func ReadFileSystem(v disc.Volume, partition disc.Partition) (*disc.FileInfo, error) {
	platform := v.Platform()
	if !disc.IsDisc(platform) {
		return nil, fmt.Errorf("%w: %s has no filesystem table", disc.ErrInvalidKind, platform)
	}
	shift := disc.AddressShift(platform)

	rawOffset, err := disc.ReadUint32(v, fstOffsetField, partition)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToReadFST, err)
	}
	rawSize, err := disc.ReadUint32(v, fstSizeField, partition)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToReadFST, err)
	}
	var region [1]byte
	if err := v.Read(regionCodeField, region[:], partition); err != nil {
		return nil, common.FormatError(common.ErrFailedToReadFST, err)
	}

	fstOffset := uint64(rawOffset) << shift
	fstSize := uint64(rawSize) << shift
	if fstSize < fstEntrySize || fstSize > maxFSTSize {
		return nil, fmt.Errorf("%w: size 0x%X", ErrMalformedFST, fstSize)
	}

	common.LogDebug(common.DebugFSTLocation, fstOffset, fstSize, fstSize/fstEntrySize)

	data := make([]byte, fstSize)
	if err := v.Read(fstOffset, data, partition); err != nil {
		return nil, common.FormatError(common.ErrFailedToReadFST, err)
	}

	root, err := parseFST(data, shift, region[0])
	if err != nil {
		return nil, err
	}
	common.LogInfo(common.InfoFilesystemLoaded, binary.BigEndian.Uint32(data[8:12]))
	return root, nil
}

// fstParser decodes the flat FST entry array into a tree. Entry 0 is the
// root; a directory entry's third word is the index one past its last
// descendant.
type fstParser struct {
	entries []byte
	names   []byte
	shift   uint
	region  byte
}

func parseFST(data []byte, shift uint, region byte) (*disc.FileInfo, error) {
	if len(data) < fstEntrySize || data[0]&1 == 0 {
		return nil, fmt.Errorf("%w: root is not a directory", ErrMalformedFST)
	}

	count := binary.BigEndian.Uint32(data[8:12])
	tableSize := uint64(count) * fstEntrySize
	if count == 0 || tableSize > uint64(len(data)) {
		return nil, fmt.Errorf("%w: %d entries do not fit in 0x%X bytes", ErrMalformedFST, count, len(data))
	}

	p := &fstParser{
		entries: data[:tableSize],
		names:   data[tableSize:],
		shift:   shift,
		region:  region,
	}
	root := disc.NewDirectory("")
	if err := p.parseDirectory(root, 1, count, 1); err != nil {
		return nil, err
	}
	return root, nil
}

func (p *fstParser) parseDirectory(dir *disc.FileInfo, start, end uint32, depth int) error {
	if depth > maxDirectoryDepth {
		return fmt.Errorf("%w: directories nested deeper than %d", ErrMalformedFST, maxDirectoryDepth)
	}
	for i := start; i < end; {
		entry := p.entries[uint64(i)*fstEntrySize:][:fstEntrySize]
		isDir := entry[0]&1 != 0
		name, err := p.name(common.Uint24BE(entry[1:4]))
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		second := binary.BigEndian.Uint32(entry[4:8])
		third := binary.BigEndian.Uint32(entry[8:12])

		if !isDir {
			offset := uint64(second) << p.shift
			common.LogDebug(common.DebugFSTEntry, i, false, name, offset, third)
			dir.Add(disc.NewFile(name, offset, uint64(third)))
			i++
			continue
		}

		if third <= i || third > end {
			return fmt.Errorf("%w: directory %d ends at %d outside (%d, %d]", ErrMalformedFST, i, third, i, end)
		}
		common.LogDebug(common.DebugFSTEntry, i, true, name, 0, third)
		child := disc.NewDirectory(name)
		dir.Add(child)
		if err := p.parseDirectory(child, i+1, third, depth+1); err != nil {
			return err
		}
		i = third
	}
	return nil
}

func (p *fstParser) name(offset uint32) (string, error) {
	if uint64(offset) >= uint64(len(p.names)) {
		return "", fmt.Errorf("%w: name offset 0x%X beyond string table", ErrMalformedFST, offset)
	}
	return decodeText(common.CString(p.names[offset:]), p.region), nil
}
