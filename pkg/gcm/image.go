package gcm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/hansbonini/disctools/pkg/common"
	"github.com/hansbonini/disctools/pkg/disc"
	"github.com/spf13/afero"
)

var (
	// ErrPartitionUnsupported is returned for reads inside a partition;
	// partitions are encrypted and decryption is not provided
	ErrPartitionUnsupported = errors.New("partitioned reads are not supported")
	// ErrOutOfRange is returned for reads past the end of the image
	ErrOutOfRange = errors.New("read out of range")
)

// imageFile is what Image needs from an opened file
type imageFile interface {
	io.ReaderAt
	io.Closer
}

// Image is a disc.Volume backed by a raw, unencrypted image file
type Image struct {
	file     imageFile
	name     string
	size     uint64
	platform disc.Platform
}

// Open opens a disc image and classifies its platform
func Open(fs afero.Fs, filename string) (*Image, error) {
	file, err := fs.Open(filename)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToOpenImage, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, common.FormatError(common.ErrFailedToOpenImage, err)
	}
	size, err := common.SafeInt64ToUint64(info.Size())
	if err != nil {
		file.Close()
		return nil, common.FormatError(common.ErrFailedToOpenImage, err)
	}

	img := &Image{
		file: file,
		name: filename,
		size: size,
	}
	img.platform = img.classify()

	common.LogInfo(common.InfoImageOpened, img.platform, filename, size)
	return img, nil
}

func (img *Image) Close() error {
	if img.file != nil {
		return img.file.Close()
	}
	return nil
}

// Name returns the path the image was opened from
func (img *Image) Name() string { return img.name }

// Size returns the image size in bytes
func (img *Image) Size() uint64 { return img.size }

// Platform returns the detected platform
func (img *Image) Platform() disc.Platform { return img.platform }

// Read fills buf from the image. Only disc.NoPartition is accepted.
func (img *Image) Read(offset uint64, buf []byte, partition disc.Partition) error {
	if !partition.IsNone() {
		return fmt.Errorf("%w: partition %s", ErrPartitionUnsupported, partition)
	}

	end := offset + uint64(len(buf))
	if end < offset || end > img.size {
		return fmt.Errorf("%w: 0x%X+0x%X exceeds image size 0x%X", ErrOutOfRange, offset, len(buf), img.size)
	}

	start, err := common.SafeUint64ToInt64(offset)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOutOfRange, err)
	}

	n, err := img.file.ReadAt(buf, start)
	if n == len(buf) {
		return nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("short read at 0x%X (%d of %d bytes): %w", offset, n, len(buf), err)
}

// classify detects the platform from the magic words and, failing that,
// from the file extension
func (img *Image) classify() disc.Platform {
	if img.size >= minimumImageSize {
		var head [minimumImageSize]byte
		if err := img.Read(0, head[:], disc.NoPartition); err == nil {
			wiiMagic := binary.BigEndian.Uint32(head[wiiMagicField:])
			gcMagic := binary.BigEndian.Uint32(head[gcMagicField:])
			common.LogDebug(common.DebugPlatformMagic, wiiMagic, gcMagic)

			switch {
			case wiiMagic == WiiMagic:
				return disc.PlatformWiiDisc
			case gcMagic == GameCubeMagic:
				return disc.PlatformGameCubeDisc
			case isWADHeader(head[:]):
				return disc.PlatformWiiWAD
			}
		}
	}

	switch strings.ToLower(filepath.Ext(img.name)) {
	case ".dol", ".elf":
		return disc.PlatformELFOrDOL
	}
	return disc.PlatformRaw
}

func isWADHeader(head []byte) bool {
	if binary.BigEndian.Uint32(head[0:4]) != wadHeaderSize {
		return false
	}
	kind := string(head[wadTypeField : wadTypeField+wadTypeLength])
	for _, t := range wadTypes {
		if kind == t {
			return true
		}
	}
	return false
}
