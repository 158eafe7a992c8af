package disc

import (
	"fmt"
	"path/filepath"

	"github.com/hansbonini/disctools/pkg/common"
	"go.uber.org/multierr"
)

// Boot region layout
const (
	ApploaderOffset     = 0x2440
	apploaderSizeField  = ApploaderOffset + 0x14
	apploaderTrailer    = ApploaderOffset + 0x18
	apploaderHeaderSize = 0x20

	DOLOffsetField  = 0x420
	dolCodeSegments = 7
	dolDataSegments = 11

	ApploaderFilename = "apploader.img"
	DOLFilename       = "boot.dol"
)

// dolSegment locates the offset and size words of one DOL segment,
// relative to the start of the DOL
type dolSegment struct {
	offsetField uint64
	sizeField   uint64
}

// dolSegments lists the 7 code segments followed by the 11 data segments
var dolSegments = func() []dolSegment {
	segments := make([]dolSegment, 0, dolCodeSegments+dolDataSegments)
	for i := range uint64(dolCodeSegments) {
		segments = append(segments, dolSegment{offsetField: 0x00 + i*4, sizeField: 0x90 + i*4})
	}
	for i := range uint64(dolDataSegments) {
		segments = append(segments, dolSegment{offsetField: 0x1C + i*4, sizeField: 0xAC + i*4})
	}
	return segments
}()

func requireDisc(v Volume) error {
	if platform := v.Platform(); !IsDisc(platform) {
		return fmt.Errorf("%w: %s volume has no boot region", ErrInvalidKind, platform)
	}
	return nil
}

// ApploaderSize returns the apploader's size including its 0x20 byte header
func ApploaderSize(v Volume, partition Partition) (uint64, error) {
	if err := requireDisc(v); err != nil {
		return 0, err
	}

	bodySize, err := ReadUint32(v, apploaderSizeField, partition)
	if err != nil {
		return 0, common.FormatError(common.ErrFailedToReadApploaderSize, err)
	}
	trailerSize, err := ReadUint32(v, apploaderTrailer, partition)
	if err != nil {
		return 0, common.FormatError(common.ErrFailedToReadApploaderSize, err)
	}

	size := uint64(bodySize) + uint64(trailerSize) + apploaderHeaderSize
	common.LogDebug(common.DebugApploaderSize, size)
	return size, nil
}

// ExportApploader writes the apploader, header included, to exportFilename
func (e *Extractor) ExportApploader(v Volume, partition Partition, exportFilename string) error {
	size, err := ApploaderSize(v, partition)
	if err != nil {
		return err
	}

	if err := e.ExportData(v, partition, ApploaderOffset, size, exportFilename); err != nil {
		return err
	}
	common.LogInfo(common.InfoApploaderExported, exportFilename, size)
	return nil
}

// BootDOLOffset returns where the boot DOL starts within the partition
func BootDOLOffset(v Volume, partition Partition) (uint64, error) {
	platform := v.Platform()
	if err := requireDisc(v); err != nil {
		return 0, err
	}

	offset, err := ReadUint32(v, DOLOffsetField, partition)
	if err != nil {
		return 0, common.FormatError(common.ErrFailedToReadDOLOffset, err)
	}

	shift := AddressShift(platform)
	common.LogDebug(common.DebugDOLOffset, uint64(offset)<<shift, shift)
	return uint64(offset) << shift, nil
}

// BootDOLSize returns the size of the DOL at dolOffset: the furthest end of
// any of its 18 segments. Any unreadable segment word fails the whole call.
func BootDOLSize(v Volume, partition Partition, dolOffset uint64) (uint64, error) {
	if err := requireDisc(v); err != nil {
		return 0, err
	}

	var dolSize uint64
	for i, segment := range dolSegments {
		offset, err := ReadUint32(v, dolOffset+segment.offsetField, partition)
		if err != nil {
			return 0, common.FormatError(fmt.Sprintf(common.ErrFailedToReadDOLSegment, i), err)
		}
		size, err := ReadUint32(v, dolOffset+segment.sizeField, partition)
		if err != nil {
			return 0, common.FormatError(fmt.Sprintf(common.ErrFailedToReadDOLSegment, i), err)
		}
		dolSize = max(dolSize, uint64(offset)+uint64(size))
	}

	common.LogDebug(common.DebugDOLSize, dolSize)
	return dolSize, nil
}

// ExportDOL writes the boot DOL to exportFilename
func (e *Extractor) ExportDOL(v Volume, partition Partition, exportFilename string) error {
	if err := requireDisc(v); err != nil {
		return err
	}

	dolOffset, err := BootDOLOffset(v, partition)
	if err != nil {
		return err
	}
	dolSize, err := BootDOLSize(v, partition, dolOffset)
	if err != nil {
		return err
	}

	if err := e.ExportData(v, partition, dolOffset, dolSize, exportFilename); err != nil {
		return err
	}
	common.LogInfo(common.InfoDOLExported, exportFilename, dolSize)
	return nil
}

// ExportSystemData writes apploader.img and boot.dol into exportFolder.
// Both exports are always attempted; the error combines every failure.
func (e *Extractor) ExportSystemData(v Volume, partition Partition, exportFolder string) error {
	return multierr.Combine(
		e.ExportApploader(v, partition, filepath.Join(exportFolder, ApploaderFilename)),
		e.ExportDOL(v, partition, filepath.Join(exportFolder, DOLFilename)),
	)
}
