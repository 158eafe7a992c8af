// Package disc extracts data from partitioned GameCube and Wii disc volumes:
// byte ranges, single files, whole directory trees and the boot region
// (apploader and boot DOL).
package disc

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Platform classifies what a Volume contains
type Platform uint8

const (
	PlatformRaw Platform = iota
	PlatformGameCubeDisc
	PlatformWiiDisc
	PlatformWiiWAD
	PlatformELFOrDOL
)

// String returns a human readable platform name
func (p Platform) String() string {
	switch p {
	case PlatformGameCubeDisc:
		return "GameCube disc"
	case PlatformWiiDisc:
		return "Wii disc"
	case PlatformWiiWAD:
		return "Wii WAD"
	case PlatformELFOrDOL:
		return "ELF/DOL"
	default:
		return "raw"
	}
}

// MarshalText renders the platform by name in manifests and reports
func (p Platform) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// IsDisc reports whether the platform uses the GameCube/Wii disc layout
func IsDisc(p Platform) bool {
	return p == PlatformGameCubeDisc || p == PlatformWiiDisc
}

// AddressShift returns how far stored disc addresses are shifted left.
// Wii discs store offsets divided by 4.
func AddressShift(p Platform) uint {
	if p == PlatformWiiDisc {
		return 2
	}
	return 0
}

// Partition identifies the logical partition reads are relative to
type Partition struct {
	Offset uint64
}

// NoPartition is used for media without partitions
var NoPartition = Partition{Offset: math.MaxUint64}

// IsNone reports whether p is NoPartition
func (p Partition) IsNone() bool {
	return p == NoPartition
}

func (p Partition) String() string {
	if p.IsNone() {
		return "none"
	}
	return fmt.Sprintf("0x%X", p.Offset)
}

// Volume is a random-access disc image. Implementations handle partition
// remapping and decryption; Read must fill buf completely or fail.
type Volume interface {
	Read(offset uint64, buf []byte, partition Partition) error
	Platform() Platform
}

// ReadUint32 reads a big-endian 32-bit value from the volume
func ReadUint32(v Volume, offset uint64, partition Partition) (uint32, error) {
	var buf [4]byte
	if err := v.Read(offset, buf[:], partition); err != nil {
		return 0, fmt.Errorf("%w at 0x%X: %w", ErrReadFailure, offset, err)
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}
