// Package gcm provides access to raw GameCube and Wii disc images.
// This file contains the on-disc header layout.
package gcm

// Disc header layout
const (
	HeaderSize      = 0x440 // boot.bin
	gameIDSize      = 6
	discNumberField = 0x06
	revisionField   = 0x07
	wiiMagicField   = 0x18
	gcMagicField    = 0x1C
	titleField      = 0x20
	titleSize       = 0x3E0
	fstOffsetField  = 0x424
	fstSizeField    = 0x428
	regionCodeField = 0x03
	fstEntrySize    = 12
	maxFSTSize      = 64 << 20
	// deeper FSTs only come from crafted images
	maxDirectoryDepth = 256
	wadHeaderSize     = 0x20
	wadTypeField      = 0x04
	wadTypeLength     = 4
	minimumImageSize  = 0x20
)

// Magic words identifying the disc type
const (
	WiiMagic      uint32 = 0x5D1C9EA3
	GameCubeMagic uint32 = 0xC2339F3D
)

// WAD installable types
var wadTypes = []string{"Is\x00\x00", "ib\x00\x00", "Bk\x00\x00"}
