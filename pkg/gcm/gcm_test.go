package gcm

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/hansbonini/disctools/pkg/disc"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testImageSize = 0x10000
	testFSTOffset = 0x8000
)

// fstEntry is one row of a synthetic filesystem table
type fstEntry struct {
	dir    bool
	name   string
	second uint32 // file offset or parent index
	third  uint32 // file size or next index
}

type imageBuilder struct {
	data  []byte
	shift uint
}

func newGameCubeImage(gameID string) *imageBuilder {
	b := &imageBuilder{data: make([]byte, testImageSize)}
	copy(b.data, gameID)
	binary.BigEndian.PutUint32(b.data[gcMagicField:], GameCubeMagic)
	return b
}

func newWiiImage(gameID string) *imageBuilder {
	b := &imageBuilder{data: make([]byte, testImageSize), shift: 2}
	copy(b.data, gameID)
	binary.BigEndian.PutUint32(b.data[wiiMagicField:], WiiMagic)
	return b
}

func (b *imageBuilder) title(raw []byte) *imageBuilder {
	copy(b.data[titleField:], raw)
	return b
}

func (b *imageBuilder) put32(offset int, value uint32) {
	binary.BigEndian.PutUint32(b.data[offset:], value)
}

// fst writes the table at testFSTOffset. File offsets in entries are real
// byte offsets and are stored shifted as the platform requires.
func (b *imageBuilder) fst(entries []fstEntry) *imageBuilder {
	var names []byte
	table := make([]byte, len(entries)*fstEntrySize)
	for i, e := range entries {
		row := table[i*fstEntrySize:]
		nameOffset := len(names)
		if i > 0 {
			names = append(names, e.name...)
			names = append(names, 0)
		}
		second := e.second
		if e.dir {
			row[0] = 1
		} else {
			second >>= b.shift
		}
		row[1] = byte(nameOffset >> 16)
		row[2] = byte(nameOffset >> 8)
		row[3] = byte(nameOffset)
		binary.BigEndian.PutUint32(row[4:], second)
		binary.BigEndian.PutUint32(row[8:], e.third)
	}
	fst := append(table, names...)
	copy(b.data[testFSTOffset:], fst)
	b.put32(fstOffsetField, uint32(testFSTOffset>>b.shift))
	b.put32(fstSizeField, uint32((len(fst)+3)>>b.shift))
	return b
}

func (b *imageBuilder) open(t *testing.T, name string) *Image {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, name, b.data, 0o644))
	img, err := Open(fs, name)
	require.NoError(t, err)
	t.Cleanup(func() { img.Close() })
	return img
}

var sampleEntries = []fstEntry{
	{dir: true, third: 5},
	{name: "a.bin", second: 0x9000, third: 0x10},
	{dir: true, name: "sub", second: 0, third: 4},
	{name: "b.bin", second: 0x9100, third: 0x20},
	{name: "c.bin", second: 0x9200, third: 0x30},
}

func TestOpen_Classify(t *testing.T) {
	wad := make([]byte, 0x40)
	binary.BigEndian.PutUint32(wad, wadHeaderSize)
	copy(wad[wadTypeField:], "Is\x00\x00")

	testCases := []struct {
		name     string
		filename string
		data     []byte
		expected disc.Platform
	}{
		{"gamecube", "game.iso", newGameCubeImage("GALE01").data, disc.PlatformGameCubeDisc},
		{"wii", "game.iso", newWiiImage("RSBE01").data, disc.PlatformWiiDisc},
		{"wad", "channel.wad", wad, disc.PlatformWiiWAD},
		{"dol by extension", "main.DOL", make([]byte, 0x100), disc.PlatformELFOrDOL},
		{"raw", "blob.bin", make([]byte, 0x100), disc.PlatformRaw},
		{"tiny file", "tiny.bin", []byte{1, 2, 3}, disc.PlatformRaw},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			img := (&imageBuilder{data: tc.data}).open(t, tc.filename)
			assert.Equal(t, tc.expected, img.Platform())
			assert.Equal(t, uint64(len(tc.data)), img.Size())
			assert.Equal(t, tc.filename, img.Name())
		})
	}
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(afero.NewMemMapFs(), "missing.iso")
	assert.Error(t, err)
}

func TestImage_Read(t *testing.T) {
	b := newGameCubeImage("GALE01")
	b.data[0x100] = 0xAB
	img := b.open(t, "game.iso")

	buf := make([]byte, 2)
	require.NoError(t, img.Read(0xFF, buf, disc.NoPartition))
	assert.Equal(t, []byte{0x00, 0xAB}, buf)

	require.NoError(t, img.Read(testImageSize-2, buf, disc.NoPartition))

	assert.ErrorIs(t, img.Read(testImageSize-1, buf, disc.NoPartition), ErrOutOfRange)
	assert.ErrorIs(t, img.Read(^uint64(0), buf, disc.NoPartition), ErrOutOfRange)
	assert.ErrorIs(t, img.Read(0, buf, disc.Partition{Offset: 0x50000}), ErrPartitionUnsupported)
}

func TestImage_BootRegionThroughVolume(t *testing.T) {
	b := newGameCubeImage("GALE01")
	b.put32(disc.DOLOffsetField, 0x1000)
	img := b.open(t, "game.iso")

	offset, err := disc.BootDOLOffset(img, disc.NoPartition)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1000), offset)
}

func TestReadHeader(t *testing.T) {
	b := newGameCubeImage("GALE01").title([]byte("Super Smash Bros. Melee\x00junk"))
	b.data[discNumberField] = 1
	b.data[revisionField] = 2
	b.put32(disc.DOLOffsetField, 0x1E800)
	b.fst(sampleEntries)
	img := b.open(t, "game.iso")

	header, err := ReadHeader(img, disc.NoPartition)
	require.NoError(t, err)

	assert.Equal(t, disc.PlatformGameCubeDisc, header.Platform)
	assert.Equal(t, "GALE01", header.GameID)
	assert.Equal(t, "01", header.MakerCode)
	assert.Equal(t, "E", header.RegionCode)
	assert.Equal(t, uint8(1), header.DiscNumber)
	assert.Equal(t, uint8(2), header.Revision)
	assert.Equal(t, "Super Smash Bros. Melee", header.Title)
	assert.Equal(t, uint64(0x1E800), header.DOLOffset)
	assert.Equal(t, uint64(testFSTOffset), header.FSTOffset)
}

func TestReadHeader_ShiftJISTitle(t *testing.T) {
	title := []byte{0x83, 0x65, 0x83, 0x58, 0x83, 0x67, 0x00}
	img := newGameCubeImage("GTSJ01").title(title).open(t, "game.iso")

	header, err := ReadHeader(img, disc.NoPartition)
	require.NoError(t, err)
	assert.Equal(t, "テスト", header.Title)
}

func TestReadHeader_Windows1252Title(t *testing.T) {
	img := newGameCubeImage("GTSP01").title([]byte("Pok\xe9mon\x00")).open(t, "game.iso")

	header, err := ReadHeader(img, disc.NoPartition)
	require.NoError(t, err)
	assert.Equal(t, "Pokémon", header.Title)
}

func TestReadHeader_WiiShiftsOffsets(t *testing.T) {
	b := newWiiImage("RSBE01")
	b.put32(disc.DOLOffsetField, 0x1000)
	b.fst(sampleEntries)
	img := b.open(t, "game.iso")

	header, err := ReadHeader(img, disc.NoPartition)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x4000), header.DOLOffset)
	assert.Equal(t, uint64(testFSTOffset), header.FSTOffset)
}

func TestReadHeader_NotADisc(t *testing.T) {
	img := (&imageBuilder{data: make([]byte, 0x1000)}).open(t, "blob.bin")

	_, err := ReadHeader(img, disc.NoPartition)
	assert.ErrorIs(t, err, disc.ErrInvalidKind)
}

func TestParseHeader_Truncated(t *testing.T) {
	full := newGameCubeImage("GALE01").data[:HeaderSize]

	testCases := []struct {
		name string
		size int
	}{
		{"empty", 0},
		{"inside game ID", 4},
		{"inside title", titleField + 0x10},
		{"before offsets", disc.DOLOffsetField},
		{"inside FST size", fstSizeField + 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseHeader(bytes.NewReader(full[:tc.size]), 0)
			assert.Error(t, err)
		})
	}
}

func assertSampleTree(t *testing.T, root *disc.FileInfo) {
	t.Helper()

	var paths []string
	for entry := range root.All() {
		paths = append(paths, entry.Path())
	}
	assert.Equal(t, []string{"a.bin", "sub/", "sub/b.bin", "c.bin"}, paths)

	b := root.Lookup("sub/b.bin")
	require.NotNil(t, b)
	assert.Equal(t, uint64(0x9100), b.Offset())
	assert.Equal(t, uint64(0x20), b.Size())
}

func TestReadFileSystem(t *testing.T) {
	img := newGameCubeImage("GALE01").fst(sampleEntries).open(t, "game.iso")

	root, err := ReadFileSystem(img, disc.NoPartition)
	require.NoError(t, err)
	assertSampleTree(t, root)
}

func TestReadFileSystem_Wii(t *testing.T) {
	img := newWiiImage("RSBE01").fst(sampleEntries).open(t, "game.iso")

	root, err := ReadFileSystem(img, disc.NoPartition)
	require.NoError(t, err)
	assertSampleTree(t, root)
}

func TestReadFileSystem_ExportRoundTrip(t *testing.T) {
	b := newGameCubeImage("GALE01").fst(sampleEntries)
	copy(b.data[0x9100:], "twenty bytes of b!!!")
	img := b.open(t, "game.iso")

	root, err := ReadFileSystem(img, disc.NoPartition)
	require.NoError(t, err)

	buf := make([]byte, 64)
	n := disc.ReadFile(img, disc.NoPartition, root.Lookup("sub/b.bin"), buf, 7)
	assert.Equal(t, 0x20-7, n)
	assert.Equal(t, []byte("bytes of b!!!"), buf[:13])
}

func TestReadFileSystem_Malformed(t *testing.T) {
	testCases := []struct {
		name    string
		entries []fstEntry
	}{
		{"root is a file", []fstEntry{{third: 1}}},
		{"count beyond table", []fstEntry{{dir: true, third: 50}}},
		{"directory ends before itself", []fstEntry{
			{dir: true, third: 3},
			{dir: true, name: "sub", third: 1},
			{name: "a.bin", third: 1},
		}},
		{"directory ends beyond parent", []fstEntry{
			{dir: true, third: 3},
			{dir: true, name: "sub", third: 4},
			{name: "a.bin", third: 1},
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			img := newGameCubeImage("GALE01").fst(tc.entries).open(t, "game.iso")

			_, err := ReadFileSystem(img, disc.NoPartition)
			assert.ErrorIs(t, err, ErrMalformedFST)
		})
	}
}

// nestedEntries builds a chain of depth directories, each holding the next
func nestedEntries(depth int) []fstEntry {
	count := uint32(depth + 1)
	entries := []fstEntry{{dir: true, third: count}}
	for i := 1; i <= depth; i++ {
		entries = append(entries, fstEntry{dir: true, name: "d", second: uint32(i - 1), third: count})
	}
	return entries
}

func TestReadFileSystem_NestingDepth(t *testing.T) {
	img := newGameCubeImage("GALE01").fst(nestedEntries(maxDirectoryDepth-1)).open(t, "deep.iso")
	root, err := ReadFileSystem(img, disc.NoPartition)
	require.NoError(t, err)
	assert.NotNil(t, root.Lookup("d/d/d"))

	img = newGameCubeImage("GALE01").fst(nestedEntries(maxDirectoryDepth+1)).open(t, "deeper.iso")
	_, err = ReadFileSystem(img, disc.NoPartition)
	assert.ErrorIs(t, err, ErrMalformedFST)
}

func TestReadFileSystem_NameOutsideStringTable(t *testing.T) {
	b := newGameCubeImage("GALE01").fst(sampleEntries)
	row := b.data[testFSTOffset+fstEntrySize:]
	row[1], row[2], row[3] = 0x7F, 0xFF, 0xFF
	img := b.open(t, "game.iso")

	_, err := ReadFileSystem(img, disc.NoPartition)
	assert.ErrorIs(t, err, ErrMalformedFST)
}

func TestReadFileSystem_NotADisc(t *testing.T) {
	img := (&imageBuilder{data: make([]byte, 0x1000)}).open(t, "blob.bin")

	_, err := ReadFileSystem(img, disc.NoPartition)
	assert.ErrorIs(t, err, disc.ErrInvalidKind)
}
