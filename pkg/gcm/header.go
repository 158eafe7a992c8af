package gcm

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/hansbonini/disctools/pkg/common"
	"github.com/hansbonini/disctools/pkg/disc"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
)

// Header is the summary of a disc's boot.bin
type Header struct {
	Platform   disc.Platform `yaml:"platform"`
	GameID     string        `yaml:"game_id"`
	MakerCode  string        `yaml:"maker_code"`
	RegionCode string        `yaml:"region_code"`
	DiscNumber uint8         `yaml:"disc_number"`
	Revision   uint8         `yaml:"revision"`
	Title      string        `yaml:"title"`
	DOLOffset  uint64        `yaml:"dol_offset"`
	FSTOffset  uint64        `yaml:"fst_offset"`
	FSTSize    uint64        `yaml:"fst_size"`
}

// ReadHeader reads the disc header of a GameCube or Wii volume
func ReadHeader(v disc.Volume, partition disc.Partition) (*Header, error) {
	platform := v.Platform()
	if !disc.IsDisc(platform) {
		return nil, fmt.Errorf("%w: %s: %s is not a disc", disc.ErrInvalidKind, common.ErrFailedToReadHeader, platform)
	}

	data := make([]byte, HeaderSize)
	if err := v.Read(0, data, partition); err != nil {
		return nil, common.FormatError(common.ErrFailedToReadHeader, err)
	}

	header, err := parseHeader(bytes.NewReader(data), disc.AddressShift(platform))
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToReadHeader, err)
	}
	header.Platform = platform

	common.LogDebug(common.DebugEntryHeaderInfo, header.GameID, header.MakerCode, header.DiscNumber, header.Revision)
	return header, nil
}

// parseHeader decodes boot.bin fields in on-disc order
func parseHeader(reader io.Reader, shift uint) (*Header, error) {
	id, err := common.ReadBytes(reader, gameIDSize)
	if err != nil {
		return nil, fmt.Errorf("game ID: %w", err)
	}
	discInfo, err := common.ReadBytes(reader, titleField-gameIDSize)
	if err != nil {
		return nil, fmt.Errorf("disc info: %w", err)
	}
	title, err := common.ReadBytes(reader, titleSize)
	if err != nil {
		return nil, fmt.Errorf("title: %w", err)
	}
	if _, err := common.ReadBytes(reader, disc.DOLOffsetField-titleField-titleSize); err != nil {
		return nil, fmt.Errorf("debug area: %w", err)
	}

	var offsets [3]uint32 // DOL offset, FST offset, FST size
	for i := range offsets {
		if offsets[i], err = common.ReadUint32BE(reader); err != nil {
			return nil, fmt.Errorf("offset field %d: %w", i, err)
		}
	}

	region := id[regionCodeField]
	return &Header{
		GameID:     string(common.CString(id)),
		MakerCode:  string(common.CString(id[4:])),
		RegionCode: string(common.CString(id[regionCodeField : regionCodeField+1])),
		DiscNumber: discInfo[discNumberField-gameIDSize],
		Revision:   discInfo[revisionField-gameIDSize],
		Title:      decodeText(common.CString(title), region),
		DOLOffset:  uint64(offsets[0]) << shift,
		FSTOffset:  uint64(offsets[1]) << shift,
		FSTSize:    uint64(offsets[2]) << shift,
	}, nil
}

// textDecoder picks the title/filename encoding from the region code
func textDecoder(region byte) *encoding.Decoder {
	if region == 'J' {
		return japanese.ShiftJIS.NewDecoder()
	}
	return charmap.Windows1252.NewDecoder()
}

// decodeText converts on-disc text to UTF-8
func decodeText(raw []byte, region byte) string {
	decoded, err := textDecoder(region).Bytes(raw)
	if err != nil {
		common.LogWarn(common.WarnTextDecodeFailure, err)
		return strings.ToValidUTF8(string(raw), "?")
	}
	return string(decoded)
}
