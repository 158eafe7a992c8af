package pkg

import (
	"github.com/hansbonini/disctools/pkg/disc"
	"github.com/hansbonini/disctools/pkg/gcm"
)

// ManifestFilename is the default name of the dump manifest
const ManifestFilename = "manifest.yaml"

// SystemDataFolder is the dump subfolder receiving apploader.img and boot.dol
const SystemDataFolder = "sys"

// ManifestEntry describes one filesystem entry of a dumped disc
type ManifestEntry struct {
	Path   string `yaml:"path"`
	Kind   string `yaml:"kind"`
	Offset uint64 `yaml:"offset,omitempty"`
	Size   uint64 `yaml:"size,omitempty"`
}

// Manifest is the YAML document written next to a dump
type Manifest struct {
	Image        string          `yaml:"image"`
	Platform     disc.Platform   `yaml:"platform"`
	Header       *gcm.Header     `yaml:"header,omitempty"`
	TotalEntries int             `yaml:"total_entries"`
	Entries      []ManifestEntry `yaml:"entries"`
}

// DumpOptions controls a full filesystem dump
type DumpOptions struct {
	Recursive bool
	// SystemData also exports the apploader and boot DOL into SystemDataFolder
	SystemData bool
	// ManifestPath, when set, receives a YAML manifest of the tree
	ManifestPath string
	// Progress is called before every entry; returning true stops the dump
	Progress disc.ProgressFunc
}

// ManifestWriter writes dump manifests
type ManifestWriter interface {
	ExportManifest(manifest *Manifest, path string) error
}

// DiscDumper exports disc contents to a host folder
type DiscDumper interface {
	Dump(inputFile, outputDir string, opts DumpOptions) error
	ExportSystemData(inputFile, outputDir string) error
	ExportFile(inputFile, path, dest string) error
}

// ImageInfo summarizes an opened image for the info command
type ImageInfo struct {
	Image         string        `yaml:"image"`
	Platform      disc.Platform `yaml:"platform"`
	Size          uint64        `yaml:"size"`
	Header        *gcm.Header   `yaml:"header,omitempty"`
	ApploaderSize uint64        `yaml:"apploader_size,omitempty"`
	DOLSize       uint64        `yaml:"dol_size,omitempty"`
	Entries       int           `yaml:"entries,omitempty"`
}
