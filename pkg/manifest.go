package pkg

import (
	"fmt"
	"path/filepath"

	"github.com/hansbonini/disctools/pkg/common"
	"github.com/hansbonini/disctools/pkg/disc"
	"github.com/hansbonini/disctools/pkg/gcm"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DiscManifestExporter writes manifests as YAML
type DiscManifestExporter struct {
	fs afero.Fs
}

var _ ManifestWriter = (*DiscManifestExporter)(nil)

// NewManifestExporter creates a manifest exporter writing into fs
func NewManifestExporter(fs afero.Fs) *DiscManifestExporter {
	return &DiscManifestExporter{fs: fs}
}

// BuildManifest lists the tree below root in on-disc order. Without
// recursive only the root's files are listed, matching what a
// non-recursive dump exports.
func BuildManifest(image string, platform disc.Platform, header *gcm.Header, root *disc.FileInfo, recursive bool) *Manifest {
	manifest := &Manifest{
		Image:    filepath.Base(image),
		Platform: platform,
		Header:   header,
		Entries:  []ManifestEntry{},
	}
	if root == nil {
		return manifest
	}

	entries := root.All()
	if !recursive {
		entries = root.Entries()
	}
	for entry := range entries {
		if entry.IsDirectory() {
			if !recursive {
				continue
			}
			manifest.Entries = append(manifest.Entries, ManifestEntry{
				Path: entry.Path(),
				Kind: entry.Kind().String(),
			})
			continue
		}
		manifest.Entries = append(manifest.Entries, ManifestEntry{
			Path:   entry.Path(),
			Kind:   entry.Kind().String(),
			Offset: entry.Offset(),
			Size:   entry.Size(),
		})
	}
	manifest.TotalEntries = len(manifest.Entries)
	return manifest
}

// ExportManifest writes manifest to path, creating parent folders
func (e *DiscManifestExporter) ExportManifest(manifest *Manifest, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := e.fs.MkdirAll(dir, 0o755); err != nil {
			return common.FormatError(common.ErrFailedToCreateOutputDir, err)
		}
	}

	writer, err := e.fs.Create(path)
	if err != nil {
		return common.FormatError(common.ErrFailedToWriteManifest, err)
	}
	defer writer.Close()

	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)

	if err := encoder.Encode(manifest); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	common.LogInfo(common.InfoManifestExported, manifest.TotalEntries, path)
	return nil
}
