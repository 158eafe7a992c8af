package pkg

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/hansbonini/disctools/pkg/common"
	"github.com/hansbonini/disctools/pkg/config"
	"github.com/hansbonini/disctools/pkg/disc"
	"github.com/hansbonini/disctools/pkg/gcm"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// DiscProcessor opens disc images and runs the exporters against them
type DiscProcessor struct {
	*DiscManifestExporter
	extractor *disc.Extractor
	fs        afero.Fs
}

var _ DiscDumper = (*DiscProcessor)(nil)

// NewDiscProcessor creates a processor reading and writing through fs.
// A nil cfg uses config.Default().
func NewDiscProcessor(fs afero.Fs, cfg *config.Config) (*DiscProcessor, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	extractor := disc.NewExtractor(fs)
	if err := cfg.Apply(extractor); err != nil {
		return nil, err
	}

	return &DiscProcessor{
		DiscManifestExporter: NewManifestExporter(fs),
		extractor:            extractor,
		fs:                   fs,
	}, nil
}

func (p *DiscProcessor) openFileSystem(inputFile string) (*gcm.Image, *disc.FileInfo, error) {
	img, err := gcm.Open(p.fs, inputFile)
	if err != nil {
		return nil, nil, err
	}

	root, err := gcm.ReadFileSystem(img, disc.NoPartition)
	if err != nil {
		img.Close()
		return nil, nil, err
	}
	return img, root, nil
}

// Dump exports the disc filesystem of inputFile into outputDir
func (p *DiscProcessor) Dump(inputFile, outputDir string, opts DumpOptions) error {
	img, root, err := p.openFileSystem(inputFile)
	if err != nil {
		return err
	}
	defer img.Close()

	var sysErr error
	if opts.SystemData {
		sysErr = p.exportSystemData(img, filepath.Join(outputDir, SystemDataFolder))
		if sysErr != nil {
			common.LogWarn(common.WarnSystemDataPartial, sysErr)
		}
	}

	if err := p.extractor.ExportDirectory(img, disc.NoPartition, root, opts.Recursive, "", outputDir, opts.Progress); err != nil {
		return multierr.Append(sysErr, err)
	}
	common.LogInfo(common.InfoDirectoryExported, inputFile, outputDir)

	if opts.ManifestPath == "" {
		return sysErr
	}

	header, err := gcm.ReadHeader(img, disc.NoPartition)
	if err != nil {
		return multierr.Append(sysErr, err)
	}
	manifest := BuildManifest(inputFile, img.Platform(), header, root, opts.Recursive)
	return multierr.Append(sysErr, p.ExportManifest(manifest, opts.ManifestPath))
}

// ExportSystemData writes apploader.img and boot.dol of inputFile into outputDir
func (p *DiscProcessor) ExportSystemData(inputFile, outputDir string) error {
	img, err := gcm.Open(p.fs, inputFile)
	if err != nil {
		return err
	}
	defer img.Close()

	return p.exportSystemData(img, outputDir)
}

func (p *DiscProcessor) exportSystemData(img *gcm.Image, outputDir string) error {
	if !disc.IsDisc(img.Platform()) {
		common.LogWarn(common.WarnUnknownPlatform, img.Name())
		return fmt.Errorf("%w: %s is a %s image", disc.ErrInvalidKind, img.Name(), img.Platform())
	}
	if err := p.fs.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("%w: %s %s: %w", disc.ErrWriteFailure, common.ErrFailedToCreateOutputDir, outputDir, err)
	}
	return p.extractor.ExportSystemData(img, disc.NoPartition, outputDir)
}

// ExportFile exports the file at path inside the disc to dest
func (p *DiscProcessor) ExportFile(inputFile, path, dest string) error {
	img, root, err := p.openFileSystem(inputFile)
	if err != nil {
		return err
	}
	defer img.Close()

	info := root.Lookup(path)
	if info == nil {
		return fmt.Errorf("%w: %s", disc.ErrNotFound, path)
	}

	if dir := filepath.Dir(dest); dir != "." {
		if err := p.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %s %s: %w", disc.ErrWriteFailure, common.ErrFailedToCreateOutputDir, dir, err)
		}
	}

	if err := p.extractor.ExportFile(img, disc.NoPartition, info, dest); err != nil {
		return err
	}
	common.LogInfo(common.InfoFileExported, info.Path(), info.Size(), dest)
	return nil
}

// Cat writes length bytes of the file at path, starting offset bytes into
// it, to w. A zero length means up to the end of the file. It returns the
// number of bytes written.
func (p *DiscProcessor) Cat(inputFile, path string, offset, length uint64, w io.Writer) (uint64, error) {
	img, root, err := p.openFileSystem(inputFile)
	if err != nil {
		return 0, err
	}
	defer img.Close()

	info := root.Lookup(path)
	if info == nil {
		return 0, fmt.Errorf("%w: %s", disc.ErrNotFound, path)
	}
	if info.IsDirectory() {
		return 0, fmt.Errorf("%w: %s is a directory", disc.ErrInvalidKind, info.Path())
	}
	if offset >= info.Size() {
		return 0, nil
	}

	remaining := info.Size() - offset
	if length > 0 {
		remaining = min(remaining, length)
	}
	buffer := make([]byte, min(remaining, p.extractor.ChunkSize()))

	var total uint64
	for remaining > 0 {
		want := min(remaining, uint64(len(buffer)))
		n := disc.ReadFile(img, disc.NoPartition, info, buffer[:want], offset)
		if n == 0 {
			return total, fmt.Errorf("%w: %s at 0x%X", disc.ErrReadFailure, info.Path(), offset)
		}
		if _, err := w.Write(buffer[:n]); err != nil {
			return total, fmt.Errorf("%w: %w", disc.ErrWriteFailure, err)
		}
		total += uint64(n)
		offset += uint64(n)
		remaining -= uint64(n)
	}
	return total, nil
}

// Info gathers the header and boot region sizes of inputFile. Non-disc
// images only report their platform and size.
func (p *DiscProcessor) Info(inputFile string) (*ImageInfo, error) {
	img, err := gcm.Open(p.fs, inputFile)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	info := &ImageInfo{
		Image:    filepath.Base(inputFile),
		Platform: img.Platform(),
		Size:     img.Size(),
	}
	if !disc.IsDisc(img.Platform()) {
		return info, nil
	}

	if info.Header, err = gcm.ReadHeader(img, disc.NoPartition); err != nil {
		return nil, err
	}

	var errs error
	if size, err := disc.ApploaderSize(img, disc.NoPartition); err != nil {
		errs = multierr.Append(errs, err)
	} else {
		info.ApploaderSize = size
	}
	if size, err := disc.BootDOLSize(img, disc.NoPartition, info.Header.DOLOffset); err != nil {
		errs = multierr.Append(errs, err)
	} else {
		info.DOLSize = size
	}
	if root, err := gcm.ReadFileSystem(img, disc.NoPartition); err != nil {
		errs = multierr.Append(errs, err)
	} else {
		for range root.All() {
			info.Entries++
		}
	}

	if errs != nil {
		common.LogWarn(common.WarnIncompleteInfo, errs)
	}
	return info, nil
}

// WriteInfo prints info as YAML
func WriteInfo(info *ImageInfo, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(info); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return nil
}

// IsCanceled reports whether err came from a stopped dump
func IsCanceled(err error) bool {
	return errors.Is(err, disc.ErrCanceled)
}
