// Package common provides logging, message texts and small helpers shared by
// the disc extraction packages.
package common

import (
	"fmt"
	"log"
)

// Global variable to control debug output
var VerboseMode bool = false

// SetVerboseMode enables or disables verbose/debug output
func SetVerboseMode(verbose bool) {
	VerboseMode = verbose
}

// Error messages
const (
	ErrFailedToCreateOutputFile  = "failed to create output file"
	ErrFailedToCreateOutputDir   = "failed to create output directory"
	ErrFailedToReadVolume        = "failed to read volume"
	ErrFailedToWriteOutput       = "failed to write output file"
	ErrFailedToReadApploaderSize = "failed to read apploader size"
	ErrFailedToReadDOLOffset     = "failed to read boot DOL offset"
	ErrFailedToReadDOLSegment    = "failed to read boot DOL segment %d"
	ErrFailedToExportEntry       = "Could not export %s: %v"
	ErrFailedToExportDirectory   = "Could not export directory %s: %v"
	ErrFailedToOpenImage         = "failed to open disc image"
	ErrFailedToReadFST           = "failed to read filesystem table"
	ErrFailedToReadHeader        = "failed to read disc header"
	ErrFailedToLoadConfig        = "failed to load configuration"
	ErrFailedToWriteManifest     = "failed to write manifest"
	ErrUnsafeEntryName           = "Refusing unsafe entry name %q in %s"
)

// Info messages
const (
	InfoAlreadyExists      = "%s already exists"
	InfoApploaderExported  = "Apploader exported: %s (%d bytes)"
	InfoDOLExported        = "Boot DOL exported: %s (%d bytes)"
	InfoDirectoryExported  = "Exported %s to %s"
	InfoFileExported       = "Exported %s (%d bytes) to %s"
	InfoManifestExported   = "Exported manifest with %d entries to: %s"
	InfoExportCanceled     = "Export canceled at %s"
	InfoImageOpened        = "Opened %s image: %s (%d bytes)"
	InfoFilesystemLoaded   = "Loaded filesystem table: %d entries"
	InfoOverwritingFile    = "Overwriting existing file %s"
	InfoConfigLoaded       = "Loaded configuration from %s"
	InfoEnvironmentApplied = "Applied environment override %s=%s"
)

// Debug messages
const (
	DebugExportPath      = "%s"
	DebugReadingFile     = "Reading %x bytes at %x from file %s. Offset: %x Size: %x"
	DebugCopyChunk       = "Copying chunk: offset=0x%X size=0x%X remaining=0x%X"
	DebugApploaderSize   = "Apploader size -> %x"
	DebugDOLOffset       = "Boot DOL offset -> %x (shift %d)"
	DebugDOLSize         = "Boot DOL size -> %x"
	DebugFSTLocation     = "FST at 0x%X, size 0x%X (at most %d entries)"
	DebugFSTEntry        = "FST entry %d: dir=%t name=%q offset=0x%X size=0x%X"
	DebugPlatformMagic   = "Platform magic: wii=0x%08X gamecube=0x%08X"
	DebugEntryHeaderInfo = "Header: ID=%s, Maker=%s, Disc=%d, Revision=%d"
)

// Warning messages
const (
	WarnEnvFileUnreadable = "Could not load .env file, using environment variables: %v"
	WarnInvalidEnvValue   = "Ignoring invalid value %q for %s: %v"
	WarnUnknownPlatform   = "Image %s is not a recognized disc, system data is unavailable"
	WarnSystemDataPartial = "System data export incomplete: %v"
	WarnTextDecodeFailure = "Could not decode disc text, using raw bytes: %v"
	WarnIncompleteInfo    = "Some image details are unavailable: %v"
)

// LogInfo logs an informational message
func LogInfo(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[INFO] "+message, args...)
	} else {
		log.Printf("[INFO] %s", message)
	}
}

// LogWarn logs a warning message
func LogWarn(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[WARN] "+message, args...)
	} else {
		log.Printf("[WARN] %s", message)
	}
}

// LogError logs an error message
func LogError(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[ERROR] "+message, args...)
	} else {
		log.Printf("[ERROR] %s", message)
	}
}

// LogDebug logs a debug message (only if VerboseMode is enabled)
func LogDebug(message string, args ...interface{}) {
	if !VerboseMode {
		return
	}
	if len(args) > 0 {
		log.Printf("[DEBUG] "+message, args...)
	} else {
		log.Printf("[DEBUG] %s", message)
	}
}

// FormatError creates a formatted error with additional context
func FormatError(baseMessage string, details interface{}) error {
	if err, ok := details.(error); ok {
		return fmt.Errorf("%s: %w", baseMessage, err)
	}
	return fmt.Errorf("%s: %v", baseMessage, details)
}

// FormatErrorString creates a formatted error with string details
func FormatErrorString(baseMessage, details string, args ...interface{}) error {
	if len(args) > 0 {
		return fmt.Errorf("%s: "+details, append([]interface{}{baseMessage}, args...)...)
	}
	return fmt.Errorf("%s: %s", baseMessage, details)
}
