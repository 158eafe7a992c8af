// Package common provides common utilities for disc filesystem entries.
// This file contains checks applied to entry names before they become host paths.
package common

import (
	"strings"
	"unicode/utf8"
)

// IsSafeEntryName reports whether an on-disc entry name can be used as a
// single host path component. Names read from a filesystem table are
// untrusted; they must not climb out of the export folder.
func IsSafeEntryName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return false
	}
	return utf8.ValidString(name)
}

// JoinDiscPath appends an entry name to a logical disc path. Directory
// names get a trailing separator so paths read like "files/sub/".
func JoinDiscPath(parent, name string, isDir bool) string {
	if isDir {
		return parent + name + "/"
	}
	return parent + name
}
