// Package filesystem lists and watches the corpus directory.
//
// Files are matched by a glob on their base name (e.g. "*.{pdf,txt}").
// Hidden files and directories are skipped.
package filesystem
