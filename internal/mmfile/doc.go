// Package mmfile provides platform-specific helpers for mapping region files
// into memory. On unix systems the file is mapped read-only; elsewhere it is
// read in full.
package mmfile
