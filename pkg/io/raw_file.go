// Package io writes rendered program files to disk.
package io

import (
	"bytes"
	"io"
)

// File is a rendered file, addressed relative to the output directory.
type File interface {
	Path() string
	io.WriterTo
}

// RawFile is a file held fully in memory until it is written out with [OutputTo].
type RawFile struct {
	FPath   string
	Content []byte
}

func (r *RawFile) Path() string {
	return r.FPath
}

func (r *RawFile) WriteTo(w io.Writer) (int64, error) {
	return bytes.NewReader(r.Content).WriteTo(w)
}
