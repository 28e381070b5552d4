package io

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alitto/pond"
)

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// OutputTo writes every file under `dest`, creating directories as needed and replacing existing files. It
// returns the total number of bytes written, including those of files that failed part way.
func OutputTo(files []File, dest string) (int64, error) {
	pool := pond.New(4, len(files))
	written := make([]int64, len(files))
	errs := make([]error, len(files))
	for i, f := range files {
		i, f := i, f
		pool.Submit(func() {
			written[i], errs[i] = writeFile(f, dest)
		})
	}
	pool.StopAndWait()

	var total int64
	for _, n := range written {
		total += n
	}
	return total, errors.Join(errs...)
}

func writeFile(f File, dest string) (int64, error) {
	path := filepath.Join(dest, f.Path())
	if err := os.MkdirAll(filepath.Dir(path), 0o777); err != nil {
		return 0, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o666)
	if err != nil {
		return 0, err
	}
	w := &countingWriter{w: file}
	_, err = f.WriteTo(w)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return w.n, fmt.Errorf("could not write %s: %w", f.Path(), err)
	}
	return w.n, nil
}
