package io

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputTo(t *testing.T) {
	require, assert := require.New(t), assert.New(t)
	dir := t.TempDir()

	// Existing content is replaced, not appended to
	require.NoError(os.WriteFile(filepath.Join(dir, "index.ts"), []byte("stale content that is longer"), 0666))

	n, err := OutputTo([]File{
		&RawFile{FPath: "index.ts", Content: []byte("export {}\n")},
		&RawFile{FPath: "nested/Pulumi.yaml", Content: []byte("name: x\n")},
	}, dir)
	require.NoError(err)
	assert.EqualValues(len("export {}\n")+len("name: x\n"), n)

	content, err := os.ReadFile(filepath.Join(dir, "index.ts"))
	require.NoError(err)
	assert.Equal("export {}\n", string(content))

	content, err = os.ReadFile(filepath.Join(dir, "nested", "Pulumi.yaml"))
	require.NoError(err)
	assert.Equal("name: x\n", string(content))
}

func TestOutputTo_Errors(t *testing.T) {
	dir := t.TempDir()
	// a regular file where a directory is needed
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested"), nil, 0666))

	n, err := OutputTo([]File{
		&RawFile{FPath: "ok.ts", Content: []byte("ok")},
		&RawFile{FPath: "nested/fail.ts", Content: []byte("fail")},
	}, dir)
	assert.Error(t, err)
	assert.EqualValues(t, 2, n)
	assert.FileExists(t, filepath.Join(dir, "ok.ts"))
}

func TestCountingWriter(t *testing.T) {
	var sb strings.Builder
	w := &countingWriter{w: &sb}

	_, err := w.Write([]byte("ab"))
	require.NoError(t, err)
	_, err = w.Write([]byte("c"))
	require.NoError(t, err)

	assert.EqualValues(t, 3, w.n)
	assert.Equal(t, "abc", sb.String())
}
