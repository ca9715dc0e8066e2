package pkg

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/keyforge/pkg/license"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:  "api_test",
		Level: hclog.Trace,
	})
}

func TestGenerate(t *testing.T) {
	result, err := Generate(NewRequest("test", "10.9", 1), testLogger())
	require.NoError(t, err)

	assert.Equal(t, "1#test|109#1#103969#0#0#0#", result.Payload)
	assert.Equal(t, "2sGPtsDP0kHextWerlHe7FnfxtGerh3a4tG", result.License)
	assert.Equal(t, license.Fields{Identity: "test", MajorVersion: "10", MinorVersion: "9", Count: 1}, result.Fields)
	assert.Empty(t, result.Path)

	expected, err := license.GenerateLicense("test", "10.9", 1)
	require.NoError(t, err)
	assert.Equal(t, expected, result.License)
}

func TestGenerate_ArchiveHoldsLicense(t *testing.T) {
	result, err := Generate(NewRequest("test", "10.9", 1), nil)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(result.Archive), int64(len(result.Archive)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "Pro.key", zr.File[0].Name)
	assert.Equal(t, zip.Store, zr.File[0].Method)

	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	defer rc.Close()
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, result.License, string(content))
}

func TestGenerate_InvalidRequest(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Request)
		wantErr error
	}{
		{name: "missing identity", mutate: func(r *Request) { r.Identity = "" }, wantErr: ErrInvalidRequest},
		{name: "missing version", mutate: func(r *Request) { r.Version = "" }, wantErr: ErrInvalidRequest},
		{name: "missing entry name", mutate: func(r *Request) { r.EntryName = "" }, wantErr: ErrInvalidRequest},
		{name: "entry name with separator", mutate: func(r *Request) { r.EntryName = "a/b" }, wantErr: ErrInvalidRequest},
		{name: "mode beyond permission bits", mutate: func(r *Request) { r.EntryMode = 0o4755 }, wantErr: ErrInvalidRequest},
		{name: "single part version", mutate: func(r *Request) { r.Version = "10" }, wantErr: license.ErrInvalidVersionFormat},
		{name: "three part version", mutate: func(r *Request) { r.Version = "10.9.1" }, wantErr: license.ErrInvalidVersionFormat},
		{name: "word version", mutate: func(r *Request) { r.Version = "invalid" }, wantErr: license.ErrInvalidVersionFormat},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := NewRequest("test", "10.9", 1)
			tc.mutate(&req)

			result, err := Generate(req, testLogger())
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Nil(t, result)
		})
	}
}

func TestGenerateFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	req := NewRequest("test", "10.9", 1)
	req.Output = filepath.Join(dir, "nested", "Custom.mxtpro")

	result, err := GenerateFile(req, testLogger())
	require.NoError(t, err)
	assert.Equal(t, req.Output, result.Path)

	info, err := os.Stat(result.Path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(result.Archive)), info.Size())

	zr, err := zip.OpenReader(result.Path)
	require.NoError(t, err)
	defer zr.Close()
	require.Len(t, zr.File, 1)

	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	defer rc.Close()
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, result.License, string(content))
}

func TestGenerateFile_DirectoryOutput(t *testing.T) {
	dir := t.TempDir()
	req := NewRequest("test", "10.9", 1)
	req.Output = dir

	result, err := GenerateFile(req, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DefaultOutput), result.Path)
}

func TestGenerateFile_InvalidVersionWritesNothing(t *testing.T) {
	dir := t.TempDir()
	req := NewRequest("test", "10", 1)
	req.Output = filepath.Join(dir, "Custom.mxtpro")

	_, err := GenerateFile(req, nil)
	assert.ErrorIs(t, err, license.ErrInvalidVersionFormat)

	_, statErr := os.Stat(req.Output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteLicenseFile_Unwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	// Parent is a regular file, so the directory cannot be created.
	err := WriteLicenseFile(filepath.Join(blocker, "Custom.mxtpro"), []byte("PK"), testLogger())
	assert.Error(t, err)
}
