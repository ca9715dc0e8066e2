package bundle

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"
	"time"

	"github.com/provide-io/keyforge/pkg/operations"
	"github.com/provide-io/keyforge/pkg/utils/permissions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRawZip(t *testing.T, entries map[string]string, method uint16) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: method})
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestZipOperation_Apply(t *testing.T) {
	op := NewZipOperation(DefaultEntryName, 0o644)
	op.ModTime = time.Date(2025, 1, 2, 3, 4, 6, 0, time.UTC)

	archive, err := op.Apply([]byte("2sGPtsDP0kHextWerlHe7FnfxtGerh3a4tG"))
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)

	f := zr.File[0]
	assert.Equal(t, "Pro.key", f.Name)
	assert.Equal(t, zip.Store, f.Method)
	assert.Equal(t, "-rw-r--r--", f.Mode().String())
	assert.True(t, op.ModTime.Equal(f.Modified.UTC()), "modified %v", f.Modified)
}

func TestZipOperation_LocalHeaderCarriesSizes(t *testing.T) {
	data := []byte("2sGPtsDP0kHextWerlHe7FnfxtGerh3a4tG")
	op := NewZipOperation(DefaultEntryName, 0o644)

	archive, err := op.Apply(data)
	require.NoError(t, err)
	require.Greater(t, len(archive), 30)
	require.Equal(t, []byte("PK\x03\x04"), archive[:4])

	flags := binary.LittleEndian.Uint16(archive[6:])
	assert.Zero(t, flags&0x08, "entry must not use a data descriptor")
	assert.Equal(t, uint16(zip.Store), binary.LittleEndian.Uint16(archive[8:]))
	assert.Equal(t, crc32.ChecksumIEEE(data), binary.LittleEndian.Uint32(archive[14:]))
	assert.Equal(t, uint32(len(data)), binary.LittleEndian.Uint32(archive[18:]))
	assert.Equal(t, uint32(len(data)), binary.LittleEndian.Uint32(archive[22:]))

	nameLen := int(binary.LittleEndian.Uint16(archive[26:]))
	extraLen := int(binary.LittleEndian.Uint16(archive[28:]))
	assert.Equal(t, DefaultEntryName, string(archive[30:30+nameLen]))

	start := 30 + nameLen + extraLen
	assert.Equal(t, data, archive[start:start+len(data)])
	assert.Equal(t, op.EstimateSize(int64(len(data))), int64(len(archive)))
}

func TestZipOperation_ModTimeZone(t *testing.T) {
	zone := time.FixedZone("UTC+2", 2*60*60)
	op := NewZipOperation(DefaultEntryName, 0o644)
	op.ModTime = time.Date(2025, 6, 7, 8, 9, 10, 0, zone)

	archive, err := op.Apply([]byte("abc"))
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.True(t, op.ModTime.Equal(zr.File[0].Modified), "modified %v", zr.File[0].Modified)
}

func TestZipOperation_Deterministic(t *testing.T) {
	op := NewZipOperation("Pro.key", 0o600)
	op.ModTime = time.Date(2025, 1, 2, 3, 4, 6, 0, time.UTC)

	a, err := op.Apply([]byte("abc"))
	require.NoError(t, err)
	b, err := op.Apply([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestZipOperation_Reverse(t *testing.T) {
	op := NewZipOperation(DefaultEntryName, 0o644)

	archive, err := op.Apply([]byte("hello"))
	require.NoError(t, err)

	content, err := op.Reverse(archive)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
}

func TestZipOperation_ReverseErrors(t *testing.T) {
	op := NewZipOperation(DefaultEntryName, 0o644)

	tests := []struct {
		name    string
		archive []byte
		wantErr error
	}{
		{
			name:    "empty archive",
			archive: writeRawZip(t, map[string]string{}, zip.Store),
			wantErr: ErrEntryMissing,
		},
		{
			name:    "wrong entry name",
			archive: writeRawZip(t, map[string]string{"Other.key": "x"}, zip.Store),
			wantErr: ErrEntryMissing,
		},
		{
			name:    "two entries",
			archive: writeRawZip(t, map[string]string{"Pro.key": "x", "extra": "y"}, zip.Store),
			wantErr: ErrUnexpectedEntries,
		},
		{
			name:    "deflated entry",
			archive: writeRawZip(t, map[string]string{"Pro.key": "x"}, zip.Deflate),
			wantErr: ErrCompressedEntry,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := op.Reverse(tc.archive)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	_, err := op.Reverse([]byte("not a zip"))
	assert.Error(t, err)
}

func TestZipOperation_Registered(t *testing.T) {
	op, err := operations.Get(operations.OP_ZIP)
	require.NoError(t, err)

	zop, ok := op.(*ZipOperation)
	require.True(t, ok)
	assert.Equal(t, DefaultEntryName, zop.EntryName)
	assert.Equal(t, uint16(permissions.DefaultEntryPerms), zop.Mode)
}
