package bundle

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/provide-io/keyforge/pkg/operations"
	"github.com/provide-io/keyforge/pkg/utils/permissions"
)

// DefaultEntryName is the entry the license reader looks for.
const DefaultEntryName = "Pro.key"

// maxEntrySize bounds what Reverse will read back.
const maxEntrySize = 1 << 20

const (
	zipVersion20   = 20
	flagUTF8       = 0x800
	extTimeExtraID = 0x5455
)

var (
	ErrEntryMissing      = errors.New("❌ license entry missing")
	ErrUnexpectedEntries = errors.New("❌ archive must hold exactly one entry")
	ErrCompressedEntry   = errors.New("❌ license entry is not stored")
)

func init() {
	operations.Register(NewZipOperation(DefaultEntryName, permissions.DefaultEntryPerms))
}

// ZipOperation wraps its input as the only, uncompressed entry of a ZIP archive
type ZipOperation struct {
	operations.BaseOperation
	EntryName string
	Mode      uint16
	// ModTime stamps the entry; zero means time of writing.
	ModTime time.Time
}

// NewZipOperation creates a ZIP stage for entry name with unix mode bits
func NewZipOperation(name string, mode uint16) *ZipOperation {
	return &ZipOperation{
		BaseOperation: operations.BaseOperation{
			OpID:   operations.OP_ZIP,
			OpName: "ZIP",
		},
		EntryName: name,
		Mode:      mode,
	}
}

// Apply creates the archive in memory
func (o *ZipOperation) Apply(input []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := o.write(&buf, input); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ApplyStream writes the archive to output
func (o *ZipOperation) ApplyStream(input io.Reader, output io.Writer) error {
	data, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return o.write(output, data)
}

func (o *ZipOperation) write(w io.Writer, data []byte) error {
	zw := zip.NewWriter(w)

	modTime := o.ModTime
	if modTime.IsZero() {
		modTime = time.Now()
	}
	header := o.header(data, modTime)

	// CRC and sizes go in the local header; no data descriptor.
	fw, err := zw.CreateRaw(header)
	if err != nil {
		zw.Close()
		return fmt.Errorf("writing zip header: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		zw.Close()
		return fmt.Errorf("writing zip data: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing zip writer: %w", err)
	}
	return nil
}

func (o *ZipOperation) header(data []byte, modTime time.Time) *zip.FileHeader {
	size := uint64(len(data))
	header := &zip.FileHeader{
		Name:               o.EntryName,
		Method:             zip.Store,
		CreatorVersion:     zipVersion20,
		ReaderVersion:      zipVersion20,
		Modified:           modTime,
		CRC32:              crc32.ChecksumIEEE(data),
		CompressedSize64:   size,
		UncompressedSize64: size,
		Extra:              extendedTimestamp(modTime),
	}
	header.ModifiedDate, header.ModifiedTime = msDosTime(modTime)
	if strings.IndexFunc(o.EntryName, func(r rune) bool { return r >= utf8.RuneSelf }) >= 0 {
		header.Flags |= flagUTF8
	}
	header.SetMode(os.FileMode(o.Mode))
	return header
}

// msDosTime packs t's wall clock into the MS-DOS date and time fields.
func msDosTime(t time.Time) (date, clock uint16) {
	date = uint16(t.Day() + int(t.Month())<<5 + (t.Year()-1980)<<9)
	clock = uint16(t.Second()/2 + t.Minute()<<5 + t.Hour()<<11)
	return date, clock
}

// extendedTimestamp builds the 0x5455 extra field holding the UTC mtime.
func extendedTimestamp(t time.Time) []byte {
	extra := make([]byte, 9)
	binary.LittleEndian.PutUint16(extra[0:], extTimeExtraID)
	binary.LittleEndian.PutUint16(extra[2:], 5)
	extra[4] = 1 // mtime present
	binary.LittleEndian.PutUint32(extra[5:], uint32(t.Unix()))
	return extra
}

// Reverse returns the content of the archive's single entry
func (o *ZipOperation) Reverse(input []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(input), int64(len(input)))
	if err != nil {
		return nil, fmt.Errorf("reading zip directory: %w", err)
	}

	switch n := len(zr.File); {
	case n == 0:
		return nil, fmt.Errorf("%w: archive is empty", ErrEntryMissing)
	case n > 1:
		return nil, fmt.Errorf("%w: found %d", ErrUnexpectedEntries, n)
	}

	f := zr.File[0]
	if f.Name != o.EntryName {
		return nil, fmt.Errorf("%w: want %q, found %q", ErrEntryMissing, o.EntryName, f.Name)
	}
	if f.Method != zip.Store {
		return nil, fmt.Errorf("%w: method %d", ErrCompressedEntry, f.Method)
	}
	if f.UncompressedSize64 > maxEntrySize {
		return nil, fmt.Errorf("invalid entry size: %d", f.UncompressedSize64)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	return data, nil
}

// ReverseStream extracts the single entry from an archive stream
func (o *ZipOperation) ReverseStream(input io.Reader, output io.Writer) error {
	return operations.BufferedStream(o.Reverse, input, output)
}

// EstimateSize adds local header, central directory and end-of-directory
// record overhead.
func (o *ZipOperation) EstimateSize(inputSize int64) int64 {
	name := int64(len(o.EntryName))
	return inputSize + (30 + name + 9) + (46 + name + 9) + 22
}
