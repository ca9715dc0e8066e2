package pkg

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/keyforge/internal/outpath"
	"github.com/provide-io/keyforge/pkg/license"
	"github.com/provide-io/keyforge/pkg/operations"
	"github.com/provide-io/keyforge/pkg/operations/bundle"
	_ "github.com/provide-io/keyforge/pkg/operations/encode"
	_ "github.com/provide-io/keyforge/pkg/operations/obfuscate"
	"github.com/provide-io/keyforge/pkg/utils/permissions"
)

// DefaultOutput is the archive file name used when no output is given.
const DefaultOutput = "Custom.mxtpro"

// textChain turns a payload into license key text.
var textChain = []uint8{operations.OP_FEEDBACK_XOR, operations.OP_VARIANT64}

var validate = validator.New()

// Request describes one license to generate.
type Request struct {
	Identity  string `validate:"required"`
	Version   string `validate:"required"`
	Count     uint32
	EntryName string `validate:"required,excludesall=/\\"`
	EntryMode uint16 `validate:"lte=511"`
	// Output is the archive path; empty means DefaultOutput.
	Output string
}

// NewRequest fills the archive settings with their defaults.
func NewRequest(identity, version string, count uint32) Request {
	return Request{
		Identity:  identity,
		Version:   version,
		Count:     count,
		EntryName: bundle.DefaultEntryName,
		EntryMode: permissions.DefaultEntryPerms,
	}
}

// Result carries every intermediate form of a generated license.
type Result struct {
	Fields  license.Fields
	Payload string
	License string
	Archive []byte
	// Path is set once the archive has been written.
	Path string
}

// Generate validates req and produces the license text and its archive.
func Generate(req Request, logger hclog.Logger) (*Result, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	fields, err := license.NewFields(req.Identity, req.Version, req.Count)
	if err != nil {
		return nil, err
	}
	payload := fields.String()
	logger.Debug("📝 Payload built", "identity", fields.Identity, "version", fields.Version(), "count", fields.Count)

	ops, err := operations.Resolve(textChain)
	if err != nil {
		return nil, err
	}
	text, err := operations.ApplyChain([]byte(payload), ops)
	if err != nil {
		return nil, err
	}
	logger.Trace("🔗 License text encoded", "chain", operations.ChainString(ops))

	zipOp := bundle.NewZipOperation(req.EntryName, req.EntryMode)
	archive, err := zipOp.Apply(text)
	if err != nil {
		return nil, fmt.Errorf("applying %s: %w", zipOp.Name(), err)
	}
	logger.Debug("📦 Archive built",
		"entry", req.EntryName,
		"mode", permissions.FormatOctal(req.EntryMode),
		"license_length", len(text),
		"archive_size", len(archive),
	)

	return &Result{
		Fields:  fields,
		Payload: payload,
		License: string(text),
		Archive: archive,
	}, nil
}

// GenerateFile runs Generate and writes the archive to req.Output.
func GenerateFile(req Request, logger hclog.Logger) (*Result, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	result, err := Generate(req, logger)
	if err != nil {
		return nil, err
	}

	path, err := outpath.Resolve(req.Output, DefaultOutput)
	if err != nil {
		return nil, err
	}
	if err := WriteLicenseFile(path, result.Archive, logger); err != nil {
		return nil, err
	}
	result.Path = path

	return result, nil
}

// WriteLicenseFile writes archive to path, creating parent directories. A
// partially written file is removed.
func WriteLicenseFile(path string, archive []byte, logger hclog.Logger) error {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	if err := outpath.EnsureParent(path); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if _, err := f.Write(archive); err != nil {
		f.Close()
		if rmErr := os.Remove(path); rmErr != nil {
			logger.Debug("Failed to remove partial file", "path", path, "error", rmErr)
		}
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			logger.Debug("Failed to remove partial file", "path", path, "error", rmErr)
		}
		return fmt.Errorf("closing %s: %w", path, err)
	}

	logger.Info("✅ License file written", "path", path, "size", len(archive))
	return nil
}
