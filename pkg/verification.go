package pkg

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/keyforge/pkg/license"
	"github.com/provide-io/keyforge/pkg/logging"
	"github.com/provide-io/keyforge/pkg/operations"
	"github.com/provide-io/keyforge/pkg/operations/bundle"
)

// VerifyLicenseFileWithLogger opens a license archive, checks it holds only
// entryName stored uncompressed, and decodes the license inside.
func VerifyLicenseFileWithLogger(path, entryName string, logger hclog.Logger) (license.Fields, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("Failed to read license file", "path", path, "error", err)
		return license.Fields{}, fmt.Errorf("reading %s: %w", path, err)
	}

	logger.Info("Verifying license file", "path", path, "entry", entryName)

	ops, err := archiveChain(entryName)
	if err != nil {
		return license.Fields{}, err
	}
	logger.Debug("🔗 Reversing chain", "chain", operations.ChainString(ops))

	payload, err := operations.ReverseChain(data, ops)
	if err != nil {
		logger.Error("License verification failed", "error", err)
		return license.Fields{}, err
	}
	logger.Info("✓ Archive layout valid", "entry", entryName)

	fields, err := license.ParsePayload(string(payload))
	if err != nil {
		logger.Error("License decoding failed", "error", err)
		return license.Fields{}, err
	}
	logger.Info("✓ License payload valid",
		"identity", fields.Identity,
		"version", fields.Version(),
		"count", fields.Count,
	)

	return fields, nil
}

// archiveChain is the full generation chain ending in a zip stage for entryName.
func archiveChain(entryName string) ([]operations.Operation, error) {
	ops, err := operations.Resolve(textChain)
	if err != nil {
		return nil, err
	}
	return append(ops, bundle.NewZipOperation(entryName, 0)), nil
}

// VerifyLicenseFile verifies a license archive using default logger settings
func VerifyLicenseFile(path, entryName string) (license.Fields, error) {
	logger := logging.NewLogger("keyforge-verify", logging.DefaultLevel, false, nil)
	return VerifyLicenseFileWithLogger(path, entryName, logger)
}
