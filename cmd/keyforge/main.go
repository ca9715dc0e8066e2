package main

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/keyforge/internal/config"
	"github.com/provide-io/keyforge/pkg"
	"github.com/provide-io/keyforge/pkg/logging"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var rootCmd *cobra.Command

// options holds flag values for one command tree.
type options struct {
	username       string
	licenseVersion string
	count          uint32
	outputPath     string
	entryName      string
	entryMode      string
	logLevel       string

	cfg    *config.Config
	logger hclog.Logger
}

func getBuilderTimestamp() string {
	// Try to get vcs.time from build info
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.time" {
				if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					return t.UTC().Format(time.RFC3339)
				}
			}
		}
	}
	// Fallback to binary modification time
	if exePath, err := os.Executable(); err == nil {
		if stat, err := os.Stat(exePath); err == nil {
			return stat.ModTime().UTC().Format(time.RFC3339)
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "keyforge %s\n", version)
	fmt.Fprintf(w, "Built: %s\n", getBuilderTimestamp())
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "keyforge",
		Short: "Generate license key archives",
		Long: `Generate a license key archive for a user, product version and license count.

The license text is written as the single, uncompressed entry of a ZIP archive.
Defaults can be set with KEYFORGE_* environment variables.`,
		SilenceUsage:      true,
		PersistentPreRunE: opts.setup,
		RunE:              opts.generate,
	}

	cmd.Flags().StringVarP(&opts.username, "username", "u", "", "License holder name (required)")
	cmd.Flags().StringVarP(&opts.licenseVersion, "version", "v", "", "Product version as major.minor, e.g. 10.9 (required)")
	cmd.Flags().Uint32VarP(&opts.count, "count", "c", 1, "Number of licenses")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Output archive path (default $KEYFORGE_OUTPUT or Custom.mxtpro)")
	cmd.PersistentFlags().StringVar(&opts.entryName, "entry", "", "Archive entry name (default $KEYFORGE_ENTRY_NAME or Pro.key)")
	cmd.Flags().StringVar(&opts.entryMode, "entry-mode", "", "Octal permission bits of the entry (default $KEYFORGE_ENTRY_MODE or 0644)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	if err := cmd.MarkFlagRequired("username"); err != nil {
		panic(err)
	}
	if err := cmd.MarkFlagRequired("version"); err != nil {
		panic(err)
	}

	cmd.AddCommand(opts.verifyCmd(), versionCmd())
	return cmd
}

func init() {
	rootCmd = newRootCmd()
}

func main() {
	// -v is the license version, so the tool version lives on -V
	if len(os.Args) > 1 && os.Args[1] == "-V" {
		printVersion(os.Stdout)
		os.Exit(0)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the environment config and lets explicit flags override it.
func (o *options) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.outputPath != "" {
		cfg.Output = o.outputPath
	}
	if o.entryName != "" {
		cfg.EntryName = o.entryName
	}
	if o.entryMode != "" {
		cfg.EntryMode = o.entryMode
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	o.cfg = cfg
	o.logger = logging.NewLogger("keyforge", cfg.LogLevel, cfg.JSONLog, cmd.ErrOrStderr())
	return nil
}

func (o *options) generate(cmd *cobra.Command, args []string) error {
	mode, err := o.cfg.Mode()
	if err != nil {
		return err
	}

	req := pkg.NewRequest(o.username, o.licenseVersion, o.count)
	req.Output = o.cfg.Output
	req.EntryName = o.cfg.EntryName
	req.EntryMode = mode

	o.logger.Info("Generating license", "username", o.username, "version", o.licenseVersion, "count", o.count)

	result, err := pkg.GenerateFile(req, o.logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "License file generated: %s\n", result.Path)
	fmt.Fprintln(out, "Copy or move the file into the application's installation directory.")
	return nil
}

func (o *options) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify [file]",
		Short: "Decode a license archive and print its fields",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := o.cfg.Output
			if len(args) == 1 {
				path = args[0]
			}

			fields, err := pkg.VerifyLicenseFileWithLogger(path, o.cfg.EntryName, o.logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Username: %s\n", fields.Identity)
			fmt.Fprintf(out, "Version:  %s\n", fields.Version())
			fmt.Fprintf(out, "Count:    %d\n", fields.Count)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// Skip config loading
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}
