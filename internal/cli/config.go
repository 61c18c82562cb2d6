package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/inboxsim/internal/config"
	"github.com/roach88/inboxsim/internal/journal"
)

// ConfigValidation is the result of config validate.
type ConfigValidation struct {
	File   string `json:"file"`
	Valid  bool   `json:"valid"`
	Hash   string `json:"hash,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Validate and inspect configuration",
	}
	cmd.AddCommand(newConfigValidateCommand(rootOpts))
	cmd.AddCommand(newConfigShowCommand(rootOpts))
	cmd.AddCommand(newConfigSchemaCommand(rootOpts))
	return cmd
}

func newConfigValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a config file against the schema",
		Long: `Check a CUE or JSON config file against the embedded schema and the
cross-field rules, without running anything.

Exit codes:
  0 - Config is valid
  1 - Config is invalid
  2 - File could not be read`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigValidate(rootOpts, args[0], cmd)
		},
	}
}

func runConfigValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	data, err := os.ReadFile(path)
	if err != nil {
		_ = f.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read config", err)
	}

	result := ConfigValidation{File: path}
	cfg, err := config.Parse(data, path)
	if err != nil {
		result.Reason = err.Error()
		if f.IsJSON() {
			_ = f.Error(ErrCodeInvalidConfig, "config is invalid", result)
		} else {
			f.Textf("✗ %s\n  %s\n", path, result.Reason)
		}
		return NewExitError(ExitFailure, "config is invalid")
	}

	canonical, err := journal.MarshalCanonical(cfg)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to encode config", err)
	}
	result.Valid = true
	result.Hash = journal.ConfigHash(canonical)

	if f.IsJSON() {
		return f.Success(result)
	}
	f.Textf("✓ %s (%s)\n", path, result.Hash)
	return nil
}

func newConfigShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the effective configuration: the defaults with the --config file
layered over them, as canonical JSON.

Examples:
  inboxsim config show
  inboxsim config show --config ./fast.cue`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(rootOpts, cmd)
		},
	}
}

func runConfigShow(opts *RootOptions, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	cfg, err := loadConfig(opts)
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			_ = f.Error(ErrCodeInvalidConfig, exitErr.Error(), nil)
		}
		return err
	}

	canonical, err := journal.MarshalCanonical(cfg)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to encode config", err)
	}
	if f.IsJSON() {
		return f.Success(json.RawMessage(canonical))
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, canonical, "", "  "); err != nil {
		return WrapExitError(ExitFailure, "failed to format config", err)
	}
	f.Textf("%s\n", pretty.String())
	return nil
}

func newConfigSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of config files",
		Long: `Print a JSON Schema describing JSON config files, for editor completion
and validation. Value ranges are checked by "config validate".

Examples:
  inboxsim config schema > inboxsim.schema.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			schema := config.JSONSchema()
			if f.IsJSON() {
				return f.Success(schema)
			}
			data, err := json.MarshalIndent(schema, "", "  ")
			if err != nil {
				return WrapExitError(ExitFailure, "failed to encode schema", err)
			}
			f.Textf("%s\n", data)
			return nil
		},
	}
}
