// ABOUTME: Snapshot export and config management subcommands
// ABOUTME: Writes the store to SQLite or JSON, and shows or initializes the YAML config
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harperreed/dealdesk/config"
	"github.com/harperreed/dealdesk/db"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newExportCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Save the current data to a SQLite snapshot (or JSON when the file ends in .json)",
		Long: `Save contacts, deals, activities, and stages.

A .json file gets the same layout as the built-in fixtures. Anything else is
written as a SQLite snapshot that --snapshot can seed from later. Without a
file argument the snapshot goes to the default data directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultSnapshotPath()
			if len(args) == 1 {
				path = args[0]
			}

			if strings.EqualFold(filepath.Ext(path), ".json") {
				return exportJSON(cmd, app.Store, path)
			}

			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return fmt.Errorf("failed to create snapshot directory: %w", err)
			}
			info, err := db.SaveSnapshot(cmd.Context(), app.Store, path)
			if err != nil {
				return fmt.Errorf("failed to export: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Snapshot %s written to %s\n", info.ID, path)
			fmt.Fprintf(out, "  %d contacts, %d deals, %d activities, %d stages\n",
				info.Contacts, info.Deals, info.Activities, info.Stages)
			return nil
		},
	}
}

func exportJSON(cmd *cobra.Command, store *db.Store, path string) error {
	data, err := json.MarshalIndent(store.Export(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported to %s\n", path)
	return nil
}

func newConfigCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize the configuration file",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration as YAML",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := yaml.Marshal(app.Config)
				if err != nil {
					return fmt.Errorf("failed to encode config: %w", err)
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file location",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), app.configFile())
			},
		},
		newConfigInitCommand(app),
	)

	return cmd
}

func newConfigInitCommand(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.configFile()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed to check config: %w", err)
			}

			if err := config.Save(config.Default(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config file")
	return cmd
}

func (a *App) configFile() string {
	if a.configPath != "" {
		return a.configPath
	}
	return config.ConfigPath()
}
