// Package configcmd contains the config inspection commands.
package configcmd

import (
	"fmt"
	"os"
	"path/filepath"

	"finpipe/bank-csv/cmd/root"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Cmd is the parent command for configuration operations.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and bootstrap the configuration",
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(root.Cfg)
		if err != nil {
			return fmt.Errorf("failed to render configuration: %w", err)
		}
		cmd.Print(string(data))
		return nil
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config.yaml with the current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := cmd.Flags().GetString("dir")
		if err != nil {
			return err
		}

		path := filepath.Join(dir, "config.yaml")
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}

		data, err := yaml.Marshal(root.Cfg)
		if err != nil {
			return fmt.Errorf("failed to render configuration: %w", err)
		}
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
		if err := os.WriteFile(path, data, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}

		cmd.Printf("Wrote %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().StringP("dir", "d", ".bank-csv", "Directory to write config.yaml into")
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(initCmd)
}
