package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/svelgo/svelgo/cmd/svelgo/internal/scaffold"
	"github.com/svelgo/svelgo/cmd/svelgo/internal/ui"
)

func newNewCommand() *cobra.Command {
	var format string
	var port int
	var noInteractive bool
	var gitInit bool

	cmd := &cobra.Command{
		Use:   "new [name]",
		Short: "Create a new svelgo project",
		Long:  `Creates a new project with a starter component, an index page and a svelgo.yaml. Runs an interactive wizard when attached to a terminal.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			return runNew(name, format, port, gitInit, noInteractive)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "esm", "Output module format (esm or cjs)")
	cmd.Flags().IntVarP(&port, "port", "p", 3000, "Dev server port")
	cmd.Flags().BoolVar(&gitInit, "git", true, "Initialize a git repository")
	cmd.Flags().BoolVar(&noInteractive, "no-interactive", false, "Skip the interactive wizard")

	return cmd
}

func runNew(name, format string, port int, gitInit, noInteractive bool) error {
	interactive := !noInteractive && isInteractive()

	var cfg scaffold.ProjectConfig
	if interactive {
		created, err := ui.RunNewTUI(name)
		if err != nil {
			return err
		}
		cfg = created
	} else {
		if name == "" {
			return fmt.Errorf("project name required in non-interactive mode")
		}
		cfg = scaffold.ProjectConfig{
			Name:    name,
			Format:  format,
			Port:    port,
			GitInit: gitInit,
		}
		if err := scaffold.Create(&cfg); err != nil {
			return err
		}
	}

	fmt.Printf("\n✨ Project %s created\n\n", cfg.Name)
	fmt.Println("Next steps:")
	fmt.Printf("  cd %s\n", cfg.Directory)
	fmt.Println("  svelgo dev")
	return nil
}

// isInteractive reports whether stdout is attached to a terminal.
func isInteractive() bool {
	fileInfo, _ := os.Stdout.Stat()
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
