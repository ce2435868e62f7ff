package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/seedmap/internal/cli/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const configHeader = "# seedmap configuration. Every key can also be set with a SEEDMAP_<KEY>\n# environment variable or the matching command line flag.\n"

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a seedmap.yaml with default settings",
		Long: `Initialize a directory for seedmap by writing seedmap.yaml with the default
settings and a .gitignore entry for the run history.

Use --example to also write almanac.txt, a small almanac to try the other
commands on.`,
		Example: `  # Initialize in current directory
  seedmap init

  # Initialize a new directory with an example almanac
  seedmap init puzzle --example

  # Force overwrite existing config
  seedmap init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(cmd, dir, force, example)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&example, "example", false, "Also write an example almanac")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, force, example bool) error {
	r := NewCommandContextWithoutEngine(cmd).Renderer

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	configPath := filepath.Join(dir, config.ConfigFileNames[0])
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
	}

	content, err := defaultConfigYAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(configPath, content, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}
	r.StatusLine(config.ConfigFileNames[0], "success", "")

	tmpl := "minimal"
	if example {
		tmpl = "example"
	}
	files, err := copyTemplate(tmpl, dir, force)
	if err != nil {
		return fmt.Errorf("failed to initialize directory: %w", err)
	}
	for _, f := range files {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Success("seedmap initialized!")
	r.Println("")
	r.Println("Next steps:")
	if example {
		r.Println("  seedmap solve almanac.txt          Lowest location for seed ranges")
		r.Println("  seedmap solve almanac.txt --mode points")
		r.Println("  seedmap trace almanac.txt 79       Follow one seed through the maps")
	} else {
		r.Println("  seedmap solve <almanac>            Lowest location for seed ranges")
	}
	r.Println("  seedmap runs                       Show recorded solves")

	return nil
}

func defaultConfigYAML() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(configHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(config.Default()); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
