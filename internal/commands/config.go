package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/diogo/whiskerion/internal/config"
	"github.com/diogo/whiskerion/internal/render"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long: `Show the effective configuration and where it is stored.

Settings live in config.json in the config directory (~/.whiskerion, or
$WHISKERION_HOME).`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config and personas file paths",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}

// configView is what "config show" prints. The API key is only reported as
// present or missing.
type configView struct {
	Config  config.Config `yaml:"config"`
	APIKey  string        `yaml:"api_key"`
	Models  []string      `yaml:"models"`
	Themes  []string      `yaml:"themes"`
	Persona string        `yaml:"persona"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	persona, err := resolvePersona(cfg)
	if err != nil {
		return err
	}

	key := "missing"
	if config.APIKey() != "" {
		key = "set"
	}

	out, err := yaml.Marshal(configView{
		Config:  cfg,
		APIKey:  key,
		Models:  config.AvailableModels(),
		Themes:  render.ThemeNames(),
		Persona: persona.Name,
	})
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	_, err = deps.Stdout.Write(out)
	return err
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	cfgPath, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	personasPath, err := config.GetPersonasPath()
	if err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "config:   %s\npersonas: %s\n", cfgPath, personasPath)
	return nil
}
