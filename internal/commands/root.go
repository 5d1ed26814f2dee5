// Package commands provides CLI commands for whiskerion.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diogo/whiskerion/internal/chat"
	"github.com/diogo/whiskerion/internal/config"
	"github.com/diogo/whiskerion/internal/logging"
	"github.com/diogo/whiskerion/internal/render"
	"github.com/diogo/whiskerion/internal/tui"
)

var (
	// Global flags
	modelFlag   string
	personaFlag string
	verboseFlag bool

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "whiskerion [question]",
	Short: "Chat with Whiskerion the Cosmic, a Gemini-powered cat",
	Long: `whiskerion is a chat client for Google Gemini that answers as a persona.
The default persona, Whiskerion the Cosmic, wraps every answer in a cosmic
feline flourish.

The API key is read from GEMINI_API_KEY (or API_KEY).

Examples:
  whiskerion                          Start interactive chat
  whiskerion serve                    Serve the chat widget on 127.0.0.1:8080
  whiskerion "What is Go?"            Ask a single question
  cat notes.md | whiskerion           Read the question from stdin
  whiskerion -p plain ask "Hi" --raw  Undecorated answer`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Fprintf(deps.Stdout, "whiskerion %s (built %s)\n", Version, BuildTime)
			return nil
		}

		if len(args) > 0 {
			return runAsk(cmd.Context(), args[0])
		}

		if !deps.IsTerminal() {
			if f, ok := deps.Stdin.(*os.File); !ok || !isCharDevice(f) {
				data, err := io.ReadAll(deps.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				if strings.TrimSpace(string(data)) != "" {
					return runAsk(cmd.Context(), string(data))
				}
			}
		}

		return runChat(cmd.Context())
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		tui.PrintError(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Model to use (e.g., gemini-2.5-flash)")
	rootCmd.PersistentFlags().StringVarP(&personaFlag, "persona", "p", "", "Persona to chat with")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Log at debug level")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save response to file")
	rootCmd.Flags().BoolVar(&rawFlag, "raw", false, "Print the undecorated reply")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(personaCmd)
	rootCmd.AddCommand(configCmd)
}

func isCharDevice(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return true
	}
	return stat.Mode()&os.ModeCharDevice != 0
}

// session bundles what every conversational command needs
type session struct {
	cfg    config.Config
	ctrl   *chat.Controller
	logger *zap.Logger
}

func (s *session) close() {
	_ = s.logger.Sync()
}

func (s *session) renderOptions() render.Options {
	return render.OptionsFromConfig(s.cfg.Markdown)
}

// newSession loads config and persona, opens the log and builds a controller.
// The session is not started.
func newSession() (*session, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	persona, err := resolvePersona(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.TUITheme != "" && !render.SetTheme(cfg.TUITheme) {
		fmt.Fprintf(deps.Stderr, "Warning: unknown theme '%s', using %s\n", cfg.TUITheme, render.CurrentTheme().Name)
	}
	tui.UpdateTheme()

	logger, err := logging.New(cfg.LogFile, cfg.Verbose || verboseFlag)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}

	ctrl := chat.NewController(
		deps.NewProvider(config.APIKey()),
		persona,
		chat.WithModel(resolveModel(cfg, persona)),
		chat.WithLogger(logger),
	)

	return &session{cfg: cfg, ctrl: ctrl, logger: logger}, nil
}

// resolvePersona picks --persona, then a default chosen with
// "persona set-default", then the config file choice
func resolvePersona(cfg config.Config) (config.Persona, error) {
	personas, err := config.LoadPersonas()
	if err != nil {
		return config.Persona{}, fmt.Errorf("failed to load personas: %w", err)
	}

	name := personaFlag
	if name == "" && personas.DefaultPersona != config.DefaultPersonaName {
		name = personas.DefaultPersona
	}
	if name == "" {
		name = cfg.Persona
	}
	if name == "" {
		name = config.DefaultPersonaName
	}

	persona, ok := personas.Find(name)
	if !ok {
		return config.Persona{}, fmt.Errorf("persona '%s' not found", name)
	}
	return persona, nil
}

// resolveModel returns the model override for the controller: the flag, or
// the config default when the persona has no preference
func resolveModel(cfg config.Config, persona config.Persona) string {
	if modelFlag != "" {
		return modelFlag
	}
	if persona.Model != "" {
		return persona.Model
	}
	return cfg.DefaultModel
}
