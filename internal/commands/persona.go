package commands

import (
	"bufio"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/diogo/whiskerion/internal/config"
)

var (
	personaModelFlag    string
	personaTitleFlag    string
	personaGreetingFlag string
	personaPrefixFlag   []string
	personaSuffixFlag   []string
)

var personaCmd = &cobra.Command{
	Use:   "persona",
	Short: "Manage chat personas",
	Long: `View and manage personas: the system prompt, the fixed texts and the
prefixes and suffixes that decorate every reply.

Personas are stored in personas.yaml in the config directory.`,
}

var personaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available personas",
	RunE:  runPersonaList,
}

var personaShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show persona details",
	Args:  cobra.ExactArgs(1),
	RunE:  runPersonaShow,
}

var personaAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a new persona",
	Long: `Add a new persona. The description and system prompt are read
interactively; decoration and texts come from flags.`,
	Args: cobra.ExactArgs(1),
	RunE: runPersonaAdd,
}

var personaDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a persona",
	Args:  cobra.ExactArgs(1),
	RunE:  runPersonaDelete,
}

var personaSetDefaultCmd = &cobra.Command{
	Use:     "set-default <name>",
	Aliases: []string{"default"},
	Short:   "Set default persona",
	Args:    cobra.ExactArgs(1),
	RunE:    runPersonaSetDefault,
}

func init() {
	personaAddCmd.Flags().StringVar(&personaModelFlag, "model", "", "Preferred model")
	personaAddCmd.Flags().StringVar(&personaTitleFlag, "title", "", "Display title")
	personaAddCmd.Flags().StringVar(&personaGreetingFlag, "greeting", "", "First message of every conversation")
	personaAddCmd.Flags().StringArrayVar(&personaPrefixFlag, "prefix", nil, "Reply prefix (repeatable)")
	personaAddCmd.Flags().StringArrayVar(&personaSuffixFlag, "suffix", nil, "Reply suffix (repeatable)")

	personaCmd.AddCommand(personaListCmd)
	personaCmd.AddCommand(personaShowCmd)
	personaCmd.AddCommand(personaAddCmd)
	personaCmd.AddCommand(personaDeleteCmd)
	personaCmd.AddCommand(personaSetDefaultCmd)
}

func runPersonaList(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadPersonas()
	if err != nil {
		return fmt.Errorf("failed to load personas: %w", err)
	}

	w := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tDESCRIPTION\tDEFAULT")
	_, _ = fmt.Fprintln(w, "----\t-----------\t-------")

	for _, p := range cfg.Personas {
		isDefault := ""
		if p.Name == cfg.DefaultPersona {
			isDefault = "✓"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, p.Description, isDefault)
	}

	return w.Flush()
}

func runPersonaShow(cmd *cobra.Command, args []string) error {
	persona, err := config.GetPersona(args[0])
	if err != nil {
		return err
	}
	p := persona.WithDefaults()
	out := deps.Stdout

	fmt.Fprintf(out, "Name: %s\n", p.Name)
	fmt.Fprintf(out, "Title: %s\n", p.Title)
	fmt.Fprintf(out, "Description: %s\n", p.Description)
	if p.Model != "" {
		fmt.Fprintf(out, "Preferred Model: %s\n", p.Model)
	}
	fmt.Fprintf(out, "\nGreeting: %s\n", p.Greeting)
	fmt.Fprintf(out, "Pending: %s\n", p.Pending)
	fmt.Fprintf(out, "Startup error: %s\n", p.StartupError)
	fmt.Fprintf(out, "Send error: %s\n", p.SendError)

	if len(p.Prefixes) > 0 || len(p.Suffixes) > 0 {
		fmt.Fprintln(out, "\nPrefixes:")
		for _, s := range p.Prefixes {
			fmt.Fprintf(out, "  %q\n", s)
		}
		fmt.Fprintln(out, "Suffixes:")
		for _, s := range p.Suffixes {
			fmt.Fprintf(out, "  %q\n", s)
		}
	}

	fmt.Fprintf(out, "\nSystem Prompt:\n%s\n", p.SystemPrompt)
	return nil
}

func runPersonaAdd(cmd *cobra.Command, args []string) error {
	name := args[0]

	if _, err := config.GetPersona(name); err == nil {
		return fmt.Errorf("persona '%s' already exists", name)
	}

	reader := bufio.NewReader(deps.Stdin)
	out := deps.Stdout

	fmt.Fprint(out, "Enter description: ")
	desc, err := reader.ReadString('\n')
	if err != nil && desc == "" {
		return fmt.Errorf("failed to read description: %w", err)
	}
	desc = strings.TrimSpace(desc)

	fmt.Fprintln(out, "Enter system prompt (end with an empty line):")
	var promptLines []string
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\n\r")
		if line == "" {
			break
		}
		promptLines = append(promptLines, line)
		if err != nil {
			break
		}
	}

	persona := config.Persona{
		Name:         name,
		Description:  desc,
		Model:        personaModelFlag,
		SystemPrompt: strings.Join(promptLines, "\n"),
		Title:        personaTitleFlag,
		Greeting:     personaGreetingFlag,
		Prefixes:     personaPrefixFlag,
		Suffixes:     personaSuffixFlag,
	}

	if err := config.AddPersona(persona); err != nil {
		return err
	}

	fmt.Fprintf(out, "Persona '%s' created.\n", name)
	return nil
}

func runPersonaDelete(cmd *cobra.Command, args []string) error {
	name := args[0]

	if err := config.DeletePersona(name); err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "Persona '%s' deleted.\n", name)
	return nil
}

func runPersonaSetDefault(cmd *cobra.Command, args []string) error {
	name := args[0]

	if err := config.SetDefaultPersona(name); err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "Default persona set to '%s'.\n", name)
	return nil
}
