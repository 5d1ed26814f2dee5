package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPersonaName is the persona used when nothing else is configured
const DefaultPersonaName = "whiskerion"

// Persona is the character the chat speaks as: its system instruction,
// the fixed transcript texts and the decoration sets wrapped around replies.
type Persona struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description,omitempty"`
	Model        string   `yaml:"model,omitempty"` // Preferred model (optional)
	SystemPrompt string   `yaml:"system_prompt,omitempty"`
	Title        string   `yaml:"title,omitempty"`
	Greeting     string   `yaml:"greeting,omitempty"`
	StartupError string   `yaml:"startup_error,omitempty"`
	SendError    string   `yaml:"send_error,omitempty"`
	Pending      string   `yaml:"pending,omitempty"`
	Placeholder  string   `yaml:"placeholder,omitempty"`
	Prefixes     []string `yaml:"prefixes,omitempty"`
	Suffixes     []string `yaml:"suffixes,omitempty"`
}

// PersonaConfig stores all personas
type PersonaConfig struct {
	Personas       []Persona `yaml:"personas"`
	DefaultPersona string    `yaml:"default_persona,omitempty"`
}

// WithDefaults fills the fixed texts a persona left empty.
// Decoration sets are left alone: an empty set means no decoration.
func (p Persona) WithDefaults() Persona {
	if p.Title == "" {
		p.Title = p.Name
	}
	if p.Greeting == "" {
		p.Greeting = "Hello. What would you like to know?"
	}
	if p.StartupError == "" {
		p.StartupError = "Could not connect to the model. Check your API key."
	}
	if p.SendError == "" {
		p.SendError = "The connection failed... Try again."
	}
	if p.Pending == "" {
		p.Pending = "Thinking..."
	}
	if p.Placeholder == "" {
		p.Placeholder = "Type your message here..."
	}
	return p
}

// DefaultPersonas returns the built-in personas
func DefaultPersonas() []Persona {
	return []Persona{
		{
			Name:        DefaultPersonaName,
			Description: "Whiskerion the Cosmic, an epic cat from another dimension",
			SystemPrompt: "You are an epic, wise, and slightly aloof cat from another dimension. " +
				"Your name is Whiskerion the Cosmic. Speak with grandiosity and cosmic flair, " +
				"but keep your core answers helpful and concise. Do not add any greetings or " +
				"sign-offs, as they will be added programmatically.",
			Title:        "Whiskerion the Cosmic",
			Greeting:     "Greetings, mortal. I am Whiskerion the Cosmic. What knowledge do you seek?",
			StartupError: "Could not connect to the cosmic realm. Check your API key.",
			SendError:    "The cosmic connection is frayed... Try again.",
			Pending:      "Whiskerion is pondering the cosmic strings...",
			Placeholder:  "Ask the epic cat...",
			Prefixes: []string{
				"By the whisker of the cosmos... ",
				"From the ninth dimension of my ninth life, I decree... ",
				"Hark, mortal, for I purr the truth... ",
				"Behold, the wisdom of the cosmic feline... ",
			},
			Suffixes: []string{
				" Meow majestically.",
				" Claws sharpened.",
				" Cosmic purrs.",
				" Feline decree.",
				" Nap time.",
			},
		},
		{
			Name:        "plain",
			Description: "No persona, no decoration",
			Title:       "Gemini",
		},
	}
}

// GetPersonasPath returns the path to the personas file
func GetPersonasPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "personas.yaml"), nil
}

// LoadPersonas loads the persona configuration
func LoadPersonas() (*PersonaConfig, error) {
	path, err := GetPersonasPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &PersonaConfig{
				Personas:       DefaultPersonas(),
				DefaultPersona: DefaultPersonaName,
			}, nil
		}
		return nil, fmt.Errorf("failed to read personas: %w", err)
	}

	var config PersonaConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse personas: %w", err)
	}

	// Merge with defaults (keep user customizations)
	config.Personas = mergePersonas(DefaultPersonas(), config.Personas)

	return &config, nil
}

// SavePersonas saves the persona configuration
func SavePersonas(config *PersonaConfig) error {
	path, err := GetPersonasPath()
	if err != nil {
		return err
	}

	if _, err := EnsureConfigDir(); err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal personas: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}

// Find returns the persona with the given name
func (c *PersonaConfig) Find(name string) (Persona, bool) {
	for _, p := range c.Personas {
		if p.Name == name {
			return p, true
		}
	}
	return Persona{}, false
}

// GetPersona returns a persona by name
func GetPersona(name string) (*Persona, error) {
	config, err := LoadPersonas()
	if err != nil {
		return nil, err
	}

	p, ok := config.Find(name)
	if !ok {
		return nil, fmt.Errorf("persona '%s' not found", name)
	}
	return &p, nil
}

// ListPersonaNames returns the names of all personas
func ListPersonaNames() ([]string, error) {
	config, err := LoadPersonas()
	if err != nil {
		return nil, err
	}

	names := make([]string, len(config.Personas))
	for i, p := range config.Personas {
		names[i] = p.Name
	}
	return names, nil
}

// AddPersona adds a new persona
func AddPersona(persona Persona) error {
	if err := ValidatePersona(persona); err != nil {
		return err
	}

	config, err := LoadPersonas()
	if err != nil {
		return err
	}

	if _, ok := config.Find(persona.Name); ok {
		return fmt.Errorf("persona '%s' already exists", persona.Name)
	}

	config.Personas = append(config.Personas, persona)
	return SavePersonas(config)
}

// DeletePersona removes a persona by name
func DeletePersona(name string) error {
	if name == DefaultPersonaName {
		return fmt.Errorf("cannot delete the built-in persona '%s'", name)
	}

	config, err := LoadPersonas()
	if err != nil {
		return err
	}

	newPersonas := make([]Persona, 0, len(config.Personas))
	found := false
	for _, p := range config.Personas {
		if p.Name == name {
			found = true
			continue
		}
		newPersonas = append(newPersonas, p)
	}

	if !found {
		return fmt.Errorf("persona '%s' not found", name)
	}

	config.Personas = newPersonas

	if config.DefaultPersona == name {
		config.DefaultPersona = DefaultPersonaName
	}

	return SavePersonas(config)
}

// SetDefaultPersona sets the default persona
func SetDefaultPersona(name string) error {
	config, err := LoadPersonas()
	if err != nil {
		return err
	}

	if _, ok := config.Find(name); !ok {
		return fmt.Errorf("persona '%s' not found", name)
	}

	config.DefaultPersona = name
	return SavePersonas(config)
}

// GetDefaultPersona returns the default persona
func GetDefaultPersona() (*Persona, error) {
	config, err := LoadPersonas()
	if err != nil {
		return nil, err
	}

	name := config.DefaultPersona
	if name == "" {
		name = DefaultPersonaName
	}

	p, ok := config.Find(name)
	if !ok {
		return nil, fmt.Errorf("persona '%s' not found", name)
	}
	return &p, nil
}

func mergePersonas(defaults, custom []Persona) []Persona {
	result := make([]Persona, len(defaults))
	copy(result, defaults)

	for _, cp := range custom {
		found := false
		for i, dp := range result {
			if dp.Name == cp.Name {
				result[i] = cp
				found = true
				break
			}
		}
		if !found {
			result = append(result, cp)
		}
	}

	return result
}

// Validation constants
const (
	MaxNameLength        = 50
	MaxDescriptionLength = 200
	MaxPromptLength      = 32 * 1024 // 32KB
)

// ValidatePersona validates a persona's fields
func ValidatePersona(p Persona) error {
	fieldErrors := make(map[string]string)

	if p.Name == "" {
		fieldErrors["name"] = "name is required"
	} else if len(p.Name) > MaxNameLength {
		fieldErrors["name"] = fmt.Sprintf("name too long (max %d characters)", MaxNameLength)
	} else if !isValidPersonaName(p.Name) {
		fieldErrors["name"] = "name must contain only alphanumeric characters, underscores, and hyphens"
	}

	if len(p.Description) > MaxDescriptionLength {
		fieldErrors["description"] = fmt.Sprintf("description too long (max %d characters)", MaxDescriptionLength)
	}

	if len(p.SystemPrompt) > MaxPromptLength {
		fieldErrors["system_prompt"] = fmt.Sprintf("system prompt too long (max %d characters)", MaxPromptLength)
	}

	if len(fieldErrors) > 0 {
		return fmt.Errorf("validation failed: %v", fieldErrors)
	}

	return nil
}

func isValidPersonaName(name string) bool {
	for _, c := range name {
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '-') {
			return false
		}
	}
	return true
}
