package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"conference-clipper/domain/publishing"
	"conference-clipper/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
	Select(message string, options []string, defaultValue string) (string, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

func (p *SurveyPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Select{
		Message: message,
		Options: options,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var errPromptCancelled = errors.New("prompt cancelled")

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through setting up your configuration file:
the conference name and year, where the schedule and videos live,
which rooms to process, the YouTube settings and the optional
summary email.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	return RunSetupWithPrompter(DefaultPrompter, cfgFile, DefaultOutput)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string, out OutputWriter) error {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm(filepath.Base(configPath)+" already exists. Overwrite?", false)
		if err != nil {
			return errPromptCancelled
		}
		if !overwrite {
			fmt.Fprintln(out, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(out, "Welcome to conference-clipper setup!")
	fmt.Fprintln(out)

	cfg := config.Default()

	steps := []func(Prompter, *config.Config) error{
		promptConference,
		promptSchedule,
		promptRooms,
		promptFeatures,
		promptYouTube,
		promptNotification,
	}
	for _, step := range steps {
		if err := step(prompter, cfg); err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Save creates the config directory if needed
	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Configuration saved to %s\n", configPath)
	if cfg.Features.Upload {
		fmt.Fprintln(out, "Run 'conference-clipper auth' to authorize YouTube uploads.")
	}
	return nil
}

func promptConference(prompter Prompter, cfg *config.Config) error {
	product, err := prompter.Input("Conference name?", "")
	if err != nil {
		return errPromptCancelled
	}
	product = strings.TrimSpace(product)
	if product == "" {
		return fmt.Errorf("conference name is required")
	}
	cfg.Product = product

	year, err := prompter.Input("Edition year?", strconv.Itoa(cfg.Year))
	if err != nil {
		return errPromptCancelled
	}
	if year != "" {
		y, err := strconv.Atoi(strings.TrimSpace(year))
		if err != nil || y <= 0 {
			return fmt.Errorf("invalid year %q", year)
		}
		cfg.Year = y
	}

	root, err := prompter.Input("Where should videos be written?", cfg.Paths.Root)
	if err != nil {
		return errPromptCancelled
	}
	if root != "" {
		cfg.Paths.Root = root
	}

	return nil
}

func promptSchedule(prompter Prompter, cfg *config.Config) error {
	file, err := prompter.Input("Path to the talks CSV?", cfg.Schedule.File)
	if err != nil {
		return errPromptCancelled
	}
	if file != "" {
		cfg.Schedule.File = file
	}

	skip, err := prompter.Confirm("Does the CSV start with a header row?", true)
	if err != nil {
		return errPromptCancelled
	}
	cfg.Schedule.SkipHeader = skip

	return nil
}

func promptRooms(prompter Prompter, cfg *config.Config) error {
	cfg.Rooms = nil
	for {
		add, err := prompter.Confirm("Restrict processing to a room? (none means all rooms)", false)
		if err != nil {
			return errPromptCancelled
		}
		if !add {
			break
		}

		room, err := prompter.Input("  Room name:", "")
		if err != nil {
			return errPromptCancelled
		}
		room = strings.TrimSpace(room)
		if room == "" {
			return fmt.Errorf("room name is required")
		}
		cfg.Rooms = append(cfg.Rooms, room)
	}
	return nil
}

func promptFeatures(prompter Prompter, cfg *config.Config) error {
	toggles := []struct {
		message string
		target  *bool
	}{
		{"Download room recordings?", &cfg.Features.Download},
		{"Cut talks out of the recordings?", &cfg.Features.Split},
		{"Upload talks to YouTube?", &cfg.Features.Upload},
	}

	for _, t := range toggles {
		v, err := prompter.Confirm(t.message, *t.target)
		if err != nil {
			return errPromptCancelled
		}
		*t.target = v
	}
	return nil
}

func promptYouTube(prompter Prompter, cfg *config.Config) error {
	if !cfg.Features.Upload {
		return nil
	}

	credentials, err := prompter.Input("Path to Google credentials file?", cfg.YouTube.CredentialsFile)
	if err != nil {
		return errPromptCancelled
	}
	if credentials != "" {
		cfg.YouTube.CredentialsFile = credentials
	}

	options := []string{
		string(publishing.PrivacyPrivate),
		string(publishing.PrivacyUnlisted),
		string(publishing.PrivacyPublic),
	}
	privacy, err := prompter.Select("Privacy of uploaded videos?", options, cfg.YouTube.Privacy)
	if err != nil {
		return errPromptCancelled
	}
	cfg.YouTube.Privacy = privacy

	return nil
}

func promptNotification(prompter Prompter, cfg *config.Config) error {
	enabled, err := prompter.Confirm("Email a summary after each run?", false)
	if err != nil {
		return errPromptCancelled
	}
	cfg.Notification.Enabled = enabled
	if !enabled {
		return nil
	}

	fromName, err := prompter.Input("Display name for outgoing emails?", cfg.Product+" video team")
	if err != nil {
		return errPromptCancelled
	}
	cfg.Notification.FromName = fromName

	fromAddress, err := prompter.Input("Gmail address to send from?", "")
	if err != nil {
		return errPromptCancelled
	}
	if fromAddress == "" {
		return fmt.Errorf("from address is required")
	}
	cfg.Notification.FromAddress = fromAddress

	cfg.Notification.Recipients = make(map[string]config.RecipientConfig)
	for {
		add, err := prompter.Confirm("Add a summary recipient?", len(cfg.Notification.Recipients) == 0)
		if err != nil {
			return errPromptCancelled
		}
		if !add {
			break
		}

		key, err := prompter.Input("  Key:", "")
		if err != nil {
			return errPromptCancelled
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			return fmt.Errorf("recipient key is required")
		}

		recipient, err := promptRecipientWithPrompter(prompter)
		if err != nil {
			return err
		}
		cfg.Notification.Recipients[key] = recipient
	}

	return nil
}

func promptRecipientWithPrompter(prompter Prompter) (config.RecipientConfig, error) {
	name, err := prompter.Input("  Full name:", "")
	if err != nil {
		return config.RecipientConfig{}, errPromptCancelled
	}
	if name == "" {
		return config.RecipientConfig{}, fmt.Errorf("name is required")
	}

	address, err := prompter.Input("  Email:", "")
	if err != nil {
		return config.RecipientConfig{}, errPromptCancelled
	}
	if address == "" {
		return config.RecipientConfig{}, fmt.Errorf("email is required")
	}

	return config.RecipientConfig{
		Name:    name,
		Address: address,
	}, nil
}
