package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"conference-clipper/infrastructure/config"

	"github.com/spf13/cobra"
)

// OutputWriter interface for output (allows capturing in tests)
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}

// DefaultOutput is the default output writer for config commands
var DefaultOutput OutputWriter = os.Stdout

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration entries",
	Long: `Manage the room allowlist and the summary email recipients in the configuration file.

An empty room allowlist means every room of the schedule is processed.

Examples:
  conference-clipper config list rooms
  conference-clipper config add room --name "Amphi A"
  conference-clipper config add recipient --key jane --name "Jane Doe" --email "jane@example.com"
  conference-clipper config remove recipient jane`,
}

func init() {
	rootCmd.AddCommand(configCmd)

	// Add subcommands
	configCmd.AddCommand(configAddCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configRemoveCmd)
}

// --- ADD command ---

var (
	addKey   string
	addName  string
	addEmail string
)

var configAddCmd = &cobra.Command{
	Use:   "add [room|recipient]",
	Short: "Add a new config entry",
	Long: `Add a room to the allowlist or a recipient of the run summary email.

Examples:
  conference-clipper config add room --name "Amphi A"
  conference-clipper config add recipient --key jane --name "Jane Doe" --email "jane@example.com"`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigAdd,
}

func init() {
	configAddCmd.Flags().StringVar(&addKey, "key", "", "Unique key for the entry (required for recipient)")
	configAddCmd.Flags().StringVar(&addName, "name", "", "Room or display name (required)")
	configAddCmd.Flags().StringVar(&addEmail, "email", "", "Email address (required for recipient)")
	configAddCmd.MarkFlagRequired("name")
}

func runConfigAdd(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	return RunConfigAddWithDependencies(cfg, cfgFile, args[0], addKey, addName, addEmail, DefaultOutput)
}

// RunConfigAddWithDependencies runs the add command with injected dependencies
func RunConfigAddWithDependencies(cfg *config.Config, configPath, entityType, key, name, email string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)

	switch entityType {
	case "room":
		if err := mgr.AddRoom(name); err != nil {
			return err
		}
		fmt.Fprintf(out, "Added room %q\n", name)

	case "recipient":
		if key == "" {
			return fmt.Errorf("--key is required for recipients")
		}
		if email == "" {
			return fmt.Errorf("--email is required for recipients")
		}
		if err := mgr.AddRecipient(key, name, email); err != nil {
			return err
		}
		fmt.Fprintf(out, "Added recipient %q: %s <%s>\n", key, name, email)

	default:
		return fmt.Errorf("unknown entity type %q. Use room or recipient", entityType)
	}

	return nil
}

// --- LIST command ---

var configListCmd = &cobra.Command{
	Use:   "list [rooms|recipients]",
	Short: "List config entries",
	Long: `List the room allowlist or the summary email recipients.

Examples:
  conference-clipper config list rooms
  conference-clipper config list recipients`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigList,
}

func runConfigList(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	return RunConfigListWithDependencies(cfg, cfgFile, args[0], DefaultOutput)
}

// RunConfigListWithDependencies runs the list command with injected dependencies
func RunConfigListWithDependencies(cfg *config.Config, configPath, entityType string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	switch entityType {
	case "rooms":
		rooms := mgr.ListRooms()
		if len(rooms) == 0 {
			fmt.Fprintln(out, "No rooms configured; every room of the schedule is processed.")
			return nil
		}
		fmt.Fprintln(w, "ROOM")
		for _, r := range rooms {
			fmt.Fprintln(w, r)
		}

	case "recipients":
		recipients := mgr.ListRecipients()
		if len(recipients) == 0 {
			fmt.Fprintln(out, "No recipients configured.")
			return nil
		}
		fmt.Fprintln(w, "KEY\tNAME\tEMAIL")
		for _, r := range recipients {
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.Key, r.Name, r.Address)
		}

	default:
		return fmt.Errorf("unknown entity type %q. Use rooms or recipients", entityType)
	}

	return w.Flush()
}

// --- REMOVE command ---

var configRemoveCmd = &cobra.Command{
	Use:   "remove [room|recipient] <name-or-key>",
	Short: "Remove a config entry",
	Long: `Remove a room from the allowlist or a recipient by key.

Examples:
  conference-clipper config remove room "Amphi A"
  conference-clipper config remove recipient jane`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigRemove,
}

func runConfigRemove(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	return RunConfigRemoveWithDependencies(cfg, cfgFile, args[0], args[1], DefaultOutput)
}

// RunConfigRemoveWithDependencies runs the remove command with injected dependencies
func RunConfigRemoveWithDependencies(cfg *config.Config, configPath, entityType, key string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)

	switch entityType {
	case "room":
		if err := mgr.RemoveRoom(key); err != nil {
			return err
		}
		fmt.Fprintf(out, "Removed room %q\n", key)

	case "recipient":
		r, err := mgr.GetRecipient(key)
		if err != nil {
			return err
		}
		if err := mgr.RemoveRecipient(key); err != nil {
			return err
		}
		fmt.Fprintf(out, "Removed recipient %q: %s <%s>\n", r.Key, r.Name, r.Address)

	default:
		return fmt.Errorf("unknown entity type %q. Use room or recipient", entityType)
	}

	return nil
}
