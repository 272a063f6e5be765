package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"flickrscraper/pkg/auth"
	"flickrscraper/pkg/ui"
)

var (
	logoutAll bool
	skipGuide bool
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored Flickr API keys",
	Long: `Manage Flickr API keys stored under named profiles.

Keys are read from, in order:
  - FLICKR_API_KEY / FLICKR_API_SECRET (default profile only)
  - System keychain (when available)
  - Encrypted file in the user config directory

Set FLICKRSCRAPER_PASSPHRASE to choose the passphrase of the encrypted file.`,
}

var loginCmd = &cobra.Command{
	Use:   "login [profile]",
	Short: "Store a Flickr API key",
	Example: `  flickrscraper auth login
  flickrscraper auth login research`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout [profile]",
	Short: "Remove a stored API key",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLogout,
}

var showCmd = &cobra.Command{
	Use:   "show [profile]",
	Short: "Show a stored API key (masked)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runShow,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored profiles",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd, logoutCmd, showCmd, listCmd)

	loginCmd.Flags().BoolVar(&skipGuide, "no-guide", false, "do not print instructions for obtaining a key")
	logoutCmd.Flags().BoolVar(&logoutAll, "all", false, "remove every stored profile")
}

func profileArg(args []string) string {
	if len(args) > 0 {
		return strings.TrimSpace(args[0])
	}
	return auth.DefaultProfile
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	if !skipGuide {
		auth.ShowAPIKeyGuide(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout())
	}

	reader := bufio.NewReader(os.Stdin)

	key, err := readSecret(reader, "Flickr API key: ")
	if err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("API key cannot be empty")
	}

	secret, err := readSecret(reader, "Flickr API secret (optional, Enter to skip): ")
	if err != nil {
		return err
	}

	creds := &auth.Credentials{
		Profile:   profileArg(args),
		APIKey:    key,
		APISecret: secret,
	}
	if err := manager.Store(creds); err != nil {
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Stored credentials for profile %q", creds.Profile))
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	if logoutAll {
		list, err := manager.List()
		if err != nil {
			return err
		}
		removed := 0
		for _, creds := range list {
			if manager.Delete(creds.Profile) == nil {
				removed++
			}
		}
		ui.PrintSuccess(fmt.Sprintf("Removed %d profiles", removed))
		return nil
	}

	profile := profileArg(args)
	if err := manager.Delete(profile); err != nil {
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("Removed profile %q", profile))
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	creds, err := manager.Retrieve(profileArg(args))
	if err != nil {
		return err
	}

	s := auth.Sanitize(creds)
	ui.PrintInfo("Profile", s.Profile)
	ui.PrintInfo("API key", s.APIKey)
	if s.APISecret != "" {
		ui.PrintInfo("API secret", s.APISecret)
	}
	ui.PrintInfo("Last modified", s.LastModified.Format("2006-01-02 15:04:05"))
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	list, err := manager.List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		ui.PrintWarning("No stored credentials. Run 'flickrscraper auth login'.")
		return nil
	}

	for _, creds := range list {
		s := auth.Sanitize(creds)
		ui.PrintInfo(s.Profile, s.APIKey)
	}
	return nil
}

// readSecret reads a line without echo when stdin is a terminal
func readSecret(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Print(prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	return readLine(reader)
}

// readLine reads one answer from piped input; end of input is an empty answer
func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
