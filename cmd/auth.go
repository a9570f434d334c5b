package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mcptool/mcptool/internal/auth"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored server credentials",
	Long: `Manage the bearer tokens mcptool sends to HTTP servers whose mcp.json
entry carries no inline credentials. Tokens live in
~/.mcptool/credentials.json, readable only by the owner.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var authToken string

var authSetTokenCmd = &cobra.Command{
	Use:   "set-token <server>",
	Short: "Store a bearer token for a server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if authToken == "" {
			return fmt.Errorf("provide the token with --token")
		}
		path, err := auth.DefaultCredentialsPath()
		if err != nil {
			return err
		}
		if err := auth.SetToken(path, args[0], authToken); err != nil {
			return fmt.Errorf("storing token: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Stored token for %q in %s\n", args[0], path)
		return nil
	},
}

var authDeleteTokenCmd = &cobra.Command{
	Use:   "delete-token <server>",
	Short: "Remove a server's stored token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := auth.DefaultCredentialsPath()
		if err != nil {
			return err
		}
		if err := auth.DeleteToken(path, args[0]); err != nil {
			return fmt.Errorf("removing token: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed stored token for %q\n", args[0])
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which servers have stored credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := auth.DefaultCredentialsPath()
		if err != nil {
			return err
		}
		creds, err := auth.LoadCredentials(path)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(creds.Servers) == 0 {
			fmt.Fprintln(out, "No stored credentials.")
			return nil
		}

		names := make([]string, 0, len(creds.Servers))
		for name := range creds.Servers {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Fprintf(out, "Credentials in %s:\n", path)
		for _, name := range names {
			cred := creds.Servers[name]
			fmt.Fprintf(out, "  %-24s %s\n", name, cred.Type)
		}

		if info, err := os.Stat(path); err == nil {
			if perm := info.Mode().Perm(); perm != 0o600 {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s has mode %o, expected 600\n", path, perm)
			}
		}
		return nil
	},
}

func init() {
	authSetTokenCmd.Flags().StringVar(&authToken, "token", "", "bearer token to store")
	authCmd.AddCommand(authSetTokenCmd)
	authCmd.AddCommand(authDeleteTokenCmd)
	authCmd.AddCommand(authStatusCmd)
}
