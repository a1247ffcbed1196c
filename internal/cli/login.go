package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/simp-lee/casedesk/internal/module/auth"
	"github.com/simp-lee/casedesk/internal/recordapi"
)

func newLoginCommand(g *globalOptions) *cobra.Command {
	var (
		clientID     string
		clientSecret string
		output       string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange client credentials for a bearer token",
		Long: `Exchange client credentials for a bearer token and print it.

Credentials default to client_id and client_secret of the config. Pass the
token to other commands with --token or CASEDESK__TOKEN.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output != "text" && output != "json" {
				return fmt.Errorf("invalid output %q: must be text or json", output)
			}

			r, err := newRuntime(cmd, g)
			if err != nil {
				return err
			}
			defer r.close()

			if clientID == "" {
				clientID = r.cfg.ClientID
			}
			if clientSecret == "" {
				clientSecret = r.cfg.ClientSecret
			}
			if clientID == "" || clientSecret == "" {
				return errors.New("client id and secret are required")
			}

			tok, err := recordapi.Login(cmd.Context(), r.cfg.Server, clientID, clientSecret, r.transportOptions()...)
			if err != nil {
				return fmt.Errorf("login as %s: %w", clientID, err)
			}

			if output == "json" {
				return writeJSON(r.out, tok)
			}
			fmt.Fprintln(r.out, tok.Token)
			fmt.Fprintln(r.errOut, footerStyle.Render("expires at "+tok.ExpiresAt.Local().Format(time.RFC3339)))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&clientID, "client-id", "", "client id (default from config)")
	flags.StringVar(&clientSecret, "client-secret", "", "client secret (default from config)")
	flags.StringVarP(&output, "output", "o", "text", "output format: text or json")
	return cmd
}

func newHashSecretCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-secret [secret]",
		Short: "Print the bcrypt hash of a client secret for the server config",
		Long: `Print the bcrypt hash of a client secret, to be placed in
auth.clients[].secret_hash of the server config. Without an argument the
secret is read from the first line of standard input.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var secret string
			if len(args) == 1 {
				secret = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && err != io.EOF {
					return fmt.Errorf("read secret: %w", err)
				}
				secret = strings.TrimRight(line, "\r\n")
			}

			hash, err := auth.HashSecret(secret)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
}
