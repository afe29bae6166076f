package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/salmonumbrella/folio-cli/internal/auth"
	clierrors "github.com/salmonumbrella/folio-cli/internal/errors"
	"github.com/salmonumbrella/folio-cli/internal/iocontext"
	"github.com/salmonumbrella/folio-cli/internal/validate"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in to the portfolio API",
		Long:  `Manage the admin session. The session token is stored in the system keyring; FOLIO_TOKEN overrides it.`,
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var (
		email         string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Long: `Sign in as a portfolio administrator.

The password is read without echo from the terminal, or from the first
line of stdin with --password-stdin (or when stdin is not a terminal).`,
		Example: `  folio auth login --email me@example.com
  echo "$PASSWORD" | folio auth login --email me@example.com --password-stdin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store := auth.StoreFromContext(ctx)
			if store == nil {
				return fmt.Errorf("no session store configured")
			}

			in := stdinFromContext(ctx)
			reader := bufio.NewReader(in)
			interactive := iocontext.IsTerminal(in) && !passwordStdin

			email = strings.TrimSpace(email)
			if email == "" && interactive {
				_, _ = fmt.Fprint(stderrFromContext(ctx), "Email: ")
				line, err := readLine(reader)
				if err != nil {
					return fmt.Errorf("failed to read email: %w", err)
				}
				email = line
			}
			if err := validate.Email("email", email); err != nil {
				return clierrors.WrapUserError(err, "invalid email", "Pass --email with the administrator address")
			}

			password, err := readPassword(ctx, in, reader, interactive)
			if err != nil {
				return err
			}
			if err := validate.NonEmpty("password", password); err != nil {
				return clierrors.WrapUserError(err, "password is required", "Type it at the prompt or pipe it with --password-stdin")
			}

			session, err := clientFromContext(ctx).Login(ctx, email, password)
			if err != nil {
				return err
			}
			if err := store.Save(session); err != nil {
				return fmt.Errorf("failed to store session: %w", err)
			}

			name := session.User.Name
			if name == "" {
				name = session.User.Email
			}
			uiSuccess(ctx, "Signed in as %s", name)
			return printerForContext(ctx).Print(ctx, map[string]any{
				"status":  "success",
				"user":    session.User,
				"api_url": session.APIURL,
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Administrator email")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	return cmd
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func readPassword(ctx context.Context, in io.Reader, reader *bufio.Reader, interactive bool) (string, error) {
	f, ok := in.(*os.File)
	if !interactive || !ok {
		line, err := readLine(reader)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return line, nil
	}

	// Prompt on stderr so stdout stays clean.
	_, _ = fmt.Fprint(stderrFromContext(ctx), "Password: ")
	pw, err := term.ReadPassword(int(f.Fd()))
	_, _ = fmt.Fprintln(stderrFromContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show who is signed in",
		Long: `Display whether a session is available and where it came from.

Does not display the token value.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			result := map[string]any{"authenticated": false, "source": "none"}

			store := auth.StoreFromContext(ctx)
			if store == nil {
				return printerForContext(ctx).Print(ctx, result)
			}
			session, err := store.Load()
			if errors.Is(err, auth.ErrNoSession) {
				return printerForContext(ctx).Print(ctx, result)
			}
			if err != nil {
				return fmt.Errorf("failed to read session: %w", err)
			}

			result["authenticated"] = true
			if session.FromEnv {
				result["source"] = "environment variable (" + auth.EnvVarName + ")"
			} else {
				result["source"] = "system keyring"
				result["user"] = session.User
			}
			if age := auth.FormatSessionAge(session.CreatedAt); age != "" {
				result["signed_in"] = age
			}

			apiURL := ConfigFromContext(ctx).GetAPIURL()
			result["api_url"] = apiURL
			if session.APIURL != "" && session.APIURL != apiURL {
				result["session_api_url"] = session.APIURL
				uiWarning(ctx, "The session was issued by %s, but commands use %s.", session.APIURL, apiURL)
			}
			return printerForContext(ctx).Print(ctx, result)
		},
	}
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store := auth.StoreFromContext(ctx)
			if store != nil {
				if err := store.Clear(); err != nil {
					return fmt.Errorf("failed to remove session: %w", err)
				}
			}
			if os.Getenv(auth.EnvVarName) != "" {
				uiWarning(ctx, "%s is still set and will keep being used.", auth.EnvVarName)
			}
			return printerForContext(ctx).Print(ctx, map[string]any{
				"status":  "success",
				"message": "Signed out",
			})
		},
	}
}
