package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/salmonumbrella/folio-cli/internal/api"
	"github.com/salmonumbrella/folio-cli/internal/auth"
	clierrors "github.com/salmonumbrella/folio-cli/internal/errors"
	"github.com/salmonumbrella/folio-cli/internal/validate"
)

func newSettingsCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the signed-in account",
	}
	cmd.PersistentFlags().StringVar(&userID, "user-id", "", "Account id (default: the signed-in user)")
	cmd.AddCommand(newSettingsGetCmd(&userID))
	cmd.AddCommand(newSettingsUpdateCmd(&userID))
	return cmd
}

// currentUserID returns the id of the stored session's user.
func currentUserID(ctx context.Context, override string) (string, *auth.Session, error) {
	store := auth.StoreFromContext(ctx)
	if store == nil {
		return "", nil, clierrors.AuthRequiredError(auth.ErrNoSession)
	}
	session, err := store.Load()
	if errors.Is(err, auth.ErrNoSession) {
		return "", nil, clierrors.AuthRequiredError(err)
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to read session: %w", err)
	}
	if override != "" {
		return override, session, nil
	}
	if session.User.ID == "" {
		return "", nil, clierrors.NewUserError(
			"the session does not name a user",
			fmt.Sprintf("Pass --user-id, or sign in with 'folio auth login' instead of %s", auth.EnvVarName),
		)
	}
	return session.User.ID, session, nil
}

func newSettingsGetCmd(userID *string) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the account profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, _, err := currentUserID(ctx, *userID)
			if err != nil {
				return err
			}
			user, err := clientFromContext(ctx).GetUser(ctx, id)
			if err != nil {
				return clierrors.APINotFoundError(err, "users", id)
			}
			return printerForContext(ctx).Print(ctx, user)
		},
	}
}

func newSettingsUpdateCmd(userID *string) *cobra.Command {
	var (
		name     string
		email    string
		password bool
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change name, email or password",
		Long: `Change the account profile. Only the given fields are sent.

With --password the new password is prompted twice without echo, or read
from the first two lines of stdin when stdin is not a terminal.`,
		Example: `  folio settings update --name "Ada Lovelace"
  printf 'secret1\nsecret1\n' | folio settings update --password`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var upd api.UserUpdate

			if cmd.Flags().Changed("name") {
				name = strings.TrimSpace(name)
				if err := validate.NonEmpty("name", name); err != nil {
					return clierrors.WrapUserError(err, "invalid name", "")
				}
				if err := validate.MaxLength("name", name, validate.MaxNameLength); err != nil {
					return clierrors.WrapUserError(err, "invalid name", "")
				}
				upd.Name = &name
			}
			if cmd.Flags().Changed("email") {
				email = strings.TrimSpace(email)
				if err := validate.Email("email", email); err != nil {
					return clierrors.WrapUserError(err, "invalid email", "")
				}
				upd.Email = &email
			}
			if password {
				pw, err := readNewPassword(ctx)
				if err != nil {
					return err
				}
				upd.Password = &pw
			}
			if upd.Name == nil && upd.Email == nil && upd.Password == nil {
				return clierrors.NewUserError("nothing to update", "Pass --name, --email or --password")
			}

			id, session, err := currentUserID(ctx, *userID)
			if err != nil {
				return err
			}
			user, err := clientFromContext(ctx).UpdateUser(ctx, id, upd)
			if err != nil {
				return fmt.Errorf("failed to update settings: %w", err)
			}

			// Keep the stored profile in step with the account.
			if !session.FromEnv && session.User.ID == user.ID {
				session.User.Name = user.Name
				session.User.Email = user.Email
				session.User.AvatarURL = user.AvatarURL
				if store := auth.StoreFromContext(ctx); store != nil {
					if err := store.Save(session); err != nil {
						uiWarning(ctx, "Could not update the stored session: %v", err)
					}
				}
			}

			uiSuccess(ctx, "Settings saved")
			return printerForContext(ctx).Print(ctx, user)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Sign-in email")
	cmd.Flags().BoolVar(&password, "password", false, "Set a new password")
	return cmd
}

func readNewPassword(ctx context.Context) (string, error) {
	in := stdinFromContext(ctx)
	var pw, confirm string

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		stderr := stderrFromContext(ctx)
		_, _ = fmt.Fprint(stderr, "New password: ")
		first, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		_, _ = fmt.Fprint(stderr, "Confirm password: ")
		second, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		pw, confirm = string(first), string(second)
	} else {
		reader := bufio.NewReader(in)
		var err error
		if pw, err = readLine(reader); err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		if confirm, err = readLine(reader); err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
	}

	if pw == "" {
		return "", clierrors.NewUserError("password: cannot be empty", "")
	}
	if err := validate.Password(pw, confirm); err != nil {
		return "", clierrors.WrapUserError(err, "invalid password", fmt.Sprintf("Use at least %d characters and repeat it exactly", validate.MinPasswordLength))
	}
	return pw, nil
}
