package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/vibast-solutions/ms-go-users/app/apierror"
	"github.com/vibast-solutions/ms-go-users/app/dto"
	"github.com/vibast-solutions/ms-go-users/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Administer user accounts",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApplication(cmd.Context(), func(ctx context.Context, app *application) error {
			users, err := app.users.ListUsers(ctx)
			if err != nil {
				return err
			}
			return printUsers(cmd.OutOrStdout(), users)
		})
	},
}

var usersBlockCmd = &cobra.Command{
	Use:   "block <user_id>",
	Short: "Block a user so they cannot log in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return adminCommand(cmd, args[0], "blocked", func(ctx context.Context, app *application, id string) error {
			return app.users.BlockUser(ctx, id)
		})
	},
}

var usersUnblockCmd = &cobra.Command{
	Use:   "unblock <user_id>",
	Short: "Unblock a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return adminCommand(cmd, args[0], "unblocked", func(ctx context.Context, app *application, id string) error {
			return app.users.UnblockUser(ctx, id)
		})
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <user_id>",
	Short: "Delete a user and its refresh token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return adminCommand(cmd, args[0], "deleted", func(ctx context.Context, app *application, id string) error {
			return app.users.DeleteUser(ctx, id)
		})
	},
}

func init() {
	usersCmd.AddCommand(usersListCmd, usersBlockCmd, usersUnblockCmd, usersDeleteCmd)
	rootCmd.AddCommand(usersCmd)
}

func adminCommand(cmd *cobra.Command, id, verb string, op func(context.Context, *application, string) error) error {
	return withApplication(cmd.Context(), func(ctx context.Context, app *application) error {
		if err := op(ctx, app, id); err != nil {
			if apierror.KindOf(err) == apierror.KindNotFound {
				return fmt.Errorf("user %q not found", id)
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "user %s %s\n", id, verb)
		return nil
	})
}

func withApplication(ctx context.Context, fn func(context.Context, *application) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err = configureLogging(cfg); err != nil {
		return err
	}
	// only warnings and errors interleave with command output
	if logrus.GetLevel() > logrus.WarnLevel {
		logrus.SetLevel(logrus.WarnLevel)
	}

	app, err := newApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	return fn(ctx, app)
}

func printUsers(w io.Writer, users []dto.UserListItem) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tSTATUS\tREGISTERED\tLAST LOGIN")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			u.ID,
			u.Email,
			u.Status,
			u.RegistrationDate.Format(time.RFC3339),
			u.LastLoginDate.Format(time.RFC3339),
		)
	}
	return tw.Flush()
}
