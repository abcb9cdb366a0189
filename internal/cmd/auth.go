package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskboard/internal/auth"
	tberrors "github.com/felixgeelhaar/taskboard/internal/errors"
	"github.com/felixgeelhaar/taskboard/internal/router"
	"github.com/felixgeelhaar/taskboard/internal/tui"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the login session",
	Long: `Manage the login session used by every other command.

The access token is stored in <home>/auth.json (mode 0600) and revalidated
against the backend whenever a protected command runs. Use --ephemeral to
keep the token in memory for a single command.

Subcommands:
  login     Login with email and password
  logout    Forget the stored token
  status    Revalidate the stored token and show who is logged in

Examples:
  taskboard auth login --email alice@example.com
  echo "$PASSWORD" | taskboard auth login --email alice@example.com --password-stdin
  taskboard auth status
  taskboard auth logout`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// authLoginCmd is the login view
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login with email and password",
	Long: `Login with your email and password.

Missing credentials are prompted for when running in a terminal. The login
view is only reachable while logged out; run 'taskboard auth logout' first to
switch accounts.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{routeAnnotation: router.LoginPath},
	RunE:        runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored token",
	Long: `Clear the session and delete the stored token.

Logging out is local: the backend is not contacted.`,
	Args: cobra.NoArgs,
	RunE: runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current login",
	Long: `Revalidate the stored token against the backend and show the logged in
user. A token the backend no longer accepts is cleared.`,
	Args: cobra.NoArgs,
	RunE: runAuthStatus,
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)

	authLoginCmd.Flags().String("email", "", "email address")
	authLoginCmd.Flags().String("password", "", "password (prefer --password-stdin or the prompt)")
	authLoginCmd.Flags().Bool("password-stdin", false, "read the password from stdin")

	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	app, err := appFrom(cmd)
	if err != nil {
		return err
	}

	email, password, err := loginCredentials(cmd)
	if err != nil {
		return err
	}

	resp, err := app.Auth.Login(cmd.Context(), email, password)
	if err != nil && !(resp != nil && tberrors.HasCode(err, tberrors.ErrCodeAuthPersistenceFail)) {
		return err
	}
	if err != nil {
		app.Logger.WithError(err).Warn("session is not persisted")
	}

	return app.Render(loginView{User: resp.User, Persisted: err == nil})
}

// loginCredentials collects email and password from flags, stdin or prompts
func loginCredentials(cmd *cobra.Command) (string, string, error) {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	fromStdin, _ := cmd.Flags().GetBool("password-stdin")
	email = strings.TrimSpace(email)

	if fromStdin {
		if password != "" {
			return "", "", usageError("--password and --password-stdin are mutually exclusive")
		}
		secret, err := tui.ReadSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), "")
		if err != nil {
			return "", "", err
		}
		password = secret
	}

	if email != "" && password != "" {
		return email, password, nil
	}

	if !tui.ShouldPrompt() {
		return "", "", usageError("--email and a password are required when not running interactively")
	}

	if password == "" && email != "" {
		secret, err := tui.ReadSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password: ")
		if err != nil {
			return "", "", err
		}
		return email, secret, nil
	}

	creds, err := tui.PromptForCredentials(email)
	if err != nil {
		return "", "", err
	}
	return creds.Email, creds.Password, nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	app, err := appFrom(cmd)
	if err != nil {
		return err
	}

	if !app.Auth.IsAuthenticated() {
		return app.Render(message{Message: "Not logged in."})
	}

	who := "session"
	if u := app.Auth.User(); u != nil {
		who = u.Email
	} else if claims, err := auth.ParseTokenClaims(app.Auth.Token()); err == nil && claims.Email() != "" {
		who = claims.Email()
	}

	if err := app.Auth.Logout(cmd.Context()); err != nil {
		return err
	}
	return app.Render(message{Message: fmt.Sprintf("Logged out %s.", who)})
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	app, err := appFrom(cmd)
	if err != nil {
		return err
	}

	token := app.Auth.Token()
	if token == "" {
		return app.Render(statusView{Reason: "no stored token"})
	}

	claims, claimsErr := auth.ParseTokenClaims(token)
	if !app.Auth.CheckAuth(cmd.Context()) {
		reason := "the backend rejected the stored token"
		if claimsErr == nil && claims.ExpiredAt(time.Now()) {
			reason = fmt.Sprintf("the stored token expired at %s", claims.Expiry().Local().Format(timeLayout))
		}
		return app.Render(statusView{Reason: reason})
	}

	view := statusView{
		Authenticated: true,
		User:          app.Auth.User(),
	}
	if claimsErr == nil && !claims.Expiry().IsZero() {
		exp := claims.Expiry()
		view.ExpiresAt = &exp
	}
	if fs, ok := app.Auth.Session().Store().(*auth.FileStore); ok {
		view.TokenStore = fs.Path()
	}
	return app.Render(view)
}
