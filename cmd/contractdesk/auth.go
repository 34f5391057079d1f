package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/contractdesk/internal/cli"
	"github.com/Veraticus/contractdesk/internal/tui/viewmodel"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Log in, register and manage the stored session",
	}

	cmd.AddCommand(authLoginCmd())
	cmd.AddCommand(authRegisterCmd())
	cmd.AddCommand(authLogoutCmd())
	cmd.AddCommand(authStatusCmd())

	return cmd
}

func authLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Long: `Log in to the backend. Missing credentials are prompted for; the password
is read without echo when stdin is a terminal.`,
		RunE: runAuthLogin,
	}
	cmd.Flags().StringP("username", "u", "", "username")
	cmd.Flags().StringP("password", "p", "", "password (prompted when omitted)")
	return cmd
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")
	creds, err := prompter(cmd).LoginCredentials(cmd.Context(), username, password)
	if err != nil {
		return err
	}

	resp, err := a.Login(cmd.Context(), creds)
	if err != nil {
		return err
	}
	return printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Welcome, %s!", resp.User.Username)))
}

func authRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE:  runAuthRegister,
	}
	cmd.Flags().StringP("username", "u", "", "username")
	cmd.Flags().StringP("email", "e", "", "email (optional)")
	cmd.Flags().StringP("password", "p", "", "password (prompted when omitted)")
	return cmd
}

func runAuthRegister(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	username, _ := cmd.Flags().GetString("username")
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	creds, err := prompter(cmd).RegisterCredentials(cmd.Context(), username, email, password)
	if err != nil {
		return err
	}

	resp, err := a.Register(cmd.Context(), creds)
	if err != nil {
		return err
	}
	return printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Account created. Welcome, %s!", resp.User.Username)))
}

func authLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.Logout(); err != nil {
				return err
			}
			return printLine(cmd, cli.FormatSuccess("Logged out"))
		},
	}
}

func authStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show who is logged in",
		RunE:  runAuthStatus,
	}
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	user := a.Session.User()
	if user == nil {
		return printLine(cmd, cli.FormatWarning("Not logged in"))
	}

	lines := []string{
		fmt.Sprintf("User:    %s", user.Username),
		fmt.Sprintf("Backend: %s", a.API.BaseURL()),
	}
	if user.Email != "" {
		lines = append(lines, fmt.Sprintf("Email:   %s", user.Email))
	}
	if exp, ok := a.Session.Expiry(); ok {
		left := exp.Sub(now())
		switch {
		case left <= 0:
			lines = append(lines, cli.WarningStyle.Render("Token:   expired "+viewmodel.FormatDate(exp.Local())))
		default:
			lines = append(lines, fmt.Sprintf("Token:   expires in %s", viewmodel.FormatDuration(left.Truncate(time.Minute))))
		}
	}

	return printLine(cmd, cli.RenderBox("Session", strings.Join(lines, "\n")))
}
