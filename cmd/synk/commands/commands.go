package commands

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/synk/client/internal/infrastructure/session"
)

const commandTimeout = 30 * time.Second

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store a session",
		Long:  "Sign in with an email or username and store the issued tokens locally",
		Run: func(cmd *cobra.Command, args []string) {
			identifier, _ := cmd.Flags().GetString("user")
			password, _ := cmd.Flags().GetString("password")
			if identifier == "" || password == "" {
				log.Fatal("User and password are required")
			}

			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			user, err := a.session.Login(ctx, identifier, password)
			if err != nil {
				a.logger.Fatalw("Login failed", "error", err)
			}
			fmt.Printf("Signed in as %s\n", user.DisplayName())
		},
	}

	loginCmd.Flags().String("user", "", "Email or username (required)")
	loginCmd.Flags().String("password", "", "Password (required)")
	return loginCmd
}

// NewSignupCommand creates the signup command
func NewSignupCommand() *cobra.Command {
	signupCmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a new account",
		Run: func(cmd *cobra.Command, args []string) {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			firstName, _ := cmd.Flags().GetString("first-name")
			lastName, _ := cmd.Flags().GetString("last-name")
			couplingCode, _ := cmd.Flags().GetString("coupling-code")
			if email == "" || password == "" {
				log.Fatal("Email and password are required")
			}

			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			user, err := a.session.Signup(ctx, session.SignupParams{
				Email:           email,
				Password:        password,
				PasswordConfirm: password,
				FirstName:       firstName,
				LastName:        lastName,
				CouplingCode:    couplingCode,
			})
			if err != nil {
				a.logger.Fatalw("Signup failed", "error", err)
			}
			fmt.Printf("Account created, signed in as %s\n", user.DisplayName())
		},
	}

	signupCmd.Flags().String("email", "", "Email address (required)")
	signupCmd.Flags().String("password", "", "Password (required)")
	signupCmd.Flags().String("first-name", "", "First name")
	signupCmd.Flags().String("last-name", "", "Last name")
	signupCmd.Flags().String("coupling-code", "", "Partner's coupling code to pair immediately")
	return signupCmd
}

// NewLogoutCommand creates the logout command
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session",
		Run: func(cmd *cobra.Command, args []string) {
			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			if err := a.session.Logout(ctx); err != nil {
				a.logger.Fatalw("Logout failed", "error", err)
			}
			fmt.Println("Signed out")
		},
	}
}

// NewWhoamiCommand creates the whoami command
func NewWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Run: func(cmd *cobra.Command, args []string) {
			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			user, err := a.session.CurrentUser(ctx)
			if err != nil {
				a.logger.Fatalw("Not signed in", "error", err)
			}
			if user == nil {
				fmt.Println("Not signed in")
				return
			}
			fmt.Printf("%s (%s)\n", user.DisplayName(), user.Email)
		},
	}
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print Synk client version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Synk Client v1.0.0")
		},
	}
}
