package main

import (
	"errors"
	"fmt"
	"net/mail"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/amww/loja"
	"github.com/amww/loja/config"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account",
	Long: `Create an account allowed to manage the catalog. The password is read
from a masked prompt and never accepted as a flag.

Examples:
  loja admin create --email admin@example.com`,
	Args: cobra.NoArgs,
	RunE: runAdminCreate,
}

var adminEmail string

func init() {
	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "account email (prompted when empty)")
	adminCmd.AddCommand(adminCreateCmd)
	rootCmd.AddCommand(adminCmd)
}

func runAdminCreate(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	email := adminEmail
	if email == "" {
		emailPrompt := promptui.Prompt{
			Label:    "Email",
			Validate: validateEmail,
		}
		email, err = emailPrompt.Run()
		if err != nil {
			return handlePromptError(err)
		}
	} else if err := validateEmail(email); err != nil {
		return err
	}

	passwordPrompt := promptui.Prompt{
		Label:    "Password",
		Mask:     '*',
		Validate: validatePassword,
	}
	password, err := passwordPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}

	confirmPrompt := promptui.Prompt{
		Label: "Confirm password",
		Mask:  '*',
		Validate: func(input string) error {
			if input != password {
				return errors.New("passwords do not match")
			}
			return nil
		},
	}
	if _, err := confirmPrompt.Run(); err != nil {
		return handlePromptError(err)
	}

	ctx := cmd.Context()

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	acc, err := a.identity.CreateAccount(ctx, email, password)
	if err != nil {
		if errors.Is(err, loja.ErrAlreadyExists) {
			return fmt.Errorf("account %s already exists", email)
		}
		return err
	}

	fmt.Printf("Account %s created (id %s).\n", acc.Email, acc.ID)
	return nil
}

func validateEmail(input string) error {
	if input == "" {
		return errors.New("email is required")
	}
	if _, err := mail.ParseAddress(input); err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}
	return nil
}

func validatePassword(input string) error {
	if len(input) < loja.MinPasswordLength {
		return fmt.Errorf("password must have at least %d characters", loja.MinPasswordLength)
	}
	return nil
}

func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return errors.New("cancelled")
	}
	return fmt.Errorf("prompt: %w", err)
}
