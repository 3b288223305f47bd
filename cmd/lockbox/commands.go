package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kimjosell/lockbox/internal/vault"
)

const (
	genPrefix     = "gen:"
	defaultLength = 16
	noUsername    = "(none)"
)

func newAddCmd(a *app) *cobra.Command {
	var service, username, password string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Store a password for a service",
		Example: `  lockbox add --service github.com --username alice --password gen:20
  lockbox add -s mail -p 'hunter2'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if strings.TrimSpace(service) == "" {
				return vault.ErrEmptyService
			}

			sess, v, err := a.unlock(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			secret, err := a.resolveSecret(password, service)
			if err != nil {
				return err
			}
			rec := vault.NewRecord(service, username, secret)
			if err := v.Add(rec); err != nil {
				return err
			}

			fmt.Fprintf(a.out, "Adding password for: %s\n", rec.Service)
			fmt.Fprintf(a.out, "  Username: %s\n", rec.UsernameOr(noUsername))
			fmt.Fprintf(a.out, "  Password: %s\n", mask(rec.Secret))
			if err := sess.Save(ctx, v); err != nil {
				return fmt.Errorf("password not saved: %w", err)
			}
			fmt.Fprintln(a.out, "Password added.")
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&service, "service", "s", "", "service name")
	f.StringVarP(&username, "username", "u", "", "account username (optional)")
	f.StringVarP(&password, "password", "p", "", "password, or gen:N to generate N characters; prompted when omitted")
	_ = cmd.MarkFlagRequired("service")
	return cmd
}

// resolveSecret turns the --password value into the stored secret.
func (a *app) resolveSecret(flag, service string) (string, error) {
	switch {
	case strings.HasPrefix(flag, genPrefix):
		n, err := strconv.Atoi(strings.TrimPrefix(flag, genPrefix))
		if err != nil {
			return "", fmt.Errorf("invalid %q: want gen:N", flag)
		}
		return genPassword(n)
	case flag != "":
		return flag, nil
	}
	b, err := a.readSecret(fmt.Sprintf("Password for %s: ", service))
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if len(b) == 0 {
		return "", fmt.Errorf("empty password for %s", service)
	}
	return string(b), nil
}

func newGenerateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "generate [LENGTH]",
		Short: "Print a random password",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := defaultLength
			if len(args) == 1 {
				var err error
				if n, err = strconv.Atoi(args[0]); err != nil {
					return fmt.Errorf("invalid length %q", args[0])
				}
			}
			pw, err := genPassword(n)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, pw)
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored passwords",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, v, err := a.unlock(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			if v.Len() == 0 {
				fmt.Fprintln(a.out, "No passwords stored.")
				return nil
			}
			fmt.Fprint(a.out, "List of passwords:\n\n")
			for _, r := range v.List() {
				fmt.Fprintf(a.out, "Service: %s\n", r.Service)
				fmt.Fprintf(a.out, "User: %s\n", r.UsernameOr(noUsername))
				if verbose {
					fmt.Fprintf(a.out, "Password: %s\n", r.Secret)
				} else {
					fmt.Fprintf(a.out, "Password (hidden): %s\n", mask(r.Secret))
				}
				fmt.Fprintln(a.out)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show passwords in clear text")
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "remove SERVICE",
		Short: "Delete the password stored for a service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			service := args[0]

			sess, v, err := a.unlock(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			if _, ok := v.Find(service); !ok {
				fmt.Fprintf(a.out, "There is no password for: %s\n", service)
				return nil
			}
			if !force {
				ok, err := a.confirm(fmt.Sprintf("Remove the password for %s?", service))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(a.out, "Operation cancelled.")
					return nil
				}
			}
			v.Remove(service)
			if err := sess.Save(ctx, v); err != nil {
				return fmt.Errorf("removal not saved: %w", err)
			}
			fmt.Fprintf(a.out, "Password of %s removed.\n", service)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "do not ask for confirmation")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show SERVICE",
		Short: "Print the password stored for a service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, v, err := a.unlock(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			r, ok := v.Find(args[0])
			if !ok {
				return fmt.Errorf("there is no password for the service: %s", args[0])
			}
			fmt.Fprintf(a.out, "Service: %s\n", r.Service)
			fmt.Fprintf(a.out, "User: %s\n", r.UsernameOr(noUsername))
			fmt.Fprintf(a.out, "Password: %s\n", r.Secret)
			return nil
		},
	}
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(a.out, "lockbox v%s\n", version)
		},
	}
}
