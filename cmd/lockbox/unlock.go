package main

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"

	cr "github.com/kimjosell/lockbox/internal/crypto"
	"github.com/kimjosell/lockbox/internal/vault"
)

// unlock prompts for the master password and opens the configured vault.
// A wrong password is asked for again, at most UnlockAttempts times and no
// faster than UnlockInterval; any other failure ends the command so a vault
// that exists is never replaced by an empty one.
func (a *app) unlock(ctx context.Context) (*vault.Session, *vault.Vault, error) {
	lim := rate.NewLimiter(rate.Every(a.cfg.UnlockInterval), 1)

	var lastErr error
	for attempt := 1; attempt <= a.cfg.UnlockAttempts; attempt++ {
		if err := lim.Wait(ctx); err != nil {
			return nil, nil, err
		}
		pw, err := a.readSecret("Master password: ")
		if err != nil {
			return nil, nil, fmt.Errorf("read master password: %w", err)
		}
		sess, v, err := a.store.Open(ctx, a.cfg.VaultPath, a.cfg.SaltPath, pw)
		cr.Zero(pw)
		if err == nil {
			if sess.Pinned() {
				a.log.WithField("records", v.Len()).Info("vault unlocked")
			} else {
				fmt.Fprintf(a.errOut, "No vault at %s, starting a new one.\n", a.cfg.VaultPath)
			}
			return sess, v, nil
		}
		if !errors.Is(err, vault.ErrAuthenticationFailed) {
			return nil, nil, err
		}
		lastErr = err
		a.log.WithField("attempt", attempt).Warn("unlock failed")
		if attempt < a.cfg.UnlockAttempts {
			fmt.Fprintln(a.errOut, "Incorrect master password, try again.")
		}
	}
	return nil, nil, lastErr
}
