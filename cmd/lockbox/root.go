package main

import (
	"bufio"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kimjosell/lockbox/internal/config"
	cr "github.com/kimjosell/lockbox/internal/crypto"
	"github.com/kimjosell/lockbox/internal/platform"
	"github.com/kimjosell/lockbox/internal/vault"
)

const version = "0.1.0"

// app carries what every command needs once the root command has set it up.
type app struct {
	cfg   *config.Config
	log   *logrus.Logger
	store *vault.Store

	in     *bufio.Reader
	tty    *os.File
	out    io.Writer
	errOut io.Writer

	// storeOpts are applied after the configured cipher and logger.
	storeOpts []vault.Option
}

func newApp() *app { return &app{} }

func newRootCmd(a *app) *cobra.Command {
	var (
		cfgFile   string
		vaultPath string
		saltPath  string
		logLevel  string
		cipher    string
	)

	root := &cobra.Command{
		Use:           "lockbox",
		Short:         "A password manager for the terminal",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cfgFile == "" {
				cfgFile = os.Getenv(config.EnvConfigFile)
			}
			cfg, err := config.LoadWithFile(cfgFile)
			if err != nil {
				return err
			}
			if vaultPath != "" {
				cfg.VaultPath = vaultPath
			}
			if saltPath != "" {
				cfg.SaltPath = saltPath
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			if cipher != "" {
				cfg.Cipher = cipher
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return a.setup(cmd, cfg)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "YAML config file (default $"+config.EnvConfigFile+")")
	pf.StringVar(&vaultPath, "vault", "", "vault file (default $"+config.EnvVaultPath+" or passwords.enc)")
	pf.StringVar(&saltPath, "salt", "", "salt file (default $"+config.EnvSaltPath+" or lockbox.salt)")
	pf.StringVar(&logLevel, "log-level", "", "log level (default $"+config.EnvLogLevel+" or warn)")
	pf.StringVar(&cipher, "cipher", "", "aes-256-gcm or chacha20-poly1305 (default $"+config.EnvCipher+" or aes-256-gcm)")

	root.AddCommand(
		newAddCmd(a),
		newGenerateCmd(a),
		newListCmd(a),
		newRemoveCmd(a),
		newShowCmd(a),
		newVersionCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, cfg *config.Config) error {
	log, err := config.NewLogger(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	c, err := cr.ParseCipher(cfg.Cipher)
	if err != nil {
		return err
	}
	if err := platform.DisableCoreDumps(); err != nil {
		log.WithError(err).Debug("could not disable core dumps")
	}

	a.cfg = cfg
	a.log = log
	a.out = cmd.OutOrStdout()
	a.errOut = cmd.ErrOrStderr()

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		a.tty = f
	}
	a.in = bufio.NewReader(in)

	opts := append([]vault.Option{vault.WithCipher(c), vault.WithLogger(log)}, a.storeOpts...)
	a.store = vault.NewFileStore("", opts...)
	log.WithFields(logrus.Fields{
		"vault":  cfg.VaultPath,
		"salt":   cfg.SaltPath,
		"cipher": c,
	}).Debug("configured")
	return nil
}
