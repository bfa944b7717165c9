package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ndmpd/ndmpadm/internal/command"
	"github.com/ndmpd/ndmpadm/internal/config"
	"github.com/ndmpd/ndmpadm/internal/logging"
	"github.com/ndmpd/ndmpadm/internal/ndmpconf"
	"github.com/spf13/cobra"
)

var version = "1.0.0"

var (
	// errUsage makes run print the usage text and exit 1
	errUsage = errors.New("invalid usage")
	// errReported means the failure was already reported to the user
	errReported = errors.New("reported")
)

// app carries the global flags, loaded settings and the process plumbing
// shared by all subcommands
type app struct {
	settingsPath string
	verbose      bool
	skipNICCheck bool

	cfg          *config.Config
	runner       command.Runner
	readPassword func(key string) (string, error)

	stdout io.Writer
	stderr io.Writer
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		runner:       command.ExecRunner{},
		readPassword: promptPassword,
		stdout:       stdout,
		stderr:       stderr,
	}
}

func main() {
	os.Exit(newApp(os.Stdout, os.Stderr).run(context.Background(), os.Args[1:]))
}

func (a *app) run(ctx context.Context, args []string) int {
	root := a.rootCmd()
	root.SetArgs(args)

	cmd, err := root.ExecuteContextC(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errReported):
		return 1
	case errors.Is(err, errUsage), errors.Is(err, ndmpconf.ErrArgument):
		if err != errUsage {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
		}
		fmt.Fprint(a.stdout, cmd.UsageString())
		return 1
	default:
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return 1
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ndmpadm",
		Short: "Administer the NDMP daemon",
		Long: `ndmpadm edits the NDMP daemon configuration, lists the network interfaces
it can bind to, shows the backup history and starts or stops the daemon.`,
		Version:           version,
		Args:              keyValueArgs,
		PersistentPreRunE: a.setup,
		RunE:              a.writeConfig,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetUsageTemplate(usageTemplate)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errUsage, err)
	})

	root.PersistentFlags().StringVarP(&a.settingsPath, "settings", "s", config.DefaultPath, "ndmpadm settings file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Verbose output")
	root.PersistentFlags().BoolVar(&a.skipNICCheck, "skip-nic-check", false, "Do not check that listen-nic/serve-nic exist")

	root.AddCommand(listnicCmd(a))
	root.AddCommand(showconfigCmd(a))
	root.AddCommand(showlastbackupCmd(a))
	root.AddCommand(startCmd(a))
	root.AddCommand(stopCmd(a))
	root.AddCommand(restartCmd(a))
	root.AddCommand(revisionsCmd(a))
	root.AddCommand(rollbackCmd(a))
	root.AddCommand(settingsCmd(a))
	root.AddCommand(gentreeCmd(a))

	return root
}

// setup loads settings and configures logging before any command runs
func (a *app) setup(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.settingsPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	if a.verbose {
		level = slog.LevelDebug
	}
	logging.Setup(a.stderr, level, cfg.Log.Color)

	slog.Debug("settings loaded", "path", a.settingsPath, "ndmpd.config_file", cfg.NDMPD.ConfigFile)
	return nil
}

// keyValueArgs accepts only key=value tokens on the root command. Bare words
// that are not subcommands end up here too.
func keyValueArgs(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	for _, arg := range args {
		if !strings.Contains(arg, "=") {
			return errUsage
		}
	}
	return nil
}

// noArgs is cobra.NoArgs reporting through the usage path
func noArgs(_ *cobra.Command, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: unexpected argument %q", errUsage, args[0])
	}
	return nil
}

const usageTemplate = `Usage:{{if .HasParent}}
  {{.UseLine}}{{else}}
  {{.CommandPath}} key=value [key=value ...]
  {{.CommandPath}} <command>

Keys:
  username=<name>         clear text user name
  password=<password>     clear text password ("-" prompts)
  username_md5=<name>     CRAM-MD5 user name
  password_md5=<password> CRAM-MD5 password ("-" prompts)
  lnic=<interface>        network interface to listen on
  snic=<interface>        network interface for data transfer
  rsfullpath=<TRUE|FALSE> use full-path restore
  The full key names (cleartext-username, listen-nic, ...) are accepted too.{{end}}{{if .HasAvailableSubCommands}}

Commands:{{range .Commands}}{{if .IsAvailableCommand}}
  {{rpad .Name .NamePadding}} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}
`
