package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ndmpd/ndmpadm/internal/ndmpconf"
	"github.com/ndmpd/ndmpadm/internal/nic"
	"github.com/ndmpd/ndmpadm/internal/revision"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// writeConfig applies key=value arguments to the daemon configuration
func (a *app) writeConfig(cmd *cobra.Command, args []string) error {
	b := ndmpconf.Builder{ReadPassword: a.readPassword}
	if a.cfg.Network.VerifyNIC && !a.skipNICCheck {
		b.ValidNIC = a.enumerator().Validator(cmd.Context())
	}

	changes, err := b.Build(args)
	if err != nil {
		return err
	}

	path := a.cfg.NDMPD.ConfigFile
	current, err := ndmpconf.ReadRaw(path)
	if err == nil {
		a.saveRevision(cmd.Context(), current, "set "+strings.Join(changes.Keys(), ","))
	}

	var missing []string
	if err == nil {
		missing, err = ndmpconf.MergeContent(path, current, changes)
	}
	if err != nil {
		slog.Debug("config update failed", "path", path, "err", err)
		fmt.Fprintln(a.stdout, "Write config file fail")
		return errReported
	}

	for _, key := range missing {
		slog.Warn("key not present in config file, not written", "path", path, "key", key)
	}
	fmt.Fprintln(a.stdout, "Write config success")
	return nil
}

func (a *app) enumerator() *nic.Enumerator {
	n := a.cfg.Network
	return nic.New(nic.Options{
		Source:       nic.Source(n.Source),
		IfconfigPath: n.IfconfigPath,
		IfconfigArgs: n.IfconfigArgs,
		SkipPrefixes: n.SkipPrefixes,
	}, a.runner)
}

// saveRevision stores data, the content about to be replaced. Failures are
// logged and never block the edit.
func (a *app) saveRevision(ctx context.Context, data []byte, reason string) {
	if !a.cfg.Revisions.Enabled {
		return
	}

	ctx, cancel := a.revisionContext(ctx)
	defer cancel()

	store, err := revision.Open(ctx, a.cfg.Revisions)
	if err != nil {
		slog.Warn("revision store unavailable", "err", err)
		return
	}
	defer store.Close()

	rev, err := store.Save(ctx, data, reason)
	if err != nil {
		slog.Warn("failed to save revision", "err", err)
		return
	}
	slog.Debug("saved revision", "id", rev.ID, "size", rev.Size, "stored", rev.StoredSize)
}

// promptPassword reads a password from the terminal without echo, or a line
// from stdin when it is not a terminal
func promptPassword(key string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprintf(os.Stderr, "%s: ", key)
		pw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
