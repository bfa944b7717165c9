package ndmpconf

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrArgument is returned for command line tokens that cannot become part of
// a change-set
var ErrArgument = errors.New("invalid argument")

// promptValue asks for a value interactively instead of taking it from argv
const promptValue = "-"

// ChangeSet is the set of key/value pairs one invocation applies to the file
type ChangeSet map[string]string

// Keys returns the change-set keys in sorted order
func (c ChangeSet) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Builder turns key=value command line tokens into a ChangeSet
type Builder struct {
	// ValidNIC reports whether an interface exists. nil disables the check.
	ValidNIC func(name string) bool

	// ReadPassword is called for password arguments given as "-"
	ReadPassword func(key string) (string, error)
}

// Build parses args. Every token must be key=value with a recognised key.
func (b *Builder) Build(args []string) (ChangeSet, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: no key=value pairs given", ErrArgument)
	}

	changes := make(ChangeSet, len(args))
	for _, arg := range args {
		name, value, found := strings.Cut(arg, "=")
		if !found {
			return nil, fmt.Errorf("%w: %q is not key=value", ErrArgument, arg)
		}

		key, ok := Canonical(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown key %q", ErrArgument, name)
		}

		value, err := b.value(key, value)
		if err != nil {
			return nil, err
		}
		changes[key] = value
	}

	// The data connection uses the listen interface unless told otherwise
	if lnic, ok := changes[KeyListenNIC]; ok && lnic != "" {
		if _, ok := changes[KeyServeNIC]; !ok {
			changes[KeyServeNIC] = lnic
		}
	}

	return changes, nil
}

func (b *Builder) value(key, value string) (string, error) {
	switch key {
	case KeyCleartextPassword, KeyCramMD5Password:
		if value == promptValue {
			if b.ReadPassword == nil {
				return "", fmt.Errorf("%w: %s: no terminal to read from", ErrArgument, key)
			}
			pw, err := b.ReadPassword(key)
			if err != nil {
				return "", fmt.Errorf("reading %s: %w", key, err)
			}
			value = pw
		}
		return EncodePassword(value), nil

	case KeyRestoreFullpath:
		v := strings.ToUpper(strings.TrimSpace(value))
		if v != "TRUE" && v != "FALSE" {
			return "", fmt.Errorf("%w: %s must be TRUE or FALSE, got %q", ErrArgument, key, value)
		}
		return v, nil

	case KeyListenNIC, KeyServeNIC:
		if value != "" && b.ValidNIC != nil && !b.ValidNIC(value) {
			return "", fmt.Errorf("%w: %s: no such interface %q", ErrArgument, key, value)
		}
		return value, nil
	}

	return value, nil
}
