// Package command provides a transport-agnostic command table for
// Storefront. A frontend (chat bot, CLI, HTTP handler) parses its input
// into a command name plus string arguments and dispatches here; each
// handler validates its arguments before touching the engine, so
// malformed input never reaches a store.
package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	storefront "github.com/xraph/storefront"
	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/types"
)

// ErrUnknownCommand is returned by Dispatch for an unregistered name.
var ErrUnknownCommand = errors.New("command: unknown command")

// Args carries the string arguments of a single invocation.
type Args map[string]string

// String returns the named argument or an error when absent or empty.
func (a Args) String(key string) (string, error) {
	v, ok := a[key]
	if !ok || v == "" {
		return "", fmt.Errorf("%w: missing argument %q", storefront.ErrInvalidInput, key)
	}
	return v, nil
}

// Int parses the named argument as a base-10 integer.
func (a Args) Int(key string) (int, error) {
	v, err := a.String(key)
	if err != nil {
		return 0, err
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: argument %q is not an integer: %v", storefront.ErrInvalidInput, key, err)
	}
	return n, nil
}

// ClientID parses the named argument as a client identifier. Both bare
// digits and mention form are accepted.
func (a Args) ClientID(key string) (id.ClientID, error) {
	v, err := a.String(key)
	if err != nil {
		return id.NilClientID, err
	}

	cid, err := id.ParseClientID(v)
	if err != nil {
		return id.NilClientID, fmt.Errorf("%w: %v", storefront.ErrInvalidInput, err)
	}
	return cid, nil
}

// SessionID parses the named argument as a checkout session identifier.
func (a Args) SessionID(key string) (id.SessionID, error) {
	v, err := a.String(key)
	if err != nil {
		return id.Nil, err
	}

	sid, err := id.ParseSessionID(v)
	if err != nil {
		return id.Nil, fmt.Errorf("%w: %v", storefront.ErrInvalidInput, err)
	}
	return sid, nil
}

// Money parses the named argument as a major-unit decimal amount in the
// given currency ("24", "24.50").
func (a Args) Money(key, currency string) (types.Money, error) {
	v, err := a.String(key)
	if err != nil {
		return types.Money{}, err
	}

	m, err := types.ParseMajor(v, currency)
	if err != nil {
		return types.Money{}, fmt.Errorf("%w: %v", storefront.ErrInvalidInput, err)
	}
	return m, nil
}

// Handler is one entry of the command table. Validate runs before
// Execute on every dispatch; a handler whose Validate fails never
// executes.
type Handler struct {
	Name     string
	Validate func(args Args) error
	Execute  func(ctx context.Context, eng *storefront.Engine, args Args) (any, error)
}
