package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	storefront "github.com/xraph/storefront"
	"github.com/xraph/storefront/inventory"
)

// dateLayout is the wire format for dashboard range arguments.
const dateLayout = "2006-01-02"

// Table maps command names to handlers and dispatches invocations
// against one engine.
type Table struct {
	mu       sync.RWMutex
	engine   *storefront.Engine
	handlers map[string]*Handler
	logger   *slog.Logger
}

// NewTable creates a Table with the built-in command set registered.
func NewTable(eng *storefront.Engine, opts ...TableOption) *Table {
	t := &Table{
		engine:   eng,
		handlers: make(map[string]*Handler),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}

	for _, h := range builtinHandlers() {
		_ = t.Register(h) //nolint:errcheck // built-in names cannot collide
	}

	return t
}

// TableOption configures a Table.
type TableOption func(*Table)

// WithLogger sets the logger for the table.
func WithLogger(logger *slog.Logger) TableOption {
	return func(t *Table) { t.logger = logger }
}

// Register adds a handler to the table. Names are case-insensitive.
func (t *Table) Register(h *Handler) error {
	if h == nil || h.Name == "" || h.Execute == nil {
		return fmt.Errorf("%w: handler needs a name and an execute function", storefront.ErrInvalidInput)
	}

	name := strings.ToLower(h.Name)

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.handlers[name]; exists {
		return fmt.Errorf("command: duplicate registration: %s", name)
	}
	t.handlers[name] = h
	return nil
}

// Names returns the registered command names.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.handlers))
	for name := range t.handlers {
		names = append(names, name)
	}
	return names
}

// Dispatch looks up the named handler, validates the arguments, and
// executes. Unknown names get ErrUnknownCommand.
func (t *Table) Dispatch(ctx context.Context, name string, args Args) (any, error) {
	t.mu.RLock()
	h, ok := t.handlers[strings.ToLower(name)]
	t.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}

	if h.Validate != nil {
		if err := h.Validate(args); err != nil {
			return nil, err
		}
	}

	result, err := h.Execute(ctx, t.engine, args)
	if err != nil {
		t.logger.Debug("command failed",
			"command", h.Name,
			"error", err,
		)
		return nil, err
	}
	return result, nil
}

// builtinHandlers returns the standard command set.
func builtinHandlers() []*Handler {
	return []*Handler{
		{
			Name: "create_session",
			Validate: func(args Args) error {
				if _, err := args.ClientID("client"); err != nil {
					return err
				}
				qty, err := args.Int("quantity")
				if err != nil {
					return err
				}
				if qty <= 0 {
					return storefront.ErrInvalidQuantity
				}
				return nil
			},
			Execute: func(ctx context.Context, eng *storefront.Engine, args Args) (any, error) {
				cid, _ := args.ClientID("client")
				qty, _ := args.Int("quantity")
				return eng.CreateSession(ctx, cid, qty)
			},
		},
		{
			Name: "set_payment_detail",
			Validate: func(args Args) error {
				if _, err := args.SessionID("session"); err != nil {
					return err
				}
				field, err := args.String("field")
				if err != nil {
					return err
				}
				switch field {
				case "method", "coin", "network", "txid":
				default:
					return fmt.Errorf("%w: unknown payment detail %q", storefront.ErrInvalidInput, field)
				}
				_, err = args.String("value")
				return err
			},
			Execute: func(ctx context.Context, eng *storefront.Engine, args Args) (any, error) {
				sid, _ := args.SessionID("session")
				field, _ := args.String("field")
				value, _ := args.String("value")

				switch field {
				case "method":
					return eng.SetPaymentMethod(ctx, sid, value)
				case "coin":
					return eng.SetCoin(ctx, sid, value)
				case "network":
					return eng.SetNetwork(ctx, sid, value)
				default:
					return eng.SetTxID(ctx, sid, value)
				}
			},
		},
		{
			Name: "verify_and_complete",
			Validate: func(args Args) error {
				_, err := args.SessionID("session")
				return err
			},
			Execute: func(ctx context.Context, eng *storefront.Engine, args Args) (any, error) {
				sid, _ := args.SessionID("session")
				return eng.VerifyAndComplete(ctx, sid, args["txid"])
			},
		},
		{
			Name: "cancel_session",
			Validate: func(args Args) error {
				_, err := args.SessionID("session")
				return err
			},
			Execute: func(ctx context.Context, eng *storefront.Engine, args Args) (any, error) {
				sid, _ := args.SessionID("session")
				return nil, eng.CancelSession(ctx, sid)
			},
		},
		{
			Name: "manual_fulfill",
			Validate: func(args Args) error {
				if _, err := args.ClientID("client"); err != nil {
					return err
				}
				qty, err := args.Int("quantity")
				if err != nil {
					return err
				}
				if qty <= 0 {
					return storefront.ErrInvalidQuantity
				}
				currency, err := args.String("currency")
				if err != nil {
					return err
				}
				_, err = args.Money("total", currency)
				return err
			},
			Execute: func(ctx context.Context, eng *storefront.Engine, args Args) (any, error) {
				cid, _ := args.ClientID("client")
				qty, _ := args.Int("quantity")
				currency, _ := args.String("currency")
				total, _ := args.Money("total", currency)
				method := args["method"]
				return eng.ManualFulfill(ctx, cid, qty, total, method)
			},
		},
		{
			Name: "manual_replace",
			Validate: func(args Args) error {
				if _, err := args.ClientID("client"); err != nil {
					return err
				}
				qty, err := args.Int("quantity")
				if err != nil {
					return err
				}
				if qty <= 0 {
					return storefront.ErrInvalidQuantity
				}
				return nil
			},
			Execute: func(ctx context.Context, eng *storefront.Engine, args Args) (any, error) {
				cid, _ := args.ClientID("client")
				qty, _ := args.Int("quantity")
				return eng.ManualReplace(ctx, cid, qty)
			},
		},
		{
			Name: "stock",
			Execute: func(ctx context.Context, eng *storefront.Engine, _ Args) (any, error) {
				return eng.Stock(ctx)
			},
		},
		{
			Name: "export_items",
			Validate: func(args Args) error {
				status := inventory.Status(args["status"])
				if args["status"] != "" && !status.Valid() {
					return fmt.Errorf("%w: unknown item status %q", storefront.ErrInvalidInput, status)
				}
				return nil
			},
			Execute: func(ctx context.Context, eng *storefront.Engine, args Args) (any, error) {
				opts := inventory.ListOpts{Status: inventory.Status(args["status"])}
				items, err := eng.Items(ctx, opts)
				if err != nil {
					return nil, err
				}
				ids := make([]string, len(items))
				for i, item := range items {
					ids[i] = item.ID
				}
				return ids, nil
			},
		},
		{
			Name: "price",
			Validate: func(args Args) error {
				_, err := args.Int("quantity")
				return err
			},
			Execute: func(ctx context.Context, eng *storefront.Engine, args Args) (any, error) {
				qty, _ := args.Int("quantity")
				return eng.PriceFor(ctx, qty)
			},
		},
		{
			Name: "tiers",
			Execute: func(ctx context.Context, eng *storefront.Engine, _ Args) (any, error) {
				return eng.Tiers(ctx)
			},
		},
		{
			Name: "client",
			Validate: func(args Args) error {
				_, err := args.ClientID("client")
				return err
			},
			Execute: func(ctx context.Context, eng *storefront.Engine, args Args) (any, error) {
				cid, _ := args.ClientID("client")
				return eng.Client(ctx, cid)
			},
		},
		{
			Name: "top_client",
			Execute: func(ctx context.Context, eng *storefront.Engine, _ Args) (any, error) {
				return eng.TopClient(ctx)
			},
		},
		{
			Name: "dashboard",
			Validate: func(args Args) error {
				if _, err := parseDate(args, "start"); err != nil {
					return err
				}
				_, err := parseDate(args, "end")
				return err
			},
			Execute: func(ctx context.Context, eng *storefront.Engine, args Args) (any, error) {
				start, _ := parseDate(args, "start")
				end, _ := parseDate(args, "end")
				// The end date is inclusive: cover its whole day.
				end = end.Add(24*time.Hour - time.Nanosecond)
				return eng.Dashboard(ctx, start, end)
			},
		},
	}
}

func parseDate(args Args, key string) (time.Time, error) {
	v, err := args.String(key)
	if err != nil {
		return time.Time{}, err
	}

	d, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: argument %q is not a %s date: %v",
			storefront.ErrInvalidInput, key, dateLayout, err)
	}
	return d.UTC(), nil
}
