package command_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storefront "github.com/xraph/storefront"
	"github.com/xraph/storefront/command"
	"github.com/xraph/storefront/inventory"
	"github.com/xraph/storefront/session"
	"github.com/xraph/storefront/store/memory"
	"github.com/xraph/storefront/types"
	"github.com/xraph/storefront/verifier"
)

type staticVerifier struct {
	deposit *verifier.Deposit
	err     error
}

func (v *staticVerifier) DepositByTxID(_ context.Context, _, _ string) (*verifier.Deposit, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.deposit, nil
}

func newTestEngine(t *testing.T, opts ...storefront.Option) *storefront.Engine {
	t.Helper()

	eng := storefront.New(memory.New(), opts...)

	ctx := context.Background()
	require.NoError(t, eng.SetTier(ctx, 1, types.USDT(1000)))
	require.NoError(t, eng.SetTier(ctx, 5, types.USDT(800)))
	for _, itemID := range []string{"cred-1", "cred-2", "cred-3", "cred-4", "cred-5"} {
		require.NoError(t, eng.ImportItem(ctx, itemID, inventory.StatusAvailable))
	}
	return eng
}

func TestDispatchUnknownCommand(t *testing.T) {
	table := command.NewTable(newTestEngine(t))

	_, err := table.Dispatch(context.Background(), "does_not_exist", nil)
	assert.ErrorIs(t, err, command.ErrUnknownCommand)
}

func TestDispatchValidatesBeforeExecute(t *testing.T) {
	table := command.NewTable(newTestEngine(t))
	ctx := context.Background()

	// Missing quantity never reaches the engine.
	_, err := table.Dispatch(ctx, "create_session", command.Args{"client": "123456789"})
	assert.ErrorIs(t, err, storefront.ErrInvalidInput)

	// Malformed client id is rejected by validation.
	_, err = table.Dispatch(ctx, "create_session", command.Args{"client": "not-digits", "quantity": "3"})
	assert.ErrorIs(t, err, storefront.ErrInvalidInput)

	// Zero quantity is rejected by validation.
	_, err = table.Dispatch(ctx, "create_session", command.Args{"client": "123456789", "quantity": "0"})
	assert.ErrorIs(t, err, storefront.ErrInvalidQuantity)
}

func TestDispatchCheckoutFlow(t *testing.T) {
	eng := newTestEngine(t, storefront.WithVerifier(&staticVerifier{
		deposit: &verifier.Deposit{
			TxID:       "0xabc",
			Asset:      "usdt",
			Amount:     types.USDT(2500),
			ReceivedAt: time.Now().Add(time.Minute),
		},
	}))
	table := command.NewTable(eng)
	ctx := context.Background()

	result, err := table.Dispatch(ctx, "create_session", command.Args{
		"client":   "<@123456789>",
		"quantity": "3",
	})
	require.NoError(t, err)

	sess, ok := result.(*session.Session)
	require.True(t, ok)
	assert.Equal(t, types.USDT(3000), sess.QuotedTotal)

	for _, detail := range [][2]string{{"method", "binance"}, {"coin", "usdt"}, {"txid", "0xabc"}} {
		_, err = table.Dispatch(ctx, "set_payment_detail", command.Args{
			"session": sess.ID.String(),
			"field":   detail[0],
			"value":   detail[1],
		})
		require.NoError(t, err)
	}

	// 25.00 deposited against a 30.00 quote: rejected, session stays pending.
	_, err = table.Dispatch(ctx, "verify_and_complete", command.Args{"session": sess.ID.String()})
	assert.ErrorIs(t, err, storefront.ErrPaymentAmountMismatch)

	got, err := eng.Session(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusPending, got.Status)
}

func TestDispatchSetPaymentDetailRejectsUnknownField(t *testing.T) {
	eng := newTestEngine(t)
	table := command.NewTable(eng)
	ctx := context.Background()

	sess, err := eng.CreateSession(ctx, mustClientID(t, "123456789"), 3)
	require.NoError(t, err)

	_, err = table.Dispatch(ctx, "set_payment_detail", command.Args{
		"session": sess.ID.String(),
		"field":   "iban",
		"value":   "x",
	})
	assert.ErrorIs(t, err, storefront.ErrInvalidInput)
}

func TestDispatchQueries(t *testing.T) {
	table := command.NewTable(newTestEngine(t))
	ctx := context.Background()

	stock, err := table.Dispatch(ctx, "stock", nil)
	require.NoError(t, err)
	assert.Equal(t, 5, stock)

	price, err := table.Dispatch(ctx, "price", command.Args{"quantity": "5"})
	require.NoError(t, err)
	assert.Equal(t, types.USDT(800), price)

	ids, err := table.Dispatch(ctx, "export_items", command.Args{"status": "available"})
	require.NoError(t, err)
	assert.Len(t, ids, 5)

	report, err := table.Dispatch(ctx, "dashboard", command.Args{
		"start": "2026-01-01",
		"end":   "2026-12-31",
	})
	require.NoError(t, err)
	assert.NotNil(t, report)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	table := command.NewTable(newTestEngine(t))

	err := table.Register(&command.Handler{
		Name:    "stock",
		Execute: func(_ context.Context, _ *storefront.Engine, _ command.Args) (any, error) { return nil, nil },
	})
	assert.Error(t, err)
}

func mustClientID(t *testing.T, s string) storefront.ClientID {
	t.Helper()

	cid, err := storefront.ParseClientID(s)
	require.NoError(t, err)
	return cid
}
