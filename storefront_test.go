package storefront_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storefront "github.com/xraph/storefront"
	"github.com/xraph/storefront/finance"
	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/inventory"
	"github.com/xraph/storefront/session"
	"github.com/xraph/storefront/store/memory"
	"github.com/xraph/storefront/types"
	"github.com/xraph/storefront/verifier"
)

type fakeVerifier struct {
	deposits map[string]*verifier.Deposit
	err      error
}

func (v *fakeVerifier) DepositByTxID(_ context.Context, _, txid string) (*verifier.Deposit, error) {
	if v.err != nil {
		return nil, v.err
	}
	d, ok := v.deposits[txid]
	if !ok {
		return nil, verifier.ErrDepositNotFound
	}
	return d, nil
}

func depositOf(txid string, hundredths int64, receivedAt time.Time) *verifier.Deposit {
	return &verifier.Deposit{
		TxID:       txid,
		Asset:      "usdt",
		Amount:     types.USDT(hundredths),
		ReceivedAt: receivedAt,
	}
}

// newEngine builds an engine over a fresh memory store with the standard
// test tier table (1 -> 10.00, 5 -> 8.00, 20 -> 6.00) and n stocked items.
func newEngine(t *testing.T, n int, opts ...storefront.Option) *storefront.Engine {
	t.Helper()

	eng := storefront.New(memory.New(), opts...)
	ctx := context.Background()

	require.NoError(t, eng.SetTier(ctx, 1, types.USDT(1000)))
	require.NoError(t, eng.SetTier(ctx, 5, types.USDT(800)))
	require.NoError(t, eng.SetTier(ctx, 20, types.USDT(600)))

	for i := 0; i < n; i++ {
		require.NoError(t, eng.ImportItem(ctx, "cred-"+string(rune('a'+i)), inventory.StatusAvailable))
	}
	return eng
}

func clientID(t *testing.T, s string) id.ClientID {
	t.Helper()

	cid, err := id.ParseClientID(s)
	require.NoError(t, err)
	return cid
}

func TestPriceForResolvesTiers(t *testing.T) {
	eng := newEngine(t, 0)
	ctx := context.Background()

	for _, tc := range []struct {
		qty  int
		want types.Money
	}{
		{3, types.USDT(1000)},
		{5, types.USDT(800)},
		{25, types.USDT(600)},
	} {
		got, err := eng.PriceFor(ctx, tc.qty)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "quantity %d", tc.qty)
	}

	_, err := eng.PriceFor(ctx, 0)
	assert.ErrorIs(t, err, storefront.ErrInvalidQuantity)
}

func TestCreateSessionFixesQuote(t *testing.T) {
	eng := newEngine(t, 5)
	ctx := context.Background()

	sess, err := eng.CreateSession(ctx, clientID(t, "100"), 5)
	require.NoError(t, err)
	assert.Equal(t, types.USDT(4000), sess.QuotedTotal)
	assert.Equal(t, session.StatusPending, sess.Status)

	// Repricing after creation must not move the quote.
	require.NoError(t, eng.SetTier(ctx, 5, types.USDT(9900)))

	got, err := eng.Session(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, types.USDT(4000), got.QuotedTotal)
}

func TestCreateSessionRejectsDuplicatePending(t *testing.T) {
	eng := newEngine(t, 5)
	ctx := context.Background()
	cid := clientID(t, "100")

	_, err := eng.CreateSession(ctx, cid, 3)
	require.NoError(t, err)

	_, err = eng.CreateSession(ctx, cid, 1)
	assert.ErrorIs(t, err, storefront.ErrDuplicateSession)

	// A different client is unaffected.
	_, err = eng.CreateSession(ctx, clientID(t, "200"), 1)
	assert.NoError(t, err)
}

func TestCreateSessionUnpricedQuantity(t *testing.T) {
	eng := storefront.New(memory.New())
	ctx := context.Background()

	_, err := eng.CreateSession(ctx, clientID(t, "100"), 3)
	assert.ErrorIs(t, err, storefront.ErrInvalidQuantity)
}

func TestVerifyAndCompleteHappyPath(t *testing.T) {
	fv := &fakeVerifier{deposits: map[string]*verifier.Deposit{}}
	eng := newEngine(t, 5, storefront.WithVerifier(fv))
	ctx := context.Background()
	cid := clientID(t, "100")

	sess, err := eng.CreateSession(ctx, cid, 3)
	require.NoError(t, err)
	require.Equal(t, types.USDT(3000), sess.QuotedTotal)

	_, err = eng.SetPaymentMethod(ctx, sess.ID, "binance")
	require.NoError(t, err)
	_, err = eng.SetCoin(ctx, sess.ID, "usdt")
	require.NoError(t, err)

	// Deposit lands after creation and covers the quote with headroom.
	fv.deposits["0xabc"] = depositOf("0xabc", 3100, time.Now().Add(time.Second))

	// The txid handed to VerifyAndComplete is recorded on the session.
	items, err := eng.VerifyAndComplete(ctx, sess.ID, "0xabc")
	require.NoError(t, err)
	assert.Len(t, items, 3)
	for _, item := range items {
		assert.Equal(t, inventory.StatusSold, item.Status)
	}

	got, err := eng.Session(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusCompleted, got.Status)
	assert.Equal(t, "0xabc", got.TxID)

	stock, err := eng.Stock(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stock)

	// Income entry for the quoted total, not the deposited amount.
	report, err := eng.Dashboard(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, types.USDT(3000), report.Revenue)
	assert.Equal(t, 3, report.ItemsSold)

	// Purchase history gained one entry of quantity 3.
	rec, err := eng.Client(ctx, cid)
	require.NoError(t, err)
	require.Len(t, rec.Purchases, 1)
	assert.Equal(t, 3, rec.Purchases[0].Quantity)
	assert.Equal(t, types.USDT(3000), rec.Purchases[0].Total)
	assert.Len(t, rec.Purchases[0].ItemIDs, 3)
}

func TestVerifyAndCompleteIsIdempotent(t *testing.T) {
	fv := &fakeVerifier{deposits: map[string]*verifier.Deposit{}}
	eng := newEngine(t, 5, storefront.WithVerifier(fv))
	ctx := context.Background()

	sess, err := eng.CreateSession(ctx, clientID(t, "100"), 2)
	require.NoError(t, err)
	_, err = eng.SetCoin(ctx, sess.ID, "usdt")
	require.NoError(t, err)
	_, err = eng.SetTxID(ctx, sess.ID, "0xabc")
	require.NoError(t, err)
	fv.deposits["0xabc"] = depositOf("0xabc", 2000, time.Now().Add(time.Second))

	_, err = eng.VerifyAndComplete(ctx, sess.ID, "")
	require.NoError(t, err)

	// A retried settlement must not hand out a second batch.
	_, err = eng.VerifyAndComplete(ctx, sess.ID, "")
	assert.ErrorIs(t, err, storefront.ErrAlreadyCompleted)

	stock, err := eng.Stock(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stock)
}

func TestVerifyAndCompleteInsufficientInventory(t *testing.T) {
	fv := &fakeVerifier{deposits: map[string]*verifier.Deposit{}}
	eng := newEngine(t, 1, storefront.WithVerifier(fv))
	ctx := context.Background()

	sess, err := eng.CreateSession(ctx, clientID(t, "100"), 3)
	require.NoError(t, err)
	_, err = eng.SetCoin(ctx, sess.ID, "usdt")
	require.NoError(t, err)
	_, err = eng.SetTxID(ctx, sess.ID, "0xabc")
	require.NoError(t, err)
	fv.deposits["0xabc"] = depositOf("0xabc", 3000, time.Now().Add(time.Second))

	_, err = eng.VerifyAndComplete(ctx, sess.ID, "")
	assert.ErrorIs(t, err, storefront.ErrInsufficientInventory)

	// The claim was rolled back: the paid session stays redeemable and
	// the lone item was not burned.
	got, err := eng.Session(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusPending, got.Status)

	stock, err := eng.Stock(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stock)

	// After restocking, the same deposit settles the session.
	require.NoError(t, eng.ImportItem(ctx, "cred-x", inventory.StatusAvailable))
	require.NoError(t, eng.ImportItem(ctx, "cred-y", inventory.StatusAvailable))

	items, err := eng.VerifyAndComplete(ctx, sess.ID, "")
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestVerifyAndCompleteRejectsShortDeposit(t *testing.T) {
	fv := &fakeVerifier{deposits: map[string]*verifier.Deposit{}}
	eng := newEngine(t, 5, storefront.WithVerifier(fv))
	ctx := context.Background()

	sess, err := eng.CreateSession(ctx, clientID(t, "100"), 3)
	require.NoError(t, err)
	_, err = eng.SetCoin(ctx, sess.ID, "usdt")
	require.NoError(t, err)
	_, err = eng.SetTxID(ctx, sess.ID, "0xabc")
	require.NoError(t, err)
	fv.deposits["0xabc"] = depositOf("0xabc", 2999, time.Now().Add(time.Second))

	_, err = eng.VerifyAndComplete(ctx, sess.ID, "")
	assert.ErrorIs(t, err, storefront.ErrPaymentAmountMismatch)
	assert.True(t, storefront.IsPaymentError(err))

	got, err := eng.Session(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusPending, got.Status)
}

func TestVerifyAndCompleteRejectsStaleDeposit(t *testing.T) {
	fv := &fakeVerifier{deposits: map[string]*verifier.Deposit{}}
	eng := newEngine(t, 5, storefront.WithVerifier(fv))
	ctx := context.Background()

	sess, err := eng.CreateSession(ctx, clientID(t, "100"), 3)
	require.NoError(t, err)
	_, err = eng.SetCoin(ctx, sess.ID, "usdt")
	require.NoError(t, err)
	_, err = eng.SetTxID(ctx, sess.ID, "0xold")
	require.NoError(t, err)

	// A transaction that predates the session cannot pay for it.
	fv.deposits["0xold"] = depositOf("0xold", 9999, time.Now().Add(-time.Hour))

	_, err = eng.VerifyAndComplete(ctx, sess.ID, "")
	assert.ErrorIs(t, err, storefront.ErrPaymentStale)
}

func TestVerifyAndCompleteDepositNotFound(t *testing.T) {
	fv := &fakeVerifier{deposits: map[string]*verifier.Deposit{}}
	eng := newEngine(t, 5, storefront.WithVerifier(fv))
	ctx := context.Background()

	sess, err := eng.CreateSession(ctx, clientID(t, "100"), 1)
	require.NoError(t, err)
	_, err = eng.SetCoin(ctx, sess.ID, "usdt")
	require.NoError(t, err)
	_, err = eng.SetTxID(ctx, sess.ID, "0xmissing")
	require.NoError(t, err)

	_, err = eng.VerifyAndComplete(ctx, sess.ID, "")
	assert.ErrorIs(t, err, storefront.ErrPaymentNotFound)
}

func TestVerifyAndCompleteVerifierUnavailable(t *testing.T) {
	fv := &fakeVerifier{err: verifier.ErrUnavailable}
	eng := newEngine(t, 5, storefront.WithVerifier(fv))
	ctx := context.Background()

	sess, err := eng.CreateSession(ctx, clientID(t, "100"), 1)
	require.NoError(t, err)
	_, err = eng.SetCoin(ctx, sess.ID, "usdt")
	require.NoError(t, err)
	_, err = eng.SetTxID(ctx, sess.ID, "0xabc")
	require.NoError(t, err)

	_, err = eng.VerifyAndComplete(ctx, sess.ID, "")
	assert.ErrorIs(t, err, storefront.ErrVerifierUnavailable)
	assert.True(t, storefront.IsRetryable(err))

	// The session is untouched and the lookup can be retried.
	got, err := eng.Session(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusPending, got.Status)
}

func TestVerifyAndCompleteWithoutVerifier(t *testing.T) {
	eng := newEngine(t, 5)
	ctx := context.Background()

	sess, err := eng.CreateSession(ctx, clientID(t, "100"), 1)
	require.NoError(t, err)
	_, err = eng.SetCoin(ctx, sess.ID, "usdt")
	require.NoError(t, err)
	_, err = eng.SetTxID(ctx, sess.ID, "0xabc")
	require.NoError(t, err)

	_, err = eng.VerifyAndComplete(ctx, sess.ID, "")
	assert.ErrorIs(t, err, storefront.ErrNoVerifier)
}

func TestVerifyAndCompleteExpiredSession(t *testing.T) {
	fv := &fakeVerifier{deposits: map[string]*verifier.Deposit{}}
	eng := newEngine(t, 5,
		storefront.WithVerifier(fv),
		storefront.WithSessionTTL(time.Nanosecond),
	)
	ctx := context.Background()

	sess, err := eng.CreateSession(ctx, clientID(t, "100"), 1)
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	_, err = eng.VerifyAndComplete(ctx, sess.ID, "")
	assert.ErrorIs(t, err, storefront.ErrSessionExpired)

	got, err := eng.Session(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusCancelled, got.Status)
}

func TestSetPaymentDetailExpiredSession(t *testing.T) {
	eng := newEngine(t, 5, storefront.WithSessionTTL(time.Nanosecond))
	ctx := context.Background()

	sess, err := eng.CreateSession(ctx, clientID(t, "100"), 1)
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	// Mutating a session past its payment window cancels it.
	_, err = eng.SetCoin(ctx, sess.ID, "usdt")
	assert.ErrorIs(t, err, storefront.ErrSessionExpired)

	got, err := eng.Session(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusCancelled, got.Status)
}

func TestCreateSessionReplacesExpiredPending(t *testing.T) {
	eng := newEngine(t, 5, storefront.WithSessionTTL(time.Nanosecond))
	ctx := context.Background()
	cid := clientID(t, "100")

	stale, err := eng.CreateSession(ctx, cid, 1)
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	// The stale session does not block a fresh checkout.
	fresh, err := eng.CreateSession(ctx, cid, 2)
	require.NoError(t, err)
	assert.NotEqual(t, stale.ID, fresh.ID)

	got, err := eng.Session(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusCancelled, got.Status)
}

func TestCancelSession(t *testing.T) {
	eng := newEngine(t, 5)
	ctx := context.Background()
	cid := clientID(t, "100")

	sess, err := eng.CreateSession(ctx, cid, 1)
	require.NoError(t, err)

	require.NoError(t, eng.CancelSession(ctx, sess.ID))

	got, err := eng.Session(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusCancelled, got.Status)

	// Cancelling frees the one-pending-session slot.
	_, err = eng.CreateSession(ctx, cid, 1)
	assert.NoError(t, err)

	// A second cancel is an invalid state transition.
	assert.ErrorIs(t, eng.CancelSession(ctx, sess.ID), storefront.ErrInvalidState)
}

func TestSetPaymentDetailOnSettledSession(t *testing.T) {
	eng := newEngine(t, 5)
	ctx := context.Background()

	sess, err := eng.CreateSession(ctx, clientID(t, "100"), 1)
	require.NoError(t, err)
	require.NoError(t, eng.CancelSession(ctx, sess.ID))

	_, err = eng.SetCoin(ctx, sess.ID, "usdt")
	assert.ErrorIs(t, err, storefront.ErrInvalidState)
}

func TestManualFulfill(t *testing.T) {
	eng := newEngine(t, 5)
	ctx := context.Background()
	cid := clientID(t, "100")

	items, err := eng.ManualFulfill(ctx, cid, 2, types.USDT(1500), "cashapp")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	stock, err := eng.Stock(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stock)

	rec, err := eng.Client(ctx, cid)
	require.NoError(t, err)
	require.Len(t, rec.Purchases, 1)
	assert.Equal(t, 2, rec.Purchases[0].Quantity)

	report, err := eng.Dashboard(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, types.USDT(1500), report.RevenueByMethod["cashapp"])
}

func TestManualReplace(t *testing.T) {
	eng := newEngine(t, 5)
	ctx := context.Background()
	cid := clientID(t, "100")

	items, err := eng.ManualReplace(ctx, cid, 2)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	rec, err := eng.Client(ctx, cid)
	require.NoError(t, err)
	require.Len(t, rec.Replacements, 1)
	assert.Equal(t, 2, rec.Replacements[0].Quantity)
	assert.Equal(t, 2, rec.TotalReplacements())

	// Replacements are free: no revenue recorded.
	report, err := eng.Dashboard(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, report.Revenue.IsZero())
}

func TestImportExportRoundTrip(t *testing.T) {
	eng := storefront.New(memory.New())
	ctx := context.Background()

	in := strings.NewReader("alpha\n\nbeta\ngamma\n")
	n, err := eng.ImportItems(ctx, in, inventory.StatusAvailable)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	stock, err := eng.Stock(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stock)

	var out bytes.Buffer
	n, err = eng.ExportItems(ctx, &out, inventory.ListOpts{Status: inventory.StatusAvailable})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.ElementsMatch(t, []string{"alpha", "beta", "gamma"}, got)
}

func TestReleaseItem(t *testing.T) {
	eng := newEngine(t, 2)
	ctx := context.Background()

	assert.ErrorIs(t, eng.ReleaseItem(ctx, "cred-a"), storefront.ErrItemNotSold)

	items, err := eng.ManualFulfill(ctx, clientID(t, "100"), 1, types.USDT(1000), "")
	require.NoError(t, err)

	require.NoError(t, eng.ReleaseItem(ctx, items[0].ID))

	stock, err := eng.Stock(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stock)
}

func TestScrapItem(t *testing.T) {
	eng := newEngine(t, 3)
	ctx := context.Background()

	require.NoError(t, eng.SetItemStatus(ctx, "cred-a", inventory.StatusBad))
	require.NoError(t, eng.ScrapItem(ctx, "cred-a"))

	_, err := eng.Item(ctx, "cred-a")
	assert.ErrorIs(t, err, storefront.ErrItemNotFound)

	scrapped, err := eng.ScrappedItems(ctx)
	require.NoError(t, err)
	require.Len(t, scrapped, 1)
	assert.Equal(t, "cred-a", scrapped[0].ID)

	stock, err := eng.Stock(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stock)
}

func TestTopClient(t *testing.T) {
	eng := newEngine(t, 10)
	ctx := context.Background()

	_, err := eng.TopClient(ctx)
	assert.ErrorIs(t, err, storefront.ErrClientNotFound)

	_, err = eng.ManualFulfill(ctx, clientID(t, "100"), 1, types.USDT(1000), "")
	require.NoError(t, err)
	_, err = eng.ManualFulfill(ctx, clientID(t, "200"), 5, types.USDT(4000), "")
	require.NoError(t, err)

	top, err := eng.TopClient(ctx)
	require.NoError(t, err)
	assert.Equal(t, "200", top.ClientID.String())
}

func TestDashboardMargin(t *testing.T) {
	eng := newEngine(t, 10)
	ctx := context.Background()

	_, err := eng.ManualFulfill(ctx, clientID(t, "100"), 3, types.USDT(2400), "binance")
	require.NoError(t, err)

	// No expenses yet: the margin is undefined, not zero.
	report, err := eng.Dashboard(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, ok := report.Margin()
	assert.False(t, ok)

	expense := finance.NewEntry(finance.TypeExpense, "restock", 10, types.USDT(120), types.USDT(1200))
	expense.PaymentMethod = "binance"
	require.NoError(t, eng.AppendEntry(ctx, expense))

	report, err = eng.Dashboard(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)

	margin, ok := report.Margin()
	require.True(t, ok)
	assert.InDelta(t, 100.0, margin, 0.001) // (2400-1200)/1200 * 100

	assert.Equal(t, types.USDT(1200), report.Profit)
	assert.Equal(t, types.USDT(1200), report.ProfitByMethod["binance"])
}

func TestAppendEntryValidation(t *testing.T) {
	eng := newEngine(t, 0)
	ctx := context.Background()

	err := eng.AppendEntry(ctx, &finance.Entry{Type: "guess"})
	assert.ErrorIs(t, err, storefront.ErrInvalidInput)

	err = eng.AppendEntry(ctx, nil)
	assert.ErrorIs(t, err, storefront.ErrInvalidInput)
}

func TestLegitChecksAndLevels(t *testing.T) {
	eng := newEngine(t, 5)
	ctx := context.Background()
	cid := clientID(t, "100")

	require.NoError(t, eng.AddLegitCheck(ctx, cid, 1))
	require.NoError(t, eng.AddLegitCheck(ctx, cid, 2))
	require.NoError(t, eng.AddLevel(ctx, cid, 1))

	rec, err := eng.Client(ctx, cid)
	require.NoError(t, err)
	assert.Equal(t, 3, rec.LegitChecks)
	assert.Equal(t, 1, rec.Level)
}

func TestEngineLifecycle(t *testing.T) {
	eng := storefront.New(memory.New(),
		storefront.WithSweepInterval(10*time.Millisecond),
		storefront.WithSessionTTL(time.Nanosecond),
	)
	ctx := context.Background()

	require.NoError(t, eng.Start(ctx))
	require.NoError(t, eng.SetTier(ctx, 1, types.USDT(1000)))

	sess, err := eng.CreateSession(ctx, clientID(t, "100"), 1)
	require.NoError(t, err)

	// The sweeper cancels the expired session in the background.
	require.Eventually(t, func() bool {
		got, err := eng.Session(ctx, sess.ID)
		return err == nil && got.Status == session.StatusCancelled
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, eng.Stop())
}
