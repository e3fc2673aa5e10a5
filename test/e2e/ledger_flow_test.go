package e2e

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nimasrn/household-ledger/internal/handlers"
	"github.com/nimasrn/household-ledger/internal/locker"
	"github.com/nimasrn/household-ledger/internal/model"
	"github.com/nimasrn/household-ledger/internal/recurrence"
	"github.com/nimasrn/household-ledger/internal/repository"
	"github.com/nimasrn/household-ledger/internal/services"
	xhttp "github.com/nimasrn/household-ledger/pkg/http"
	"github.com/nimasrn/household-ledger/pkg/pg"
	"github.com/nimasrn/household-ledger/test/helpers"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

type TestEnvironment struct {
	DB               *pg.DB
	Payables         *repository.PayableRepository
	CardTransactions *repository.CardTransactionRepository
	Obligations      *services.ObligationService
	client           *fasthttp.Client
}

// SetupTestEnvironment wires the api as cmd/api does, on sqlite and
// miniredis, served over an in-memory listener.
func SetupTestEnvironment(t *testing.T, opts ...services.Option) *TestEnvironment {
	db := helpers.SetupTestDB(t)
	_, adapter := helpers.SetupTestRedis(t)

	payables := repository.NewPayableRepository(db)
	receivables := repository.NewReceivableRepository(db)
	cardTx := repository.NewCardTransactionRepository(db)
	lookups := repository.NewLookupRepository(db)
	family := services.NewFamilyService(repository.NewProfileRepository(db))

	opts = append([]services.Option{services.WithLocker(locker.NewRedisLocker(adapter, time.Second*5))}, opts...)
	obligations := services.NewObligationService(services.Stores{
		Payables:         payables,
		Receivables:      receivables,
		CardTransactions: cardTx,
		Linked:           cardTx,
	}, lookups, family, db, opts...)

	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Router = xhttp.CreateDefaultRouter()
	s.Use(xhttp.RecoverMiddleware)
	g := s.Router.Group("/api/v1")
	handlers.RegisterHealthRoutes(g, handlers.NewHealthHandler(db))
	handlers.RegisterObligationRoutes(g, handlers.NewObligationHandler(obligations))
	handlers.RegisterPiggyBankRoutes(g, handlers.NewPiggyBankHandler(services.NewPiggyBankService(repository.NewPiggyBankRepository(db), family, db)))
	handlers.RegisterLookupRoutes(g, handlers.NewLookupHandler(services.NewLookupService(lookups, family)))
	s.DoRouting()

	ln := fasthttputil.NewInmemoryListener()
	go func() { _ = s.Server.Serve(ln) }()
	t.Cleanup(func() {
		_ = s.Server.Shutdown()
		_ = ln.Close()
	})

	return &TestEnvironment{
		DB:               db,
		Payables:         payables,
		CardTransactions: cardTx,
		Obligations:      obligations,
		client: &fasthttp.Client{
			Dial: func(string) (net.Conn, error) { return ln.Dial() },
		},
	}
}

func (env *TestEnvironment) do(t *testing.T, userID, method, path string, body any) (int, []byte) {
	t.Helper()
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI("http://ledger.test/api/v1" + path)
	req.Header.SetMethod(method)
	req.Header.Set(handlers.UserHeader, userID)
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		req.Header.SetContentType("application/json")
		req.SetBody(b)
	}
	require.NoError(t, env.client.DoTimeout(req, resp, 5*time.Second))
	return resp.StatusCode(), append([]byte(nil), resp.Body()...)
}

type monthView struct {
	Month string             `json:"month"`
	Items []model.Obligation `json:"items"`
}

func (env *TestEnvironment) month(t *testing.T, userID string, kind model.Kind, month string) monthView {
	t.Helper()
	status, body := env.do(t, userID, "GET", fmt.Sprintf("/obligations/%s?month=%s", kind, month), nil)
	require.Equal(t, 200, status, string(body))
	var view monthView
	require.NoError(t, json.Unmarshal(body, &view))
	return view
}

func (env *TestEnvironment) create(t *testing.T, userID string, kind model.Kind, body map[string]any) []model.Obligation {
	t.Helper()
	status, resp := env.do(t, userID, "POST", "/obligations/"+string(kind), body)
	require.Equal(t, 201, status, string(resp))
	var created struct {
		Items []model.Obligation `json:"items"`
	}
	require.NoError(t, json.Unmarshal(resp, &created))
	return created.Items
}

func TestE2E_FixedTemplateConfirmation(t *testing.T) {
	env := SetupTestEnvironment(t)
	user := uuid.NewString()

	// 1. a rent template due on the 31st
	created := env.create(t, user, model.KindPayable, map[string]any{
		"description": "Rent",
		"amount":      "1200.00",
		"date":        "2024-01-31",
		"is_fixed":    true,
	})
	require.Len(t, created, 1)
	templateID := created[0].ID

	// 2. February shows a virtual occurrence clamped to the last day
	feb := env.month(t, user, model.KindPayable, "2024-02")
	require.Len(t, feb.Items, 1)
	virtual := feb.Items[0]
	assert.Equal(t, "temp-"+templateID+"-2024-02", virtual.ID)
	assert.True(t, virtual.GeneratedFixedInstance)
	assert.Equal(t, "2024-02-29", virtual.AnchorDate.Format(time.DateOnly))
	assert.False(t, virtual.Settled)

	// 3. virtual rows cannot be edited, reversed or deleted
	status, _ := env.do(t, user, "PUT", "/obligations/payable/"+virtual.ID, map[string]any{"description": "x"})
	assert.Equal(t, 409, status)
	status, _ = env.do(t, user, "POST", "/obligations/payable/"+virtual.ID+"/reverse", nil)
	assert.Equal(t, 409, status)
	status, _ = env.do(t, user, "DELETE", "/obligations/payable/"+virtual.ID, nil)
	assert.Equal(t, 409, status)

	// 4. confirming materializes a settled row
	status, body := env.do(t, user, "POST", "/obligations/payable/"+virtual.ID+"/confirm", map[string]string{"date": "2024-02-28"})
	require.Equal(t, 201, status, string(body))
	var result model.ConfirmResult
	require.NoError(t, json.Unmarshal(body, &result))
	require.True(t, result.Materialized)
	require.NotNil(t, result.Persisted)
	materialized := *result.Persisted
	assert.NotEqual(t, templateID, materialized.ID)
	assert.True(t, materialized.Settled)
	assert.Equal(t, "2024-02-28", materialized.SettledDate.Format(time.DateOnly))
	assert.Equal(t, "2024-02-29", materialized.AnchorDate.Format(time.DateOnly))
	require.NotNil(t, materialized.OriginalFixedID)
	assert.Equal(t, templateID, *materialized.OriginalFixedID)
	assert.False(t, materialized.IsFixed)

	// the response uses the bill's own column names
	var wire struct {
		Persisted map[string]any `json:"persisted"`
	}
	require.NoError(t, json.Unmarshal(body, &wire))
	assert.Equal(t, "2024-02-29", wire.Persisted["due_date"])
	assert.Equal(t, true, wire.Persisted["paid"])
	assert.Equal(t, "2024-02-28", wire.Persisted["paid_date"])
	assert.Equal(t, templateID, wire.Persisted["original_fixed_account_id"])

	// 5. February now holds the real row and no duplicate
	feb = env.month(t, user, model.KindPayable, "2024-02")
	require.Len(t, feb.Items, 1)
	assert.Equal(t, materialized.ID, feb.Items[0].ID)
	assert.False(t, feb.Items[0].GeneratedFixedInstance)
	assert.True(t, feb.Items[0].Settled)

	// 6. the same virtual id cannot be confirmed twice
	status, _ = env.do(t, user, "POST", "/obligations/payable/"+virtual.ID+"/confirm", map[string]string{"date": "2024-02-28"})
	assert.Equal(t, 409, status)

	// 7. materializations are not editable on their own
	status, _ = env.do(t, user, "PUT", "/obligations/payable/"+materialized.ID, map[string]any{"description": "x"})
	assert.Equal(t, 409, status)

	// 8. other months keep projecting; April clamps to the 30th
	apr := env.month(t, user, model.KindPayable, "2024-04")
	require.Len(t, apr.Items, 1)
	assert.Equal(t, "2024-04-30", apr.Items[0].AnchorDate.Format(time.DateOnly))
	assert.True(t, apr.Items[0].GeneratedFixedInstance)

	// 9. nothing before the template's first month
	dec := env.month(t, user, model.KindPayable, "2023-12")
	assert.Empty(t, dec.Items)

	// 10. the summary counts the settled materialization
	status, body = env.do(t, user, "GET", "/obligations/payable/summary?month=2024-02", nil)
	require.Equal(t, 200, status)
	var summary recurrence.Summary
	require.NoError(t, json.Unmarshal(body, &summary))
	assert.Equal(t, 1, summary.Count)
	assert.Equal(t, 1, summary.SettledCount)
	assert.Equal(t, 0, summary.VirtualCount)
	assert.True(t, summary.Outstanding.IsZero())

	// 11. reversing the materialization brings it back as an unpaid real row
	status, _ = env.do(t, user, "POST", "/obligations/payable/"+materialized.ID+"/reverse", nil)
	require.Equal(t, 204, status)
	feb = env.month(t, user, model.KindPayable, "2024-02")
	require.Len(t, feb.Items, 1)
	assert.Equal(t, materialized.ID, feb.Items[0].ID)
	assert.False(t, feb.Items[0].Settled)
}

func TestE2E_HomeMonthConfirmation(t *testing.T) {
	env := SetupTestEnvironment(t)
	user := uuid.NewString()

	created := env.create(t, user, model.KindReceivable, map[string]any{
		"description": "Salary",
		"amount":      "5000",
		"date":        "2024-03-05",
		"is_fixed":    true,
	})
	templateID := created[0].ID

	mar := env.month(t, user, model.KindReceivable, "2024-03")
	require.Len(t, mar.Items, 1)
	assert.Equal(t, templateID, mar.Items[0].ID)

	status, body := env.do(t, user, "POST", "/obligations/receivable/"+templateID+"/confirm", map[string]string{"date": "2024-03-05"})
	require.Equal(t, 201, status, string(body))

	mar = env.month(t, user, model.KindReceivable, "2024-03")
	require.Len(t, mar.Items, 1)
	assert.NotEqual(t, templateID, mar.Items[0].ID)
	assert.True(t, mar.Items[0].Settled)

	// the template keeps projecting into later months
	apr := env.month(t, user, model.KindReceivable, "2024-04")
	require.Len(t, apr.Items, 1)
	assert.Equal(t, "temp-"+templateID+"-2024-04", apr.Items[0].ID)
}

func TestE2E_InstallmentSeries(t *testing.T) {
	env := SetupTestEnvironment(t)
	user := uuid.NewString()

	created := env.create(t, user, model.KindPayable, map[string]any{
		"description":  "Laptop",
		"amount":       "250.00",
		"date":         "2024-01-31",
		"installments": 3,
	})
	require.Len(t, created, 3)
	assert.Equal(t, "2024-01-31", created[0].AnchorDate.Format(time.DateOnly))
	assert.Equal(t, "2024-02-29", created[1].AnchorDate.Format(time.DateOnly))
	assert.Equal(t, "2024-03-31", created[2].AnchorDate.Format(time.DateOnly))

	feb := env.month(t, user, model.KindPayable, "2024-02")
	require.Len(t, feb.Items, 1)
	assert.Equal(t, 2, feb.Items[0].CurrentInstallment)
	assert.Equal(t, 3, feb.Items[0].Installments)
	assert.False(t, feb.Items[0].GeneratedFixedInstance)

	// children are plain rows: editable and settled in place
	status, body := env.do(t, user, "POST", "/obligations/payable/"+feb.Items[0].ID+"/confirm", map[string]string{"date": "2024-02-20"})
	require.Equal(t, 200, status, string(body))
	status, _ = env.do(t, user, "PUT", "/obligations/payable/"+feb.Items[0].ID, map[string]any{"description": "Laptop 2/3"})
	assert.Equal(t, 200, status)

	apr := env.month(t, user, model.KindPayable, "2024-04")
	assert.Empty(t, apr.Items)
}

func TestE2E_CardPaymentLifecycle(t *testing.T) {
	env := SetupTestEnvironment(t)
	user := uuid.NewString()
	pt, card := helpers.CreateTestCreditCardPaymentType(t, env.DB, user)
	ctx := context.Background()

	// a bill paid by card must name the card
	status, _ := env.do(t, user, "POST", "/obligations/payable", map[string]any{
		"description":     "Internet",
		"amount":          "99.90",
		"date":            "2024-02-10",
		"payment_type_id": pt.ID,
	})
	require.Equal(t, 400, status)

	created := env.create(t, user, model.KindPayable, map[string]any{
		"description":     "Internet",
		"amount":          "99.90",
		"date":            "2024-02-10",
		"payment_type_id": pt.ID,
		"card_id":         card.ID,
	})
	bill := created[0]

	status, body := env.do(t, user, "POST", "/obligations/payable/"+bill.ID+"/confirm", map[string]string{"date": "2024-02-11"})
	require.Equal(t, 200, status, string(body))
	var result model.ConfirmResult
	require.NoError(t, json.Unmarshal(body, &result))
	require.NotNil(t, result.LinkedTransaction)
	assert.Equal(t, card.ID, result.LinkedTransaction.CardID)
	assert.Equal(t, bill.ID, result.LinkedTransaction.PayableID)
	assert.Empty(t, result.LinkError)

	linked, err := env.CardTransactions.FindByPayableID(ctx, bill.ID)
	require.NoError(t, err)
	assert.True(t, linked.Amount.Equal(bill.Amount))
	assert.Equal(t, "2024-02-11", linked.PurchaseDate.Format(time.DateOnly))

	// confirming a settled bill again is rejected
	status, _ = env.do(t, user, "POST", "/obligations/payable/"+bill.ID+"/confirm", map[string]string{"date": "2024-02-12"})
	assert.Equal(t, 409, status)

	// the card charge only changes through its bill
	status, body = env.do(t, user, "DELETE", "/obligations/card_transaction/"+linked.ID, nil)
	assert.Equal(t, 409, status, string(body))
	status, _ = env.do(t, user, "PUT", "/obligations/card_transaction/"+linked.ID, map[string]any{"amount": "1.00"})
	assert.Equal(t, 409, status)
	status, _ = env.do(t, user, "PUT", "/obligations/payable/"+bill.ID, map[string]any{"amount": "120.00"})
	assert.Equal(t, 409, status)
	stillLinked, err := env.CardTransactions.FindByPayableID(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, linked.ID, stillLinked.ID)
	assert.True(t, stillLinked.Amount.Equal(bill.Amount))
	paid, err := env.Payables.Get(ctx, bill.ID)
	require.NoError(t, err)
	assert.True(t, paid.Settled)

	// reversal removes the card charge
	status, _ = env.do(t, user, "POST", "/obligations/payable/"+bill.ID+"/reverse", nil)
	require.Equal(t, 204, status)
	_, err = env.CardTransactions.FindByPayableID(ctx, bill.ID)
	assert.ErrorIs(t, err, repository.ErrCardTransactionNotFound)
	stored, err := env.Payables.Get(ctx, bill.ID)
	require.NoError(t, err)
	assert.False(t, stored.Settled)
	assert.Nil(t, stored.SettledDate)

	// reversing an unsettled bill is a conflict
	status, _ = env.do(t, user, "POST", "/obligations/payable/"+bill.ID+"/reverse", nil)
	assert.Equal(t, 409, status)

	// once reversed the amount can change again
	status, body = env.do(t, user, "PUT", "/obligations/payable/"+bill.ID, map[string]any{"amount": "120.00"})
	require.Equal(t, 200, status, string(body))

	// delete takes the card charge with it
	status, _ = env.do(t, user, "POST", "/obligations/payable/"+bill.ID+"/confirm", map[string]string{"date": "2024-02-13"})
	require.Equal(t, 200, status)
	status, _ = env.do(t, user, "DELETE", "/obligations/payable/"+bill.ID, nil)
	require.Equal(t, 204, status)
	_, err = env.CardTransactions.FindByPayableID(ctx, bill.ID)
	assert.ErrorIs(t, err, repository.ErrCardTransactionNotFound)
	_, err = env.Payables.Get(ctx, bill.ID)
	assert.ErrorIs(t, err, repository.ErrObligationNotFound)
}

func TestE2E_FamilyScope(t *testing.T) {
	env := SetupTestEnvironment(t)
	familyID := uuid.NewString()
	alice, bob, carol := uuid.NewString(), uuid.NewString(), uuid.NewString()
	helpers.CreateTestProfile(t, env.DB, alice, "alice@example.com", helpers.Ptr(familyID))
	helpers.CreateTestProfile(t, env.DB, bob, "bob@example.com", helpers.Ptr(familyID))
	helpers.CreateTestProfile(t, env.DB, carol, "carol@example.com", nil)

	created := env.create(t, bob, model.KindPayable, map[string]any{
		"description": "Groceries",
		"amount":      "80",
		"date":        "2024-02-03",
	})

	assert.Len(t, env.month(t, alice, model.KindPayable, "2024-02").Items, 1)
	assert.Empty(t, env.month(t, carol, model.KindPayable, "2024-02").Items)

	// outside the family the row does not exist
	status, _ := env.do(t, carol, "DELETE", "/obligations/payable/"+created[0].ID, nil)
	assert.Equal(t, 404, status)
	status, _ = env.do(t, alice, "POST", "/obligations/payable/"+created[0].ID+"/confirm", map[string]string{"date": "2024-02-04"})
	assert.Equal(t, 200, status)

	// the piggy bank is shared the same way
	status, _ = env.do(t, bob, "POST", "/piggy-bank", map[string]any{"amount": "100", "description": "savings"})
	require.Equal(t, 201, status)
	status, _ = env.do(t, alice, "POST", "/piggy-bank/withdraw", map[string]any{"amount": "150"})
	assert.Equal(t, 409, status)
	status, _ = env.do(t, alice, "POST", "/piggy-bank/withdraw", map[string]any{"amount": "40"})
	assert.Equal(t, 201, status)

	status, body := env.do(t, bob, "GET", "/piggy-bank/balance", nil)
	require.Equal(t, 200, status)
	var balance map[string]decimal.Decimal
	require.NoError(t, json.Unmarshal(body, &balance))
	assert.True(t, decimal.NewFromInt(60).Equal(balance["balance"]), balance["balance"].String())
}

func TestE2E_ConcurrentConfirmation(t *testing.T) {
	env := SetupTestEnvironment(t)
	ctx := context.Background()
	user := uuid.NewString()

	created, err := env.Obligations.Create(ctx, model.ObligationCreateRequest{
		Kind:        model.KindPayable,
		UserID:      user,
		Description: "Gym",
		Amount:      decimal.RequireFromString("45"),
		AnchorDate:  time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		IsFixed:     true,
	})
	require.NoError(t, err)
	virtualID := recurrence.VirtualID(created[0].ID, recurrence.YearMonth{Year: 2024, Month: time.March})

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			occ, err := env.Obligations.Resolve(ctx, model.KindPayable, user, virtualID)
			if err != nil {
				return
			}
			_, err = env.Obligations.Confirm(ctx, occ, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC))
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			assert.True(t,
				errors.Is(err, services.ErrConfirmInProgress) || errors.Is(err, services.ErrAlreadyMaterialized),
				"unexpected error: %v", err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	mar, err := env.Obligations.Month(ctx, model.KindPayable, user, recurrence.YearMonth{Year: 2024, Month: time.March})
	require.NoError(t, err)
	require.Len(t, mar, 1)
	_, isReal := mar[0].(recurrence.Real)
	assert.True(t, isReal)
}

func TestE2E_Health(t *testing.T) {
	env := SetupTestEnvironment(t)
	status, body := env.do(t, "", "GET", "/health", nil)
	assert.Equal(t, 200, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}
