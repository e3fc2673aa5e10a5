package helpers

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/nimasrn/household-ledger/internal/model"
	"github.com/nimasrn/household-ledger/internal/repository"
	"github.com/nimasrn/household-ledger/pkg/pg"
	"github.com/nimasrn/household-ledger/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func SetupTestDB(t *testing.T) *pg.DB {
	return repository.OpenTestDB(t)
}

// SetupTestRedis starts a miniredis server closed at the end of the test.
func SetupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	adapter, err := redis.NewRedisAdapter(t.Name()+"-"+mr.Addr(), "test:", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	return mr, adapter
}

func CreateTestProfile(t *testing.T, db *pg.DB, id, email string, familyID *string) model.Profile {
	p, err := repository.NewProfileRepository(db).Upsert(context.Background(), model.Profile{
		ID:       id,
		Email:    email,
		FamilyID: familyID,
	})
	require.NoError(t, err)
	return p
}

func CreateTestCreditCardPaymentType(t *testing.T, db *pg.DB, userID string) (model.PaymentType, model.CreditCard) {
	ctx := context.Background()
	lookups := repository.NewLookupRepository(db)
	pt, err := lookups.CreatePaymentType(ctx, model.PaymentType{UserID: userID, Name: "Credit card", IsCreditCard: true})
	require.NoError(t, err)
	card, err := lookups.CreateCreditCard(ctx, model.CreditCard{UserID: userID, Name: "Visa", ClosingDay: 3, DueDay: 10})
	require.NoError(t, err)
	return pt, card
}

func Ptr[T any](v T) *T {
	return &v
}
