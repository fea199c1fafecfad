package memrepo_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/meowmeowcode/orlok"
	memrepo "github.com/meowmeowcode/orlok/memory"
)

func TestTransactionCommit(t *testing.T) {
	store, repo := newTestRepository(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(ctx context.Context) error {
		mallory := testUsers()[0]
		mallory.Name = "Mallory"
		return repo.Add(ctx, mallory)
	})
	require.NoError(t, err)

	count, err := repo.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}

func TestTransactionRollback(t *testing.T) {
	store, repo := newTestRepository(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(ctx context.Context) error {
		mallory := testUsers()[0]
		mallory.Name = "Mallory"
		if err := repo.Add(ctx, mallory); err != nil {
			return err
		}
		if err := repo.Delete(ctx, orlok.Eq("name", orlok.Text("Bob"))); err != nil {
			return err
		}
		return boom
	})
	// The closure's error comes back unchanged.
	assert.ErrorIs(t, err, boom)

	// Every write inside the unit of work was undone.
	got, err := repo.GetMany(ctx, orlok.NewQuery())
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Bob", "Eve"}, names(got))
}

func TestTransactionRollbackOnPanic(t *testing.T) {
	store, repo := newTestRepository(t)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = store.WithTx(ctx, func(ctx context.Context) error {
			mallory := testUsers()[0]
			mallory.Name = "Mallory"
			if err := repo.Add(ctx, mallory); err != nil {
				return err
			}
			panic("boom")
		})
	})

	count, err := repo.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestTransactionNestingRejected(t *testing.T) {
	store, _ := newTestRepository(t)

	err := store.WithTx(context.Background(), func(ctx context.Context) error {
		return store.WithTx(ctx, func(ctx context.Context) error {
			return nil
		})
	})
	assert.True(t, orlok.IsNestedTransactionError(err))
}

func TestTransactionsOnSeparateStoresDoNotNest(t *testing.T) {
	storeA, _ := newTestRepository(t)
	storeB := memrepo.NewStore()

	err := storeA.WithTx(context.Background(), func(ctx context.Context) error {
		return storeB.WithTx(ctx, func(ctx context.Context) error {
			return nil
		})
	})
	assert.NoError(t, err)
}

func TestInTransaction(t *testing.T) {
	store := memrepo.NewStore(memrepo.WithLogger(zaptest.NewLogger(t)))
	ctx := context.Background()

	assert.False(t, store.InTransaction(ctx))
	err := store.WithTx(ctx, func(ctx context.Context) error {
		assert.True(t, store.InTransaction(ctx))
		return nil
	})
	require.NoError(t, err)
}

func TestConcurrentTransactionsSerialize(t *testing.T) {
	store, repo := newTestRepository(t)
	ctx := context.Background()

	// Read-modify-write races would lose increments; the exclusive lock
	// makes each unit of work see the previous one's result.
	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.WithTx(ctx, func(ctx context.Context) error {
				alice, err := repo.GetForUpdate(ctx, orlok.Eq("name", orlok.Text("Alice")))
				if err != nil {
					return err
				}
				alice.Age++
				return repo.Update(ctx, orlok.Eq("id", orlok.ID(alice.ID)), *alice)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.Get(ctx, orlok.Eq("name", orlok.Text("Alice")))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(30+workers), got.Age)
}

func TestStandaloneWritesAreAtomic(t *testing.T) {
	store := memrepo.NewStore()
	repo := memrepo.NewRepository(store, userMapping(),
		memrepo.WithAfterAdd[user](func(u user) []memrepo.Mutation {
			// A hook mutation with a broken filter fails after the
			// primary insert already happened.
			return []memrepo.Mutation{memrepo.Delete{
				Collection: "users",
				Where:      orlok.Gt("name", orlok.Int(1)),
			}}
		}),
	)
	ctx := context.Background()

	err := repo.Add(ctx, testUsers()[0])
	require.Error(t, err)

	// The failed statement was undone as a whole.
	count, err := memrepo.NewRepository(store, userMapping()).CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
