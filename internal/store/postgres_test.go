package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-labor/occwalk/internal/crosswalk"
)

// newMockStore creates a Store backed by pgxmock for unit testing.
func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewFromPool(mock), mock
}

func TestStore_Migrate(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`CREATE SCHEMA IF NOT EXISTS crosswalk`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Load(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO crosswalk\.occ_soc .+ ON CONFLICT \(occ, soc\) DO NOTHING`).
		WithArgs("0010", "11-1011", "0020", "11-1021").
		WillReturnResult(pgxmock.NewResult("INSERT", 2))

	n, err := s.Load(context.Background(), []crosswalk.Row{
		{Occ: "0010", Soc: "11-1011"},
		{Occ: "0020", Soc: "11-1021"},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Load_Replace(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`TRUNCATE TABLE crosswalk\.occ_soc`).
		WillReturnResult(pgxmock.NewResult("TRUNCATE", 0))
	mock.ExpectExec(`INSERT INTO crosswalk\.occ_soc`).
		WithArgs("0010", "11-1011").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	n, err := s.Load(context.Background(), []crosswalk.Row{{Occ: "0010", Soc: "11-1011"}}, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Load_Chunks(t *testing.T) {
	s, mock := newMockStore(t)

	rows := make([]crosswalk.Row, insertChunk+1)
	for i := range rows {
		rows[i] = crosswalk.Row{
			Occ: fmt.Sprintf("%04d", i),
			Soc: "11-1011",
		}
	}

	chunkArgs := make([]interface{}, insertChunk*2)
	for i := range chunkArgs {
		chunkArgs[i] = pgxmock.AnyArg()
	}
	mock.ExpectExec(`INSERT INTO crosswalk\.occ_soc`).
		WithArgs(chunkArgs...).
		WillReturnResult(pgxmock.NewResult("INSERT", int64(insertChunk)))
	mock.ExpectExec(`INSERT INTO crosswalk\.occ_soc`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	n, err := s.Load(context.Background(), rows, false)
	require.NoError(t, err)
	assert.Equal(t, int64(insertChunk+1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Load_Empty(t *testing.T) {
	s, mock := newMockStore(t)

	n, err := s.Load(context.Background(), nil, false)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
