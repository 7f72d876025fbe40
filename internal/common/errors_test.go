package common_test

import (
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ecom-api/internal/common"
)

func TestKindOfClassifiesPostgresErrors(t *testing.T) {
	cases := []struct {
		err  error
		kind common.Kind
	}{
		{&pgconn.PgError{Code: pgerrcode.UniqueViolation}, common.KindConflict},
		{&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, common.KindInvalidArgument},
		{&pgconn.PgError{Code: pgerrcode.CheckViolation}, common.KindInvalidArgument},
		{fmt.Errorf("upsert: %w", &pgconn.PgError{Code: pgerrcode.NumericValueOutOfRange}), common.KindInvalidArgument},
		{pgx.ErrNoRows, common.KindNotFound},
		{&pgconn.PgError{Code: pgerrcode.DeadlockDetected}, common.KindInternal},
	}
	for _, tc := range cases {
		require.Equal(t, tc.kind, common.KindOf(tc.err), "%v", tc.err)
	}
	require.True(t, common.IsOutOfRange(fmt.Errorf("wrap: %w", &pgconn.PgError{Code: pgerrcode.NumericValueOutOfRange})))
	require.False(t, common.IsOutOfRange(&pgconn.PgError{Code: pgerrcode.UniqueViolation}))
}
