package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOpenAndRecordSubmission(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	err = store.RecordSubmission(context.Background(), Record{
		SubmittedAt: time.Now(),
		Path:        "native->token->native",
		AmountIn:    "1000000000",
		AmountOut:   "1050000000",
		NetProfit:   "30000000",
		TxHash:      "deadbeef",
	})
	require.NoError(t, err)

	var count int
	row := store.db.QueryRow("SELECT COUNT(*) FROM submissions")
	require.NoError(t, row.Scan(&count))
	require.Equal(t, 1, count)
}

func TestOpenCreatesSchemaIdempotently(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	_, err = store.db.Exec(`CREATE TABLE IF NOT EXISTS submissions (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)
}
