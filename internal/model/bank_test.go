package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextSeqIncrements(t *testing.T) {
	bank := NewBankAccount()
	assert.Equal(t, int64(1), bank.NextSeq())
	assert.Equal(t, int64(2), bank.NextSeq())
	assert.Equal(t, int64(2), bank.Seq)
}

func TestSortTransactionsNewestFirst(t *testing.T) {
	at := time.Date(2025, time.February, 5, 12, 0, 0, 0, time.UTC)

	txns := []*Transaction{
		{ID: "b", Timestamp: at},
		{ID: "x", Timestamp: at, Seq: 1},
		{ID: "a", Timestamp: at.Add(time.Minute)},
		{ID: "c", Timestamp: at},
		{ID: "y", Timestamp: at, Seq: 2},
	}
	SortTransactionsNewestFirst(txns)

	got := make([]TransactionID, len(txns))
	for i, txn := range txns {
		got[i] = txn.ID
	}
	// sequenced rows first; unsequenced rows by time, then id
	assert.Equal(t, []TransactionID{"y", "x", "a", "c", "b"}, got)
}
