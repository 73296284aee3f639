package model

import (
	"sort"
	"time"
)

// BankAccountID is the key of the singleton bank account
const BankAccountID = "banco"

// BankAccount is the single running total of pooled money
type BankAccount struct {
	ID        string    `bson:"_id"`
	Total     float64   `bson:"total"`
	UpdatedAt time.Time `bson:"updatedAt"`
	// Seq is the sequence number of the last transaction
	Seq int64 `bson:"seq"`
}

// NewBankAccount returns an empty account
func NewBankAccount() *BankAccount {
	return &BankAccount{ID: BankAccountID}
}

// Deposit adds amount to the total
func (b *BankAccount) Deposit(amount float64, at time.Time) {
	b.Total = AddExact(b.Total, amount)
	b.UpdatedAt = at
}

// NextSeq reserves the next transaction sequence number. Callers must save the
// account in the same storage transaction as the Transaction that uses it.
func (b *BankAccount) NextSeq() int64 {
	b.Seq++
	return b.Seq
}

// TransactionID identifies a bank transaction
type TransactionID string

// TransactionKind is the direction of a bank transaction
type TransactionKind string

const (
	TransactionPayment    TransactionKind = "pago"
	TransactionWithdrawal TransactionKind = "retiro" // kept for data compatibility, no write path
)

// Transaction is an append-only bank movement
type Transaction struct {
	ID          TransactionID   `bson:"_id"`
	UserID      UserID          `bson:"userId"`
	Amount      float64         `bson:"amount"`
	Kind        TransactionKind `bson:"kind"`
	Description string          `bson:"description,omitempty"`
	Timestamp   time.Time       `bson:"timestamp"`
	Seq         int64           `bson:"seq"`
}

// SortTransactionsNewestFirst orders by Seq descending, then Timestamp and id
// descending for rows written without a sequence
func SortTransactionsNewestFirst(txns []*Transaction) {
	sort.Slice(txns, func(i, j int) bool {
		if txns[i].Seq != txns[j].Seq {
			return txns[i].Seq > txns[j].Seq
		}
		if !txns[i].Timestamp.Equal(txns[j].Timestamp) {
			return txns[i].Timestamp.After(txns[j].Timestamp)
		}
		return txns[i].ID > txns[j].ID
	})
}
