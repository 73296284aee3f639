package redis

import (
	"fmt"

	"github.com/dojosmash/dojo-smash/internal/model"
)

// Key prefix for all ledger data
const keyPrefix = "dojo"

// versionKey is bumped by every committed Update. Transactions WATCH it, so any
// concurrent commit forces a retry.
func versionKey() string {
	return fmt.Sprintf("%s:version", keyPrefix)
}

// Key generation functions for each entity type

// userKey returns the Redis key for a User
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:usuario:%s", keyPrefix, id)
}

// usersIndexKey returns the Redis key for the SET of user ids
func usersIndexKey() string {
	return fmt.Sprintf("%s:idx:usuarios", keyPrefix)
}

// userNameIndexKey returns the Redis key for the name -> user_id index
func userNameIndexKey(name string) string {
	return fmt.Sprintf("%s:idx:nombre:%s", keyPrefix, name)
}

// registrationKey returns the Redis key for a WeeklyRegistration
func registrationKey(id model.RegistrationID) string {
	return fmt.Sprintf("%s:registro:%s", keyPrefix, id)
}

// registrationsIndexKey returns the Redis key for the SET of registration ids
func registrationsIndexKey() string {
	return fmt.Sprintf("%s:idx:registros", keyPrefix)
}

// wagerKey returns the Redis key for a Wager
func wagerKey(id model.WagerID) string {
	return fmt.Sprintf("%s:apuesta:%s", keyPrefix, id)
}

// wagersIndexKey returns the Redis key for the SET of wager ids
func wagersIndexKey() string {
	return fmt.Sprintf("%s:idx:apuestas", keyPrefix)
}

// bankKey returns the Redis key for the bank account
func bankKey() string {
	return fmt.Sprintf("%s:banco", keyPrefix)
}

// transactionKey returns the Redis key for a bank Transaction
func transactionKey(id model.TransactionID) string {
	return fmt.Sprintf("%s:transaccion:%s", keyPrefix, id)
}

// transactionsIndexKey returns the Redis key for the SET of transaction ids
func transactionsIndexKey() string {
	return fmt.Sprintf("%s:idx:transacciones", keyPrefix)
}

// highscoreKey returns the Redis key for one user's best score in a game
func highscoreKey(game model.Game, userID model.UserID) string {
	return fmt.Sprintf("%s:highscore:%s:%s", keyPrefix, game, userID)
}

// highscoresIndexKey returns the Redis key for the SET of user ids with a score in game
func highscoresIndexKey(game model.Game) string {
	return fmt.Sprintf("%s:idx:highscores:%s", keyPrefix, game)
}

// rifaKey returns the Redis key for a RifaRecord
func rifaKey(id model.RifaID) string {
	return fmt.Sprintf("%s:rifa:%s", keyPrefix, id)
}

// rifasIndexKey returns the Redis key for the SET of rifa ids
func rifasIndexKey() string {
	return fmt.Sprintf("%s:idx:rifas", keyPrefix)
}
