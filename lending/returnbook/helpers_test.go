package returnbook_test

import (
	"errors"
	"strconv"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

func itoa(i int64) string {
	return strconv.FormatInt(i, 10)
}

func joinBeginFailure() error {
	return errors.Join(ledger.ErrStoreUnavailable, ledger.ErrBeginTransactionFailed, errors.New("dial tcp: connection refused"))
}
