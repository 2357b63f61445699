package main

import (
	"errors"

	"github.com/AntonStoeckl/lending-ledger-go/config"
	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

const (
	exitOK          = 0
	exitFailure     = 1
	exitInvalid     = 2
	exitNotFound    = 3
	exitRejected    = 4
	exitConflict    = 5
	exitUnavailable = 6
)

// exitCode maps an error to the process exit status, by ledger error kind.
func exitCode(err error) int {
	if errors.Is(err, config.ErrInvalidSettings) {
		return exitInvalid
	}

	switch ledger.ErrorKind(err) {
	case ledger.KindNone:
		return exitOK
	case ledger.KindInvalidInput:
		return exitInvalid
	case ledger.KindBookNotFound, ledger.KindMemberNotFound, ledger.KindRecordNotFound, ledger.KindFineNotFound:
		return exitNotFound
	case ledger.KindBookNotAvailable, ledger.KindMemberNotActive, ledger.KindBorrowLimitExceeded,
		ledger.KindAlreadyReturned, ledger.KindFineNotPayable:
		return exitRejected
	case ledger.KindTransientStoreConflict:
		return exitConflict
	case ledger.KindStoreUnavailable:
		return exitUnavailable
	default:
		return exitFailure
	}
}
