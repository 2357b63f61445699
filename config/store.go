package config

import (
	"context"
	"fmt"

	"github.com/AntonStoeckl/lending-ledger-go/ledger/postgresengine"
)

// OpenStore connects with the driver named by s.AdapterType and creates a Store on top of it.
// The returned close function releases the connection pool.
func OpenStore(
	ctx context.Context,
	s Settings,
	options ...postgresengine.Option,
) (*postgresengine.Store, func(), error) {

	options = append([]postgresengine.Option{postgresengine.WithLockTimeout(s.LockTimeout)}, options...)

	switch s.AdapterType {
	case AdapterPGXPool:
		pool, err := PostgresPGXPool(ctx, s.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}

		store, err := postgresengine.NewStoreFromPGXPool(pool, options...)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}

		return store, pool.Close, nil

	case AdapterSQLDB:
		db, err := PostgresSQLDB(ctx, s.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}

		store, err := postgresengine.NewStoreFromSQLDB(db, options...)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		return store, func() { _ = db.Close() }, nil

	case AdapterSQLX:
		db, err := PostgresSQLX(ctx, s.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}

		store, err := postgresengine.NewStoreFromSQLX(db, options...)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		return store, func() { _ = db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown adapter type %q", ErrInvalidSettings, s.AdapterType)
	}
}
