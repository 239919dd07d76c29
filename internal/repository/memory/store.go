// Package memory is an in-process repository.Store. A single mutex guards all
// state and WithTx holds it for the whole unit of work, so transactions are
// fully serialised; a snapshot taken at begin is restored on rollback.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/parking-lot/internal/model"
	"github.com/Shivanand-hulikatti/parking-lot/internal/repository"
)

var _ repository.Store = (*Store)(nil)

// Store keeps areas, vehicles, tariffs and transactions in maps.
type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{st: newState(), now: func() time.Time { return time.Now().UTC() }}
}

// Repos returns repositories that lock the store for every call.
func (s *Store) Repos() repository.Repos {
	return s.bind(false)
}

// WithTx runs fn with exclusive access to the store. When fn fails or panics
// every change it made is discarded.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, r repository.Repos) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	defer func() {
		if p := recover(); p != nil {
			s.st = snapshot
			panic(p)
		}
		if err != nil {
			s.st = snapshot
		}
	}()

	if err = ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, s.bind(true))
}

func (s *Store) bind(inTx bool) repository.Repos {
	h := handle{s: s, inTx: inTx}
	return repository.Repos{
		Areas:        areaRepo{h},
		Vehicles:     vehicleRepo{h},
		Tariffs:      tariffRepo{h},
		Transactions: transactionRepo{h},
	}
}

// handle runs an operation against the state. Inside WithTx the mutex is
// already held.
type handle struct {
	s    *Store
	inTx bool
}

func (h handle) run(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !h.inTx {
		h.s.mu.Lock()
		defer h.s.mu.Unlock()
	}
	return fn(h.s.st)
}

type state struct {
	areas        map[int64]model.ParkingArea
	vehicles     map[int64]model.Vehicle
	tariffs      map[int64]model.TariffRule
	transactions map[int64]model.Transaction

	areaSeq, vehicleSeq, tariffSeq, transactionSeq int64
}

func newState() *state {
	return &state{
		areas:        map[int64]model.ParkingArea{},
		vehicles:     map[int64]model.Vehicle{},
		tariffs:      map[int64]model.TariffRule{},
		transactions: map[int64]model.Transaction{},
	}
}

// clone copies the maps. Rows are values and are replaced, never mutated, so
// a shallow copy is enough.
func (st *state) clone() *state {
	c := *st
	c.areas = maps.Clone(st.areas)
	c.vehicles = maps.Clone(st.vehicles)
	c.tariffs = maps.Clone(st.tariffs)
	c.transactions = maps.Clone(st.transactions)
	return &c
}
