package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/Shivanand-hulikatti/parking-lot/internal/model"
)

type areaRepo struct{ h handle }

func (r areaRepo) Create(ctx context.Context, area *model.ParkingArea) error {
	return r.h.run(ctx, func(st *state) error {
		st.areaSeq++
		area.ID = st.areaSeq
		area.CreatedAt = r.h.s.now()
		st.areas[area.ID] = *area
		return nil
	})
}

func (r areaRepo) GetByID(ctx context.Context, id int64) (*model.ParkingArea, error) {
	var out model.ParkingArea
	err := r.h.run(ctx, func(st *state) error {
		a, ok := st.areas[id]
		if !ok {
			return model.ErrAreaNotFound
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetForUpdate is GetByID: WithTx already holds the store lock.
func (r areaRepo) GetForUpdate(ctx context.Context, id int64) (*model.ParkingArea, error) {
	return r.GetByID(ctx, id)
}

func (r areaRepo) List(ctx context.Context) ([]model.ParkingArea, error) {
	var out []model.ParkingArea
	err := r.h.run(ctx, func(st *state) error {
		out = sortedByID(st.areas, func(a model.ParkingArea) int64 { return a.ID })
		return nil
	})
	return out, err
}

func (r areaRepo) Update(ctx context.Context, area *model.ParkingArea) error {
	return r.h.run(ctx, func(st *state) error {
		cur, ok := st.areas[area.ID]
		if !ok {
			return model.ErrAreaNotFound
		}
		area.CreatedAt = cur.CreatedAt
		st.areas[area.ID] = *area
		return nil
	})
}

type vehicleRepo struct{ h handle }

func (r vehicleRepo) Create(ctx context.Context, v *model.Vehicle) error {
	return r.h.run(ctx, func(st *state) error {
		for _, other := range st.vehicles {
			if other.Plate == v.Plate {
				return model.ErrDuplicatePlate
			}
		}
		st.vehicleSeq++
		v.ID = st.vehicleSeq
		v.CreatedAt = r.h.s.now()
		st.vehicles[v.ID] = *v
		return nil
	})
}

func (r vehicleRepo) GetByID(ctx context.Context, id int64) (*model.Vehicle, error) {
	return r.find(ctx, func(v model.Vehicle) bool { return v.ID == id })
}

func (r vehicleRepo) GetForUpdate(ctx context.Context, id int64) (*model.Vehicle, error) {
	return r.GetByID(ctx, id)
}

func (r vehicleRepo) GetByPlate(ctx context.Context, plate string) (*model.Vehicle, error) {
	return r.find(ctx, func(v model.Vehicle) bool { return v.Plate == plate })
}

func (r vehicleRepo) find(ctx context.Context, match func(model.Vehicle) bool) (*model.Vehicle, error) {
	var out *model.Vehicle
	err := r.h.run(ctx, func(st *state) error {
		for _, v := range st.vehicles {
			if match(v) {
				out = &v
				return nil
			}
		}
		return model.ErrVehicleNotFound
	})
	return out, err
}

type tariffRepo struct{ h handle }

// Create enforces the same uniqueness as the partial index on active rules.
func (r tariffRepo) Create(ctx context.Context, rule *model.TariffRule) error {
	return r.h.run(ctx, func(st *state) error {
		if rule.Active && st.activeTupleTaken(*rule) {
			return model.ErrAmbiguousTariff
		}
		st.tariffSeq++
		rule.ID = st.tariffSeq
		rule.CreatedAt = r.h.s.now()
		st.tariffs[rule.ID] = *rule
		return nil
	})
}

func (r tariffRepo) GetByID(ctx context.Context, id int64) (*model.TariffRule, error) {
	var out model.TariffRule
	err := r.h.run(ctx, func(st *state) error {
		rule, ok := st.tariffs[id]
		if !ok {
			return model.ErrTariffNotFound
		}
		out = rule
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r tariffRepo) ListByArea(ctx context.Context, areaID int64) ([]model.TariffRule, error) {
	return r.list(ctx, func(t model.TariffRule) bool { return t.AreaID == areaID })
}

func (r tariffRepo) ListActive(ctx context.Context, areaID int64, class model.VehicleClass) ([]model.TariffRule, error) {
	return r.list(ctx, func(t model.TariffRule) bool {
		return t.AreaID == areaID && t.VehicleClass == class && t.Active
	})
}

func (r tariffRepo) list(ctx context.Context, match func(model.TariffRule) bool) ([]model.TariffRule, error) {
	var out []model.TariffRule
	err := r.h.run(ctx, func(st *state) error {
		out = slices.DeleteFunc(
			sortedByID(st.tariffs, func(t model.TariffRule) int64 { return t.ID }),
			func(t model.TariffRule) bool { return !match(t) },
		)
		return nil
	})
	return out, err
}

func (r tariffRepo) SetActive(ctx context.Context, id int64, active bool) error {
	return r.h.run(ctx, func(st *state) error {
		rule, ok := st.tariffs[id]
		if !ok {
			return model.ErrTariffNotFound
		}
		if active && !rule.Active && st.activeTupleTaken(rule) {
			return model.ErrAmbiguousTariff
		}
		rule.Active = active
		st.tariffs[id] = rule
		return nil
	})
}

func (st *state) activeTupleTaken(rule model.TariffRule) bool {
	for _, other := range st.tariffs {
		if other.ID == rule.ID || !other.Active {
			continue
		}
		if other.AreaID == rule.AreaID && other.VehicleClass == rule.VehicleClass &&
			other.RuleType == rule.RuleType && sameWindow(other, rule) {
			return true
		}
	}
	return false
}

func sameWindow(a, b model.TariffRule) bool {
	if a.HasWindow() != b.HasWindow() {
		return false
	}
	return !a.HasWindow() || (*a.ValidFrom == *b.ValidFrom && *a.ValidTo == *b.ValidTo)
}

type transactionRepo struct{ h handle }

// Create rejects a second ongoing transaction for the same vehicle, like the
// partial unique index does in PostgreSQL.
func (r transactionRepo) Create(ctx context.Context, tr *model.Transaction) error {
	return r.h.run(ctx, func(st *state) error {
		for _, other := range st.transactions {
			if other.VehicleID == tr.VehicleID && other.IsOngoing() {
				return model.ErrVehicleAlreadyParked
			}
		}
		st.transactionSeq++
		tr.ID = st.transactionSeq
		st.transactions[tr.ID] = *tr
		return nil
	})
}

func (r transactionRepo) GetByID(ctx context.Context, id int64) (*model.Transaction, error) {
	var out model.Transaction
	err := r.h.run(ctx, func(st *state) error {
		tr, ok := st.transactions[id]
		if !ok {
			return model.ErrTransactionNotFound
		}
		out = tr
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r transactionRepo) HasOngoing(ctx context.Context, vehicleID int64) (bool, error) {
	var found bool
	err := r.h.run(ctx, func(st *state) error {
		for _, tr := range st.transactions {
			if tr.VehicleID == vehicleID && tr.IsOngoing() {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

func (r transactionRepo) CountOngoing(ctx context.Context, areaID int64) (int, error) {
	var n int
	err := r.h.run(ctx, func(st *state) error {
		for _, tr := range st.transactions {
			if tr.AreaID == areaID && tr.IsOngoing() {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r transactionRepo) Complete(ctx context.Context, tr *model.Transaction) error {
	return r.h.run(ctx, func(st *state) error {
		cur, ok := st.transactions[tr.ID]
		if !ok {
			return model.ErrTransactionNotFound
		}
		if !cur.IsOngoing() {
			return model.ErrAlreadyCompleted
		}
		cur.Status = model.StatusCompleted
		cur.ExitTime = tr.ExitTime
		cur.DurationMinutes = tr.DurationMinutes
		cur.TotalFee = tr.TotalFee
		st.transactions[tr.ID] = cur
		return nil
	})
}

func (r transactionRepo) List(ctx context.Context, areaID int64, status model.Status) ([]model.Transaction, error) {
	var out []model.Transaction
	err := r.h.run(ctx, func(st *state) error {
		out = []model.Transaction{}
		for _, tr := range st.transactions {
			if tr.AreaID == areaID && (status == "" || tr.Status == status) {
				out = append(out, tr)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b model.Transaction) int {
		if c := b.EntryTime.Compare(a.EntryTime); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, err
}

func (r transactionRepo) Delete(ctx context.Context, id int64) error {
	return r.h.run(ctx, func(st *state) error {
		if _, ok := st.transactions[id]; !ok {
			return model.ErrTransactionNotFound
		}
		delete(st.transactions, id)
		return nil
	})
}

func sortedByID[T any](m map[int64]T, id func(T) int64) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b T) int { return cmp.Compare(id(a), id(b)) })
	return out
}
