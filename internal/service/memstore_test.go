package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"rental-backend/internal/domain"
	"rental-backend/internal/repository"

	"github.com/shopspring/decimal"
)

// memStore is an in-memory repository.Transactor. WithinTx snapshots every
// table and restores the snapshot when fn fails. Transactions run one at a
// time, so GetForUpdate is a plain read; staleTx below replays reads taken
// before another transaction committed.
type memStore struct {
	mu        sync.Mutex
	nextID    int32
	items     map[int32]domain.Item
	customers map[int32]domain.Customer
	rentals   map[int32]domain.Rental
	lines     map[int32]domain.RentalLine

	// failSetTotal makes SetTotalCharge fail, to exercise rollback.
	failSetTotal bool
}

var errInjected = errors.New("injected failure")

func newMemStore() *memStore {
	return &memStore{
		items:     map[int32]domain.Item{},
		customers: map[int32]domain.Customer{},
		rentals:   map[int32]domain.Rental{},
		lines:     map[int32]domain.RentalLine{},
	}
}

func (s *memStore) id() int32 {
	s.nextID++
	return s.nextID
}

func (s *memStore) Repos() repository.Repos {
	return repository.Repos{
		Items:     memItems{s},
		Customers: memCustomers{s},
		Rentals:   memRentals{s},
		Lines:     memLines{s},
	}
}

func (s *memStore) WithinTx(ctx context.Context, fn func(repos repository.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := cloneMap(s.items)
	customers := cloneMap(s.customers)
	rentals := cloneMap(s.rentals)
	lines := cloneMap(s.lines)
	nextID := s.nextID

	if err := fn(s.Repos()); err != nil {
		s.items, s.customers, s.rentals, s.lines, s.nextID = items, customers, rentals, lines, nextID
		return err
	}
	return nil
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// seed helpers

func (s *memStore) addItem(name, price string, quantity int32) int32 {
	id := s.id()
	s.items[id] = domain.Item{ID: id, Name: name, UnitPrice: decimal.RequireFromString(price), Quantity: quantity}
	return id
}

func (s *memStore) addCustomer(name, phone string) int32 {
	id := s.id()
	s.customers[id] = domain.Customer{ID: id, Name: name, Phone: phone}
	return id
}

func (s *memStore) addRental(customerID int32, status domain.RentalStatus) int32 {
	id := s.id()
	s.rentals[id] = domain.Rental{ID: id, CustomerID: customerID, Status: status, DurationDays: 1,
		EventDate: time.Date(2030, 1, 10, 0, 0, 0, 0, time.UTC)}
	return id
}

func (s *memStore) stock(itemID int32) int32 {
	return s.items[itemID].Quantity
}

func (s *memStore) total(rentalID int32) decimal.NullDecimal {
	return s.rentals[rentalID].TotalCharge
}

func (s *memStore) rentalLines(rentalID int32) []domain.RentalLine {
	var out []domain.RentalLine
	for _, l := range s.lines {
		if l.RentalID == rentalID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type memItems struct{ s *memStore }

func (r memItems) Create(ctx context.Context, item *domain.Item) error {
	item.ID = r.s.id()
	r.s.items[item.ID] = *item
	return nil
}

func (r memItems) GetByID(ctx context.Context, id int32) (*domain.Item, error) {
	it, ok := r.s.items[id]
	if !ok {
		return nil, domain.NewReferenceError("item", id)
	}
	return &it, nil
}

func (r memItems) Update(ctx context.Context, item *domain.Item) error {
	cur, ok := r.s.items[item.ID]
	if !ok {
		return domain.NewReferenceError("item", item.ID)
	}
	item.Quantity = cur.Quantity
	item.PhotoKey = cur.PhotoKey
	r.s.items[item.ID] = *item
	return nil
}

func (r memItems) Delete(ctx context.Context, id int32) error {
	if _, ok := r.s.items[id]; !ok {
		return domain.NewReferenceError("item", id)
	}
	delete(r.s.items, id)
	for lid, l := range r.s.lines {
		if l.ItemID == id {
			delete(r.s.lines, lid)
		}
	}
	return nil
}

func (r memItems) List(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	var out []domain.Item
	for _, it := range r.s.items {
		if filter.InStockOnly && it.Quantity <= 0 {
			continue
		}
		if filter.Size != "" && it.Size != filter.Size {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memItems) SetPhoto(ctx context.Context, id int32, photoKey string) error {
	it, ok := r.s.items[id]
	if !ok {
		return domain.NewReferenceError("item", id)
	}
	it.PhotoKey = photoKey
	r.s.items[id] = it
	return nil
}

func (r memItems) AdjustQuantity(ctx context.Context, id int32, delta int32) (int32, error) {
	it, ok := r.s.items[id]
	if !ok {
		return 0, domain.NewReferenceError("item", id)
	}
	if it.Quantity+delta < 0 {
		return 0, &domain.StockError{ItemID: id, Requested: delta}
	}
	it.Quantity += delta
	r.s.items[id] = it
	return it.Quantity, nil
}

type memCustomers struct{ s *memStore }

func (r memCustomers) Create(ctx context.Context, c *domain.Customer) error {
	for _, existing := range r.s.customers {
		if existing.Phone == c.Phone {
			return domain.ErrPhoneTaken
		}
	}
	c.ID = r.s.id()
	r.s.customers[c.ID] = *c
	return nil
}

func (r memCustomers) GetByID(ctx context.Context, id int32) (*domain.Customer, error) {
	c, ok := r.s.customers[id]
	if !ok {
		return nil, domain.NewReferenceError("customer", id)
	}
	return &c, nil
}

func (r memCustomers) GetByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	for _, c := range r.s.customers {
		if c.Phone == phone {
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memCustomers) Update(ctx context.Context, c *domain.Customer) error {
	if _, ok := r.s.customers[c.ID]; !ok {
		return domain.NewReferenceError("customer", c.ID)
	}
	r.s.customers[c.ID] = *c
	return nil
}

func (r memCustomers) TouchLastLogin(ctx context.Context, id int32, at time.Time) error {
	c, ok := r.s.customers[id]
	if !ok {
		return domain.NewReferenceError("customer", id)
	}
	c.LastLoginOn = &at
	r.s.customers[id] = c
	return nil
}

func (r memCustomers) List(ctx context.Context) ([]domain.Customer, error) {
	var out []domain.Customer
	for _, c := range r.s.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memRentals struct{ s *memStore }

func (r memRentals) Create(ctx context.Context, rental *domain.Rental) error {
	rental.ID = r.s.id()
	r.s.rentals[rental.ID] = *rental
	return nil
}

func (r memRentals) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	rt, ok := r.s.rentals[id]
	if !ok {
		return nil, domain.NewReferenceError("rental", id)
	}
	if c, ok := r.s.customers[rt.CustomerID]; ok {
		rt.Customer = &c
	}
	return &rt, nil
}

func (r memRentals) GetForUpdate(ctx context.Context, id int32) (*domain.Rental, error) {
	return r.GetByID(ctx, id)
}

func (r memRentals) Update(ctx context.Context, rental *domain.Rental) error {
	cur, ok := r.s.rentals[rental.ID]
	if !ok {
		return domain.NewReferenceError("rental", rental.ID)
	}
	cur.EventDate = rental.EventDate
	cur.DurationDays = rental.DurationDays
	cur.Feedback = rental.Feedback
	cur.InstallAddress = rental.InstallAddress
	cur.TeardownDate = rental.TeardownDate
	r.s.rentals[rental.ID] = cur
	return nil
}

func (r memRentals) UpdateStatus(ctx context.Context, id int32, status domain.RentalStatus) error {
	rt, ok := r.s.rentals[id]
	if !ok {
		return domain.NewReferenceError("rental", id)
	}
	rt.Status = status
	r.s.rentals[id] = rt
	return nil
}

func (r memRentals) SetTotalCharge(ctx context.Context, id int32, total decimal.Decimal) error {
	if r.s.failSetTotal {
		return errInjected
	}
	rt, ok := r.s.rentals[id]
	if !ok {
		return domain.NewReferenceError("rental", id)
	}
	rt.TotalCharge = decimal.NewNullDecimal(total.Round(2))
	r.s.rentals[id] = rt
	return nil
}

func (r memRentals) Delete(ctx context.Context, id int32) error {
	if _, ok := r.s.rentals[id]; !ok {
		return domain.NewReferenceError("rental", id)
	}
	delete(r.s.rentals, id)
	for lid, l := range r.s.lines {
		if l.RentalID == id {
			delete(r.s.lines, lid)
		}
	}
	return nil
}

func (r memRentals) List(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, error) {
	var out []domain.Rental
	for _, rt := range r.s.rentals {
		if filter.Status != "" && rt.Status != filter.Status {
			continue
		}
		if filter.CustomerID != 0 && rt.CustomerID != filter.CustomerID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, rt.Status) {
			continue
		}
		out = append(out, rt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func containsStatus(statuses []domain.RentalStatus, s domain.RentalStatus) bool {
	for _, st := range statuses {
		if st == s {
			return true
		}
	}
	return false
}

type memLines struct{ s *memStore }

func (r memLines) Create(ctx context.Context, line *domain.RentalLine) error {
	if _, ok := r.s.rentals[line.RentalID]; !ok {
		return domain.NewReferenceError("rental", line.RentalID)
	}
	line.ID = r.s.id()
	r.s.lines[line.ID] = *line
	return nil
}

func (r memLines) GetByID(ctx context.Context, id int32) (*domain.RentalLine, error) {
	l, ok := r.s.lines[id]
	if !ok {
		return nil, domain.NewReferenceError("rental line", id)
	}
	l.ItemName = r.s.items[l.ItemID].Name
	return &l, nil
}

func (r memLines) GetForUpdate(ctx context.Context, id int32) (*domain.RentalLine, error) {
	return r.GetByID(ctx, id)
}

func (r memLines) Update(ctx context.Context, line *domain.RentalLine) error {
	if _, ok := r.s.lines[line.ID]; !ok {
		return domain.NewReferenceError("rental line", line.ID)
	}
	r.s.lines[line.ID] = *line
	return nil
}

func (r memLines) Delete(ctx context.Context, id int32) error {
	if _, ok := r.s.lines[id]; !ok {
		return domain.NewReferenceError("rental line", id)
	}
	delete(r.s.lines, id)
	return nil
}

func (r memLines) ListByRental(ctx context.Context, rentalID int32) ([]domain.RentalLine, error) {
	return r.s.rentalLines(rentalID), nil
}

func (r memLines) MarkStockReturned(ctx context.Context, id int32, at time.Time) (bool, error) {
	l, ok := r.s.lines[id]
	if !ok || l.StockReturnedOn != nil {
		return false, nil
	}
	l.StockReturnedOn = &at
	r.s.lines[id] = l
	return true, nil
}

func (r memLines) RentalIDsByItem(ctx context.Context, itemID int32) ([]int32, error) {
	seen := map[int32]bool{}
	var ids []int32
	for _, l := range r.s.lines {
		if l.ItemID == itemID && !seen[l.RentalID] {
			seen[l.RentalID] = true
			ids = append(ids, l.RentalID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r memLines) SumSubtotals(ctx context.Context, rentalID int32) (decimal.Decimal, int, error) {
	total := decimal.Zero
	n := 0
	for _, l := range r.s.lines {
		if l.RentalID == rentalID {
			total = total.Add(l.Subtotal)
			n++
		}
	}
	return total.Round(2), n, nil
}

// staleTx runs transactions against memStore but answers rental and line
// reads from a snapshot taken earlier. It stands in for a transaction whose
// reads happened before a concurrent one committed.
type staleTx struct {
	s      *memStore
	rental domain.Rental
	lines  []domain.RentalLine
}

func newStaleTx(s *memStore, rentalID int32) *staleTx {
	lines := s.rentalLines(rentalID)
	return &staleTx{s: s, rental: s.rentals[rentalID], lines: lines}
}

func (t *staleTx) WithinTx(ctx context.Context, fn func(repos repository.Repos) error) error {
	return t.s.WithinTx(ctx, func(repos repository.Repos) error {
		repos.Rentals = staleRentals{RentalRepository: repos.Rentals, t: t}
		repos.Lines = staleLines{RentalLineRepository: repos.Lines, t: t}
		return fn(repos)
	})
}

type staleRentals struct {
	repository.RentalRepository
	t *staleTx
}

func (r staleRentals) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	if id != r.t.rental.ID {
		return r.RentalRepository.GetByID(ctx, id)
	}
	rt := r.t.rental
	return &rt, nil
}

func (r staleRentals) GetForUpdate(ctx context.Context, id int32) (*domain.Rental, error) {
	return r.GetByID(ctx, id)
}

type staleLines struct {
	repository.RentalLineRepository
	t *staleTx
}

func (r staleLines) GetByID(ctx context.Context, id int32) (*domain.RentalLine, error) {
	for _, l := range r.t.lines {
		if l.ID == id {
			return &l, nil
		}
	}
	return r.RentalLineRepository.GetByID(ctx, id)
}

func (r staleLines) GetForUpdate(ctx context.Context, id int32) (*domain.RentalLine, error) {
	return r.GetByID(ctx, id)
}

func (r staleLines) ListByRental(ctx context.Context, rentalID int32) ([]domain.RentalLine, error) {
	if rentalID != r.t.rental.ID {
		return r.RentalLineRepository.ListByRental(ctx, rentalID)
	}
	return append([]domain.RentalLine(nil), r.t.lines...), nil
}
