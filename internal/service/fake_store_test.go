package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/repository"
)

// fakeDB is an in-memory stand-in for the Postgres store. Status updates are
// compare-and-set like the SQL versions and WithinTx serializes transactions,
// rolling back every table when fn fails.
type fakeDB struct {
	mu   sync.Mutex
	txMu sync.Mutex

	users        map[int32]domain.User
	categories   map[int32]domain.Category
	tools        map[int32]domain.Tool
	rentals      map[int32]domain.Rental
	transactions map[int32]domain.Transaction
	nextID       int32

	// called after a read made outside any transaction
	onRentalRead      func()
	onTransactionRead func()

	failures map[string]error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:        map[int32]domain.User{},
		categories:   map[int32]domain.Category{},
		tools:        map[int32]domain.Tool{},
		rentals:      map[int32]domain.Rental{},
		transactions: map[int32]domain.Transaction{},
		failures:     map[string]error{},
	}
}

func (db *fakeDB) Repositories() repository.Repositories {
	return db.repos(false)
}

func (db *fakeDB) repos(inTx bool) repository.Repositories {
	return repository.Repositories{
		Users:        &fakeUsers{db: db},
		Categories:   &fakeCategories{db: db},
		Tools:        &fakeTools{db: db},
		Rentals:      &fakeRentals{db: db, inTx: inTx},
		Transactions: &fakeTransactions{db: db, inTx: inTx},
	}
}

func (db *fakeDB) WithinTx(ctx context.Context, fn func(repos repository.Repositories) error) error {
	db.txMu.Lock()
	defer db.txMu.Unlock()

	snap := db.snapshot()
	if err := fn(db.repos(true)); err != nil {
		db.restore(snap)
		return err
	}
	return nil
}

type fakeSnapshot struct {
	users        map[int32]domain.User
	categories   map[int32]domain.Category
	tools        map[int32]domain.Tool
	rentals      map[int32]domain.Rental
	transactions map[int32]domain.Transaction
}

func (db *fakeDB) snapshot() fakeSnapshot {
	db.mu.Lock()
	defer db.mu.Unlock()
	return fakeSnapshot{
		users:        copyMap(db.users),
		categories:   copyMap(db.categories),
		tools:        copyMap(db.tools),
		rentals:      copyMap(db.rentals),
		transactions: copyMap(db.transactions),
	}
}

func (db *fakeDB) restore(s fakeSnapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users, db.categories, db.tools, db.rentals, db.transactions = s.users, s.categories, s.tools, s.rentals, s.transactions
}

func copyMap[V any](m map[int32]V) map[int32]V {
	out := make(map[int32]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (db *fakeDB) id() int32 {
	db.nextID++
	return db.nextID
}

func (db *fakeDB) failure(op string) error {
	return db.failures[op]
}

// seeding helpers

func (db *fakeDB) addUser(u domain.User) *domain.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	u.ID = db.id()
	if u.Role == "" {
		u.Role = domain.UserRoleMember
	}
	if u.Status == "" {
		u.Status = domain.UserStatusActive
	}
	db.users[u.ID] = u
	return &u
}

func (db *fakeDB) addCategory(name string) *domain.Category {
	db.mu.Lock()
	defer db.mu.Unlock()
	c := domain.Category{ID: db.id(), Name: name}
	db.categories[c.ID] = c
	return &c
}

func (db *fakeDB) addTool(t domain.Tool) *domain.Tool {
	db.mu.Lock()
	defer db.mu.Unlock()
	t.ID = db.id()
	if t.Status == "" {
		t.Status = domain.ToolStatusAvailable
	}
	if t.MaintenanceImportance == "" {
		t.MaintenanceImportance = domain.MaintenanceImportanceLow
	}
	db.tools[t.ID] = t
	return &t
}

func (db *fakeDB) addRental(r domain.Rental) *domain.Rental {
	db.mu.Lock()
	defer db.mu.Unlock()
	r.ID = db.id()
	db.rentals[r.ID] = r
	return &r
}

func (db *fakeDB) addTransaction(t domain.Transaction) *domain.Transaction {
	db.mu.Lock()
	defer db.mu.Unlock()
	t.ID = db.id()
	db.transactions[t.ID] = t
	return &t
}

func (db *fakeDB) user(id int32) domain.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.users[id]
}

func (db *fakeDB) tool(id int32) domain.Tool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.tools[id]
}

func (db *fakeDB) rental(id int32) domain.Rental {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.rentals[id]
}

func (db *fakeDB) transactionsFor(userID int32) []domain.Transaction {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []domain.Transaction
	for _, t := range db.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func paginate[T any](items []T, page, pageSize int32) []T {
	if pageSize <= 0 {
		pageSize = 50
	}
	if page <= 0 {
		page = 1
	}
	start := int((page - 1) * pageSize)
	if start >= len(items) {
		return nil
	}
	end := start + int(pageSize)
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

type fakeUsers struct{ db *fakeDB }

func (r *fakeUsers) Create(ctx context.Context, u *domain.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return &domain.ConflictError{Entity: "user", Detail: "duplicate value violates users_email_key"}
		}
	}
	u.ID = r.db.id()
	u.TotalDebtCents = 0
	r.db.users[u.ID] = *u
	return nil
}

func (r *fakeUsers) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "user", ID: id}
	}
	return &u, nil
}

func (r *fakeUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, &domain.NotFoundError{Entity: "user"}
}

func (r *fakeUsers) List(ctx context.Context, status domain.UserStatus, page, pageSize int32) ([]domain.User, int32, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []domain.User
	for _, u := range r.db.users {
		if status == "" || u.Status == status {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, page, pageSize), int32(len(out)), nil
}

func (r *fakeUsers) Update(ctx context.Context, u *domain.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.users[u.ID]
	if !ok {
		return &domain.NotFoundError{Entity: "user", ID: u.ID}
	}
	existing.Name, existing.Email, existing.BadgeNumber, existing.Role = u.Name, u.Email, u.BadgeNumber, u.Role
	r.db.users[u.ID] = existing
	return nil
}

func (r *fakeUsers) UpdateStatus(ctx context.Context, id int32, status domain.UserStatus) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return &domain.NotFoundError{Entity: "user", ID: id}
	}
	u.Status = status
	r.db.users[id] = u
	return nil
}

func (r *fakeUsers) UpdateMembershipExpiry(ctx context.Context, id int32, expiry domain.Date) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return &domain.NotFoundError{Entity: "user", ID: id}
	}
	u.MembershipExpiry = &expiry
	r.db.users[id] = u
	return nil
}

func (r *fakeUsers) ListMembershipsExpiringBefore(ctx context.Context, before domain.Date) ([]domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []domain.User
	for _, u := range r.db.users {
		if u.Status == domain.UserStatusActive && u.MembershipExpiry != nil && u.MembershipExpiry.Before(before) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUsers) RecomputeDebt(ctx context.Context, userID int32) (int32, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[userID]
	if !ok {
		return 0, &domain.NotFoundError{Entity: "user", ID: userID}
	}
	var debt int32
	for _, t := range r.db.transactions {
		if t.UserID == userID && t.Status == domain.TransactionStatusPending {
			debt += t.AmountCents
		}
	}
	u.TotalDebtCents = debt
	r.db.users[userID] = u
	return debt, nil
}

func (r *fakeUsers) TotalOutstandingDebt(ctx context.Context) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var total int64
	for _, u := range r.db.users {
		total += int64(u.TotalDebtCents)
	}
	return total, nil
}

type fakeCategories struct{ db *fakeDB }

func (r *fakeCategories) Create(ctx context.Context, c *domain.Category) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c.ID = r.db.id()
	r.db.categories[c.ID] = *c
	return nil
}

func (r *fakeCategories) GetByID(ctx context.Context, id int32) (*domain.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.categories[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "category", ID: id}
	}
	return &c, nil
}

func (r *fakeCategories) List(ctx context.Context) ([]domain.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []domain.Category
	for _, c := range r.db.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeCategories) Update(ctx context.Context, c *domain.Category) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.categories[c.ID]; !ok {
		return &domain.NotFoundError{Entity: "category", ID: c.ID}
	}
	r.db.categories[c.ID] = *c
	return nil
}

type fakeTools struct{ db *fakeDB }

func (r *fakeTools) Create(ctx context.Context, t *domain.Tool) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t.ID = r.db.id()
	r.db.tools[t.ID] = *t
	return nil
}

func (r *fakeTools) GetByID(ctx context.Context, id int32) (*domain.Tool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.tools[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "tool", ID: id}
	}
	return &t, nil
}

func (r *fakeTools) Update(ctx context.Context, t *domain.Tool) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.tools[t.ID]
	if !ok {
		return &domain.NotFoundError{Entity: "tool", ID: t.ID}
	}
	updated := *t
	updated.Status = existing.Status
	r.db.tools[t.ID] = updated
	return nil
}

func (r *fakeTools) List(ctx context.Context, filter domain.ToolFilter) ([]domain.Tool, int32, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []domain.Tool
	for _, t := range r.db.tools {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.CategoryID > 0 && t.CategoryID != filter.CategoryID {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, filter.Page, filter.PageSize), int32(len(out)), nil
}

func (r *fakeTools) ListWithMaintenanceSchedule(ctx context.Context) ([]domain.Tool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []domain.Tool
	for _, t := range r.db.tools {
		if t.LastMaintenanceDate != nil && t.MaintenanceIntervalMonths != nil {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTools) UpdateStatus(ctx context.Context, id int32, expected, next domain.ToolStatus) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.tools[id]
	if !ok || t.Status != expected {
		return &domain.ConflictError{Entity: "tool", ID: id, Detail: "status is no longer " + string(expected)}
	}
	t.Status = next
	r.db.tools[id] = t
	return nil
}

func (r *fakeTools) RecordMaintenance(ctx context.Context, id int32, serviced domain.Date) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.tools[id]
	if !ok {
		return &domain.NotFoundError{Entity: "tool", ID: id}
	}
	t.LastMaintenanceDate = &serviced
	r.db.tools[id] = t
	return nil
}

func (r *fakeTools) CountByStatus(ctx context.Context) (map[domain.ToolStatus]int32, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	counts := map[domain.ToolStatus]int32{}
	for _, t := range r.db.tools {
		counts[t.Status]++
	}
	return counts, nil
}

type fakeRentals struct {
	db   *fakeDB
	inTx bool
}

func (r *fakeRentals) Create(ctx context.Context, rt *domain.Rental) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	rt.ID = r.db.id()
	r.db.rentals[rt.ID] = *rt
	return nil
}

func (r *fakeRentals) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	r.db.mu.Lock()
	rt, ok := r.db.rentals[id]
	r.db.mu.Unlock()
	if !ok {
		return nil, &domain.NotFoundError{Entity: "rental", ID: id}
	}
	if !r.inTx && r.db.onRentalRead != nil {
		r.db.onRentalRead()
	}
	return &rt, nil
}

func (r *fakeRentals) List(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, int32, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []domain.Rental
	for _, rt := range r.db.rentals {
		if filter.Status != "" && rt.Status != filter.Status {
			continue
		}
		if filter.UserID > 0 && rt.UserID != filter.UserID {
			continue
		}
		if filter.ToolID > 0 && rt.ToolID != filter.ToolID {
			continue
		}
		out = append(out, rt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return paginate(out, filter.Page, filter.PageSize), int32(len(out)), nil
}

func (r *fakeRentals) ListOpenEndingBefore(ctx context.Context, before domain.Date) ([]domain.Rental, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []domain.Rental
	for _, rt := range r.db.rentals {
		open := rt.Status == domain.RentalStatusActive || rt.Status == domain.RentalStatusLate
		if open && rt.ActualReturnDate == nil && rt.EndDate.Before(before) {
			out = append(out, rt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRentals) UpdateStatus(ctx context.Context, rt *domain.Rental, expected domain.RentalStatus) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.rentals[rt.ID]
	if !ok || stored.Status != expected {
		return &domain.ConflictError{Entity: "rental", ID: rt.ID, Detail: "status is no longer " + string(expected)}
	}
	r.db.rentals[rt.ID] = *rt
	return nil
}

func (r *fakeRentals) CountByStatus(ctx context.Context) (map[domain.RentalStatus]int32, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	counts := map[domain.RentalStatus]int32{}
	for _, rt := range r.db.rentals {
		counts[rt.Status]++
	}
	return counts, nil
}

type fakeTransactions struct {
	db   *fakeDB
	inTx bool
}

func (r *fakeTransactions) Create(ctx context.Context, t *domain.Transaction) error {
	if err := r.db.failure("Transactions.Create"); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t.ID = r.db.id()
	r.db.transactions[t.ID] = *t
	return nil
}

func (r *fakeTransactions) GetByID(ctx context.Context, id int32) (*domain.Transaction, error) {
	r.db.mu.Lock()
	t, ok := r.db.transactions[id]
	r.db.mu.Unlock()
	if !ok {
		return nil, &domain.NotFoundError{Entity: "transaction", ID: id}
	}
	if !r.inTx && r.db.onTransactionRead != nil {
		r.db.onTransactionRead()
	}
	return &t, nil
}

func (r *fakeTransactions) GetByRentalID(ctx context.Context, rentalID int32) (*domain.Transaction, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, t := range r.db.transactions {
		if t.RentalID != nil && *t.RentalID == rentalID && t.Type == domain.TransactionTypeRental {
			return &t, nil
		}
	}
	return nil, &domain.NotFoundError{Entity: "rental transaction", ID: rentalID}
}

func (r *fakeTransactions) List(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int32, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []domain.Transaction
	for _, t := range r.db.transactions {
		if filter.UserID > 0 && t.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return paginate(out, filter.Page, filter.PageSize), int32(len(out)), nil
}

func (r *fakeTransactions) MarkPaid(ctx context.Context, t *domain.Transaction) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.transactions[t.ID]
	if !ok || stored.Status != domain.TransactionStatusPending {
		return &domain.ConflictError{Entity: "transaction", ID: t.ID, Detail: "already paid"}
	}
	stored.Status = domain.TransactionStatusPaid
	stored.Method = t.Method
	stored.PaidAt = t.PaidAt
	r.db.transactions[t.ID] = stored
	t.Status = domain.TransactionStatusPaid
	return nil
}

func (r *fakeTransactions) Delete(ctx context.Context, id int32) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.transactions[id]; !ok {
		return &domain.NotFoundError{Entity: "transaction", ID: id}
	}
	delete(r.db.transactions, id)
	return nil
}
