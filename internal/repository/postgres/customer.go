package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rental-backend/internal/domain"
	"rental-backend/internal/repository"

	"github.com/lib/pq"
)

type customerRepository struct {
	db dbtx
}

func NewCustomerRepository(db *sql.DB) repository.CustomerRepository {
	return newCustomerRepository(db)
}

func newCustomerRepository(db dbtx) *customerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, c *domain.Customer) error {
	query := `INSERT INTO customers (name, phone, password_hash, created_on) VALUES ($1, $2, $3, $4) RETURNING id`
	c.CreatedOn = time.Now()
	err := r.db.QueryRowContext(ctx, query, c.Name, c.Phone, c.PasswordHash, c.CreatedOn).Scan(&c.ID)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return domain.ErrPhoneTaken
	}
	return err
}

func (r *customerRepository) GetByID(ctx context.Context, id int32) (*domain.Customer, error) {
	c := &domain.Customer{}
	query := `SELECT id, name, phone, password_hash, last_login_on, created_on FROM customers WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Phone, &c.PasswordHash, &c.LastLoginOn, &c.CreatedOn)
	if err != nil {
		return nil, notFound(err, "customer", id)
	}
	return c, nil
}

func (r *customerRepository) GetByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	c := &domain.Customer{}
	query := `SELECT id, name, phone, password_hash, last_login_on, created_on FROM customers WHERE phone = $1`
	err := r.db.QueryRowContext(ctx, query, phone).Scan(&c.ID, &c.Name, &c.Phone, &c.PasswordHash, &c.LastLoginOn, &c.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *customerRepository) Update(ctx context.Context, c *domain.Customer) error {
	query := `UPDATE customers SET name=$1, phone=$2 WHERE id=$3`
	err := execOne(ctx, r.db, "customer", c.ID, query, c.Name, c.Phone, c.ID)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return domain.ErrPhoneTaken
	}
	return err
}

func (r *customerRepository) TouchLastLogin(ctx context.Context, id int32, at time.Time) error {
	return execOne(ctx, r.db, "customer", id, `UPDATE customers SET last_login_on=$1 WHERE id=$2`, at, id)
}

func (r *customerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, phone, password_hash, last_login_on, created_on FROM customers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.PasswordHash, &c.LastLoginOn, &c.CreatedOn); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}
