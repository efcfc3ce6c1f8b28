package customer

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mjgale/cams/internal/sql"
)

// pgdb is a database of customers on postgres
type pgdb struct {
	*sql.DB
}

func (db *pgdb) tx(ctx context.Context, fn func(context.Context) error) error {
	return db.Tx(ctx, fn)
}

// row is the row result of a database query for customers
type row struct {
	CustomerID pgtype.Text
	CreatedAt  pgtype.Timestamptz
	UpdatedAt  pgtype.Timestamptz
	Name       pgtype.Text
	Email      pgtype.Text
	ImageURL   pgtype.Text
}

// toCustomer converts a customer database row into a customer.
func (r row) toCustomer() *Customer {
	cust := &Customer{
		ID:        r.CustomerID.String,
		CreatedAt: r.CreatedAt.Time.UTC(),
		UpdatedAt: r.UpdatedAt.Time.UTC(),
		Name:      r.Name.String,
		Email:     r.Email.String,
	}
	if r.ImageURL.Valid {
		cust.ImageURL = &r.ImageURL.String
	}
	return cust
}

func (db *pgdb) create(ctx context.Context, cust *Customer) error {
	_, err := db.Exec(ctx, `
INSERT INTO customers (customer_id, created_at, updated_at, name, email, image_url)
VALUES ($1, $2, $3, $4, $5, $6)`,
		cust.ID,
		cust.CreatedAt,
		cust.UpdatedAt,
		cust.Name,
		cust.Email,
		cust.ImageURL,
	)
	return err
}

func (db *pgdb) update(ctx context.Context, cust *Customer) (*Customer, error) {
	var r row
	err := db.QueryRow(ctx, `
UPDATE customers
SET name = $1, email = $2, image_url = $3, updated_at = $4
WHERE customer_id = $5
RETURNING customer_id, created_at, updated_at, name, email, image_url`,
		cust.Name,
		cust.Email,
		cust.ImageURL,
		cust.UpdatedAt,
		cust.ID,
	).Scan(&r.CustomerID, &r.CreatedAt, &r.UpdatedAt, &r.Name, &r.Email, &r.ImageURL)
	if err != nil {
		return nil, err
	}
	return r.toCustomer(), nil
}

func (db *pgdb) delete(ctx context.Context, id string) error {
	_, err := db.Exec(ctx, `DELETE FROM customers WHERE customer_id = $1`, id)
	return err
}

func (db *pgdb) get(ctx context.Context, id string) (*Customer, error) {
	var r row
	err := db.QueryRow(ctx, `
SELECT customer_id, created_at, updated_at, name, email, image_url
FROM customers
WHERE customer_id = $1`, id).
		Scan(&r.CustomerID, &r.CreatedAt, &r.UpdatedAt, &r.Name, &r.Email, &r.ImageURL)
	if err != nil {
		return nil, err
	}
	return r.toCustomer(), nil
}

// getImageURL is a point lookup of a customer's current image reference,
// made immediately before a mutation. The row is locked so that within a
// transaction the reference cannot change before the mutation lands.
func (db *pgdb) getImageURL(ctx context.Context, id string) (*string, error) {
	var imageURL pgtype.Text
	err := db.QueryRow(ctx, `
SELECT image_url FROM customers WHERE customer_id = $1 FOR UPDATE`, id).
		Scan(&imageURL)
	if err != nil {
		return nil, err
	}
	if !imageURL.Valid {
		return nil, nil
	}
	return &imageURL.String, nil
}

func (db *pgdb) list(ctx context.Context, opts ListOptions) (*Page, error) {
	rows := db.Query(ctx, `
SELECT customer_id, created_at, updated_at, name, email, image_url
FROM customers
ORDER BY name
LIMIT $1 OFFSET $2`,
		opts.limit(),
		opts.offset(),
	)
	results, err := pgx.CollectRows(rows, pgx.RowToStructByPos[row])
	if err != nil {
		return nil, sql.Error(err)
	}

	count, err := db.Int(ctx, `SELECT count(*) FROM customers`)
	if err != nil {
		return nil, sql.Error(err)
	}

	items := make([]*Customer, len(results))
	for i, r := range results {
		items[i] = r.toCustomer()
	}
	return &Page{Items: items, Total: count}, nil
}
