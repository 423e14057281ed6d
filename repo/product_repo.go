package repo

import (
	"context"
	"fmt"

	"github.com/Tarun9121/project-lambok/db"
	"github.com/Tarun9121/project-lambok/models"
)

type productRepo struct {
	q db.Querier
}

// NewProductRepo returns a ProductRepository backed by q.
func NewProductRepo(q db.Querier) ProductRepository {
	return &productRepo{q: q}
}

var _ ProductRepository = (*productRepo)(nil)

const (
	productColumns = `product_id, product_name, price`

	sqlInsertProduct = `
		INSERT INTO products (product_name, price)
		VALUES ($1, $2)
		RETURNING ` + productColumns

	sqlInsertProductWithID = `
		INSERT INTO products (product_id, product_name, price)
		VALUES ($1, $2, $3)
		RETURNING ` + productColumns

	sqlGetProductByID = `
		SELECT ` + productColumns + `
		FROM   products
		WHERE  product_id = $1`

	sqlListProducts = `
		SELECT ` + productColumns + `
		FROM   products
		ORDER  BY product_id
		LIMIT  $1 OFFSET $2`

	sqlUpdateProduct = `
		UPDATE products
		SET    product_name = $1, price = $2
		WHERE  product_id = $3
		RETURNING ` + productColumns

	sqlStoreProduct = `
		INSERT INTO products (product_id, product_name, price)
		VALUES ($1, $2, $3)`

	sqlDeleteProduct = `DELETE FROM products WHERE product_id = $1`

	sqlCountProducts = `SELECT COUNT(*) FROM products`
)

// Insert stores p. Products carry caller-assigned ids (see the demo
// catalog); a zero id lets the database pick one.
func (r *productRepo) Insert(ctx context.Context, p models.Product) (models.Product, error) {
	if p.ProductID() == 0 {
		return scanProduct(r.q.QueryRow(ctx, sqlInsertProduct, p.ProductName(), p.Price()))
	}
	return scanProduct(r.q.QueryRow(ctx, sqlInsertProductWithID, p.ProductID(), p.ProductName(), p.Price()))
}

// GetByID returns db.ErrNotFound when no product has id.
func (r *productRepo) GetByID(ctx context.Context, id int) (models.Product, error) {
	return scanProduct(r.q.QueryRow(ctx, sqlGetProductByID, id))
}

// List returns a page of products ordered by id.
func (r *productRepo) List(ctx context.Context, limit, offset int) ([]models.Product, error) {
	rows, err := r.q.Query(ctx, sqlListProducts, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("repo/product: list: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Update applies modify to a builder seeded from the stored product and
// persists the variant. The id is fixed.
func (r *productRepo) Update(ctx context.Context, id int, modify func(*models.ProductBuilder)) (models.Product, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return models.Product{}, err
	}

	b := current.ToBuilder()
	if modify != nil {
		modify(b)
	}
	next := b.SetProductID(id).Build()
	if next.Equal(current) {
		return current, nil
	}

	return scanProduct(r.q.QueryRow(ctx, sqlUpdateProduct, next.ProductName(), next.Price(), id))
}

// Delete returns db.ErrNotFound when nothing was deleted.
func (r *productRepo) Delete(ctx context.Context, id int) error {
	res, err := r.q.Exec(ctx, sqlDeleteProduct, id)
	if err != nil {
		return fmt.Errorf("repo/product: delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repo/product: delete: %w", err)
	}
	if n == 0 {
		return db.ErrNotFound
	}
	return nil
}

// BatchInsert stores products in order, keeping caller-assigned ids.
func (r *productRepo) BatchInsert(ctx context.Context, products []models.Product) ([]models.Product, error) {
	stored := make([]models.Product, 0, len(products))
	for _, p := range products {
		saved, err := r.Insert(ctx, p)
		if err != nil {
			return nil, err
		}
		stored = append(stored, saved)
	}
	return stored, nil
}

// StoreProducts writes products with their ids as given in a single
// transaction. Unlike BatchInsert it does not read the stored rows back.
func StoreProducts(ctx context.Context, d *db.DB, products []models.Product) error {
	return db.BatchExec(d, ctx, sqlStoreProduct, products, func(p models.Product) []any {
		return []any{p.ProductID(), p.ProductName(), p.Price()}
	})
}

// Count returns the number of stored products.
func (r *productRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, sqlCountProducts).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo/product: count: %w", err)
	}
	return n, nil
}

func scanProduct(row scanner) (models.Product, error) {
	var (
		id    int
		name  string
		price float64
	)
	if err := row.Scan(&id, &name, &price); err != nil {
		return models.Product{}, fmt.Errorf("repo/product: %w", err)
	}
	return models.NewProductBuilder().
		SetProductID(id).
		SetProductName(name).
		SetPrice(price).
		Build(), nil
}
