// AngelaMos | 2026
// repository.go

package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/shyam-international/exportsite/internal/core"
)

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	ExistsByCode(ctx context.Context, code, excludeID string) (bool, error)
	List(ctx context.Context, params ListParams) ([]Product, int, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) (*Product, error)
	Categories(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const productColumns = `id, name, code, description, category, image_url, image_id,
	created_at, updated_at`

func (r *repository) Create(ctx context.Context, p *Product) error {
	query := `
		INSERT INTO products (id, name, code, description, category, image_url, image_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, p, query,
		p.ID,
		p.Name,
		p.Code,
		p.Description,
		p.Category,
		p.ImageURL,
		p.ImageID,
	)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create product: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create product: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var p Product
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		return nil, core.NotFoundOr("get product", err)
	}

	return &p, nil
}

func (r *repository) ExistsByCode(
	ctx context.Context,
	code, excludeID string,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM products WHERE code = $1 AND id::text <> $2)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, code, excludeID); err != nil {
		return false, fmt.Errorf("check product code: %w", err)
	}

	return exists, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]Product, int, error) {
	var (
		conds []string
		args  []any
	)

	if params.Category != "" {
		args = append(args, params.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if params.Search != "" {
		args = append(args, "%"+core.EscapeLike(params.Search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(name ILIKE $%d OR code ILIKE $%d OR description ILIKE $%d OR category ILIKE $%d)",
			n, n, n, n,
		))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM products"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	dir := "DESC"
	if params.Sort == "ASC" {
		dir = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products%s
		ORDER BY created_at %s
		LIMIT $%d OFFSET $%d`,
		productColumns, where, dir, len(args)+1, len(args)+2)

	items := []Product{}
	if err := r.db.SelectContext(ctx, &items, query,
		append(args, params.Limit, params.Offset)...); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	return items, total, nil
}

func (r *repository) Update(ctx context.Context, p *Product) error {
	query := `
		UPDATE products
		SET name = $2, code = $3, description = $4, category = $5,
		    image_url = $6, image_id = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, p, query,
		p.ID,
		p.Name,
		p.Code,
		p.Description,
		p.Category,
		p.ImageURL,
		p.ImageID,
	)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("update product: %w", core.ErrDuplicateKey)
		}
		return core.NotFoundOr("update product", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) (*Product, error) {
	query := `DELETE FROM products WHERE id = $1 RETURNING ` + productColumns

	var p Product
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		return nil, core.NotFoundOr("delete product", err)
	}

	return &p, nil
}

func (r *repository) Categories(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT category FROM products
		WHERE TRIM(category) <> ''
		ORDER BY category`

	var out []string
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return out, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products`); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}
