package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/ymakhloufi/credit-simulator/internal/pkg/model"
	"go.uber.org/zap"
)

//go:embed schema.sql
var schema string

const (
	listProductsQuery = `SELECT id, name, person_type, modality FROM products ORDER BY person_type, modality, name`
	listSegmentsQuery = `SELECT id, code, name, person_type, min_annual_income FROM segments ORDER BY person_type, min_annual_income`
	listRatesQuery    = `
		SELECT r.id, r.product_id, r.segment_id, r.rate,
		       p.name, p.modality, p.person_type,
		       s.code, s.name
		FROM rates r
		INNER JOIN products p ON r.product_id = p.id
		INNER JOIN segments s ON r.segment_id = s.id`
	listRatesOrder = ` ORDER BY p.person_type, p.modality, p.name, s.min_annual_income`
)

type Postgres struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) *Postgres {
	return &Postgres{pool: pool, logger: logger}
}

// Connect opens a connection pool. maxConns <= 0 keeps the driver default.
func Connect(ctx context.Context, url string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, nil
}

func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	p.logger.Info("schema applied")
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Postgres) ListProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := p.pool.Query(ctx, listProductsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var product model.Product
		if err := rows.Scan(&product.Id, &product.Name, &product.PersonType, &product.Modality); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}

func (p *Postgres) ListSegments(ctx context.Context) ([]model.Segment, error) {
	rows, err := p.pool.Query(ctx, listSegmentsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query segments: %w", err)
	}
	defer rows.Close()

	segments := []model.Segment{}
	for rows.Next() {
		var s model.Segment
		if err := rows.Scan(&s.Id, &s.Code, &s.Name, &s.PersonType, &s.MinAnnualIncome); err != nil {
			return nil, fmt.Errorf("failed to scan segment: %w", err)
		}
		segments = append(segments, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read segments: %w", err)
	}
	return segments, nil
}

func (p *Postgres) ListRates(ctx context.Context, filter model.RateFilter) ([]model.Rate, error) {
	query, args := buildRatesQuery(filter)

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rates: %w", err)
	}
	defer rows.Close()

	rates := []model.Rate{}
	for rows.Next() {
		var r model.Rate
		err := rows.Scan(
			&r.Id, &r.ProductId, &r.SegmentId, &r.Rate,
			&r.ProductName, &r.Modality, &r.PersonType,
			&r.SegmentCode, &r.SegmentName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rate: %w", err)
		}
		rates = append(rates, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rates: %w", err)
	}
	return rates, nil
}

func buildRatesQuery(filter model.RateFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.ProductId != nil {
		args = append(args, *filter.ProductId)
		conditions = append(conditions, "r.product_id = $"+strconv.Itoa(len(args)))
	}
	if filter.SegmentId != nil {
		args = append(args, *filter.SegmentId)
		conditions = append(conditions, "r.segment_id = $"+strconv.Itoa(len(args)))
	}

	query := listRatesQuery
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	return query + listRatesOrder, args
}

func (p *Postgres) UpsertSegment(ctx context.Context, segment model.Segment) (model.Segment, error) {
	err := p.pool.QueryRow(ctx, `
		INSERT INTO segments (code, name, person_type, min_annual_income)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (code) DO UPDATE
		SET name = EXCLUDED.name, person_type = EXCLUDED.person_type, min_annual_income = EXCLUDED.min_annual_income
		RETURNING id`,
		segment.Code, segment.Name, string(segment.PersonType), segment.MinAnnualIncome,
	).Scan(&segment.Id)
	if err != nil {
		return model.Segment{}, fmt.Errorf("failed to upsert segment %s: %w", segment.Code, err)
	}
	return segment, nil
}

// UpsertRateQuote links a quote to its segment by code, creating the product when it is new.
func (p *Postgres) UpsertRateQuote(ctx context.Context, quote model.RateQuote) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // no-op after commit

	var segmentId int64
	err = tx.QueryRow(ctx,
		`SELECT id FROM segments WHERE code = $1 AND person_type = $2`,
		quote.SegmentCode, string(quote.PersonType),
	).Scan(&segmentId)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s/%s", ErrSegmentNotFound, quote.PersonType, quote.SegmentCode)
	}
	if err != nil {
		return fmt.Errorf("failed to look up segment %s: %w", quote.SegmentCode, err)
	}

	var productId int64
	err = tx.QueryRow(ctx, `
		INSERT INTO products (name, person_type, modality)
		VALUES ($1, $2, $3)
		ON CONFLICT (name, person_type, modality) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`,
		quote.ProductName, string(quote.PersonType), string(quote.Modality),
	).Scan(&productId)
	if err != nil {
		return fmt.Errorf("failed to upsert product %s: %w", quote.ProductName, err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO rates (product_id, segment_id, rate)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_id, segment_id) DO UPDATE SET rate = EXCLUDED.rate`,
		productId, segmentId, quote.Rate,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert rate: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit rate quote: %w", err)
	}
	return nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}
