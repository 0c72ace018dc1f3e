package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hurricanefence/packslips/constants"
	"github.com/hurricanefence/packslips/internal/common"
	"github.com/hurricanefence/packslips/internal/entity"
)

// PackSlipRepository persists pack-slip aggregates. Line items,
// metadata, and error lists are stored as JSON columns; they are only
// ever read and written whole.
type PackSlipRepository interface {
	Create(ctx context.Context, ps *entity.PackSlip) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.PackSlip, error)
	Update(ctx context.Context, ps *entity.PackSlip) error
	List(ctx context.Context, status constants.DocStatus, limit int) ([]*entity.PackSlip, error)
}

type packSlipRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPackSlipRepository(db *sql.DB, logger *slog.Logger) PackSlipRepository {
	return &packSlipRepository{
		db:     db,
		logger: logger,
	}
}

const packSlipColumns = `id, status, file_name, mime_type, file_size, file_path,
	extracted_text, extract_method, extract_pages,
	vendor_id, vendor_source, vendor_confidence,
	line_items, metadata, errors,
	created_at, updated_at, submitted_at`

func (r *packSlipRepository) Create(ctx context.Context, ps *entity.PackSlip) error {
	items, meta, errs, err := marshalJSONColumns(ps)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO pack_slips (`+packSlipColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ps.ID.String(), string(ps.Status), ps.FileName, ps.MimeType, ps.FileSize, ps.FilePath,
		ps.ExtractedText, ps.ExtractMeta.Method, ps.ExtractMeta.Pages,
		ps.Vendor.VendorID, string(ps.Vendor.Source), ps.Vendor.Confidence,
		items, meta, errs,
		ps.CreatedAt, ps.UpdatedAt, ps.SubmittedAt,
	)
	if err != nil {
		r.logger.Error("failed to create pack slip", "id", ps.ID, "error", err)
		return err
	}
	return nil
}

func (r *packSlipRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.PackSlip, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+packSlipColumns+` FROM pack_slips WHERE id = ?`, id.String())

	ps, err := scanPackSlip(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get pack slip", "id", id, "error", err)
		return nil, err
	}
	return ps, nil
}

func (r *packSlipRepository) Update(ctx context.Context, ps *entity.PackSlip) error {
	items, meta, errs, err := marshalJSONColumns(ps)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE pack_slips SET
			status = ?, extracted_text = ?, extract_method = ?, extract_pages = ?,
			vendor_id = ?, vendor_source = ?, vendor_confidence = ?,
			line_items = ?, metadata = ?, errors = ?,
			updated_at = ?, submitted_at = ?
		WHERE id = ?`,
		string(ps.Status), ps.ExtractedText, ps.ExtractMeta.Method, ps.ExtractMeta.Pages,
		ps.Vendor.VendorID, string(ps.Vendor.Source), ps.Vendor.Confidence,
		items, meta, errs,
		ps.UpdatedAt, ps.SubmittedAt,
		ps.ID.String(),
	)
	if err != nil {
		r.logger.Error("failed to update pack slip", "id", ps.ID, "error", err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *packSlipRepository) List(ctx context.Context, status constants.DocStatus, limit int) ([]*entity.PackSlip, error) {
	q := `SELECT ` + packSlipColumns + ` FROM pack_slips`
	args := []any{}
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, string(status))
	}
	q += ` ORDER BY created_at DESC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		r.logger.Error("failed to list pack slips", "status", status, "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*entity.PackSlip
	for rows.Next() {
		ps, err := scanPackSlip(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}

func marshalJSONColumns(ps *entity.PackSlip) (items, meta, errs string, err error) {
	b, err := json.Marshal(ps.LineItems)
	if err != nil {
		return "", "", "", err
	}
	items = string(b)

	b, err = json.Marshal(ps.Metadata)
	if err != nil {
		return "", "", "", err
	}
	meta = string(b)

	if ps.Errors == nil {
		errs = "[]"
		return items, meta, errs, nil
	}
	b, err = json.Marshal(ps.Errors)
	if err != nil {
		return "", "", "", err
	}
	return items, meta, string(b), nil
}

func scanPackSlip(scan func(dest ...any) error) (*entity.PackSlip, error) {
	var (
		ps          entity.PackSlip
		id          string
		status      string
		source      string
		items       string
		meta        string
		errs        string
		submittedAt sql.NullTime
	)
	err := scan(
		&id, &status, &ps.FileName, &ps.MimeType, &ps.FileSize, &ps.FilePath,
		&ps.ExtractedText, &ps.ExtractMeta.Method, &ps.ExtractMeta.Pages,
		&ps.Vendor.VendorID, &source, &ps.Vendor.Confidence,
		&items, &meta, &errs,
		&ps.CreatedAt, &ps.UpdatedAt, &submittedAt,
	)
	if err != nil {
		return nil, err
	}

	ps.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	ps.Status = constants.DocStatus(status)
	ps.Vendor.Source = constants.VendorSource(source)
	if submittedAt.Valid {
		t := submittedAt.Time
		ps.SubmittedAt = &t
	}

	if err := json.Unmarshal([]byte(items), &ps.LineItems); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(meta), &ps.Metadata); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(errs), &ps.Errors); err != nil {
		return nil, err
	}
	if ps.LineItems == nil {
		ps.LineItems = []entity.LineItem{}
	}
	return &ps, nil
}
