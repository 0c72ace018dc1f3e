package export

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hurricanefence/packslips/constants"
	"github.com/hurricanefence/packslips/internal/entity"
)

type stubRepo struct {
	slips []*entity.PackSlip
	err   error
}

func (r *stubRepo) Create(context.Context, *entity.PackSlip) error { return errors.New("read only") }
func (r *stubRepo) Update(context.Context, *entity.PackSlip) error { return errors.New("read only") }
func (r *stubRepo) GetByID(context.Context, uuid.UUID) (*entity.PackSlip, error) {
	return nil, errors.New("read only")
}

func (r *stubRepo) List(_ context.Context, status constants.DocStatus, _ int) ([]*entity.PackSlip, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []*entity.PackSlip
	for _, ps := range r.slips {
		if status == "" || ps.Status == status {
			out = append(out, ps)
		}
	}
	return out, nil
}

func submittedSlip(fileName string, items ...entity.LineItem) *entity.PackSlip {
	submitted := time.Date(2026, 8, 27, 9, 30, 0, 0, time.UTC)
	return &entity.PackSlip{
		ID:          uuid.New(),
		Status:      constants.DocStatusSubmitted,
		FileName:    fileName,
		LineItems:   items,
		Metadata:    entity.Metadata{Vendor: "Stephens Pipe & Steel", POOrJob: "PO-4411", ReceivedDate: "2026-08-27"},
		SubmittedAt: &submitted,
	}
}

func TestExportSubmittedXLSX(t *testing.T) {
	repo := &stubRepo{slips: []*entity.PackSlip{
		submittedSlip("slip-a.pdf",
			entity.LineItem{SKU: "90233-A", Description: "BLKVNL 4 x18 x SP40x8pc", Quantity: 144, Unit: "ft"},
			entity.LineItem{Description: "Brace Band 2-3/8", Quantity: 24, Unit: "ea"},
		),
		submittedSlip("slip-b.pdf",
			entity.LineItem{Description: "Tension Bar 3/16x3/4", Quantity: 12, Unit: "pc"},
		),
		{ID: uuid.New(), Status: constants.DocStatusReview, FileName: "not-done.pdf"},
	}}

	data, err := NewService(repo, nil).ExportSubmittedXLSX(context.Background())
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()

	rows, err := wb.GetRows("Pack Slips")
	require.NoError(t, err)
	require.Len(t, rows, 4, "header plus one row per line item")

	assert.Equal(t, "Submitted", rows[0][0])
	assert.Equal(t, "Description", rows[0][5])

	assert.Equal(t, "2026-08-27", rows[1][0])
	assert.Equal(t, "Stephens Pipe & Steel", rows[1][1])
	assert.Equal(t, "90233-A", rows[1][4])
	assert.Equal(t, "BLKVNL 4 x18 x SP40x8pc", rows[1][5])
	assert.Equal(t, "144", rows[1][6])
	assert.Equal(t, "ft", rows[1][7])
	assert.Equal(t, "slip-a.pdf", rows[1][9])

	assert.Equal(t, "slip-b.pdf", rows[3][9])
}

func TestExportEmptyWorkbook(t *testing.T) {
	data, err := NewService(&stubRepo{}, nil).ExportSubmittedXLSX(context.Background())
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()

	rows, err := wb.GetRows("Pack Slips")
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
}

func TestExportRepositoryError(t *testing.T) {
	_, err := NewService(&stubRepo{err: errors.New("db closed")}, nil).ExportSubmittedXLSX(context.Background())
	assert.Error(t, err)
}
