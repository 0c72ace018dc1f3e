package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hurricanefence/packslips/constants"
	"github.com/hurricanefence/packslips/internal/common"
	"github.com/hurricanefence/packslips/internal/entity"
	"github.com/hurricanefence/packslips/internal/extract"
	"github.com/hurricanefence/packslips/internal/parser"
	"github.com/hurricanefence/packslips/internal/vendor"
)

type fakeExtractor struct {
	res extract.TextExtractionResult
	err error
}

func (f *fakeExtractor) Extract(context.Context, []byte, string, string) (extract.TextExtractionResult, error) {
	return f.res, f.err
}

type memRepo struct {
	mu    sync.Mutex
	slips map[uuid.UUID]entity.PackSlip
}

func newMemRepo() *memRepo {
	return &memRepo{slips: make(map[uuid.UUID]entity.PackSlip)}
}

func (r *memRepo) Create(_ context.Context, ps *entity.PackSlip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slips[ps.ID] = *ps
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.PackSlip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ps, ok := r.slips[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := ps
	return &cp, nil
}

func (r *memRepo) Update(_ context.Context, ps *entity.PackSlip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.slips[ps.ID]; !ok {
		return common.ErrNotFound
	}
	r.slips[ps.ID] = *ps
	return nil
}

func (r *memRepo) List(_ context.Context, status constants.DocStatus, _ int) ([]*entity.PackSlip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.PackSlip
	for _, ps := range r.slips {
		if status == "" || ps.Status == status {
			cp := ps
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memFiles struct {
	saved map[uuid.UUID][]byte
}

func newMemFiles() *memFiles {
	return &memFiles{saved: make(map[uuid.UUID][]byte)}
}

func (f *memFiles) Save(id uuid.UUID, _ string, raw []byte) (string, error) {
	f.saved[id] = raw
	return "/files/" + id.String(), nil
}

func (f *memFiles) Load(path string) ([]byte, error) { return nil, errors.New("not implemented") }
func (f *memFiles) Remove(path string) error         { return nil }

type fakeForwarder struct {
	err   error
	calls int
	last  *entity.PackSlip
}

func (f *fakeForwarder) Forward(_ context.Context, ps *entity.PackSlip) error {
	f.calls++
	f.last = ps
	return f.err
}

const spsText = "Stephens Pipe & Steel LLC\n" +
	"Ordered Shipped BackOrder Unit Description\n" +
	"144 144 0 ft BLKVNL 4 x18 x SP40x8pc"

func textResult(text string) extract.TextExtractionResult {
	return extract.TextExtractionResult{
		Text:       text,
		Pages:      1,
		SourceType: constants.PDF,
		Method:     "pdf-text",
	}
}

type fixture struct {
	processor *Processor
	repo      *memRepo
	files     *memFiles
	forwarder *fakeForwarder
}

func newFixture(t *testing.T, ex extract.TextExtractor) *fixture {
	t.Helper()
	registry, err := vendor.Load()
	require.NoError(t, err)

	f := &fixture{
		repo:      newMemRepo(),
		files:     newMemFiles(),
		forwarder: &fakeForwarder{},
	}
	f.processor = NewProcessor(ex, registry, parser.New(nil), f.repo, f.files, f.forwarder, nil)
	return f
}

func pdfDoc() entity.Document {
	return entity.Document{
		ID:       uuid.New(),
		Bytes:    []byte("%PDF-1.4"),
		MimeType: "application/pdf",
		FileName: "slip.pdf",
		FileSize: 8,
	}
}

func TestProcessHappyPath(t *testing.T) {
	f := newFixture(t, &fakeExtractor{res: textResult(spsText)})

	doc := pdfDoc()
	ps, err := f.processor.Process(context.Background(), doc, "")
	require.NoError(t, err)

	assert.Equal(t, constants.DocStatusReview, ps.Status)
	assert.Equal(t, "pdf-text", ps.ExtractMeta.Method)
	assert.Equal(t, "stephens-pipe-steel", ps.Vendor.VendorID)
	assert.Equal(t, constants.VendorSourceAuto, ps.Vendor.Source)
	assert.Equal(t, constants.AutoConfidence, ps.Vendor.Confidence)
	require.Len(t, ps.LineItems, 1)
	assert.Equal(t, 144.0, ps.LineItems[0].Quantity)

	assert.Contains(t, f.files.saved, doc.ID)
	stored, err := f.repo.GetByID(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.DocStatusReview, stored.Status)
}

func TestProcessRejectsUnsupportedType(t *testing.T) {
	f := newFixture(t, &fakeExtractor{res: textResult("ignored")})

	_, err := f.processor.Process(context.Background(), entity.Document{
		ID:       uuid.New(),
		MimeType: "application/zip",
		FileName: "stuff.zip",
	}, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnsupportedFileType)
	assert.Empty(t, f.files.saved, "nothing persisted for rejected uploads")
}

func TestProcessExtractionFailureMarksFailed(t *testing.T) {
	f := newFixture(t, &fakeExtractor{err: errors.New("pdftotext: exit status 1")})

	doc := pdfDoc()
	ps, err := f.processor.Process(context.Background(), doc, "")
	require.Error(t, err)

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "EXTRACTION_FAILED", appErr.Code)

	assert.Equal(t, constants.DocStatusFailed, ps.Status)
	stored, gerr := f.repo.GetByID(context.Background(), doc.ID)
	require.NoError(t, gerr)
	assert.Equal(t, constants.DocStatusFailed, stored.Status)
	assert.NotEmpty(t, stored.Errors)
}

func TestProcessVendorOverrideWinsOverDetection(t *testing.T) {
	f := newFixture(t, &fakeExtractor{res: textResult(spsText)})

	ps, err := f.processor.Process(context.Background(), pdfDoc(), "master-halco")
	require.NoError(t, err)
	assert.Equal(t, "master-halco", ps.Vendor.VendorID)
	assert.Equal(t, constants.VendorSourceUser, ps.Vendor.Source)
	assert.Equal(t, constants.UserConfidence, ps.Vendor.Confidence)
}

func TestProcessUnknownOverrideFallsBackToDetection(t *testing.T) {
	f := newFixture(t, &fakeExtractor{res: textResult(spsText)})

	ps, err := f.processor.Process(context.Background(), pdfDoc(), "not-a-vendor")
	require.NoError(t, err)
	assert.Equal(t, "stephens-pipe-steel", ps.Vendor.VendorID)
	assert.Equal(t, constants.VendorSourceAuto, ps.Vendor.Source)
}

func TestProcessNoVendorMatch(t *testing.T) {
	f := newFixture(t, &fakeExtractor{res: textResult("24 pc Widget Assembly Kit")})

	ps, err := f.processor.Process(context.Background(), pdfDoc(), "")
	require.NoError(t, err)
	assert.Equal(t, constants.DocStatusReview, ps.Status, "empty vendor still reaches review")
	assert.Empty(t, ps.Vendor.VendorID)
	assert.Equal(t, constants.VendorSourceNone, ps.Vendor.Source)
	assert.Equal(t, float32(0), ps.Vendor.Confidence)
}

func TestSetVendorReparsesStoredText(t *testing.T) {
	f := newFixture(t, &fakeExtractor{res: textResult(spsText)})

	ps, err := f.processor.Process(context.Background(), pdfDoc(), "")
	require.NoError(t, err)

	updated, err := f.processor.SetVendor(context.Background(), ps.ID, "merchant-metals")
	require.NoError(t, err)
	assert.Equal(t, "merchant-metals", updated.Vendor.VendorID)
	assert.Equal(t, constants.VendorSourceUser, updated.Vendor.Source)
	assert.Equal(t, constants.DocStatusReview, updated.Status)
	assert.NotEmpty(t, updated.LineItems, "generic fallback still recovers items")
}

func TestSetVendorRejectsUnknownVendor(t *testing.T) {
	f := newFixture(t, &fakeExtractor{res: textResult(spsText)})
	_, err := f.processor.SetVendor(context.Background(), uuid.New(), "not-a-vendor")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestSetVendorRejectsSubmittedDocument(t *testing.T) {
	f := newFixture(t, &fakeExtractor{res: textResult(spsText)})

	ps, err := f.processor.Process(context.Background(), pdfDoc(), "")
	require.NoError(t, err)
	_, err = f.processor.Submit(context.Background(), ps.ID, entity.Metadata{}, ps.LineItems)
	require.NoError(t, err)

	_, err = f.processor.SetVendor(context.Background(), ps.ID, "master-halco")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestSubmitNormalizesAndForwards(t *testing.T) {
	f := newFixture(t, &fakeExtractor{res: textResult(spsText)})

	ps, err := f.processor.Process(context.Background(), pdfDoc(), "")
	require.NoError(t, err)

	meta := entity.Metadata{Vendor: "Stephens Pipe & Steel", POOrJob: "PO-4411", ReceivedDate: "2026-08-27"}
	items := []entity.LineItem{
		{Description: "  BLKVNL 4 x18  ", Quantity: 144, Unit: "FEET"},
		{Description: "ghost row", Quantity: 0},
		{Description: "", Quantity: 12, Unit: "pc"},
	}

	submitted, err := f.processor.Submit(context.Background(), ps.ID, meta, items)
	require.NoError(t, err)

	assert.Equal(t, constants.DocStatusSubmitted, submitted.Status)
	require.NotNil(t, submitted.SubmittedAt)
	require.Len(t, submitted.LineItems, 1, "zero-qty and blank rows dropped")
	assert.Equal(t, "BLKVNL 4 x18", submitted.LineItems[0].Description)
	assert.Equal(t, "ft", submitted.LineItems[0].Unit)

	assert.Equal(t, 1, f.forwarder.calls)
	assert.Equal(t, "PO-4411", f.forwarder.last.Metadata.POOrJob)
}

func TestSubmitForwardFailureMarksFailed(t *testing.T) {
	f := newFixture(t, &fakeExtractor{res: textResult(spsText)})
	f.forwarder.err = errors.New("503 from downstream")

	ps, err := f.processor.Process(context.Background(), pdfDoc(), "")
	require.NoError(t, err)

	out, err := f.processor.Submit(context.Background(), ps.ID, entity.Metadata{}, ps.LineItems)
	require.Error(t, err)

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "FORWARD_FAILED", appErr.Code)
	assert.Equal(t, constants.DocStatusFailed, out.Status)

	stored, gerr := f.repo.GetByID(context.Background(), ps.ID)
	require.NoError(t, gerr)
	assert.Equal(t, constants.DocStatusFailed, stored.Status)
}

func TestSubmitUnknownID(t *testing.T) {
	f := newFixture(t, &fakeExtractor{res: textResult(spsText)})
	_, err := f.processor.Submit(context.Background(), uuid.New(), entity.Metadata{}, nil)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
