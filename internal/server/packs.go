package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hurricanefence/packslips/internal/common"
	"github.com/hurricanefence/packslips/internal/entity"
	"github.com/hurricanefence/packslips/internal/parser"
)

// apiLineItem is the review UI's line-item shape.
type apiLineItem struct {
	SKU         string  `json:"sku"`
	Description string  `json:"description"`
	Qty         float64 `json:"qty"`
	UOM         string  `json:"uom"`
	Notes       string  `json:"notes,omitempty"`
}

// apiPack is the trimmed pack-slip view served to the review UI.
type apiPack struct {
	ID            string        `json:"id"`
	Status        string        `json:"status"`
	FileName      string        `json:"fileName"`
	UploadedAt    string        `json:"uploadedAt"`
	ExtractedText string        `json:"extractedText"`
	Fields        apiFields     `json:"fields"`
	LineItems     []apiLineItem `json:"lineItems"`
}

type apiFields struct {
	Vendor       string `json:"vendor"`
	PO           string `json:"po"`
	ReceivedDate string `json:"receivedDate"`
}

func toAPIModel(ps *entity.PackSlip) apiPack {
	items := make([]apiLineItem, 0, len(ps.LineItems))
	for _, li := range ps.LineItems {
		items = append(items, apiLineItem{
			SKU:         li.SKU,
			Description: li.Description,
			Qty:         li.Quantity,
			UOM:         li.Unit,
			Notes:       li.Notes,
		})
	}
	return apiPack{
		ID:            ps.ID.String(),
		Status:        string(ps.Status),
		FileName:      ps.FileName,
		UploadedAt:    ps.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		ExtractedText: ps.ExtractedText,
		Fields: apiFields{
			Vendor:       ps.Metadata.Vendor,
			PO:           ps.Metadata.POOrJob,
			ReceivedDate: ps.Metadata.ReceivedDate,
		},
		LineItems: items,
	}
}

func (s *Server) packID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		s.respondError(c, common.NewAppError("BAD_ID", "id must be a UUID", common.ErrInvalidInput))
		return uuid.Nil, false
	}
	return id, true
}

// handleReview serves the full stored record for the review screen.
func (s *Server) handleReview(c *gin.Context) {
	id, ok := s.packID(c)
	if !ok {
		return
	}
	ps, err := s.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ps)
}

// handleGetPack serves the trimmed API model.
func (s *Server) handleGetPack(c *gin.Context) {
	id, ok := s.packID(c)
	if !ok {
		return
	}
	ps, err := s.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAPIModel(ps))
}

type setVendorRequest struct {
	VendorID string `json:"vendorId" binding:"required"`
}

// handleSetVendor records a reviewer's vendor pick and re-parses.
func (s *Server) handleSetVendor(c *gin.Context) {
	id, ok := s.packID(c)
	if !ok {
		return
	}
	var req setVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, common.NewAppError("BAD_BODY", "vendorId is required", common.ErrInvalidInput))
		return
	}

	ps, err := s.processor.SetVendor(c.Request.Context(), id, req.VendorID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAPIModel(ps))
}

type submitRequest struct {
	Fields    apiFields     `json:"fields"`
	LineItems []apiLineItem `json:"lineItems"`
}

// handleSubmit finalizes a reviewed pack slip and forwards it.
func (s *Server) handleSubmit(c *gin.Context) {
	id, ok := s.packID(c)
	if !ok {
		return
	}
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, common.NewAppError("BAD_BODY", "invalid submission body", common.ErrInvalidInput))
		return
	}

	meta := entity.Metadata{
		Vendor:       req.Fields.Vendor,
		POOrJob:      req.Fields.PO,
		ReceivedDate: req.Fields.ReceivedDate,
	}
	items := make([]entity.LineItem, 0, len(req.LineItems))
	for _, li := range req.LineItems {
		desc := li.Description
		if desc == "" {
			desc = li.SKU
		}
		items = append(items, entity.LineItem{
			SKU:         li.SKU,
			Description: desc,
			Quantity:    li.Qty,
			Unit:        parser.NormalizeUnit(li.UOM),
			Notes:       li.Notes,
		})
	}

	ps, err := s.processor.Submit(c.Request.Context(), id, meta, items)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": ps.ID, "status": ps.Status})
}
