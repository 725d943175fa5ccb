package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	importapp "github.com/orderimport/backend/internal/application/import"
	csvimport "github.com/orderimport/backend/internal/infrastructure/import"
	"github.com/orderimport/backend/internal/interfaces/http/dto"
	"github.com/orderimport/backend/internal/interfaces/http/middleware"
)

const (
	csvContentType  = "text/csv"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	templateBaseName = "order_import_template"
)

// OrderImportHandler accepts order files for bulk import
type OrderImportHandler struct {
	BaseHandler
	importService *importapp.OrderImportService
}

// NewOrderImportHandler creates a new OrderImportHandler
func NewOrderImportHandler(importService *importapp.OrderImportService) *OrderImportHandler {
	return &OrderImportHandler{
		importService: importService,
	}
}

// Import godoc
//
//	@Summary		Import orders from a file
//	@Description	Parses a CSV or XLSX file and stores every order in one batch. If any record is invalid nothing is stored and every invalid record is reported.
//	@Tags			import
//	@ID				importOrders
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			Idempotency-Key	header		string	false	"Refuses a second upload with the same key"
//	@Param			file			formData	file	true	"CSV or XLSX file"
//	@Success		200				{object}	dto.Response{data=importapp.ImportResult}
//	@Failure		400				{object}	dto.Response
//	@Failure		409				{object}	dto.Response
//	@Failure		413				{object}	dto.Response
//	@Failure		422				{object}	dto.Response
//	@Failure		500				{object}	dto.Response
//	@Router			/orders/import [post]
func (h *OrderImportHandler) Import(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeImportInvalidFile, "file is required")
		return
	}
	defer file.Close()

	maxSize := h.importService.MaxFileSize()
	if header.Size > maxSize {
		h.HandleError(c, csvimport.ErrFileTooLarge)
		return
	}

	// The declared size can lie; never read more than one byte past the limit.
	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeImportInvalidFile, "failed to read uploaded file")
		return
	}
	if int64(len(data)) > maxSize {
		h.HandleError(c, csvimport.ErrFileTooLarge)
		return
	}

	result, err := h.importService.ImportBatch(c.Request.Context(), importapp.ImportBatchInput{
		Data:           data,
		FileName:       header.Filename,
		IdempotencyKey: c.GetHeader(middleware.IdempotencyKeyHeader),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Template godoc
//
//	@Summary		Download the import template
//	@Description	Returns an empty file with the import header row. Required columns are marked with *.
//	@Tags			import
//	@ID				getOrderImportTemplate
//	@Produce		text/csv
//	@Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Param			format	query	string	false	"csv (default) or xlsx"
//	@Success		200		{file}	binary
//	@Failure		400		{object}	dto.Response
//	@Router			/orders/import/template [get]
func (h *OrderImportHandler) Template(c *gin.Context) {
	var req dto.TemplateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	var (
		data        []byte
		err         error
		contentType = csvContentType
		ext         = csvimport.FormatCSV
	)
	if csvimport.Format(req.Format) == csvimport.FormatXLSX {
		data, err = csvimport.TemplateXLSX()
		contentType = xlsxContentType
		ext = csvimport.FormatXLSX
	} else {
		data, err = csvimport.TemplateCSV()
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.%s", templateBaseName, ext))
	c.Data(http.StatusOK, contentType, data)
}
