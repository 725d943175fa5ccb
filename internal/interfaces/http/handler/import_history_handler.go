package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	importapp "github.com/orderimport/backend/internal/application/import"
	"github.com/orderimport/backend/internal/domain/shared"
	"github.com/orderimport/backend/internal/interfaces/http/dto"
	"github.com/orderimport/backend/internal/interfaces/http/middleware"
)

// ImportHistoryHandler handles import history related HTTP requests
type ImportHistoryHandler struct {
	BaseHandler
	historyService *importapp.ImportHistoryService
}

// NewImportHistoryHandler creates a new ImportHistoryHandler
func NewImportHistoryHandler(historyService *importapp.ImportHistoryService) *ImportHistoryHandler {
	return &ImportHistoryHandler{
		historyService: historyService,
	}
}

// ListHistory godoc
//
//	@Summary		List import histories
//	@Description	Returns a paginated list of import attempts, newest first
//	@Tags			import
//	@ID				listImportHistory
//	@Produce		json
//	@Param			status		query		string	false	"Filter by status (processing, completed, rejected, failed)"
//	@Param			format		query		string	false	"Filter by format (csv, xlsx)"
//	@Param			search		query		string	false	"Matches the file name"
//	@Param			page		query		int		false	"Page number (default: 1)"
//	@Param			page_size	query		int		false	"Page size (default: 20, max: 100)"
//	@Success		200			{object}	dto.Response{data=[]dto.ImportHistoryResponse}
//	@Failure		400			{object}	dto.Response
//	@Failure		500			{object}	dto.Response
//	@Router			/orders/import/history [get]
func (h *ImportHistoryHandler) ListHistory(c *gin.Context) {
	var req dto.ImportHistoryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	filter.Search = req.Search
	filter.Filters = make(map[string]interface{})
	if req.Status != "" {
		filter.Filters["status"] = req.Status
	}
	if req.Format != "" {
		filter.Filters["format"] = req.Format
	}

	result, err := h.historyService.ListHistory(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, dto.NewImportHistoryResponses(result.Items), result.Total, result.Page, result.PageSize)
}

// GetHistory godoc
//
//	@Summary		Get import history details
//	@Description	Returns one import attempt including every rejected record
//	@Tags			import
//	@ID				getImportHistory
//	@Produce		json
//	@Param			id	path		string	true	"Import history ID"
//	@Success		200	{object}	dto.Response{data=dto.ImportHistoryResponse}
//	@Failure		400	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Router			/orders/import/history/{id} [get]
func (h *ImportHistoryHandler) GetHistory(c *gin.Context) {
	historyID, ok := h.parseHistoryID(c)
	if !ok {
		return
	}

	history, err := h.historyService.GetHistory(c.Request.Context(), historyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewImportHistoryResponse(history))
}

// GetErrors godoc
//
//	@Summary		Download rejected records as CSV
//	@Tags			import
//	@ID				getImportErrors
//	@Produce		text/csv
//	@Param			id	path		string	true	"Import history ID"
//	@Success		200	{string}	string	"CSV content"
//	@Failure		400	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Router			/orders/import/history/{id}/errors [get]
func (h *ImportHistoryHandler) GetErrors(c *gin.Context) {
	historyID, ok := h.parseHistoryID(c)
	if !ok {
		return
	}

	data, fileName, err := h.historyService.ErrorReportCSV(c.Request.Context(), historyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// GetArchive godoc
//
//	@Summary		Get a download link for the archived upload
//	@Tags			import
//	@ID				getImportArchive
//	@Produce		json
//	@Param			id	path		string	true	"Import history ID"
//	@Success		200	{object}	dto.Response{data=importapp.ArchiveLink}
//	@Failure		404	{object}	dto.Response
//	@Failure		503	{object}	dto.Response
//	@Router			/orders/import/history/{id}/archive [get]
func (h *ImportHistoryHandler) GetArchive(c *gin.Context) {
	historyID, ok := h.parseHistoryID(c)
	if !ok {
		return
	}

	link, err := h.historyService.ArchiveDownloadURL(c.Request.Context(), historyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, link)
}

// DeleteArchive godoc
//
//	@Summary		Delete the archived upload
//	@Description	Removes the archived file. Imported orders are not affected.
//	@Tags			import
//	@ID				deleteImportArchive
//	@Param			id	path	string	true	"Import history ID"
//	@Success		204	"Successfully deleted"
//	@Failure		404	{object}	dto.Response
//	@Failure		503	{object}	dto.Response
//	@Router			/orders/import/history/{id}/archive [delete]
func (h *ImportHistoryHandler) DeleteArchive(c *gin.Context) {
	historyID, ok := h.parseHistoryID(c)
	if !ok {
		return
	}

	if err := h.historyService.DeleteArchive(c.Request.Context(), historyID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *ImportHistoryHandler) parseHistoryID(c *gin.Context) (uuid.UUID, bool) {
	historyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid history ID")
		return uuid.Nil, false
	}
	return historyID, true
}

// RegisterRoutes registers all import history routes
func (h *ImportHistoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	history := rg.Group("/orders/import/history")
	{
		history.GET("", h.ListHistory)
		history.GET("/:id", h.GetHistory)
		history.GET("/:id/errors", h.GetErrors)
		history.GET("/:id/archive", h.GetArchive)
		history.DELETE("/:id/archive", h.DeleteArchive)
	}
}
