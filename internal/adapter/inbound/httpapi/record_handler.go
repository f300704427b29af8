package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/famvault/server/internal/domain/record"
	"github.com/famvault/server/internal/shared/response"
	"github.com/famvault/server/internal/utils/middleware"
)

// maxDocumentSize caps attachment uploads at 25 MiB.
const maxDocumentSize = 25 << 20

// RecordHandler handles health-record and document requests.
type RecordHandler struct {
	records *record.Domain
	logger  *zap.Logger
}

// NewRecordHandler creates a record handler.
func NewRecordHandler(records *record.Domain, logger *zap.Logger) *RecordHandler {
	return &RecordHandler{records: records, logger: logger}
}

// RegisterRoutes registers record routes on an authenticated group.
func (h *RecordHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/records", h.Create)
	r.GET("/records", h.ListOwn)
	r.GET("/records/:id", h.Get)
	r.PUT("/records/:id", h.Update)
	r.DELETE("/records/:id", h.Delete)

	r.GET("/users/:id/records", h.ListForUser)

	r.POST("/records/:id/documents", h.AttachDocument)
	r.GET("/records/:id/documents", h.ListDocuments)
	r.GET("/documents/:id", h.DownloadDocument)
	r.DELETE("/documents/:id", h.DeleteDocument)
}

// recordPayload is a health record on the wire.
type recordPayload struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"ownerId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toRecordPayload(r *record.HealthRecord) recordPayload {
	return recordPayload{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category.String(),
		Date:        r.Date,
		Tags:        r.Tags,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toRecordPayloads(records []*record.HealthRecord) []recordPayload {
	out := make([]recordPayload, len(records))
	for i, r := range records {
		out[i] = toRecordPayload(r)
	}
	return out
}

// documentPayload is a document reference on the wire. The storage key stays
// server-side.
type documentPayload struct {
	ID          uuid.UUID `json:"id"`
	RecordID    uuid.UUID `json:"recordId"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType,omitempty"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toDocumentPayload(d *record.Document) documentPayload {
	return documentPayload{
		ID:          d.ID,
		RecordID:    d.RecordID,
		FileName:    d.FileName,
		ContentType: d.ContentType,
		Size:        d.Size,
		CreatedAt:   d.CreatedAt,
	}
}

// CreateRecordRequest is the create-record body. OwnerID defaults to the
// caller; set it to add a record for a family member (requires edit access).
type CreateRecordRequest struct {
	OwnerID     *uuid.UUID `json:"ownerId"`
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Category    string     `json:"category" binding:"required"`
	Date        *time.Time `json:"date"`
	Tags        []string   `json:"tags"`
}

// Create creates a health record.
//
//	@Summary		Create health record
//	@Tags			Records
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateRecordRequest	true	"Record"
//	@Success		201		{object}	recordPayload
//	@Failure		403		{object}	response.ErrorResponse
//	@Failure		422		{object}	response.ErrorResponse
//	@Router			/records [post]
func (h *RecordHandler) Create(c *gin.Context) {
	var req CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	actorID := middleware.GetUserID(c)
	ownerID := actorID
	if req.OwnerID != nil {
		ownerID = *req.OwnerID
	}

	in := record.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Tags:        req.Tags,
	}
	if req.Date != nil {
		in.Date = *req.Date
	}

	rec, err := h.records.Create(c.Request.Context(), actorID, ownerID, in)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRecordPayload(rec))
}

// ListOwn lists the caller's records.
//
//	@Summary		List own records
//	@Tags			Records
//	@Produce		json
//	@Security		BearerAuth
//	@Param			category	query		string	false	"Category filter"
//	@Param			from		query		string	false	"Start date (RFC 3339)"
//	@Param			to			query		string	false	"End date (RFC 3339)"
//	@Param			limit		query		int		false	"Page size"
//	@Param			offset		query		int		false	"Page offset"
//	@Success		200			{array}		recordPayload
//	@Router			/records [get]
func (h *RecordHandler) ListOwn(c *gin.Context) {
	h.list(c, middleware.GetUserID(c))
}

// ListForUser lists a family member's records, permission gated.
//
//	@Summary		List a family member's records
//	@Tags			Records
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Owner user ID"
//	@Success		200	{array}		recordPayload
//	@Failure		403	{object}	response.ErrorResponse
//	@Router			/users/{id}/records [get]
func (h *RecordHandler) ListForUser(c *gin.Context) {
	ownerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user ID")
		return
	}
	h.list(c, ownerID)
}

func (h *RecordHandler) list(c *gin.Context, ownerID uuid.UUID) {
	filter, ok := parseListFilter(c)
	if !ok {
		return
	}

	records, err := h.records.List(c.Request.Context(), middleware.GetUserID(c), ownerID, filter)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecordPayloads(records))
}

func parseListFilter(c *gin.Context) (record.ListFilter, bool) {
	var filter record.ListFilter

	if raw := c.Query("category"); raw != "" {
		category, err := record.ParseCategory(raw)
		if err != nil {
			response.Error(c, http.StatusUnprocessableEntity, err.Error())
			return filter, false
		}
		filter.Category = &category
	}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(c, "invalid from date")
			return filter, false
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(c, "invalid to date")
			return filter, false
		}
		filter.To = &to
	}

	var page struct {
		Limit  int `form:"limit"`
		Offset int `form:"offset"`
	}
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, "invalid pagination")
		return filter, false
	}
	filter.Limit = page.Limit
	filter.Offset = page.Offset
	return filter, true
}

// Get retrieves one record.
//
//	@Summary		Get record
//	@Tags			Records
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Record ID"
//	@Success		200	{object}	recordPayload
//	@Failure		403	{object}	response.ErrorResponse
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/records/{id} [get]
func (h *RecordHandler) Get(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid record ID")
		return
	}

	rec, err := h.records.Get(c.Request.Context(), middleware.GetUserID(c), recordID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecordPayload(rec))
}

// UpdateRecordRequest is the update body. Absent fields are left untouched.
type UpdateRecordRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Category    *string    `json:"category"`
	Date        *time.Time `json:"date"`
	Tags        *[]string  `json:"tags"`
}

// Update mutates a record.
//
//	@Summary		Update record
//	@Tags			Records
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string				true	"Record ID"
//	@Param			request	body		UpdateRecordRequest	true	"Fields to change"
//	@Success		200		{object}	recordPayload
//	@Failure		403		{object}	response.ErrorResponse
//	@Failure		404		{object}	response.ErrorResponse
//	@Router			/records/{id} [put]
func (h *RecordHandler) Update(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid record ID")
		return
	}
	var req UpdateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	rec, err := h.records.Update(c.Request.Context(), middleware.GetUserID(c), recordID, record.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Date:        req.Date,
		Tags:        req.Tags,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecordPayload(rec))
}

// Delete removes a record and its documents.
//
//	@Summary		Delete record
//	@Tags			Records
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Record ID"
//	@Success		204
//	@Failure		403	{object}	response.ErrorResponse
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/records/{id} [delete]
func (h *RecordHandler) Delete(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid record ID")
		return
	}

	if err := h.records.Delete(c.Request.Context(), middleware.GetUserID(c), recordID); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AttachDocument uploads an attachment onto a record.
//
//	@Summary		Attach document
//	@Tags			Records
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string	true	"Record ID"
//	@Param			file	formData	file	true	"Document"
//	@Success		201		{object}	documentPayload
//	@Failure		403		{object}	response.ErrorResponse
//	@Router			/records/{id}/documents [post]
func (h *RecordHandler) AttachDocument(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid record ID")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	if fileHeader.Size > maxDocumentSize {
		response.Error(c, http.StatusRequestEntityTooLarge, "document exceeds the size limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "unreadable upload")
		return
	}
	defer file.Close()

	doc, err := h.records.AttachDocument(
		c.Request.Context(),
		middleware.GetUserID(c),
		recordID,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		file,
	)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toDocumentPayload(doc))
}

// ListDocuments lists a record's attachments.
//
//	@Summary		List documents
//	@Tags			Records
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Record ID"
//	@Success		200	{array}	documentPayload
//	@Router			/records/{id}/documents [get]
func (h *RecordHandler) ListDocuments(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid record ID")
		return
	}

	docs, err := h.records.ListDocuments(c.Request.Context(), middleware.GetUserID(c), recordID)
	if err != nil {
		handleError(c, err)
		return
	}

	payloads := make([]documentPayload, len(docs))
	for i, doc := range docs {
		payloads[i] = toDocumentPayload(doc)
	}
	c.JSON(http.StatusOK, payloads)
}

// DownloadDocument streams an attachment's content.
//
//	@Summary		Download document
//	@Tags			Records
//	@Produce		application/octet-stream
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Document ID"
//	@Success		200
//	@Failure		403	{object}	response.ErrorResponse
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/documents/{id} [get]
func (h *RecordHandler) DownloadDocument(c *gin.Context) {
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid document ID")
		return
	}

	doc, body, err := h.records.OpenDocument(c.Request.Context(), middleware.GetUserID(c), documentID)
	if err != nil {
		handleError(c, err)
		return
	}
	defer body.Close()

	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", `attachment; filename="`+doc.FileName+`"`)
	c.DataFromReader(http.StatusOK, doc.Size, contentType, body, nil)
}

// DeleteDocument removes an attachment.
//
//	@Summary		Delete document
//	@Tags			Records
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Document ID"
//	@Success		204
//	@Failure		403	{object}	response.ErrorResponse
//	@Router			/documents/{id} [delete]
func (h *RecordHandler) DeleteDocument(c *gin.Context) {
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid document ID")
		return
	}

	if err := h.records.DeleteDocument(c.Request.Context(), middleware.GetUserID(c), documentID); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
