package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"autostreamml/internal/adapters/primary/http/dto"
	"autostreamml/internal/core/domain"
)

var errNoFile = errors.New("no file uploaded: send the CSV in the \"file\" form field")

// uploadOverhead allows for multipart boundaries and part headers on top of
// the file itself.
const uploadOverhead = 64 << 10

// formFile returns the uploaded "file" part. The request body is capped just
// above the upload limit so an oversized upload is refused while it streams.
func (h *Handler) formFile(c *gin.Context) (*multipart.FileHeader, error) {
	if limit := h.uploadSvc.MaxBytes(); limit > 0 {
		limit += uploadOverhead
		if c.Request.ContentLength > limit {
			return nil, fmt.Errorf("%w: request body is %d bytes", domain.ErrUploadTooLarge, c.Request.ContentLength)
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	fh, err := c.FormFile("file")
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return nil, fmt.Errorf("%w: request body exceeds %d bytes", domain.ErrUploadTooLarge, tooLarge.Limit)
	case err != nil:
		return nil, errNoFile
	}
	return fh, nil
}

func (h *Handler) UploadDataset(c *gin.Context) {
	fh, err := h.formFile(c)
	if errors.Is(err, domain.ErrUploadTooLarge) {
		mapDomainError(c, err)
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	ds, err := h.uploadSvc.Upload(c.Request.Context(), fh.Filename, f)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToDatasetResponse(ds, previewRows))
}

func (h *Handler) GetDataset(c *gin.Context) {
	ds, err := h.uploadSvc.Current(c.Request.Context())
	if err != nil {
		if errors.Is(err, domain.ErrDatasetAbsent) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDatasetResponse(ds, previewRows))
}

// UploadForm renders the upload mode with the current dataset, if any.
func (h *Handler) UploadForm(c *gin.Context) {
	data := h.page(ChoiceUpload)
	ds, err := h.uploadSvc.Current(c.Request.Context())
	switch {
	case err == nil:
		data.Dataset = newDatasetView(ds)
	case !errors.Is(err, domain.ErrDatasetAbsent):
		h.renderError(c, data, err)
		return
	}
	h.render(c, http.StatusOK, data)
}

func (h *Handler) UploadPage(c *gin.Context) {
	data := h.page(ChoiceUpload)

	fh, err := h.formFile(c)
	if errors.Is(err, domain.ErrUploadTooLarge) {
		h.renderError(c, data, err)
		return
	}
	if err != nil {
		data.Error = err.Error()
		h.render(c, http.StatusBadRequest, data)
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.renderError(c, data, err)
		return
	}
	defer f.Close()

	ds, err := h.uploadSvc.Upload(c.Request.Context(), fh.Filename, f)
	if err != nil {
		h.renderError(c, data, err)
		return
	}

	data.Dataset = newDatasetView(ds)
	data.Success = "Dataset " + fh.Filename + " saved."
	h.render(c, http.StatusOK, data)
}
