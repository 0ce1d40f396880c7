package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"autostreamml/internal/adapters/primary/http/dto"
	"autostreamml/internal/core/domain"
)

func (h *Handler) GetModel(c *gin.Context) {
	meta, err := h.downloadSvc.Metadata(c.Request.Context())
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToModelResponse(meta, h.apiBase))
}

func (h *Handler) DownloadModel(c *gin.Context) {
	model, err := h.downloadSvc.Open(c.Request.Context())
	if err != nil {
		mapDomainError(c, err)
		return
	}

	sendModel(c, model)
}

// DownloadInfoPage shows the stored model. Without one it is a 404 page.
func (h *Handler) DownloadInfoPage(c *gin.Context) {
	data := h.page(ChoiceDownload)
	meta, err := h.downloadSvc.Metadata(c.Request.Context())
	if err != nil {
		h.renderError(c, data, err)
		return
	}

	data.Model = &domain.ModelArtifact{Metadata: *meta}
	h.render(c, http.StatusOK, data)
}

func (h *Handler) DownloadPage(c *gin.Context) {
	if c.Param("file") != domain.ModelFileName {
		h.renderError(c, h.page(ChoiceDownload), domain.ErrModelNotFound)
		return
	}

	model, err := h.downloadSvc.Open(c.Request.Context())
	if err != nil {
		h.renderError(c, h.page(ChoiceDownload), err)
		return
	}

	sendModel(c, model)
}

func sendModel(c *gin.Context, model *domain.ModelDownload) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", model.FileName))
	c.Data(http.StatusOK, "application/octet-stream", model.Data)
}
