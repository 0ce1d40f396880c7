package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetProfile(c *gin.Context) {
	report, err := h.profilingSvc.Profile(c.Request.Context())
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *Handler) ProfilingPage(c *gin.Context) {
	data := h.page(ChoiceProfiling)
	report, err := h.profilingSvc.Profile(c.Request.Context())
	if err != nil {
		h.renderError(c, data, err)
		return
	}

	data.Report = report
	h.render(c, http.StatusOK, data)
}
