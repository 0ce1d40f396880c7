package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"autostreamml/internal/adapters/primary/http/dto"
	"autostreamml/internal/core/domain"
)

func (h *Handler) ListTargets(c *gin.Context) {
	cols, err := h.modellingSvc.Targets(c.Request.Context())
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TargetsResponse{Targets: dto.ToColumnResponses(cols)})
}

func (h *Handler) RunModelling(c *gin.Context) {
	var req dto.RunModellingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	artifact, err := h.modellingSvc.Run(c.Request.Context(), req.Target)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToModelResponse(&artifact.Metadata, h.apiBase))
}

func (h *Handler) ModellingForm(c *gin.Context) {
	data := h.page(ChoiceModelling)
	targets, err := h.modellingSvc.Targets(c.Request.Context())
	if err != nil {
		h.renderError(c, data, err)
		return
	}

	data.Targets = targets
	h.render(c, http.StatusOK, data)
}

// ModellingPage runs training for the posted target. A training failure is
// reported on the page with whatever setup table was built before it, and
// leaves the stored model as it was.
func (h *Handler) ModellingPage(c *gin.Context) {
	data := h.page(ChoiceModelling)
	ctx := c.Request.Context()

	targets, err := h.modellingSvc.Targets(ctx)
	if err != nil {
		h.renderError(c, data, err)
		return
	}
	data.Targets = targets
	data.Target = c.PostForm("target")

	artifact, err := h.modellingSvc.Run(ctx, data.Target)
	if err != nil {
		if domain.KindOf(err) == domain.KindExternalCall {
			data.Error = "An error occurred during the modeling process: " + err.Error()
			data.Setup = domain.SetupOf(err)
			h.render(c, http.StatusOK, data)
			return
		}
		h.renderError(c, data, err)
		return
	}

	data.Model = artifact
	data.Success = "Modeling completed and best model saved as '" + domain.ModelFileName + "'."
	h.render(c, http.StatusOK, data)
}
