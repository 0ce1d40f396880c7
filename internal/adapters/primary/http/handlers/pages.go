package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"autostreamml/internal/adapters/primary/http/web"
	"autostreamml/internal/core/domain"
)

const (
	ChoiceUpload    = "Upload"
	ChoiceProfiling = "Profiling"
	ChoiceModelling = "Modelling"
	ChoiceDownload  = "Download"

	warnNoDataset = "Please upload a dataset first."
)

var choices = []string{ChoiceUpload, ChoiceProfiling, ChoiceModelling, ChoiceDownload}

type datasetView struct {
	Rows      int
	Columns   int
	Truncated bool
	Header    []string
	Preview   [][]string
}

func newDatasetView(ds *domain.Dataset) *datasetView {
	return &datasetView{
		Rows:      ds.NumRows(),
		Columns:   ds.NumColumns(),
		Truncated: ds.NumRows() > previewRows,
		Header:    ds.ColumnNames(),
		Preview:   ds.Head(previewRows),
	}
}

type pageData struct {
	Title     string
	Choice    string
	Choices   []string
	Warning   string
	Error     string
	Success   string
	Dataset   *datasetView
	Report    *domain.ProfileReport
	Targets   []domain.Column
	Target    string
	Setup     []domain.SetupRow
	Model     *domain.ModelArtifact
	ModelFile string
}

func (h *Handler) page(choice string) *pageData {
	return &pageData{
		Title:     h.title,
		Choice:    choice,
		Choices:   choices,
		ModelFile: domain.ModelFileName,
	}
}

func (h *Handler) render(c *gin.Context, status int, data *pageData) {
	c.HTML(status, web.PageTemplate, data)
}

// renderError renders data with err as a banner. Missing preconditions are
// warnings; a missing model and invalid input are hard failures.
func (h *Handler) renderError(c *gin.Context, data *pageData, err error) {
	switch domain.KindOf(err) {
	case domain.KindMissingPrecondition:
		if errors.Is(err, domain.ErrModelNotFound) {
			data.Error = err.Error()
			h.render(c, http.StatusNotFound, data)
			return
		}
		data.Warning = warnNoDataset
		h.render(c, http.StatusOK, data)
	case domain.KindInvalidInput:
		data.Error = err.Error()
		h.render(c, http.StatusBadRequest, data)
	default:
		log.WithError(err).WithField("choice", data.Choice).Error("page failed")
		data.Error = err.Error()
		h.render(c, http.StatusInternalServerError, data)
	}
}

// Page renders the mode picked in the navigation.
func (h *Handler) Page(c *gin.Context) {
	switch c.DefaultQuery("choice", ChoiceUpload) {
	case ChoiceProfiling:
		h.ProfilingPage(c)
	case ChoiceModelling:
		h.ModellingForm(c)
	case ChoiceDownload:
		h.DownloadInfoPage(c)
	default:
		h.UploadForm(c)
	}
}
