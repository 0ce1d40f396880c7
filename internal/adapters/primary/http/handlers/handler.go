package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"autostreamml/internal/adapters/primary/http/web"
	"autostreamml/internal/core/services"
)

// previewRows bounds the dataset rows rendered after an upload.
const previewRows = 100

type Handler struct {
	title        string
	apiBase      string
	uploadSvc    *services.UploadService
	profilingSvc *services.ProfilingService
	modellingSvc *services.ModellingService
	downloadSvc  *services.DownloadService
}

func New(
	title string,
	uploadSvc *services.UploadService,
	profilingSvc *services.ProfilingService,
	modellingSvc *services.ModellingService,
	downloadSvc *services.DownloadService,
) *Handler {
	return &Handler{
		title:        title,
		uploadSvc:    uploadSvc,
		profilingSvc: profilingSvc,
		modellingSvc: modellingSvc,
		downloadSvc:  downloadSvc,
	}
}

// RegisterRoutes mounts the JSON API on r.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	h.apiBase = r.BasePath()

	// Dataset
	r.POST("/dataset", h.UploadDataset)
	r.GET("/dataset", h.GetDataset)

	// Profiling
	r.GET("/profile", h.GetProfile)

	// Modelling
	r.GET("/modelling/targets", h.ListTargets)
	r.POST("/modelling/runs", h.RunModelling)

	// Model artifact
	r.GET("/model", h.GetModel)
	r.GET("/model/download", h.DownloadModel)
}

// RegisterPages mounts the HTML surface on the engine root.
func (h *Handler) RegisterPages(r *gin.Engine) {
	r.StaticFS("/static", http.FS(web.Static()))

	r.GET("/", h.Page)
	r.POST("/upload", h.UploadPage)
	r.POST("/modelling", h.ModellingPage)
	r.GET("/download/:file", h.DownloadPage)
}
