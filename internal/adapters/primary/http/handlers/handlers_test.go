package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"autostreamml/internal/adapters/primary/http/web"
	"autostreamml/internal/core/domain"
	ports "autostreamml/internal/core/ports/output"
	"autostreamml/internal/core/services"
	"autostreamml/internal/testutil"
)

const sampleCSV = "age,city,income\n23,Paris,31000\n35,Berlin,48000\n41,Paris,56000\n"

type fixture struct {
	slots    *testutil.MemorySlotStore
	profiler *testutil.MockProfiler
	trainer  *testutil.MockTrainer
	router   *gin.Engine
}

func setupRouter(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{
		slots:    testutil.NewMemorySlotStore(),
		profiler: new(testutil.MockProfiler),
		trainer:  new(testutil.MockTrainer),
	}
	store := services.NewArtifactStore(f.slots)
	h := New(
		"AutoStreamML",
		services.NewUploadService(store, 1<<20),
		services.NewProfilingService(store, f.profiler, ""),
		services.NewModellingService(store, f.trainer),
		services.NewDownloadService(store),
	)

	tmpl, err := web.Templates()
	require.NoError(t, err)

	f.router = gin.New()
	f.router.SetHTMLTemplate(tmpl)
	h.RegisterPages(f.router)
	h.RegisterRoutes(f.router.Group("/api/v1"))
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) get(path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	return f.do(req)
}

func (f *fixture) upload(t *testing.T, path, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "data.csv")
	require.NoError(t, err)
	_, _ = fw.Write([]byte(content))
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return f.do(req)
}

func (f *fixture) postForm(path, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return f.do(req)
}

func (f *fixture) postJSON(path, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return f.do(req)
}

func TestPage_DefaultsToUpload(t *testing.T) {
	f := setupRouter(t)

	w := f.get("/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "AutoStreamML")
	assert.Contains(t, w.Body.String(), "Upload Your Dataset")
}

func TestPages_WarnWithoutDataset(t *testing.T) {
	f := setupRouter(t)

	for _, path := range []string{"/?choice=Profiling", "/?choice=Modelling"} {
		w := f.get(path)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), warnNoDataset, path)
	}

	w := f.postForm("/modelling", "target=income")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), warnNoDataset)

	f.profiler.AssertNotCalled(t, "Profile", mock.Anything, mock.Anything, mock.Anything)
	f.trainer.AssertNotCalled(t, "Train", mock.Anything, mock.Anything, mock.Anything)
	assert.False(t, f.slots.Has(ports.SlotDataset))
	assert.False(t, f.slots.Has(ports.SlotModel))
}

func TestUploadPage_SavesAndRendersDataset(t *testing.T) {
	f := setupRouter(t)

	w := f.upload(t, "/upload", sampleCSV)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Berlin")
	assert.Contains(t, w.Body.String(), "3 rows")
	assert.True(t, f.slots.Has(ports.SlotDataset))

	w = f.get("/")
	assert.Contains(t, w.Body.String(), "Berlin")
}

func TestUploadPage_MissingFile(t *testing.T) {
	f := setupRouter(t)

	w := f.postForm("/upload", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, f.slots.Has(ports.SlotDataset))
}

func TestUploadPage_InvalidCSV(t *testing.T) {
	f := setupRouter(t)

	w := f.upload(t, "/upload", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid dataset")
}

func TestDatasetAPI_UploadAndGet(t *testing.T) {
	f := setupRouter(t)

	w := f.get("/api/v1/dataset")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.upload(t, "/api/v1/dataset", sampleCSV)
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.get("/api/v1/dataset")
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(3), resp["rows"])
	assert.Equal(t, []interface{}{"city"}, resp["categorical_columns"])
}

func TestDatasetAPI_LastUploadWins(t *testing.T) {
	f := setupRouter(t)

	f.upload(t, "/api/v1/dataset", sampleCSV)
	f.upload(t, "/api/v1/dataset", "x,y\n1,2\n")

	w := f.get("/api/v1/dataset")
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []interface{}{"x", "y"}, resp["header"])
}

func TestDatasetAPI_NoFile(t *testing.T) {
	f := setupRouter(t)
	w := f.postJSON("/api/v1/dataset", "{}")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfilingPage_RendersReport(t *testing.T) {
	f := setupRouter(t)
	f.upload(t, "/upload", sampleCSV)

	report := &domain.ProfileReport{
		Title:  services.DefaultReportTitle,
		Header: []string{"age", "city", "income"},
		Variables: []domain.VariableProfile{
			{Name: "age", Kind: domain.ColumnKindNumeric, Numeric: &domain.NumericSummary{
				Mean:      33,
				Histogram: []domain.HistogramBin{{Lower: 23, Upper: 41, Count: 3}},
			}},
			{Name: "city", Kind: domain.ColumnKindCategorical, Categorical: &domain.CategoricalSummary{
				TopValues: []domain.ValueCount{{Value: "Paris", Count: 2}},
			}},
		},
		Correlations: &domain.Correlations{Columns: []string{"age", "income"}, Matrix: [][]float64{{1, 0.9}, {0.9, 1}}},
		Alerts:       []domain.Alert{{Type: domain.AlertHighCorrelation, Column: "age", Message: "age is highly correlated with income"}},
	}
	f.profiler.On("Profile", mock.Anything, mock.Anything, services.DefaultReportTitle).Return(report, nil)

	w := f.get("/?choice=Profiling")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), services.DefaultReportTitle)
	assert.Contains(t, w.Body.String(), "age is highly correlated with income")
	assert.Contains(t, w.Body.String(), "0.9000")
}

func TestProfileAPI(t *testing.T) {
	f := setupRouter(t)

	w := f.get("/api/v1/profile")
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)

	f.upload(t, "/api/v1/dataset", sampleCSV)
	f.profiler.On("Profile", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("profiler crashed"))

	w = f.get("/api/v1/profile")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "profiler crashed")
}

func TestModellingPage_RunThenDownload(t *testing.T) {
	f := setupRouter(t)
	f.upload(t, "/upload", sampleCSV)
	f.trainer.On("Train", mock.Anything, mock.Anything, domain.TrainingRequest{
		Target:              "income",
		CategoricalFeatures: []string{"city"},
	}).Return(testutil.SampleTrainingResult(), nil)

	w := f.get("/?choice=Modelling")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Choose the Target Column")

	w = f.postForm("/modelling", "target=income")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Modeling completed")
	assert.Contains(t, w.Body.String(), "LinearRegression()")
	assert.True(t, f.slots.Has(ports.SlotModel))

	w = f.get("/?choice=Download")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/download/best_model.gob")

	w = f.get("/download/best_model.gob")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="best_model.gob"`, w.Header().Get("Content-Disposition"))
	assert.NotZero(t, w.Body.Len())
}

func TestModellingPage_TrainerFailureIsReported(t *testing.T) {
	f := setupRouter(t)
	f.upload(t, "/upload", sampleCSV)
	f.trainer.On("Train", mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrTargetNotNumeric)

	w := f.postForm("/modelling", "target=city")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "An error occurred during the modeling process")
	assert.Contains(t, w.Body.String(), "target column must be numeric")
	assert.False(t, f.slots.Has(ports.SlotModel))
}

func TestModellingPage_UnknownTarget(t *testing.T) {
	f := setupRouter(t)
	f.upload(t, "/upload", sampleCSV)

	w := f.postForm("/modelling", "target=nope")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.trainer.AssertNotCalled(t, "Train", mock.Anything, mock.Anything, mock.Anything)
}

func TestDownload_WithoutModelIsNotFound(t *testing.T) {
	f := setupRouter(t)

	for _, path := range []string{"/?choice=Download", "/download/best_model.gob", "/download/other.bin", "/api/v1/model", "/api/v1/model/download"} {
		w := f.get(path)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestModellingAPI(t *testing.T) {
	f := setupRouter(t)

	w := f.get("/api/v1/modelling/targets")
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)

	w = f.postJSON("/api/v1/modelling/runs", `{"target":"income"}`)
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)

	f.upload(t, "/api/v1/dataset", sampleCSV)

	w = f.get("/api/v1/modelling/targets")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"categorical"`)

	w = f.postJSON("/api/v1/modelling/runs", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.postJSON("/api/v1/modelling/runs", `{"target":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.trainer.On("Train", mock.Anything, mock.Anything, mock.Anything).Return(testutil.SampleTrainingResult(), nil)
	w = f.postJSON("/api/v1/modelling/runs", `{"target":"income"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"download_url":"/api/v1/model/download"`)

	w = f.get("/api/v1/model")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"lr"`)

	w = f.get("/api/v1/model/download")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotZero(t, w.Body.Len())
}

func TestModellingAPI_TrainerFailureIsBadGateway(t *testing.T) {
	f := setupRouter(t)
	f.upload(t, "/api/v1/dataset", sampleCSV)
	f.trainer.On("Train", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("out of memory"))

	w := f.postJSON("/api/v1/modelling/runs", `{"target":"income"}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "out of memory")
	assert.False(t, f.slots.Has(ports.SlotModel))
}

func TestModellingPage_FailureKeepsSetupTable(t *testing.T) {
	f := setupRouter(t)
	f.upload(t, "/upload", sampleCSV)
	failure := &domain.TrainingFailure{
		Setup: []domain.SetupRow{{Description: "Session id", Value: "4242"}},
		Err:   errors.New("every model failed to fit"),
	}
	f.trainer.On("Train", mock.Anything, mock.Anything, mock.Anything).Return(nil, failure)

	w := f.postForm("/modelling", "target=income")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "An error occurred during the modeling process")
	assert.Contains(t, w.Body.String(), "every model failed to fit")
	assert.Contains(t, w.Body.String(), "4242")
	assert.False(t, f.slots.Has(ports.SlotModel))
}

func TestUpload_OversizedBodyRejectedBeforeParsing(t *testing.T) {
	f := setupRouter(t)
	big := "x\n" + strings.Repeat("1\n", 600000)

	w := f.upload(t, "/api/v1/dataset", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "exceeds the size limit")

	w = f.upload(t, "/upload", big)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "exceeds the size limit")

	assert.False(t, f.slots.Has(ports.SlotDataset))
}

func TestUpload_StreamedBodyIsCapped(t *testing.T) {
	f := setupRouter(t)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "data.csv")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("x\n" + strings.Repeat("1\n", 600000)))
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest("POST", "/api/v1/dataset", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.ContentLength = -1

	w := f.do(req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.False(t, f.slots.Has(ports.SlotDataset))
}
