package api

import (
	"bytes"
	"encoding/json"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/docfmt/api/handler"
	"github.com/tsawler/docfmt/api/middleware"
	"github.com/tsawler/docfmt/api/model"
	"github.com/tsawler/docfmt/internal/cache"
	"github.com/tsawler/docfmt/internal/logging"
	"github.com/tsawler/docfmt/internal/rulestore"
	"github.com/tsawler/docfmt/internal/services"
	"github.com/tsawler/docfmt/internal/testdocx"
)

type apiTestEnv struct {
	Router *gin.Engine
	Store  *rulestore.FileStore
}

func setupAPITestEnv(t *testing.T) *apiTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := rulestore.NewFileStore(t.TempDir())
	require.NoError(t, err)
	c, err := cache.New(cache.Config{Type: cache.TypeMemory, DefaultTTL: time.Hour, CleanupInterval: time.Minute})
	require.NoError(t, err)

	logger := logging.Discard()
	svc := services.NewFormattingService(store,
		services.WithLogger(logger),
		services.WithCache(c, time.Hour),
		services.WithClock(func() time.Time { return time.Date(2024, 5, 3, 14, 5, 0, 0, time.UTC) }),
	)
	h := handler.NewFormattingHandler(svc, 1<<20, logger)
	return &apiTestEnv{Router: SetupRouter(h, logger), Store: store}
}

func arialDoc() []byte {
	return testdocx.Doc{
		Body:   testdocx.P("", testdocx.R(testdocx.Font("Arial", 11), "Hello world")),
		Styles: testdocx.DefaultStyles,
	}.Bytes()
}

func uploadRequest(t *testing.T, path, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func (env *apiTestEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) model.Response {
	t.Helper()
	var resp model.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestWelcomeAndHealth(t *testing.T) {
	env := setupAPITestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, WelcomeText, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(middleware.TraceIDHeader))

	rec = env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCors(t *testing.T) {
	env := setupAPITestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, BasePath+"/check-doc", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := env.do(req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}

func TestGetRules_NotFound(t *testing.T) {
	env := setupAPITestEnv(t)

	req := httptest.NewRequest(http.MethodGet, BasePath+"/get-rules", nil)
	req.Header.Set(middleware.TraceIDHeader, "trace-1")
	rec := env.do(req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	resp := decodeResponse(t, rec)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "trace-1", resp.TraceID)
}

func TestSetupAndGetRules(t *testing.T) {
	env := setupAPITestEnv(t)

	record := `{"bodyFont": "Times New Roman", "bodyFontSize": [12, 14]}`
	rec := env.do(httptest.NewRequest(http.MethodPost, BasePath+"/setup-rules", strings.NewReader(record)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "rules saved", decodeResponse(t, rec).Message)

	rec = env.do(httptest.NewRequest(http.MethodGet, BasePath+"/get-rules", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, record, rec.Body.String())

	// A record wrapped in a JSON string is accepted too.
	wrapped, err := json.Marshal(`{"alignment": "both"}`)
	require.NoError(t, err)
	rec = env.do(httptest.NewRequest(http.MethodPost, BasePath+"/setup-rules?name=memo", bytes.NewReader(wrapped)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(httptest.NewRequest(http.MethodGet, BasePath+"/get-rules?name=memo", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"alignment": "both"}`, rec.Body.String())

	rec = env.do(httptest.NewRequest(http.MethodGet, BasePath+"/rules", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"code":0,"message":"success","data":{"rule_sets":["current","memo"]}}`, rec.Body.String())
}

func TestSetupRules_Rejects(t *testing.T) {
	env := setupAPITestEnv(t)

	tests := map[string]string{
		"empty body":   "",
		"empty object": "{}",
		"empty string": `"{}"`,
		"bad range":    `{"bodyFontSize": {"min": 14, "max": 10}}`,
		"not a record": `[1, 2]`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			rec := env.do(httptest.NewRequest(http.MethodPost, BasePath+"/setup-rules", strings.NewReader(body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	rec := env.do(httptest.NewRequest(http.MethodPost, BasePath+"/setup-rules?name=../x", strings.NewReader(`{"alignment":"both"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckDoc(t *testing.T) {
	env := setupAPITestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodPost, BasePath+"/setup-rules",
		strings.NewReader(`{"bodyFont": "Times New Roman", "bodyFontSize": [12, 14]}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(uploadRequest(t, BasePath+"/check-doc", "report.docx", arialDoc()))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, handler.MIMEDocx, rec.Header().Get("Content-Type"))
	assert.Equal(t, "2", rec.Header().Get("X-Violations"))

	_, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "report (checked 2024.05.03 14-05).docx", params["filename"])

	comments, err := testdocx.ReadPart(rec.Body.Bytes(), "word/comments.xml")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(comments, "<w:comment "))
}

func TestCheckDoc_Errors(t *testing.T) {
	env := setupAPITestEnv(t)
	data := arialDoc()

	tests := []struct {
		name     string
		filename string
		data     []byte
		code     int
	}{
		{"no file", "", nil, http.StatusBadRequest},
		{"pdf", "scan.pdf", []byte("%PDF-1.7 ..."), http.StatusBadRequest},
		{"text", "notes.txt", []byte("hello"), http.StatusBadRequest},
		{"truncated", "report.docx", data[:len(data)/2], http.StatusBadRequest},
		{"too large", "big.docx", bytes.Repeat([]byte("x"), 2<<20), http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(uploadRequest(t, BasePath+"/check-doc", tt.filename, tt.data))
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decodeResponse(t, rec).Code)
		})
	}
}

func TestCheckDoc_Integrity(t *testing.T) {
	env := setupAPITestEnv(t)
	data := testdocx.Doc{
		Body: testdocx.P(`<w:pStyle w:val="A"/>`, testdocx.R("", "x")),
		Styles: `<w:style w:type="paragraph" w:styleId="A"><w:basedOn w:val="B"/></w:style>` +
			`<w:style w:type="paragraph" w:styleId="B"><w:basedOn w:val="A"/></w:style>`,
	}.Bytes()

	rec := env.do(uploadRequest(t, BasePath+"/check-doc", "cycle.docx", data))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
}

func TestCheckReport(t *testing.T) {
	env := setupAPITestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodPost, BasePath+"/setup-rules",
		strings.NewReader("bodyFont: Times New Roman\nbodyFontSize: [12, 14]\n")))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(uploadRequest(t, BasePath+"/check-doc/report", "report.docx", arialDoc()))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			Total      int `json:"total"`
			Violations []struct {
				Element  string `json:"element"`
				Category string `json:"category"`
				Expected string `json:"expected"`
				Actual   string `json:"actual"`
			} `json:"violations"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.Total)
	require.Len(t, resp.Data.Violations, 2)
	assert.Equal(t, "paragraph 1, run 1", resp.Data.Violations[0].Element)
	assert.Equal(t, "bodyFont", resp.Data.Violations[0].Category)
	assert.Equal(t, "Arial", resp.Data.Violations[0].Actual)
}

func TestRulesFromFile(t *testing.T) {
	env := setupAPITestEnv(t)

	rec := env.do(uploadRequest(t, BasePath+"/get-rules-from-file", "sample.docx", arialDoc()))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var record map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, "Arial", record["bodyFont"])
	assert.Equal(t, 11.0, record["bodyFontSize"])

	// The extracted record can be stored as is.
	rec = env.do(httptest.NewRequest(http.MethodPost, BasePath+"/setup-rules", bytes.NewReader(rec.Body.Bytes())))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}
