package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"zapp_server/internal/ai"
	"zapp_server/internal/gist"
	"zapp_server/internal/preview"
	"zapp_server/internal/projects"
	"zapp_server/internal/types"
)

// APIHandler holds dependencies for API endpoints.
type APIHandler struct {
	generator *ai.Generator
	projects  projects.Store
	gists     *gist.Client
	log       *logrus.Entry
}

// NewAPIHandler initializes a new API handler with its dependencies.
func NewAPIHandler(generator *ai.Generator, store projects.Store, gists *gist.Client, log *logrus.Entry) *APIHandler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &APIHandler{
		generator: generator,
		projects:  store,
		gists:     gists,
		log:       log.WithField("component", "api"),
	}
}

// previewHTMLRequest carries browser-ready component code.
type previewHTMLRequest struct {
	Code string `json:"code"`
}

// --- API Handlers ---

// POST /api/generate
func (h *APIHandler) Generate(c *gin.Context) {
	var req types.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	mode := "initial"
	if req.VirtualFilesystem != nil {
		mode = "modify"
	}
	log := h.log.WithFields(logrus.Fields{"stack": req.Stack, "mode": mode, "files": len(req.VirtualFilesystem)})
	log.Info("Received generation request")

	res, err := h.generator.Generate(c.Request.Context(), ai.GenerateInput{
		Prompt:     req.Prompt,
		Stack:      req.Stack,
		Filesystem: req.VirtualFilesystem,
		ActiveFile: deref(req.ActiveFile),
		Images:     req.Images,
	})
	if err != nil {
		h.fail(c, log, err)
		return
	}

	log.WithField("changes", len(res.Changes)).Infof("Generation successful, active file %q", res.ActiveFile)
	c.JSON(http.StatusOK, toResponse(res))
}

// POST /api/generate/preview
func (h *APIHandler) Preview(c *gin.Context) {
	var req types.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	log := h.log.WithFields(logrus.Fields{"stack": req.Stack, "active_file": deref(req.ActiveFile)})
	res, err := h.generator.Preview(c.Request.Context(), ai.PreviewInput{
		Stack:      req.Stack,
		Filesystem: req.VirtualFilesystem,
		ActiveFile: deref(req.ActiveFile),
	})
	if err != nil {
		h.fail(c, log, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(res))
}

// POST /api/generate/single
func (h *APIHandler) GenerateSingle(c *gin.Context) {
	var req types.SingleFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	in := ai.SingleFileInput{Prompt: req.Prompt, Stack: req.Stack}
	if req.Code != nil {
		in.Code = *req.Code
	}
	log := h.log.WithFields(logrus.Fields{"stack": req.Stack, "mode": "single", "modify": !in.Code.IsZero()})
	log.Info("Received single-file generation request")

	code, err := h.generator.GenerateSingleFile(c.Request.Context(), in)
	if err != nil {
		h.fail(c, log, err)
		return
	}
	c.JSON(http.StatusOK, types.SingleFileResponse{Code: code})
}

// POST /api/create-gist
func (h *APIHandler) CreateGist(c *gin.Context) {
	var req types.GistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	id, err := h.gists.Create(c.Request.Context(), req.Code)
	if err != nil {
		h.fail(c, h.log.WithField("op", "create-gist"), err)
		return
	}
	c.JSON(http.StatusOK, types.GistResponse{
		GistID:     id,
		DartPadURL: preview.DartPadURL(id, c.Query("theme") == "dark"),
	})
}

// POST /api/preview/react-native
func (h *APIHandler) ReactNativePreview(c *gin.Context) {
	var req previewHTMLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	doc, err := preview.ReactNativeHTML(req.Code)
	if err != nil {
		h.fail(c, h.log.WithField("op", "preview-html"), err)
		return
	}
	if doc == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing code"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(doc))
}

// fail maps err to a status and writes the error body. Validation errors are
// the caller's fault; everything else (model, network, parse, storage) is a
// server error carrying the wrapped message.
func (h *APIHandler) fail(c *gin.Context, log *logrus.Entry, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, ai.ErrInvalidInput) || errors.Is(err, gist.ErrMissingCode) || errors.Is(err, projects.ErrInvalidProject) {
		status = http.StatusBadRequest
	}
	if status >= http.StatusInternalServerError {
		log.Errorf("Request failed: %v", err)
	} else {
		log.Warnf("Rejected request: %v", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func toResponse(res *ai.GenerateResult) types.GenerateResponse {
	out := types.GenerateResponse{
		VirtualFilesystem:     res.Filesystem,
		ActiveFilePreviewCode: res.PreviewCode,
		Changes:               res.Changes,
	}
	if res.ActiveFile != "" {
		active := res.ActiveFile
		out.ActiveFile = &active
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
