package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"chart-advisor/internal/logger"
	"chart-advisor/internal/types"
	"chart-advisor/internal/uploads"
)

// formSlack leaves room for the non-file form fields on top of the image cap.
const formSlack = 1 << 20

const msgUnsupportedType = "Formato no soportado. Sube una imagen JPG, PNG, WEBP o GIF."

type pageData struct {
	Symbols []string
	Mode    types.Mode
	Symbol  string
	Result  *types.AnalysisResult
	Error   string
}

// formError is a request rejected before analysis.
type formError struct {
	status int
	msg    string
}

func (e *formError) Error() string { return e.msg }

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", pageData{
		Symbols: s.analyzer.Symbols(),
		Mode:    types.ModeImage,
	})
}

func (s *Server) handleIndexSubmit(c *gin.Context) {
	data := pageData{Symbols: s.analyzer.Symbols()}

	req, err := s.readRequest(c)
	data.Mode = req.Mode
	data.Symbol = req.Symbol
	if err != nil {
		var fe *formError
		errors.As(err, &fe)
		data.Error = fe.msg
		c.HTML(fe.status, "index.html", data)
		return
	}

	out := s.analyzer.Analyze(c.Request.Context(), req)
	data.Result = out.Result
	data.Error = out.Error
	c.HTML(http.StatusOK, "index.html", data)
}

func (s *Server) handleAnalyze(c *gin.Context) {
	req, err := s.readRequest(c)
	if err != nil {
		var fe *formError
		errors.As(err, &fe)
		c.JSON(fe.status, types.AnalysisOutcome{Error: fe.msg})
		return
	}

	out := s.analyzer.Analyze(c.Request.Context(), req)
	if out.Error != "" {
		c.JSON(http.StatusUnprocessableEntity, out)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleSymbols(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"symbols": s.analyzer.Symbols()})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleUpload(c *gin.Context) {
	f, err := s.uploads.Open(c.Param("filename"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}

func (s *Server) handleAsset(name, contentType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := assets.ReadFile(name)
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, contentType, b)
	}
}

// readRequest decodes the form into an analysis request. In image mode the
// upload is size-checked, sniffed and stored before analysis.
func (s *Server) readRequest(c *gin.Context) (types.AnalysisRequest, error) {
	limit := s.config.MaxUploadBytes
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+formSlack)

	if err := c.Request.ParseMultipartForm(limit); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return types.AnalysisRequest{}, s.tooLarge()
		}
		return types.AnalysisRequest{}, &formError{status: http.StatusBadRequest, msg: "Formulario invalido."}
	}

	req := types.AnalysisRequest{
		Mode:   types.Mode(strings.ToLower(strings.TrimSpace(c.PostForm("mode")))),
		Symbol: strings.TrimSpace(c.PostForm("symbol")),
	}
	if req.Mode == "" {
		req.Mode = types.ModeImage
	}
	if req.Mode != types.ModeImage {
		return req, nil
	}

	fh, err := c.FormFile("chart")
	if err != nil {
		// no file: analysis reports the missing upload
		return req, nil
	}
	f, err := fh.Open()
	if err != nil {
		return req, &formError{status: http.StatusBadRequest, msg: "No se pudo leer la imagen."}
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return req, &formError{status: http.StatusBadRequest, msg: "No se pudo leer la imagen."}
	}
	if int64(len(data)) > limit {
		return req, s.tooLarge()
	}
	if len(data) == 0 {
		return req, nil
	}

	mime, err := uploads.Sniff(data)
	if err != nil {
		logger.Warn(c.Request.Context(), "Rejected upload", "filename", fh.Filename, "error", err.Error())
		return req, &formError{status: http.StatusUnsupportedMediaType, msg: msgUnsupportedType}
	}

	filename, err := s.uploads.Save(fh.Filename, bytes.NewReader(data))
	if err != nil {
		logger.ErrorWithErr(c.Request.Context(), "Failed to store upload", err, "filename", fh.Filename)
		return req, &formError{status: http.StatusInternalServerError, msg: "No se pudo guardar la imagen."}
	}

	req.Filename = filename
	req.Image = data
	req.MimeType = mime
	return req, nil
}

func (s *Server) tooLarge() error {
	return &formError{
		status: http.StatusRequestEntityTooLarge,
		msg:    fmt.Sprintf("La imagen supera el limite de %d MB.", s.config.MaxUploadBytes>>20),
	}
}
