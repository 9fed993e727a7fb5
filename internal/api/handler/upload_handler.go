package handler

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/staffdesk/auth-service/internal/core/ports"
)

// UploadHandler owns the file upload/download endpoints and the manual
// email-send endpoint. Role gating happens in the authorization middleware.
type UploadHandler struct {
	uploadDir string
	notifier  ports.Notifier
}

func NewUploadHandler(uploadDir string, notifier ports.Notifier) (*UploadHandler, error) {
	abs, err := filepath.Abs(uploadDir)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &UploadHandler{uploadDir: abs, notifier: notifier}, nil
}

// UploadFile stores a multipart file under the upload directory.
//
// @Summary      Upload a file
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "File to upload"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Router       /upload/file [post]
func (h *UploadHandler) UploadFile(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file")
	}

	filename := filepath.Base(fh.Filename)
	if filename == "." || filename == ".." || strings.Contains(filename, "..") {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid filename")
	}

	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(h.uploadDir, filename))
	if err != nil {
		return fmt.Errorf("create upload target: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("store upload: %w", err)
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "uploaded: " + filename})
}

// DownloadFile streams a previously uploaded file back to the caller.
//
// @Summary      Download a file
// @Tags         files
// @Produce      application/octet-stream
// @Param        filename  path  string  true  "File name"
// @Success      200
// @Failure      404  {object}  errorResponse
// @Router       /download/{filename} [get]
func (h *UploadHandler) DownloadFile(c echo.Context) error {
	filename := filepath.Base(c.Param("filename"))
	target := filepath.Join(h.uploadDir, filename)

	if _, err := os.Stat(target); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "file not found")
	}

	return c.Attachment(target, filename)
}

type sendEmailRequest struct {
	To      string `json:"to"      validate:"required,email"`
	Subject string `json:"subject" validate:"required"`
	Body    string `json:"body"    validate:"required"`
	HTML    bool   `json:"html"`
}

// SendEmail queues an arbitrary message for delivery (admin/manager only).
//
// @Summary      Send an email
// @Tags         email
// @Accept       json
// @Produce      json
// @Param        body  body      sendEmailRequest  true  "Message to send"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Router       /email/send [post]
func (h *UploadHandler) SendEmail(c echo.Context) error {
	var req sendEmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	h.notifier.Enqueue(ports.Notification{
		To:      req.To,
		Subject: req.Subject,
		Body:    req.Body,
		HTML:    req.HTML,
	})

	return c.JSON(http.StatusOK, messageResponse{Message: "email queued for " + req.To})
}
