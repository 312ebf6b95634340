package handler

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/faculty-leave-api/pkg/errors"
	"github.com/noah-isme/faculty-leave-api/pkg/response"
)

type documentOpener interface {
	Open(token string) (*os.File, string, error)
}

// DocumentHandler redeems signed download links. Routes using it are not behind JWT;
// the token itself is the credential.
type DocumentHandler struct {
	documents documentOpener
}

// NewDocumentHandler constructs the handler.
func NewDocumentHandler(documents documentOpener) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// Download godoc
// @Summary Download a supporting document
// @Tags Documents
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /documents/{token} [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	file, name, err := h.documents.Open(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read document"))
		return
	}
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), contentType, file, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", name),
	})
}
