package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/faculty-leave-api/pkg/errors"
)

type documentOpenerMock struct {
	path string
	name string
	err  error
}

func (m *documentOpenerMock) Open(token string) (*os.File, string, error) {
	if m.err != nil {
		return nil, "", m.err
	}
	f, err := os.Open(m.path)
	return f, m.name, err
}

func TestDocumentHandlerDownload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "certificate.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 medical"), 0o600))

	h := NewDocumentHandler(&documentOpenerMock{path: path, name: "certificate.pdf"})
	c, w := newGinContext(http.MethodGet, "/documents/tok", nil)
	c.Params = gin.Params{{Key: "token", Value: "tok"}}

	h.Download(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="certificate.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, "%PDF-1.4 medical", w.Body.String())
}

func TestDocumentHandlerUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.zzz")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	h := NewDocumentHandler(&documentOpenerMock{path: path, name: "note.zzz"})
	c, w := newGinContext(http.MethodGet, "/documents/tok", nil)

	h.Download(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
}

func TestDocumentHandlerRejectsBadToken(t *testing.T) {
	h := NewDocumentHandler(&documentOpenerMock{err: appErrors.Clone(appErrors.ErrForbidden, "document link expired")})
	c, w := newGinContext(http.MethodGet, "/documents/old", nil)

	h.Download(c)

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "document link expired")
}
