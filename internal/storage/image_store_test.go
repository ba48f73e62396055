package storage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-foodhub-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

// fileHeader builds a multipart file header the way gin receives it
func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["image"][0]
}

func TestSaveStoresImage(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalImageStore(dir, 0)
	require.NoError(t, err)
	store.now = func() time.Time { return time.UnixMilli(1700000000000) }

	ref, err := store.Save(fileHeader(t, "Burger.PNG", pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "uploads/image-1700000000000-"), ref)
	assert.True(t, strings.HasSuffix(ref, ".png"), ref)

	stored, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(ref, "uploads/")))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)
}

func TestSaveRejectsInvalidUploads(t *testing.T) {
	store, err := NewLocalImageStore(t.TempDir(), 64)
	require.NoError(t, err)

	testCases := []struct {
		name     string
		filename string
		content  []byte
	}{
		{name: "wrong extension", filename: "notes.gif", content: pngHeader},
		{name: "text disguised as image", filename: "photo.jpg", content: []byte("definitely not an image")},
		{name: "too large", filename: "big.png", content: append(append([]byte{}, pngHeader...), make([]byte, 128)...)},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Save(fileHeader(t, tt.filename, tt.content))
			require.Error(t, err)
			assert.True(t, models.HasCode(err, models.ErrValidationFailed), "got %v", err)
		})
	}

	_, err = store.Save(nil)
	assert.True(t, models.HasCode(err, models.ErrValidationFailed))
}
