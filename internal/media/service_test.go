package media

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func multipartUpload(t *testing.T, fieldName, fileName, content string) (multipart.File, *multipart.FileHeader) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(fieldName, fileName)
	require.NoError(t, err)
	_, err = io.Copy(part, strings.NewReader(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	file, header, err := req.FormFile(fieldName)
	require.NoError(t, err)
	return file, header
}

func TestStoreAndRemove(t *testing.T) {
	svc, err := NewService(t.TempDir(), "/media/", 1<<20)
	require.NoError(t, err)

	file, header := multipartUpload(t, "file", "breaker.PNG", "fake image bytes")
	defer file.Close()

	upload, err := svc.Store(file, header)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(upload.FileName, ".png"))
	require.Equal(t, "/media/"+upload.FileName, upload.URL)
	require.Equal(t, int64(len("fake image bytes")), upload.Size)

	stored, err := os.ReadFile(filepath.Join(svc.Dir, upload.FileName))
	require.NoError(t, err)
	require.Equal(t, "fake image bytes", string(stored))

	require.NoError(t, svc.Remove(upload.FileName))
	_, err = os.Stat(filepath.Join(svc.Dir, upload.FileName))
	require.True(t, os.IsNotExist(err))
}

func TestStoreRejectsUnsupportedExtension(t *testing.T) {
	svc, err := NewService(t.TempDir(), "/media", 1<<20)
	require.NoError(t, err)

	file, header := multipartUpload(t, "file", "malware.exe", "nope")
	defer file.Close()

	_, err = svc.Store(file, header)
	require.Error(t, err)
}

func TestStoreRejectsOversize(t *testing.T) {
	svc, err := NewService(t.TempDir(), "/media", 4)
	require.NoError(t, err)

	file, header := multipartUpload(t, "file", "big.jpg", "more than four bytes")
	defer file.Close()

	_, err = svc.Store(file, header)
	require.Error(t, err)
}

func TestRemoveIgnoresMissingFile(t *testing.T) {
	svc, err := NewService(t.TempDir(), "/media", 1<<20)
	require.NoError(t, err)
	require.NoError(t, svc.Remove("does-not-exist.png"))
}

func TestRemoveRejectsTraversal(t *testing.T) {
	svc, err := NewService(t.TempDir(), "/media", 1<<20)
	require.NoError(t, err)
	require.Error(t, svc.Remove(".."))
}
