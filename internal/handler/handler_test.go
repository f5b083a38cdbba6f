package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/codequest/backend/internal/domain"
	"github.com/codequest/backend/pkg/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	mp4Header = []byte("\x00\x00\x00\x18ftypisom\x00\x00\x02\x00isomiso2avc1mp41\x00\x00\x00\x08free")
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// multipartRequest builds a multipart body with form fields and an optional file.
func multipartRequest(t *testing.T, method, target string, fields map[string]string, field, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestErrorRendersReasonAndDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, domain.ErrPolicyDenied(domain.ReasonPostQuota, "limit reached", map[string]interface{}{
		"dailyLimit": 1,
		"usedToday":  1,
	}))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "limit reached", body["error"])
	assert.Equal(t, domain.ReasonPostQuota, body["reason"])
	assert.Equal(t, float64(1), body["dailyLimit"])
	assert.Equal(t, float64(1), body["usedToday"])
}

func TestErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, domain.ErrInternal("failed to save", errors.New("connection reset")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "failed to save", body["error"])
	assert.NotContains(t, body, "detail")

	rec = httptest.NewRecorder()
	Error(rec, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestErrorExposesDetailInDevelopment(t *testing.T) {
	ExposeInternalErrors(true)
	defer ExposeInternalErrors(false)

	rec := httptest.NewRecorder()
	Error(rec, domain.ErrInternal("failed to save", errors.New("connection reset")))

	assert.Equal(t, "connection reset", decodeBody(t, rec)["detail"])
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "192.0.2.1", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", ClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.2")
	assert.Equal(t, "198.51.100.2", ClientIP(req))
}

func TestReadUpload(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		wantKind media.Kind
		wantErr  bool
	}{
		{name: "image", filename: "a.png", data: pngHeader, wantKind: media.KindImage},
		{name: "video", filename: "clip.mp4", data: mp4Header, wantKind: media.KindVideo},
		{name: "text renamed", filename: "clip.mp4", data: []byte("just text"), wantErr: true},
		{name: "extension mismatch", filename: "a.exe", data: pngHeader, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := multipartRequest(t, http.MethodPost, "/", nil, "file", tt.filename, tt.data)
			require.NoError(t, parseMultipart(httptest.NewRecorder(), req))

			up, err := readUpload(req, "file")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, up)
			assert.Equal(t, tt.wantKind, up.Kind)
			assert.Equal(t, tt.data, up.Data)
		})
	}
}

func TestReadUploadMissingFile(t *testing.T) {
	req := multipartRequest(t, http.MethodPost, "/", map[string]string{"caption": "hi"}, "", "", nil)
	require.NoError(t, parseMultipart(httptest.NewRecorder(), req))

	up, err := readUpload(req, "media")
	assert.NoError(t, err)
	assert.Nil(t, up)
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"go", "sql", "http"}, splitTags([]string{"go, sql", " http ", ""}))
	assert.Nil(t, splitTags(nil))
}

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthCheck(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(pingerFunc(func(context.Context) error { return nil })).
		Check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["database"])

	rec = httptest.NewRecorder()
	NewHealthHandler(pingerFunc(func(context.Context) error { return errors.New("down") })).
		Check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", decodeBody(t, rec)["status"])
}
