package e2e

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"
)

func doMultipartRequest(t *testing.T, ta *testApp, path, fieldName, fileName, contentType string, content []byte) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+fieldName+`"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create form part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write form part: %v", err)
	}
	writer.Close()

	req, err := http.NewRequest(http.MethodPost, path, &buf)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func TestUploadPDF_NoFile(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodPost, "/api/articles/pdf", "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)
}

func TestUploadPDF_WrongContentType(t *testing.T) {
	ta := setupApp(t)

	resp := doMultipartRequest(t, ta, "/api/articles/pdf", "file", "story.txt", "text/plain", []byte("plain text"))
	assertStatus(t, resp, http.StatusBadRequest)

	result := parseJSON(t, resp)
	errObj := result["error"].(map[string]interface{})
	if errObj["code"] != "VALIDATION_ERROR" {
		t.Errorf("expected error code VALIDATION_ERROR, got %v", errObj["code"])
	}
}

func TestUploadPDF_StorageUnconfigured(t *testing.T) {
	ta := setupApp(t)

	// Storage is not configured in the test app, so even a real PDF is
	// rejected with an upload error.
	resp := doMultipartRequest(t, ta, "/api/articles/pdf", "file", "story.pdf", "application/pdf", []byte("%PDF-1.4 not really"))
	assertStatus(t, resp, http.StatusBadGateway)

	result := parseJSON(t, resp)
	errObj := result["error"].(map[string]interface{})
	if errObj["code"] != "UPLOAD_FAILED" {
		t.Errorf("expected error code UPLOAD_FAILED, got %v", errObj["code"])
	}
}
