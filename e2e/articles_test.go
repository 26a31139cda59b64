package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/google/uuid"
)

func validPastedBody(text string) string {
	return fmt.Sprintf(`{
		"sourceKind": "pasted-text",
		"pastedText": "%s",
		"targetLanguage": "es",
		"level": "B1"
	}`, text)
}

func validURLBody(url string) string {
	return fmt.Sprintf(`{
		"sourceKind": "url",
		"sourceRef": "%s",
		"targetLanguage": "fr",
		"level": "A2"
	}`, url)
}

func TestSubmit_PastedText(t *testing.T) {
	ta := setupApp(t)

	body := validPastedBody("El sol brillaba sobre la ciudad mientras la gente caminaba por las calles. " + uuid.New().String())
	resp, err := doRequest(ta.app, http.MethodPost, "/api/articles/", body, nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusAccepted)

	result := parseJSON(t, resp)
	if result["articleId"] == nil || result["articleId"] == "" {
		t.Error("expected 'articleId' in response")
	}
	if result["status"] != "queued" {
		t.Errorf("expected status 'queued', got %v", result["status"])
	}
}

func TestSubmit_Idempotent(t *testing.T) {
	ta := setupApp(t)

	// Unique text so this test never collides with a previous run
	body := validPastedBody("Una historia que solo existe en esta prueba. " + uuid.New().String())

	resp, err := doRequest(ta.app, http.MethodPost, "/api/articles/", body, nil)
	if err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusAccepted)
	first := parseJSON(t, resp)

	resp, err = doRequest(ta.app, http.MethodPost, "/api/articles/", body, nil)
	if err != nil {
		t.Fatalf("second request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusAccepted)
	second := parseJSON(t, resp)

	if first["articleId"] != second["articleId"] {
		t.Errorf("duplicate submission created a new job: %v vs %v", first["articleId"], second["articleId"])
	}
}

func TestSubmit_ConcurrentDuplicatesShareOneJob(t *testing.T) {
	ta := setupApp(t)

	body := validPastedBody("Una carrera de envios simultaneos del mismo texto. " + uuid.New().String())

	const submitters = 8
	ids := make([]string, submitters)
	var wg sync.WaitGroup
	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := doRequest(ta.app, http.MethodPost, "/api/articles/", body, nil)
			if err != nil {
				t.Errorf("request %d failed: %v", i, err)
				return
			}
			if resp.StatusCode != http.StatusAccepted {
				t.Errorf("request %d status = %d", i, resp.StatusCode)
				return
			}
			defer resp.Body.Close()
			var result struct {
				ArticleID string `json:"articleId"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
				t.Errorf("request %d returned unparseable body: %v", i, err)
				return
			}
			ids[i] = result.ArticleID
		}(i)
	}
	wg.Wait()

	for i := 1; i < submitters; i++ {
		if ids[i] != ids[0] {
			t.Errorf("submission %d created job %s, submission 0 created %s", i, ids[i], ids[0])
		}
	}
}

func TestSubmit_DifferentLevelIsNewJob(t *testing.T) {
	ta := setupApp(t)

	text := "Otro texto irrepetible para esta prueba. " + uuid.New().String()
	b1 := fmt.Sprintf(`{"sourceKind":"pasted-text","pastedText":"%s","targetLanguage":"es","level":"B1"}`, text)
	c1 := fmt.Sprintf(`{"sourceKind":"pasted-text","pastedText":"%s","targetLanguage":"es","level":"C1"}`, text)

	resp, err := doRequest(ta.app, http.MethodPost, "/api/articles/", b1, nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	first := parseJSON(t, resp)

	resp, err = doRequest(ta.app, http.MethodPost, "/api/articles/", c1, nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	second := parseJSON(t, resp)

	if first["articleId"] == second["articleId"] {
		t.Error("submissions at different levels must be separate jobs")
	}
}

func TestSubmit_InvalidBody(t *testing.T) {
	ta := setupApp(t)

	cases := []struct {
		name string
		body string
	}{
		{"missing level", `{"sourceKind":"pasted-text","pastedText":"hola","targetLanguage":"es"}`},
		{"bad level", `{"sourceKind":"pasted-text","pastedText":"hola","targetLanguage":"es","level":"Z9"}`},
		{"bad source kind", `{"sourceKind":"carrier-pigeon","sourceRef":"x","targetLanguage":"es","level":"B1"}`},
		{"url without sourceRef", `{"sourceKind":"url","targetLanguage":"es","level":"B1"}`},
		{"pasted without text", `{"sourceKind":"pasted-text","targetLanguage":"es","level":"B1"}`},
		{"relative url", validURLBody("/articles/42")},
		{"ftp url", validURLBody("ftp://example.com/story")},
		{"not json", `this is not json`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := doRequest(ta.app, http.MethodPost, "/api/articles/", tc.body, nil)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			assertStatus(t, resp, http.StatusBadRequest)
		})
	}
}

func TestStatus_Queued(t *testing.T) {
	ta := setupApp(t)

	body := validPastedBody("Texto de prueba para consultar su estado. " + uuid.New().String())
	resp, err := doRequest(ta.app, http.MethodPost, "/api/articles/", body, nil)
	if err != nil {
		t.Fatalf("submit request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusAccepted)
	articleID := parseJSON(t, resp)["articleId"].(string)

	resp, err = doRequest(ta.app, http.MethodGet, "/api/articles/"+articleID+"/status", "", nil)
	if err != nil {
		t.Fatalf("status request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	if result["articleId"] != articleID {
		t.Errorf("expected articleId %s, got %v", articleID, result["articleId"])
	}
	if result["status"] != "queued" {
		t.Errorf("expected status 'queued', got %v", result["status"])
	}
	// no chunks exist yet, so no progress is reported
	if result["progress"] != nil {
		t.Errorf("expected null progress before translation, got %v", result["progress"])
	}
}

func TestStatus_NotFound(t *testing.T) {
	ta := setupApp(t)

	fakeID := uuid.New().String()
	resp, err := doRequest(ta.app, http.MethodGet, "/api/articles/"+fakeID+"/status", "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusNotFound)

	result := parseJSON(t, resp)
	errObj := result["error"].(map[string]interface{})
	if errObj["code"] != "NOT_FOUND" {
		t.Errorf("expected error code NOT_FOUND, got %v", errObj["code"])
	}
}

func TestResult_NotCompleted(t *testing.T) {
	ta := setupApp(t)

	body := validPastedBody("Texto cuyo resultado se pide demasiado pronto. " + uuid.New().String())
	resp, err := doRequest(ta.app, http.MethodPost, "/api/articles/", body, nil)
	if err != nil {
		t.Fatalf("submit request failed: %v", err)
	}
	articleID := parseJSON(t, resp)["articleId"].(string)

	resp, err = doRequest(ta.app, http.MethodGet, "/api/articles/"+articleID, "", nil)
	if err != nil {
		t.Fatalf("result request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)
}

func TestResult_NotFound(t *testing.T) {
	ta := setupApp(t)

	fakeID := uuid.New().String()
	resp, err := doRequest(ta.app, http.MethodGet, "/api/articles/"+fakeID, "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusNotFound)
}
