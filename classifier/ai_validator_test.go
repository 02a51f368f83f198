package classifier_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/machinecraft/inventory_backend/classifier"
	"github.com/machinecraft/inventory_backend/config"
)

// fakeCompletionServer answers every chat completion request with the given
// message content, shaped like the OpenAI API.
func fakeCompletionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": time.Now().Unix(),
			"model":   "gpt-4",
			"choices": []map[string]interface{}{
				{
					"index": 0,
					"message": map[string]interface{}{
						"role":    "assistant",
						"content": content,
					},
					"finish_reason": "stop",
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func testSettings(baseURL string) *config.PipelineSettings {
	return &config.PipelineSettings{
		OpenAIAPIKey:  "test-key",
		OpenAIModel:   "gpt-4",
		OpenAIBaseURL: baseURL + "/v1",
		AITimeout:     5 * time.Second,
	}
}

func TestValidator_AppliesModelAnswer(t *testing.T) {
	reply := `Here is the validated record:
{"part_number":"DSBC-32-100","description":"Pneumatic cylinder 32mm bore 100mm stroke","brand":"FESTO","price":4500,"category":"Pneumatic Components","confidence":"high","notes":"standard catalog item"}`
	srv := fakeCompletionServer(t, reply)
	defer srv.Close()

	v := classifier.NewValidator(testSettings(srv.URL), classifier.New(nil))
	if v == nil {
		t.Fatal("validator should be constructed when an API key is set")
	}

	result, validated := v.Validate(context.Background(), classifier.ValidationRequest{
		PartNumber:  "DSBC-32-100",
		Description: "Pneumatic cylinder",
		Brand:       "FESTO",
		Price:       decimal.NewFromInt(4500),
		SourceFile:  "FESTO_pricelist.xlsx",
	})

	if !validated {
		t.Fatal("a well-formed reply should count as validated")
	}
	if result.Category != "Pneumatic Components" {
		t.Fatalf("category = %q", result.Category)
	}
	if result.Confidence != "high" {
		t.Fatalf("confidence = %q", result.Confidence)
	}
	if result.Notes != "standard catalog item" {
		t.Fatalf("notes = %q", result.Notes)
	}
	if v.FailureCount() != 0 {
		t.Fatalf("failure count = %d, want 0", v.FailureCount())
	}
}

func TestValidator_MalformedReplyFallsBack(t *testing.T) {
	srv := fakeCompletionServer(t, "I cannot answer in JSON today.")
	defer srv.Close()

	v := classifier.NewValidator(testSettings(srv.URL), classifier.New(nil))
	result, validated := v.Validate(context.Background(), classifier.ValidationRequest{
		PartNumber:  "DSBC-32-100",
		Description: "Pneumatic cylinder",
		SourceFile:  "FESTO_pricelist.xlsx",
	})

	if validated {
		t.Fatal("a malformed reply must not count as validated")
	}
	if result.Brand != "FESTO" || result.Category != "Pneumatic Components" {
		t.Fatalf("fallback should use heuristics, got %+v", result)
	}
	if result.Confidence != "low" {
		t.Fatalf("fallback confidence = %q, want low", result.Confidence)
	}
	if v.FailureCount() != 1 {
		t.Fatalf("failure count = %d, want 1", v.FailureCount())
	}
}

func TestValidator_RejectsOutOfTaxonomyCategory(t *testing.T) {
	reply := `{"part_number":"X","description":"Y","brand":"Z","price":1,"category":"Space Hardware","confidence":"high","notes":""}`
	srv := fakeCompletionServer(t, reply)
	defer srv.Close()

	v := classifier.NewValidator(testSettings(srv.URL), classifier.New(nil))
	result, _ := v.Validate(context.Background(), classifier.ValidationRequest{
		PartNumber: "X",
		SourceFile: "misc.xlsx",
	})

	if result.Confidence != "low" {
		t.Fatalf("invented category should fall back, got confidence %q", result.Confidence)
	}
	if v.FailureCount() != 1 {
		t.Fatalf("failure count = %d, want 1", v.FailureCount())
	}
}

func TestNewValidator_NilWithoutKey(t *testing.T) {
	if v := classifier.NewValidator(&config.PipelineSettings{}, nil); v != nil {
		t.Fatal("validator should be nil without an API key")
	}
}
