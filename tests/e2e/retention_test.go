// Package e2e_test contains end-to-end tests against a running server.
package e2e_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"os"
	"testing"
)

// Skip e2e tests if not explicitly enabled
func skipIfNotE2E(t *testing.T) string {
	if os.Getenv("E2E_TESTS") != "true" {
		t.Skip("E2E tests not enabled. Set E2E_TESTS=true to run")
	}
	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		t.Skip("API_URL not set")
	}
	return apiURL
}

func TestE2E_HealthEndpoint(t *testing.T) {
	apiURL := skipIfNotE2E(t)

	resp, err := http.Get(apiURL + "/health")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)

	if result["success"] != true {
		t.Error("Health response should report success")
	}
}

func TestE2E_OffersEndpoint(t *testing.T) {
	apiURL := skipIfNotE2E(t)

	resp, err := http.Get(apiURL + "/api/offers")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var result struct {
		Success bool                     `json:"success"`
		Data    []map[string]interface{} `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&result)

	if len(result.Data) == 0 {
		t.Error("Offers response should list the catalog")
	}
}

func TestE2E_SingleRecordFlow(t *testing.T) {
	apiURL := skipIfNotE2E(t)

	requestBody := map[string]string{
		"customer_id":         "E2E-001",
		"customer_email":      "e2e-test@example.com",
		"cancellation_reason": "The subscription is too expensive for my budget",
	}
	body, _ := json.Marshal(requestBody)

	resp, err := http.Post(apiURL+"/api/process", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var result struct {
		Success bool `json:"success"`
		Data    struct {
			IsMatch bool `json:"is_match"`
			Draft   struct {
				Body string `json:"body"`
			} `json:"draft"`
			Decision struct {
				OfferCode string `json:"offer_code"`
			} `json:"decision"`
		} `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&result)

	if !result.Success {
		t.Fatal("Process response should report success")
	}
	if !result.Data.IsMatch {
		t.Error("A price-based reason should match a retention offer")
	}
	if result.Data.Draft.Body == "" {
		t.Error("Matched record should carry an email draft")
	}
}

func TestE2E_BatchFlow(t *testing.T) {
	apiURL := skipIfNotE2E(t)

	csvContent := `Email,Cancellation Reason
batch-a@example.com,too expensive for our budget
batch-b@example.com,relocating to another continent
`

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "cancellations.csv")
	if err != nil {
		t.Fatalf("Failed to build multipart body: %v", err)
	}
	part.Write([]byte(csvContent))
	writer.Close()

	resp, err := http.Post(apiURL+"/api/batch/upload", writer.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var uploaded struct {
		Success bool `json:"success"`
		Data    struct {
			Total     int `json:"total"`
			Matched   int `json:"matched"`
			Unmatched int `json:"unmatched"`
		} `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&uploaded)

	if uploaded.Data.Total != 2 {
		t.Errorf("Expected 2 processed records, got %d", uploaded.Data.Total)
	}

	// Export reflects the session.
	exportResp, err := http.Get(apiURL + "/api/batch/export")
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	defer exportResp.Body.Close()

	if exportResp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", exportResp.StatusCode)
	}
	if ct := exportResp.Header.Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Expected text/csv export, got %s", ct)
	}
}
