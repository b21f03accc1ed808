// Command smoke exercises a running server end to end: upload, metrics,
// path and a natural-language query.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"
)

const sample = `First Name,Last Name,Company,Position,Location
Ada,Lovelace,Acme,Engineer,Berlin
Bob,Marley,Acme,Engineer,Paris
Cy,Young,Beta,Designer,Berlin
Di,Prince,Beta,Recruiter,Oslo
`

func main() {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	client := &http.Client{Timeout: 30 * time.Second}

	fmt.Println("Starting smoke test...")

	fmt.Println("1. Health...")
	if _, ok := send(client, http.MethodGet, baseURL+"/health", nil, ""); !ok {
		fail("health")
	}

	fmt.Println("2. Uploading contacts...")
	body, contentType, err := multipartCSV(sample)
	if err != nil {
		fmt.Printf("Error building upload: %v\n", err)
		os.Exit(1)
	}
	resp, ok := send(client, http.MethodPost, baseURL+"/upload", body, contentType)
	if !ok {
		fail("upload")
	}
	var ingest struct {
		GraphID string `json:"graph_id"`
		Nodes   int    `json:"nodes"`
		Edges   int    `json:"edges"`
	}
	if err := json.Unmarshal(resp, &ingest); err != nil || ingest.Nodes != 4 {
		fail("upload response")
	}
	fmt.Printf("PASSED: upload (graph %s, %d nodes, %d edges)\n", ingest.GraphID, ingest.Nodes, ingest.Edges)

	fmt.Println("3. Metrics...")
	if _, ok := send(client, http.MethodGet, baseURL+"/metrics?graph_id="+ingest.GraphID, nil, ""); !ok {
		fail("metrics")
	}
	fmt.Println("PASSED: metrics")

	fmt.Println("4. Shortest path...")
	if _, ok := send(client, http.MethodGet, baseURL+"/path?source=1&target=3&graph_id="+ingest.GraphID, nil, ""); !ok {
		fail("path")
	}
	fmt.Println("PASSED: path")

	fmt.Println("5. Query...")
	payload, _ := json.Marshal(map[string]string{"q": "engineers at Acme", "graph_id": ingest.GraphID})
	if _, ok := send(client, http.MethodPost, baseURL+"/query", bytes.NewReader(payload), "application/json"); !ok {
		fail("query")
	}
	fmt.Println("PASSED: query")
}

func fail(step string) {
	fmt.Printf("FAILED: %s\n", step)
	os.Exit(1)
}

func multipartCSV(content string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "contacts.csv")
	if err != nil {
		return nil, "", err
	}
	if _, err := io.WriteString(part, content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func send(client *http.Client, method, url string, body io.Reader, contentType string) ([]byte, bool) {
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return nil, false
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return nil, false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return nil, false
	}
	fmt.Printf("Response: %s\n", string(respBody))
	return respBody, true
}
