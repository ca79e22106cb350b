package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/structeye/internal/engine"
	"github.com/structeye/internal/ml"
	"github.com/structeye/internal/models"
)

// Client is the typed HTTP client the CLI uses against a running daemon.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient() (*Client, error) {
	baseURL := os.Getenv("STRUCTEYE_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	token := os.Getenv("STRUCTEYE_API_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("STRUCTEYE_API_TOKEN environment variable is not set")
	}

	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

func (c *Client) ListReadings(limit int) ([]models.SensorReading, error) {
	var readings []models.SensorReading
	if err := c.get(withLimit("/api/v1/readings", limit), &readings); err != nil {
		return nil, err
	}
	return readings, nil
}

func (c *Client) ListAnomalies(limit int) ([]models.SensorReading, error) {
	var readings []models.SensorReading
	if err := c.get(withLimit("/api/v1/readings/anomalies", limit), &readings); err != nil {
		return nil, err
	}
	return readings, nil
}

func (c *Client) IngestReading(vibration, strain, temperature float64) (*engine.ProcessedReading, error) {
	body := map[string]float64{
		"vibration":   vibration,
		"strain":      strain,
		"temperature": temperature,
	}
	var processed engine.ProcessedReading
	if err := c.post("/api/v1/readings", body, &processed); err != nil {
		return nil, err
	}
	return &processed, nil
}

func (c *Client) SimulateReading() (*engine.ProcessedReading, error) {
	var processed engine.ProcessedReading
	if err := c.post("/api/v1/readings/simulate", nil, &processed); err != nil {
		return nil, err
	}
	return &processed, nil
}

func (c *Client) TrainModel(kind models.ClassifierKind, params ml.Params) (*models.ClassifierSnapshot, error) {
	body := map[string]interface{}{
		"kind":   kind,
		"params": params,
	}
	var snapshot models.ClassifierSnapshot
	if err := c.post("/api/v1/models/train", body, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (c *Client) ModelInfo(kind models.ClassifierKind) (*models.ClassifierSnapshot, error) {
	var snapshot models.ClassifierSnapshot
	if err := c.get("/api/v1/models/"+string(kind), &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (c *Client) AlertHistory(limit int) ([]models.AlertRecord, error) {
	var records []models.AlertRecord
	if err := c.get(withLimit("/api/v1/alerts", limit), &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) AlertStatistics(windowHours int) (*engine.AlertStats, error) {
	endpoint := "/api/v1/alerts/statistics"
	if windowHours > 0 {
		endpoint += "?window=" + url.QueryEscape(fmt.Sprintf("%d", windowHours))
	}
	var stats engine.AlertStats
	if err := c.get(endpoint, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) SensorStatistics() (*engine.SensorStats, error) {
	var stats engine.SensorStats
	if err := c.get("/api/v1/statistics", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func withLimit(endpoint string, limit int) string {
	if limit > 0 {
		return fmt.Sprintf("%s?limit=%d", endpoint, limit)
	}
	return endpoint
}

func (c *Client) get(endpoint string, out interface{}) error {
	return c.do(http.MethodGet, endpoint, nil, out)
}

func (c *Client) post(endpoint string, body, out interface{}) error {
	return c.do(http.MethodPost, endpoint, body, out)
}

func (c *Client) do(method, endpoint string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.baseURL+endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("api error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("api error: status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
