package jobsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	DefaultBaseURL  = "https://jsearch.p.rapidapi.com"
	DefaultHost     = "jsearch.p.rapidapi.com"
	DefaultLocation = "India"
)

var ErrUpstream = errors.New("job search api error")

// Record is one entry of the JSearch "data" array. Fields the API omits
// decode as zero values.
type Record struct {
	JobTitle          string   `json:"job_title"`
	EmployerName      string   `json:"employer_name"`
	JobCity           string   `json:"job_city"`
	JobCountry        string   `json:"job_country"`
	JobDescription    string   `json:"job_description"`
	JobRequiredSkills []string `json:"job_required_skills"`
	JobApplyLink      string   `json:"job_apply_link"`
}

type searchResponse struct {
	Status string   `json:"status"`
	Data   []Record `json:"data"`
}

type Client struct {
	APIKey  string
	BaseURL string
	Host    string
	HTTP    *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:  apiKey,
		BaseURL: DefaultBaseURL,
		Host:    DefaultHost,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Query is the search phrase sent for a location.
func Query(location string) string {
	return fmt.Sprintf("Software Engineer in %s", location)
}

func (c *Client) Search(ctx context.Context, query string, page int) ([]Record, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("num_pages", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-rapidapi-key", c.APIKey)
	req.Header.Set("x-rapidapi-host", c.Host)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w (status %d): %s", ErrUpstream, resp.StatusCode, string(body))
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}
	return out.Data, nil
}
