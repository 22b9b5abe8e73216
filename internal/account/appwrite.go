package account

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// AppwriteClient implements Service against the Appwrite Users REST API.
// The endpoint is the full API base (e.g. https://cloud.appwrite.io/v1),
// matching what the hosted function deployment already provisions.
type AppwriteClient struct {
	Endpoint  string
	ProjectID string
	APIKey    string

	http *http.Client
}

// NewAppwriteClient creates a Users API client with the given credentials.
func NewAppwriteClient(endpoint, projectID, apiKey string, timeout time.Duration) *AppwriteClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AppwriteClient{
		Endpoint:  strings.TrimRight(endpoint, "/"),
		ProjectID: projectID,
		APIKey:    apiKey,
		http:      &http.Client{Timeout: timeout},
	}
}

type appwriteUser struct {
	ID    string `json:"$id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (c *AppwriteClient) Get(ctx context.Context, userID string) (*Account, error) {
	u := c.Endpoint + "/users/" + url.PathEscape(userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("users get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode/100 != 2 {
		var b struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&b)
		return nil, fmt.Errorf("users http %d: %s", resp.StatusCode, b.Message)
	}

	var au appwriteUser
	if err := json.NewDecoder(resp.Body).Decode(&au); err != nil {
		return nil, err
	}
	return &Account{ID: au.ID, Name: au.Name, Email: au.Email}, nil
}

func (c *AppwriteClient) setHeaders(req *http.Request) {
	req.Header.Set("X-Appwrite-Project", c.ProjectID)
	req.Header.Set("X-Appwrite-Key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
}
