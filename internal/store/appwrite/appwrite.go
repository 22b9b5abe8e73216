// Package appwrite implements the profile store against the Appwrite
// Databases REST API, the backend the original deployment runs on.
package appwrite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cherrizbox/socialverify/internal/store"
)

// Field names as they exist in the hosted collection. Renaming them is a data
// migration, not a code change.
const (
	fieldAccountID     = "creatoraccountid"
	fieldSocialMedia   = "social_media"
	fieldUsername      = "social_media_username"
	fieldCode          = "social_media_number"
	fieldCodeConfirmed = "social_media_number_correct"
)

type Client struct {
	Endpoint     string // full API base, e.g. https://cloud.appwrite.io/v1
	ProjectID    string
	APIKey       string
	DatabaseID   string
	CollectionID string

	http *http.Client
}

// New creates a Databases API client for the configured collection.
func New(endpoint, projectID, apiKey, databaseID, collectionID string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		Endpoint:     strings.TrimRight(endpoint, "/"),
		ProjectID:    projectID,
		APIKey:       apiKey,
		DatabaseID:   databaseID,
		CollectionID: collectionID,
		http:         &http.Client{Timeout: timeout},
	}
}

type document struct {
	ID            string `json:"$id"`
	AccountID     string `json:"creatoraccountid"`
	SocialMedia   string `json:"social_media"`
	Username      string `json:"social_media_username"`
	Code          string `json:"social_media_number"`
	CodeConfirmed bool   `json:"social_media_number_correct"`
}

type documentList struct {
	Total     int        `json:"total"`
	Documents []document `json:"documents"`
}

func (c *Client) collectionURL() string {
	return fmt.Sprintf("%s/databases/%s/collections/%s/documents",
		c.Endpoint, url.PathEscape(c.DatabaseID), url.PathEscape(c.CollectionID))
}

func (c *Client) FindByAccountID(ctx context.Context, accountID string) ([]store.ProfileDocument, error) {
	// Query.equal(creatoraccountid, [accountID]) en el formato JSON del API.
	q, _ := json.Marshal(map[string]any{
		"method":    "equal",
		"attribute": fieldAccountID,
		"values":    []string{accountID},
	})
	u := c.collectionURL() + "?queries[]=" + url.QueryEscape(string(q))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("documents list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, apiError("documents list", resp)
	}

	var list documentList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, err
	}

	out := make([]store.ProfileDocument, 0, len(list.Documents))
	for _, d := range list.Documents {
		out = append(out, store.ProfileDocument{
			ID:                  d.ID,
			AccountID:           d.AccountID,
			SocialMedia:         d.SocialMedia,
			SocialMediaUsername: d.Username,
			VerificationCode:    d.Code,
			CodeConfirmed:       d.CodeConfirmed,
		})
	}
	return out, nil
}

func (c *Client) SetVerificationCode(ctx context.Context, documentID, code string) error {
	// Un solo PATCH: código nuevo + flag reseteado.
	body, _ := json.Marshal(map[string]any{
		"data": map[string]any{
			fieldCode:          code,
			fieldCodeConfirmed: false,
		},
	})
	u := c.collectionURL() + "/" + url.PathEscape(documentID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("document update: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return store.ErrNotFound
	}
	if resp.StatusCode/100 != 2 {
		return apiError("document update", resp)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("X-Appwrite-Project", c.ProjectID)
	req.Header.Set("X-Appwrite-Key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
}

func apiError(op string, resp *http.Response) error {
	var b struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&b)
	return fmt.Errorf("%s http %d: %s %s", op, resp.StatusCode, b.Type, b.Message)
}
