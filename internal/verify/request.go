package verify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"net/url"
)

// Request is the canonical input record after normalization.
type Request struct {
	UserID              string `json:"userId"`
	SocialMedia         string `json:"socialMedia,omitempty"`
	SocialMediaUsername string `json:"socialMediaUsername,omitempty"`
}

// ParseRequest normalizes a raw payload into a Request. The branch is an
// explicit decision table over the content type:
//
//	application/json                   -> JSON body; empty body is an empty record
//	application/x-www-form-urlencoded  -> form-encoded body
//	anything else / absent             -> raw payload parsed as JSON
//
// Returns ErrInvalidPayload when the payload cannot be parsed under its
// branch, and ErrUserDataRequired when the parsed record has no user id.
func ParseRequest(contentType string, payload []byte) (*Request, error) {
	mediaType := ""
	if contentType != "" {
		mt, _, err := mime.ParseMediaType(contentType)
		if err == nil {
			mediaType = mt
		}
	}

	var req Request
	switch mediaType {
	case "application/x-www-form-urlencoded":
		vals, err := url.ParseQuery(string(payload))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		req.UserID = vals.Get("userId")
		req.SocialMedia = vals.Get("socialMedia")
		req.SocialMediaUsername = vals.Get("socialMediaUsername")
	default:
		// "application/json" y el fallback comparten la misma rama: el
		// payload crudo se interpreta como JSON, vacío == registro vacío.
		if len(bytes.TrimSpace(payload)) == 0 {
			break
		}
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
	}

	if req.UserID == "" {
		return nil, ErrUserDataRequired
	}
	return &req, nil
}
