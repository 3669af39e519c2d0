package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// stateResponse mirrors the control API state payload.
type stateResponse struct {
	AppState struct {
		State   string `json:"state"`
		Message string `json:"message,omitempty"`
		Error   string `json:"error,omitempty"`
	} `json:"app_state"`
	Generation int `json:"generation"`
}

func (s *stateResponse) String() string {
	out := fmt.Sprintf("state=%s generation=%d", s.AppState.State, s.Generation)
	if s.AppState.Message != "" {
		out += fmt.Sprintf(" message=%q", s.AppState.Message)
	}
	if s.AppState.Error != "" {
		out += " error=" + s.AppState.Error
	}
	return out
}

// callControlAPI sends a request to a running instance and decodes the state reply.
func callControlAPI(cmd *cobra.Command, method, path string, body interface{}) (*stateResponse, error) {
	addr, _ := cmd.Root().PersistentFlags().GetString("addr")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(addr, "/")+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(raw, &apiErr)
		if apiErr.Error == "" {
			apiErr.Error = strings.TrimSpace(string(raw))
		}
		return nil, fmt.Errorf("%s returned status %d: %s", path, resp.StatusCode, apiErr.Error)
	}

	var state stateResponse
	err = json.Unmarshal(raw, &state)
	if err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return &state, nil
}
