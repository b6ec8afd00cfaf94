package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/google/uuid"

	"github.com/rybla/sva-engine/pkg/adventure"
	"github.com/rybla/sva-engine/pkg/sva"
)

// Instance is the console's concrete instance type.
type Instance = sva.Instance[*adventure.World, adventure.Action]

// Turn is the console's concrete turn type.
type Turn = sva.Turn[*adventure.World, adventure.Action]

type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// TurnResult matches the API's turn response: the recorded turn plus the
// actor's refreshed view.
type TurnResult struct {
	Turn *Turn           `json:"turn"`
	View *adventure.View `json:"view"`
}

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func listWorlds(client *http.Client, baseURL string) ([]string, map[string]string, error) {
	resp, err := client.Get(baseURL + "/v1/worlds")
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	var worldMap map[string]string
	if err := json.Unmarshal(body, &worldMap); err != nil {
		return nil, nil, err
	}

	var names []string
	for name := range worldMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, worldMap, nil
}

// CreateInstanceRequest matches the API request structure
type CreateInstanceRequest struct {
	World string `json:"world"`
	Name  string `json:"name,omitempty"`
}

func createInstance(client *http.Client, baseURL string, worldFile string) (*Instance, error) {
	req := CreateInstanceRequest{
		World: worldFile,
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		baseURL+"/v1/instances",
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to create instance: %s", errorResp.Error)
	}

	var inst Instance
	if err := json.Unmarshal(body, &inst); err != nil {
		return nil, fmt.Errorf("failed to parse instance response: %w", err)
	}
	return &inst, nil
}

func getInstance(client *http.Client, baseURL string, instanceID uuid.UUID) (*Instance, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/instances/%s", baseURL, instanceID))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to get instance: %s", errorResp.Error)
	}

	var inst Instance
	if err := json.Unmarshal(body, &inst); err != nil {
		return nil, fmt.Errorf("failed to parse instance response: %w", err)
	}
	return &inst, nil
}

func getView(client *http.Client, baseURL string, instanceID uuid.UUID, actor string) (*adventure.View, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/instances/%s/view?actor=%s", baseURL, instanceID, actor))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to get view: %s", errorResp.Error)
	}

	var view adventure.View
	if err := json.Unmarshal(body, &view); err != nil {
		return nil, fmt.Errorf("failed to parse view response: %w", err)
	}
	return &view, nil
}

// TurnRequestBody matches the API request structure for running a turn.
type TurnRequestBody struct {
	Actor string `json:"actor"`
	Input string `json:"input"`
}

// rejectedError carries the precondition messages of a rejected turn so
// the UI can show them as part of the story rather than as a failure.
type rejectedError struct {
	messages []string
}

func (e *rejectedError) Error() string {
	return fmt.Sprintf("turn rejected: %d problem(s)", len(e.messages))
}

func runTurn(client *http.Client, baseURL string, instanceID uuid.UUID, actor, input string) (*TurnResult, error) {
	reqBody := TurnRequestBody{
		Actor: actor,
		Input: input,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		fmt.Sprintf("%s/v1/instances/%s/turns", baseURL, instanceID),
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		if resp.StatusCode == http.StatusUnprocessableEntity {
			return nil, &rejectedError{messages: errorResp.Details}
		}
		return nil, fmt.Errorf("turn failed: %s", errorResp.Error)
	}

	var result TurnResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse turn response: %w", err)
	}
	return &result, nil
}
