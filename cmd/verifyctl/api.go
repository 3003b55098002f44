package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

func (ctx *commandContext) url(path string) string {
	return strings.TrimRight(ctx.serverURL, "/") + path
}

func (ctx *commandContext) getJSON(path string, out any) error {
	resp, err := ctx.client.Get(ctx.url(path))
	if err != nil {
		return fmt.Errorf("reach verifyd at %s: %w", ctx.serverURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (ctx *commandContext) postJSON(path string, out any) error {
	resp, err := ctx.client.Post(ctx.url(path), "application/json", nil)
	if err != nil {
		return fmt.Errorf("reach verifyd at %s: %w", ctx.serverURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func apiError(resp *http.Response) error {
	var body struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	data, _ := io.ReadAll(resp.Body)
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		if body.Details != "" {
			return fmt.Errorf("%s: %s", body.Error, body.Details)
		}
		return fmt.Errorf("%s", body.Error)
	}
	return fmt.Errorf("server returned %d", resp.StatusCode)
}
