package main

import (
	"encoding/json"
	"strings"
)

type failure struct {
	Error string `json:"error"`
}

func Handle(stage, payload string) (string, error) {
	if stage != "on_error" {
		return "", nil
	}
	var f failure
	if err := json.Unmarshal([]byte(payload), &f); err != nil {
		return "", err
	}
	msg := strings.ToLower(f.Error)
	if strings.Contains(msg, "no space left") || strings.Contains(msg, "disk full") {
		return "free store space with: nix store gc", nil
	}
	return "", nil
}
