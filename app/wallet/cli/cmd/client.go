package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/scholarstream/escrow/foundation/escrow/database"
)

// nextNonce asks the service for the last nonce the account used.
func nextNonce(accountID database.AccountID) (uint64, error) {
	var resp struct {
		Nonce uint64 `json:"nonce"`
	}
	if err := get(fmt.Sprintf("/v1/nonces/%s", accountID), &resp); err != nil {
		return 0, err
	}

	return resp.Nonce + 1, nil
}

func get(path string, result any) error {
	resp, err := http.Get(url + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decode(resp, result)
}

func post(path string, body any, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	resp, err := http.Post(url+path, "application/json", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decode(resp, result)
}

func decode(resp *http.Response, result any) error {
	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s: %s", resp.Status, bytes.TrimSpace(msg))
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(v)
		return
	}
	fmt.Println(string(data))
}
