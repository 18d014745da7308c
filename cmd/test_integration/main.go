package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

func main() {
	baseURL := os.Getenv("ATAI_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	client := &http.Client{Timeout: 30 * time.Second}

	fmt.Println("Starting smoke test...")
	if err := waitHealthy(client, baseURL, 30*time.Second); err != nil {
		fmt.Printf("FAILED: %v\n", err)
		os.Exit(1)
	}

	questions := []struct {
		question string
		expect   string
	}{
		{"Who is the director of Good Will Hunting?", "Gus Van Sant"},
		{"Who directed The Bridge on the River Kwai?", "David Lean"},
		{"What is the genre of Good Neighbors?", ""},
		{"Recommend movies similar to Hamlet and Othello.", "recommend"},
		{"Show me a picture of Halle Berry.", "image:"},
		{"asdf qwer zxcv", ""},
	}

	failed := 0
	for i, q := range questions {
		fmt.Printf("%d. %s\n", i+1, q.question)
		answer, err := ask(client, baseURL, q.question)
		if err != nil {
			fmt.Printf("FAILED: %v\n", err)
			failed++
			continue
		}
		fmt.Printf("   %s\n", strings.ReplaceAll(answer, "\n", "\n   "))
		if q.expect != "" && !strings.Contains(answer, q.expect) {
			fmt.Printf("FAILED: expected %q in the answer\n", q.expect)
			failed++
			continue
		}
		fmt.Println("PASSED")
	}

	if failed > 0 {
		fmt.Printf("%d of %d questions failed\n", failed, len(questions))
		os.Exit(1)
	}
}

func waitHealthy(client *http.Client, baseURL string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := client.Get(baseURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(time.Second)
	}
	return fmt.Errorf("server at %s not healthy after %s", baseURL, timeout)
}

func ask(client *http.Client, baseURL, question string) (string, error) {
	body, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		return "", err
	}
	resp, err := client.Post(baseURL+"/ask", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, respBody)
	}

	var out struct {
		Answer string `json:"answer"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("bad response: %w", err)
	}
	return out.Answer, nil
}
