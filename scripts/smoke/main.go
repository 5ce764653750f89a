// Command smoke exercises a running workforce-api instance end to end:
// it registers an employee, drives a clock-in/break/clock-out cycle and
// fetches the monthly report. Intended for local and post-deploy checks.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

type step struct {
	Name     string
	Method   string
	Path     string
	Body     interface{}
	Expect   []int
	Critical bool
}

type result struct {
	Step     step
	Status   int
	Duration time.Duration
	Error    error
	Body     []byte
}

func main() {
	var (
		base    string
		prefix  string
		timeout time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&prefix, "prefix", "/api/v1", "API route prefix")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	client := &http.Client{Timeout: timeout}

	now := time.Now()
	email := fmt.Sprintf("smoke+%d@example.com", now.UnixNano())

	empID, err := createEmployee(client, base, prefix, email)
	if err != nil {
		log.Fatalf("failed to create smoke employee: %v", err)
	}

	steps := []step{
		{Name: "health", Method: http.MethodGet, Path: "/health", Expect: []int{200}, Critical: true},
		{Name: "ready", Method: http.MethodGet, Path: "/ready", Expect: []int{200}, Critical: true},
		{Name: "clock-in", Method: http.MethodPost, Path: prefix + "/timeclock/clock-in",
			Body: map[string]interface{}{"employee_id": empID}, Expect: []int{201}, Critical: true},
		{Name: "double clock-in rejected", Method: http.MethodPost, Path: prefix + "/timeclock/clock-in",
			Body: map[string]interface{}{"employee_id": empID}, Expect: []int{409}, Critical: true},
		{Name: "break start", Method: http.MethodPost, Path: prefix + "/timeclock/breaks/start",
			Body: map[string]interface{}{"employee_id": empID}, Expect: []int{201}, Critical: true},
		{Name: "break end", Method: http.MethodPost, Path: prefix + "/timeclock/breaks/end",
			Body: map[string]interface{}{"employee_id": empID, "reason": "smoke"}, Expect: []int{200}, Critical: true},
		{Name: "clock-out", Method: http.MethodPost, Path: prefix + "/timeclock/clock-out",
			Body: map[string]interface{}{"employee_id": empID}, Expect: []int{200}, Critical: true},
		{Name: "day view", Method: http.MethodGet,
			Path: fmt.Sprintf("%s/timeclock/day?employeeId=%s", prefix, empID), Expect: []int{200}, Critical: true},
		{Name: "monthly report", Method: http.MethodGet,
			Path:   fmt.Sprintf("%s/reports/monthly?employeeId=%s&month=%d&year=%d", prefix, empID, now.Month(), now.Year()),
			Expect: []int{200}, Critical: true},
		{Name: "metrics", Method: http.MethodGet, Path: "/metrics", Expect: []int{200}},
	}

	var failures int
	results := make([]result, 0, len(steps))
	for _, s := range steps {
		res := runStep(client, base, s)
		if !passed(res) && s.Critical {
			failures++
		}
		results = append(results, res)
	}

	printReport(results)

	fmt.Printf("Critical failures: %d\n", failures)
	if failures > 0 {
		os.Exit(1)
	}
}

func createEmployee(client *http.Client, base, prefix, email string) (string, error) {
	payload := map[string]interface{}{
		"full_name":  "Smoke Bot",
		"email":      email,
		"department": "qa",
		"position":   "probe",
	}
	res := runStep(client, base, step{
		Name:   "create employee",
		Method: http.MethodPost,
		Path:   prefix + "/employees",
		Body:   payload,
		Expect: []int{201},
	})
	if res.Error != nil {
		return "", res.Error
	}
	if !passed(res) {
		return "", fmt.Errorf("unexpected status %d: %s", res.Status, res.Body)
	}

	var envelope struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(res.Body, &envelope); err != nil {
		return "", fmt.Errorf("decode employee response: %w", err)
	}
	if envelope.Data.ID == "" {
		return "", fmt.Errorf("employee response missing id: %s", res.Body)
	}
	return envelope.Data.ID, nil
}

func runStep(client *http.Client, base string, s step) result {
	res := result{Step: s}

	var reader io.Reader
	if s.Body != nil {
		raw, err := json.Marshal(s.Body)
		if err != nil {
			res.Error = err
			return res
		}
		reader = bytes.NewReader(raw)
	}

	url := strings.TrimRight(base, "/") + s.Path
	req, err := http.NewRequest(s.Method, url, reader)
	if err != nil {
		res.Error = err
		return res
	}
	if s.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := client.Do(req)
	res.Duration = time.Since(start)
	if err != nil {
		res.Error = err
		return res
	}
	defer resp.Body.Close()

	res.Status = resp.StatusCode
	res.Body, res.Error = io.ReadAll(resp.Body)
	return res
}

func passed(res result) bool {
	if res.Error != nil {
		return false
	}
	if len(res.Step.Expect) == 0 {
		return res.Status < 400
	}
	for _, code := range res.Step.Expect {
		if res.Status == code {
			return true
		}
	}
	return false
}

func printReport(results []result) {
	fmt.Println("Smoke Report")
	fmt.Println("============")
	for _, res := range results {
		status := "OK"
		if !passed(res) {
			status = "FAIL"
		}
		fmt.Printf("[%s] %s %s %s\n", status, res.Step.Method, res.Step.Path, res.Duration)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
		} else if !passed(res) {
			fmt.Printf("  Status %d, expected %v\n", res.Status, res.Step.Expect)
		}
	}
}
