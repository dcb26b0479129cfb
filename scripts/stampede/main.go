// Command stampede fires concurrent registration attempts at a running
// server and checks that admits never exceed the lecture's capacity.
// It needs a term database seeded with the target lecture and one
// account per credential listed in the accounts file.
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
	"path/filepath"
	"sync"
	"time"
)

type credential struct {
	StudentNo string `json:"student_no"`
	Password  string `json:"password"`
}

type accountsFile struct {
	Accounts []credential `json:"accounts"`
}

type attempt struct {
	StudentNo string
	Status    int
	Code      string
	Duration  time.Duration
	Err       error
}

func main() {
	var (
		base         string
		lectureID    string
		capacity     int
		accountsPath string
		timeout      time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&lectureID, "lecture", "", "Lecture ID to stampede")
	flag.IntVar(&capacity, "capacity", 0, "Seeded capacity of the lecture")
	flag.StringVar(&accountsPath, "accounts", filepath.Join("scripts", "stampede", "accounts.json"), "Path to JSON accounts file")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	if lectureID == "" || capacity <= 0 {
		log.Fatal("both -lecture and -capacity are required")
	}

	accounts, err := loadAccounts(accountsPath)
	if err != nil {
		log.Fatalf("failed to load accounts: %v", err)
	}
	if len(accounts) <= capacity {
		log.Fatalf("need more accounts (%d) than seats (%d) to exercise the race", len(accounts), capacity)
	}

	client := &http.Client{Timeout: timeout}

	tokens := make(map[string]string, len(accounts))
	for _, cred := range accounts {
		token, err := login(client, base, cred)
		if err != nil {
			log.Fatalf("login failed for %s: %v", cred.StudentNo, err)
		}
		tokens[cred.StudentNo] = token
	}

	// All attempts start together so the commits contend on the same
	// lecture row.
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		attempts []attempt
		gate     = make(chan struct{})
	)
	for _, cred := range accounts {
		wg.Add(1)
		go func(cred credential) {
			defer wg.Done()
			<-gate
			attempts = appendAttempt(&mu, attempts, register(client, base, tokens[cred.StudentNo], cred.StudentNo, lectureID))
		}(cred)
	}
	close(gate)
	wg.Wait()

	admitted, full, other := tally(attempts)
	printReport(attempts, admitted, full, other)

	if admitted > capacity {
		fmt.Printf("FAIL: %d admitted for %d seats\n", admitted, capacity)
		os.Exit(1)
	}
	fmt.Printf("OK: %d admitted, %d rejected full, capacity %d held\n", admitted, full, capacity)
}

func appendAttempt(mu *sync.Mutex, attempts []attempt, a attempt) []attempt {
	mu.Lock()
	defer mu.Unlock()
	return append(attempts, a)
}

func loadAccounts(path string) ([]credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file accountsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Accounts) == 0 {
		return nil, fmt.Errorf("no accounts defined in %s", path)
	}
	return file.Accounts, nil
}

func login(client *http.Client, base string, cred credential) (string, error) {
	payload, err := json.Marshal(cred)
	if err != nil {
		return "", err
	}
	resp, err := client.Post(base+"/api/v1/auth/login", "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}

	var envelope struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", err
	}
	if envelope.Data.Token == "" {
		return "", fmt.Errorf("empty token for %s", cred.StudentNo)
	}
	return envelope.Data.Token, nil
}

func register(client *http.Client, base, token, studentNo, lectureID string) attempt {
	a := attempt{StudentNo: studentNo}

	payload, err := json.Marshal(map[string]string{"lecture_id": lectureID})
	if err != nil {
		a.Err = err
		return a
	}

	req, err := http.NewRequest(http.MethodPost, base+"/api/v1/registrations", bytes.NewReader(payload))
	if err != nil {
		a.Err = err
		return a
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := client.Do(req)
	a.Duration = time.Since(start)
	if err != nil {
		a.Err = err
		return a
	}
	defer resp.Body.Close()

	a.Status = resp.StatusCode

	var envelope struct {
		Error *struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error != nil {
		a.Code = envelope.Error.Code
	}
	return a
}

func tally(attempts []attempt) (admitted, full, other int) {
	for _, a := range attempts {
		switch {
		case a.Status == http.StatusCreated:
			admitted++
		case a.Code == "LECTURE_FULL":
			full++
		default:
			other++
		}
	}
	return admitted, full, other
}

func printReport(attempts []attempt, admitted, full, other int) {
	fmt.Printf("%-12s %-8s %-22s %s\n", "STUDENT", "STATUS", "CODE", "DURATION")
	for _, a := range attempts {
		if a.Err != nil {
			fmt.Printf("%-12s %-8s %-22s %v\n", a.StudentNo, "ERR", a.Err.Error(), a.Duration)
			continue
		}
		code := a.Code
		if code == "" {
			code = "-"
		}
		fmt.Printf("%-12s %-8d %-22s %v\n", a.StudentNo, a.Status, code, a.Duration)
	}
	fmt.Printf("admitted=%d full=%d other=%d\n", admitted, full, other)
}
