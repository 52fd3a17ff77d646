package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/brianvoe/gofakeit/v7"
)

type Config struct {
	BaseURL        string
	Scenario       string
	Workers        int
	Duration       int
	UserIDFrom     int64
	UserIDTo       int64
	RequestsPerSec int
}

type Stats struct {
	TotalRequests   int64
	SuccessRequests int64
	FailedRequests  int64
}

var (
	stats Stats

	histMu sync.Mutex
	hist   = hdrhistogram.New(1, 10_000_000, 3) // микросекунды
)

func main() {
	config := parseFlags()

	log.Printf("Starting load client with config: %+v", config)

	done := make(chan bool)
	var stopOnce sync.Once
	stop := func() { stopOnce.Do(func() { close(done) }) }

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	requestsPerWorker := config.RequestsPerSec / config.Workers
	if requestsPerWorker == 0 {
		requestsPerWorker = 1
	}

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go worker(i, config, requestsPerWorker, done, &wg)
	}

	go printStats(done)

	if config.Duration > 0 {
		go func() {
			time.Sleep(time.Duration(config.Duration) * time.Second)
			stop()
		}()
	}

	go func() {
		<-sigChan
		log.Println("Received interrupt signal, shutting down...")
		stop()
	}()

	wg.Wait()
	printReport()
}

func parseFlags() Config {
	var config Config
	flag.StringVar(&config.BaseURL, "url", "http://localhost:8080", "Base URL of the API")
	flag.StringVar(&config.Scenario, "scenario", "messages", "Scenario: messages, feed, posts")
	flag.IntVar(&config.Workers, "workers", 4, "Number of workers")
	flag.IntVar(&config.Duration, "duration", 30, "Test duration in seconds (0 = until interrupted)")
	flag.Int64Var(&config.UserIDFrom, "from", 1, "Lower bound of user id range")
	flag.Int64Var(&config.UserIDTo, "to", 100, "Upper bound of user id range")
	flag.IntVar(&config.RequestsPerSec, "rps", 100, "Target requests per second")
	flag.Parse()
	return config
}

func worker(id int, config Config, rps int, done <-chan bool, wg *sync.WaitGroup) {
	defer wg.Done()

	client := &http.Client{Timeout: 10 * time.Second}
	interval := time.Second / time.Duration(rps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			start := time.Now()
			err := fireRequest(client, config)
			elapsed := time.Since(start)

			atomic.AddInt64(&stats.TotalRequests, 1)
			if err != nil {
				atomic.AddInt64(&stats.FailedRequests, 1)
			} else {
				atomic.AddInt64(&stats.SuccessRequests, 1)
			}

			histMu.Lock()
			_ = hist.RecordValue(elapsed.Microseconds())
			histMu.Unlock()
		}
	}
}

func randomUser(config Config) int64 {
	return config.UserIDFrom + rand.Int63n(config.UserIDTo-config.UserIDFrom+1)
}

func fireRequest(client *http.Client, config Config) error {
	userID := randomUser(config)
	token := fmt.Sprintf("test_token_%d", userID)

	var req *http.Request
	var err error

	switch config.Scenario {
	case "feed":
		url := fmt.Sprintf("%s/api/v1/feed?mode=following&limit=%d", config.BaseURL, gofakeit.Number(5, 20))
		req, err = http.NewRequest("GET", url, nil)
	case "posts":
		payload := map[string]string{"content": gofakeit.Sentence(gofakeit.Number(3, 20))}
		body, _ := json.Marshal(payload)
		url := fmt.Sprintf("%s/api/v1/posts", config.BaseURL)
		req, err = http.NewRequest("POST", url, bytes.NewReader(body))
	default: // messages
		toUser := randomUser(config)
		for toUser == userID {
			toUser = randomUser(config)
		}
		payload := map[string]string{"text": gofakeit.HipsterSentence(gofakeit.Number(2, 12))}
		body, _ := json.Marshal(payload)
		url := fmt.Sprintf("%s/api/v1/dialog/%d/send", config.BaseURL, toUser)
		req, err = http.NewRequest("POST", url, bytes.NewReader(body))
	}
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

func printStats(done <-chan bool) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			total := atomic.LoadInt64(&stats.TotalRequests)
			ok := atomic.LoadInt64(&stats.SuccessRequests)
			failed := atomic.LoadInt64(&stats.FailedRequests)
			log.Printf("requests=%d ok=%d failed=%d", total, ok, failed)
		}
	}
}

func printReport() {
	histMu.Lock()
	defer histMu.Unlock()

	fmt.Println("--- latency report (us) ---")
	fmt.Printf("count:  %d\n", hist.TotalCount())
	fmt.Printf("min:    %d\n", hist.Min())
	fmt.Printf("mean:   %.1f\n", hist.Mean())
	fmt.Printf("p50:    %d\n", hist.ValueAtQuantile(50))
	fmt.Printf("p95:    %d\n", hist.ValueAtQuantile(95))
	fmt.Printf("p99:    %d\n", hist.ValueAtQuantile(99))
	fmt.Printf("max:    %d\n", hist.Max())
	fmt.Printf("failed: %d of %d\n", stats.FailedRequests, stats.TotalRequests)
}
