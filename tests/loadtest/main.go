package main

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

const (
	baseURL       = "http://127.0.0.1:8090"
	numWorkers    = 50
	testDuration  = 10 * time.Second
	numTabs       = 200
	numConvs      = 300
	maxPage       = 20
	tabHeaderName = "X-Tab-ID"
)

var intervals = []int{1, 7, 30, 90}

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

var tabIDs = func() []string {
	ids := make([]string, numTabs)
	for i := range ids {
		ids[i] = uuid.NewString()
	}
	return ids
}()

func main() {
	fmt.Println("=== DashGate Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s\n", numWorkers, testDuration)
	fmt.Printf("Tabs: %d | Conversations: %d | Pages: %d\n\n", numTabs, numConvs, maxPage)

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	fmt.Println("\n--- Phase 1: Cold tabs (summary + token cost) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		if rng.Float64() < 0.5 {
			return doParams(rng, "/api/summary")
		}
		return doParams(rng, "/api/token-cost")
	})

	fmt.Println("\n--- Phase 2: Browsing (pages, conversations, filter) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.30:
			return doParams(rng, "/api/summary")
		case r < 0.65:
			return doQuestions(rng)
		case r < 0.90:
			return doConversation(rng)
		default:
			return doPutFilter(rng)
		}
	})
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					r := workFn(rng)
					totalOps.Add(1)
					results <- r
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-28s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 94))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-28s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors,
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + strings.Repeat("-", 94))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func randomTab(rng *rand.Rand) string {
	return tabIDs[rng.Intn(len(tabIDs))]
}

func randomFilter(rng *rand.Rand) map[string]any {
	return map[string]any{"interval": intervals[rng.Intn(len(intervals))]}
}

// send counts 5xx other than 502 as errors: 502 is the placeholder for a
// backend failure and says nothing about dashgate itself.
func send(label, method, url string, body []byte, tab string) result {
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return result{label, 0, 0, true}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(tabHeaderName, tab)

	start := time.Now()
	resp, err := httpClient.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{label, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	failed := resp.StatusCode >= 500 && resp.StatusCode != http.StatusBadGateway
	return result{label, resp.StatusCode, lat, failed}
}

func doParams(rng *rand.Rand, path string) result {
	data, _ := json.Marshal(randomFilter(rng))
	return send("POST "+path, http.MethodPost, baseURL+path, data, randomTab(rng))
}

func doQuestions(rng *rand.Rand) result {
	url := fmt.Sprintf("%s/api/questions?page=%d", baseURL, rng.Intn(maxPage)+1)
	return send("GET /api/questions", http.MethodGet, url, nil, randomTab(rng))
}

func doConversation(rng *rand.Rand) result {
	url := fmt.Sprintf("%s/api/conversation/conv_%d", baseURL, rng.Intn(numConvs))
	return send("GET /api/conversation/{id}", http.MethodGet, url, nil, randomTab(rng))
}

func doPutFilter(rng *rand.Rand) result {
	data, _ := json.Marshal(randomFilter(rng))
	return send("PUT /api/filter", http.MethodPut, baseURL+"/api/filter", data, randomTab(rng))
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
