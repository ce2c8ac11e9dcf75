// score_batch.go — standalone script to score code lists from a file via the Comorbid API.
//
// Input file: one patient per line, diagnosis codes separated by commas.
// Lines starting with # are skipped.
//
// Usage:
//
//	go run scripts/score_batch.go -in codes.txt -api http://localhost:8700 -mapping icd2024gm
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
)

type scoreRequest struct {
	Codes          []string `json:"codes"`
	Mapping        string   `json:"mapping"`
	ExactCodes     bool     `json:"exact_codes"`
	ListCategories bool     `json:"list_categories"`
}

type scoreResponse struct {
	RecordID   string   `json:"record_id"`
	Score      int      `json:"score"`
	Categories []string `json:"categories"`
}

func main() {
	inPath := flag.String("in", "codes.txt", "path to input file")
	apiURL := flag.String("api", "http://localhost:8700", "Comorbid API base URL")
	mappingID := flag.String("mapping", "icd2024gm", "mapping version to score against")
	exact := flag.Bool("exact", false, "use exact code matching instead of prefix")
	clientID := flag.String("client", "score-batch", "X-Client-ID header value")
	flag.Parse()

	f, err := os.Open(*inPath)
	if err != nil {
		log.Fatalf("open input: %v", err)
	}
	defer f.Close()

	lineNo := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var codes []string
		for _, c := range strings.Split(line, ",") {
			if c = strings.TrimSpace(c); c != "" {
				codes = append(codes, c)
			}
		}

		req := scoreRequest{
			Codes:          codes,
			Mapping:        *mappingID,
			ExactCodes:     *exact,
			ListCategories: true,
		}
		body, _ := json.Marshal(req)

		httpReq, err := http.NewRequest("POST", *apiURL+"/api/v1/score", bytes.NewReader(body))
		if err != nil {
			log.Fatalf("line %d: build request: %v", lineNo, err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("X-Client-ID", *clientID)

		resp, err := http.DefaultClient.Do(httpReq)
		if err != nil {
			log.Fatalf("line %d: post: %v", lineNo, err)
		}
		if resp.StatusCode != http.StatusOK {
			log.Printf("line %d: status %d", lineNo, resp.StatusCode)
			resp.Body.Close()
			continue
		}

		var sr scoreResponse
		if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
			log.Fatalf("line %d: decode: %v", lineNo, err)
		}
		resp.Body.Close()

		fmt.Printf("line %d: score=%d categories=%s\n", lineNo, sr.Score, strings.Join(sr.Categories, ", "))
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("read input: %v", err)
	}
}
