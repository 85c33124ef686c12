// Command legacy_compare replays read-only requests against both the Go API
// and the legacy Flask backend during the migration and reports divergences.
// Tokens are supplied per role because every pipeline endpoint sits behind
// role-gated auth.
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
	"reflect"
	"strings"
	"time"
)

type target struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Role     string `json:"role"`
	Critical bool   `json:"critical"`
}

type targetsFile struct {
	Targets []target `json:"targets"`
	// response fields that legitimately differ between the two stacks
	IgnoreFields []string `json:"ignoreFields"`
}

type result struct {
	Target      target
	GoStatus    int
	FlaskStatus int
	StatusMatch bool
	BodyMatch   bool
	Err         error
	GoTook      time.Duration
	FlaskTook   time.Duration
}

func main() {
	var (
		goBase      string
		flaskBase   string
		targetsPath string
		tokensPath  string
		timeout     time.Duration
	)

	flag.StringVar(&goBase, "go-base", "http://localhost:8080", "Go API base URL")
	flag.StringVar(&flaskBase, "flask-base", "http://localhost:5000", "Legacy Flask base URL")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "legacy_compare", "targets.json"), "JSON targets file")
	flag.StringVar(&tokensPath, "tokens", filepath.Join("scripts", "legacy_compare", "tokens.json"), "JSON role-to-token file")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	cfg, err := loadTargets(targetsPath)
	if err != nil {
		log.Fatalf("failed to load targets: %v", err)
	}
	tokens, err := loadTokens(tokensPath)
	if err != nil {
		log.Fatalf("failed to load tokens: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	var results []result
	breaking := 0

	for _, t := range cfg.Targets {
		res := compare(client, goBase, flaskBase, t, tokens[t.Role], cfg.IgnoreFields)
		if res.Err != nil || !res.StatusMatch || !res.BodyMatch {
			if t.Critical {
				breaking++
			}
		}
		results = append(results, res)
	}

	report(results)
	fmt.Printf("Breaking diffs: %d of %d targets\n", breaking, len(results))
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) (*targetsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg targetsFile
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return &cfg, nil
}

func loadTokens(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	tokens := map[string]string{}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

func compare(client *http.Client, goBase, flaskBase string, tgt target, token string, ignore []string) result {
	res := result{Target: tgt}

	goBody, goStatus, goTook, err := fetch(client, goBase, tgt, token)
	if err != nil {
		res.Err = fmt.Errorf("go request failed: %w", err)
		return res
	}
	flaskBody, flaskStatus, flaskTook, err := fetch(client, flaskBase, tgt, token)
	if err != nil {
		res.Err = fmt.Errorf("flask request failed: %w", err)
		return res
	}

	res.GoStatus = goStatus
	res.FlaskStatus = flaskStatus
	res.GoTook = goTook
	res.FlaskTook = flaskTook
	res.StatusMatch = goStatus == flaskStatus
	res.BodyMatch = bodiesEqual(goBody, flaskBody, ignore)
	return res
}

func fetch(client *http.Client, base string, tgt target, token string) ([]byte, int, time.Duration, error) {
	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := tgt.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequest(method, strings.TrimRight(base, "/")+path, nil)
	if err != nil {
		return nil, 0, 0, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, 0, err
	}
	return body, resp.StatusCode, time.Since(start), nil
}

func bodiesEqual(a, b []byte, ignore []string) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}

	var aj, bj interface{}
	if err := json.Unmarshal(a, &aj); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bj); err != nil {
		return false
	}
	normalize(&aj, ignore)
	normalize(&bj, ignore)
	return reflect.DeepEqual(aj, bj)
}

// normalize strips ignored fields and collapses whole floats so the two
// stacks' JSON encoders compare equal.
func normalize(v *interface{}, ignore []string) {
	switch val := (*v).(type) {
	case map[string]interface{}:
		for _, field := range ignore {
			delete(val, field)
		}
		for k, v2 := range val {
			normalize(&v2, ignore)
			val[k] = v2
		}
	case []interface{}:
		for i, v2 := range val {
			normalize(&v2, ignore)
			val[i] = v2
		}
	case float64:
		if val == float64(int64(val)) {
			*v = int64(val)
		}
	}
}

func report(results []result) {
	fmt.Println("Legacy Compare Report")
	fmt.Println("=====================")
	for _, res := range results {
		status := "OK"
		switch {
		case res.Err != nil:
			status = "ERROR"
		case !res.StatusMatch || !res.BodyMatch:
			status = "DIFF"
		}
		fmt.Printf("[%s] %s %s (role %s)\n", status, res.Target.Method, res.Target.Path, res.Target.Role)
		if res.Err != nil {
			fmt.Printf("  %v\n", res.Err)
			continue
		}
		fmt.Printf("  go %d in %s | flask %d in %s | body match %t | critical %t\n",
			res.GoStatus, res.GoTook, res.FlaskStatus, res.FlaskTook, res.BodyMatch, res.Target.Critical)
	}
}
