// Command parity_check replays read requests against the legacy Node backend and this
// service and reports responses that differ once volatile fields are ignored.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

type target struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
}

type result struct {
	Target       target
	LegacyStatus int
	GoStatus     int
	StatusMatch  bool
	BodyMatch    bool
	Err          error
}

func main() {
	var (
		goBase      = flag.String("go-base", "http://localhost:5000/api", "Go API base URL")
		legacyBase  = flag.String("legacy-base", "http://localhost:5001/api", "legacy API base URL")
		targetsPath = flag.String("targets", "", "JSON file with {\"targets\": [...]}; defaults to the read routes")
		studentID   = flag.String("student", "101", "student id used by the default targets")
		day         = flag.String("date", time.Now().UTC().Format("2006-01-02"), "day used by the default targets")
		ignore      = flag.String("ignore", "id,_id,__v,createdAt,updatedAt,issueDate", "comma-separated JSON keys to drop before comparing")
		timeout     = flag.Duration("timeout", 5*time.Second, "HTTP client timeout")
	)
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync() //nolint:errcheck

	targets := defaultTargets(*studentID, *day)
	if *targetsPath != "" {
		loaded, err := loadTargets(*targetsPath)
		if err != nil {
			logger.Fatal("load targets", zap.Error(err))
		}
		targets = loaded
	}

	ignored := map[string]struct{}{}
	for _, key := range strings.Split(*ignore, ",") {
		if key = strings.TrimSpace(key); key != "" {
			ignored[key] = struct{}{}
		}
	}

	client := &http.Client{Timeout: *timeout}
	breaking := 0
	for _, t := range targets {
		res := compare(client, *goBase, *legacyBase, t, ignored)
		report(logger, res)
		if res.Target.Critical && (res.Err != nil || !res.StatusMatch || !res.BodyMatch) {
			breaking++
		}
	}

	if breaking > 0 {
		logger.Error("parity check failed", zap.Int("breaking", breaking))
		os.Exit(1)
	}
	logger.Info("parity check passed", zap.Int("targets", len(targets)))
}

func defaultTargets(studentID, day string) []target {
	parsed, err := time.Parse("2006-01-02", day)
	if err != nil {
		parsed = time.Now().UTC()
	}
	month, year := int(parsed.Month()), parsed.Year()
	return []target{
		{Method: http.MethodGet, Path: "/students", Critical: true},
		{Method: http.MethodGet, Path: "/attendance/date/" + day, Critical: true},
		{Method: http.MethodGet, Path: fmt.Sprintf("/attendance/monthly/%s/%d/%d", studentID, month, year), Critical: true},
		{Method: http.MethodGet, Path: fmt.Sprintf("/attendance/all-monthly/%d/%d", month, year), Critical: true},
		{Method: http.MethodGet, Path: "/student-cards/" + studentID},
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file struct {
		Targets []target `json:"targets"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return file.Targets, nil
}

func compare(client *http.Client, goBase, legacyBase string, t target, ignored map[string]struct{}) result {
	res := result{Target: t}
	goStatus, goBody, err := fetch(client, goBase, t)
	if err != nil {
		res.Err = fmt.Errorf("go: %w", err)
		return res
	}
	legacyStatus, legacyBody, err := fetch(client, legacyBase, t)
	if err != nil {
		res.Err = fmt.Errorf("legacy: %w", err)
		return res
	}
	res.GoStatus, res.LegacyStatus = goStatus, legacyStatus
	res.StatusMatch = goStatus == legacyStatus
	res.BodyMatch = bodiesEqual(goBody, legacyBody, ignored)
	return res
}

func fetch(client *http.Client, base string, t target) (int, []byte, error) {
	method := strings.ToUpper(strings.TrimSpace(t.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := t.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	req, err := http.NewRequest(method, strings.TrimRight(base, "/")+path, nil)
	if err != nil {
		return 0, nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

// bodiesEqual compares two JSON documents after dropping ignored keys. Numeric strings
// compare equal to numbers so a legacy "75.00" matches 75.
func bodiesEqual(a, b []byte, ignored map[string]struct{}) bool {
	var aj, bj interface{}
	if err := json.Unmarshal(a, &aj); err != nil {
		return strings.TrimSpace(string(a)) == strings.TrimSpace(string(b))
	}
	if err := json.Unmarshal(b, &bj); err != nil {
		return false
	}
	return reflect.DeepEqual(normalize(aj, ignored), normalize(bj, ignored))
}

func normalize(v interface{}, ignored map[string]struct{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, child := range val {
			if _, skip := ignored[k]; skip {
				continue
			}
			out[k] = normalize(child, ignored)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, child := range val {
			out[i] = normalize(child, ignored)
		}
		return out
	case string:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
		return val
	default:
		return v
	}
}

func report(logger *zap.Logger, res result) {
	fields := []zap.Field{
		zap.String("method", res.Target.Method),
		zap.String("path", res.Target.Path),
		zap.Bool("critical", res.Target.Critical),
	}
	switch {
	case res.Err != nil:
		logger.Error("request failed", append(fields, zap.Error(res.Err))...)
	case !res.StatusMatch || !res.BodyMatch:
		logger.Warn("diff", append(fields,
			zap.Int("go_status", res.GoStatus),
			zap.Int("legacy_status", res.LegacyStatus),
			zap.Bool("body_match", res.BodyMatch))...)
	default:
		logger.Info("match", fields...)
	}
}
