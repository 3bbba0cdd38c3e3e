package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"reflect"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// target is one endpoint replayed against both backends.
type target struct {
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
}

// defaultTargets are the read endpoints the dashboard front-end calls.
var defaultTargets = []target{
	{Path: "/api/lectures?page=1&limit=30", Critical: true},
	{Path: "/api/lectures?dateFilter=today", Critical: true},
	{Path: "/api/lectures?dateFilter=this_week&mode=online", Critical: true},
	{Path: "/api/students?limit=30", Critical: true},
	{Path: "/api/announcements"},
	{Path: "/api/banners"},
	{Path: "/api/ping"},
}

// volatileFields differ between two otherwise identical responses.
var volatileFields = map[string]struct{}{
	"serverDate": {},
	"createdAt":  {},
	"importedAt": {},
}

type outcome struct {
	Target       target
	GoStatus     int
	LegacyStatus int
	Diffs        []string
	Err          error
}

func (o outcome) breaking() bool {
	return o.Target.Critical && (o.Err != nil || o.GoStatus != o.LegacyStatus || len(o.Diffs) > 0)
}

func main() {
	var (
		goBase      string
		legacyBase  string
		targetsPath string
		user        string
		password    string
		timeout     time.Duration
	)
	flag.StringVar(&goBase, "go-base", "http://localhost:4000", "Go API base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:3000", "Legacy API base URL")
	flag.StringVar(&targetsPath, "targets", "", "Optional JSON file with a targets array")
	flag.StringVar(&user, "user", os.Getenv("SITE_USERNAME"), "Dashboard username")
	flag.StringVar(&password, "password", os.Getenv("SITE_PASSWORD"), "Dashboard password")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "Per-request timeout")
	flag.Parse()

	logr, _ := zap.NewDevelopment()
	defer logr.Sync() //nolint:errcheck

	targets := defaultTargets
	if targetsPath != "" {
		loaded, err := loadTargets(targetsPath)
		if err != nil {
			logr.Fatal("failed to load targets", zap.Error(err))
		}
		targets = loaded
	}

	fetcher := &fetcher{client: &http.Client{Timeout: timeout}, user: user, password: password}
	outcomes := make([]outcome, len(targets))

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(4)
	for i, t := range targets {
		i, t := i, t
		g.Go(func() error {
			outcomes[i] = compare(ctx, fetcher, goBase, legacyBase, t)
			return nil
		})
	}
	_ = g.Wait()

	breaking := 0
	for _, o := range outcomes {
		fields := []zap.Field{zap.String("path", o.Target.Path), zap.Int("go", o.GoStatus), zap.Int("legacy", o.LegacyStatus)}
		switch {
		case o.Err != nil:
			logr.Error("request failed", append(fields, zap.Error(o.Err))...)
		case o.GoStatus != o.LegacyStatus || len(o.Diffs) > 0:
			logr.Warn("responses differ", append(fields, zap.Strings("diffs", o.Diffs))...)
		default:
			logr.Info("responses match", fields...)
		}
		if o.breaking() {
			breaking++
		}
	}
	fmt.Printf("Compared %d endpoints, %d breaking\n", len(outcomes), breaking)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var targets []target
	if err := json.Unmarshal(raw, &targets); err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return targets, nil
}

type fetcher struct {
	client   *http.Client
	user     string
	password string
}

func (f *fetcher) get(ctx context.Context, base, path string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(base, "/")+path, nil)
	if err != nil {
		return 0, nil, err
	}
	if f.password != "" {
		req.SetBasicAuth(f.user, f.password)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	return resp.StatusCode, body, err
}

func compare(ctx context.Context, f *fetcher, goBase, legacyBase string, t target) outcome {
	o := outcome{Target: t}
	var goBody, legacyBody []byte

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		o.GoStatus, goBody, err = f.get(gctx, goBase, t.Path)
		if err != nil {
			return fmt.Errorf("go: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		o.LegacyStatus, legacyBody, err = f.get(gctx, legacyBase, t.Path)
		if err != nil {
			return fmt.Errorf("legacy: %w", err)
		}
		return nil
	})
	if o.Err = g.Wait(); o.Err != nil {
		return o
	}
	o.Diffs = diffBodies(goBody, legacyBody)
	return o
}

// diffBodies lists the JSON paths whose values differ, ignoring volatile
// fields. Non-JSON bodies are compared verbatim.
func diffBodies(a, b []byte) []string {
	var aj, bj interface{}
	if json.Unmarshal(a, &aj) != nil || json.Unmarshal(b, &bj) != nil {
		if strings.TrimSpace(string(a)) == strings.TrimSpace(string(b)) {
			return nil
		}
		return []string{"$"}
	}
	var diffs []string
	diffValues("$", aj, bj, &diffs)
	return diffs
}

func diffValues(path string, a, b interface{}, diffs *[]string) {
	am, aok := a.(map[string]interface{})
	bm, bok := b.(map[string]interface{})
	if aok && bok {
		keys := make(map[string]struct{}, len(am)+len(bm))
		for k := range am {
			keys[k] = struct{}{}
		}
		for k := range bm {
			keys[k] = struct{}{}
		}
		sorted := make([]string, 0, len(keys))
		for k := range keys {
			if _, skip := volatileFields[k]; !skip {
				sorted = append(sorted, k)
			}
		}
		sort.Strings(sorted)
		for _, k := range sorted {
			diffValues(path+"."+k, am[k], bm[k], diffs)
		}
		return
	}

	as, aok := a.([]interface{})
	bs, bok := b.([]interface{})
	if aok && bok {
		if len(as) != len(bs) {
			*diffs = append(*diffs, fmt.Sprintf("%s (length %d != %d)", path, len(as), len(bs)))
			return
		}
		for i := range as {
			diffValues(fmt.Sprintf("%s[%d]", path, i), as[i], bs[i], diffs)
		}
		return
	}

	if !reflect.DeepEqual(a, b) {
		*diffs = append(*diffs, path)
	}
}
