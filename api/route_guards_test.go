package api

import (
	"bufio"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestRoutegroupsUseGuards(t *testing.T) {
	root := projectRoot(t)
	dir := filepath.Join(root, "api", "routegroups")
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read routegroups dir: %v", err)
	}
	found := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".go") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		lines := readLines(t, path)
		for i, line := range lines {
			if !strings.Contains(line, ".MethodFunc(") {
				continue
			}
			found++
			if strings.Contains(line, "g.Session(") || strings.Contains(line, "g.Device(") || strings.Contains(line, "g.Login(") {
				continue
			}
			t.Fatalf("unguarded routegroup handler in %s:%d -> %s", path, i+1, strings.TrimSpace(line))
		}
	}
	if found == 0 {
		t.Fatalf("no routegroup handlers found in %s", dir)
	}
}

func TestIncidentRoutesRequireSession(t *testing.T) {
	root := projectRoot(t)
	path := filepath.Join(root, "api", "routegroups", "incidents.go")
	lines := readLines(t, path)
	found := 0
	for i, line := range lines {
		if !strings.Contains(line, ".MethodFunc(") {
			continue
		}
		found++
		if strings.Contains(line, "g.Session(") {
			continue
		}
		t.Fatalf("incident route missing session guard in %s:%d -> %s", path, i+1, strings.TrimSpace(line))
	}
	if found == 0 {
		t.Fatalf("no incident routes found in %s", path)
	}
}

func TestLoginRouteIsRateLimited(t *testing.T) {
	root := projectRoot(t)
	path := filepath.Join(root, "api", "routegroups", "auth.go")
	for i, line := range readLines(t, path) {
		if strings.Contains(line, "\"/login\"") && !strings.Contains(line, "g.Login(") {
			t.Fatalf("login route without rate limit in %s:%d -> %s", path, i+1, strings.TrimSpace(line))
		}
	}
}

func projectRoot(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(thisFile), ".."))
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan %s: %v", path, err)
	}
	return lines
}
