//go:build e2e

package e2e

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const repoRootRel = ".."   // relative to ./e2e
const mainPkgRel = "./cmd" // main.go lives in cmd/

func TestSmoke_HTTPArchive(t *testing.T) {
	repoRoot := repoRootPath(t)

	// nginx serves the monthly files the way the static archive host does
	dataURL := startArchiveServer(t)

	bin := buildBinary(t, repoRoot)
	addr := pickFreeAddr(t)

	cmd := exec.Command(bin)
	cmd.Env = append(os.Environ(),
		"APP_ENV=dev",
		"LOG_LEVEL=info",
		"HTTP_ADDR="+addr,
		"ENV_FILE=/nonexistent",

		"DATA_SOURCE=http",
		"DATA_URL="+dataURL,
		"LOCAL_OFFSET_HOURS=2",
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
	})

	client := &http.Client{Timeout: 5 * time.Second}
	base := "http://" + addr

	waitForOK(t, client, base+"/healthz", 10*time.Second)

	var months struct {
		Months       []string `json:"months"`
		Availability string   `json:"availability"`
	}
	getJSON(t, client, base+"/api/v1/months", &months)
	if len(months.Months) != 1 || months.Months[0] != "2025-07" {
		t.Fatalf("months=%v want=[2025-07]", months.Months)
	}
	if months.Availability != "2025/ 7" {
		t.Fatalf("availability=%q want=%q", months.Availability, "2025/ 7")
	}

	var day struct {
		Granularity string `json:"granularity"`
		Periods     []struct {
			Samples int `json:"samples"`
		} `json:"periods"`
		Summary struct {
			Rain struct {
				Total *float64 `json:"total"`
			} `json:"rain"`
		} `json:"summary"`
	}
	getJSON(t, client, base+"/api/v1/days/2025-07-07", &day)
	if day.Granularity != "hourly" || len(day.Periods) != 24 {
		t.Fatalf("granularity=%s periods=%d want=hourly/24", day.Granularity, len(day.Periods))
	}
	if day.Summary.Rain.Total == nil || *day.Summary.Rain.Total != 1.5 {
		t.Fatalf("rain total=%v want=1.5", day.Summary.Rain.Total)
	}

	stopServer(t, cmd)
}

func getJSON(t *testing.T, client *http.Client, url string, v any) {
	t.Helper()

	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status=%d want=%d", url, resp.StatusCode, http.StatusOK)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode json: %v", err)
	}
}

const manifestJSON = `{"availableFiles":["2025_07.json"]}`

// 2025-07-07 08:00 and 08:30 UTC, then 2025-07-08 10:00 UTC.
const julyJSON = `[
  {"t":1751875200000,"temp":20,"ws":3,"wd":90,"rain":0},
  {"t":1751877000000,"temp":22,"ws":3,"wd":90,"rain":1.5},
  {"t":1751968800000,"temp":25,"rain":0.5}
]`

func startArchiveServer(t *testing.T) string {
	t.Helper()

	hostDir := t.TempDir()
	for name, body := range map[string]string{"manifest.json": manifestJSON, "2025_07.json": julyJSON} {
		if err := os.WriteFile(filepath.Join(hostDir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	// nginx runs as an unprivileged worker
	if err := os.Chmod(hostDir, 0o755); err != nil {
		t.Fatalf("chmod: %v", err)
	}

	ctx := context.Background()
	httpPort := nat.Port("80/tcp")

	req := tc.ContainerRequest{
		Image:        "nginx:alpine",
		ExposedPorts: []string{string(httpPort)},
		HostConfigModifier: func(hc *container.HostConfig) {
			hc.Binds = append(hc.Binds, hostDir+":/usr/share/nginx/html:ro")
		},
		WaitingFor: wait.ForHTTP("/manifest.json").WithPort(httpPort).WithStartupTimeout(30 * time.Second),
	}

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start nginx container: %v", err)
	}

	t.Cleanup(func() {
		_ = c.Terminate(ctx)
	})

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := c.MappedPort(ctx, httpPort)
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}

	return "http://" + net.JoinHostPort(host, port.Port()) + "/"
}

func repoRootPath(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}

	repo := filepath.Clean(filepath.Join(wd, repoRootRel))
	if _, err := os.Stat(filepath.Join(repo, "go.mod")); err != nil {
		t.Fatalf("repo root %q does not contain go.mod: %v", repo, err)
	}

	return repo
}

func buildBinary(t *testing.T, repoRoot string) string {
	t.Helper()

	tmp := t.TempDir()
	out := filepath.Join(tmp, "mateometeo")

	build := exec.Command("go", "build", "-o", out, mainPkgRel)
	build.Dir = repoRoot
	build.Env = os.Environ()

	b, err := build.CombinedOutput()
	if err != nil {
		t.Fatalf("go build failed: %v\n%s", err, string(b))
	}

	return out
}

func pickFreeAddr(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen :0: %v", err)
	}
	defer ln.Close()

	return ln.Addr().String()
}

func waitForOK(t *testing.T, client *http.Client, url string, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server not healthy after %s: %s", timeout, url)
}

func stopServer(t *testing.T, cmd *exec.Cmd) {
	t.Helper()

	_ = cmd.Process.Signal(syscall.SIGTERM)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		t.Fatalf("server did not exit in time")
	case err := <-done:
		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				t.Fatalf("server exited non-zero: %v", err)
			}
			t.Fatalf("server wait error: %v", err)
		}
	}
}
