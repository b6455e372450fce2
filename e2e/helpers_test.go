package e2e_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var (
	binaryPath     string
	binaryBuildErr error
	binaryOnce     sync.Once
	sharedTempDir  string
)

const (
	adminEmail    = "admin@loja.dev"
	adminPassword = "segredo1"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)

// TestMain sets up and tears down shared test resources.
func TestMain(m *testing.M) {
	var err error
	sharedTempDir, err = os.MkdirTemp("", "loja-e2e-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create temp dir: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	_ = os.RemoveAll(sharedTempDir)

	os.Exit(code)
}

// ServerConfig holds configuration for starting the loja server.
type ServerConfig struct {
	Port          int
	DBType        string // sqlite, postgres
	DBDSN         string
	StoragePath   string
	ProtectWrites bool
}

// tables returns fresh table names so tests sharing one postgres database
// stay apart.
func (c ServerConfig) tables() (string, string) {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return "e2e_products_" + suffix, "e2e_accounts_" + suffix
}

// buildBinary compiles the loja binary once per test run.
// Returns the path to the compiled binary.
func buildBinary(t *testing.T) string {
	t.Helper()

	binaryOnce.Do(func() {
		binaryPath = filepath.Join(sharedTempDir, "loja")

		cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/loja")
		cmd.Dir = getProjectRoot(t)
		output, err := cmd.CombinedOutput()
		if err != nil {
			binaryBuildErr = fmt.Errorf("build binary: %w\nOutput: %s", err, output)
			return
		}
	})

	if binaryBuildErr != nil {
		t.Fatalf("failed to build binary: %v", binaryBuildErr)
	}

	return binaryPath
}

// getProjectRoot returns the root directory of the loja project.
func getProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err, "get working directory")

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// createConfigFile writes a config file for cfg and returns its path.
// Every call gets fresh table names.
func createConfigFile(t *testing.T, cfg ServerConfig) string {
	t.Helper()

	products, accounts := cfg.tables()

	content := fmt.Sprintf(`server:
  port: %d

database:
  type: %s
  dsn: "%s"
  tables:
    products: %s
    accounts: %s

storage:
  path: "%s"

session:
  secret: "e2e-session-secret-e2e-session-secret"

auth:
  protect_writes: %t
  admin:
    email: %s
    password: %s

log:
  level: error
`,
		cfg.Port,
		cfg.DBType,
		cfg.DBDSN,
		products,
		accounts,
		cfg.StoragePath,
		cfg.ProtectWrites,
		adminEmail,
		adminPassword,
	)

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(configPath, []byte(content), 0o600)
	require.NoError(t, err, "write config file")

	return configPath
}

// runCommand runs a loja subcommand against configPath and returns its output.
func runCommand(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()

	binary := buildBinary(t)
	args = append(args, "--config", configPath)

	out, err := exec.Command(binary, args...).CombinedOutput()
	return string(out), err
}

// startServer migrates the database and starts the loja binary.
// Returns the base URL and a cleanup function that must be called to stop the server.
func startServer(t *testing.T, configPath string, port int) (string, func()) {
	t.Helper()

	out, err := runCommand(t, configPath, "migrate")
	require.NoError(t, err, "migrate: %s", out)

	cmd := exec.Command(buildBinary(t), "serve", "--config", configPath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err = cmd.Start()
	require.NoError(t, err, "start server")

	baseURL := fmt.Sprintf("http://localhost:%d", port)

	waitForServer(t, baseURL, 10*time.Second)

	cleanup := func() {
		if cmd.Process != nil {
			_ = cmd.Process.Signal(syscall.SIGTERM)
			_ = cmd.Wait()
		}
	}

	return baseURL, cleanup
}

// waitForServer polls the health endpoint until it responds or times out.
func waitForServer(t *testing.T, baseURL string, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: 1 * time.Second}

	for time.Now().Before(deadline) {
		resp, err := client.Get(baseURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Fatalf("server failed to start within %v", timeout)
}

// getOpenPort finds an available TCP port.
func getOpenPort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", ":0")
	require.NoError(t, err, "find open port")

	port := l.Addr().(*net.TCPAddr).Port

	err = l.Close()
	require.NoError(t, err, "close port")

	return port
}

// newBrowser returns a client that keeps cookies and does not follow redirects.
func newBrowser(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &http.Client{
		Jar:     jar,
		Timeout: 10 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func postForm(t *testing.T, client *http.Client, target string, values url.Values) *http.Response {
	t.Helper()

	resp, err := client.PostForm(target, values)
	require.NoError(t, err)
	return resp
}

func postMultipart(t *testing.T, client *http.Client, target string, fields map[string]string, fileField string, file []byte) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		w, err := mw.CreateFormFile(fileField, "upload.png")
		require.NoError(t, err)
		_, err = w.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	resp, err := client.Post(target, mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	return resp
}

var (
	imageSrcRe  = regexp.MustCompile(`src="(/imagens/products/[^"]+)"`)
	productIDRe = regexp.MustCompile(`/excluir-produto/([0-9a-f-]{36})`)
)
