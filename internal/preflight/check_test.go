package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckStatus_String(t *testing.T) {
	assert.Equal(t, "PASS", StatusPass.String())
	assert.Equal(t, "WARN", StatusWarn.String())
	assert.Equal(t, "FAIL", StatusFail.String())
	assert.Equal(t, "UNKNOWN", CheckStatus(99).String())
}

func TestCheckResult_IsCritical(t *testing.T) {
	assert.True(t, CheckResult{Required: true, Status: StatusFail}.IsCritical())
	assert.False(t, CheckResult{Required: false, Status: StatusFail}.IsCritical())
	assert.False(t, CheckResult{Required: true, Status: StatusWarn}.IsCritical())
}

func TestCheckDiskSpace_PassesOnTempDir(t *testing.T) {
	c := New()
	result := c.CheckDiskSpace(t.TempDir())
	assert.Equal(t, StatusPass, result.Status)
	assert.Contains(t, result.Message, "free")
}

func TestCheckDiskSpace_MissingDirUsesParent(t *testing.T) {
	c := New()
	result := c.CheckDiskSpace(t.TempDir() + "/does-not-exist-yet")
	assert.Equal(t, StatusPass, result.Status)
}

func TestCheckWritePermissions_CreatesAndProbes(t *testing.T) {
	c := New()
	dir := t.TempDir() + "/data"

	result := c.CheckWritePermissions(dir)
	assert.Equal(t, StatusPass, result.Status)
	assert.DirExists(t, dir)
}

func TestCheckOllama_DaemonDown(t *testing.T) {
	c := New(WithOllama("http://127.0.0.1:1", "llama3.2:3b"))

	result := c.CheckOllamaDaemon(context.Background())
	assert.Equal(t, StatusWarn, result.Status)

	assert.Empty(t, c.CheckOllamaModels(context.Background()))
}

func TestCheckOllama_ModelsPresentAndMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		w.Write([]byte(`{"models":[{"name":"llama3.2:3b"},{"name":"embeddinggemma:latest"}]}`))
	}))
	defer srv.Close()

	c := New(WithOllama(srv.URL, "llama3.2:3b", "embeddinggemma", "mistral"))

	daemon := c.CheckOllamaDaemon(context.Background())
	assert.Equal(t, StatusPass, daemon.Status)

	results := c.CheckOllamaModels(context.Background())
	require.Len(t, results, 3)
	assert.Equal(t, StatusPass, results[0].Status)
	assert.Equal(t, StatusPass, results[1].Status, "latest tag should match bare model name")
	assert.Equal(t, StatusWarn, results[2].Status)
	assert.Contains(t, results[2].Message, "ollama pull mistral")
}

func TestRunAll_And_SummaryStatus(t *testing.T) {
	c := New()
	results := c.RunAll(context.Background(), t.TempDir())
	require.Len(t, results, 2, "without ollama configured only disk checks run")
	assert.Equal(t, "ready", c.SummaryStatus(results))

	withWarn := append(results, CheckResult{Status: StatusWarn})
	assert.Equal(t, "ready_with_warnings", c.SummaryStatus(withWarn))

	withFail := append(results, CheckResult{Status: StatusFail, Required: true})
	assert.Equal(t, "failed", c.SummaryStatus(withFail))
}
