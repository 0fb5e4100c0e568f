package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/ecfs/internal/ecadmin"
	"github.com/marmos91/ecfs/pkg/controlplane/api"
	"github.com/marmos91/ecfs/pkg/controlplane/api/auth"
	"github.com/marmos91/ecfs/pkg/namespace"
	"github.com/marmos91/ecfs/pkg/namespace/store/memory"
)

type cli struct {
	url   string
	token string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(api.EnvControlPlaneSecret, "")

	catalog, err := namespace.NewCatalog([]string{"RS-6-3-1024k", "XOR-2-1-1024k"})
	require.NoError(t, err)
	ns, err := namespace.New(context.Background(), memory.New(), catalog)
	require.NoError(t, err)
	require.NoError(t, ns.Mkdirs(context.Background(), "/data/warm"))
	_, err = ns.CreateFile(context.Background(), "/data/readme")
	require.NoError(t, err)

	server, err := api.NewServer(api.APIConfig{
		JWT: api.JWTConfig{Secret: "ecfsctl-test-secret-long-enough-for-hs256"},
	}, ns)
	require.NoError(t, err)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	token, _, err := server.JWTService().GenerateAccessToken("ops", auth.RoleAdmin, 0)
	require.NoError(t, err)
	return &cli{url: ts.URL, token: token}
}

// exec runs ecfsctl against the test server with the generic options set.
func (c *cli) exec(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	full := append([]string{"-fs", c.url, "-token", c.token, "-loglevel", "error"}, args...)
	status := run(context.Background(), full, &stdout, &stderr)
	return status, stdout.String(), stderr.String()
}

func TestPolicyCommands(t *testing.T) {
	c := newCLI(t)

	status, out, _ := c.exec("-listPolicies")
	assert.Equal(t, ecadmin.ExitOK, status)
	assert.Contains(t, out, "RS-6-3-1024k")
	assert.Contains(t, out, "XOR-2-1-1024k")

	status, out, _ = c.exec("-getPolicy", "-path", "/data/warm")
	assert.Equal(t, ecadmin.ExitOK, status)
	assert.Contains(t, out, "is unspecified")

	status, out, _ = c.exec("-setPolicy", "-path", "/data", "-policy", "XOR-2-1-1024k")
	assert.Equal(t, ecadmin.ExitOK, status)
	assert.Equal(t, "Set erasure coding policy XOR-2-1-1024k on /data\n", out)

	status, out, _ = c.exec("-getPolicy", "-path", "/data/warm")
	assert.Equal(t, ecadmin.ExitOK, status)
	assert.Equal(t, "XOR-2-1-1024k\n", out)

	status, _, _ = c.exec("-unsetPolicy", "-path", "/data")
	assert.Equal(t, ecadmin.ExitOK, status)

	status, _, errOut := c.exec("-unsetPolicy", "-path", "/data")
	assert.Equal(t, ecadmin.ExitRemote, status)
	assert.Contains(t, errOut, "NoECPolicySetException")
}

func TestRemoteErrors(t *testing.T) {
	c := newCLI(t)

	status, out, errOut := c.exec("-getPolicy", "-path", "/missing")
	assert.Equal(t, ecadmin.ExitRemote, status)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "FileNotFoundException")

	status, _, errOut = c.exec("-setPolicy", "-path", "/data/readme", "-policy", "RS-6-3-1024k")
	assert.Equal(t, ecadmin.ExitRemote, status)
	assert.Contains(t, errOut, "IllegalArgumentException")

	status, _, errOut = c.exec("-setPolicy", "-path", "/data", "-policy", "RS-10-4-1024k")
	assert.Equal(t, ecadmin.ExitRemote, status)
	assert.Contains(t, errOut, "HadoopIllegalArgumentException")
}

func TestUsageAndArguments(t *testing.T) {
	c := newCLI(t)

	status, _, errOut := c.exec()
	assert.Equal(t, ecadmin.ExitUsage, status)
	assert.Contains(t, errOut, "Usage: ecfsctl")

	status, _, errOut = c.exec("-getPolicy")
	assert.Equal(t, ecadmin.ExitUsage, status)
	assert.Contains(t, errOut, "Usage:")

	status, _, _ = c.exec("-getPolicy", "-path")
	assert.Equal(t, ecadmin.ExitArgument, status)

	var stdout, stderr bytes.Buffer
	status = run(context.Background(), []string{"-fs"}, &stdout, &stderr)
	assert.Equal(t, ecadmin.ExitArgument, status)
	assert.Contains(t, stderr.String(), "option -fs requires 1 argument")

	stderr.Reset()
	status = run(context.Background(), []string{"-fs", "hdfs://nn:8020", "-listPolicies"}, &stdout, &stderr)
	assert.Equal(t, ecadmin.ExitArgument, status)
	assert.Contains(t, stderr.String(), "Wrong FS")
}

func TestPathSelectsEndpoint(t *testing.T) {
	c := newCLI(t)
	u, err := url.Parse(c.url)
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	args := []string{
		"-fs", "http://127.0.0.1:1", "-token", c.token, "-loglevel", "error",
		"-setPolicy", "-path", "ecfs://" + u.Host + "/data/warm", "-policy", "RS-6-3-1024k",
	}
	status := run(context.Background(), args, &stdout, &stderr)
	assert.Equal(t, ecadmin.ExitOK, status, stderr.String())

	status, out, _ := c.exec("-getPolicy", "-path", "/data/warm")
	assert.Equal(t, ecadmin.ExitOK, status)
	assert.Equal(t, "RS-6-3-1024k", strings.TrimSpace(out))
}

func TestWorkDirResolvesRelativePaths(t *testing.T) {
	c := newCLI(t)

	status, out, _ := c.exec("-workdir", "/data", "-setPolicy", "-path", "warm", "-policy", "XOR-2-1-1024k")
	assert.Equal(t, ecadmin.ExitOK, status)
	assert.Equal(t, "Set erasure coding policy XOR-2-1-1024k on warm\n", out)

	status, out, _ = c.exec("-getPolicy", "-path", "/data/warm")
	assert.Equal(t, ecadmin.ExitOK, status)
	assert.Equal(t, "XOR-2-1-1024k\n", out)

	status, _, errOut := c.exec("-workdir", "data", "-listPolicies")
	assert.Equal(t, ecadmin.ExitArgument, status)
	assert.Contains(t, errOut, "IllegalArgumentException")
}

func TestServerURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "ecfs://ns1:8080", want: "http://ns1:8080"},
		{in: "ecfs://ns1:8080/ignored", want: "http://ns1:8080"},
		{in: "http://localhost:8080/", want: "http://localhost:8080"},
		{in: "https://ns.example.com", want: "https://ns.example.com"},
		{in: "hdfs://nn:8020", wantErr: true},
		{in: "ns1:8080", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := serverURL(tt.in)
			if tt.wantErr {
				var argErr *ecadmin.ArgumentError
				assert.ErrorAs(t, err, &argErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
