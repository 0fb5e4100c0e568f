package ecadmin

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/ecfs/internal/cli/output"
	"github.com/marmos91/ecfs/pkg/namespace"
	"github.com/marmos91/ecfs/pkg/namespace/store/memory"
)

// countingService records calls and returns canned results.
type countingService struct {
	calls      int
	err        error
	policies   []*namespace.Policy
	effective  *namespace.Policy
	lastPath   string
	lastPolicy string
}

func (s *countingService) ListPolicies(context.Context) ([]*namespace.Policy, error) {
	s.calls++
	return s.policies, s.err
}

func (s *countingService) GetEffectivePolicy(_ context.Context, path string) (*namespace.Policy, error) {
	s.calls++
	s.lastPath = path
	return s.effective, s.err
}

func (s *countingService) SetPolicy(_ context.Context, path, policy string) error {
	s.calls++
	s.lastPath, s.lastPolicy = path, policy
	return s.err
}

func (s *countingService) UnsetPolicy(_ context.Context, path string) error {
	s.calls++
	s.lastPath = path
	return s.err
}

type harness struct {
	dispatcher *Dispatcher
	stdout     *bytes.Buffer
	stderr     *bytes.Buffer
}

func newHarness(t *testing.T, svc namespace.Service, mutate ...func(*Env)) *harness {
	t.Helper()

	h := &harness{stdout: new(bytes.Buffer), stderr: new(bytes.Buffer)}
	env := &Env{
		Stdout:     h.stdout,
		Stderr:     h.stderr,
		Service:    svc,
		WorkingDir: "/user/tester",
		Program:    "ecfsctl",
	}
	for _, m := range mutate {
		m(env)
	}
	h.dispatcher = NewDispatcher(DefaultRegistry(), env)
	return h
}

func (h *harness) run(t *testing.T, args ...string) int {
	t.Helper()

	h.stdout.Reset()
	h.stderr.Reset()
	status, err := h.dispatcher.Run(context.Background(), args)
	require.NoError(t, err)
	return status
}

// newLocalNamespace returns a namespace with /a/b created and two policies
// enabled.
func newLocalNamespace(t *testing.T) *namespace.Namespace {
	t.Helper()

	catalog, err := namespace.NewCatalog([]string{"RS-6-3-1024k", "RS-3-2-1024k"})
	require.NoError(t, err)
	ns, err := namespace.New(context.Background(), memory.New(), catalog)
	require.NoError(t, err)
	require.NoError(t, ns.Mkdirs(context.Background(), "/a/b"))
	return ns
}

func TestDispatcherResolvesEveryCommand(t *testing.T) {
	reg := DefaultRegistry()
	for _, c := range reg.Commands() {
		got, ok := reg.Resolve(c.Name())
		require.True(t, ok, c.Name())
		assert.Equal(t, c.Kind(), got.Kind())
	}

	_, ok := reg.Resolve("-listpolicies")
	assert.False(t, ok, "lookup is case sensitive")
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	reg.Register(NewCommand(GetPolicy))
	assert.PanicsWithValue(t, "command -getPolicy already registered", func() {
		reg.Register(NewCommand(GetPolicy))
	})
}

func TestDispatcherUsage(t *testing.T) {
	svc := &countingService{}
	h := newHarness(t, svc)

	t.Run("NoArguments", func(t *testing.T) {
		assert.Equal(t, ExitUsage, h.run(t))
		assert.Empty(t, h.stdout.String())
		for _, c := range DefaultRegistry().Commands() {
			assert.Contains(t, h.stderr.String(), c.ShortUsage())
		}
		assert.Contains(t, h.stderr.String(), "Usage: ecfsctl [COMMANDS]")
		assert.Contains(t, h.stderr.String(), "Generic options supported are:")
	})

	t.Run("UnknownDashedCommand", func(t *testing.T) {
		assert.Equal(t, ExitUsage, h.run(t, "-frobnicate"))
		assert.Contains(t, h.stderr.String(), "Can't understand command '-frobnicate'")
		assert.NotContains(t, h.stderr.String(), "Command names must start with dashes.")
		assert.Contains(t, h.stderr.String(), "[-setPolicy -path <path> -policy <policy>]")
	})

	t.Run("UnknownBareCommand", func(t *testing.T) {
		assert.Equal(t, ExitUsage, h.run(t, "getPolicy"))
		assert.Contains(t, h.stderr.String(), "Command names must start with dashes.")
	})

	assert.Zero(t, svc.calls)
}

func TestListPolicies(t *testing.T) {
	t.Run("PrintsNamesSkippingNil", func(t *testing.T) {
		svc := &countingService{policies: []*namespace.Policy{
			{ID: 1, Name: "RS-6-3-1024k", State: namespace.PolicyEnabled},
			nil,
			{ID: 5, Name: "XOR-2-1-1024k", State: namespace.PolicyDisabled},
		}}
		h := newHarness(t, svc)

		assert.Equal(t, ExitOK, h.run(t, "-listPolicies"))
		assert.Equal(t, "Erasure Coding Policies:\n\tRS-6-3-1024k\n\tXOR-2-1-1024k\n", h.stdout.String())
		assert.Empty(t, h.stderr.String())
	})

	t.Run("TooManyArguments", func(t *testing.T) {
		svc := &countingService{}
		h := newHarness(t, svc)

		assert.Equal(t, ExitUsage, h.run(t, "-listPolicies", "extra"))
		assert.Equal(t, "-listPolicies: Too many arguments\n", h.stderr.String())
		assert.Zero(t, svc.calls)
	})

	t.Run("RemoteFailure", func(t *testing.T) {
		svc := &countingService{err: errors.New("dial tcp 127.0.0.1:8080: connect: connection refused")}
		h := newHarness(t, svc)

		assert.Equal(t, ExitRemote, h.run(t, "-listPolicies"))
		assert.Equal(t, "dial tcp 127.0.0.1:8080: connect: connection refused\n", h.stderr.String())
		assert.Empty(t, h.stdout.String())
	})

	t.Run("TableShowsState", func(t *testing.T) {
		svc := &countingService{policies: []*namespace.Policy{
			{ID: 1, Name: "RS-6-3-1024k", State: namespace.PolicyEnabled},
			{ID: 5, Name: "XOR-2-1-1024k", State: namespace.PolicyDisabled},
		}}
		h := newHarness(t, svc, func(e *Env) { e.Format = output.FormatTable })

		assert.Equal(t, ExitOK, h.run(t, "-listPolicies"))
		assert.Contains(t, h.stdout.String(), "XOR-2-1-1024k")
		assert.Contains(t, h.stdout.String(), "DISABLED")
	})

	t.Run("JSON", func(t *testing.T) {
		svc := &countingService{policies: []*namespace.Policy{{ID: 2, Name: "RS-3-2-1024k", State: namespace.PolicyEnabled}}}
		h := newHarness(t, svc, func(e *Env) { e.Format = output.FormatJSON })

		assert.Equal(t, ExitOK, h.run(t, "-listPolicies"))
		assert.Contains(t, h.stdout.String(), `"name": "RS-3-2-1024k"`)
	})
}

func TestGetPolicy(t *testing.T) {
	ns := newLocalNamespace(t)
	h := newHarness(t, ns)

	t.Run("Unspecified", func(t *testing.T) {
		assert.Equal(t, ExitOK, h.run(t, "-getPolicy", "-path", "/a/b"))
		assert.Equal(t, "The erasure coding policy of /a/b is unspecified\n", h.stdout.String())
	})

	t.Run("Inherited", func(t *testing.T) {
		require.NoError(t, ns.SetPolicy(context.Background(), "/a", "RS-3-2-1024k"))
		assert.Equal(t, ExitOK, h.run(t, "-getPolicy", "-path", "/a/b"))
		assert.Equal(t, "RS-3-2-1024k\n", h.stdout.String())
	})

	t.Run("MissingPath", func(t *testing.T) {
		assert.Equal(t, ExitUsage, h.run(t, "-getPolicy"))
		assert.Contains(t, h.stderr.String(), "Please specify the path with -path.\nUsage: [-getPolicy -path <path>]\n")
		assert.Contains(t, h.stderr.String(), "Get the erasure coding policy of a file/directory.")
	})

	t.Run("TooManyArguments", func(t *testing.T) {
		assert.Equal(t, ExitUsage, h.run(t, "-getPolicy", "-path", "/a", "/b"))
		assert.Equal(t, "-getPolicy: Too many arguments\n", h.stderr.String())
	})

	t.Run("OptionWithoutValue", func(t *testing.T) {
		assert.Equal(t, ExitArgument, h.run(t, "-getPolicy", "-path"))
		assert.Equal(t, "IllegalArgumentException: option -path requires 1 argument.\n", h.stderr.String())
	})

	t.Run("EmptyPath", func(t *testing.T) {
		assert.Equal(t, ExitArgument, h.run(t, "-getPolicy", "-path", ""))
		assert.Equal(t, "IllegalArgumentException: Can not create a Path from an empty string\n", h.stderr.String())
	})

	t.Run("MissingFile", func(t *testing.T) {
		assert.Equal(t, ExitRemote, h.run(t, "-getPolicy", "-path", "/nope"))
		assert.Equal(t, "FileNotFoundException: path not found: /nope\n", h.stderr.String())
	})
}

func TestSetPolicy(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		h := newHarness(t, newLocalNamespace(t))

		assert.Equal(t, ExitOK, h.run(t, "-setPolicy", "-path", "/a/b", "-policy", "RS-6-3-1024k"))
		assert.Equal(t, "Set erasure coding policy RS-6-3-1024k on /a/b\n", h.stdout.String())

		assert.Equal(t, ExitOK, h.run(t, "-getPolicy", "-path", "/a/b"))
		assert.Equal(t, "RS-6-3-1024k\n", h.stdout.String())
	})

	t.Run("OptionsInAnyOrder", func(t *testing.T) {
		svc := &countingService{}
		h := newHarness(t, svc)

		assert.Equal(t, ExitOK, h.run(t, "-setPolicy", "-policy", "XOR-2-1-1024k", "-path", "/x/"))
		assert.Equal(t, "/x", svc.lastPath)
		assert.Equal(t, "XOR-2-1-1024k", svc.lastPolicy)
	})

	t.Run("MissingPolicy", func(t *testing.T) {
		svc := &countingService{}
		h := newHarness(t, svc)

		assert.Equal(t, ExitUsage, h.run(t, "-setPolicy", "-path", "/a/b"))
		assert.Contains(t, h.stderr.String(), "Please specify the policy name.\nUsage: [-setPolicy")
		assert.Zero(t, svc.calls)
	})

	t.Run("MissingPathReportedFirst", func(t *testing.T) {
		svc := &countingService{}
		h := newHarness(t, svc)

		assert.Equal(t, ExitUsage, h.run(t, "-setPolicy"))
		assert.Contains(t, h.stderr.String(), "Please specify the path for setting the EC policy.")
		assert.NotContains(t, h.stderr.String(), "Please specify the policy name.")
		assert.Zero(t, svc.calls)
	})

	t.Run("RejectedByService", func(t *testing.T) {
		h := newHarness(t, newLocalNamespace(t))

		assert.Equal(t, ExitRemote, h.run(t, "-setPolicy", "-path", "/a", "-policy", "RS-99-1-1k"))
		assert.Contains(t, h.stderr.String(), "HadoopIllegalArgumentException: ")
		assert.Contains(t, h.stderr.String(), "RS-99-1-1k")
	})
}

func TestUnsetPolicy(t *testing.T) {
	t.Run("RevertsToInherited", func(t *testing.T) {
		ns := newLocalNamespace(t)
		require.NoError(t, ns.SetPolicy(context.Background(), "/a", "RS-3-2-1024k"))
		h := newHarness(t, ns)

		assert.Equal(t, ExitOK, h.run(t, "-setPolicy", "-path", "/a/b", "-policy", "RS-6-3-1024k"))
		assert.Equal(t, ExitOK, h.run(t, "-unsetPolicy", "-path", "/a/b"))
		assert.Equal(t, "Unset erasure coding policy from /a/b\n", h.stdout.String())

		assert.Equal(t, ExitOK, h.run(t, "-getPolicy", "-path", "/a/b"))
		assert.Equal(t, "RS-3-2-1024k\n", h.stdout.String())
	})

	t.Run("RevertsToUnspecified", func(t *testing.T) {
		h := newHarness(t, newLocalNamespace(t))

		assert.Equal(t, ExitOK, h.run(t, "-setPolicy", "-path", "/a/b", "-policy", "RS-6-3-1024k"))
		assert.Equal(t, ExitOK, h.run(t, "-unsetPolicy", "-path", "/a/b"))
		assert.Equal(t, ExitOK, h.run(t, "-getPolicy", "-path", "/a/b"))
		assert.Equal(t, "The erasure coding policy of /a/b is unspecified\n", h.stdout.String())
	})

	t.Run("NothingToUnset", func(t *testing.T) {
		h := newHarness(t, newLocalNamespace(t))

		assert.Equal(t, ExitRemote, h.run(t, "-unsetPolicy", "-path", "/a"))
		assert.Equal(t, "NoECPolicySetException: no erasure coding policy set: no erasure coding policy explicitly set on /a\n",
			h.stderr.String())
	})

	t.Run("MissingPath", func(t *testing.T) {
		svc := &countingService{}
		h := newHarness(t, svc)

		assert.Equal(t, ExitUsage, h.run(t, "-unsetPolicy", "/a"))
		assert.Contains(t, h.stderr.String(), "Please specify a path.\nUsage: [-unsetPolicy -path <path>]")
		assert.Zero(t, svc.calls)
	})
}

func TestServiceFailuresExitTwo(t *testing.T) {
	tests := [][]string{
		{"-listPolicies"},
		{"-getPolicy", "-path", "/a"},
		{"-setPolicy", "-path", "/a", "-policy", "RS-6-3-1024k"},
		{"-unsetPolicy", "-path", "/a"},
	}
	for _, args := range tests {
		t.Run(args[0], func(t *testing.T) {
			svc := &countingService{err: errors.New("server unavailable")}
			h := newHarness(t, svc)

			assert.Equal(t, ExitRemote, h.run(t, args...))
			assert.Equal(t, "server unavailable\n", h.stderr.String())
			assert.Equal(t, 1, svc.calls)
		})
	}
}

func TestPathResolution(t *testing.T) {
	t.Run("RelativeToWorkingDir", func(t *testing.T) {
		svc := &countingService{}
		h := newHarness(t, svc)

		assert.Equal(t, ExitOK, h.run(t, "-getPolicy", "-path", "data/../logs"))
		assert.Equal(t, "/user/tester/logs", svc.lastPath)
		assert.Equal(t, "The erasure coding policy of data/../logs is unspecified\n", h.stdout.String())
	})

	t.Run("EndpointInPath", func(t *testing.T) {
		primary := &countingService{}
		other := &countingService{}
		var endpoint string
		h := newHarness(t, primary, func(e *Env) {
			e.Connect = func(_ context.Context, ep string) (namespace.Service, error) {
				endpoint = ep
				return other, nil
			}
		})

		assert.Equal(t, ExitOK, h.run(t, "-unsetPolicy", "-path", "ecfs://nn2:8080/warehouse"))
		assert.Equal(t, "nn2:8080", endpoint)
		assert.Equal(t, "/warehouse", other.lastPath)
		assert.Zero(t, primary.calls)
	})

	t.Run("WrongScheme", func(t *testing.T) {
		svc := &countingService{}
		h := newHarness(t, svc)

		assert.Equal(t, ExitArgument, h.run(t, "-getPolicy", "-path", "hdfs://nn:8020/a"))
		assert.Contains(t, h.stderr.String(), "Wrong FS: hdfs://nn:8020/a")
		assert.Zero(t, svc.calls)
	})

	t.Run("EndpointWithoutConnector", func(t *testing.T) {
		h := newHarness(t, &countingService{})
		assert.Equal(t, ExitArgument, h.run(t, "-getPolicy", "-path", "ecfs://nn2:8080/a"))
	})
}

func TestHelp(t *testing.T) {
	h := newHarness(t, &countingService{})

	t.Run("AllCommands", func(t *testing.T) {
		assert.Equal(t, ExitOK, h.run(t, "-help"))
		for _, c := range DefaultRegistry().Commands() {
			assert.Contains(t, h.stderr.String(), c.LongUsage()+"\n")
		}
		assert.Contains(t, h.stderr.String(), "The name of the erasure coding policy")
		assert.Empty(t, h.stdout.String())
	})

	t.Run("OneCommand", func(t *testing.T) {
		assert.Equal(t, ExitOK, h.run(t, "-help", "unsetPolicy"))
		assert.Contains(t, h.stderr.String(), "Unset the erasure coding policy for a directory.")

		assert.Equal(t, ExitOK, h.run(t, "-help", "-getPolicy"))
		assert.Contains(t, h.stderr.String(), "[-getPolicy -path <path>]")
	})

	t.Run("UnknownCommand", func(t *testing.T) {
		assert.Equal(t, ExitUsage, h.run(t, "-help", "mkdir"))
		assert.Contains(t, h.stderr.String(), "Unknown command 'mkdir'.")
		assert.Contains(t, h.stderr.String(), "listPolicies, getPolicy, setPolicy, unsetPolicy, help")
	})

	t.Run("TooManyArguments", func(t *testing.T) {
		assert.Equal(t, ExitUsage, h.run(t, "-help", "a", "b"))
	})
}

func TestLongUsage(t *testing.T) {
	assert.Equal(t, "[-listPolicies]\n\nGet the list of supported erasure coding policies.\n",
		NewCommand(ListPolicies).LongUsage())

	u := NewCommand(SetPolicy).LongUsage()
	assert.Contains(t, u, "[-setPolicy -path <path> -policy <policy>]\n\nSet the erasure coding policy for a file/directory.\n\n")
	assert.Contains(t, u, "<path>")
	assert.Contains(t, u, "<policy>")
}

func TestNewCommandPanicsOnUnknownKind(t *testing.T) {
	assert.Panics(t, func() { NewCommand(Kind(42)) })
}
