package command

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsrelay/stackctl/internal/core/topology"
)

// =============================================================================
// Test Doubles
// =============================================================================

// recordingRelay captures every relay invocation instead of spawning tools.
type recordingRelay struct {
	specs []RunSpec
	err   error
}

func (r *recordingRelay) Run(_ context.Context, spec RunSpec) error {
	r.specs = append(r.specs, spec)
	return r.err
}

type stubConfirmer struct {
	answer bool
	asked  int
}

func (c *stubConfirmer) Confirm(string) (bool, error) {
	c.asked++
	return c.answer, nil
}

type stubVerifier struct {
	port   int
	called int
	err    error
}

func (v *stubVerifier) Verify(_ context.Context, port int) error {
	v.called++
	v.port = port
	return v.err
}

type stubProber struct {
	info EngineInfo
	err  error
}

func (p *stubProber) Ping(context.Context) (EngineInfo, error) {
	return p.info, p.err
}

type stubInspector struct {
	services []ServiceSummary
	path     string
	err      error
}

func (i *stubInspector) Services(path string) ([]ServiceSummary, error) {
	i.path = path
	return i.services, i.err
}

// =============================================================================
// Fixtures
// =============================================================================

const fullEnv = `DB_ROOT_USER=root
DB_ROOT_PASSWORD=s3cret
DB_NAME=appdb
HTTP_PORT=8080
`

type fixture struct {
	dispatcher *Dispatcher
	relay      *recordingRelay
	confirm    *stubConfirmer
	verifier   *stubVerifier
	inspector  *stubInspector
	out        *bytes.Buffer
}

// newFixture builds a dispatcher wired to recording doubles, with the env
// file holding the given content ("" = no file on disk).
func newFixture(t *testing.T, envContent string) *fixture {
	t.Helper()

	envPath := filepath.Join(t.TempDir(), ".env")
	if envContent != "" {
		require.NoError(t, os.WriteFile(envPath, []byte(envContent), 0644))
	}

	f := &fixture{
		relay:     &recordingRelay{},
		confirm:   &stubConfirmer{answer: true},
		verifier:  &stubVerifier{},
		inspector: &stubInspector{},
		out:       &bytes.Buffer{},
	}
	f.dispatcher = NewDispatcher(Dispatcher{
		Topology: topology.Topology{
			DevFile:  "docker-compose.yml",
			ProdFile: "docker-compose.prod.yml",
		},
		EnvFile: envPath,
		Compose: []string{"docker", "compose"},
		Backend: BackendTools{Dir: "backend", Tool: "npm", Service: "backend"},
		Database: DatabaseTools{
			Service:  "mongo",
			Client:   "mongosh",
			DumpTool: "mongodump",
			AuthDB:   "admin",
			DumpDir:  "/backups",
		},
		Relay:   f.relay,
		Confirm: f.confirm,
		Health:  f.verifier,
		Engine:  &stubProber{info: EngineInfo{Version: "28.0", APIVersion: "1.48", OS: "linux"}},
		Inspect: f.inspector,
		Out:     f.out,
		Now:     func() time.Time { return time.Date(2026, 3, 14, 15, 9, 26, 0, time.Local) },
	})
	return f
}

func (f *fixture) dispatch(t *testing.T, name, mode, target string, extra ...string) error {
	t.Helper()
	return f.dispatcher.Dispatch(context.Background(), name, mode, target, extra)
}

// =============================================================================
// Lifecycle Dispatch Tests
// =============================================================================

func TestDispatch_UpDefaultsToDevelopment(t *testing.T) {
	f := newFixture(t, "")

	require.NoError(t, f.dispatch(t, "up", "", ""))

	require.Len(t, f.relay.specs, 1)
	spec := f.relay.specs[0]
	assert.Equal(t, "docker", spec.Name)
	assert.Equal(t, []string{"compose", "-f", "docker-compose.yml", "up", "-d"}, spec.Args)
}

func TestDispatch_DownProductionScopedToService(t *testing.T) {
	f := newFixture(t, "")

	require.NoError(t, f.dispatch(t, "down", "prod", "gateway"))

	require.Len(t, f.relay.specs, 1)
	assert.Equal(t,
		[]string{"compose", "-f", "docker-compose.prod.yml", "down", "gateway"},
		f.relay.specs[0].Args)
}

func TestDispatch_ExtraArgsPassThroughBeforeTarget(t *testing.T) {
	f := newFixture(t, "")

	require.NoError(t, f.dispatch(t, "down", "", "mongo", "-v"))

	require.Len(t, f.relay.specs, 1)
	assert.Equal(t,
		[]string{"compose", "-f", "docker-compose.yml", "down", "-v", "mongo"},
		f.relay.specs[0].Args)
}

func TestDispatch_TypoModeFallsBackToDevelopment(t *testing.T) {
	f := newFixture(t, "")

	require.NoError(t, f.dispatch(t, "up", "porduction", ""))

	require.Len(t, f.relay.specs, 1)
	assert.Contains(t, f.relay.specs[0].Args, "docker-compose.yml")
}

func TestDispatch_RelayFailurePropagates(t *testing.T) {
	f := newFixture(t, "")
	relayErr := errors.New("exit status 17")
	f.relay.err = relayErr

	err := f.dispatch(t, "build", "", "")

	assert.ErrorIs(t, err, relayErr)
}

func TestDispatch_UnknownCommand(t *testing.T) {
	f := newFixture(t, "")

	err := f.dispatch(t, "deploy", "", "")

	var usageErr *UsageError
	require.ErrorAs(t, err, &usageErr)
	assert.Empty(t, f.relay.specs)
}

// =============================================================================
// Access Command Tests
// =============================================================================

func TestDispatch_ShellRequiresTarget(t *testing.T) {
	f := newFixture(t, "")

	err := f.dispatch(t, "sh", "", "")

	var usageErr *UsageError
	require.ErrorAs(t, err, &usageErr)
	assert.Equal(t, "sh", usageErr.Command)
	assert.Empty(t, f.relay.specs, "no relay may be attempted on a usage error")
}

func TestDispatch_ShellIntoNamedService(t *testing.T) {
	f := newFixture(t, "")

	require.NoError(t, f.dispatch(t, "sh", "", "gateway"))

	require.Len(t, f.relay.specs, 1)
	assert.Equal(t,
		[]string{"compose", "-f", "docker-compose.yml", "exec", "gateway", "sh"},
		f.relay.specs[0].Args)
}

func TestDispatch_DatabaseShellAuthenticatesClient(t *testing.T) {
	f := newFixture(t, fullEnv)

	require.NoError(t, f.dispatch(t, "db", "", ""))

	require.Len(t, f.relay.specs, 1)
	assert.Equal(t,
		[]string{"compose", "-f", "docker-compose.yml", "exec", "mongo",
			"mongosh", "-u", "root", "-p", "s3cret",
			"--authenticationDatabase", "admin", "appdb"},
		f.relay.specs[0].Args)
}

func TestDispatch_DatabaseShellMissingCredential(t *testing.T) {
	f := newFixture(t, "DB_ROOT_USER=root\nDB_NAME=appdb\n")

	err := f.dispatch(t, "db", "", "")

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Empty(t, f.relay.specs)
}

// =============================================================================
// Alias Tests
// =============================================================================

func TestDispatch_BackendShellAliasPinsModeAndTarget(t *testing.T) {
	f := newFixture(t, "")

	// The alias overrides whatever mode and target the operator passed.
	require.NoError(t, f.dispatch(t, "backend-sh", "prod", "gateway"))

	require.Len(t, f.relay.specs, 1)
	assert.Equal(t,
		[]string{"compose", "-f", "docker-compose.yml", "exec", "backend", "sh"},
		f.relay.specs[0].Args)
}

func TestDispatch_ProdUpAliasPinsProduction(t *testing.T) {
	f := newFixture(t, "")

	require.NoError(t, f.dispatch(t, "prod-up", "dev", ""))

	require.Len(t, f.relay.specs, 1)
	assert.Contains(t, f.relay.specs[0].Args, "docker-compose.prod.yml")
}

// =============================================================================
// Guarded Action Tests
// =============================================================================

func TestDispatch_ResetDeclinedMakesNoRelay(t *testing.T) {
	f := newFixture(t, fullEnv)
	f.confirm.answer = false

	err := f.dispatch(t, "db-reset", "", "")

	assert.ErrorIs(t, err, ErrConfirmationDeclined)
	assert.Equal(t, 1, f.confirm.asked)
	assert.Empty(t, f.relay.specs)
}

func TestDispatch_ResetConfirmedDropsDatabase(t *testing.T) {
	f := newFixture(t, fullEnv)

	require.NoError(t, f.dispatch(t, "db-reset", "", ""))

	require.Len(t, f.relay.specs, 1)
	args := f.relay.specs[0].Args
	assert.Contains(t, args, "--eval")
	assert.Contains(t, args, "db.dropDatabase()")
	assert.Contains(t, args, "-T", "destructive exec must not allocate a TTY")
	assert.Contains(t, f.out.String(), "WARNING")
}

func TestDispatch_GuardedActionsRequireAllCredentials(t *testing.T) {
	// Each case omits exactly one of the four required keys.
	tests := []struct {
		name    string
		content string
	}{
		{"no user", "DB_ROOT_PASSWORD=pw\nDB_NAME=db\nHTTP_PORT=80\n"},
		{"no password", "DB_ROOT_USER=root\nDB_NAME=db\nHTTP_PORT=80\n"},
		{"no database", "DB_ROOT_USER=root\nDB_ROOT_PASSWORD=pw\nHTTP_PORT=80\n"},
		{"no port", "DB_ROOT_USER=root\nDB_ROOT_PASSWORD=pw\nDB_NAME=db\n"},
	}

	for _, command := range []string{"db-reset", "db-backup"} {
		for _, tt := range tests {
			t.Run(command+"/"+tt.name, func(t *testing.T) {
				f := newFixture(t, tt.content)

				err := f.dispatch(t, command, "", "")

				var cfgErr *ConfigError
				require.ErrorAs(t, err, &cfgErr)
				assert.Len(t, cfgErr.Missing, 1)
				assert.Empty(t, f.relay.specs)
			})
		}
	}
}

func TestDispatch_BackupUsesTimestampedArchive(t *testing.T) {
	f := newFixture(t, fullEnv)

	require.NoError(t, f.dispatch(t, "db-backup", "", ""))

	require.Len(t, f.relay.specs, 1)
	assert.Contains(t, f.relay.specs[0].Args, "--archive=/backups/backup-20260314-150926.archive")
	assert.Contains(t, f.out.String(), "backup-20260314-150926.archive")
	assert.Equal(t, 0, f.confirm.asked, "backup must not prompt")
}

func TestBackupFilename_SortsChronologically(t *testing.T) {
	base := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	first := BackupFilename(base)
	second := BackupFilename(base.Add(time.Second))
	nextDay := BackupFilename(base.Add(24 * time.Hour))

	assert.NotEqual(t, first, second)
	assert.Less(t, first, second)
	assert.Less(t, second, nextDay)
}

// =============================================================================
// Verification and Inspection Tests
// =============================================================================

func TestDispatch_HealthPassesPortToVerifier(t *testing.T) {
	f := newFixture(t, fullEnv)

	require.NoError(t, f.dispatch(t, "health", "", ""))

	assert.Equal(t, 1, f.verifier.called)
	assert.Equal(t, 8080, f.verifier.port)
	assert.Contains(t, f.out.String(), "all health checks passed")
}

func TestDispatch_HealthRequiresPort(t *testing.T) {
	f := newFixture(t, "DB_ROOT_USER=root\n")

	err := f.dispatch(t, "health", "", "")

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, 0, f.verifier.called)
}

func TestDispatch_HealthRejectsNonNumericPort(t *testing.T) {
	f := newFixture(t, "HTTP_PORT=eighty\n")

	err := f.dispatch(t, "health", "", "")

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, 0, f.verifier.called)
}

func TestDispatch_HealthFailurePropagates(t *testing.T) {
	f := newFixture(t, fullEnv)
	f.verifier.err = errors.New("edge health check failed")

	err := f.dispatch(t, "health", "", "")

	require.Error(t, err)
	assert.NotContains(t, f.out.String(), "all health checks passed")
}

func TestDispatch_ServicesListsActiveTopology(t *testing.T) {
	f := newFixture(t, "")
	f.inspector.services = []ServiceSummary{
		{Name: "gateway", Image: "nginx:1.27", Ports: []string{"8080:80"}},
		{Name: "backend", Image: "node:22"},
	}

	require.NoError(t, f.dispatch(t, "services", "prod", ""))

	assert.Equal(t, "docker-compose.prod.yml", f.inspector.path)
	assert.Contains(t, f.out.String(), "gateway")
	assert.Contains(t, f.out.String(), "nginx:1.27")
	assert.Empty(t, f.relay.specs, "inspection must not relay")
}

func TestDispatch_DoctorReportsEngine(t *testing.T) {
	f := newFixture(t, "")

	require.NoError(t, f.dispatch(t, "doctor", "", ""))

	assert.Contains(t, f.out.String(), "engine ok")
	assert.Contains(t, f.out.String(), "28.0")
}

// =============================================================================
// Package Manager Relay Tests
// =============================================================================

func TestDispatch_BackendCommandsRunInBackendDir(t *testing.T) {
	tests := []struct {
		command string
		args    []string
	}{
		{"install", []string{"install"}},
		{"compile", []string{"run", "build"}},
		{"typecheck", []string{"run", "typecheck"}},
		{"watch", []string{"run", "dev"}},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			f := newFixture(t, "")

			require.NoError(t, f.dispatch(t, tt.command, "", ""))

			require.Len(t, f.relay.specs, 1)
			spec := f.relay.specs[0]
			assert.Equal(t, "npm", spec.Name)
			assert.Equal(t, tt.args, spec.Args)
			assert.Equal(t, "backend", spec.Dir)
		})
	}
}

// =============================================================================
// Table Tests
// =============================================================================

func TestNames_Sorted(t *testing.T) {
	f := newFixture(t, "")

	names := Names(f.dispatcher.Commands())

	assert.Contains(t, names, "up")
	assert.Contains(t, names, "db-reset")
	assert.IsIncreasing(t, names)
}
