package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/medivault/internal/analysis"
	"github.com/roach88/medivault/internal/ids"
	"github.com/roach88/medivault/internal/testutil"
)

var baseTime = time.Date(2026, 3, 1, 9, 30, 15, 0, time.UTC)

// testEnv is one vault shared by several CLI invocations.
type testEnv struct {
	t        *testing.T
	dbPath   string
	clock    *testutil.Clock
	ids      ids.Generator
	analyzer analysis.Analyzer
	stdin    string
}

func newTestEnv(t *testing.T, idList ...string) *testEnv {
	t.Helper()
	t.Setenv("MEDIVAULT_LOG_LEVEL", "disabled")
	t.Setenv("MEDIVAULT_LOG_FORMAT", "console")
	return &testEnv{
		t:      t,
		dbPath: filepath.Join(t.TempDir(), "vault.db"),
		clock:  testutil.NewClock(baseTime),
		ids:    ids.NewFixed(idList...),
	}
}

// run executes one command against the env's database.
func (e *testEnv) run(args ...string) (stdout, stderr string, code int) {
	e.t.Helper()
	opts := &RootOptions{
		Analyzer: e.analyzer,
		IDs:      e.ids,
		Now:      e.clock.Now,
		In:       strings.NewReader(e.stdin),
	}
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	full := append([]string{"--db", e.dbPath}, args...)
	code = execute(context.Background(), opts, full, out, errOut)
	return out.String(), errOut.String(), code
}

// mustRun executes a command and fails the test on a non-zero exit.
func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, errOut, code := e.run(args...)
	if code != ExitSuccess {
		e.t.Fatalf("%v exited %d: %s", args, code, errOut)
	}
	return out
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}
