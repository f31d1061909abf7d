package bridge_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/funvibe/hostbridge/internal/journal"
	"github.com/funvibe/hostbridge/internal/launcher"
	"github.com/funvibe/hostbridge/pkg/assert"
	"github.com/funvibe/hostbridge/pkg/bridge"
)

// The end-to-end tests launch this test binary as the host: TestMain
// detects the host-side invocation and hands control to HostMain with
// the same bindings the outer side registered.
func TestMain(m *testing.M) {
	if bridge.IsHostInvocation(os.Args) {
		b := bridge.New()
		if _, err := bindAll(b); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		os.Exit(bridge.HostMain(os.Args[1:], b.Registry(), os.Stdout))
	}
	os.Exit(m.Run())
}

// bindings holds the bound handles for the e2e scenarios.
type bindings struct {
	passing   *bridge.BoundTest
	broken    *bridge.BoundTest
	echo      *bridge.BoundTest
	exploding *bridge.BoundTest
	compare   *bridge.BoundTest
	scene     *bridge.Fixture
}

// bindAll registers the scenario functions; both sides of the process
// boundary run it so identities line up.
func bindAll(b *bridge.Bridge) (*bindings, error) {
	bn := &bindings{}
	for _, binding := range []struct {
		dst **bridge.BoundTest
		fn  bridge.Func
	}{
		{&bn.passing, passingScene},
		{&bn.broken, brokenScene},
		{&bn.echo, echoArguments},
		{&bn.exploding, explodingAssert},
		{&bn.compare, compareScenes},
	} {
		bt, err := b.BindTest(binding.fn)
		if err != nil {
			return nil, err
		}
		*binding.dst = bt
	}

	f, err := b.BindFixture(buildScene)
	if err != nil {
		return nil, err
	}
	bn.scene = f
	return bn, nil
}

func passingScene(args []any, kwargs map[string]any) (any, error) {
	return nil, nil
}

func brokenScene(args []any, kwargs map[string]any) (any, error) {
	return nil, errors.New("x")
}

// locallyInvoked must stay false in the outer process: bound test bodies
// only ever execute inside the host.
var locallyInvoked bool

func echoArguments(args []any, kwargs map[string]any) (any, error) {
	locallyInvoked = true
	assert.Len(args, 2)
	assert.Equal(args[0], 7)
	assert.Equal(args[1], "cube")
	assert.Equal(kwargs["flag"], true)
	return nil, nil
}

func explodingAssert(args []any, kwargs map[string]any) (any, error) {
	assert.Equal(len("scene"), 99)
	return nil, nil
}

var sceneBuilds int

func buildScene(args []any, kwargs map[string]any) (any, error) {
	sceneBuilds++
	return fmt.Sprintf("scene-%d", sceneBuilds), nil
}

// compareScenes proves fixture memoization across a diamond: both
// arguments must be the single first build.
func compareScenes(args []any, kwargs map[string]any) (any, error) {
	assert.Len(args, 2)
	assert.Equal(args[0], "scene-1")
	assert.Equal(args[1], "scene-1")
	return nil, nil
}

// recorder captures Fatalf instead of aborting the test.
type recorder struct {
	called bool
	msg    string
}

func (r *recorder) Fatalf(format string, args ...any) {
	r.called = true
	r.msg = fmt.Sprintf(format, args...)
}

func newOuterBridge(t *testing.T, opts ...bridge.Option) *bindings {
	t.Helper()
	self, err := os.Executable()
	if err != nil {
		t.Fatalf("resolving test binary: %v", err)
	}

	b := bridge.New(append([]bridge.Option{bridge.WithHostPath(self)}, opts...)...)
	bn, err := bindAll(b)
	if err != nil {
		t.Fatalf("binding scenarios: %v", err)
	}
	return bn
}

func TestHostRunPasses(t *testing.T) {
	bn := newOuterBridge(t)

	r := &recorder{}
	if err := bn.passing.Call(r, nil, nil); err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if r.called {
		t.Fatalf("passing scenario reported failure:\n%s", r.msg)
	}
}

func TestHostRunFailureIsReported(t *testing.T) {
	bn := newOuterBridge(t)

	r := &recorder{}
	if err := bn.broken.Call(r, nil, nil); err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if !r.called {
		t.Fatal("failing scenario did not reach the reporter")
	}
	if !strings.HasPrefix(r.msg, "Error in host process!") {
		t.Errorf("report prefix wrong:\n%s", r.msg)
	}
	if !strings.Contains(r.msg, "\nx\n") {
		t.Errorf("report lacks the failure message:\n%s", r.msg)
	}
	if !strings.Contains(r.msg, "goroutine") {
		t.Errorf("report lacks a traceback:\n%s", r.msg)
	}
}

func TestHostRunArgumentsCrossTheBoundary(t *testing.T) {
	bn := newOuterBridge(t)

	r := &recorder{}
	err := bn.echo.Call(r, []any{7, "cube"}, map[string]any{"flag": true})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if r.called {
		t.Fatalf("argument mismatch inside the host:\n%s", r.msg)
	}
	if locallyInvoked {
		t.Error("bound test body executed in the outer process")
	}
}

func TestHostRunAssertionFailure(t *testing.T) {
	bn := newOuterBridge(t)

	r := &recorder{}
	if err := bn.exploding.Call(r, nil, nil); err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if !r.called {
		t.Fatal("assertion failure did not reach the reporter")
	}
	if !strings.Contains(r.msg, "assert.Equal") {
		t.Errorf("report lacks the assertion message:\n%s", r.msg)
	}
}

func TestHostRunFixtureDiamond(t *testing.T) {
	bn := newOuterBridge(t)

	sceneExpr, err := bn.scene.Expr()
	if err != nil {
		t.Fatalf("Expr failed: %v", err)
	}

	r := &recorder{}
	err = bn.compare.Call(r, []any{sceneExpr, sceneExpr}, nil)
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if r.called {
		t.Fatalf("fixture diamond scenario failed inside the host:\n%s", r.msg)
	}
	if sceneBuilds != 0 {
		t.Error("fixture body executed in the outer process")
	}
}

func TestHostRunJournals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	bn := newOuterBridge(t, bridge.WithJournal(path))

	r := &recorder{}
	if err := bn.passing.Call(r, nil, nil); err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if r.called {
		t.Fatalf("passing scenario reported failure:\n%s", r.msg)
	}

	j, err := journal.Open(path)
	if err != nil {
		t.Fatalf("opening journal: %v", err)
	}
	defer j.Close()

	entries, err := j.List(5)
	if err != nil {
		t.Fatalf("listing journal: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("journal holds %d entries, want 1", len(entries))
	}
	e := entries[0]
	if !e.Passed || e.ExitCode != 0 {
		t.Errorf("entry = %+v", e)
	}
	if !strings.Contains(e.Call, ".passingScene(") {
		t.Errorf("recorded call = %q", e.Call)
	}
}

func TestHostRunMissingBinary(t *testing.T) {
	b := bridge.New(bridge.WithHostPath(filepath.Join(t.TempDir(), "no-such-host")))
	bn, err := bindAll(b)
	if err != nil {
		t.Fatalf("binding scenarios: %v", err)
	}

	r := &recorder{}
	err = bn.passing.Call(r, nil, nil)
	var notFound *launcher.HostNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error is %T, want *HostNotFoundError", err)
	}
	if r.called {
		t.Error("reporter invoked for a spawn failure")
	}
}
