package dawn

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/require"

	"github.com/dawn-engine/dawn-compose/internal"
	"github.com/dawn-engine/dawn-compose/internal/manifest"
	"github.com/dawn-engine/dawn-compose/internal/shell"
)

// recorder records every command it is asked to execute. The exit code of the
// nth command is codes[n], defaulting to zero.
type recorder struct {
	codes    []int
	stdout   []string
	commands [][]string
}

func (r *recorder) Execute(_ context.Context, cmd shell.Command) (int, error) {
	n := len(r.commands)
	r.commands = append(r.commands, cmd.Args)

	if n < len(r.stdout) && cmd.Stdout != nil {
		if _, err := cmd.Stdout.Write([]byte(r.stdout[n])); err != nil {
			return -1, err
		}
	}
	if n < len(r.codes) {
		return r.codes[n], nil
	}
	return 0, nil
}

func testContext(stdout *bytes.Buffer) context.Context {
	return internal.WithStdio(context.Background(), nil, stdout, &bytes.Buffer{})
}

func TestComposeCommands(t *testing.T) {
	dist := t.TempDir()

	cases := []struct {
		Name     string
		Dev      bool
		Expected [][]string
	}{
		{
			Name: "release",
			Expected: [][]string{
				{"wasm-pack", "build", "crates/wasm", "--out-dir", filepath.Join(dist, "pkg"), "--target", "web", "--release"},
				{"cargo", "run", "--bin", "dawn-package", "--", "--assets-dir", "assets", "--output-file", filepath.Join(dist, "assets.dac")},
			},
		},
		{
			Name: "dev",
			Dev:  true,
			Expected: [][]string{
				{"wasm-pack", "build", "crates/wasm", "--out-dir", filepath.Join(dist, "pkg"), "--target", "web", "--dev"},
				{"cargo", "run", "--bin", "dawn-package", "--", "--assets-dir", "assets", "--output-file", filepath.Join(dist, "assets.dac")},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			rec := &recorder{}
			commander := Commander{Toolchain: DefaultToolchain(), Executor: rec}

			require.NoError(t, commander.Compose(testContext(&bytes.Buffer{}), ComposeParams{Dist: dist, Dev: tc.Dev}))
			require.Equal(t, tc.Expected, rec.commands)

			build := rec.commands[0]
			require.NotEqual(t, slices.Contains(build, "--dev"), slices.Contains(build, "--release"))
		})
	}
}

func TestComposeRelativeDist(t *testing.T) {
	rec := &recorder{}
	commander := Commander{Toolchain: DefaultToolchain(), Executor: rec}

	require.NoError(t, commander.Compose(testContext(&bytes.Buffer{}), ComposeParams{Dist: "crates/wasm-server/dist"}))

	cwd, err := os.Getwd()
	require.NoError(t, err)

	expected := filepath.Join(cwd, "crates", "wasm-server", "dist")
	require.Equal(t, filepath.Join(expected, "pkg"), rec.commands[0][4])
	require.Equal(t, filepath.Join(expected, "assets.dac"), rec.commands[1][8])
}

func TestComposeStopsOnBuildFailure(t *testing.T) {
	rec := &recorder{codes: []int{1}}
	commander := Commander{Toolchain: DefaultToolchain(), Executor: rec}

	dist := t.TempDir()

	err := commander.Compose(testContext(&bytes.Buffer{}), ComposeParams{Dist: dist})
	require.EqualError(
		t,
		err,
		"failed to build wasm module: command `wasm-pack build crates/wasm --out-dir "+filepath.Join(dist, "pkg")+" --target web --release` exited with code 1",
	)
	require.Len(t, rec.commands, 1)

	var exitErr *shell.ExitError
	require.True(t, errors.As(err, &exitErr))
	require.Equal(t, 1, exitErr.Code)
}

func TestComposePackageFailure(t *testing.T) {
	rec := &recorder{codes: []int{0, 101}}
	commander := Commander{Toolchain: DefaultToolchain(), Executor: rec}

	err := commander.Compose(testContext(&bytes.Buffer{}), ComposeParams{Dist: t.TempDir()})
	require.ErrorContains(t, err, "failed to package assets: command `cargo run --bin dawn-package")

	var exitErr *shell.ExitError
	require.True(t, errors.As(err, &exitErr))
	require.Equal(t, 101, exitErr.Code)
}

func TestComposeDryRun(t *testing.T) {
	rec := &recorder{}
	commander := Commander{Toolchain: DefaultToolchain(), Executor: rec}

	var stdout bytes.Buffer
	dist := t.TempDir()

	require.NoError(t, commander.Compose(testContext(&stdout), ComposeParams{
		Dist:     dist,
		DryRun:   true,
		Verify:   true,
		Manifest: true,
	}))

	require.Empty(t, rec.commands)
	require.Equal(
		t,
		strings.Join([]string{
			"+ wasm-pack build crates/wasm --out-dir " + filepath.Join(dist, "pkg") + " --target web --release",
			"+ cargo run --bin dawn-package -- --assets-dir assets --output-file " + filepath.Join(dist, "assets.dac"),
			"",
		}, "\n"),
		stdout.String(),
	)

	_, err := os.Stat(filepath.Join(dist, manifest.Filename))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestComposeToolchainOverrides(t *testing.T) {
	rec := &recorder{}
	commander := Commander{
		Toolchain: Toolchain{
			WasmPack:   "/opt/bin/wasm-pack",
			Cargo:      "cargo-nightly",
			WasmCrate:  "engine/wasm",
			AssetsDir:  "data",
			PackageBin: "packer",
			ServerBin:  "server",
		},
		Executor: rec,
	}

	dist := t.TempDir()
	require.NoError(t, commander.Compose(testContext(&bytes.Buffer{}), ComposeParams{Dist: dist}))
	require.Equal(t, [][]string{
		{"/opt/bin/wasm-pack", "build", "engine/wasm", "--out-dir", filepath.Join(dist, "pkg"), "--target", "web", "--release"},
		{"cargo-nightly", "run", "--bin", "packer", "--", "--assets-dir", "data", "--output-file", filepath.Join(dist, "assets.dac")},
	}, rec.commands)
}

// emptyModule is the smallest valid WebAssembly module.
var emptyModule = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func TestComposeVerify(t *testing.T) {
	dist := t.TempDir()
	commander := Commander{Toolchain: DefaultToolchain(), Executor: &recorder{}}

	err := commander.Compose(testContext(&bytes.Buffer{}), ComposeParams{Dist: dist, Verify: true})
	require.ErrorContains(t, err, "failed to verify wasm module: no wasm module found in")

	require.NoError(t, os.MkdirAll(filepath.Join(dist, "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dist, "pkg", "dawn_wasm_bg.wasm"), emptyModule, 0o644))

	var stdout bytes.Buffer
	require.NoError(t, commander.Compose(testContext(&stdout), ComposeParams{Dist: dist, Verify: true}))
	require.Contains(t, stdout.String(), "pkg/dawn_wasm_bg.wasm")
	require.Contains(t, stdout.String(), "MEMORIES")
}

func TestComposeManifest(t *testing.T) {
	dist := t.TempDir()
	commander := Commander{Toolchain: DefaultToolchain(), Executor: &recorder{}}

	require.NoError(t, os.WriteFile(filepath.Join(dist, "assets.dac"), []byte("v1"), 0o644))

	var stdout bytes.Buffer
	require.NoError(t, commander.Compose(testContext(&stdout), ComposeParams{Dist: dist, Manifest: true}))
	require.Equal(t, "wrote "+filepath.Join(dist, manifest.Filename)+" with 1 artifacts\n", stdout.String())

	var written manifest.Manifest
	found, err := internal.ReadYAML(filepath.Join(dist, manifest.Filename), &written)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "release", written.Mode)
	require.Len(t, written.Artifacts, 1)
	require.Equal(t, "assets.dac", written.Artifacts[0].Name)

	err = commander.Compose(testContext(&bytes.Buffer{}), ComposeParams{Dist: dist, Manifest: true})
	require.True(t, internal.IsWarning(err))
	require.EqualError(t, err, "dist is unchanged since the previous manifest")

	require.NoError(t, os.WriteFile(filepath.Join(dist, "assets.dac"), []byte("v2!"), 0o644))

	stdout.Reset()
	require.NoError(t, commander.Compose(testContext(&stdout), ComposeParams{Dist: dist, Manifest: true, Context: 1}))
	require.Contains(t, stdout.String(), "--- previous")
	require.Contains(t, stdout.String(), "+++ current")
	require.Contains(t, stdout.String(), "-    size: 2")
	require.Contains(t, stdout.String(), "+    size: 3")
}

func TestComposeManifestWithoutCommits(t *testing.T) {
	project := t.TempDir()

	_, err := git.PlainInit(project, false)
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(project))
	t.Cleanup(func() { require.NoError(t, os.Chdir(cwd)) })

	dist := filepath.Join(project, "dist")
	require.NoError(t, os.MkdirAll(dist, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dist, "assets.dac"), []byte("dac"), 0o644))

	commander := Commander{Toolchain: DefaultToolchain(), Executor: &recorder{}}
	require.NoError(t, commander.Compose(testContext(&bytes.Buffer{}), ComposeParams{Dist: dist, Manifest: true}))

	var written manifest.Manifest
	found, err := internal.ReadYAML(filepath.Join(dist, manifest.Filename), &written)
	require.NoError(t, err)
	require.True(t, found)
	require.Empty(t, written.Revision)
	require.Len(t, written.Artifacts, 1)
}

func TestServe(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	cases := []struct {
		Name     string
		Params   ServeParams
		Codes    []int
		Expected []string
		Error    string
	}{
		{
			Name:     "default port",
			Params:   ServeParams{Dist: "dist", Port: DefaultPort},
			Expected: []string{"cargo", "run", "--bin", "dawn-wasm-server", "--", "--dist", filepath.Join(cwd, "dist"), "--port", "8000"},
		},
		{
			Name:     "custom port",
			Params:   ServeParams{Dist: "/srv/dist", Port: 9090},
			Expected: []string{"cargo", "run", "--bin", "dawn-wasm-server", "--", "--dist", filepath.Clean("/srv/dist"), "--port", "9090"},
		},
		{
			Name:   "port out of range",
			Params: ServeParams{Dist: "dist", Port: 70000},
			Error:  "invalid port 70000: must be between 1 and 65535",
		},
		{
			Name:   "zero port",
			Params: ServeParams{Dist: "dist", Port: 0},
			Error:  "invalid port 0: must be between 1 and 65535",
		},
		{
			Name:     "server failure",
			Params:   ServeParams{Dist: "dist", Port: 8080},
			Codes:    []int{2},
			Expected: []string{"cargo", "run", "--bin", "dawn-wasm-server", "--", "--dist", filepath.Join(cwd, "dist"), "--port", "8080"},
			Error:    "failed to serve " + filepath.Join(cwd, "dist") + ": command `cargo run --bin dawn-wasm-server -- --dist " + filepath.Join(cwd, "dist") + " --port 8080` exited with code 2",
		},
	}

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			rec := &recorder{codes: tc.Codes}
			commander := Commander{Toolchain: DefaultToolchain(), Executor: rec}

			err := commander.Serve(testContext(&bytes.Buffer{}), tc.Params)
			if tc.Error != "" {
				require.EqualError(t, err, tc.Error)
			} else {
				require.NoError(t, err)
			}

			if tc.Expected == nil {
				require.Empty(t, rec.commands)
				return
			}
			require.Equal(t, [][]string{tc.Expected}, rec.commands)
		})
	}
}

func TestServeDryRun(t *testing.T) {
	rec := &recorder{}
	commander := Commander{Toolchain: DefaultToolchain(), Executor: rec}

	dist := t.TempDir()

	var stdout bytes.Buffer
	require.NoError(t, commander.Serve(testContext(&stdout), ServeParams{Dist: dist, Port: 9090, DryRun: true}))

	require.Empty(t, rec.commands)
	require.Equal(t, "+ cargo run --bin dawn-wasm-server -- --dist "+dist+" --port 9090\n", stdout.String())
}

func TestDoctor(t *testing.T) {
	cases := []struct {
		Name     string
		Executor shell.Executor
		Expected []ToolStatus
	}{
		{
			Name:     "healthy toolchain",
			Executor: &recorder{stdout: []string{"wasm-pack 0.13.1\n", "cargo 1.82.0 (8f40fc59f 2024-08-21)\n"}},
			Expected: []ToolStatus{
				{Name: "wasm-pack", Executable: "wasm-pack", Version: "0.13.1", Minimum: MinWasmPack},
				{Name: "cargo", Executable: "cargo", Version: "1.82.0", Minimum: MinCargo},
			},
		},
		{
			Name:     "outdated and failing",
			Executor: &recorder{stdout: []string{"wasm-pack 0.10.3\n"}, codes: []int{0, 127}},
			Expected: []ToolStatus{
				{Name: "wasm-pack", Executable: "wasm-pack", Version: "0.10.3", Minimum: MinWasmPack, Problem: "version below minimum v0.12.0"},
				{Name: "cargo", Executable: "cargo", Minimum: MinCargo, Problem: "--version exited with code 127"},
			},
		},
		{
			Name: "missing executable",
			Executor: shell.ExecutorFunc(func(_ context.Context, cmd shell.Command) (int, error) {
				if cmd.Args[0] == "wasm-pack" {
					return -1, errors.New(`exec: "wasm-pack": executable file not found in $PATH`)
				}
				_, err := cmd.Stdout.Write([]byte("cargo version unknown"))
				return 0, err
			}),
			Expected: []ToolStatus{
				{Name: "wasm-pack", Executable: "wasm-pack", Minimum: MinWasmPack, Problem: "failed to run `wasm-pack --version`: exec: \"wasm-pack\": executable file not found in $PATH"},
				{Name: "cargo", Executable: "cargo", Minimum: MinCargo, Problem: "could not parse version"},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			commander := Commander{Toolchain: DefaultToolchain(), Executor: tc.Executor}
			require.Equal(t, tc.Expected, commander.Doctor(testContext(&bytes.Buffer{})))
		})
	}
}
