package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runBgrep(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRunStdin(t *testing.T) {
	tests := map[string]struct {
		givenArgs  []string
		givenStdin string
		wantCode   int
		wantStdout string
	}{
		"backreference matches": {
			givenArgs:  []string{"-E", `(cat) and \1`},
			givenStdin: "cat and cat\n",
			wantCode:   exitMatch,
			wantStdout: "cat and cat\n",
		},
		"backreference does not match": {
			givenArgs:  []string{"-E", `(cat) and \1`},
			givenStdin: "cat and dog\n",
			wantCode:   exitNoMatch,
		},
		"anchored line": {
			givenArgs:  []string{"-E", "^log$"},
			givenStdin: "slog\nlog\nlogs\n",
			wantCode:   exitMatch,
			wantStdout: "log\n",
		},
		"only matching": {
			givenArgs:  []string{"-E", "-o", `\d+`},
			givenStdin: "a1 b22\nnone\n333\n",
			wantCode:   exitMatch,
			wantStdout: "1\n22\n333\n",
		},
		"only matching multibyte words": {
			givenArgs:  []string{"-E", "-o", "c[^ ]+"},
			givenStdin: "un café crème\n",
			wantCode:   exitMatch,
			wantStdout: "café\ncrème\n",
		},
		"backreference to a missing group": {
			givenArgs:  []string{"-E", `(a)\2`},
			givenStdin: "aa\n",
			wantCode:   exitNoMatch,
		},
		"count": {
			givenArgs:  []string{"-E", "-c", "cat"},
			givenStdin: "cat\ndog\ncat\n",
			wantCode:   exitMatch,
			wantStdout: "2\n",
		},
		"count without matches": {
			givenArgs:  []string{"-E", "--count", "cow"},
			givenStdin: "cat\ndog\n",
			wantCode:   exitNoMatch,
			wantStdout: "0\n",
		},
		"tree": {
			givenArgs:  []string{"-E", "--tree", "a+"},
			wantCode:   exitMatch,
			wantStdout: "(seq (seq 'a' (star 'a')))\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			// when
			gotCode, gotStdout, _ := runBgrep(t, tt.givenStdin, append(tt.givenArgs, "--color=never")...)

			// then
			assert.Equal(t, tt.wantCode, gotCode)
			assert.Equal(t, tt.wantStdout, gotStdout)
		})
	}
}

func TestRunErrors(t *testing.T) {
	tests := map[string]struct {
		givenArgs  []string
		wantStderr string
	}{
		"invalid pattern": {
			givenArgs:  []string{"-E", "(ab"},
			wantStderr: "missing closing ')'",
		},
		"unknown character": {
			givenArgs:  []string{"-E", "a\tb"},
			wantStderr: "unrecognized character",
		},
		"missing -E": {
			givenArgs:  []string{"abc"},
			wantStderr: "--extended",
		},
		"missing file": {
			givenArgs:  []string{"-E", "abc", filepath.Join(t.TempDir(), "nope.txt")},
			wantStderr: "nope.txt",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			// when
			gotCode, gotStdout, gotStderr := runBgrep(t, "abc\n", tt.givenArgs...)

			// then
			assert.Equal(t, exitError, gotCode)
			assert.Empty(t, gotStdout)
			assert.Contains(t, gotStderr, tt.wantStderr)
		})
	}
}

func TestRunHelp(t *testing.T) {
	gotCode, gotStdout, _ := runBgrep(t, "", "--help")

	assert.Equal(t, 0, gotCode)
	assert.Contains(t, gotStdout, "bgrep")
}

func TestRunFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	writeFile(t, a, "one cat\nno\n")
	writeFile(t, b, "dog\ncat\n")

	gotCode, gotStdout, gotStderr := runBgrep(t, "", "-E", "--color=never", "cat", a, b)

	require.Empty(t, gotStderr)
	assert.Equal(t, exitMatch, gotCode)
	assert.Equal(t, a+":one cat\n"+b+":cat\n", gotStdout)
}

func TestRunDirectory(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "sub", "c.txt")
	writeFile(t, nested, "a cat\n")
	writeFile(t, filepath.Join(dir, "d.txt"), "a dog\n")

	gotCode, gotStdout, _ := runBgrep(t, "", "-E", "--color=never", "c.t", dir)

	assert.Equal(t, exitMatch, gotCode)
	assert.Equal(t, nested+":a cat\n", gotStdout)
}

func TestRunConfigFile(t *testing.T) {
	config := filepath.Join(t.TempDir(), "bgrep.yaml")
	writeFile(t, config, "only-matching: true\ncolor: never\n")

	gotCode, gotStdout, _ := runBgrep(t, "xa1 ya2\n", "-E", "--config", config, "a.")

	assert.Equal(t, exitMatch, gotCode)
	assert.Equal(t, "a1\na2\n", gotStdout)
}

func TestRunColor(t *testing.T) {
	gotCode, gotStdout, _ := runBgrep(t, "a cat\n", "-E", "--color=always", "(c)at")

	assert.Equal(t, exitMatch, gotCode)
	assert.Contains(t, gotStdout, "\x1b[")
	assert.Contains(t, gotStdout, "a ")
}

func TestPrinterHighlightWithoutColor(t *testing.T) {
	var out bytes.Buffer
	p := newPrinter(&out, "never")

	p.line("f:", "text")

	assert.Equal(t, "f:text\n", out.String())
}
