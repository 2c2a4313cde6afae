package command

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		name    string
		cmdline []string
		want    Analysis
		source  string
		output  string
	}{
		{
			name:    "plain compile",
			cmdline: []string{"cl", "/c", "foo.cpp"},
			want:    Ok,
			source:  "foo.cpp",
			output:  filepath.Join(cwd, "foo.obj"),
		},
		{
			name:    "dash switch prefix",
			cmdline: []string{"cl", "-c", "foo.cpp"},
			want:    Ok,
			source:  "foo.cpp",
			output:  filepath.Join(cwd, "foo.obj"),
		},
		{
			name:    "no compile-only switch means link",
			cmdline: []string{"cl", "foo.cpp"},
			want:    CalledForLink,
		},
		{
			name:    "explicit link switch wins",
			cmdline: []string{"cl", "/c", "/link"},
			want:    CalledForLink,
		},
		{
			name:    "two bare sources",
			cmdline: []string{"cl", "/c", "a.cpp", "b.cpp"},
			want:    MultipleSourceFiles,
		},
		{
			name:    "explicit output path",
			cmdline: []string{"cl", "/c", `/Fooutdir\x.obj`, "foo.cpp"},
			want:    Ok,
			source:  "foo.cpp",
			output:  `outdir\x.obj`,
		},
		{
			name:    "source via Tp switch",
			cmdline: []string{"cl", "/c", "/Tpfoo.cpp"},
			want:    Ok,
			source:  "foo.cpp",
			output:  filepath.Join(cwd, "foo.obj"),
		},
		{
			name:    "source via Tc switch",
			cmdline: []string{"cl", "/c", "/Tcbar.c"},
			want:    Ok,
			source:  "bar.c",
			output:  filepath.Join(cwd, "bar.obj"),
		},
		{
			name:    "bare source plus Tp source",
			cmdline: []string{"cl", "/c", "a.cpp", "/Tpb.cpp"},
			want:    MultipleSourceFiles,
		},
		{
			name:    "explicitly empty source",
			cmdline: []string{"cl", "/c", "/Tp"},
			want:    NoSourceFile,
		},
		{
			name:    "compile-only without any source",
			cmdline: []string{"cl", "/c"},
			want:    NoSourceFile,
		},
		{
			name:    "unexpanded response token",
			cmdline: []string{"cl", "/c", "@args.rsp"},
			want:    MultipleSourceFiles,
		},
		{
			name:    "source in a subdirectory defaults output to cwd",
			cmdline: []string{"cl", "/c", "src/deep/foo.cpp"},
			want:    Ok,
			source:  "src/deep/foo.cpp",
			output:  filepath.Join(cwd, "foo.obj"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, source, output := Analyze(tt.cmdline)
			assert.Equal(t, tt.want, got, "analysis result")
			assert.Equal(t, tt.source, source, "source file")
			assert.Equal(t, tt.output, output, "output file")
		})
	}
}

func TestAnalysisString(t *testing.T) {
	assert.Equal(t, "ok", Ok.String())
	assert.Equal(t, "called for link", CalledForLink.String())
	assert.Equal(t, "no source file", NoSourceFile.String())
	assert.Equal(t, "multiple source files", MultipleSourceFiles.String())
}
