package command

import (
	"os"
	"path/filepath"
	"strings"
)

// Analysis is the classification of one compiler invocation.
type Analysis int

const (
	// Ok means a single-source compile that the cache will attempt.
	Ok Analysis = iota
	// NoSourceFile means no usable source file was named.
	NoSourceFile
	// MultipleSourceFiles means more than one source file was named.
	MultipleSourceFiles
	// CalledForLink means the invocation links (or at least does not
	// compile only), so its result is not a single object file.
	CalledForLink
)

func (a Analysis) String() string {
	switch a {
	case Ok:
		return "ok"
	case NoSourceFile:
		return "no source file"
	case MultipleSourceFiles:
		return "multiple source files"
	case CalledForLink:
		return "called for link"
	}
	return "unknown"
}

func isSwitch(arg string) bool {
	return len(arg) > 1 && (arg[0] == '/' || arg[0] == '-')
}

// Analyze classifies an expanded command line. The first token is the
// program name and is ignored. For Ok it also returns the source file
// and the output file; an unset /Fo defaults to the source's base name
// with an .obj extension in the current working directory.
//
// Anything other than Ok must be forwarded to the real compiler
// untouched.
func Analyze(cmdline []string) (Analysis, string, string) {
	compileOnly := false
	sourceSeen := false
	sourceFile := ""
	outputFile := ""

	args := cmdline
	if len(args) > 0 {
		args = args[1:]
	}
	for _, arg := range args {
		switch {
		case isSwitch(arg):
			name := arg[1:]
			switch {
			case name == "link":
				return CalledForLink, "", ""
			case name[0] == 'c':
				compileOnly = true
			case strings.HasPrefix(name, "Fo"):
				outputFile = name[2:]
			case strings.HasPrefix(name, "Tp") || strings.HasPrefix(name, "Tc"):
				if sourceSeen {
					return MultipleSourceFiles, "", ""
				}
				sourceSeen = true
				sourceFile = name[2:]
			}
		case strings.HasPrefix(arg, "@"):
			// Response files are expanded before analysis; a stray one
			// here cannot be classified as a single compile.
			return MultipleSourceFiles, "", ""
		default:
			if sourceSeen {
				return MultipleSourceFiles, "", ""
			}
			sourceSeen = true
			sourceFile = arg
		}
	}

	if outputFile == "" && sourceFile != "" {
		base := filepath.Base(sourceFile)
		ext := filepath.Ext(base)
		cwd, _ := os.Getwd()
		outputFile = filepath.Join(cwd, strings.TrimSuffix(base, ext)+".obj")
	}
	if !compileOnly {
		return CalledForLink, "", ""
	}
	if !sourceSeen || sourceFile == "" {
		return NoSourceFile, "", ""
	}
	return Ok, sourceFile, outputFile
}
