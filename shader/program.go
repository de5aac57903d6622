// Package shader loads, validates and caches the GLSL program sources used by
// the particle field.
package shader

import (
	"bufio"
	"fmt"
	"strings"
)

// Logical program names.
const (
	Simulation = "simulation"
	Particle   = "particle"
)

// ProgramSet is a vertex/fragment source pair for one logical program.
// A set is immutable once returned from a Loader.
type ProgramSet struct {
	Name     string
	Vertex   string
	Fragment string
}

// Stage identifies where a program failed to load.
type Stage string

const (
	StageFetch    Stage = "fetch"
	StageValidate Stage = "validate"
	StageCompile  Stage = "compile"
)

// LoadError reports a program that could not be fetched, validated or compiled.
// It is fatal for the session that requested it.
type LoadError struct {
	Program string
	Stage   Stage
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("shader %s: %s: %v", e.Program, e.Stage, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Contracts lists the uniforms each program must declare. A missing
// declaration is a load error.
var Contracts = map[string][]string{
	Simulation: {
		"time", "mouse", "texturePosition", "resolution", "mouseScale",
		"speed", "dieSpeed", "radius", "curlSize", "attraction", "noiseScale",
	},
	Particle: {"time"},
}

// Validate checks that set declares every uniform in its program's contract.
// Programs without a contract only need non-empty sources.
func Validate(set *ProgramSet) error {
	if set.Vertex == "" || set.Fragment == "" {
		return &LoadError{Program: set.Name, Stage: StageValidate, Err: fmt.Errorf("empty source")}
	}
	declared := Uniforms(set.Vertex)
	for name := range Uniforms(set.Fragment) {
		declared[name] = struct{}{}
	}
	var missing []string
	for _, name := range Contracts[set.Name] {
		if _, ok := declared[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &LoadError{
			Program: set.Name,
			Stage:   StageValidate,
			Err:     fmt.Errorf("missing uniforms: %s", strings.Join(missing, ", ")),
		}
	}
	return nil
}

// Uniforms returns the names of uniforms declared in src.
// Handles `uniform <type> a, b[2];` declarations, one per line.
func Uniforms(src string) map[string]struct{} {
	out := make(map[string]struct{})
	sc := bufio.NewScanner(strings.NewReader(src))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		rest, ok := strings.CutPrefix(line, "uniform ")
		if !ok {
			continue
		}
		rest, _, _ = strings.Cut(rest, ";")
		fields := strings.Fields(rest)
		if len(fields) < 2 {
			continue
		}
		// drop precision qualifiers and the type
		for len(fields) > 0 && (fields[0] == "lowp" || fields[0] == "mediump" || fields[0] == "highp") {
			fields = fields[1:]
		}
		if len(fields) < 2 {
			continue
		}
		for _, name := range strings.Split(strings.Join(fields[1:], ""), ",") {
			name, _, _ = strings.Cut(name, "[")
			if name != "" {
				out[name] = struct{}{}
			}
		}
	}
	return out
}
