package gputest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	lineCommentRegex  = regexp.MustCompile(`//[^\n]*`)
	blockCommentRegex = regexp.MustCompile(`(?s)/\*.*?\*/`)
	mainRegex         = regexp.MustCompile(`\bvoid\s+main\s*\(`)
	uniformBlockRegex = regexp.MustCompile(`(?s)(?:layout\s*\([^)]*\)\s*)?uniform\s+(\w+)\s*\{.*?\}\s*\w*\s*;`)
	uniformRegex      = regexp.MustCompile(`\buniform\s+(?:(?:highp|mediump|lowp)\s+)?(\w+)\s+(\w+)\s*(?:\[\s*(\w+)\s*\])?\s*;`)
	inOutRegex        = regexp.MustCompile(`(?m)^\s*(?:layout\s*\(([^)]*)\)\s*)?(?:(?:flat|smooth|noperspective)\s+)?(in|out)\s+(\w+)\s+(\w+)\s*(?:\[\s*\w+\s*\])?\s*;`)
	locationRegex     = regexp.MustCompile(`location\s*=\s*(\d+)`)
	defineRegex       = regexp.MustCompile(`(?m)^\s*#define\s+(\w+)\s+(\d+)`)
	constIntRegex     = regexp.MustCompile(`\bconst\s+(?:u?int)\s+(\w+)\s*=\s*(\d+)u?\s*;`)
)

type glslUniform struct {
	Type  string
	Name  string
	Count int
}

func (u *glslUniform) IsSampler() bool {
	return strings.HasPrefix(u.Type, "sampler")
}

type glslVar struct {
	Type     string
	Name     string
	Location int
}

// parsedStage is the subset of a GLSL stage the fake driver understands
type parsedStage struct {
	Uniforms []glslUniform
	Blocks   []string
	Ins      []glslVar
	Outs     []glslVar

	// body is the source with comments, uniform blocks and uniform declarations removed.
	// A uniform only counts as active if its name shows up here.
	body string
}

func stripComments(src string) string {
	src = blockCommentRegex.ReplaceAllString(src, "")
	return lineCommentRegex.ReplaceAllString(src, "")
}

// checkCompiles does a few of the checks a real compiler does and returns a driver-like
// info log when the source is rejected, or an empty string when it is accepted
func checkCompiles(src string) string {

	clean := stripComments(src)

	if !strings.HasPrefix(strings.TrimSpace(clean), "#version") {
		return "ERROR: 0:1: '' :  #version required and missing.\n"
	}

	depth := 0
	for i, line := range strings.Split(clean, "\n") {
		depth += strings.Count(line, "{") - strings.Count(line, "}")
		if depth < 0 {
			return fmt.Sprintf("ERROR: 0:%d: '}' : syntax error: unexpected '}'\n", i+1)
		}
	}

	if depth != 0 {
		lineCount := strings.Count(clean, "\n") + 1
		return fmt.Sprintf("ERROR: 0:%d: '' : syntax error: unexpected end of file\n", lineCount)
	}

	if !mainRegex.MatchString(clean) {
		return "ERROR: 0:1: 'main' : function 'main' is not defined\n"
	}

	return ""
}

func parseStage(src string) parsedStage {

	clean := stripComments(src)
	constants := map[string]int{}
	for _, m := range defineRegex.FindAllStringSubmatch(clean, -1) {
		constants[m[1]], _ = strconv.Atoi(m[2])
	}
	for _, m := range constIntRegex.FindAllStringSubmatch(clean, -1) {
		constants[m[1]], _ = strconv.Atoi(m[2])
	}

	ps := parsedStage{}
	for _, m := range uniformBlockRegex.FindAllStringSubmatch(clean, -1) {
		ps.Blocks = append(ps.Blocks, m[1])
	}
	clean = uniformBlockRegex.ReplaceAllString(clean, "")

	for _, m := range uniformRegex.FindAllStringSubmatch(clean, -1) {

		u := glslUniform{Type: m[1], Name: m[2], Count: 1}
		if m[3] != "" {
			if n, err := strconv.Atoi(m[3]); err == nil {
				u.Count = n
			} else if n, ok := constants[m[3]]; ok {
				u.Count = n
			}
		}

		ps.Uniforms = append(ps.Uniforms, u)
	}
	clean = uniformRegex.ReplaceAllString(clean, "")

	for _, m := range inOutRegex.FindAllStringSubmatch(clean, -1) {

		v := glslVar{Type: m[3], Name: m[4], Location: -1}
		if loc := locationRegex.FindStringSubmatch(m[1]); loc != nil {
			v.Location, _ = strconv.Atoi(loc[1])
		}

		if m[2] == "in" {
			ps.Ins = append(ps.Ins, v)
		} else {
			ps.Outs = append(ps.Outs, v)
		}
	}

	ps.body = inOutRegex.ReplaceAllString(clean, "")
	return ps
}

func isReferenced(name string, stages ...*parsedStage) bool {

	r := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
	for _, s := range stages {
		if r.MatchString(s.body) {
			return true
		}
	}

	return false
}

// checkLinks returns a driver-like info log if the vertex and fragment stages can't be linked together
func checkLinks(vert, frag *parsedStage) string {

	for _, in := range frag.Ins {

		found := false
		for _, out := range vert.Outs {

			if out.Name != in.Name {
				continue
			}

			if out.Type != in.Type {
				return fmt.Sprintf("ERROR: Type mismatch between vertex output '%s' (%s) and fragment input (%s)\n", in.Name, out.Type, in.Type)
			}

			found = true
			break
		}

		if !found {
			return fmt.Sprintf("ERROR: Input of fragment shader '%s' not written by vertex shader\n", in.Name)
		}
	}

	for _, vu := range vert.Uniforms {
		for _, fu := range frag.Uniforms {
			if vu.Name == fu.Name && (vu.Type != fu.Type || vu.Count != fu.Count) {
				return fmt.Sprintf("ERROR: Uniform '%s' declared with different types in vertex and fragment shaders\n", vu.Name)
			}
		}
	}

	return ""
}
