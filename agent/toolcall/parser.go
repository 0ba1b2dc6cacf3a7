// Package toolcall extracts tool invocations from free-form model output.
//
// The wire format is two line prefixes, one tool call per turn:
//
//	TOOL: <name>
//	INPUT: <json>
//
// The INPUT payload may be split across lines; reassembly stops at the first
// line containing a closing brace.
package toolcall

import "strings"

const (
	toolMarker  = "TOOL:"
	inputMarker = "INPUT:"
)

// Request is a parsed, not-yet-validated tool invocation. The tool name has
// not been checked against any registry and RawInput is not guaranteed to be
// valid JSON.
type Request struct {
	Tool     string
	RawInput string
}

// Parse scans model output for a tool call. It returns false when either
// marker is missing, in which case the text is a final answer.
func Parse(text string) (Request, bool) {
	lines := strings.Split(text, "\n")

	toolLine := -1
	for i, line := range lines {
		if strings.HasPrefix(line, toolMarker) {
			toolLine = i
			break
		}
	}
	if toolLine < 0 {
		return Request{}, false
	}

	req := Request{
		Tool: strings.TrimSpace(strings.TrimPrefix(lines[toolLine], toolMarker)),
	}

	for i := toolLine; i < len(lines); i++ {
		if !strings.HasPrefix(lines[i], inputMarker) {
			continue
		}
		input := strings.TrimSpace(strings.TrimPrefix(lines[i], inputMarker))
		// The model may have wrapped the JSON body; keep appending lines
		// verbatim until one carries the closing brace.
		if !strings.HasSuffix(input, "}") {
			for j := i + 1; j < len(lines); j++ {
				input += lines[j]
				if strings.Contains(lines[j], "}") {
					break
				}
			}
		}
		req.RawInput = input
		return req, true
	}

	return Request{}, false
}
