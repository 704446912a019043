package fingerprint

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// Match is one reference hit reported by the engine's matcher.
type Match struct {
	File          string  `json:"file"`
	OffsetSeconds float64 `json:"offsetSeconds"`
	CommonHashes  int     `json:"commonHashes"`
	TotalHashes   int     `json:"totalHashes"`
	// Confidence is CommonHashes/TotalHashes, or 0 when the engine did not report totals.
	Confidence float64 `json:"confidence"`
}

// Engine is the acoustic fingerprinting capability.
type Engine interface {
	// Fingerprint analyses the audio at path and writes a fingerprint database to dbPath.
	Fingerprint(ctx context.Context, path, dbPath string) error
	// Match queries referenceDB for the audio at path.
	Match(ctx context.Context, path, referenceDB string) ([]Match, error)
}

// Audfprint drives the audfprint landmark fingerprinter through its Python CLI.
type Audfprint struct {
	Python        string
	Script        string
	commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewAudfprint constructs the adapter. An empty python falls back to python3.
func NewAudfprint(python, script string) *Audfprint {
	if strings.TrimSpace(python) == "" {
		python = "python3"
	}
	return &Audfprint{Python: python, Script: script}
}

// WithCommandRunner sets a custom command runner (for testing).
func (a *Audfprint) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) ([]byte, error)) {
	a.commandRunner = runner
}

func (a *Audfprint) run(ctx context.Context, args ...string) ([]byte, error) {
	full := append([]string{a.Script}, args...)
	if a.commandRunner != nil {
		return a.commandRunner(ctx, a.Python, full...)
	}
	cmd := exec.CommandContext(ctx, a.Python, full...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), fmt.Errorf("audfprint %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// Fingerprint runs `audfprint new --dbase <dbPath> <path>`.
func (a *Audfprint) Fingerprint(ctx context.Context, path, dbPath string) error {
	_, err := a.run(ctx, "new", "--dbase", dbPath, path)
	return err
}

// Match runs `audfprint match --dbase <referenceDB> <path>` and parses the hits.
func (a *Audfprint) Match(ctx context.Context, path, referenceDB string) ([]Match, error) {
	output, err := a.run(ctx, "match", "--dbase", referenceDB, path)
	if err != nil {
		return nil, err
	}
	return ParseMatches(output), nil
}

// matchLine captures audfprint's report, e.g.
// "Matched q.wav 9.9 sec 310 raw hashes as ref/a.mp3 at 12.3 s with 52 of 118 common hashes at rank 0".
var matchLine = regexp.MustCompile(`\bas\s+(.+?)\s+at\s+(-?[0-9.]+)\s+s\s+with\s+([0-9]+)\s+of\s+([0-9]+)\s+common hashes`)

// ParseMatches extracts Match entries from audfprint match output. Lines that
// contain "Matched" but do not follow the usual shape keep only the text
// after the keyword as File.
func ParseMatches(output []byte) []Match {
	var matches []Match
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		idx := strings.Index(line, "Matched")
		if idx < 0 {
			continue
		}
		groups := matchLine.FindStringSubmatch(line)
		if groups == nil {
			matches = append(matches, Match{File: strings.TrimSpace(line[idx+len("Matched"):])})
			continue
		}
		offset, _ := strconv.ParseFloat(groups[2], 64)
		common, _ := strconv.Atoi(groups[3])
		total, _ := strconv.Atoi(groups[4])
		m := Match{File: groups[1], OffsetSeconds: offset, CommonHashes: common, TotalHashes: total}
		if total > 0 {
			m.Confidence = float64(common) / float64(total)
		}
		matches = append(matches, m)
	}
	return matches
}
