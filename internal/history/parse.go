package history

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"
)

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)
	return scanner
}

// parseBash reads one command per line. With HISTTIMEFORMAT set, bash
// writes a #<unix_ts> line before each command. Other lines starting with #
// (shebangs, commented-out commands) are skipped.
func parseBash(r io.Reader) ([]Entry, error) {
	var entries []Entry
	var pending time.Time

	scanner := newScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if ts, err := strconv.ParseInt(line[1:], 10, 64); err == nil {
				pending = time.Unix(ts, 0)
			}
			continue
		}
		entries = append(entries, Entry{Command: line, Timestamp: pending})
		pending = time.Time{}
	}
	return entries, scanner.Err()
}

// parseZsh reads plain or extended (`: <ts>:<duration>;<command>`) zsh
// history. A trailing unescaped backslash continues the command on the next
// line.
func parseZsh(r io.Reader) ([]Entry, error) {
	var p zshParser
	scanner := newScanner(r)
	for scanner.Scan() {
		p.processLine(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return p.finish(), nil
}

type zshParser struct {
	multiline strings.Builder
	pending   time.Time
	entries   []Entry
}

func (p *zshParser) processLine(line string) {
	if p.multiline.Len() > 0 {
		p.addCommand(line)
		return
	}
	if strings.HasPrefix(line, ": ") {
		if idx := strings.Index(line, ";"); idx != -1 {
			meta := line[2:idx] // "<ts>:<dur>"
			if colon := strings.Index(meta, ":"); colon != -1 {
				if ts, err := strconv.ParseInt(meta[:colon], 10, 64); err == nil {
					p.pending = time.Unix(ts, 0)
				}
			}
			line = line[idx+1:]
		}
	}
	p.addCommand(line)
}

func (p *zshParser) addCommand(cmd string) {
	if hasUnescapedTrailingBackslash(cmd) {
		p.multiline.WriteString(cmd[:len(cmd)-1])
		p.multiline.WriteString("\n")
		return
	}
	p.multiline.WriteString(cmd)
	p.flush()
}

func (p *zshParser) flush() {
	cmd := strings.TrimSuffix(p.multiline.String(), "\n")
	p.multiline.Reset()
	if cmd != "" {
		p.entries = append(p.entries, Entry{Command: cmd, Timestamp: p.pending})
	}
	p.pending = time.Time{}
}

func (p *zshParser) finish() []Entry {
	if p.multiline.Len() > 0 {
		p.flush()
	}
	return p.entries
}

// hasUnescapedTrailingBackslash reports whether s ends in an odd number of
// backslashes.
func hasUnescapedTrailingBackslash(s string) bool {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

// parseFish reads fish's pseudo-YAML history:
//
//   - cmd: <command>
//     when: <unix_timestamp>
//     paths:
//   - <path>
func parseFish(r io.Reader) ([]Entry, error) {
	p := &fishParser{}
	scanner := newScanner(r)
	for scanner.Scan() {
		p.parseLine(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return p.finish(), nil
}

type fishParser struct {
	timestamp time.Time
	cmd       string
	entries   []Entry
}

func (p *fishParser) parseLine(line string) {
	switch {
	case strings.HasPrefix(line, "- cmd: "):
		p.flush()
		p.cmd = strings.TrimPrefix(line, "- cmd: ")
	case strings.HasPrefix(line, "  when: "):
		if ts, err := strconv.ParseInt(strings.TrimPrefix(line, "  when: "), 10, 64); err == nil {
			p.timestamp = time.Unix(ts, 0)
		}
	}
}

func (p *fishParser) flush() {
	if p.cmd != "" {
		p.entries = append(p.entries, Entry{Command: decodeFishEscapes(p.cmd), Timestamp: p.timestamp})
	}
	p.cmd = ""
	p.timestamp = time.Time{}
}

func (p *fishParser) finish() []Entry {
	p.flush()
	return p.entries
}

// decodeFishEscapes decodes fish's \\ (backslash) and \n (newline) escapes.
func decodeFishEscapes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
