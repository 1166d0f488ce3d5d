package prompt

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ProcessIntrospector detects the shell by looking at the parent process
// name: /proc/<ppid>/comm on Linux, then `ps` (macOS, BSD).
type ProcessIntrospector struct {
	PPID     func() int
	ReadFile func(name string) ([]byte, error)
	RunPS    func(pid int) ([]byte, error)
}

// NewProcessIntrospector returns an introspector wired to the real OS.
func NewProcessIntrospector() *ProcessIntrospector {
	return &ProcessIntrospector{
		PPID:     os.Getppid,
		ReadFile: os.ReadFile,
		RunPS: func(pid int) ([]byte, error) {
			return exec.Command("ps", "-p", fmt.Sprintf("%d", pid), "-o", "comm=").Output() //nolint:gosec // G204: pid is from os.Getppid()
		},
	}
}

// Dialect implements Introspector.
func (p *ProcessIntrospector) Dialect() (Dialect, error) {
	ppid := p.PPID()
	if ppid <= 0 {
		return DialectUnknown, fmt.Errorf("no parent process")
	}

	commPath := fmt.Sprintf("/proc/%d/comm", ppid)
	if data, err := p.ReadFile(commPath); err == nil {
		if d := shellNameDialect(string(data)); d.IsKnown() {
			return d, nil
		}
	}

	out, err := p.RunPS(ppid)
	if err != nil {
		return DialectUnknown, fmt.Errorf("inspect parent process %d: %w", ppid, err)
	}
	return shellNameDialect(string(out)), nil
}

// shellNameDialect handles process names like "-zsh", "/bin/bash" or "bash-5.2".
func shellNameDialect(name string) Dialect {
	name = strings.TrimSpace(name)
	if d := ParseDialect(name); d.IsKnown() {
		return d
	}
	base := strings.TrimPrefix(name[strings.LastIndex(name, "/")+1:], "-")
	if idx := strings.Index(base, "-"); idx > 0 {
		base = base[:idx]
	}
	return ParseDialect(base)
}
