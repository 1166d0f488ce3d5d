package sanitize

import (
	"regexp"
	"strings"
)

// RiskLevel classifies what running a command again could do.
type RiskLevel string

const (
	RiskSafe        RiskLevel = "safe"
	RiskDestructive RiskLevel = "destructive"
)

type riskPattern struct {
	name string
	re   *regexp.Regexp
}

var destructivePatterns = []riskPattern{
	{"rm -rf", regexp.MustCompile(`\brm\s+(-[a-zA-Z]*r[a-zA-Z]*f|--recursive\s+--force|-[a-zA-Z]*f[a-zA-Z]*r)\b`)},
	{"rm -r", regexp.MustCompile(`\brm\s+-[a-zA-Z]*r\b`)},
	{"rm -f", regexp.MustCompile(`\brm\s+-[a-zA-Z]*f\b`)},
	{"Remove-Item -Recurse", regexp.MustCompile(`(?i)\bRemove-Item\b.*-Recurse\b`)},
	{"del /s", regexp.MustCompile(`(?i)\b(del|rd|rmdir)\s+.*/s\b`)},

	{"DROP TABLE", regexp.MustCompile(`(?i)\bDROP\s+(TABLE|DATABASE|SCHEMA)\b`)},
	{"TRUNCATE", regexp.MustCompile(`(?i)\bTRUNCATE\s+TABLE\b`)},
	{"DELETE FROM", regexp.MustCompile(`(?i)\bDELETE\s+FROM\b`)},

	{"git push --force", regexp.MustCompile(`\bgit\s+push\b.*\s(-f|--force|--force-with-lease)\b`)},
	{"git reset --hard", regexp.MustCompile(`\bgit\s+reset\s+--hard\b`)},
	{"git clean", regexp.MustCompile(`\bgit\s+clean\s+-[a-zA-Z]*[fd]`)},
	{"git checkout .", regexp.MustCompile(`\bgit\s+checkout\s+(--\s+)?\.(\s|$)`)},

	{"chmod 777", regexp.MustCompile(`\bchmod\s+(-R\s+)?777\b`)},
	{"chown -R", regexp.MustCompile(`\bchown\s+-[a-zA-Z]*R\b`)},

	{"write to device", regexp.MustCompile(`>\s*/dev/(sd[a-z]|hd[a-z]|nvme\d|vd[a-z]|xvd[a-z]|disk\d)`)},
	{"dd to device", regexp.MustCompile(`\bdd\s+.*of=/dev/`)},
	{"mkfs", regexp.MustCompile(`\bmkfs(\.\w+)?\b`)},
	{"fdisk", regexp.MustCompile(`\b(fdisk|parted|diskpart)\b`)},

	{"shutdown", regexp.MustCompile(`\b(shutdown|reboot|halt|poweroff)\b`)},
	{"kill -9", regexp.MustCompile(`\bkill\s+-(9|KILL)\b`)},
	{"killall", regexp.MustCompile(`\b(killall|pkill)\b`)},

	{"docker prune", regexp.MustCompile(`\bdocker\s+(system|volume|image|container)\s+prune\b`)},
	{"docker rm -f", regexp.MustCompile(`\bdocker\s+(container\s+)?rm\s+-[a-zA-Z]*f\b`)},
	{"kubectl delete", regexp.MustCompile(`\bkubectl\s+delete\b`)},
	{"terraform destroy", regexp.MustCompile(`\bterraform\s+destroy\b`)},
}

// Assess returns the risk level of command and, for destructive commands,
// the name of the matching operation.
func Assess(command string) (RiskLevel, string) {
	command = strings.TrimSpace(command)
	if command == "" {
		return RiskSafe, ""
	}
	for _, p := range destructivePatterns {
		if p.re.MatchString(command) {
			return RiskDestructive, p.name
		}
	}
	return RiskSafe, ""
}

// IsDestructive reports whether command matches a destructive pattern.
func IsDestructive(command string) bool {
	level, _ := Assess(command)
	return level == RiskDestructive
}
