package prompt

// SelfTestCase is one (input, dialect, expected) triple.
type SelfTestCase struct {
	Name     string
	Input    string
	Dialect  Dialect
	Expected string
}

// SelfTestResult is the outcome of one case.
type SelfTestResult struct {
	Case   SelfTestCase
	Got    string
	Passed bool
}

// SelfTestReport summarizes a self-test run.
type SelfTestReport struct {
	Results []SelfTestResult
	Passed  int
	Failed  int
}

// OK reports whether every case passed.
func (r SelfTestReport) OK() bool { return r.Failed == 0 }

// DefaultSelfTestCases covers the prompt shapes every release must handle.
func DefaultSelfTestCases() []SelfTestCase {
	return []SelfTestCase{
		{Name: "bash user@host", Input: "user@host:~$ ls -la", Dialect: DialectBash, Expected: "ls -la"},
		{Name: "zsh percent", Input: "user@mac % git status", Dialect: DialectZsh, Expected: "git status"},
		{Name: "powershell path", Input: `PS C:\Users\user> dir`, Dialect: DialectPowerShell, Expected: "dir"},
		{Name: "cmd drive root", Input: `C:\>cd temp`, Dialect: DialectCmd, Expected: "cd temp"},
		{
			Name:     "bash continuation",
			Input:    "user@host:~$ npm install \\\n  lodash \\\n  express",
			Dialect:  DialectBash,
			Expected: "npm install lodash express",
		},
		{Name: "emoji prompt", Input: "🚀 ❯ git commit", Dialect: DialectUnknown, Expected: "git commit"},
		{Name: "fish prompt", Input: "user@host ~/src> cargo build", Dialect: DialectFish, Expected: "cargo build"},
		{Name: "boxed prompt", Input: "┌──(kali㉿kali)-[~]└─$ whoami", Dialect: DialectBash, Expected: "whoami"},
		{Name: "bare command", Input: "docker ps -a", Dialect: DialectBash, Expected: "docker ps -a"},
	}
}

// SelfTest runs cases through c and reports how many produced the expected
// command. The calls count toward c's analytics.
func (c *Cleaner) SelfTest(cases []SelfTestCase) SelfTestReport {
	var report SelfTestReport
	for _, tc := range cases {
		got := c.Clean(tc.Input, tc.Dialect)
		r := SelfTestResult{Case: tc, Got: got, Passed: got == tc.Expected}
		if r.Passed {
			report.Passed++
		} else {
			report.Failed++
		}
		report.Results = append(report.Results, r)
	}
	return report
}
