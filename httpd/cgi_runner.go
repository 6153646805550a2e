package httpd

import (
	"fmt"
	"os"
	"os/exec"
	"sync/atomic"
)

// CGIRunner executes a client-commanded program found under a cgi-bin
// folder. Parent and child communicate through a shared temp file: the
// child's stdout is redirected into it, and the parent loads it back after
// the child exits.
type CGIRunner struct {
	path      string
	arguments []string
	valid     bool
}

var cgiRunnerSeq uint64

// ParseCGIRunner splits resourceURL into a cgi program path and its "&"
// separated arguments. The path runs up to the first "&" found after the
// cgi-bin folder name; if none is found, the whole URL is the path and
// there are no arguments.
func ParseCGIRunner(resourceURL string) CGIRunner {
	if resourceURL == "" || !isCgiRequest(resourceURL) {
		return MakeInvalidCGIRunner()
	}

	cgiPos := indexOf(resourceURL, cgiFolderName)
	sepPos := indexOfFrom(resourceURL, separator, cgiPos)

	if sepPos == -1 {
		return CGIRunner{path: resourceURL, valid: true}
	}
	cgiPath := resourceURL[:sepPos]
	arguments := split(resourceURL[sepPos+1:], separator)
	return CGIRunner{path: cgiPath, arguments: arguments, valid: true}
}

// MakeInvalidCGIRunner builds a CGIRunner that always reports IsValid() ==
// false.
func MakeInvalidCGIRunner() CGIRunner {
	return CGIRunner{valid: false}
}

// IsValid reports whether this CGIRunner has a usable path.
func (c CGIRunner) IsValid() bool { return c.valid }

// Path returns the resolved CGI program path.
func (c CGIRunner) Path() string { return c.path }

// Run forks cgi_program_path with its arguments, waits for it to exit, and
// returns whatever it wrote to stdout. The child's exit status is not
// inspected (matching the source: the parent never checks waitpid's status
// word), so an executable that exits non-zero, or fails to exec at all,
// simply yields whatever partial output (possibly none) made it to the
// shared file before the child stopped. Only the setup step of opening the
// shared file is reported as the result body, never escalated to an error
// return.
func (c CGIRunner) Run() []byte {
	seq := atomic.AddUint64(&cgiRunnerSeq, 1)
	sharedFileName := fmt.Sprintf("%s_%d.txt", cgiPrefix, seq)

	file, err := os.OpenFile(sharedFileName, os.O_RDWR|os.O_APPEND|os.O_CREATE, readWritePermission)
	if err != nil {
		return []byte(fmt.Sprintf("fail to create/open the file %s", sharedFileName))
	}

	cmd := exec.Command(c.path, c.arguments...)
	cmd.Stdout = file
	_ = cmd.Run()
	file.Close()

	var result []byte
	_ = loadFile(sharedFileName, &result)
	_ = deleteFile(sharedFileName)
	return result
}

func indexOf(s, substr string) int {
	return indexOfFrom(s, substr, 0)
}

func indexOfFrom(s, substr string, from int) int {
	if from > len(s) {
		return -1
	}
	idx := -1
	for i := from; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			idx = i
			break
		}
	}
	return idx
}
