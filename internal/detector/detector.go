package detector

import (
	"fmt"
	"strings"

	ps "github.com/mitchellh/go-ps"
)

// DefaultIndicators are the executable names whose presence in the process
// table marks the screen as locked.
var DefaultIndicators = []string{"ScreenSaverEngine", "loginwindow"}

var processesFunc = ps.Processes

// Probe answers whether the screen is locked right now by scanning the
// process table for lock-indicator executables. The scan is best-effort;
// hosts without a matching lock process always report unlocked.
type Probe struct {
	indicators []string
}

// NewProbe creates a probe matching the given executable names.
// With no names the default set is used.
func NewProbe(indicators ...string) *Probe {
	if len(indicators) == 0 {
		indicators = DefaultIndicators
	}
	return &Probe{indicators: indicators}
}

// Locked reports whether any lock-indicator process is running.
// Executable names are matched case-insensitively.
func (p *Probe) Locked() (bool, error) {
	procs, err := processesFunc()
	if err != nil {
		return false, fmt.Errorf("failed to read process table: %w", err)
	}

	for _, proc := range procs {
		exe := strings.ToLower(proc.Executable())
		for _, indicator := range p.indicators {
			if strings.Contains(exe, strings.ToLower(indicator)) {
				return true, nil
			}
		}
	}
	return false, nil
}
