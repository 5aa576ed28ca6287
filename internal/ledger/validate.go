package ledger

import (
	"errors"
	"io/fs"
	"os"

	"hotel_reputation/internal/domain"
)

// Inspection is what an orchestrator sees when it re-reads a ledger after a run.
type Inspection struct {
	Exists  bool
	HasDate bool
	Scored  int
	Total   int
}

// Inspect re-reads the saved ledger without seeding anything.
func Inspect(path string, date domain.DateColumn) (Inspection, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Inspection{}, nil
	}
	l, err := Load(path, nil)
	if err != nil {
		return Inspection{Exists: true}, err
	}
	ins := Inspection{Exists: true, HasDate: l.HasColumn(date), Total: len(l.rows)}
	if ins.HasDate {
		ins.Scored = l.Scored(date)
	}
	return ins, nil
}

// Classify maps an inspection to failed (file or column missing), warning (nothing scored) or ok.
func Classify(ins Inspection) domain.RunStatus {
	switch {
	case !ins.Exists || !ins.HasDate:
		return domain.RunFailed
	case ins.Scored == 0:
		return domain.RunWarning
	default:
		return domain.RunOK
	}
}

// Check inspects and classifies in one step; an unreadable ledger is a failed run.
func Check(path string, date domain.DateColumn) (Inspection, domain.RunStatus, error) {
	ins, err := Inspect(path, date)
	if err != nil {
		return ins, domain.RunFailed, err
	}
	return ins, Classify(ins), nil
}

// ExitCode is 1 when any source failed, 0 otherwise. Warnings do not fail the process.
func ExitCode(statuses []domain.RunStatus) int {
	for _, s := range statuses {
		if s == domain.RunFailed {
			return 1
		}
	}
	return 0
}
