package diagnosis

import "fmt"

// MissingResourceError reports a workbook or sheet that must exist before any
// stage can run.
type MissingResourceError struct {
	Path  string
	Sheet string
}

func (e *MissingResourceError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("sheet %q not found in %s", e.Sheet, e.Path)
	}
	return fmt.Sprintf("workbook not found: %s", e.Path)
}

// MissingColumnError reports a column a stage needs but the input lacks.
type MissingColumnError struct {
	Stage  string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: missing column %s", e.Stage, e.Column)
}
