package exchange

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/sadopc/liftlog/internal/store"
)

const csvHeader = "name,type,muscle_group,position"

// ExerciseCreator is what an import needs from the store.
type ExerciseCreator interface {
	CreateExercise(name string, typ store.ExerciseType, muscleGroup *string) (*store.Exercise, error)
}

// WriteExercisesCSV writes one quoted row per exercise after the header.
// Values are wrapped in double quotes as they are; embedded quotes are not
// escaped.
func WriteExercisesCSV(w io.Writer, exercises []store.Exercise) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, csvHeader); err != nil {
		return err
	}
	for _, e := range exercises {
		muscle := ""
		if e.MuscleGroup != nil {
			muscle = *e.MuscleGroup
		}
		if _, err := fmt.Fprintf(bw, "\"%s\",\"%s\",\"%s\",\"%d\"\n", e.Name, e.Type, muscle, e.Position); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func ExercisesToCSV(exercises []store.Exercise, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	if err := WriteExercisesCSV(f, exercises); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return f.Close()
}

// Row is one parsed exercise line.
type Row struct {
	Name        string
	Type        store.ExerciseType
	MuscleGroup *string
}

// A token is either a double-quoted run (which may contain commas) or a run
// of anything but commas.
var tokenRe = regexp.MustCompile(`"([^"]*)"|([^,]+)`)

// ParseExercisesCSV reads exercise rows. The header line and lines with
// fewer than two tokens are skipped.
func ParseExercisesCSV(r io.Reader) ([]Row, error) {
	var rows []Row
	sc := bufio.NewScanner(r)
	first := true
	for sc.Scan() {
		tokens := tokenize(sc.Text())
		if first {
			first = false
			if len(tokens) > 0 && strings.EqualFold(tokens[0], "name") {
				continue
			}
		}
		if len(tokens) < 2 {
			continue
		}
		row := Row{Name: tokens[0], Type: store.ParseExerciseType(tokens[1])}
		if len(tokens) > 2 && tokens[2] != "" {
			mg := tokens[2]
			row.MuscleGroup = &mg
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

func tokenize(line string) []string {
	var tokens []string
	for _, m := range tokenRe.FindAllStringSubmatch(strings.TrimRight(line, "\r"), -1) {
		if strings.HasPrefix(m[0], `"`) {
			tokens = append(tokens, m[1])
			continue
		}
		t := strings.TrimSpace(m[2])
		// A quoted value after ", " lands here with its quotes.
		if len(t) >= 2 && strings.HasPrefix(t, `"`) && strings.HasSuffix(t, `"`) {
			t = t[1 : len(t)-1]
		}
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// ImportExercises creates a new exercise for every parsed row. Existing
// exercises with the same name are not matched. It stops at the first
// store error and reports how many rows were created before it.
func ImportExercises(r io.Reader, creator ExerciseCreator) (int, error) {
	rows, err := ParseExercisesCSV(r)
	if err != nil {
		return 0, err
	}
	for i, row := range rows {
		if _, err := creator.CreateExercise(row.Name, row.Type, row.MuscleGroup); err != nil {
			return i, fmt.Errorf("import %q: %w", row.Name, err)
		}
	}
	return len(rows), nil
}

func ImportExercisesCSV(path string, creator ExerciseCreator) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open csv file: %w", err)
	}
	defer f.Close()
	return ImportExercises(f, creator)
}
