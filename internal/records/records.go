// Package records stores passing quiz attempts in a CSV table.
package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Column names, in storage order.
const (
	ColUnit           = "UNIT"
	ColCompany        = "COY"
	ColPlatoon        = "PLATOON"
	ColRankName       = "Rank Name"
	ColTelegramHandle = "Telegram Handle"
	ColAnswer         = "Answer"
	ColScore          = "Score"
	ColStrength       = "Strength"
	ColWeakness       = "Weakness"
	ColImprovement    = "Improvement"
	ColTimestamp      = "Timestamp"
)

// Header is the fixed header row of the table.
var Header = []string{
	ColUnit, ColCompany, ColPlatoon, ColRankName, ColTelegramHandle,
	ColAnswer, ColScore, ColStrength, ColWeakness, ColImprovement, ColTimestamp,
}

var (
	// ErrNoData is returned by List when the table does not exist yet.
	ErrNoData = errors.New("no participant data found")

	// ErrRowOutOfRange is returned by DeleteAt for an index with no row.
	ErrRowOutOfRange = errors.New("row index out of range")
)

// Record is one passing attempt.
type Record struct {
	Unit           string
	Company        string
	Platoon        string
	RankName       string
	TelegramHandle string
	Answer         string
	Score          int
	Strength       string
	Weakness       string
	Improvement    string
	Timestamp      time.Time
}

// Row renders r in Header order.
func (r Record) Row() []string {
	ts := ""
	if !r.Timestamp.IsZero() {
		ts = r.Timestamp.Format(time.RFC3339)
	}
	return []string{
		r.Unit, r.Company, r.Platoon, r.RankName, r.TelegramHandle,
		r.Answer, strconv.Itoa(r.Score), r.Strength, r.Weakness, r.Improvement, ts,
	}
}

// Store is a CSV file with one row per passing attempt. Writes within one
// process are serialized; writers in separate processes are not coordinated.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a Store backed by the CSV file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the CSV file path.
func (s *Store) Path() string { return s.path }

// EnsureInitialized creates the directory and the table with its header row
// if they are missing. It is idempotent.
func (s *Store) EnsureInitialized() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureInitialized()
}

// ensureInitialized also writes the header into an existing empty file.
func (s *Store) ensureInitialized() error {
	if info, err := os.Stat(s.path); err == nil {
		if info.Size() > 0 {
			return nil
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat results: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}
	return s.writeRows([][]string{Header})
}

// Append adds one record at the end of the table. Existing rows are never
// read or rewritten.
func (s *Store) Append(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureInitialized(); err != nil {
		return err
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open results: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(r.Row()); err != nil {
		f.Close()
		return fmt.Errorf("append record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("append record: %w", err)
	}
	return f.Close()
}

// List reads every record in storage order. A missing table yields ErrNoData.
func (s *Store) List() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	cols := columnIndex(rows[0])
	out := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		out = append(out, parseRow(cols, row))
	}
	return out, nil
}

// DeleteAt removes the record at the 0-based index (as returned by List) and
// rewrites the table. The other rows are written back verbatim.
func (s *Store) DeleteAt(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows()
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		rows = [][]string{Header}
	}
	if index < 0 || index >= len(rows)-1 {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, index)
	}
	i := index + 1
	rows = append(rows[:i], rows[i+1:]...)
	return s.writeRows(rows)
}

func (s *Store) readRows() ([][]string, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("open results: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read results: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// writeRows replaces the table through a temp file and rename.
func (s *Store) writeRows(rows [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".participants-*.csv")
	if err != nil {
		return fmt.Errorf("create temp results: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write results: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp results: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace results: %w", err)
	}
	return nil
}

// columnIndex maps header names to positions so tables written with a
// different column order still parse.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	return idx
}

func parseRow(cols map[string]int, row []string) Record {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}
	return Record{
		Unit:           get(ColUnit),
		Company:        get(ColCompany),
		Platoon:        get(ColPlatoon),
		RankName:       get(ColRankName),
		TelegramHandle: get(ColTelegramHandle),
		Answer:         get(ColAnswer),
		Score:          parseScore(get(ColScore)),
		Strength:       get(ColStrength),
		Weakness:       get(ColWeakness),
		Improvement:    get(ColImprovement),
		Timestamp:      parseTimestamp(get(ColTimestamp)),
	}
}

// parseScore accepts integers and integral floats ("9.0").
func parseScore(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
