package worker

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/ppiankov/ecotrack/internal/model"
)

// Interpreter turns one activity entry into an interpretation
type Interpreter interface {
	Interpret(ctx context.Context, text string) *model.Interpretation
}

// InterpretJob interprets a single batch entry
type InterpretJob struct {
	Index       int
	ID          string
	Text        string
	Interpreter Interpreter
}

// Execute executes the job. A cancelled context yields a failed record.
func (j *InterpretJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return newFailedRecord(j.Index, j.ID, j.Text, err)
	}
	return &Record{
		Index:          j.Index,
		ID:             j.ID,
		Text:           j.Text,
		Interpretation: j.Interpreter.Interpret(ctx, j.Text),
	}
}

// Record is the outcome of one batch entry
type Record struct {
	Index          int                   `json:"-"`
	ID             string                `json:"id"`
	Text           string                `json:"text"`
	Interpretation *model.Interpretation `json:"interpretation,omitempty"`
	Failure        string                `json:"error,omitempty"`
	Error          error                 `json:"-"`
}

func newFailedRecord(index int, id, text string, err error) *Record {
	return &Record{Index: index, ID: id, Text: text, Error: err, Failure: err.Error()}
}

// GetError returns the error from the record
func (r *Record) GetError() error {
	return r.Error
}

// BatchProcessor interprets many entries concurrently
type BatchProcessor struct {
	interpreter Interpreter
	concurrency int
	logger      zerolog.Logger
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(interpreter Interpreter, concurrency int, logger zerolog.Logger) *BatchProcessor {
	return &BatchProcessor{
		interpreter: interpreter,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Process interprets texts and returns one record per text, in input order.
// Each record gets a ULID assigned in input order.
func (b *BatchProcessor) Process(ctx context.Context, texts []string) []*Record {
	if len(texts) == 0 {
		return []*Record{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	ids := make([]string, len(texts))
	for i, text := range texts {
		ids[i] = ulid.Make().String()
		if !pool.Submit(&InterpretJob{Index: i, ID: ids[i], Text: text, Interpreter: b.interpreter}) {
			b.logger.Debug().Int("index", i).Msg("batch cancelled before all entries were queued")
			break
		}
	}

	records := make([]*Record, len(texts))
	for _, result := range pool.Wait() {
		r := result.(*Record)
		records[r.Index] = r
	}

	// Entries that never ran report why
	for i, r := range records {
		if r != nil {
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		if ids[i] == "" {
			ids[i] = ulid.Make().String()
		}
		records[i] = newFailedRecord(i, ids[i], texts[i], err)
	}

	b.logger.Debug().Int("entries", len(texts)).Int("workers", b.concurrency).Msg("batch complete")
	return records
}

// ProcessFile reads entries from a file and interprets them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*Record, error) {
	texts, err := ReadEntriesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}

	return b.Process(ctx, texts), nil
}

// ReadEntriesFromFile reads activity entries from a file (one per line)
func ReadEntriesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return ReadEntries(file)
}

// ReadEntries reads one entry per line, skipping blank lines and # comments.
// Repeated lines are separate activities and are all kept.
func ReadEntries(r io.Reader) ([]string, error) {
	var entries []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entries = append(entries, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan entries: %w", err)
	}

	return entries, nil
}
