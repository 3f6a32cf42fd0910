package schedule

import (
	"fmt"

	"conference-clipper/domain/talk"

	"github.com/rs/zerolog"
)

// RecordReader reads raw schedule rows
type RecordReader interface {
	ReadFile(path string) ([]talk.Record, error)
}

// Rejection is a schedule row that did not make a talk
type Rejection struct {
	Record talk.Record
	Err    error
}

// Result contains the talks of a schedule and the rows that were dropped
type Result struct {
	Talks    []talk.Talk
	Rejected []Rejection
}

// Service turns a schedule file into validated talks
type Service struct {
	reader    RecordReader
	validator *talk.Validator
	logger    zerolog.Logger
}

// NewService creates a new schedule service
func NewService(reader RecordReader, validator *talk.Validator, logger zerolog.Logger) *Service {
	return &Service{
		reader:    reader,
		validator: validator,
		logger:    logger.With().Str("component", "schedule").Logger(),
	}
}

// Load reads the schedule at path and returns its valid talks in file order.
// Invalid rows are logged and reported in Result.Rejected; they are never an error.
func (s *Service) Load(path string) (*Result, error) {
	records, err := s.reader.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}

	result := &Result{}
	for _, rec := range records {
		t, err := s.validator.NewTalk(rec)
		if err != nil {
			s.logger.Debug().
				Int("line", rec.Line).
				Str("room", rec.Room).
				Str("title", rec.Title).
				Err(err).
				Msg("skipping schedule row")
			result.Rejected = append(result.Rejected, Rejection{Record: rec, Err: err})
			continue
		}
		result.Talks = append(result.Talks, t)
	}

	s.logger.Info().
		Str("file", path).
		Int("talks", len(result.Talks)).
		Int("rejected", len(result.Rejected)).
		Msg("schedule loaded")

	return result, nil
}
