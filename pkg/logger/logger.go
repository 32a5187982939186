package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// New returns a development logger in debug mode and a JSON production
// logger otherwise.
func New(debug bool) (*zap.Logger, error) {
	var (
		log *zap.Logger
		err error
	)
	if debug {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}
