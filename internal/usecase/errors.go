package usecase

import (
	"errors"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/fixture-feed/internal/domain/kickoff"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrTimeParse         = kickoff.ErrTimeParse
	ErrMalformedRecord   = crerr.New("malformed record")
	ErrSourceUnavailable = crerr.New("source unavailable")
	ErrNoDataAvailable   = crerr.New("no data available from any source")
)
