package errors

import "errors"

var (
	ErrInvalidSize   = errors.New("board size is out of range")
	ErrIllegalMove   = errors.New("illegal move")
	ErrOffBoard      = errors.New("point is off the board")
	ErrOccupied      = errors.New("point is occupied")
	ErrSuicide       = errors.New("suicide")
	ErrKo            = errors.New("ko recapture")
	ErrInvalidColor  = errors.New("only black and white stones can be played")
	ErrBadCoordinate = errors.New("malformed coordinate")
	ErrMalformedSGF  = errors.New("malformed sgf")
	ErrPolicyFault   = errors.New("policy returned a move outside the legal set")
	ErrEngineConfig  = errors.New("invalid engine configuration")
	ErrEngineFailure = errors.New("engine failed to generate a move")
	ErrUnknownPolicy = errors.New("unknown policy kind")
	ErrNoValidInput  = errors.New("no valid move entered")
	ErrGameNotFound  = errors.New("game not found")
	ErrInternal      = errors.New("internal error")
	ErrGameCount     = errors.New("game count must not be negative")
)
