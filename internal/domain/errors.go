package domain

import "errors"

var ErrNotFound = errors.New("not found")
var ErrAlreadyExists = errors.New("already exists")

var (
	// ErrPrecondition marks a merge request whose shape contradicts its media kind.
	ErrPrecondition = errors.New("precondition violation")
	// ErrConflict is returned by a store when a conditional update lost a race.
	ErrConflict             = errors.New("concurrent update conflict")
	ErrInconsistentDocument = errors.New("inconsistent title document")
	ErrEpisodeWithoutSeason = errors.New("episode without season")
	ErrSeasonPack           = errors.New("season without episode")
)
