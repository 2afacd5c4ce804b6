package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrRepository      = errors.New("repository error")
	ErrProvider        = errors.New("metadata provider error")
	ErrNoMatch         = errors.New("no metadata match")
	ErrInvalidRelease  = errors.New("invalid release")
	ErrFileUnavailable = errors.New("file host lookup failed")
)

func wrapRepo(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrRepository, err)
}

func wrapProvider(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrProvider, err)
}

func wrapFileHost(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrFileUnavailable, err)
}
