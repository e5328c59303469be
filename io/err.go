package io

import (
	"errors"

	"github.com/ezrec/i8080/translate"
)

var f = translate.From

var (
	// Load errors
	ErrTooLarge  = errors.New(f("image exceeds address space"))
	ErrTruncated = errors.New(f("image truncated"))
)

// ErrLoad reports a failure to load a ROM image.
type ErrLoad struct {
	Size int   // Bytes read before the failure.
	Err  error // Cause.
}

func (err *ErrLoad) Error() string {
	return f("load: %d bytes: %v", err.Size, err.Err)
}

func (err *ErrLoad) Unwrap() error {
	return err.Err
}
