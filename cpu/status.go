package cpu

import (
	"errors"
)

// State is the dispatcher state.
type State int

const (
	STATE_FETCHING  = State(0) // fetching
	STATE_DECODING  = State(1) // decoding
	STATE_EXECUTING = State(2) // executing
	STATE_HALTED    = State(3) // halted
	STATE_FAULTED   = State(4) // faulted
)

var stateName = map[State]string{
	STATE_FETCHING:  "fetching",
	STATE_DECODING:  "decoding",
	STATE_EXECUTING: "executing",
	STATE_HALTED:    "halted",
	STATE_FAULTED:   "faulted",
}

func (state State) String() string {
	return stateName[state]
}

// Status is the outcome of a single Step.
type Status int

const (
	STATUS_OK            = Status(0) // ok
	STATUS_UNIMPLEMENTED = Status(1) // unimplemented
	STATUS_HALTED        = Status(2) // halted
	STATUS_ADDRESS_RANGE = Status(3) // address out of range
	STATUS_FAULTED       = Status(4) // faulted
)

var statusName = map[Status]string{
	STATUS_OK:            "ok",
	STATUS_UNIMPLEMENTED: "unimplemented",
	STATUS_HALTED:        "halted",
	STATUS_ADDRESS_RANGE: "address out of range",
	STATUS_FAULTED:       "faulted",
}

func (status Status) String() string {
	return statusName[status]
}

// StatusOf maps an error returned by Step to its Status.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return STATUS_OK
	case errors.Is(err, ErrUnimplemented):
		return STATUS_UNIMPLEMENTED
	case errors.Is(err, ErrHalted):
		return STATUS_HALTED
	case errors.Is(err, ErrAddressRange):
		return STATUS_ADDRESS_RANGE
	}

	return STATUS_FAULTED
}
