package query

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusError   Status = "error"
	StatusSuccess Status = "success"
)

// Result is the observable state of one key. Data is only meaningful with
// StatusSuccess and Err only with StatusError; the other is always zero.
type Result[T any] struct {
	Status    Status
	Data      T
	Err       error
	UpdatedAt time.Time
	// Fetching is set while a background revalidation runs behind settled data.
	Fetching bool
}

func (r Result[T]) IsIdle() bool    { return r.Status == StatusIdle }
func (r Result[T]) IsLoading() bool { return r.Status == StatusLoading }
func (r Result[T]) HasData() bool   { return r.Status == StatusSuccess }

func idle[T any]() Result[T] {
	return Result[T]{Status: StatusIdle}
}

func loading[T any]() Result[T] {
	return Result[T]{Status: StatusLoading}
}

func failed[T any](err error, at time.Time) Result[T] {
	return Result[T]{Status: StatusError, Err: err, UpdatedAt: at}
}

// Convert narrows an untyped result. A value of the wrong type becomes an error
// result rather than a panic.
func Convert[T any](r Result[any]) Result[T] {
	out := Result[T]{
		Status:    r.Status,
		Err:       r.Err,
		UpdatedAt: r.UpdatedAt,
		Fetching:  r.Fetching,
	}
	if r.Status != StatusSuccess || r.Data == nil {
		return out
	}

	data, ok := r.Data.(T)
	if !ok {
		var zero T
		return failed[T](fmt.Errorf("query: cached value is %T, want %T", r.Data, zero), r.UpdatedAt)
	}
	out.Data = data
	return out
}
