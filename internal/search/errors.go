package search

import "errors"

var (
	ErrEmptyQuery        = errors.New("search query is empty")
	ErrRemoteUnavailable = errors.New("hosted search backend unavailable")
)
