package handlers

import "errors"

var errInvalidCloseDate = errors.New("expected_close_at должна быть датой в формате YYYY-MM-DD")
