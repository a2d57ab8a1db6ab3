package program

import "errors"

var ErrProgramNotFound = errors.New("program not found")
