package main

import (
	"log"
	"os"
)

// Logger is the minimal sink diagnostics are printed through. *log.Logger
// satisfies it, and that's what runs by default; tests can substitute
// anything else that implements Printf.
type Logger interface {
	Printf(format string, v ...any)
}

func defaultLogger() Logger {
	return log.New(os.Stderr, "", 0)
}
