package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
)

// crashLogFile receives the details of a fatal error in the working directory
const crashLogFile = "err.log"

// fatalError marks errors that abort the program and get a crash log
type fatalError struct {
	err error
}

func (e *fatalError) Error() string { return e.err.Error() }
func (e *fatalError) Unwrap() error { return e.err }

func fatal(err error) error {
	if err == nil {
		return nil
	}
	return &fatalError{err: err}
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			report := fmt.Sprintf("panic: %v\n\n%s", r, debug.Stack())
			fmt.Fprintln(os.Stderr, report)
			writeCrashLog(report)
			os.Exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		var fe *fatalError
		if errors.As(err, &fe) {
			writeCrashLog(fmt.Sprintf("%+v\n", fe.err))
		}
		os.Exit(1)
	}
}

func writeCrashLog(report string) {
	path := crashLogFile
	if wd, err := os.Getwd(); err == nil {
		path = filepath.Join(wd, crashLogFile)
	}
	if err := os.WriteFile(path, []byte(report), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", path, err)
	}
}
