package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/pt-run/pt/cmd/pt/cmd"
	pterrors "github.com/pt-run/pt/internal/errors"
)

func main() {
	os.Exit(run())
}

func run() int {
	err := cmd.Execute()
	if err == nil {
		return 0
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	var ee *cmd.ExitErr
	if errors.As(err, &ee) {
		return ee.Code()
	}
	switch pterrors.Code(err) {
	case pterrors.CodeTimeout:
		return 124
	case pterrors.CodeInterrupted:
		return 130
	default:
		return 1
	}
}
