package util

import (
	"fmt"
	"os"
	"strings"
)

// Errors collects multiple errors into a single one, so that every
// missing configuration value can be reported in one pass.
type Errors []error

func (e Errors) Error() string {
	s := make([]string, 0)
	for _, err := range e {
		s = append(s, err.Error())
	}
	return strings.Join(s, ", ")
}

// RequireEnv retrieves the environment variable varName. If it is not
// set, adds an error to errs.
func RequireEnv(varName string, errs *Errors) string {
	envVar := os.Getenv(varName)
	if len(envVar) == 0 {
		*errs = append(*errs, fmt.Errorf("environment variable %s must be set", varName))
	}
	return envVar
}
