// Package commandline contains helper types for collecting
// command-line arguments.
package commandline // import "github.com/CognitoIQ/go-clarity/internal/commandline"

import (
	"bytes"
	"fmt"
	"strings"
)

// An Assignment sets a named field to a value. On the command line,
// Assignments are provided as strings of the form "name=value".
type Assignment struct {
	Name  string
	Value string
}

// An AssignmentList is used to collect multiple assignments from the
// command line.
type AssignmentList []Assignment

func (a *AssignmentList) String() string {
	var buf bytes.Buffer
	for _, item := range *a {
		fmt.Fprintf(&buf, "%s=%s\n", item.Name, item.Value)
	}
	return buf.String()
}

// Set adds an assignment to the AssignmentList, in the order provided
// on the command line. Field names may contain spaces; the value is
// everything after the first "=".
func (a *AssignmentList) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("invalid assignment %q. must be \"name=value\"", s)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("invalid assignment %q: empty name", s)
	}
	*a = append(*a, Assignment{name, value})
	return nil
}

// The Strings type can be used to collect multiple command-line options,
// in the order provided.
type Strings []string

func (s *Strings) String() string {
	return strings.Join(*s, ",")
}

func (s *Strings) Set(val string) error {
	*s = append(*s, val)
	return nil
}

// Contains reports whether val was given. An empty list contains
// everything.
func (s Strings) Contains(val string) bool {
	if len(s) == 0 {
		return true
	}
	for _, v := range s {
		if v == val {
			return true
		}
	}
	return false
}
