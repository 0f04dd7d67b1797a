package trace

import (
	"fmt"
	"strings"

	"github.com/go-stack/stack"
)

type CallStack []stack.Call

// Trace captures the current call stack, excluding the call to Trace itself.
func Trace() CallStack {
	return CallStack(stack.Trace().TrimRuntime()[1:])
}

func (cs CallStack) String() string {
	var sb strings.Builder
	for _, call := range cs {
		fmt.Fprintf(&sb, "%+v\n", call)
	}
	return sb.String()
}
