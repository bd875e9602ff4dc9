package agendahub

import (
	"fmt"
	"io"
	"strings"
)

func Logf(w io.Writer, prefix string, agenda *Agenda, format string, a ...any) {
	parts := []string{}
	if prefix != "" {
		parts = append(parts, prefix)
	}
	if agenda != nil {
		parts = append(parts, fmt.Sprintf("Agenda %s:", agenda))
	}
	parts = append(parts, fmt.Sprintf(format, a...))
	fmt.Fprintln(w, strings.Join(parts, " "))
}
