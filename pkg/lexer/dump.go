package lexer

import (
	"fmt"
	"io"
	"iter"
)

// Dump writes one (KIND,'VALUE',LINE) line per token
func Dump(w io.Writer, tokens iter.Seq[Token]) error {
	for tok := range tokens {
		if _, err := fmt.Fprintln(w, tok.Dump()); err != nil {
			return err
		}
	}
	return nil
}
