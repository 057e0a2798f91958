package format

import (
        "encoding/json"
        "fmt"
        "io"
)

// Write renders v for command output. JSON is the only wire format the
// CLI speaks; an empty format selects it too.
func Write(w io.Writer, v any, format string, pretty bool) error {
        switch format {
        case "", "json":
                return WriteJSON(w, v, pretty)
        default:
                return fmt.Errorf("unknown format: %s", format)
        }
}

// WriteJSON emits one JSON document followed by a newline. Stdout is a
// machine contract: anything aimed at humans belongs in `meta` or
// `_hints` fields of the document, never in surrounding prose.
func WriteJSON(w io.Writer, v any, pretty bool) error {
        b, err := marshalJSON(v, pretty)
        if err != nil {
                return err
        }
        _, err = w.Write(append(b, '\n'))
        return err
}

func marshalJSON(v any, pretty bool) ([]byte, error) {
        if pretty {
                return json.MarshalIndent(v, "", "  ")
        }
        return json.Marshal(v)
}
