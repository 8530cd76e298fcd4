package htmlgrid

import (
	"fmt"
	"html"
	"io"

	"github.com/aerissecure/drilldown/grid"
)

// Sink buffers the grid in memory and writes it as an HTML document to dst
// when closed. Only the first Close writes.
type Sink struct {
	*grid.Buffer
	dst   io.Writer
	title string
	done  bool
}

var _ grid.Sink = (*Sink)(nil)

// NewSink returns a Sink writing to dst. title names the document; an
// empty title omits the <title> element.
func NewSink(dst io.Writer, title string) *Sink {
	return &Sink{Buffer: grid.NewBuffer(), dst: dst, title: title}
}

func (s *Sink) Close() error {
	if err := s.Buffer.Close(); err != nil {
		return err
	}
	if s.done {
		return nil
	}
	s.done = true
	return Document(s.dst, s.Workbook(), s.title)
}

// Document writes a standalone HTML page around Render's output.
func Document(w io.Writer, wb *grid.Workbook, title string) error {
	head := "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n"
	if title != "" {
		head += fmt.Sprintf("<title>%s</title>\n", html.EscapeString(title))
	}
	if _, err := io.WriteString(w, head+"</head>\n<body>\n"); err != nil {
		return err
	}
	if err := Render(w, wb); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</body>\n</html>\n")
	return err
}
