package handshake

import (
	"bytes"
	"io"

	"github.com/go-i2p/go-streamtunnel/lib/transport"
)

// maxLineLength bounds a handshake line; the longest legal line is under 80
// bytes.
const maxLineLength = 1024

// readLine reads up to and including '\n' without reading past it. A final
// line cut short by EOF is returned as-is; EOF before any byte is a
// TransportError.
func readLine(r io.Reader, op string) (string, error) {
	var line bytes.Buffer
	var b [1]byte
	for {
		n, err := r.Read(b[:])
		if n == 1 {
			if b[0] == '\n' {
				return string(bytes.TrimRight(line.Bytes(), "\r")), nil
			}
			if line.Len() >= maxLineLength {
				return "", transport.NewProtocolError(op, "line exceeds %d bytes", maxLineLength)
			}
			line.WriteByte(b[0])
		}
		if err != nil {
			if err == io.EOF {
				if line.Len() > 0 {
					return string(bytes.TrimRight(line.Bytes(), "\r")), nil
				}
				return "", transport.WrapTransportError(op, io.ErrUnexpectedEOF)
			}
			return "", transport.WrapTransportError(op, err)
		}
	}
}

func writeLine(w io.Writer, op, line string) error {
	if _, err := io.WriteString(w, line+"\n"); err != nil {
		return transport.WrapTransportError(op, err)
	}
	return nil
}
