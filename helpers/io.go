package helpers

import "io"

// WriteAll pushes b until nothing is left, retrying short writes.
// Wire frames must reach the stream whole; a short write that is not
// followed up would truncate a frame and desync the peer's decoder.
func WriteAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}
