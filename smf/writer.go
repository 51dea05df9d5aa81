package smf

import (
	"encoding/binary"
	"fmt"
	"os"
)

// Bytes serializes the file. Every event is written with an explicit
// status byte, so the output is valid input for Parse regardless of how
// the original stream used running status.
func (f *File) Bytes() []byte {
	buf := make([]byte, 0, 1024)

	buf = append(buf, 'M', 'T', 'h', 'd')
	buf = appendUint32(buf, 6)
	buf = appendUint16(buf, f.Format)
	buf = appendUint16(buf, uint16(len(f.Tracks)))
	buf = appendUint16(buf, f.Division)

	for _, track := range f.Tracks {
		buf = append(buf, 'M', 'T', 'r', 'k')

		lengthPos := len(buf)
		buf = appendUint32(buf, 0)
		trackStart := len(buf)

		for _, event := range track.Events {
			buf = appendVLQ(buf, event.Delta)
			buf = append(buf, event.Status)

			if event.Meta {
				buf = append(buf, event.MetaType)
				buf = appendVLQ(buf, uint32(len(event.Data)))
				buf = append(buf, event.Data...)
			} else if event.Status == StatusSysEx || event.Status == StatusSysExContinue {
				buf = appendVLQ(buf, uint32(len(event.Data)))
				buf = append(buf, event.Data...)
			} else {
				buf = append(buf, event.Data...)
			}
		}

		binary.BigEndian.PutUint32(buf[lengthPos:], uint32(len(buf)-trackStart))
	}

	return buf
}

// WriteFile serializes the file to disk.
func (f *File) WriteFile(path string) error {
	if err := os.WriteFile(path, f.Bytes(), 0666); err != nil {
		return fmt.Errorf("could not write midi file: %w", err)
	}
	return nil
}

func appendUint16(buf []byte, v uint16) []byte {
	return append(buf, byte(v>>8), byte(v))
}

func appendUint32(buf []byte, v uint32) []byte {
	return append(buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// appendVLQ writes v as a variable-length quantity, 7 bits per byte with
// the continuation flag on every byte but the last.
func appendVLQ(buf []byte, v uint32) []byte {
	v &= 0x0FFFFFFF
	chunk := [4]byte{byte(v & 0x7F)}
	n := 1
	for v >>= 7; v != 0; v >>= 7 {
		chunk[n] = byte(v&0x7F) | 0x80
		n++
	}
	for i := n - 1; i >= 0; i-- {
		buf = append(buf, chunk[i])
	}
	return buf
}
