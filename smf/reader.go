package smf

import (
	"encoding/binary"
	"fmt"
	"os"
)

// ReadFile loads and parses an SMF from disk.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read midi file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a complete SMF byte stream. Running status is resolved so
// every returned event has an explicit status. Unknown channel statuses are
// recorded as warnings and the decoder resyncs to the next status byte;
// every other problem aborts with a DecodeError.
func Parse(data []byte) (*File, error) {
	if len(data) < 14 || string(data[0:4]) != "MThd" {
		return nil, decodeErr(ErrMalformedHeader, 0, "missing MThd signature")
	}

	headerLen := binary.BigEndian.Uint32(data[4:8])
	if headerLen != 6 {
		return nil, decodeErr(ErrMalformedHeader, 4, "header length %v, want 6", headerLen)
	}

	f := &File{
		Format:   binary.BigEndian.Uint16(data[8:10]),
		Division: binary.BigEndian.Uint16(data[12:14]),
	}
	numTracks := int(binary.BigEndian.Uint16(data[10:12]))

	pos := 14
	for i := 0; i < numTracks; i++ {
		if pos+8 > len(data) || string(data[pos:pos+4]) != "MTrk" {
			return nil, decodeErr(ErrTruncatedTrack, pos, "missing MTrk signature for track %v", i)
		}
		trackLen := int(binary.BigEndian.Uint32(data[pos+4 : pos+8]))
		pos += 8

		end := pos + trackLen
		if end > len(data) {
			return nil, decodeErr(ErrTruncatedTrack, pos, "track %v length %v exceeds file size", i, trackLen)
		}

		track, err := parseTrack(f, data, pos, end)
		if err != nil {
			return nil, err
		}
		f.Tracks = append(f.Tracks, track)
		pos = end
	}

	return f, nil
}

func parseTrack(f *File, data []byte, pos, end int) (Track, error) {
	var track Track
	var runningStatus uint8
	// After a resync pos sits on a status byte, so the event there is read
	// without a delta of its own.
	resynced := false

	for pos < end {
		var event Event
		var err error

		if resynced {
			resynced = false
		} else {
			event.Delta, pos, err = readVLQ(data, pos, end)
			if err != nil {
				return track, err
			}
		}
		if pos >= end {
			return track, decodeErr(ErrTruncatedTrack, pos, "event delta with no event")
		}

		if data[pos]&0x80 != 0 {
			event.Status = data[pos]
			pos++
		} else {
			if runningStatus == 0 {
				f.Warnings = append(f.Warnings, fmt.Sprintf("data byte 0x%02X with no running status at offset %v", data[pos], pos))
				pos = resync(data, pos, end)
				resynced = true
				continue
			}
			event.Status = runningStatus
		}

		switch {
		case event.Status == StatusMeta:
			if pos >= end {
				return track, decodeErr(ErrTruncatedTrack, pos, "meta event with no type byte")
			}
			event.Meta = true
			event.MetaType = data[pos]
			pos++

			var length uint32
			length, pos, err = readVLQ(data, pos, end)
			if err != nil {
				return track, err
			}
			if pos+int(length) > end {
				return track, decodeErr(ErrTruncatedTrack, pos, "meta payload of %v bytes overruns track", length)
			}
			event.Data = append([]byte(nil), data[pos:pos+int(length)]...)
			pos += int(length)

			if event.MetaType == MetaTrackName {
				track.Name = string(event.Data)
			}

		case event.Status == StatusSysEx || event.Status == StatusSysExContinue:
			var length uint32
			length, pos, err = readVLQ(data, pos, end)
			if err != nil {
				return track, err
			}
			if pos+int(length) > end {
				return track, decodeErr(ErrTruncatedTrack, pos, "sysex payload of %v bytes overruns track", length)
			}
			event.Data = append([]byte(nil), data[pos:pos+int(length)]...)
			pos += int(length)

		case isChannelStatus(event.Status):
			n := ChannelDataLen(event.Status)
			if pos+n > end {
				return track, decodeErr(ErrTruncatedTrack, pos, "channel event 0x%02X overruns track", event.Status)
			}
			event.Data = append([]byte(nil), data[pos:pos+n]...)
			pos += n
			runningStatus = event.Status

		default:
			// 0xF1..0xF6 and friends. Report and resync to the next
			// status byte.
			f.Warnings = append(f.Warnings, fmt.Sprintf("unknown status 0x%02X at offset %v", event.Status, pos-1))
			pos = resync(data, pos, end)
			resynced = true
			continue
		}

		track.Events = append(track.Events, event)
	}

	return track, nil
}

func resync(data []byte, pos, end int) int {
	for pos < end && data[pos]&0x80 == 0 {
		pos++
	}
	return pos
}

// readVLQ decodes a variable-length quantity of at most 4 bytes.
func readVLQ(data []byte, pos, end int) (uint32, int, error) {
	var value uint32
	for i := 0; ; i++ {
		if pos >= end {
			return 0, pos, decodeErr(ErrTruncatedTrack, pos, "unterminated variable-length quantity")
		}
		if i == 4 {
			return 0, pos, decodeErr(ErrInvalidVLQ, pos, "more than 4 bytes")
		}
		b := data[pos]
		pos++
		value = value<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return value, pos, nil
		}
	}
}
