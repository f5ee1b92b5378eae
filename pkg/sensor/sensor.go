// Package sensor provides the one example application payload named in
// spec.md §6: a fixed-size environmental reading, wire-compatible with
// transport.SendStruct/ReceiveStruct via encoding.BinaryMarshaler.
package sensor

import (
	"encoding/binary"
	"fmt"
	"math"
)

// WireSize is Record's fixed little-endian wire size:
// timestamp(4) + temperature1(4) + temperature2(4) + humidity(1).
const WireSize = 13

// Record is one sensor reading, grounded on original_source/src/payload.rs's
// SensorPayload (there serialized with postcard; here with a fixed
// little-endian layout, since postcard's varint framing has no Go
// equivalent in the example pack and the field set is small and fixed).
type Record struct {
	Timestamp   uint32
	Temperature1 float32
	Temperature2 float32
	Humidity    uint8
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (r Record) MarshalBinary() ([]byte, error) {
	buf := make([]byte, WireSize)
	binary.LittleEndian.PutUint32(buf[0:4], r.Timestamp)
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(r.Temperature1))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(r.Temperature2))
	buf[12] = r.Humidity
	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (r *Record) UnmarshalBinary(data []byte) error {
	if len(data) != WireSize {
		return fmt.Errorf("sensor: record must be %d bytes, got %d", WireSize, len(data))
	}
	r.Timestamp = binary.LittleEndian.Uint32(data[0:4])
	r.Temperature1 = math.Float32frombits(binary.LittleEndian.Uint32(data[4:8]))
	r.Temperature2 = math.Float32frombits(binary.LittleEndian.Uint32(data[8:12]))
	r.Humidity = data[12]
	return nil
}
