// Package wire names the struct (de)serialization contract transport
// sends and receives against: ordinary encoding.BinaryMarshaler/
// BinaryUnmarshaler, so any application payload type - pkg/sensor.Record
// included - just implements the standard library interfaces.
package wire

import "encoding"

// Marshaler is the contract transport.SendStruct requires of an
// application payload.
type Marshaler = encoding.BinaryMarshaler

// Unmarshaler is the contract transport.ReceiveStruct requires of an
// application payload.
type Unmarshaler = encoding.BinaryUnmarshaler
