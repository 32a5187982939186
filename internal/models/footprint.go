package models

import (
	"database/sql/driver"
	"encoding/hex"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/ewkb"

	"orbitaledge/internal/geo"
)

// Footprint is a PostGIS geometry column in SRID 4326. It is written as hex
// EWKB and read back from either hex text or raw EWKB bytes.
type Footprint struct {
	orb.Geometry
}

func (f Footprint) Value() (driver.Value, error) {
	if f.Geometry == nil {
		return nil, nil
	}
	data, err := ewkb.Marshal(f.Geometry, geo.SRID)
	if err != nil {
		return nil, fmt.Errorf("encode footprint: %w", err)
	}
	return hex.EncodeToString(data), nil
}

func (f *Footprint) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		f.Geometry = nil
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("unsupported footprint source %T", src)
	}

	// Text protocol hands back hex; the binary protocol hands back EWKB
	// whose first byte is the 0x00/0x01 byte-order marker.
	if len(data) > 0 && data[0] != 0x00 && data[0] != 0x01 {
		decoded := make([]byte, hex.DecodedLen(len(data)))
		if _, err := hex.Decode(decoded, data); err != nil {
			return fmt.Errorf("decode footprint hex: %w", err)
		}
		data = decoded
	}

	g, _, err := ewkb.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("decode footprint: %w", err)
	}
	f.Geometry = g
	return nil
}
