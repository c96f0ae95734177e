// Package decoder turns raw gosnmp varbinds returned by a Get or Set into the
// integer values the PoE admin objects carry. It has no state and is safe for
// concurrent use.
package decoder

import (
	"fmt"
	"math"

	"github.com/gosnmp/gosnmp"
)

// ─────────────────────────────────────────────────────────────────────────────
// SNMP PDU Type → String
// ─────────────────────────────────────────────────────────────────────────────

// PDUTypeString returns the human-readable name for a gosnmp Asn1BER type tag.
func PDUTypeString(t gosnmp.Asn1BER) string {
	switch t {
	case gosnmp.Integer:
		return "Integer"
	case gosnmp.OctetString:
		return "OctetString"
	case gosnmp.Null:
		return "Null"
	case gosnmp.ObjectIdentifier:
		return "ObjectIdentifier"
	case gosnmp.IPAddress:
		return "IpAddress"
	case gosnmp.Counter32:
		return "Counter32"
	case gosnmp.Gauge32:
		return "Gauge32"
	case gosnmp.TimeTicks:
		return "TimeTicks"
	case gosnmp.Counter64:
		return "Counter64"
	case gosnmp.Uinteger32:
		return "Unsigned32"
	case gosnmp.NoSuchObject:
		return "NoSuchObject"
	case gosnmp.NoSuchInstance:
		return "NoSuchInstance"
	case gosnmp.EndOfMibView:
		return "EndOfMibView"
	default:
		return fmt.Sprintf("Unknown(0x%02X)", uint8(t))
	}
}

// IsErrorType returns true when the PDU type signals a retrieval error rather
// than an actual value.
func IsErrorType(t gosnmp.Asn1BER) bool {
	return t == gosnmp.NoSuchObject || t == gosnmp.NoSuchInstance || t == gosnmp.EndOfMibView || t == gosnmp.Null
}

// ─────────────────────────────────────────────────────────────────────────────
// Response → integer
// ─────────────────────────────────────────────────────────────────────────────

// ResponseInt extracts the integer value bound to oid from a Get or Set
// response. It fails on a request-level SNMP error-status, a missing varbind,
// an exception type (noSuchObject and friends) and a non-integer value.
func ResponseInt(pkt *gosnmp.SnmpPacket, oid string) (int64, error) {
	if pkt == nil {
		return 0, fmt.Errorf("decoder: nil response for %s", oid)
	}
	if pkt.Error != gosnmp.NoError {
		return 0, fmt.Errorf("decoder: %s: agent returned %s (index %d)", oid, pkt.Error, pkt.ErrorIndex)
	}
	for _, v := range pkt.Variables {
		if normaliseOID(v.Name) != normaliseOID(oid) {
			continue
		}
		return PDUInt(v)
	}
	return 0, fmt.Errorf("decoder: %s missing from response", oid)
}

// PDUInt converts a single varbind to int64.
func PDUInt(pdu gosnmp.SnmpPDU) (int64, error) {
	if IsErrorType(pdu.Type) {
		return 0, fmt.Errorf("decoder: %s: %s", normaliseOID(pdu.Name), PDUTypeString(pdu.Type))
	}
	switch pdu.Type {
	case gosnmp.Integer, gosnmp.Counter32, gosnmp.Gauge32, gosnmp.Uinteger32, gosnmp.TimeTicks, gosnmp.Counter64:
		n, err := toInt64(pdu.Value)
		if err != nil {
			return 0, fmt.Errorf("decoder: %s: %w", normaliseOID(pdu.Name), err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("decoder: %s: %s is not an integer type", normaliseOID(pdu.Name), PDUTypeString(pdu.Type))
	}
}

// toInt64 converts the raw gosnmp value to int64.
// gosnmp returns integers as int / uint / uint32 / uint64 depending on the PDU.
func toInt64(v interface{}) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return 0, fmt.Errorf("uint value %d overflows int64", x)
		}
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("uint64 value %d overflows int64", x)
		}
		return int64(x), nil
	default:
		return 0, fmt.Errorf("cannot convert %T to int64", v)
	}
}

// normaliseOID strips a leading dot so OIDs compare in canonical form.
func normaliseOID(oid string) string {
	if len(oid) > 0 && oid[0] == '.' {
		return oid[1:]
	}
	return oid
}
