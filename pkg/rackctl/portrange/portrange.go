// Package portrange parses operator-entered switch port selections such as
// "1-6,8,10-12" into a canonical, sorted, de-duplicated PortSet.
//
// Grammar:
//
//	spec  = token *( "," token )
//	token = port / port "-" port
//	port  = 1*DIGIT
//
// Any whitespace anywhere in the input rejects the whole input. A range whose
// start is greater than its end is rejected as well. Ports are 1-MaxPort.
package portrange

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// MaxPort bounds the expansion of a single range.
const MaxPort = 65535

// ErrInvalidRange is wrapped by every *ParseError.
var ErrInvalidRange = errors.New("invalid port range")

// ParseError reports a rejected port specification. Input is always the
// complete original string, not the offending token.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid port range: %s", e.Input)
}

// Unwrap lets errors.Is(err, ErrInvalidRange) match.
func (e *ParseError) Unwrap() error { return ErrInvalidRange }

// PortSet is an ascending sequence of distinct port numbers.
type PortSet []uint32

// Parse expands spec into a PortSet.
func Parse(spec string) (PortSet, error) {
	fail := func(reason string) (PortSet, error) {
		return nil, &ParseError{Input: spec, Reason: reason}
	}

	if strings.IndexFunc(spec, unicode.IsSpace) >= 0 {
		return fail("contains whitespace")
	}

	var ports []uint32
	for _, token := range strings.Split(spec, ",") {
		if !strings.Contains(token, "-") {
			p, err := parsePort(token)
			if err != nil {
				return fail(err.Error())
			}
			ports = append(ports, p)
			continue
		}

		bounds := strings.Split(token, "-")
		if len(bounds) != 2 {
			return fail(fmt.Sprintf("range %q must have exactly two bounds", token))
		}
		start, err := parsePort(bounds[0])
		if err != nil {
			return fail(err.Error())
		}
		end, err := parsePort(bounds[1])
		if err != nil {
			return fail(err.Error())
		}
		if start > end {
			return fail(fmt.Sprintf("range %q is reversed", token))
		}
		for p := start; p <= end; p++ {
			ports = append(ports, p)
		}
	}

	return normalise(ports), nil
}

// MustParse is Parse for literals known to be valid; it panics otherwise.
func MustParse(spec string) PortSet {
	ps, err := Parse(spec)
	if err != nil {
		panic(err)
	}
	return ps
}

// Default returns the selection 1-portCount (empty when portCount is 0).
func Default(portCount uint32) PortSet {
	if portCount > MaxPort {
		portCount = MaxPort
	}
	ps := make(PortSet, 0, portCount)
	for p := uint32(1); p <= portCount; p++ {
		ps = append(ps, p)
	}
	return ps
}

// Format renders ps in its compact canonical form, collapsing consecutive
// ports into ranges: [1 2 3 5] → "1-3,5".
func Format(ps PortSet) string {
	ps = normalise(append(PortSet(nil), ps...))
	var b strings.Builder
	for i := 0; i < len(ps); {
		j := i
		for j+1 < len(ps) && ps[j+1] == ps[j]+1 {
			j++
		}
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(uint64(ps[i]), 10))
		if j > i {
			b.WriteByte('-')
			b.WriteString(strconv.FormatUint(uint64(ps[j]), 10))
		}
		i = j + 1
	}
	return b.String()
}

// String implements fmt.Stringer using Format.
func (ps PortSet) String() string { return Format(ps) }

// Contains reports whether port is in ps.
func (ps PortSet) Contains(port uint32) bool {
	i := sort.Search(len(ps), func(i int) bool { return ps[i] >= port })
	return i < len(ps) && ps[i] == port
}

// Max returns the highest port in ps, or 0 when ps is empty.
func (ps PortSet) Max() uint32 {
	if len(ps) == 0 {
		return 0
	}
	return ps[len(ps)-1]
}

func parsePort(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("port %q is not an unsigned integer", s)
	}
	if n == 0 || n > MaxPort {
		return 0, fmt.Errorf("port %d out of range 1-%d", n, MaxPort)
	}
	return uint32(n), nil
}

// normalise sorts ports ascending and drops duplicates in place.
func normalise(ports []uint32) PortSet {
	sort.Slice(ports, func(i, j int) bool { return ports[i] < ports[j] })
	out := ports[:0]
	for _, p := range ports {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	return PortSet(out)
}
