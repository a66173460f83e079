package task

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"wasmbench/internal/gen"
)

type jsonParseKernel struct{}

func (jsonParseKernel) Kind() Kind   { return JSONParse }
func (jsonParseKernel) Name() string { return JSONParse.String() }

// Run generates the fixture records, serializes them to compact JSON, parses
// the string back with the strict parser and hashes the parsed records. Any
// parse failure or record-count mismatch is an error.
func (k jsonParseKernel) Run(p Params) (uint32, error) {
	jp, ok := p.(JSONParseParams)
	if !ok {
		return 0, errors.Wrapf(ErrKindMismatch, "got %s", p.Kind())
	}
	if err := jp.Validate(); err != nil {
		return 0, err
	}

	records := gen.Records(int(jp.RecordCount), jp.Seed)
	serialized := serializeRecords(records)
	parsed, err := parseRecords(serialized)
	if err != nil {
		return 0, errors.Wrap(err, "round-trip parse failed")
	}
	if len(parsed) != len(records) {
		return 0, errors.Wrapf(ErrRoundTrip, "record count %d != %d", len(parsed), len(records))
	}
	return hashRecords(parsed), nil
}

// serializeRecords emits a compact JSON array with fields in the fixed order
// id/value/flag/name and no inserted whitespace.
func serializeRecords(records []gen.Record) string {
	if len(records) == 0 {
		return "[]"
	}
	var sb strings.Builder
	sb.Grow(len(records) * 50)
	sb.WriteByte('[')
	for i, r := range records {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(`{"id":`)
		sb.WriteString(strconv.FormatUint(uint64(r.ID), 10))
		sb.WriteString(`,"value":`)
		sb.WriteString(strconv.FormatInt(int64(r.Value), 10))
		sb.WriteString(`,"flag":`)
		sb.WriteString(strconv.FormatBool(r.Flag))
		sb.WriteString(`,"name":"`)
		sb.WriteString(r.Name)
		sb.WriteString(`"}`)
	}
	sb.WriteByte(']')
	return sb.String()
}

func hashRecords(records []gen.Record) uint32 {
	d := NewDigest()
	for _, r := range records {
		d.FoldUint32(r.ID)
		d.FoldInt32(r.Value)
		d.FoldBool(r.Flag)
		d.FoldBytes([]byte(r.Name))
	}
	return d.Sum32()
}

// recordParser is a strict recursive-descent parser for the fixture format:
// an array of objects carrying exactly the four fields id/value/flag/name.
// Unknown fields, duplicate fields, missing fields and malformed escapes are
// all rejected.
type recordParser struct {
	input string
	pos   int
}

const (
	fieldID = 1 << iota
	fieldValue
	fieldFlag
	fieldName
	fieldAll = fieldID | fieldValue | fieldFlag | fieldName
)

func parseRecords(input string) ([]gen.Record, error) {
	if input == "" {
		return nil, errors.New("empty input")
	}
	p := &recordParser{input: input}
	p.skipWhitespace()
	if !p.consume('[') {
		return nil, p.fail("expected '['")
	}
	p.skipWhitespace()
	var records []gen.Record
	if p.consume(']') {
		return records, nil
	}
	for {
		record, err := p.parseObject()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
		p.skipWhitespace()
		switch {
		case p.consume(']'):
			return records, nil
		case p.consume(','):
			p.skipWhitespace()
		default:
			return nil, p.fail("expected ',' or ']'")
		}
	}
}

func (p *recordParser) parseObject() (gen.Record, error) {
	p.skipWhitespace()
	if !p.consume('{') {
		return gen.Record{}, p.fail("expected '{'")
	}
	p.skipWhitespace()

	var record gen.Record
	var seen int
	for {
		field, err := p.parseString()
		if err != nil {
			return gen.Record{}, errors.Wrap(err, "field name")
		}
		p.skipWhitespace()
		if !p.consume(':') {
			return gen.Record{}, p.fail("expected ':'")
		}
		p.skipWhitespace()

		switch field {
		case "id":
			if seen&fieldID != 0 {
				return gen.Record{}, p.fail("duplicate id field")
			}
			n, err := p.parseInt()
			if err != nil {
				return gen.Record{}, errors.Wrap(err, "id")
			}
			record.ID = uint32(n)
			seen |= fieldID
		case "value":
			if seen&fieldValue != 0 {
				return gen.Record{}, p.fail("duplicate value field")
			}
			n, err := p.parseInt()
			if err != nil {
				return gen.Record{}, errors.Wrap(err, "value")
			}
			record.Value = n
			seen |= fieldValue
		case "flag":
			if seen&fieldFlag != 0 {
				return gen.Record{}, p.fail("duplicate flag field")
			}
			b, err := p.parseBool()
			if err != nil {
				return gen.Record{}, errors.Wrap(err, "flag")
			}
			record.Flag = b
			seen |= fieldFlag
		case "name":
			if seen&fieldName != 0 {
				return gen.Record{}, p.fail("duplicate name field")
			}
			s, err := p.parseString()
			if err != nil {
				return gen.Record{}, errors.Wrap(err, "name")
			}
			record.Name = s
			seen |= fieldName
		default:
			return gen.Record{}, p.failf("unknown field %q", field)
		}

		p.skipWhitespace()
		if p.consume('}') {
			break
		}
		if !p.consume(',') {
			return gen.Record{}, p.fail("expected ',' or '}'")
		}
		p.skipWhitespace()
	}
	if seen != fieldAll {
		return gen.Record{}, p.fail("missing required fields")
	}
	return record, nil
}

func (p *recordParser) parseString() (string, error) {
	if !p.consume('"') {
		return "", p.fail("expected '\"'")
	}
	var sb strings.Builder
	for p.pos < len(p.input) {
		ch := p.input[p.pos]
		switch ch {
		case '"':
			p.pos++
			return sb.String(), nil
		case '\\':
			p.pos++
			if p.pos >= len(p.input) {
				return "", p.fail("incomplete escape sequence")
			}
			switch esc := p.input[p.pos]; esc {
			case '"', '\\', '/':
				sb.WriteByte(esc)
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				return "", p.failf("invalid escape sequence \\%c", esc)
			}
			p.pos++
		default:
			sb.WriteByte(ch)
			p.pos++
		}
	}
	return "", p.fail("unterminated string")
}

func (p *recordParser) parseInt() (int32, error) {
	start := p.pos
	if p.pos < len(p.input) && p.input[p.pos] == '-' {
		p.pos++
	}
	digits := 0
	for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
		p.pos++
		digits++
	}
	if digits == 0 {
		return 0, p.fail("expected number")
	}
	n, err := strconv.ParseInt(p.input[start:p.pos], 10, 32)
	if err != nil {
		return 0, errors.Wrap(err, "number out of range")
	}
	return int32(n), nil
}

func (p *recordParser) parseBool() (bool, error) {
	if strings.HasPrefix(p.input[p.pos:], "true") {
		p.pos += 4
		return true, nil
	}
	if strings.HasPrefix(p.input[p.pos:], "false") {
		p.pos += 5
		return false, nil
	}
	return false, p.fail("expected boolean")
}

func (p *recordParser) skipWhitespace() {
	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *recordParser) consume(ch byte) bool {
	if p.pos < len(p.input) && p.input[p.pos] == ch {
		p.pos++
		return true
	}
	return false
}

func (p *recordParser) fail(msg string) error {
	return errors.Errorf("%s at offset %d", msg, p.pos)
}

func (p *recordParser) failf(format string, args ...any) error {
	return errors.Errorf(format+" at offset %d", append(args, p.pos)...)
}
