package driver

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/AlbeMasera/ATAI/internal/core/model"
)

// LoadNTriples reads an N-Triples file into memory.
func LoadNTriples(path string) ([]Triple, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open graph '%s': %w", path, err)
	}
	defer f.Close()

	var triples []Triple
	err = ParseNTriples(f, func(t Triple) error {
		triples = append(triples, t)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse graph '%s': %w", path, err)
	}
	return triples, nil
}

// ParseNTriples calls fn for every triple in r. Blank nodes are kept as
// IRIs of the form "_:id". Literal datatypes are dropped.
func ParseNTriples(r io.Reader, fn func(Triple) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		t, err := parseTripleLine(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		if err := fn(t); err != nil {
			return err
		}
	}
	return sc.Err()
}

func parseTripleLine(line string) (Triple, error) {
	p := &ntParser{s: line}

	subject, err := p.resource()
	if err != nil {
		return Triple{}, fmt.Errorf("subject: %w", err)
	}
	predicate, err := p.resource()
	if err != nil {
		return Triple{}, fmt.Errorf("predicate: %w", err)
	}
	object, err := p.term()
	if err != nil {
		return Triple{}, fmt.Errorf("object: %w", err)
	}

	p.skipSpace()
	if !strings.HasPrefix(p.s[p.pos:], ".") {
		return Triple{}, fmt.Errorf("missing terminating '.'")
	}
	return Triple{Subject: subject, Predicate: predicate, Object: object}, nil
}

type ntParser struct {
	s   string
	pos int
}

func (p *ntParser) skipSpace() {
	for p.pos < len(p.s) && (p.s[p.pos] == ' ' || p.s[p.pos] == '\t') {
		p.pos++
	}
}

func (p *ntParser) resource() (string, error) {
	p.skipSpace()
	if p.pos >= len(p.s) {
		return "", io.ErrUnexpectedEOF
	}
	switch {
	case p.s[p.pos] == '<':
		end := strings.IndexByte(p.s[p.pos:], '>')
		if end < 0 {
			return "", fmt.Errorf("unterminated IRI")
		}
		iri := p.s[p.pos+1 : p.pos+end]
		p.pos += end + 1
		return unescape(iri)
	case strings.HasPrefix(p.s[p.pos:], "_:"):
		start := p.pos
		for p.pos < len(p.s) && p.s[p.pos] != ' ' && p.s[p.pos] != '\t' {
			p.pos++
		}
		return p.s[start:p.pos], nil
	default:
		return "", fmt.Errorf("unexpected %q", p.s[p.pos])
	}
}

func (p *ntParser) term() (model.Term, error) {
	p.skipSpace()
	if p.pos >= len(p.s) {
		return model.Term{}, io.ErrUnexpectedEOF
	}
	if p.s[p.pos] != '"' {
		iri, err := p.resource()
		return model.IRI(iri), err
	}

	start := p.pos + 1
	end := start
	for ; end < len(p.s); end++ {
		if p.s[end] == '\\' {
			end++
			continue
		}
		if p.s[end] == '"' {
			break
		}
	}
	if end >= len(p.s) {
		return model.Term{}, fmt.Errorf("unterminated literal")
	}
	value, err := unescape(p.s[start:end])
	if err != nil {
		return model.Term{}, err
	}
	p.pos = end + 1

	var lang string
	switch {
	case strings.HasPrefix(p.s[p.pos:], "@"):
		p.pos++
		start := p.pos
		for p.pos < len(p.s) && p.s[p.pos] != ' ' && p.s[p.pos] != '\t' && p.s[p.pos] != '.' {
			p.pos++
		}
		lang = p.s[start:p.pos]
	case strings.HasPrefix(p.s[p.pos:], "^^"):
		p.pos += 2
		if _, err := p.resource(); err != nil {
			return model.Term{}, fmt.Errorf("datatype: %w", err)
		}
	}
	return model.Literal(value, lang), nil
}

func unescape(s string) (string, error) {
	if !strings.ContainsRune(s, '\\') {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 't':
			b.WriteByte('\t')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case '"', '\'', '\\':
			b.WriteByte(s[i])
		case 'u', 'U':
			n := 4
			if s[i] == 'U' {
				n = 8
			}
			if i+n >= len(s) {
				return "", fmt.Errorf("short unicode escape")
			}
			code, err := strconv.ParseUint(s[i+1:i+1+n], 16, 32)
			if err != nil {
				return "", fmt.Errorf("bad unicode escape: %w", err)
			}
			b.WriteRune(rune(code))
			i += n
		default:
			return "", fmt.Errorf("unknown escape \\%c", s[i])
		}
	}
	return b.String(), nil
}
