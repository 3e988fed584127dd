// Package stride loads the per-site stride metadata that marks which access
// sites are strided array or list traversals.
package stride

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/sarchlab/memfoot/record"
)

// Map maps site ids to their nonzero stride, in elements.
type Map struct {
	sites map[int32]int32

	// Names holds strides keyed by indvar name. They take effect only once
	// bound to a site id with Bind.
	Names map[string]int32
}

// New creates an empty stride map.
func New() *Map {
	return &Map{
		sites: make(map[int32]int32),
		Names: make(map[string]int32),
	}
}

// Set records the stride of a site.
func (m *Map) Set(site, stride int32) error {
	if site <= 0 || site > record.MaxSiteID {
		return fmt.Errorf("site id %d out of range", site)
	}
	if stride == 0 {
		return fmt.Errorf("site %d: stride must be nonzero", site)
	}
	m.sites[site] = stride
	return nil
}

// Bind assigns the stride registered under name to a site id.
func (m *Map) Bind(name string, site int32) error {
	stride, ok := m.Names[name]
	if !ok {
		return fmt.Errorf("unknown indvar %q", name)
	}
	return m.Set(site, stride)
}

// Stride returns the stride of a site. It satisfies record.StrideTable.
func (m *Map) Stride(site int32) (int32, bool) {
	if m == nil {
		return 0, false
	}
	s, ok := m.sites[site]
	return s, ok
}

// Len returns the number of strided sites.
func (m *Map) Len() int {
	return len(m.sites)
}

// Sites returns the strided site ids in ascending order.
func (m *Map) Sites() []int32 {
	ids := make([]int32, 0, len(m.sites))
	for id := range m.sites {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// WriteTo writes the map in the "site stride" line format Parse accepts.
// Unbound names are not written.
func (m *Map) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, site := range m.Sites() {
		n, err := fmt.Fprintf(w, "%d %d\n", site, m.sites[site])
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Load reads a stride file from disk.
func Load(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stride file: %w", err)
	}
	defer func() { _ = f.Close() }()

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stride file %s: %w", path, err)
	}
	return m, nil
}

// Parse reads stride metadata. Each line holds a key and a stride separated
// by whitespace, '=', ':' or ','. Numeric keys are site ids, anything else is
// an indvar name. A name alone on a line takes its stride from the next line.
// Blank lines and lines starting with '#' are skipped.
func Parse(r io.Reader) (*Map, error) {
	m := New()
	scanner := bufio.NewScanner(r)

	pendingName := ""
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.FieldsFunc(line, isSeparator)

		if pendingName != "" {
			if len(fields) != 1 {
				return nil, fmt.Errorf("line %d: expected stride for %q", lineNo, pendingName)
			}
			stride, err := parseStride(fields[0])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			m.Names[pendingName] = stride
			pendingName = ""
			continue
		}

		switch len(fields) {
		case 1:
			if _, err := strconv.ParseInt(fields[0], 10, 64); err == nil {
				return nil, fmt.Errorf("line %d: stride %s has no key", lineNo, fields[0])
			}
			pendingName = fields[0]
		case 2:
			if err := m.add(fields[0], fields[1]); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		default:
			return nil, fmt.Errorf("line %d: malformed entry %q", lineNo, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if pendingName != "" {
		return nil, fmt.Errorf("missing stride for %q", pendingName)
	}

	return m, nil
}

func (m *Map) add(key, value string) error {
	stride, err := parseStride(value)
	if err != nil {
		return err
	}

	site, err := strconv.ParseInt(key, 10, 32)
	if errors.Is(err, strconv.ErrRange) {
		return fmt.Errorf("site id %s out of range", key)
	}
	if err != nil {
		m.Names[key] = stride
		return nil
	}
	return m.Set(int32(site), stride)
}

func parseStride(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid stride %q", s)
	}
	if v == 0 {
		return 0, fmt.Errorf("stride must be nonzero")
	}
	return int32(v), nil
}

func isSeparator(r rune) bool {
	switch r {
	case ' ', '\t', '=', ':', ',':
		return true
	}
	return false
}
