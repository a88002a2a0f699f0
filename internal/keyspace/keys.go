package keyspace

import "strings"

// TablePrefix and DefaultTable name the relational table for a region.
const (
	TablePrefix  = "TCACHE_"
	DefaultTable = TablePrefix + "DEFAULT"
)

// PhysicalKey folds region into key as "$region$|key". An empty region is the
// default partition and leaves the key untouched.
func PhysicalKey(region, key string) string {
	if region == "" {
		return key
	}
	var b strings.Builder
	b.Grow(len(region) + len(key) + 3)
	b.WriteByte('$')
	b.WriteString(region)
	b.WriteString("$|")
	b.WriteString(key)
	return b.String()
}

// PhysicalKeys maps PhysicalKey over keys, preserving order.
func PhysicalKeys(region string, keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = PhysicalKey(region, k)
	}
	return out
}

// PhysicalTable returns the table holding region's rows. Bytes outside
// [a-z0-9_] are written as "$xx" (lowercase hex), so two regions never share
// a table even on databases that fold identifier case. "default" is escaped
// too, keeping it apart from DefaultTable.
func PhysicalTable(region string) string {
	if region == "" {
		return DefaultTable
	}
	var b strings.Builder
	b.Grow(len(TablePrefix) + len(region))
	b.WriteString(TablePrefix)
	for i := 0; i < len(region); i++ {
		c := region[i]
		if tableSafe(c) && (i > 0 || !strings.EqualFold(region, "default")) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('$')
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0f])
	}
	return b.String()
}

const hexDigits = "0123456789abcdef"

func tableSafe(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_'
}

// Distinct returns keys with duplicates removed, first occurrence wins.
// Comparison is case-sensitive.
func Distinct(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Partition splits s into consecutive chunks of at most size elements.
// The chunks share s's backing array.
func Partition[T any](s []T, size int) [][]T {
	if len(s) == 0 {
		return nil
	}
	if size <= 0 || size >= len(s) {
		return [][]T{s}
	}
	out := make([][]T, 0, (len(s)+size-1)/size)
	for start := 0; start < len(s); start += size {
		end := min(start+size, len(s))
		out = append(out, s[start:end:end])
	}
	return out
}
